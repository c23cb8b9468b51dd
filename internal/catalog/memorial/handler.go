package memorial

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/catalog/shared"
	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
	"github.com/okean-yachts/okean-cpq/internal/rbac"
)

// Handler serves memorial item and upgrade endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("catalog.view", "catalog.edit"))
		r.Get("/items", h.listItems)
		r.Get("/items/{id}", h.showItem)
		r.Get("/upgrades", h.listUpgrades)
		r.Get("/upgrades/{id}", h.showUpgrade)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("catalog.edit"))
		r.Post("/items", h.createItem)
		r.Put("/items/{id}", h.updateItem)
		r.Delete("/items/{id}", h.deleteItem)
		r.Post("/upgrades", h.createUpgrade)
		r.Put("/upgrades/{id}", h.updateUpgrade)
		r.Delete("/upgrades/{id}", h.deleteUpgrade)
	})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseFilters(r)
	items, total, err := h.service.ListItems(r.Context(), filters)
	if err != nil {
		h.logger.Error("list memorial items", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "page": filters.Page, "limit": filters.Limit})
}

func (h *Handler) showItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, shared.ErrInvalidID)
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var form ItemForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	item, err := h.service.CreateItem(r.Context(), form)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, shared.ErrInvalidID)
		return
	}
	var form ItemForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.UpdateItem(r.Context(), id, form); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, shared.ErrInvalidID)
		return
	}
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) listUpgrades(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseFilters(r)
	upgrades, total, err := h.service.ListUpgrades(r.Context(), filters)
	if err != nil {
		h.logger.Error("list upgrades", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"upgrades": upgrades, "total": total, "page": filters.Page, "limit": filters.Limit})
}

func (h *Handler) showUpgrade(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, shared.ErrInvalidID)
		return
	}
	upgrade, err := h.service.GetUpgrade(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, upgrade)
}

func (h *Handler) createUpgrade(w http.ResponseWriter, r *http.Request) {
	var form UpgradeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	upgrade, err := h.service.CreateUpgrade(r.Context(), form)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, upgrade)
}

func (h *Handler) updateUpgrade(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, shared.ErrInvalidID)
		return
	}
	var form UpgradeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.UpdateUpgrade(r.Context(), id, form); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) deleteUpgrade(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, shared.ErrInvalidID)
		return
	}
	if err := h.service.DeleteUpgrade(r.Context(), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}
