package atos

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
	"github.com/okean-yachts/okean-cpq/internal/rbac"
	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
	"github.com/okean-yachts/okean-cpq/internal/shared"
)

// Handler serves ATO endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("sales.ato.view", "sales.ato.edit"))
		r.Get("/atos/{id}", h.Show)
		r.Get("/atos/{id}/impact", h.Impact)
		r.Get("/contracts/{contractID}/atos", h.ListByContract)
		r.Get("/contracts/{contractID}/impact", h.ContractImpact)
		r.Post("/contracts/{contractID}/conflicts", h.CheckConflict)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("sales.ato.edit"))
		r.Post("/atos", h.Create)
		r.Post("/atos/{id}/configurations", h.AddConfiguration)
		r.Delete("/atos/{id}/configurations/{configID}", h.RemoveConfiguration)
		r.Post("/atos/{id}/submit", h.transitionTo(StatusPendingReview))
		r.Post("/atos/{id}/send", h.transitionTo(StatusSent))
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("sales.ato.review"))
		r.Post("/atos/{id}/approve", h.transitionTo(StatusApproved))
		r.Post("/atos/{id}/reject", h.transitionTo(StatusRejected))
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateATORequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ato, err := h.service.Create(r.Context(), req, currentUserID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ato)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid ato id")
		return
	}
	ato, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	configs, err := h.service.Configurations(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ato": ato, "configurations": configs})
}

func (h *Handler) ListByContract(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid contract id")
		return
	}
	items, err := h.service.ListByContract(r.Context(), contractID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"atos": items})
}

func (h *Handler) Impact(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid ato id")
		return
	}
	impact, err := h.service.AggregatedImpact(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, impact)
}

func (h *Handler) ContractImpact(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid contract id")
		return
	}
	impact, err := h.service.ContractImpact(r.Context(), contractID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, impact)
}

func (h *Handler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid contract id")
		return
	}
	var req ConflictCheckRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	idx, err := h.service.Usage(r.Context(), contractID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	occupant := idx.ConflictingUpgrade(req.MemorialItemID, req.CurrentUpgradeID)
	httpx.JSON(w, http.StatusOK, map[string]any{"conflict": occupant != nil, "occupant": occupant})
}

func (h *Handler) AddConfiguration(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid ato id")
		return
	}
	var req AddConfigurationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cfg, err := h.service.AddConfiguration(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cfg)
}

func (h *Handler) RemoveConfiguration(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid ato id")
		return
	}
	configID, err := uuid.Parse(chi.URLParam(r, "configID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid configuration id")
		return
	}
	if err := h.service.RemoveConfiguration(r.Context(), id, configID); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) transitionTo(target ATOStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid ato id")
			return
		}
		ato, err := h.service.Transition(r.Context(), id, target)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, ato)
	}
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, contracts.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrIncompleteData):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	default:
		h.logger.Error("ato request", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
