package approvals

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
	"github.com/okean-yachts/okean-cpq/internal/rbac"
	"github.com/okean-yachts/okean-cpq/internal/shared"
)

// Handler serves approval endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	roles    *rbac.Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, roles *rbac.Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, roles: roles, rbac: mw, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("sales.approval.view", "sales.approval.review"))
		r.Get("/approvals/pending", h.ListPending)
		r.Get("/approvals/pending/count", h.PendingCount)
		r.Get("/approvals/{id}", h.Show)
		r.Get("/quotations/{quotationID}/approvals", h.ListByQuotation)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("sales.approval.request"))
		r.Post("/approvals", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("sales.approval.review"))
		r.Post("/approvals/{id}/review", h.Review)
	})
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListPending(r.Context())
	if err != nil {
		h.logger.Error("list pending approvals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"approvals": items})
}

func (h *Handler) PendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.PendingCount(r.Context())
	if err != nil {
		h.logger.Error("count pending approvals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"pending": n})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid approval id")
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) ListByQuotation(w http.ResponseWriter, r *http.Request) {
	quotationID, err := uuid.Parse(chi.URLParam(r, "quotationID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quotation id")
		return
	}
	items, err := h.service.ListByQuotation(r.Context(), quotationID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"approvals": items})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateApprovalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	a, err := h.service.Create(r.Context(), req, currentUserID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid approval id")
		return
	}
	var req ReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	userID := currentUserID(r)
	roleNames, err := h.roles.UserRoleNames(r.Context(), userID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	roles := make([]policy.Role, 0, len(roleNames))
	for _, name := range roleNames {
		role := policy.Role(name)
		if role.Valid() {
			roles = append(roles, role)
		}
	}

	a, err := h.service.Review(r.Context(), id, req, userID, roles)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyReviewed):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInsufficientAuthority):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrQuotationNotPending):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("approval request", slog.Any("error", err))
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
