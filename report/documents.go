package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
	"github.com/okean-yachts/okean-cpq/internal/rbac"
	reportsvc "github.com/okean-yachts/okean-cpq/internal/report"
)

// Handler serves rendered commercial documents on demand.
type Handler struct {
	client  *Client
	reports *reportsvc.Service
	rbac    rbac.Middleware
	logger  *slog.Logger
}

// NewHandler constructs the document handler.
func NewHandler(client *Client, reports *reportsvc.Service, rbacMW rbac.Middleware, logger *slog.Logger) *Handler {
	return &Handler{client: client, reports: reports, rbac: rbacMW, logger: logger}
}

// MountRoutes attaches document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("sales.quotation.view"))
		r.Get("/quotations/{id}.pdf", h.quotationPDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("sales.ato.view"))
		r.Get("/atos/{id}.pdf", h.atoPDF)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg health", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "Serviço de documentos indisponível")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) quotationPDF(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.reports.QuotationPDF)
}

func (h *Handler) atoPDF(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.reports.ATOPDF)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, render func(context.Context, uuid.UUID) ([]byte, string, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "Identificador inválido")
		return
	}
	pdf, filename, err := render(r.Context(), id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "Documento não encontrado")
			return
		}
		h.logger.Error("render document", slog.String("id", id.String()), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "Falha ao gerar o documento")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(pdf)
}
