package quotations

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("sales.quotation.view"))
		r.Get("/quotations", h.List)
		r.Get("/quotations/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("sales.quotation.create"))
		r.Post("/quotations", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("sales.quotation.edit"))
		r.Put("/quotations/{id}", h.Update)
		r.Post("/quotations/{id}/send", h.Send)
		r.Post("/quotations/{id}/accept", h.Accept)
		r.Post("/quotations/{id}/reject", h.Reject)
	})
}
