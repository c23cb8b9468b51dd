package limits

import (
	"github.com/go-chi/chi/v5"

	"github.com/okean-yachts/okean-cpq/internal/rbac"
)

// MountRoutes attaches the discount limits admin routes.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny("pricing.limits.view", "pricing.limits.manage"))
		r.Get("/limits", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll("pricing.limits.manage"))
		r.Put("/limits", h.Update)
	})
}
