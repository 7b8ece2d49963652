// internal/app/features/campgrounds/routes.go
package campgrounds

import (
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all Campground routes under the base path
// (typically "/campgrounds" from bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeShow)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// CREATE
		pr.Get("/new", h.ServeNew)
		pr.With(h.validateCampground).Post("/", h.HandleCreate)

		// EDIT
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.With(h.validateCampground).Put("/{id}", h.HandleUpdate)

		// DELETE (reviews cascade)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
