// internal/app/features/reviews/routes.go
package reviews

import (
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves reviews; bootstrap mounts it at /campgrounds/{id}/reviews
// so the campground id is available as the "id" URL param.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Post("/", h.HandleCreate)
	r.Delete("/{reviewId}", h.HandleDelete)
	return r
}
