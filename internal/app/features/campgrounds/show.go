// internal/app/features/campgrounds/show.go
package campgrounds

import (
	"context"
	"errors"
	"net/http"

	campgroundstore "github.com/dalemusser/yelpcamp/internal/app/store/campgrounds"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/htmlsanitize"
	"github.com/dalemusser/yelpcamp/internal/app/system/timeouts"
	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeShow renders one campground with its reviews. Malformed and unknown
// ids both flash "Cannot find campground" and go back to the list.
//
// Route: GET /campgrounds/{id}
func (h *Handler) ServeShow(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.redirectNotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cg, reviews, err := h.Store.GetWithReviews(ctx, oid)
	if errors.Is(err, campgroundstore.ErrNotFound) {
		h.Log.Info("campground not found", zap.String("campground_id", oid.Hex()))
		h.redirectNotFound(w, r)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load campground failed", err, "Could not load campground.", listURL)
		return
	}

	var (
		viewer   primitive.ObjectID
		signedIn bool
	)
	if u, ok := auth.CurrentUser(r); ok {
		signedIn = true
		viewer, _ = primitive.ObjectIDFromHex(u.ID)
	}

	rows := make([]ReviewRow, 0, len(reviews))
	for _, rv := range reviews {
		rows = append(rows, ReviewRow{
			ID:         rv.ID.Hex(),
			Body:       htmlsanitize.SanitizeHTML(rv.Body),
			Rating:     rv.Rating,
			AuthorName: rv.AuthorName,
			CanDelete:  signedIn && rv.IsAuthor(viewer),
		})
	}

	h.Render(w, r, "campground_show", ShowPage{
		BaseVM:     viewdata.NewBaseVM(w, r, cg.Title, listURL),
		Campground: toRow(cg),
		Reviews:    rows,
		CanEdit:    signedIn,
		MaxRating:  models.MaxRating,
	})
}
