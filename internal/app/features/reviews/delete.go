// internal/app/features/reviews/delete.go
package reviews

import (
	"context"
	"errors"
	"net/http"

	campgroundstore "github.com/dalemusser/yelpcamp/internal/app/store/campgrounds"
	reviewstore "github.com/dalemusser/yelpcamp/internal/app/store/reviews"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/app/system/timeouts"
	"github.com/dalemusser/yelpcamp/internal/app/system/txn"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDelete pulls the review from its campground and deletes it. Only the
// review's author may do this.
//
// Route: DELETE /campgrounds/{id}/reviews/{reviewId}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	cid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.redirect(w, r, flash.Error, msgNoCampground, campgroundListURL)
		return
	}
	back := campgroundListURL + "/" + cid.Hex()

	rid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "reviewId"))
	if err != nil {
		h.redirect(w, r, flash.Error, MsgNotFound, back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, rid)
	if errors.Is(err, reviewstore.ErrNotFound) || (err == nil && rv.CampgroundID != cid) {
		h.redirect(w, r, flash.Error, MsgNotFound, back)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load review failed", err, "Could not load the review.", back)
		return
	}

	var userID string
	if u, ok := auth.CurrentUser(r); ok {
		userID = u.ID
	}
	uid, _ := primitive.ObjectIDFromHex(userID)
	if userID == "" || !rv.IsAuthor(uid) {
		h.Log.Warn("review delete by non-author",
			zap.String("review_id", rid.Hex()),
			zap.String("user_id", userID))
		h.redirect(w, r, flash.Error, MsgNoPermission, back)
		return
	}

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.Campgrounds.RemoveReview(ctx, cid, rid); err != nil {
			return err
		}
		return h.Reviews.Delete(ctx, rid)
	})
	switch {
	case errors.Is(err, campgroundstore.ErrNotFound):
		h.redirect(w, r, flash.Error, msgNoCampground, campgroundListURL)
		return
	case errors.Is(err, reviewstore.ErrNotFound):
		h.redirect(w, r, flash.Error, MsgNotFound, back)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "delete review failed", err, "Could not delete the review.", back)
		return
	}

	h.redirect(w, r, flash.Success, MsgDeleted, back)
}
