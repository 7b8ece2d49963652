// internal/app/features/campgrounds/delete.go
package campgrounds

import (
	"net/http"

	"github.com/dalemusser/yelpcamp/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDelete removes the campground and the reviews it references, then
// returns to the list. Deleting an id that is already gone is not an error;
// it flashes "Cannot find campground" instead of the success message.
//
// Route: DELETE /campgrounds/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.redirectNotFound(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "campgrounds.delete")
	defer cancel()

	deleted, err := h.Store.Delete(ctx, oid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete campground failed", err, "Could not delete the campground.", showURL(oid.Hex()))
		return
	}
	if deleted == nil {
		h.Log.Info("campground delete: no document found (idempotent)", zap.String("campground_id", oid.Hex()))
		h.redirectNotFound(w, r)
		return
	}

	h.Log.Info("campground deleted",
		zap.String("campground_id", oid.Hex()),
		zap.Int("reviews", len(deleted.Reviews)))
	h.Flash.Success(w, r, MsgDeleted)
	http.Redirect(w, r, listURL, http.StatusSeeOther)
}
