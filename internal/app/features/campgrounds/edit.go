// internal/app/features/campgrounds/edit.go
package campgrounds

import (
	"context"
	"errors"
	"net/http"

	campgroundstore "github.com/dalemusser/yelpcamp/internal/app/store/campgrounds"
	"github.com/dalemusser/yelpcamp/internal/app/system/timeouts"
	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeEdit renders the edit form pre-filled with the stored campground.
//
// Route: GET /campgrounds/{id}/edit
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.redirectNotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cg, err := h.Store.GetByID(ctx, oid)
	if errors.Is(err, campgroundstore.ErrNotFound) {
		h.redirectNotFound(w, r)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load campground for edit failed", err, "Could not load campground.", listURL)
		return
	}

	h.Render(w, r, "campground_edit", FormPage{
		BaseVM:     viewdata.NewBaseVM(w, r, "Edit Campground", showURL(cg.ID.Hex())),
		Action:     showURL(cg.ID.Hex()),
		Method:     http.MethodPut,
		Campground: toRow(cg),
	})
}

// HandleUpdate replaces the campground's fields with the validated input.
// An unknown id flashes "Cannot find campground" and goes back to the list.
//
// Route: PUT /campgrounds/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.redirectNotFound(w, r)
		return
	}
	in, ok := InputFrom(r)
	if !ok {
		h.ErrLog.LogServerError(w, r, "update campground: no validated input", nil, "Something went wrong.", listURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Store.Update(ctx, oid, campgroundstore.CampgroundUpdate{
		Title:       &in.Title,
		Image:       &in.Image,
		Price:       in.Price,
		Location:    &in.Location,
		Description: &in.Description,
	})
	if errors.Is(err, campgroundstore.ErrNotFound) {
		h.Log.Info("update: campground not found", zap.String("campground_id", oid.Hex()))
		h.redirectNotFound(w, r)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update campground failed", err, "Could not save the campground.", showURL(oid.Hex()))
		return
	}

	h.Flash.Success(w, r, MsgUpdated)
	http.Redirect(w, r, showURL(updated.ID.Hex()), http.StatusSeeOther)
}
