// internal/app/features/campgrounds/new.go
package campgrounds

import (
	"context"
	"net/http"

	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/timeouts"
	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeNew renders the "New Campground" form.
// Authorization: RequireSignedIn middleware in routes.go.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "campground_new", FormPage{
		BaseVM: viewdata.NewBaseVM(w, r, "New Campground", listURL),
		Action: listURL,
		Method: http.MethodPost,
	})
}

// HandleCreate stores the validated campground and redirects to it.
//
// Route: POST /campgrounds
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := InputFrom(r)
	if !ok {
		h.ErrLog.LogServerError(w, r, "create campground: no validated input", nil, "Something went wrong.", listURL)
		return
	}

	cg := models.Campground{
		Title:       in.Title,
		Image:       in.Image,
		Price:       *in.Price,
		Location:    in.Location,
		Description: in.Description,
	}
	if u, ok := auth.CurrentUser(r); ok {
		if uid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			cg.AuthorID = &uid
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Store.Create(ctx, cg)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create campground failed", err, "Could not save the campground.", listURL)
		return
	}

	h.Log.Info("campground created", zap.String("campground_id", created.ID.Hex()))
	h.Flash.Success(w, r, MsgCreated)
	http.Redirect(w, r, showURL(created.ID.Hex()), http.StatusSeeOther)
}
