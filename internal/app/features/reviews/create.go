// internal/app/features/reviews/create.go
package reviews

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/yelpcamp/internal/app/features/errors"
	campgroundstore "github.com/dalemusser/yelpcamp/internal/app/store/campgrounds"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/app/system/inputval"
	"github.com/dalemusser/yelpcamp/internal/app/system/timeouts"
	"github.com/dalemusser/yelpcamp/internal/app/system/txn"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// reviewInput is the review[...] form body.
type reviewInput struct {
	Body   string `validate:"required,max=2000" label:"Review"`
	Rating *int   `validate:"required,gte=1,lte=5" label:"Rating"`
}

// HandleCreate adds a review to the campground. The insert and the push onto
// the campground's review list share a transaction.
//
// Route: POST /campgrounds/{id}/reviews
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	cid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.redirect(w, r, flash.Error, msgNoCampground, campgroundListURL)
		return
	}
	back := campgroundListURL + "/" + cid.Hex()

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}
	in := reviewInput{Body: strings.TrimSpace(r.PostForm.Get("review[body]"))}
	badRating := false
	if raw := strings.TrimSpace(r.PostForm.Get("review[rating]")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			in.Rating = &n
		} else {
			badRating = true
		}
	}
	if res := inputval.Validate(in); res.HasErrors() {
		if badRating {
			for i, fe := range res.Errors {
				if fe.Field == "Rating" && fe.Rule == "required" {
					res.Errors[i].Message = "Rating must be a whole number."
				}
			}
		}
		h.ErrLog.Write(w, r, uierrors.ValidationError(res.Join(",")), back)
		return
	}

	rv := models.Review{Body: in.Body, Rating: *in.Rating, CampgroundID: cid}
	if u, ok := auth.CurrentUser(r); ok {
		if uid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			rv.AuthorID = &uid
		}
		rv.AuthorName = u.Username
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var created models.Review
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if _, err := h.Campgrounds.GetByID(ctx, cid); err != nil {
			return err
		}
		c, err := h.Reviews.Create(ctx, rv)
		if err != nil {
			return err
		}
		created = c
		return h.Campgrounds.AddReview(ctx, cid, c.ID)
	})
	if errors.Is(err, campgroundstore.ErrNotFound) {
		h.redirect(w, r, flash.Error, msgNoCampground, campgroundListURL)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create review failed", err, "Could not save the review.", back)
		return
	}

	h.Log.Info("review created",
		zap.String("campground_id", cid.Hex()),
		zap.String("review_id", created.ID.Hex()))
	h.redirect(w, r, flash.Success, MsgCreated, back)
}
