// internal/app/features/reviews/handler.go
package reviews

import (
	"net/http"

	uierrors "github.com/dalemusser/yelpcamp/internal/app/features/errors"
	campgroundstore "github.com/dalemusser/yelpcamp/internal/app/store/campgrounds"
	reviewstore "github.com/dalemusser/yelpcamp/internal/app/store/reviews"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Flash texts shown after each action.
const (
	MsgCreated        = "Created new review!"
	MsgDeleted        = "Successfully deleted review"
	MsgNotFound       = "Cannot find review"
	MsgNoPermission   = "You do not have permission to do that!"
	msgNoCampground   = "Cannot find campground"
	campgroundListURL = "/campgrounds"
)

// Handler serves the reviews nested under a campground.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Flash       *flash.Store
	Campgrounds *campgroundstore.Store
	Reviews     *reviewstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, fs *flash.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Flash:       fs,
		Campgrounds: campgroundstore.New(db),
		Reviews:     reviewstore.New(db),
	}
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, cat flash.Category, msg, to string) {
	if err := h.Flash.Add(w, r, cat, msg); err != nil {
		h.Log.Warn("flash add failed", zap.Error(err))
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
