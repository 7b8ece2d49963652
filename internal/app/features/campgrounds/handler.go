// internal/app/features/campgrounds/handler.go
package campgrounds

import (
	"net/http"

	uierrors "github.com/dalemusser/yelpcamp/internal/app/features/errors"
	campgroundstore "github.com/dalemusser/yelpcamp/internal/app/store/campgrounds"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listURL = "/campgrounds"

// Flash texts shown after each action.
const (
	MsgCreated  = "Successfully made a campground"
	MsgUpdated  = "Successfully updated a campground"
	MsgDeleted  = "Successfully deleted a campground"
	MsgNotFound = "Cannot find campground"
)

// Handler is the feature-level entry point for Campgrounds.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Flash  *flash.Store
	Store  *campgroundstore.Store

	// Render draws a named view. Defaults to templates.Render.
	Render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

// NewHandler constructs a Campgrounds handler bound to a DB and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, fs *flash.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Flash:  fs,
		Store:  campgroundstore.New(db),
		Render: templates.Render,
	}
}

func (h *Handler) redirectNotFound(w http.ResponseWriter, r *http.Request) {
	h.Flash.Error(w, r, MsgNotFound)
	http.Redirect(w, r, listURL, http.StatusSeeOther)
}

func showURL(id string) string { return listURL + "/" + id }
