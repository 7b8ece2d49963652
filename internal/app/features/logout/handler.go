// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"go.uber.org/zap"
)

// MsgGoodbye is flashed after signing out.
const MsgGoodbye = "Goodbye!"

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Flash      *flash.Store
}

func NewHandler(sessionMgr *auth.SessionManager, fs *flash.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Flash:      fs,
	}
}

// ServeLogout handles GET /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Log.Info("user signed out", zap.String("user_id", u.ID))
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	h.Flash.Success(w, r, MsgGoodbye)

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/campgrounds")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}
