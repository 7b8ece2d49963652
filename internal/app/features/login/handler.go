// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/yelpcamp/internal/app/features/errors"
	userstore "github.com/dalemusser/yelpcamp/internal/app/store/users"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/app/system/timeouts"
	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	MsgWelcomeBack = "Welcome back!"
	MsgBadLogin    = "Password or username is incorrect"
)

type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Flash         *flash.Store
	Users         *userstore.Store
	GoogleEnabled bool // True if Google OAuth is configured

	Render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// FormData backs the login template.
type FormData struct {
	viewdata.BaseVM
	Error         string
	Username      string // what the user typed
	ReturnURL     string
	GoogleEnabled bool
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	fs *flash.Store,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Flash:         fs,
		Users:         userstore.New(db),
		GoogleEnabled: googleEnabled,
		Render:        templates.Render,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "login", FormData{
		BaseVM:        viewdata.NewBaseVM(w, r, "Login", "/campgrounds"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	returnURL := strings.TrimSpace(r.PostForm.Get("return"))

	if username == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your username and password.", username, returnURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, username, password)
	if errors.Is(err, userstore.ErrInvalidCredentials) {
		h.Log.Info("login failed", zap.String("username", username))
		h.renderFormWithError(w, r, MsgBadLogin, username, returnURL)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", "/login")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:       u.ID.Hex(),
		Name:     u.Username,
		Username: u.Username,
		Email:    u.Email,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "save session", err, "Could not sign you in.", "/login")
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()))
	h.Flash.Success(w, r, MsgWelcomeBack)

	dest := urlutil.SafeReturn(returnURL, "", "/campgrounds")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username, returnURL string) {
	h.Render(w, r, "login", FormData{
		BaseVM:        viewdata.NewBaseVM(w, r, "Login", "/campgrounds"),
		Error:         msg,
		Username:      username,
		ReturnURL:     returnURL,
		GoogleEnabled: h.GoogleEnabled,
	})
}
