// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/yelpcamp/internal/app/features/errors"
	userstore "github.com/dalemusser/yelpcamp/internal/app/store/users"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/app/system/inputval"
	"github.com/dalemusser/yelpcamp/internal/app/system/timeouts"
	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MsgWelcome is flashed after a successful sign-up.
const MsgWelcome = "Welcome to Yelp Camp!"

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Flash      *flash.Store
	Users      *userstore.Store

	Render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

// FormData backs the register template.
type FormData struct {
	viewdata.BaseVM
	Error    string
	Username string
	Email    string
}

// registerInput defines validation rules for a new account. bcrypt ignores
// bytes past 72, so longer passwords are refused.
type registerInput struct {
	Username string `validate:"required,min=3,max=50,alphanum" label:"Username"`
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required,min=8,max=72" label:"Password"`
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, fs *flash.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Flash:      fs,
		Users:      userstore.New(db),
		Render:     templates.Render,
	}
}

// ServeRegister renders the sign-up form.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "register", FormData{
		BaseVM: viewdata.NewBaseVM(w, r, "Register", "/campgrounds"),
	})
}

// HandleRegister creates a password account and signs it in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/register")
		return
	}

	in := registerInput{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}

	renderWithError := func(msg string) {
		h.Render(w, r, "register", FormData{
			BaseVM:   viewdata.NewBaseVM(w, r, "Register", "/campgrounds"),
			Error:    msg,
			Username: in.Username,
			Email:    in.Email,
		})
	}

	if res := inputval.Validate(in); res.HasErrors() {
		renderWithError(res.Join(" "))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Register(ctx, in.Username, in.Email, in.Password)
	if errors.Is(err, userstore.ErrDuplicateUsername) {
		renderWithError("A user with the given username is already registered")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register user failed", err, "Could not create your account.", "/register")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:       u.ID.Hex(),
		Name:     u.Username,
		Username: u.Username,
		Email:    u.Email,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "save session", err, "Your account was created, but signing in failed.", "/login")
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	h.Flash.Success(w, r, MsgWelcome)
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}
