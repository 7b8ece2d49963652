package auth

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) of the user record
//   - Username: the human-readable name users type to log in

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"

	// SignInRequiredMessage is flashed when an anonymous visitor hits a
	// protected route.
	SignInRequiredMessage = "You must be signed in first!"
)

// SessionUser is the signed-in user injected into r.Context().
type SessionUser struct {
	ID       string
	Name     string
	Username string
	Email    string
}

// UserFetcher loads the current user record on each request so renames and
// deletions take effect immediately. It returns nil when the user no longer
// exists.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager owns the cookie store for the auth session.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
	flashes *flash.Store
}

// NewSessionManager builds a cookie-backed session store.
//
// In production (secure=true) cookies are Secure with SameSite=Lax; over
// plain-http local development secure must be false or browsers drop them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if name == "" {
		return nil, fmt.Errorf("session name is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Store exposes the underlying cookie store (shared with the flash store).
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name is the auth session cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// SetUserFetcher installs the per-request user loader.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SetFlashStore lets RequireSignedIn leave a message for the login page.
func (sm *SessionManager) SetFlashStore(fs *flash.Store) { sm.flashes = fs }

// GetSession returns the auth session. A cookie that fails to decode (for
// example after a key rotation) yields a fresh session and a nil error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		if se, ok := err.(securecookie.Error); ok && se.IsDecode() {
			sm.log.Debug("discarding undecodable session cookie", zap.Error(err))
			return sess, nil
		}
		return sess, err
	}
	return sess, nil
}

// SignIn records u as the authenticated user. The session is renewed so a
// pre-login cookie cannot be fixed onto the new identity.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		return err
	}
	sess.Values = map[any]any{
		isAuthKey: true,
		userIDKey: u.ID,
	}
	sess.IsNew = true
	return sess.Save(r, w)
}

// SignOut expires the auth session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		return err
	}
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the signed-in user into the request context. With
// a UserFetcher installed the record is reloaded; a user that no longer
// exists is treated as signed out.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			sm.log.Warn("session load failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			id, _ := sess.Values[userIDKey].(string)
			u := &SessionUser{ID: id}
			if sm.fetcher != nil {
				u = sm.fetcher.FetchUser(r.Context(), id)
			}
			if u != nil && u.ID != "" {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: flashes a notice and 303-redirects to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		dest := "/login?return=" + url.QueryEscape(returnURI(r))

		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", dest)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if wantsHTML(r) {
			if sm.flashes != nil {
				sm.flashes.Error(w, r, SignInRequiredMessage)
			}
			http.Redirect(w, r, dest, http.StatusSeeOther)
			return
		}

		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u as LoadSessionUser would. For tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// wantsHTML treats browsers, form posts and method-overridden form posts as
// HTML clients. Anything asking only for JSON is an API caller.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/html") {
		return true
	}
	ct := r.Header.Get("Content-Type")
	return accept == "" && strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}

// returnURI is where to send the user after login. Only GETs can be
// replayed, so writes return to the page the resource lives on.
func returnURI(r *http.Request) string {
	if r.Method == http.MethodGet {
		return r.URL.RequestURI()
	}
	p := r.URL.Path
	if i := strings.Index(p, "/reviews"); i > 0 {
		p = p[:i]
	}
	return p
}
