package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// TestSessionKey is a 32+ byte key for cookie stores in tests.
const TestSessionKey = "test-session-key-must-be-32-chars-long"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calling it again on the same request adds to the existing params.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithUser adds u to the request context for testing authenticated
// handlers. This bypasses the session middleware.
func WithUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:       u.ID.Hex(),
		Name:     u.Username,
		Username: u.Username,
		Email:    u.Email,
	})
}

// NewFlashStore returns a flash store backed by an in-memory cookie store.
func NewFlashStore() *flash.Store {
	return flash.New(sessions.NewCookieStore([]byte(TestSessionKey)), "test-session", zap.NewNop())
}

// NewFormRequest builds a urlencoded POST carrying form. Set form["_method"]
// and run it through methodoverride to simulate PUT or DELETE.
func NewFormRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// Flashes returns the flash messages rec set, as the next request would see
// them.
func Flashes(fs *flash.Store, rec *httptest.ResponseRecorder) []flash.Message {
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	latest := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		latest[c.Name] = c
	}
	for _, c := range latest {
		next.AddCookie(c)
	}
	return fs.Pop(httptest.NewRecorder(), next)
}

// AssertRedirect checks for a 303 to the expected location.
func AssertRedirect(t interface{ Errorf(string, ...any) }, rec *httptest.ResponseRecorder, want string) {
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected 303 See Other, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("redirect location: got %q, want %q", loc, want)
	}
}

// AssertFlash checks that rec set exactly one flash of cat with text.
func AssertFlash(t interface{ Errorf(string, ...any) }, fs *flash.Store, rec *httptest.ResponseRecorder, cat flash.Category, text string) {
	got := Flashes(fs, rec)
	if len(got) != 1 || got[0].Category != cat || got[0].Text != text {
		t.Errorf("flashes = %+v, want one %s %q", got, cat, text)
	}
}
