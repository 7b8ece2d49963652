package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/yelpcamp/internal/app/features/logout"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*logout.Handler, *flash.Store) {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager(testutil.TestSessionKey, "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	fs := testutil.NewFlashStore()
	return logout.NewHandler(sessionMgr, fs, logger), fs
}

func TestServeLogout_RedirectsWithGoodbye(t *testing.T) {
	handler, fs := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	testutil.AssertRedirect(t, rec, "/campgrounds")
	testutil.AssertFlash(t, fs, rec, flash.Success, logout.MsgGoodbye)
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestServeLogout_HTMX_ReturnsHXRedirect(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/campgrounds" {
		t.Errorf("HX-Redirect = %q, want /campgrounds", got)
	}
}
