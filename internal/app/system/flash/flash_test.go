package flash_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

func newStore() *flash.Store {
	cs := sessions.NewCookieStore([]byte("test-session-key-must-be-32-chars-long"))
	return flash.New(cs, "test-session", zap.NewNop())
}

// carry copies cookies set on rec onto a fresh request, the way a browser
// would follow a redirect. The last Set-Cookie for a name wins.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	latest := map[string]*http.Cookie{}
	var order []string
	for _, c := range rec.Result().Cookies() {
		if _, seen := latest[c.Name]; !seen {
			order = append(order, c.Name)
		}
		latest[c.Name] = c
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, name := range order {
		req.AddCookie(latest[name])
	}
	return req
}

func TestAddThenPop(t *testing.T) {
	fs := newStore()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/campgrounds", nil)
	if err := fs.Add(rec, req, flash.Success, "Successfully made a campground"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	next := httptest.NewRecorder()
	got := fs.Pop(next, carry(rec))

	if len(got) != 1 {
		t.Fatalf("Pop returned %d messages, want 1", len(got))
	}
	if got[0].Category != flash.Success || got[0].Text != "Successfully made a campground" {
		t.Errorf("unexpected message %+v", got[0])
	}

	// The cleared cookie replaces the old one; a second pop sees nothing.
	if again := fs.Pop(httptest.NewRecorder(), carry(next)); len(again) != 0 {
		t.Errorf("second Pop returned %v, want none", again)
	}
}

func TestPop_OrdersSuccessBeforeError(t *testing.T) {
	fs := newStore()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	fs.Error(rec, req, "Cannot find campground")
	fs.Success(rec, req, "Welcome back!")

	got := fs.Pop(httptest.NewRecorder(), carry(rec))
	if len(got) != 2 {
		t.Fatalf("Pop returned %d messages, want 2", len(got))
	}
	if got[0].Category != flash.Success || got[1].Category != flash.Error {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestPop_NoCookie(t *testing.T) {
	fs := newStore()
	rec := httptest.NewRecorder()

	if got := fs.Pop(rec, httptest.NewRequest(http.MethodGet, "/", nil)); got != nil {
		t.Errorf("Pop without cookie = %v, want nil", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("Pop with nothing queued should not write a cookie")
	}
}

func TestName(t *testing.T) {
	if got := newStore().Name(); got != "test-session-flash" {
		t.Errorf("Name() = %q, want test-session-flash", got)
	}
}
