package authgoogle_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/yelpcamp/internal/app/features/authgoogle"
	userstore "github.com/dalemusser/yelpcamp/internal/app/store/users"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type harness struct {
	h       *authgoogle.Handler
	db      *mongo.Database
	flashes *flash.Store
}

func newTestHandler(t *testing.T, clientID, clientSecret string) *harness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(testutil.TestSessionKey, "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	fs := testutil.NewFlashStore()
	h := authgoogle.NewHandler(db, sm, fs, clientID, clientSecret, "http://localhost:8080", logger)
	return &harness{h: h, db: db, flashes: fs}
}

// fakeGoogle serves a token endpoint and a userinfo endpoint.
func fakeGoogle(t *testing.T, googleID, email string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-access-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             googleID,
			"email":          email,
			"verified_email": true,
			"name":           "Test Camper",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func callback(h *authgoogle.Handler, rawQuery string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback?"+rawQuery, nil))
	return rec
}

func TestNewHandler(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")

	if hs.h.RedirectURL != "http://localhost:8080/auth/google/callback" {
		t.Errorf("RedirectURL = %q", hs.h.RedirectURL)
	}
	if hs.h.UserInfoURL != authgoogle.GoogleUserInfoURL {
		t.Errorf("UserInfoURL = %q", hs.h.UserInfoURL)
	}
}

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name         string
		clientID     string
		clientSecret string
		want         bool
	}{
		{"both set", "id", "secret", true},
		{"missing id", "", "secret", false},
		{"missing secret", "id", "", false},
		{"neither", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &authgoogle.Handler{ClientID: tt.clientID, ClientSecret: tt.clientSecret}
			if got := h.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	hs := newTestHandler(t, "", "")

	rec := httptest.NewRecorder()
	hs.h.ServeLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	testutil.AssertRedirect(t, rec, "/login")
	testutil.AssertFlash(t, hs.flashes, rec, flash.Error, authgoogle.MsgNotConfigured)
}

func TestServeLogin_RedirectsWithStoredState(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")

	rec := httptest.NewRecorder()
	hs.h.ServeLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/google?return=/campgrounds/new", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	if loc.Host != "accounts.google.com" {
		t.Errorf("redirect host = %q, want accounts.google.com", loc.Host)
	}
	q := loc.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	state := q.Get("state")
	if state == "" {
		t.Fatal("redirect carries no state")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	var doc struct {
		ReturnURL string `bson:"return_url"`
	}
	if err := hs.db.Collection("oauth_states").FindOne(ctx, bson.M{"state": state}).Decode(&doc); err != nil {
		t.Fatalf("state not stored: %v", err)
	}
	if doc.ReturnURL != "/campgrounds/new" {
		t.Errorf("stored return_url = %q", doc.ReturnURL)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")

	rec := callback(hs.h, "error=access_denied")

	testutil.AssertRedirect(t, rec, "/login")
	testutil.AssertFlash(t, hs.flashes, rec, flash.Error, authgoogle.MsgCancelled)
}

func TestServeCallback_MissingState(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")

	rec := callback(hs.h, "code=abc")

	testutil.AssertRedirect(t, rec, "/login")
	testutil.AssertFlash(t, hs.flashes, rec, flash.Error, authgoogle.MsgBadState)
}

func TestServeCallback_UnknownState(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")

	rec := callback(hs.h, "code=abc&state=never-issued")

	testutil.AssertRedirect(t, rec, "/login")
	testutil.AssertFlash(t, hs.flashes, rec, flash.Error, authgoogle.MsgBadState)
}

func TestServeCallback_ExpiredState(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := hs.h.StateStore.Save(ctx, "stale", "", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec := callback(hs.h, "code=abc&state=stale")

	testutil.AssertRedirect(t, rec, "/login")
	testutil.AssertFlash(t, hs.flashes, rec, flash.Error, authgoogle.MsgBadState)
}

func TestServeCallback_SignsInAndCreatesUser(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")
	srv := fakeGoogle(t, "google-123", "happy.camper@example.com")
	hs.h.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	hs.h.UserInfoURL = srv.URL + "/userinfo"

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := hs.h.StateStore.Save(ctx, "good-state", "/campgrounds/new", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec := callback(hs.h, "code=auth-code&state=good-state")

	testutil.AssertRedirect(t, rec, "/campgrounds/new")
	testutil.AssertFlash(t, hs.flashes, rec, flash.Success, authgoogle.MsgWelcome)

	var session bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge >= 0 {
			session = true
		}
	}
	if !session {
		t.Error("expected the session cookie to be set")
	}

	u, err := userstore.New(hs.db).GetByUsername(ctx, "happycamper")
	if err != nil {
		t.Fatalf("created user not found: %v", err)
	}
	if u.GoogleID == nil || *u.GoogleID != "google-123" {
		t.Errorf("GoogleID = %v, want google-123", u.GoogleID)
	}

	// The state is single-use.
	again := callback(hs.h, "code=auth-code&state=good-state")
	testutil.AssertRedirect(t, again, "/login")
}

func TestServeCallback_ReturningUserKeepsAccount(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")
	srv := fakeGoogle(t, "google-456", "ranger@example.com")
	hs.h.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	hs.h.UserInfoURL = srv.URL + "/userinfo"

	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, state := range []string{"s1", "s2"} {
		if err := hs.h.StateStore.Save(ctx, state, "", time.Now().Add(time.Minute)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		rec := callback(hs.h, "code=c&state="+state)
		testutil.AssertRedirect(t, rec, "/campgrounds")
	}

	n, err := hs.db.Collection("users").CountDocuments(ctx, bson.M{"google_id": "google-456"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("users linked to google-456 = %d, want 1", n)
	}
}

func TestServeCallback_TokenExchangeFails(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()
	hs.h.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := hs.h.StateStore.Save(ctx, "st", "", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec := callback(hs.h, "code=bad&state=st")

	testutil.AssertRedirect(t, rec, "/login")
	testutil.AssertFlash(t, hs.flashes, rec, flash.Error, authgoogle.MsgFailed)
}

func TestServeCallback_ExternalReturnIgnored(t *testing.T) {
	hs := newTestHandler(t, "client-id", "client-secret")
	srv := fakeGoogle(t, "google-789", "scout@example.com")
	hs.h.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	hs.h.UserInfoURL = srv.URL + "/userinfo"

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := hs.h.StateStore.Save(ctx, "st", "https://evil.example/phish", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec := callback(hs.h, "code=c&state=st")

	if loc := rec.Header().Get("Location"); strings.Contains(loc, "evil.example") {
		t.Errorf("redirected off-site to %q", loc)
	}
}
