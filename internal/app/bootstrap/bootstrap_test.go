package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/yelpcamp/internal/app/resources"
	"github.com/dalemusser/yelpcamp/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "yelp-camp",
		SessionKey:    devSessionKey,
		SessionName:   "yelpcamp-session",
		SessionMaxAge: time.Hour,
		CSRFKey:       devCSRFKey,
		BaseURL:       "http://localhost:3000",
	}
}

func TestValidateAppConfig(t *testing.T) {
	strong := strings.Repeat("k", minProdKeyLen)

	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"dev defaults", "dev", func(*AppConfig) {}, false},
		{"prod rejects dev session key", "prod", func(c *AppConfig) { c.CSRFKey = strong }, true},
		{"prod rejects dev csrf key", "prod", func(c *AppConfig) { c.SessionKey = strong }, true},
		{"prod with strong keys", "prod", func(c *AppConfig) { c.SessionKey = strong; c.CSRFKey = strong + "x" }, false},
		{"prod rejects short key", "prod", func(c *AppConfig) { c.SessionKey = "short"; c.CSRFKey = strong }, true},
		{"empty session key", "dev", func(c *AppConfig) { c.SessionKey = "" }, true},
		{"empty database", "dev", func(c *AppConfig) { c.MongoDatabase = "" }, true},
		{"google id without secret", "dev", func(c *AppConfig) { c.GoogleClientID = "id" }, true},
		{"google secret without id", "dev", func(c *AppConfig) { c.GoogleClientSecret = "secret" }, true},
		{"google pair", "dev", func(c *AppConfig) { c.GoogleClientID = "id"; c.GoogleClientSecret = "secret" }, false},
		{"negative sweep interval", "dev", func(c *AppConfig) { c.OrphanSweepInterval = -time.Second }, true},
		{"sweeper disabled", "dev", func(c *AppConfig) { c.OrphanSweepInterval = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateAppConfig(tt.env, cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfig_RejectsBadMongoURI(t *testing.T) {
	cfg := validConfig()
	cfg.MongoURI = "postgres://localhost"

	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, testLogger()); err == nil {
		t.Error("expected an error for a non-mongo URI")
	}
}

func TestGoogleEnabled(t *testing.T) {
	cfg := validConfig()
	if cfg.GoogleEnabled() {
		t.Error("GoogleEnabled() = true with no credentials")
	}
	cfg.GoogleClientID, cfg.GoogleClientSecret = "id", "secret"
	if !cfg.GoogleEnabled() {
		t.Error("GoogleEnabled() = false with both credentials")
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	resources.LoadSharedTemplates()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	h, err := BuildHandler(&config.CoreConfig{Env: "test"}, validConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	return h
}

func TestBuildHandler_Health(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rec.Code)
	}
}

func TestBuildHandler_RejectsFormWithoutCSRFToken(t *testing.T) {
	h := newTestRouter(t)

	form := url.Values{"campground[title]": {"Sneaky Camp"}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, testutil.NewFormRequest(http.MethodPost, "/campgrounds", form))

	if rec.Code != http.StatusForbidden {
		t.Errorf("POST /campgrounds without token = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Your form expired") {
		t.Errorf("body = %q, want the expired-form message", rec.Body.String())
	}
}

func TestBuildHandler_AnonymousNewRedirectsToLogin(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("GET /campgrounds/new = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Errorf("Location = %q, want /login...", loc)
	}
}

func TestBuildHandler_UnknownPathIs404(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no-such-page", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /no-such-page = %d, want 404", rec.Code)
	}
}
