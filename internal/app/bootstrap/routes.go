// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	authgooglefeature "github.com/dalemusser/yelpcamp/internal/app/features/authgoogle"
	campgroundsfeature "github.com/dalemusser/yelpcamp/internal/app/features/campgrounds"
	errorsfeature "github.com/dalemusser/yelpcamp/internal/app/features/errors"
	healthfeature "github.com/dalemusser/yelpcamp/internal/app/features/health"
	homefeature "github.com/dalemusser/yelpcamp/internal/app/features/home"
	loginfeature "github.com/dalemusser/yelpcamp/internal/app/features/login"
	logoutfeature "github.com/dalemusser/yelpcamp/internal/app/features/logout"
	registerfeature "github.com/dalemusser/yelpcamp/internal/app/features/register"
	reviewsfeature "github.com/dalemusser/yelpcamp/internal/app/features/reviews"
	userstore "github.com/dalemusser/yelpcamp/internal/app/store/users"
	"github.com/dalemusser/yelpcamp/internal/app/system/auth"
	"github.com/dalemusser/yelpcamp/internal/app/system/flash"
	"github.com/dalemusser/yelpcamp/internal/app/system/methodoverride"
	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Every request passes through, in order: request
// id, real IP, panic recovery, session user load, CSRF check and method
// override. Feature routers then apply their own auth gates.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Flashes live in their own cookie, signed with the session key.
	flashes := flash.New(sessionMgr.Store(), appCfg.SessionName, logger)
	sessionMgr.SetFlashStore(flashes)
	viewdata.Init(flashes)

	// LoadSessionUser fetches fresh user data on each request so a deleted
	// account is signed out immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(errLog.Recoverer)
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(csrfMiddleware(appCfg.CSRFKey, secure, errLog))
	r.Use(methodoverride.Middleware)

	r.NotFound(errLog.NotFound)
	r.MethodNotAllowed(errLog.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Landing page
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Accounts
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, flashes, appCfg.GoogleEnabled(), logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	registerHandler := registerfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, flashes, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, flashes, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(deps.MongoDatabase, sessionMgr, flashes,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Campgrounds and their reviews. The reviews router is mounted on the
	// longer pattern so chi does not hand /campgrounds/{id}/reviews to the
	// campground router.
	reviewsHandler := reviewsfeature.NewHandler(deps.MongoDatabase, errLog, flashes, logger)
	r.Mount("/campgrounds/{id}/reviews", reviewsfeature.Routes(reviewsHandler, sessionMgr))

	campgroundsHandler := campgroundsfeature.NewHandler(deps.MongoDatabase, errLog, flashes, logger)
	r.Mount("/campgrounds", campgroundsfeature.Routes(campgroundsHandler, sessionMgr))

	return r, nil
}

// csrfMiddleware protects every unsafe method with gorilla/csrf. The
// configured key is hashed to the 32 bytes the library requires. Over plain
// http (secure=false) requests are marked as such, otherwise the origin check
// expects https.
func csrfMiddleware(key string, secure bool, errLog *errorsfeature.ErrorLogger) func(http.Handler) http.Handler {
	sum := sha256.Sum256([]byte(key))
	protect := csrf.Protect(sum[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			errLog.LogForbidden(w, r, "csrf check failed", csrf.FailureReason(r),
				"Your form expired. Please go back and try again.", "/campgrounds")
		})),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
