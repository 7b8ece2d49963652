// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, env); everything YelpCamp
// itself needs lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in the driver pool
	MongoMinPoolSize uint64 // Connections kept warm in the driver pool

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: yelpcamp-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // How long a sign-in lasts

	// CSRFKey signs the form token cookie.
	CSRFKey string

	// Google OAuth; both blank disables "Sign in with Google".
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL used to build the OAuth callback (e.g., "https://yelpcamp.example").
	BaseURL string

	// OrphanSweepInterval is how often the review sweeper runs. Zero disables it.
	OrphanSweepInterval time.Duration

	// Per-operation database timeouts. Zero keeps the built-in default.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c AppConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
