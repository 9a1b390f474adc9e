// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging, CORS); AppConfig is
// everything specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Credential signing and cookie configuration
	TokenSecret   string        // HMAC key for signing bearer credentials
	TokenExpiry   time.Duration // Credential lifetime
	SessionKey    string        // Secret key for signing session cookies
	SessionName   string        // Cookie name
	SessionDomain string        // Cookie domain (blank means current host)

	// Base URL for OAuth callbacks
	BaseURL string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Abuse limits
	LoginRateLimit  int           // Login attempts per client+email per window
	LoginRateWindow time.Duration // Window for the login limit
	JoinRateLimit   int           // Join attempts per client per window
	JoinRateWindow  time.Duration // Window for the join limit

	// Product policy
	RequireAgreementText bool // Reject acceptance while the agreement is empty
}
