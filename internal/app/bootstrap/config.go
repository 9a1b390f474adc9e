// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Development-only defaults; ValidateConfig rejects them in prod.
const (
	devTokenSecret = "dev-only-change-me-0123456789ABCDEF"
	devSessionKey  = "dev-only-change-me-please-0123456789ABCDEF"
)

// appConfigKeys defines the configuration keys for Acuerdo.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ACUERDO_MONGO_URI, ACUERDO_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "acuerdo", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "token_secret", Default: devTokenSecret, Desc: "HMAC key for signing bearer credentials (must be strong in production)"},
	{Name: "token_expiry", Default: "24h", Desc: "Bearer credential lifetime (e.g., 24h, 30m)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session cookie signing key (must be strong in production)"},
	{Name: "session_name", Default: "acuerdo-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Externally visible origin for OAuth callbacks"},

	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per client+email per window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Window for the login rate limit"},
	{Name: "join_rate_limit", Default: 10, Desc: "Invite-code join attempts allowed per client per window"},
	{Name: "join_rate_window", Default: "1m", Desc: "Window for the join rate limit"},

	{Name: "require_agreement_text", Default: false, Desc: "Reject agreement acceptance while the terms are empty"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, ACUERDO_* for app), and
// command-line flags, merging with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ACUERDO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenSecret:   appValues.String("token_secret"),
		TokenExpiry:   appValues.Duration("token_expiry", 24*time.Hour),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		BaseURL: appValues.String("base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),
		JoinRateLimit:   appValues.Int("join_rate_limit"),
		JoinRateWindow:  appValues.Duration("join_rate_window", time.Minute),

		RequireAgreementText: appValues.Bool("require_agreement_text"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any
// backends are touched.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.TokenSecret == "" {
		return fmt.Errorf("token_secret must be set")
	}
	if coreCfg.Env == "prod" {
		if appCfg.TokenSecret == devTokenSecret {
			return fmt.Errorf("token_secret must be changed from its default in prod")
		}
		if appCfg.SessionKey == devSessionKey {
			return fmt.Errorf("session_key must be changed from its default in prod")
		}
	}
	if appCfg.TokenExpiry <= 0 {
		return fmt.Errorf("token_expiry must be positive")
	}
	if appCfg.LoginRateLimit <= 0 || appCfg.JoinRateLimit <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}

	// One credential set implies the other is expected too.
	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return fmt.Errorf("google_client_id and google_client_secret must be set together")
	}

	return nil
}
