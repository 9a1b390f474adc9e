// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/acuerdohq/acuerdo/internal/app/features/authgoogle"
	authnfeature "github.com/acuerdohq/acuerdo/internal/app/features/authn"
	healthfeature "github.com/acuerdohq/acuerdo/internal/app/features/health"
	servicesfeature "github.com/acuerdohq/acuerdo/internal/app/features/services"
	"github.com/acuerdohq/acuerdo/internal/app/lifecycle"
	servicestore "github.com/acuerdohq/acuerdo/internal/app/store/services"
	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. It builds the auth manager, the
// lifecycle engine, and the feature handlers, then mounts each feature's
// subrouter.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	authMgr, err := auth.NewManager(
		deps.MongoDatabase,
		appCfg.TokenSecret,
		appCfg.TokenExpiry,
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		secure,
		logger,
	)
	if err != nil {
		logger.Error("auth manager init failed", zap.Error(err))
		return nil, err
	}

	engine := lifecycle.NewEngine(
		servicestore.New(deps.MongoDatabase),
		lifecycle.Policy{RequireAgreementText: appCfg.RequireAgreementText},
		logger,
	)

	errLog := httpjson.NewErrorLogger(logger)

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authnHandler := authnfeature.NewHandler(
		deps.MongoDatabase, authMgr, errLog,
		appCfg.LoginRateLimit, appCfg.LoginRateWindow, logger)
	r.Mount("/auth", authnfeature.Routes(authnHandler, authMgr))
	r.Mount("/me", authnfeature.MeRoutes(authnHandler, authMgr))

	googleHandler := authgooglefeature.NewHandler(
		deps.MongoDatabase, authMgr,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	servicesHandler := servicesfeature.NewHandler(
		engine, errLog,
		appCfg.JoinRateLimit, appCfg.JoinRateWindow, logger)
	r.Mount("/services", servicesfeature.Routes(servicesHandler, authMgr))

	return r, nil
}
