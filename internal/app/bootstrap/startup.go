// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/acuerdohq/acuerdo/internal/app/store/oauthstate"
	"github.com/acuerdohq/acuerdo/internal/app/store/sessions"
	"github.com/acuerdohq/acuerdo/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// jobRunner holds the background job runner between Startup and Shutdown.
var jobRunner *tasks.Runner

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.GoogleClientID == "" {
		logger.Info("Google sign-in disabled; no client credentials configured")
	}

	jobRunner = tasks.NewRunner(logger,
		tasks.RevokedSessionPurgeJob(sessions.New(deps.MongoDatabase), logger),
		tasks.OAuthStateCleanupJob(oauthstate.New(deps.MongoDatabase), logger),
	)
	jobRunner.Start()

	return nil
}
