// internal/app/features/services/handler.go
package services

import (
	"time"

	"github.com/acuerdohq/acuerdo/internal/app/lifecycle"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/acuerdohq/acuerdo/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves the service agreement endpoints. All routes require a
// verified identity; the engine enforces party-level authorization.
type Handler struct {
	Engine  *lifecycle.Engine
	ErrLog  *httpjson.ErrorLogger
	Log     *zap.Logger
	joinLim *ratelimit.Limiter
}

// NewHandler creates a services Handler. joinLimit/joinWindow bound join
// attempts per client, which keeps invite codes impractical to guess.
func NewHandler(engine *lifecycle.Engine, errLog *httpjson.ErrorLogger, joinLimit int, joinWindow time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:  engine,
		ErrLog:  errLog,
		Log:     logger,
		joinLim: ratelimit.New(joinLimit, joinWindow),
	}
}
