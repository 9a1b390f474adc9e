// internal/app/features/authn/handler.go
package authn

import (
	"time"

	"github.com/acuerdohq/acuerdo/internal/app/system/auth"
	"github.com/acuerdohq/acuerdo/internal/app/system/httpjson"
	"github.com/acuerdohq/acuerdo/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves password sign-up, login, logout, and the current-user
// endpoint.
type Handler struct {
	DB      *mongo.Database
	Auth    *auth.Manager
	ErrLog  *httpjson.ErrorLogger
	Log     *zap.Logger
	limiter *ratelimit.Limiter
}

// NewHandler creates an authn Handler. loginLimit/loginWindow bound login
// attempts per client+email.
func NewHandler(db *mongo.Database, authMgr *auth.Manager, errLog *httpjson.ErrorLogger, loginLimit int, loginWindow time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Auth:    authMgr,
		ErrLog:  errLog,
		Log:     logger,
		limiter: ratelimit.New(loginLimit, loginWindow),
	}
}
