// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	servicestore "github.com/acuerdohq/acuerdo/internal/app/store/services"
	sessionstore "github.com/acuerdohq/acuerdo/internal/app/store/sessions"
	userstore "github.com/acuerdohq/acuerdo/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates every collection index at startup. Each store's
// ensure call is idempotent; errors are aggregated so any problem is
// visible and startup can fail fast.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := servicestore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "services: "+err.Error())
	}
	if err := userstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := sessionstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "sessions: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}

	logger.Info("collection indexes ensured",
		zap.Strings("collections", []string{"services", "users", "sessions"}))
	return nil
}
