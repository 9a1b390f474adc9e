// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/acuerdohq/acuerdo/internal/app/store/oauthstate"
	"github.com/acuerdohq/acuerdo/internal/app/store/sessions"
	"go.uber.org/zap"
)

// RevokedSessionPurgeJob deletes session records revoked more than a day
// ago. Expired records are reaped by the TTL index; revoked ones linger
// until this job removes them.
func RevokedSessionPurgeJob(sessStore *sessions.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "revoked-session-purge",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := sessStore.PurgeRevoked(ctx, 24*time.Hour)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("purged revoked sessions", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// OAuthStateCleanupJob removes expired OAuth state tokens. This is a
// backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}
