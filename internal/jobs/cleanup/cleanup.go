package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Sessions expire lazily when a stale token is presented, so tokens that
// are never used again would sit in the collection forever. The job
// sweeps them out in the background.

type expiredSessionStore interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type Job struct {
	sessions expiredSessionStore
	now      func() time.Time
	logger   *zap.Logger
}

func NewSessionCleanupJob(sessions expiredSessionStore, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		sessions: sessions,
		now:      time.Now,
		logger:   logger,
	}
}

// Run deletes every session whose expiry has passed. Safe to run
// concurrently with request traffic; an in-flight renewal keeps its
// session alive by moving the expiry forward.
func (j *Job) Run(ctx context.Context) error {
	if j.sessions == nil {
		return nil
	}

	deleted, err := j.sessions.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	if deleted > 0 {
		j.logger.Info("expired sessions purged", zap.Int64("deleted", deleted))
	}

	return nil
}

// RunLoop runs the sweep on the given interval until the context ends.
func (j *Job) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	if err := j.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				return err
			}
		}
	}
}
