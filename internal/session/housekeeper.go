package session

import (
	"context"
	"time"

	slogctx "github.com/veqryn/slog-context"
)

// CleanupIdleSessions deletes sessions that have seen no activity for longer
// than the given timeout. Sessions in the processing step get twice the
// timeout so that a slow pipeline run is not evicted under its feet.
func CleanupIdleSessions(ctx context.Context, repo Repository, timeout time.Duration) error {
	sessions, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		limit := timeout
		if s.Step == StepProcessing {
			limit = 2 * timeout
		}
		if time.Since(s.LastActivity) < limit {
			continue
		}
		if err := repo.Delete(ctx, s.UserID); err != nil {
			slogctx.Warn(ctx, "Could not delete idle session", "user_id", s.UserID, "error", err)
			continue
		}
		slogctx.Info(ctx, "Deleted idle session", "user_id", s.UserID, "step", s.Step)
	}
	return nil
}
