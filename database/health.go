package database

import (
	"context"
	"time"

	"github.com/pkg/errors"

	Logger "github.com/giftpropaganda/news-backend/utils/log"
)

// Readiness retry policy: linear backoff, attempt*readyBackoffStep between
// attempts. Deliberately not exponential and not jittered so the startup
// timeline stays predictable.
const (
	readyAttempts    = 5
	readyBackoffStep = 3 * time.Second
)

// Probe executes a trivial round trip and reports liveness. Errors never
// cross this boundary; they are logged and folded into the boolean, which is
// what the health endpoint reports.
func (s *Store) Probe(ctx context.Context) bool {
	if err := s.probe(ctx); err != nil {
		Logger.Log.Errorf("database probe failed: %v", err)
		return false
	}
	return true
}

func (s *Store) probe(ctx context.Context) error {
	return s.handle().WithContext(ctx).Exec("SELECT 1").Error
}

// AwaitReady blocks until a probe succeeds, retrying up to readyAttempts
// times with strictly increasing delays. After the budget is exhausted it
// returns ErrConnectionUnavailable carrying the last probe error; the caller
// decides between degraded mode and aborting startup.
func (s *Store) AwaitReady(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= readyAttempts; attempt++ {
		lastErr = s.probe(ctx)
		if lastErr == nil {
			if attempt > 1 {
				Logger.Log.Infof("database reachable after %d attempts", attempt)
			}
			return nil
		}
		if attempt == readyAttempts {
			break
		}

		delay := time.Duration(attempt) * readyBackoffStep
		Logger.Log.Warnf("database not ready (attempt %d/%d), retrying in %s: %v",
			attempt, readyAttempts, delay, lastErr)
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "awaiting database")
		case <-s.after(delay):
		}
	}
	return errors.Wrapf(ErrConnectionUnavailable,
		"%d probe attempts exhausted, last error: %v", readyAttempts, lastErr)
}
