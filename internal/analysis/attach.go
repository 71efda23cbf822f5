package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eleven-am/live-coach/internal/shared"
)

// AttachWithRetry keeps calling Attach on a doubling schedule until it
// succeeds, the attempts run out, or ctx ends.
func (l *Loop) AttachWithRetry(ctx context.Context, backoff shared.BackoffConfig) error {
	cfg := shared.NormalizeBackoff(backoff)
	delay := cfg.Initial

	for attempts := 1; ; attempts++ {
		err := l.Attach(ctx)
		if err == nil {
			if attempts > 1 {
				l.logger.Info("telemetry attached after retry", "attempts", attempts)
			}
			return nil
		}
		if errors.Is(err, ErrInvalidState) {
			return err
		}
		if cfg.Exhausted(attempts) {
			return fmt.Errorf("attach gave up after %d attempts: %w", attempts, err)
		}

		l.logger.Debug("attach retry scheduled", "attempt", attempts, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = cfg.Next(delay)
	}
}
