package kgo

import (
	"context"
	"time"
)

// BackoffSchedule computes the delay before the nth (1-indexed) retry
// attempt.
type BackoffSchedule func(attempt int) time.Duration

// ExponentialBackoff returns a BackoffSchedule doubling from base up to
// max, the schedule shape both reconnect and request-retry backoff in
// this package use (spec §4.3 "Backoff: each failed connect attempt
// increases delay per the configured retry schedule").
func ExponentialBackoff(base, max time.Duration) BackoffSchedule {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt; i++ {
			d *= 2
			if d >= max {
				return max
			}
		}
		if d > max {
			d = max
		}
		return d
	}
}

// retry is the single small primitive both Transport reconnection and
// Router dispatch are built on (Design Note: "abstract stamped-closure
// retry helpers ... as a single small retry(operation, onError,
// onGiveUp, cancel) primitive; both Transport and Router consume it").
//
// operation is attempted up to maxAttempts times (maxAttempts <= 0 means
// unbounded). Between attempts, onError is called with the failure and
// the 1-indexed attempt number it occurred on, then the goroutine sleeps
// per backoff(attempt) unless cancel fires first. If every attempt fails,
// onGiveUp is called with the last error and that error is returned.
func retry(
	ctx context.Context,
	maxAttempts int,
	backoff BackoffSchedule,
	operation func(attempt int) error,
	onError func(attempt int, err error),
	onGiveUp func(err error),
) error {
	var lastErr error
	for attempt := 1; maxAttempts <= 0 || attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := operation(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if onError != nil {
			onError(attempt, err)
		}
		if maxAttempts > 0 && attempt == maxAttempts {
			break
		}
		delay := backoff(attempt)
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	if onGiveUp != nil {
		onGiveUp(lastErr)
	}
	return lastErr
}
