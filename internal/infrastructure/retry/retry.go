package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

type Action int

const (
	Stop  Action = iota // permanent error, abort immediately
	Retry               // transient error, back off and try again
)

type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	OnRetry        func(attempt int, err error, backoff time.Duration)
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

type Classify func(err error) Action
type Operation[T any] func() (T, error)
type VoidOperation func() error

// Always treats every error as transient.
func Always(error) Action { return Retry }

func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		return zero, fmt.Errorf("retry: MaxAttempts must be >= 1, got %d", p.MaxAttempts)
	}
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if classify == nil {
		classify = Always
	}

	backoff := p.InitialBackoff
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		var val T
		val, err = op()
		if err == nil {
			return val, nil
		}

		if classify(err) == Stop {
			return zero, &PermanentError{Err: err}
		}
		if attempt == p.MaxAttempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-clock.After(backoff):
			backoff *= 2
			if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
				backoff = p.MaxBackoff
			}
		case <-ctx.Done():
			return zero, fmt.Errorf("retry: context cancelled: %w", ctx.Err())
		}
	}

	return zero, fmt.Errorf("retry: failed after %d attempts: %w", p.MaxAttempts, err)
}

func DoVoid(ctx context.Context, p Policy, classify Classify, op VoidOperation) error {
	_, err := Do(ctx, p, classify, func() (struct{}, error) { return struct{}{}, op() })
	return err
}

type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
