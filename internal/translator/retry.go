package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = time.Second
	DefaultAttemptTimeout = 30 * time.Second

	// maxBackoffShift caps the exponent so large attempt counts cannot overflow.
	maxBackoffShift = 16
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryingClient calls a TextGenerator with bounded exponential backoff.
type RetryingClient struct {
	gen            TextGenerator
	maxAttempts    int
	baseDelay      time.Duration
	attemptTimeout time.Duration
	sink           EventSink
	sleep          Sleeper
}

type RetryOption func(*RetryingClient)

func WithRetryAttempts(n int) RetryOption {
	return func(c *RetryingClient) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithRetryBaseDelay(d time.Duration) RetryOption {
	return func(c *RetryingClient) {
		if d >= 0 {
			c.baseDelay = d
		}
	}
}

// WithRetryAttemptTimeout bounds each attempt. Zero disables the per-attempt timeout.
func WithRetryAttemptTimeout(d time.Duration) RetryOption {
	return func(c *RetryingClient) {
		if d >= 0 {
			c.attemptTimeout = d
		}
	}
}

func WithRetrySink(sink EventSink) RetryOption {
	return func(c *RetryingClient) {
		if sink != nil {
			c.sink = sink
		}
	}
}

func WithRetrySleeper(sleep Sleeper) RetryOption {
	return func(c *RetryingClient) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

func NewRetryingClient(gen TextGenerator, opts ...RetryOption) *RetryingClient {
	c := &RetryingClient{
		gen:            gen,
		maxAttempts:    DefaultMaxAttempts,
		baseDelay:      DefaultBaseDelay,
		attemptTimeout: DefaultAttemptTimeout,
		sink:           nopSink{},
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RetryingClient) MaxAttempts() int {
	return c.maxAttempts
}

// Backoff returns the delay before the attempt following attempt (1-indexed).
func (c *RetryingClient) Backoff(attempt int) time.Duration {
	shift := attempt - 1
	if shift < 0 {
		shift = 0
	}
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	return c.baseDelay << shift
}

// callState is the per-call retry state. Nothing in it is shared between calls.
type callState struct {
	attempt int
	lastErr error
}

// Call sends prompt until an attempt returns non-empty text, the attempt
// budget is spent, or ctx is done. Failures are *Error with type
// ErrExternalService and the number of attempts made.
func (c *RetryingClient) Call(ctx context.Context, prompt string) (string, error) {
	info := callInfoFrom(ctx)
	state := callState{}

	for state.attempt < c.maxAttempts {
		state.attempt++
		text, err := c.attempt(ctx, prompt, state.attempt, info)
		if err == nil {
			return text, nil
		}
		state.lastErr = err

		if ctx.Err() != nil {
			return "", c.fail(state, "call cancelled", errors.Join(ctx.Err(), err))
		}
		if state.attempt == c.maxAttempts {
			break
		}

		delay := c.Backoff(state.attempt)
		c.sink.Record(Event{
			Kind:        EventRetryScheduled,
			Operation:   info.operation,
			Direction:   info.direction,
			Attempt:     state.attempt,
			MaxAttempts: c.maxAttempts,
			Delay:       delay,
		})
		if err := c.sleep(ctx, delay); err != nil {
			return "", c.fail(state, "call cancelled during backoff", errors.Join(err, state.lastErr))
		}
	}

	return "", c.fail(state, "external service failed", state.lastErr)
}

func (c *RetryingClient) attempt(ctx context.Context, prompt string, n int, info callInfo) (string, error) {
	c.sink.Record(Event{
		Kind:        EventAttemptStarted,
		Operation:   info.operation,
		Direction:   info.direction,
		Attempt:     n,
		MaxAttempts: c.maxAttempts,
	})

	attemptCtx := ctx
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.gen.GenerateText(attemptCtx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty response")
	}
	latency := time.Since(start)

	if err != nil {
		c.sink.Record(Event{
			Kind:        EventAttemptFailed,
			Operation:   info.operation,
			Direction:   info.direction,
			Attempt:     n,
			MaxAttempts: c.maxAttempts,
			Latency:     latency,
			Err:         err,
		})
		return "", err
	}

	c.sink.Record(Event{
		Kind:        EventAttemptSucceeded,
		Operation:   info.operation,
		Direction:   info.direction,
		Attempt:     n,
		MaxAttempts: c.maxAttempts,
		Latency:     latency,
	})
	return text, nil
}

func (c *RetryingClient) fail(state callState, message string, cause error) error {
	return &Error{
		Type:     ErrExternalService,
		Message:  message,
		Attempts: state.attempt,
		Cause:    cause,
	}
}
