package translator

import (
	"context"
	"time"

	"github.com/MimeLyc/bilingual-news/pkg/log"
)

type EventKind string

const (
	EventAttemptStarted   EventKind = "attempt_started"
	EventAttemptSucceeded EventKind = "attempt_succeeded"
	EventAttemptFailed    EventKind = "attempt_failed"
	EventRetryScheduled   EventKind = "retry_scheduled"
	EventQualityWarning   EventKind = "quality_warning"
	EventFallback         EventKind = "fallback"
)

// Event is one observability record. Operation is "generate-tags" or
// "translate"; fields not relevant to Kind are zero.
type Event struct {
	Kind        EventKind
	Operation   string
	Direction   Direction
	Attempt     int
	MaxAttempts int
	Latency     time.Duration
	Delay       time.Duration
	Err         error
	Warning     *Warning
}

// EventSink receives events. Implementations must be safe for concurrent use
// and must not block for long.
type EventSink interface {
	Record(Event)
}

type EventSinkFunc func(Event)

func (f EventSinkFunc) Record(e Event) {
	f(e)
}

type nopSink struct{}

func (nopSink) Record(Event) {}

// LogSink writes events through the package logger.
type LogSink struct{}

func (LogSink) Record(e Event) {
	switch e.Kind {
	case EventAttemptStarted:
		log.Debug("[%s %s] attempt %d/%d started", e.Operation, e.Direction, e.Attempt, e.MaxAttempts)
	case EventAttemptSucceeded:
		log.Info("[%s %s] attempt %d/%d succeeded in %s", e.Operation, e.Direction, e.Attempt, e.MaxAttempts, e.Latency)
	case EventAttemptFailed:
		log.Warn("[%s %s] attempt %d/%d failed after %s: %v", e.Operation, e.Direction, e.Attempt, e.MaxAttempts, e.Latency, e.Err)
	case EventRetryScheduled:
		log.Info("[%s %s] retrying in %s", e.Operation, e.Direction, e.Delay)
	case EventQualityWarning:
		if e.Warning != nil {
			log.Warn("[%s %s] quality warning: %s", e.Operation, e.Direction, e.Warning)
		}
	case EventFallback:
		log.Error("[%s %s] using fallback: %v", e.Operation, e.Direction, e.Err)
	}
}

type callInfoKey struct{}

type callInfo struct {
	operation string
	direction Direction
}

func withCallInfo(ctx context.Context, operation string, direction Direction) context.Context {
	return context.WithValue(ctx, callInfoKey{}, callInfo{operation: operation, direction: direction})
}

func callInfoFrom(ctx context.Context) callInfo {
	if info, ok := ctx.Value(callInfoKey{}).(callInfo); ok {
		return info
	}
	return callInfo{operation: "call"}
}
