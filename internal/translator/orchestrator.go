package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultMaxTags = 7

	// derivedTagLimit is the size of the locally derived list returned when
	// tag generation fails.
	derivedTagLimit = 5

	opGenerateTags = "generate-tags"
	opTranslate    = "translate"
)

// Orchestrator is the public entry point for tag generation and
// translation. It holds only configuration and is safe for concurrent use.
type Orchestrator struct {
	client  *RetryingClient
	maxTags int
	sink    EventSink
}

type options struct {
	retry   []RetryOption
	maxTags int
	sink    EventSink
}

type Option func(*options)

func WithMaxAttempts(n int) Option {
	return func(o *options) { o.retry = append(o.retry, WithRetryAttempts(n)) }
}

func WithBaseDelay(d time.Duration) Option {
	return func(o *options) { o.retry = append(o.retry, WithRetryBaseDelay(d)) }
}

func WithAttemptTimeout(d time.Duration) Option {
	return func(o *options) { o.retry = append(o.retry, WithRetryAttemptTimeout(d)) }
}

func WithSleeper(sleep Sleeper) Option {
	return func(o *options) { o.retry = append(o.retry, WithRetrySleeper(sleep)) }
}

func WithMaxTags(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTags = n
		}
	}
}

func WithSink(sink EventSink) Option {
	return func(o *options) {
		if sink != nil {
			o.sink = sink
		}
	}
}

func New(gen TextGenerator, opts ...Option) *Orchestrator {
	o := &options{maxTags: DefaultMaxTags, sink: nopSink{}}
	for _, opt := range opts {
		opt(o)
	}
	retry := append([]RetryOption{WithRetrySink(o.sink)}, o.retry...)
	return &Orchestrator{
		client:  NewRetryingClient(gen, retry...),
		maxTags: o.maxTags,
		sink:    o.sink,
	}
}

func (o *Orchestrator) MaxTags() int {
	return o.maxTags
}

// GenerateTags returns tags for an article in its own language. It never
// fails: when the service or its reply is unusable, tags are derived from
// the text itself.
func (o *Orchestrator) GenerateTags(ctx context.Context, title, content string, direction Direction) []string {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return []string{}
	}
	ctx = withCallInfo(ctx, opGenerateTags, direction)

	tags, err := o.generateTags(ctx, title, content, direction)
	if err != nil {
		o.sink.Record(Event{Kind: EventFallback, Operation: opGenerateTags, Direction: direction, Err: err})
		return DeriveTags(title+" "+content, derivedTagLimit)
	}
	return tags
}

func (o *Orchestrator) generateTags(ctx context.Context, title, content string, direction Direction) ([]string, error) {
	raw, err := o.client.Call(ctx, BuildTagPrompt(title, content, direction))
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := DecodeJSON(raw, &fields); err != nil {
		return nil, err
	}
	key := direction.SourceKey() + "Tags"
	list, err := decodeTags(fields[key])
	if err != nil {
		return nil, wrapError(err, ErrMalformedResponse, fmt.Sprintf("invalid %s", key))
	}
	tags := MergeTags(o.maxTags, list)
	if len(tags) == 0 {
		return nil, newError(ErrMalformedResponse, fmt.Sprintf("response has no %s", key))
	}
	return tags, nil
}

// Translate translates req in its own direction. It is equivalent to
// TranslateBidirectional.
func (o *Orchestrator) Translate(ctx context.Context, req Request) (Result, error) {
	return o.TranslateBidirectional(ctx, req)
}

// TranslateBidirectional translates req and merges tags. The only error it
// returns is ErrInvalidInput; service failures yield a fallback Result.
func (o *Orchestrator) TranslateBidirectional(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	ctx = withCallInfo(ctx, opTranslate, req.Direction)

	raw, err := o.client.Call(ctx, BuildTranslatePrompt(req.SourceTitle, req.SourceContent, req.SourceTags, req.Direction))
	if err != nil {
		return o.fallback(req, err), nil
	}

	payload, err := decodeTranslatePayload(raw, req.Direction)
	if err != nil {
		return o.fallback(req, err), nil
	}

	dstKey := req.Direction.TargetKey()
	warnings := Validate(map[string]string{
		dstKey + "Title":   payload.Title,
		dstKey + "Content": payload.Content,
	}, req.Direction)
	for i := range warnings {
		o.sink.Record(Event{Kind: EventQualityWarning, Operation: opTranslate, Direction: req.Direction, Warning: &warnings[i]})
	}

	return Result{
		TargetTitle:   payload.Title,
		TargetContent: payload.Content,
		SourceTags:    MergeTags(o.maxTags, req.SourceTags, payload.SourceTags),
		TargetTags:    MergeTags(o.maxTags, payload.TargetTags),
		Warnings:      warnings,
	}, nil
}

func (o *Orchestrator) fallback(req Request, cause error) Result {
	o.sink.Record(Event{Kind: EventFallback, Operation: opTranslate, Direction: req.Direction, Err: cause})
	result := Synthesize(req, o.maxTags)
	result.FallbackReason = fallbackReason(cause)
	return result
}

func fallbackReason(err error) string {
	var tErr *Error
	if errors.As(err, &tErr) {
		return fmt.Sprintf("%s: %s", tErr.Type, tErr.Message)
	}
	return err.Error()
}

type translatePayload struct {
	Title      string
	Content    string
	SourceTags []string
	TargetTags []string
}

func decodeTranslatePayload(raw string, direction Direction) (translatePayload, error) {
	var fields map[string]json.RawMessage
	if err := DecodeJSON(raw, &fields); err != nil {
		return translatePayload{}, err
	}

	srcKey := direction.SourceKey()
	dstKey := direction.TargetKey()
	var p translatePayload
	var err error
	if p.Title, err = decodeText(fields, dstKey+"Title"); err != nil {
		return translatePayload{}, err
	}
	if p.Content, err = decodeText(fields, dstKey+"Content"); err != nil {
		return translatePayload{}, err
	}
	if p.SourceTags, err = decodeTags(fields[srcKey+"Tags"]); err != nil {
		return translatePayload{}, wrapError(err, ErrMalformedResponse, "invalid "+srcKey+"Tags")
	}
	if p.TargetTags, err = decodeTags(fields[dstKey+"Tags"]); err != nil {
		return translatePayload{}, wrapError(err, ErrMalformedResponse, "invalid "+dstKey+"Tags")
	}
	return p, nil
}

// decodeText reads a required non-empty string field.
func decodeText(fields map[string]json.RawMessage, key string) (string, error) {
	value, ok := fields[key]
	if !ok {
		return "", newError(ErrMalformedResponse, "response has no "+key)
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", wrapError(err, ErrMalformedResponse, key+" is not a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", newError(ErrMalformedResponse, key+" is empty")
	}
	return s, nil
}

// decodeTags accepts an array of strings, a comma separated string, or a
// missing/null value.
func decodeTags(value json.RawMessage) ([]string, error) {
	if len(value) == 0 || string(value) == "null" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(value, &list); err == nil {
		return list, nil
	}
	var joined string
	if err := json.Unmarshal(value, &joined); err != nil {
		return nil, fmt.Errorf("tags must be a list of strings")
	}
	return strings.Split(joined, ","), nil
}
