package llm

import (
	"context"
	"fmt"
	"sync/atomic"
)

// TextGenerator is the single capability the translation layer needs from a
// generative text service.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Swappable forwards to a generator that can be replaced at runtime, e.g.
// after the API key or model is changed through the settings endpoint.
// In-flight calls keep the generator they started with.
type Swappable struct {
	current atomic.Pointer[generatorBox]
}

type generatorBox struct {
	gen TextGenerator
}

func NewSwappable(gen TextGenerator) *Swappable {
	s := &Swappable{}
	s.Swap(gen)
	return s
}

// Swap installs gen for all subsequent calls.
func (s *Swappable) Swap(gen TextGenerator) {
	s.current.Store(&generatorBox{gen: gen})
}

func (s *Swappable) GenerateText(ctx context.Context, prompt string) (string, error) {
	box := s.current.Load()
	if box == nil || box.gen == nil {
		return "", fmt.Errorf("no text generator configured")
	}
	return box.gen.GenerateText(ctx, prompt)
}
