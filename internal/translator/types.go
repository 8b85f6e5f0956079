package translator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// TextGenerator is the external generative text capability. It is satisfied
// by *llm.Client and by test doubles.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to TextGenerator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Direction selects which of the two supported languages is the source.
type Direction int

const (
	EnglishToTelugu Direction = iota
	TeluguToEnglish
)

func (d Direction) String() string {
	switch d {
	case EnglishToTelugu:
		return "english-to-telugu"
	case TeluguToEnglish:
		return "telugu-to-english"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection accepts the String form as well as short "en-te"/"te-en".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "english-to-telugu", "en-te", "en_te":
		return EnglishToTelugu, nil
	case "telugu-to-english", "te-en", "te_en":
		return TeluguToEnglish, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

func (d Direction) Valid() bool {
	return d == EnglishToTelugu || d == TeluguToEnglish
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == TeluguToEnglish {
		return EnglishToTelugu
	}
	return TeluguToEnglish
}

func (d Direction) Source() language.Tag {
	if d == TeluguToEnglish {
		return language.Telugu
	}
	return language.English
}

func (d Direction) Target() language.Tag {
	if d == TeluguToEnglish {
		return language.English
	}
	return language.Telugu
}

// SourceKey and TargetKey are the lowercase language names used as JSON key
// prefixes in prompts and responses ("englishTitle", "teluguTags", ...).
func (d Direction) SourceKey() string {
	return languageKey(d.Source())
}

func (d Direction) TargetKey() string {
	return languageKey(d.Target())
}

func languageKey(tag language.Tag) string {
	if tag == language.Telugu {
		return "telugu"
	}
	return "english"
}

func languageName(tag language.Tag) string {
	if tag == language.Telugu {
		return "Telugu"
	}
	return "English"
}

// Request is one translate call. It is never mutated by the orchestrator.
type Request struct {
	SourceTitle   string
	SourceContent string
	SourceTags    []string
	Direction     Direction
}

func (r Request) validate() error {
	var missing []string
	if strings.TrimSpace(r.SourceTitle) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(r.SourceContent) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return newError(ErrInvalidInput, fmt.Sprintf("%s %s required", strings.Join(missing, " and "), pluralVerb(len(missing))))
	}
	if !r.Direction.Valid() {
		return newError(ErrInvalidInput, fmt.Sprintf("unsupported direction %s", r.Direction))
	}
	return nil
}

func pluralVerb(n int) string {
	if n > 1 {
		return "are"
	}
	return "is"
}

// Result is the outcome of a translate call. When IsFallback is set the
// target fields carry placeholder text and must not be shown as a real
// translation.
type Result struct {
	TargetTitle    string
	TargetContent  string
	SourceTags     []string
	TargetTags     []string
	IsFallback     bool
	FallbackReason string
	Warnings       []Warning
}

// WarningKind classifies an advisory quality finding.
type WarningKind string

const (
	WarnScriptMismatch       WarningKind = "script-mismatch"
	WarnUntranslatedFragment WarningKind = "untranslated-fragment"
	WarnPlaceholderLeft      WarningKind = "placeholder-left"
	WarnEditorialNoteLeft    WarningKind = "editorial-note-left"
	WarnLanguageMismatch     WarningKind = "language-mismatch"
)

// Warning is a non-fatal quality finding on one payload field.
type Warning struct {
	Field  string      `json:"field"`
	Kind   WarningKind `json:"kind"`
	Detail string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	if w.Detail == "" {
		return fmt.Sprintf("%s: %s", w.Field, w.Kind)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Field, w.Kind, w.Detail)
}
