package translator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// minDetectRunes is the shortest text handed to language detection; shorter
// strings give unreliable results.
const minDetectRunes = 20

var editorialNote = regexp.MustCompile(`\[[^\[\]]*\]`)

func isTeluguRune(r rune) bool {
	return r >= 0x0C00 && r <= 0x0C7F
}

func isLatinLetter(r rune) bool {
	return unicode.Is(unicode.Latin, r) && unicode.IsLetter(r)
}

// Validate inspects translated fields for script and leftover-marker
// defects. Findings are advisory.
func Validate(fields map[string]string, direction Direction) []Warning {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var warnings []Warning
	for _, name := range names {
		warnings = append(warnings, validateField(name, fields[name], direction.Target())...)
	}
	return warnings
}

func validateField(field, text string, target language.Tag) []Warning {
	var warnings []Warning
	add := func(kind WarningKind, detail string) {
		warnings = append(warnings, Warning{Field: field, Kind: kind, Detail: detail})
	}

	var telugu, latin int
	for _, r := range text {
		switch {
		case isTeluguRune(r):
			telugu++
		case isLatinLetter(r):
			latin++
		}
	}

	if target == language.Telugu {
		if telugu == 0 {
			add(WarnScriptMismatch, "no Telugu characters")
		}
		if latin > 0 {
			add(WarnUntranslatedFragment, fmt.Sprintf("%d Latin letters", latin))
		}
	} else {
		if latin == 0 {
			add(WarnScriptMismatch, "no Latin letters")
		}
		if telugu > 0 {
			add(WarnUntranslatedFragment, fmt.Sprintf("%d Telugu characters", telugu))
		}
	}

	if strings.Contains(text, "???") {
		add(WarnPlaceholderLeft, "")
	}
	if note := editorialNote.FindString(text); note != "" {
		add(WarnEditorialNoteLeft, note)
	}

	if detected, ok := detectLanguage(text); ok && !sameBase(detected, target) {
		add(WarnLanguageMismatch, fmt.Sprintf("detected %s", detected))
	}
	return warnings
}

// detectLanguage reports the base language of text when the detector is
// confident about it.
func detectLanguage(text string) (language.Tag, bool) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minDetectRunes {
		return language.Und, false
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return language.Und, false
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return language.Und, false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

func sameBase(a, b language.Tag) bool {
	ba, _ := a.Base()
	bb, _ := b.Base()
	return ba == bb
}
