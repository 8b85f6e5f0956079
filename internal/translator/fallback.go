package translator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
)

const (
	fallbackTagLimit = 3
	minTagRunes      = 4

	teluguUnavailable  = "[అనువాదం అందుబాటులో లేదు] "
	englishUnavailable = "[Translation unavailable] "
)

var defaultTags = map[language.Tag][]string{
	language.Telugu:  {"సమాచారం", "వార్తలు", "నవీకరణ"},
	language.English: {"information", "news", "update"},
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"this": {}, "that": {}, "from": {}, "have": {}, "has": {}, "been": {}, "will": {}, "said": {},
}

// UnavailableMarker is prefixed to source text in fallback results.
func UnavailableMarker(target language.Tag) string {
	if target == language.Telugu {
		return teluguUnavailable
	}
	return englishUnavailable
}

// Synthesize builds the deterministic substitute result used when the
// generative service could not produce a translation.
func Synthesize(req Request, maxTags int) Result {
	limit := fallbackTagLimit
	if maxTags > 0 && maxTags < limit {
		limit = maxTags
	}

	sourceTags := MergeTags(limit, req.SourceTags)
	if len(sourceTags) == 0 {
		sourceTags = DeriveTags(req.SourceTitle, limit)
	}

	target := req.Direction.Target()
	marker := UnavailableMarker(target)
	return Result{
		TargetTitle:    marker + req.SourceTitle,
		TargetContent:  marker + req.SourceContent,
		SourceTags:     sourceTags,
		TargetTags:     MergeTags(limit, defaultTags[target]),
		IsFallback:     true,
		FallbackReason: "translation unavailable",
	}
}

// DeriveTags picks up to limit distinct lowercase words longer than three
// characters from text, skipping common stop words.
func DeriveTags(text string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	tags := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(text)) {
		if len(tags) >= limit {
			break
		}
		token := strings.Map(keepWordRune, field)
		if utf8.RuneCountInString(token) < minTagRunes {
			continue
		}
		if _, ok := stopWords[token]; ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tags = append(tags, token)
	}
	return tags
}

// keepWordRune drops everything except letters, digits and combining marks.
// Telugu vowel signs are marks, so they must survive.
func keepWordRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
		return r
	}
	return -1
}

// MergeTags concatenates sets in order, trimming entries and dropping
// empties and duplicates, and truncates to limit. limit <= 0 means no limit.
func MergeTags(limit int, sets ...[]string) []string {
	merged := make([]string, 0)
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, tag := range set {
			if limit > 0 && len(merged) >= limit {
				return merged
			}
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			merged = append(merged, tag)
		}
	}
	return merged
}
