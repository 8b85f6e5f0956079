package translator

import (
	"encoding/json"
	"strings"
)

// maxObjectStarts bounds how many opening braces are tried as object starts.
// Each try scans to the end of the response when it never closes.
const maxObjectStarts = 64

// ExtractJSON returns the first JSON object embedded in raw. Prose and
// markdown fences around the object are ignored.
func ExtractJSON(raw string) (map[string]any, error) {
	span, err := findJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, wrapError(err, ErrMalformedResponse, "failed to decode JSON object")
	}
	return obj, nil
}

// DecodeJSON extracts the first JSON object in raw and unmarshals it into v.
func DecodeJSON(raw string, v any) error {
	span, err := findJSONObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return wrapError(err, ErrMalformedResponse, "response JSON does not match the expected shape")
	}
	return nil
}

// findJSONObject scans for balanced { ... } spans from left to right and
// returns the first one that is valid JSON. Only the first maxObjectStarts
// opening braces are considered.
func findJSONObject(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", newError(ErrMalformedResponse, "empty response")
	}

	offset := 0
	found := false
	for tries := 0; tries < maxObjectStarts; tries++ {
		idx := strings.IndexByte(trimmed[offset:], '{')
		if idx < 0 {
			break
		}
		start := offset + idx
		offset = start + 1
		end := balancedEnd(trimmed, start)
		if end < 0 {
			continue
		}
		found = true
		span := trimmed[start : end+1]
		if json.Valid([]byte(span)) {
			return span, nil
		}
	}

	if found {
		return "", newError(ErrMalformedResponse, "no valid JSON object found in response")
	}
	return "", newError(ErrMalformedResponse, "no JSON object found in response")
}

// balancedEnd returns the index of the brace closing the object opened at
// start, or -1. Braces inside JSON strings are skipped.
func balancedEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
