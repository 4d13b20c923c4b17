package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no parseable JSON object can be recovered
// from a model response, after all extraction strategies are exhausted.
var ErrNoJSON = errors.New("no JSON found in response")

var jsonFenceRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse recovers a JSON value of type T from free-form model output.
// Extraction strategies are tried in a fixed order:
//
//  1. direct unmarshal of the trimmed content
//  2. unmarshal of the first balanced {...} block
//  3. unmarshal of the contents of a markdown code fence
//
// Returns ErrNoJSON if every strategy fails. The same input always takes
// the same path, so parsing is reproducible for identical responses.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if block, ok := firstObject(content); ok {
		if err := json.Unmarshal([]byte(block), &result); err == nil {
			return result, nil
		}
	}

	matches := jsonFenceRegex.FindStringSubmatch(content)
	if len(matches) >= 2 {
		cleaned := strings.TrimSpace(matches[1])
		if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrNoJSON, truncateForError(content))
}

// firstObject returns the first balanced top-level {...} block in s.
// Braces inside JSON strings are skipped so prose containing stray braces
// ahead of the object does not break matching.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

func truncateForError(s string) string {
	const limit = 256
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
