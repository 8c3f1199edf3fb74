package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrParseFailed is returned when content cannot be parsed as JSON,
// either directly, from a markdown code fence, or from an embedded object.
var ErrParseFailed = errors.New("failed to parse response")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse attempts to unmarshal content as JSON into T.
// If direct parsing fails, it extracts JSON from a markdown code fence
// and retries, then falls back to the outermost {...} span surrounded by prose.
// Returns ErrParseFailed if every attempt fails.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	matches := jsonBlockRegex.FindStringSubmatch(content)
	if len(matches) >= 2 {
		cleaned := strings.TrimSpace(matches[1])
		if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
			return result, nil
		}
	}

	if obj, ok := embeddedObject(content); ok {
		var embedded T
		if err := json.Unmarshal([]byte(obj), &embedded); err == nil {
			return embedded, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, Truncate(content, 200))
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func embeddedObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}
