package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse means the model's output contained no decodable
// structured object. Callers treat this as a recoverable, phase-local error.
var ErrMalformedResponse = errors.New("llm: malformed response")

// FirstJSONObject returns the first syntactically complete JSON object in s.
// Models often wrap their JSON in prose or markdown fences; this scans for a
// balanced brace span, ignoring braces inside string literals.
func FirstJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrMalformedResponse
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
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrMalformedResponse
}

// decodeFirst locates the first complete JSON object in raw and decodes it
// into out. Markdown fences are stripped first, matching what the providers
// actually return despite being told not to.
func decodeFirst(raw string, out any) error {
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	span, err := FirstJSONObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
