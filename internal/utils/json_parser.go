package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ErrMalformedPayload is returned when model output holds no usable structured object
var ErrMalformedPayload = errors.New("malformed structured payload")

var (
	// Scratch-work spans emitted by reasoning models (DeepSeek-R1 uses <think>)
	reasoningSpanRe = regexp.MustCompile(`(?s)<(think|reasoning)>.*?</(?:think|reasoning)>`)
	// An opening tag that was never closed swallows the rest of the output
	openReasoningRe = regexp.MustCompile(`(?s)<(?:think|reasoning)>.*$`)

	fencedBlockRe  = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \\t]*\\r?\\n?(.*?)```")
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe  = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharsRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// StripReasoning removes <think>...</think> and <reasoning>...</reasoning> spans.
// Tags are matched case-sensitively and spans may cover several lines.
func StripReasoning(raw string) string {
	cleaned := reasoningSpanRe.ReplaceAllString(raw, "")
	cleaned = openReasoningRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// ExtractStructured locates the JSON object embedded in model output.
// The output may contain reasoning spans, a fenced code block, or prose around the object.
func ExtractStructured(raw string) (map[string]any, error) {
	cleaned := StripReasoning(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedPayload)
	}

	candidate := cleaned
	if fenced := extractFromMarkdown(cleaned); fenced != "" {
		candidate = fenced
	}

	var obj map[string]any
	if err := ParseAIJSON(candidate, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedPayload)
	}
	return obj, nil
}

// ParseAIJSON extracts and parses JSON from AI output that may contain:
// - Pure JSON
// - JSON wrapped in markdown code blocks (```json ... ```)
// - JSON with surrounding text
// - Partial or malformed JSON
func ParseAIJSON(input string, target interface{}) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("%w: empty input", ErrMalformedPayload)
	}

	// Try direct parsing first (most common case)
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	// Try to extract JSON from markdown code blocks
	if extracted := extractFromMarkdown(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	// Try to find JSON object/array in text
	if extracted := extractJSONFromText(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
		if cleaned := cleanAndFixJSON(extracted); cleaned != "" {
			if err := json.Unmarshal([]byte(cleaned), target); err == nil {
				return nil
			}
		}
	}

	// Try to clean and fix common JSON issues
	if cleaned := cleanAndFixJSON(input); cleaned != "" {
		if err := json.Unmarshal([]byte(cleaned), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrMalformedPayload, truncateString(input, 100))
}

// extractFromMarkdown returns the inner content of the first fenced block.
// Supports ```json {...} ```, ```{...}```, or ```\n{...}\n```
func extractFromMarkdown(input string) string {
	if matches := fencedBlockRe.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}

// extractJSONFromText finds JSON object or array in surrounding text
func extractJSONFromText(input string) string {
	// Try to find JSON object
	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}

	// Try to find JSON array
	if start := strings.Index(input, "["); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '[', ']'); extracted != "" {
			return extracted
		}
	}

	return ""
}

// extractBalancedBraces extracts content with balanced braces
func extractBalancedBraces(input string, open, close rune) string {
	if len(input) == 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON attempts to fix common JSON formatting issues
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)

	// Remove BOM if present
	s = strings.TrimPrefix(s, "\ufeff")

	// Remove trailing commas before closing braces/brackets
	s = trailingComma.ReplaceAllString(s, "$1")

	// {word: "value"} -> {"word": "value"}
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)

	// Fix single quotes to double quotes (outside of strings)
	s = fixSingleQuotes(s)

	return controlCharsRe.ReplaceAllString(s, "")
}

// fixSingleQuotes converts single-quoted values to double-quoted ones.
// Apostrophes inside words are left alone.
func fixSingleQuotes(input string) string {
	var result strings.Builder
	runes := []rune(input)
	inDouble, inSingle, escape := false, false, false
	prev := rune(0)

	for i, ch := range runes {
		if escape {
			result.WriteRune(ch)
			escape = false
			continue
		}

		switch {
		case ch == '\\':
			escape = true
			result.WriteRune(ch)
		case inSingle && ch == '\'' && closesValue(runes[i+1:]):
			inSingle = false
			result.WriteRune('"')
		case inSingle && ch == '"':
			result.WriteString(`\"`)
		case inSingle:
			result.WriteRune(ch)
		case ch == '"':
			inDouble = !inDouble
			result.WriteRune(ch)
		case ch == '\'' && !inDouble && opensValue(prev):
			inSingle = true
			result.WriteRune('"')
		default:
			result.WriteRune(ch)
		}

		if !unicode.IsSpace(ch) {
			prev = ch
		}
	}

	return result.String()
}

func opensValue(prev rune) bool {
	switch prev {
	case 0, ':', ',', '[', '{':
		return true
	}
	return false
}

// closesValue reports whether the next non-space rune ends a JSON value
func closesValue(rest []rune) bool {
	for _, r := range rest {
		if unicode.IsSpace(r) {
			continue
		}
		switch r {
		case ':', ',', '}', ']':
			return true
		}
		return false
	}
	return true
}

// truncateString truncates a string to maxLen bytes
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// StringField reads an optional string value.
// JSON null and the literals "", "null", "none" and "n/a" are treated as absent.
func StringField(obj map[string]any, key string) (*string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is %T, want string", ErrMalformedPayload, key, raw)
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "none", "n/a":
		return nil, nil
	}
	return &s, nil
}

// FloatField reads an optional number; numeric strings such as "0.8" are accepted
func FloatField(obj map[string]any, key string) (*float64, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case float64:
		return &v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q is not numeric: %q", ErrMalformedPayload, key, v)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("%w: field %q is %T, want number", ErrMalformedPayload, key, raw)
	}
}

// ObjectField reads an optional nested object
func ObjectField(obj map[string]any, key string) (map[string]any, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}
	nested, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is %T, want object", ErrMalformedPayload, key, raw)
	}
	return nested, nil
}
