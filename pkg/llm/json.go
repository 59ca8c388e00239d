package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// thinkBlockPattern matches <think>...</think> reasoning blocks anywhere in a response.
var thinkBlockPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// codeFencePattern matches markdown fence markers such as ``` and ```json.
var codeFencePattern = regexp.MustCompile("```[a-zA-Z]*")

// StripFormatting removes reasoning blocks and markdown code fences from a response.
func StripFormatting(response string) string {
	cleaned := thinkBlockPattern.ReplaceAllString(response, "")
	return codeFencePattern.ReplaceAllString(cleaned, "")
}

// ParseJSONLines extracts one JSON object per line from a JSON-lines style
// response. A line that is not valid JSON on its own is retried with the text
// between its first '{' and last '}'. Lines that still fail are discarded, so
// a response mixing prose with JSON yields only the JSON objects.
func ParseJSONLines[T any](response string) []T {
	var out []T
	for _, line := range strings.Split(StripFormatting(response), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if v, ok := decodeObject[T](line); ok {
			out = append(out, v)
			continue
		}
		start := strings.IndexByte(line, '{')
		end := strings.LastIndexByte(line, '}')
		if start < 0 || end <= start {
			continue
		}
		if v, ok := decodeObject[T](line[start : end+1]); ok {
			out = append(out, v)
		}
	}
	return out
}

func decodeObject[T any](s string) (T, bool) {
	var v T
	if !strings.HasPrefix(s, "{") {
		return v, false
	}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, false
	}
	return v, true
}
