package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers a JSON document from raw model output. Providers
// asked for JSON still wrap it in markdown fences often enough that a
// direct parse cannot be trusted. Recovery order:
//
//  1. Parse the raw text directly.
//  2. Strip a surrounding fenced code block (``` with an optional
//     language tag) and surrounding whitespace, then parse again.
//  3. Fail with MalformedOutputError carrying a bounded preview.
//
// No retry against the provider happens here.
func ExtractJSON(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	stripped := stripFences(trimmed)
	if json.Valid([]byte(stripped)) {
		return stripped, nil
	}

	return "", newMalformedOutputError(raw, nil)
}

// stripFences removes a leading ```lang marker and a trailing ``` from
// a fenced block, returning the trimmed inner text. Input without a
// fence is returned unchanged.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}

	body := s[len("```"):]

	// Drop the optional language tag on the opening fence line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return s
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")

	return strings.TrimSpace(body)
}

// ParseResponse extracts JSON from raw model output and unmarshals it
// into the target type.
func ParseResponse[T any](raw string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, newMalformedOutputError(raw, err)
	}

	return result, nil
}
