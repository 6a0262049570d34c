package suggest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeSuggestionSet parses Gemini's response text into a SuggestionSet.
// Despite the system prompt asking for raw JSON, the model often wraps the
// plan in a ```json fence or leads with a sentence of prose, so the decoder
// cuts the text down to the outermost object before unmarshaling.
func decodeSuggestionSet(raw string) (*SuggestionSet, error) {
	text := stripFences(raw)

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end < start {
		return nil, fmt.Errorf("no suggestion object in %d-byte response", len(raw))
	}

	var set SuggestionSet
	if err := json.Unmarshal([]byte(text[start:end+1]), &set); err != nil {
		return nil, fmt.Errorf("suggestion JSON: %w", err)
	}
	return &set, nil
}

// stripFences removes a markdown code fence (```json ... ``` or ``` ... ```)
// wrapping the text. Text without a fence passes through unchanged.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line including any language tag.
	nl := strings.IndexByte(s, '\n')
	if nl == -1 {
		return s
	}
	body := s[nl+1:]

	if closing := strings.LastIndex(body, "```"); closing != -1 {
		body = body[:closing]
	}
	return strings.TrimSpace(body)
}
