package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	shapeArray  = "array"
	shapeObject = "object"

	snippetLength = 200
)

// ParseJSONArray recovers a JSON array from free-form model output and
// decodes it into v (a pointer to a slice).
//
// The response is tried as-is, then the outermost [...] span, then the
// outermost {...} span, which is wrapped into a one-element array.
// Returns a *MalformedResponseError when nothing decodes.
func ParseJSONArray(response string, v interface{}) error {
	return parseJSON(response, shapeArray, v)
}

// ParseJSONObject recovers a JSON object from free-form model output and
// decodes it into v (a pointer to a struct or map).
//
// The response is tried as-is, then the outermost {...} span. An array whose
// first element is an object is accepted and its first element used.
// Returns a *MalformedResponseError when nothing decodes.
func ParseJSONObject(response string, v interface{}) error {
	return parseJSON(response, shapeObject, v)
}

func parseJSON(response, shape string, v interface{}) error {
	cleaned := RemoveCodeBlocks(response)

	candidates := []string{cleaned}
	if shape == shapeArray {
		if span, ok := enclosed(cleaned, "[", "]"); ok {
			candidates = append(candidates, span)
		}
	}
	if span, ok := enclosed(cleaned, "{", "}"); ok {
		candidates = append(candidates, span)
	}

	var lastErr error
	for _, candidate := range candidates {
		data, err := conform([]byte(candidate), shape)
		if err != nil {
			lastErr = err
			continue
		}
		if err := json.Unmarshal(data, v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return &MalformedResponseError{
		Expected: shape,
		Snippet:  snippet(cleaned),
		Err:      lastErr,
	}
}

// conform checks the decoded shape and adapts it to the expected one.
func conform(data []byte, shape string) ([]byte, error) {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	switch value := decoded.(type) {
	case []interface{}:
		if shape == shapeArray {
			return data, nil
		}
		if len(value) > 0 {
			if _, ok := value[0].(map[string]interface{}); ok {
				return json.Marshal(value[0])
			}
		}
	case map[string]interface{}:
		if shape == shapeObject {
			return data, nil
		}
		return json.Marshal([]interface{}{value})
	}

	return nil, fmt.Errorf("expected JSON %s, got %T", shape, decoded)
}

// enclosed returns the span from the first open token to the last close token.
func enclosed(s, open, close string) (string, bool) {
	start := strings.Index(s, open)
	end := strings.LastIndex(s, close)
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// RemoveCodeBlocks removes markdown code fences (```json ... ```) from a response.
func RemoveCodeBlocks(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	return strings.TrimSpace(response)
}

// snippet truncates s to snippetLength runes.
func snippet(s string) string {
	count := 0
	for i := range s {
		if count == snippetLength {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
