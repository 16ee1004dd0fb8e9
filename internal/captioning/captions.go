package captioning

import "strings"

// ExtractCaptions pulls a caption sequence out of an upstream payload.
// The upstream encodes its results inconsistently, so the candidate shapes
// are tried in a fixed order and the first match wins; shapes are never merged.
func ExtractCaptions(payload interface{}) []interface{} {
	if arr, ok := payload.([]interface{}); ok {
		return arr
	}

	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil
	}

	for _, key := range []string{"captions", "data", "items"} {
		if arr, ok := obj[key].([]interface{}); ok {
			return arr
		}
	}

	if nested, ok := obj["captions"].(map[string]interface{}); ok {
		for _, key := range []string{"captions", "data", "items"} {
			if arr, ok := nested[key].([]interface{}); ok {
				return arr
			}
		}
	}

	return nil
}

// ExtractErrorMessage digs a human-readable message out of an arbitrary
// upstream payload, preferring a string body, then message, then error.
func ExtractErrorMessage(payload interface{}, fallback string) string {
	if payload == nil {
		return fallback
	}
	if s, ok := payload.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	if obj, ok := payload.(map[string]interface{}); ok {
		if s, ok := obj["message"].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
		if s, ok := obj["error"].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fallback
}
