package captioning

import (
	"context"
	"errors"
	"net"
	"strings"
)

// processingPhrases are substrings that mark an error/message text as
// "still working" rather than a real failure.
var processingPhrases = []string{
	"processing",
	"queued",
	"still processing",
	"request timed out",
}

// processingCheck is one predicate of the processing-like classifier.
// Checks run in order; the first match decides.
type processingCheck struct {
	name  string
	match func(status int, payload interface{}, raw string, phrases []string) bool
}

var processingChecks = []processingCheck{
	{
		name: "status_code",
		match: func(status int, _ interface{}, _ string, _ []string) bool {
			switch status {
			case 202, 429, 502, 503, 504:
				return true
			}
			return false
		},
	},
	{
		name: "boolean_body",
		match: func(_ int, payload interface{}, raw string, _ []string) bool {
			if b, ok := payload.(bool); ok && b {
				return true
			}
			return raw == "true"
		},
	},
	{
		name: "processing_field",
		match: func(_ int, payload interface{}, _ string, _ []string) bool {
			obj, ok := payload.(map[string]interface{})
			if !ok {
				return false
			}
			b, ok := obj["processing"].(bool)
			return ok && b
		},
	},
	{
		name: "message_text",
		match: func(_ int, payload interface{}, raw string, phrases []string) bool {
			msg := strings.ToLower(ExtractErrorMessage(payload, raw))
			for _, phrase := range phrases {
				if strings.Contains(msg, phrase) {
					return true
				}
			}
			return false
		},
	},
}

// IsProcessingLike reports whether an upstream response should be read as
// "the operation has not completed yet" rather than success or failure.
func IsProcessingLike(status int, payload interface{}, raw string) bool {
	return classify(status, payload, raw, processingPhrases)
}

// IsProcessingLikeWithPhrases runs the same classifier with additional
// message substrings. The orchestrator widens the phrase list to cover
// gateway and CDN error pages that show up between it and the proxy.
func IsProcessingLikeWithPhrases(status int, payload interface{}, raw string, extra []string) bool {
	phrases := make([]string, 0, len(processingPhrases)+len(extra))
	phrases = append(phrases, processingPhrases...)
	phrases = append(phrases, extra...)
	return classify(status, payload, raw, phrases)
}

func classify(status int, payload interface{}, raw string, phrases []string) bool {
	for _, check := range processingChecks {
		if check.match(status, payload, raw, phrases) {
			return true
		}
	}
	return false
}

// IsTimeoutError reports whether an outbound call failed because its
// timeout budget elapsed. Such failures are retried by the caller, so
// they classify as processing rather than fatal.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "request timed out") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "aborted")
}
