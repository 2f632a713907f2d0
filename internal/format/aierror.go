package format

import "strings"

const (
	msgAIQuota       = "Our AI services are overloaded at the moment. Please try again later."
	msgAIAuth        = "AI service authentication failed. Please contact support."
	msgAINetwork     = "Network error connecting to AI services. Please check your connection and try again."
	msgAIUnavailable = "AI services are temporarily unavailable. Please try again in a few minutes."
	msgAIGeneric     = "AI processing failed. Please try again or contact support if the issue persists."
	msgUnexpected    = "An unexpected error occurred. Please try again."
)

var (
	quotaMarkers       = []string{"quota", "resource_exhausted", "rate limit", "429", "too many requests"}
	authMarkers        = []string{"api key", "unauthorized", "401", "403"}
	networkMarkers     = []string{"network", "timeout", "econnrefused", "fetch failed"}
	unavailableMarkers = []string{"503", "service unavailable", "temporarily unavailable"}
	aiMarkers          = []string{"ai", "gemini"}
)

// AIError maps a raw AI failure message to a user-facing one. Messages that
// match no known pattern are returned unchanged.
func AIError(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, quotaMarkers):
		return msgAIQuota
	case containsAny(lower, authMarkers):
		return msgAIAuth
	case containsAny(lower, networkMarkers):
		return msgAINetwork
	case containsAny(lower, unavailableMarkers):
		return msgAIUnavailable
	case containsAny(lower, aiMarkers):
		return msgAIGeneric
	case msg == "":
		return msgUnexpected
	default:
		return msg
	}
}

func IsAIQuotaError(msg string) bool {
	return containsAny(strings.ToLower(msg), quotaMarkers)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
