package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAIError(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "RESOURCE_EXHAUSTED: quota exceeded", want: msgAIQuota},
		{in: "status 429", want: msgAIQuota},
		{in: "Invalid API key provided", want: msgAIAuth},
		{in: "request timeout after 30s", want: msgAINetwork},
		{in: "503 Service Unavailable", want: msgAIUnavailable},
		{in: "gemini returned garbage", want: msgAIGeneric},
		{in: "vendor not found", want: "vendor not found"},
		{in: "", want: msgUnexpected},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, AIError(tc.in), "input %q", tc.in)
	}
}

func TestIsAIQuotaError(t *testing.T) {
	require.True(t, IsAIQuotaError("Too Many Requests"))
	require.False(t, IsAIQuotaError("unauthorized"))
}
