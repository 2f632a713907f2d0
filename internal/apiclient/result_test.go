package apiclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReasonFromBody(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "error field", body: `{"error":"Expert not available","message":"ignored"}`, want: "Expert not available"},
		{name: "message field", body: `{"message":"Token expired"}`, want: "Token expired"},
		{name: "empty error falls to message", body: `{"error":"","message":"Try later"}`, want: "Try later"},
		{name: "nested error object", body: `{"error":{"message":"quota exceeded"}}`, want: "quota exceeded"},
		{name: "neither", body: `{"code":"X"}`, want: "fallback"},
		{name: "not json", body: `<html>502</html>`, want: "fallback"},
		{name: "empty", body: ``, want: "fallback"},
		{name: "non-string error", body: `{"error":42}`, want: "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, reasonFromBody([]byte(tc.body), "fallback"))
		})
	}
}

func TestMap(t *testing.T) {
	r := Map(ok(2, 200), func(n int) string { return "n=" + string(rune('0'+n)) })
	require.True(t, r.OK)
	require.Equal(t, "n=2", r.Value)
	require.Equal(t, 200, r.Status)

	failed := Result[int]{Reason: "nope", Status: 401, AuthRequired: true, Err: errors.New("x")}
	called := false
	m := Map(failed, func(int) string { called = true; return "" })
	require.False(t, m.OK)
	require.False(t, called)
	require.Equal(t, "nope", m.Reason)
	require.True(t, m.AuthRequired)
	require.Equal(t, 401, m.Status)
	require.Error(t, m.Err)
}
