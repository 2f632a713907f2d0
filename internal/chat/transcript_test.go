package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscript_ReplaceLast(t *testing.T) {
	var tr Transcript
	tr.Append(Message{ID: "h1", Content: "earlier", Status: StatusSent})
	tr.Append(Message{Content: "pending", Status: StatusSending})

	tr.ReplaceLast(
		Message{ID: "u1", Content: "pending", Status: StatusSent},
		Message{ID: "a1", Content: "reply", Status: StatusSent},
	)

	got := tr.Messages()
	require.Len(t, got, 3)
	require.Equal(t, "h1", got[0].ID)
	require.Equal(t, "u1", got[1].ID)
	require.Equal(t, "a1", got[2].ID)
	require.Zero(t, tr.CountStatus(StatusSending))
}

func TestTranscript_MarkLast(t *testing.T) {
	var tr Transcript
	tr.MarkLast(StatusError)
	require.Zero(t, tr.Len())

	tr.Append(Message{Content: "a", Status: StatusSent})
	tr.Append(Message{Content: "b", Status: StatusSending})
	tr.MarkLast(StatusError)

	last, ok := tr.Last()
	require.True(t, ok)
	require.Equal(t, StatusError, last.Status)
	require.Equal(t, 1, tr.CountStatus(StatusSent))
}

func TestTranscript_MessagesIsCopy(t *testing.T) {
	var tr Transcript
	tr.Append(Message{Content: "a"})

	got := tr.Messages()
	got[0].Content = "mutated"

	last, _ := tr.Last()
	require.Equal(t, "a", last.Content)
}

func TestTranscript_ResetAndClear(t *testing.T) {
	var tr Transcript
	tr.Append(Message{Content: "old"})

	src := []Message{{Content: "x"}, {Content: "y"}}
	tr.Reset(src)
	src[0].Content = "changed"
	require.Equal(t, "x", tr.Messages()[0].Content)
	require.Equal(t, 2, tr.Len())

	tr.Clear()
	_, ok := tr.Last()
	require.False(t, ok)
	require.Empty(t, tr.Messages())
}

func TestMessage_IsUser(t *testing.T) {
	require.True(t, Message{Role: "user"}.IsUser())
	require.False(t, Message{Role: "assistant"}.IsUser())
}
