package chat

import "rfp-assistant/internal/domain"

type Status string

const (
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusError   Status = "error"
)

// Message is a transcript entry. ID stays empty until the server confirms
// the message.
type Message struct {
	ID             string
	ConversationID string
	ExpertType     string
	Role           string
	Content        string
	Timestamp      string
	Status         Status
}

func (m Message) IsUser() bool {
	return m.Role == domain.RoleUser
}

// Transcript is an ordered list of messages. Only the most recent entry is
// ever rewritten. It is not safe for concurrent use; Controller owns it.
type Transcript struct {
	msgs []Message
}

func (t *Transcript) Len() int {
	return len(t.msgs)
}

func (t *Transcript) Append(m Message) {
	t.msgs = append(t.msgs, m)
}

// Last returns the most recent entry.
func (t *Transcript) Last() (Message, bool) {
	if len(t.msgs) == 0 {
		return Message{}, false
	}
	return t.msgs[len(t.msgs)-1], true
}

// ReplaceLast swaps the most recent entry for ms.
func (t *Transcript) ReplaceLast(ms ...Message) {
	if len(t.msgs) > 0 {
		t.msgs = t.msgs[:len(t.msgs)-1]
	}
	t.msgs = append(t.msgs, ms...)
}

// MarkLast sets the status of the most recent entry.
func (t *Transcript) MarkLast(s Status) {
	if len(t.msgs) == 0 {
		return
	}
	t.msgs[len(t.msgs)-1].Status = s
}

// Reset replaces the whole transcript.
func (t *Transcript) Reset(ms []Message) {
	t.msgs = append([]Message(nil), ms...)
}

func (t *Transcript) Clear() {
	t.msgs = nil
}

// Messages returns a copy of the entries in order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// CountStatus reports how many entries have status s.
func (t *Transcript) CountStatus(s Status) int {
	n := 0
	for _, m := range t.msgs {
		if m.Status == s {
			n++
		}
	}
	return n
}
