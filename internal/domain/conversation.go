package domain

// Message is a single persisted chat message. A successful exchange writes
// two of them, one per role.
type Message struct {
	PK             string
	SK             string
	ID             string
	ConversationID string
	ExpertType     string
	Role           string
	Content        string
	Timestamp      string
	TTL            int64
}

// ConversationMeta stores aggregate state for one user/expert conversation.
type ConversationMeta struct {
	PK             string
	SK             string
	ConversationID string
	ExpertType     string
	LastActivity   string
	Turns          int
	TTL            int64
}
