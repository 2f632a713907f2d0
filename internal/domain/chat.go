package domain

// ChatMessage is the provider-agnostic prompt message shape passed to LLM
// integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Expert is a selectable chat persona. Prompt is server-side only and never
// serialized to clients.
type Expert struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Prompt      string `json:"-"`
}
