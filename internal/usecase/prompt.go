package usecase

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"rfp-assistant/internal/domain"
)

// expertParam is the JSON stored at <prefix>/experts/<type>.
type expertParam struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Prompt      string `json:"prompt"`
	Order       int    `json:"order"`
}

// parseExpertCatalog turns the raw SSM values into experts ordered by their
// configured order, then by type.
func parseExpertCatalog(raw map[string]string) ([]domain.Expert, error) {
	type ordered struct {
		expert domain.Expert
		order  int
	}
	items := make([]ordered, 0, len(raw))
	for typ, value := range raw {
		typ = strings.TrimSpace(typ)
		if typ == "" {
			continue
		}
		var p expertParam
		if err := json.Unmarshal([]byte(value), &p); err != nil {
			return nil, fmt.Errorf("usecase: decode expert %q: %w", typ, err)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("usecase: expert %q has no name", typ)
		}
		items = append(items, ordered{
			expert: domain.Expert{
				Type:        typ,
				Name:        p.Name,
				Description: p.Description,
				Icon:        p.Icon,
				Color:       p.Color,
				Prompt:      p.Prompt,
			},
			order: p.Order,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].order != items[j].order {
			return items[i].order < items[j].order
		}
		return items[i].expert.Type < items[j].expert.Type
	})

	experts := make([]domain.Expert, len(items))
	for i, it := range items {
		experts[i] = it.expert
	}
	return experts, nil
}

func buildPromptMessages(expert domain.Expert, history []domain.Message, message string) []domain.ChatMessage {
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: buildPolicyPrompt()},
		{Role: domain.RoleSystem, Content: buildExpertPrompt(expert)},
	}
	for _, m := range history {
		if pm, ok := historyToPromptMessage(m); ok {
			messages = append(messages, pm)
		}
	}
	return append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: message})
}

func buildPolicyPrompt() string {
	return strings.Join([]string{
		"Role:",
		"You are a specialist advisor inside a procurement workspace where teams draft RFPs, send them to vendors and compare proposals.",
		"",
		"Behavior Rules:",
		"1) Answer only the current user message, using prior turns as context.",
		"2) Stay within your specialty described below; say so briefly when a question is outside it.",
		"3) Be concrete: prefer checklists, numbers and example clauses over general advice.",
		"4) Never invent vendor names, prices or contract terms that the user did not provide.",
		"5) Markdown is allowed; keep answers under 300 words unless asked for more.",
	}, "\n")
}

func buildExpertPrompt(expert domain.Expert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Specialty: %s", expert.Name)
	if d := strings.TrimSpace(expert.Description); d != "" {
		fmt.Fprintf(&b, "\nFocus: %s", d)
	}
	if p := strings.TrimSpace(expert.Prompt); p != "" {
		fmt.Fprintf(&b, "\n\n%s", p)
	}
	return b.String()
}

func historyToPromptMessage(m domain.Message) (domain.ChatMessage, bool) {
	content := strings.TrimSpace(m.Content)
	if content == "" {
		return domain.ChatMessage{}, false
	}
	switch m.Role {
	case domain.RoleUser, domain.RoleAssistant:
		return domain.ChatMessage{Role: m.Role, Content: content}, true
	default:
		return domain.ChatMessage{}, false
	}
}
