package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rfp-assistant/internal/chat"
	"rfp-assistant/internal/format"
)

func (m Model) View() string {
	switch m.screen {
	case screenAuth:
		return m.authView()
	case screenPicker:
		return m.pickerView()
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("rfpchat · " + m.expertName()))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.styles.input.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("enter send · esc experts · pgup/pgdown scroll · ctrl+c quit"))
	return b.String()
}

func (m Model) authView() string {
	msg := m.state.Error
	if msg == "" {
		msg = "Authentication required"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.errorLine.Render(msg),
		"",
		"Sign in with `rfpchat login`, then start the chat again.",
		"",
		m.styles.help.Render("press any key to exit"),
	)
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Choose an expert"))
	b.WriteString("\n\n")

	if len(m.state.Experts) == 0 {
		b.WriteString(m.styles.subtle.Render("No experts available."))
		b.WriteString("\n\n")
		b.WriteString(m.styles.help.Render("r retry · q quit"))
		return b.String()
	}

	for i, e := range m.state.Experts {
		name := "  " + e.Name
		if i == m.cursor {
			name = m.styles.selected.Render("> " + e.Name)
		}
		b.WriteString(name)
		if e.Description != "" {
			b.WriteString(m.styles.subtle.Render("  " + e.Description))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("↑/↓ move · enter select · r reload · q quit"))
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.state.Typing():
		return m.spinner.View() + m.styles.pending.Render(" "+m.expertName()+" is typing...")
	case m.state.Error != "":
		return m.styles.errorLine.Render(m.state.Error) + m.styles.help.Render("  (esc to dismiss)")
	case m.state.LoadingHistory:
		return m.styles.pending.Render("Loading history...")
	default:
		return ""
	}
}

func (m Model) expertName() string {
	for _, e := range m.state.Experts {
		if e.Type == m.state.Expert {
			return e.Name
		}
	}
	if m.state.Expert != "" {
		return m.state.Expert
	}
	return "Assistant"
}

func (m Model) renderTranscript() string {
	if len(m.state.Messages) == 0 {
		if m.state.LoadingHistory {
			return ""
		}
		return m.styles.subtle.Render(fmt.Sprintf("Start a conversation with %s.", m.expertName()))
	}

	blocks := make([]string, 0, len(m.state.Messages))
	for _, msg := range m.state.Messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg chat.Message) string {
	var label string
	if msg.IsUser() {
		label = m.styles.user.Render("You")
	} else {
		label = m.styles.assistant.Render(m.expertName())
	}
	if ts := m.timestamp(msg.Timestamp); ts != "" {
		label += m.styles.subtle.Render("  " + ts)
	}
	switch msg.Status {
	case chat.StatusSending:
		label += m.styles.pending.Render("  sending...")
	case chat.StatusError:
		label += m.styles.failed.Render("  not sent")
	}

	body := msg.Content
	if !msg.IsUser() && m.renderer != nil {
		if out, err := m.renderer.Render(msg.Content); err == nil {
			body = strings.Trim(out, "\n")
		}
	} else if m.width > 4 {
		body = lipgloss.NewStyle().Width(m.width - 4).Render(body)
	}
	return label + "\n" + body
}

func (m Model) timestamp(s string) string {
	if s == "" {
		return ""
	}
	t, err := format.ParseTime(s)
	if err != nil {
		return ""
	}
	return format.Relative(t, m.now())
}
