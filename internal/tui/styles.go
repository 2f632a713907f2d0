package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	subtle    lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	pending   lipgloss.Style
	failed    lipgloss.Style
	errorLine lipgloss.Style
	selected  lipgloss.Style
	input     lipgloss.Style
	help      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		subtle:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		user:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		pending:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244")),
		failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		errorLine: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		help: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
