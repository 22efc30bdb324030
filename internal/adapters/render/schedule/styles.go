package schedule

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	today    lipgloss.Style
	date     lipgloss.Style
	past     lipgloss.Style
	area     lipgloss.Style
	names    lipgloss.Style
	note     lipgloss.Style
	section  lipgloss.Style
	queueKey lipgloss.Style
	debt     lipgloss.Style
	credit   lipgloss.Style
	empty    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		today:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		date:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		past:     lipgloss.NewStyle().Faint(true),
		area:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		names:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		note:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		section:  lipgloss.NewStyle().MarginTop(1),
		queueKey: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		debt:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		credit:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		empty:    lipgloss.NewStyle().Faint(true),
	}
}
