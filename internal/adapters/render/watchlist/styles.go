package watchlist

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	itemDone  lipgloss.Style
	itemOpen  lipgloss.Style
	checkbox  lipgloss.Style
	id        lipgloss.Style
	meta      lipgloss.Style
	warning   lipgloss.Style
	empty     lipgloss.Style
	rating    lipgloss.Style
	eventType lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		itemDone:  lipgloss.NewStyle().Faint(true).Strikethrough(true),
		itemOpen:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		checkbox:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		id:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		empty:     lipgloss.NewStyle().Faint(true),
		rating:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		eventType: lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
	}
}
