package watchlist

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

func RenderEvents(entries []domain.EventLogEntry) (string, error) {
	return render(func(s styles) string {
		return renderEvents(entries, s)
	})
}

func renderEvents(entries []domain.EventLogEntry, s styles) string {
	lines := []string{
		s.title.Render("Event log"),
		s.header.Render(fmt.Sprintf("entries: %d", len(entries))),
	}

	if len(entries) == 0 {
		lines = append(lines, s.empty.Render("No events recorded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, entry := range entries {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.meta.Render(entry.Timestamp),
			"  ",
			s.eventType.Render(string(entry.Type)),
			"  ",
			s.itemOpen.Render(payloadText(entry.Payload)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func payloadText(payload map[string]any) string {
	if len(payload) == 0 {
		return "{}"
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}

	return string(encoded)
}
