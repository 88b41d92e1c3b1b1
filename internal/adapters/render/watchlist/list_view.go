package watchlist

import (
	"fmt"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const shortIDLength = 8

type ListView struct {
	Items  []domain.ListItem
	Filter domain.FilterMode
	Stats  domain.Stats
}

func RenderList(view ListView) (string, error) {
	return render(func(s styles) string {
		return renderList(view, s)
	})
}

func renderList(view ListView, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Watchlist (%s)", view.Filter.Normalize())),
		s.header.Render(statsLine(view.Stats)),
	}

	if len(view.Items) == 0 {
		lines = append(lines, s.empty.Render("Nothing to show."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, item := range view.Items {
		lines = append(lines, itemLine(item, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statsLine(stats domain.Stats) string {
	return fmt.Sprintf("total: %d  done: %d  left: %d", stats.Total, stats.Done, stats.Left)
}

func itemLine(item domain.ListItem, s styles) string {
	box := "[ ]"
	title := s.itemOpen.Render(item.Title)
	if item.Completed {
		box = "[x]"
		title = s.itemDone.Render(item.Title)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.checkbox.Render(box),
		" ",
		s.id.Render(ShortID(item.ID)),
		"  ",
		title,
	)
}

// ShortID is the id prefix shown in listings; commands accept it in place
// of the full id.
func ShortID(id domain.ItemID) string {
	if len(id) <= shortIDLength {
		return string(id)
	}

	return string(id[:shortIDLength])
}

func RenderStats(stats domain.Stats) (string, error) {
	return render(func(s styles) string {
		return s.header.Render(statsLine(stats))
	})
}
