package watchlist

import (
	"fmt"
	"time"

	"github.com/bnema/watchlist-cli/internal/application"
	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type CatalogOptions struct {
	Now          time.Time
	ImageBaseURL string
	ShowPosters  bool
}

func RenderCatalog(snapshot application.CatalogSnapshot, opts CatalogOptions) (string, error) {
	return render(func(s styles) string {
		return renderCatalog(snapshot, opts, s)
	})
}

func renderCatalog(snapshot application.CatalogSnapshot, opts CatalogOptions, s styles) string {
	lines := []string{
		s.title.Render("Popular titles"),
		s.header.Render(catalogHeader(snapshot, opts.Now)),
	}

	if snapshot.State == application.CatalogError {
		lines = append(lines, s.warning.Render("error: "+snapshot.Message))
	}

	if len(snapshot.Entries) == 0 {
		if snapshot.State != application.CatalogError {
			lines = append(lines, s.empty.Render("No titles available."))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, entry := range snapshot.Entries {
		lines = append(lines, catalogLine(entry, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func catalogHeader(snapshot application.CatalogSnapshot, now time.Time) string {
	header := fmt.Sprintf("titles: %d", len(snapshot.Entries))
	if snapshot.FetchedAt.IsZero() {
		return header
	}

	source := "fetched"
	if snapshot.FromCache {
		source = "cached"
	}
	header += fmt.Sprintf("  %s %s", source, formatAge(snapshot.FetchedAt, now))
	if snapshot.Stale {
		header += "  [stale]"
	}

	return header
}

func catalogLine(entry domain.CatalogEntry, opts CatalogOptions, s styles) string {
	parts := []string{
		s.rating.Render(fmt.Sprintf("%4s", entry.Rating.Label())),
		"  ",
		s.itemOpen.Render(entry.Title),
	}
	if year := releaseYear(entry.ReleaseDate); year != "" {
		parts = append(parts, " ", s.meta.Render("("+year+")"))
	}
	if opts.ShowPosters {
		parts = append(parts, "  ", s.meta.Render(entry.PosterURL(opts.ImageBaseURL)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func releaseYear(date string) string {
	if len(date) < 4 {
		return ""
	}

	return date[:4]
}

func formatAge(at, now time.Time) string {
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	age := now.Sub(at)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
