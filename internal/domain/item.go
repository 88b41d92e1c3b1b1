package domain

import (
	"strings"
	"time"
)

type ItemID string

type ListItem struct {
	ID        ItemID    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeTitle trims surrounding whitespace. An empty result means the
// title must be rejected.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

type Stats struct {
	Total int `json:"total"`
	Done  int `json:"done"`
	Left  int `json:"left"`
}

func ComputeStats(items []ListItem) Stats {
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}

	return Stats{Total: len(items), Done: done, Left: len(items) - done}
}

func CloneItems(items []ListItem) []ListItem {
	if items == nil {
		return []ListItem{}
	}

	cloned := make([]ListItem, len(items))
	copy(cloned, items)
	return cloned
}
