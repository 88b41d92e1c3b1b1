package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatsCountsDoneAndLeft(t *testing.T) {
	items := []ListItem{
		{ID: "a", Title: "Super Troopers"},
		{ID: "b", Title: "Heat", Completed: true},
		{ID: "c", Title: "Ronin", Completed: true},
	}

	stats := ComputeStats(items)

	assert.Equal(t, Stats{Total: 3, Done: 2, Left: 1}, stats)
	assert.Equal(t, stats.Total, stats.Done+stats.Left)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil))
}

func TestFilterItems(t *testing.T) {
	items := []ListItem{
		{ID: "open", Title: "Open"},
		{ID: "done", Title: "Done", Completed: true},
	}

	tests := []struct {
		name string
		mode FilterMode
		want []ItemID
	}{
		{name: "all", mode: FilterAll, want: []ItemID{"open", "done"}},
		{name: "active", mode: FilterActive, want: []ItemID{"open"}},
		{name: "completed", mode: FilterCompleted, want: []ItemID{"done"}},
		{name: "unknown mode behaves like all", mode: FilterMode("archived"), want: []ItemID{"open", "done"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterItems(items, tt.mode)
			ids := make([]ItemID, 0, len(got))
			for _, item := range got {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	assert.Len(t, items, 2, "projection must not mutate the input")
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Heat", NormalizeTitle("  Heat\n"))
	assert.Empty(t, NormalizeTitle("   "))
}

func TestFilterModeNormalize(t *testing.T) {
	assert.Equal(t, FilterActive, FilterActive.Normalize())
	assert.Equal(t, FilterAll, FilterMode("").Normalize())
	assert.False(t, FilterMode("nope").Valid())
}
