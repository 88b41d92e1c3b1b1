package cmd

import (
	"testing"

	"github.com/bnema/watchlist-cli/internal/application"
	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSpinnerLabelFollowsState(t *testing.T) {
	model := newCatalogSpinnerModel(nil)
	assert.Contains(t, model.View(), "Checking cached titles...")

	updated, cmd := model.Update(catalogStateMsg{state: application.CatalogLoading})
	assert.Nil(t, cmd)
	assert.Contains(t, updated.View(), "Fetching popular titles...")
}

func TestCatalogSpinnerQuitsWithSnapshot(t *testing.T) {
	model := newCatalogSpinnerModel(nil)
	snapshot := application.CatalogSnapshot{
		State:     application.CatalogReady,
		Entries:   []domain.CatalogEntry{{ID: 1}, {ID: 2}, {ID: 3}},
		FromCache: true,
	}

	updated, cmd := model.Update(catalogLoadedMsg{snapshot: snapshot})
	require.NotNil(t, cmd)

	final, ok := updated.(catalogSpinnerModel)
	require.True(t, ok)
	require.NotNil(t, final.result)
	assert.Equal(t, snapshot, *final.result)
	assert.Equal(t, "3 titles from cache\n", final.View())
}

func TestCatalogSummary(t *testing.T) {
	testCases := []struct {
		name     string
		snapshot application.CatalogSnapshot
		want     string
	}{
		{
			name:     "fetched",
			snapshot: application.CatalogSnapshot{State: application.CatalogReady, Entries: []domain.CatalogEntry{{ID: 1}}},
			want:     "fetched 1 titles",
		},
		{
			name:     "missing key",
			snapshot: application.CatalogSnapshot{State: application.CatalogError, Err: domain.ErrMissingCredential},
			want:     "no catalog api key",
		},
		{
			name:     "failed",
			snapshot: application.CatalogSnapshot{State: application.CatalogError, Message: "status 503"},
			want:     "catalog request failed",
		},
		{
			name:     "idle",
			snapshot: application.CatalogSnapshot{State: application.CatalogIdle},
			want:     "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, catalogSummary(tc.snapshot))
		})
	}
}
