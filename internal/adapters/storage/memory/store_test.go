package memory

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutGetRoundTripAcrossHandles(t *testing.T) {
	t.Parallel()

	ns := NewNamespace("test")
	tabA := ns.Open("tab-a")
	tabB := ns.Open("tab-b")

	require.NoError(t, tabA.Put(context.Background(), "watchlist.items", []byte(`[]`)))

	got, err := tabB.Get(context.Background(), "watchlist.items")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)
	assert.Equal(t, "test", tabB.Area())
}

func TestStoreGetMissingSlot(t *testing.T) {
	t.Parallel()

	_, err := NewNamespace("test").Open("tab").Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrSlotNotFound)
}

func TestStoreSubscribeReceivesChangesWithOrigin(t *testing.T) {
	t.Parallel()

	ns := NewNamespace("test")
	writer := ns.Open("tab-a")
	reader := ns.Open("tab-b")

	sub, err := reader.Subscribe(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	require.NoError(t, writer.Put(context.Background(), "watchlist.filter", []byte(`"active"`)))
	require.NoError(t, writer.Delete(context.Background(), "watchlist.filter"))

	first := receive(t, sub)
	assert.Equal(t, ports.Change{Area: "test", Name: "watchlist.filter", Value: []byte(`"active"`), Origin: "tab-a"}, first)

	second := receive(t, sub)
	assert.Equal(t, "watchlist.filter", second.Name)
	assert.Nil(t, second.Value)
}

func TestStoreSubscriptionStopsAfterClose(t *testing.T) {
	t.Parallel()

	ns := NewNamespace("test")
	store := ns.Open("tab")

	sub, err := store.Subscribe(context.Background())
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	require.NoError(t, store.Put(context.Background(), "x", []byte(`1`)))

	select {
	case change := <-sub.Changes():
		t.Fatalf("unexpected change after close: %+v", change)
	case <-time.After(50 * time.Millisecond):
	}
}

func receive(t *testing.T, sub ports.ChangeSubscription) ports.Change {
	t.Helper()

	select {
	case change := <-sub.Changes():
		return change
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return ports.Change{}
	}
}
