package durable

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/watchlist-cli/internal/adapters/storage/memory"
	"github.com/bnema/watchlist-cli/internal/ports"
)

type countingStorage struct {
	ports.SlotStorage

	mu     sync.Mutex
	writes map[string]int
}

func newCountingStorage(area string) *countingStorage {
	return &countingStorage{
		SlotStorage: memory.NewNamespace(area).Open("test"),
		writes:      map[string]int{},
	}
}

func (c *countingStorage) Put(ctx context.Context, name string, value []byte) error {
	c.mu.Lock()
	c.writes[name]++
	c.mu.Unlock()

	return c.SlotStorage.Put(ctx, name, value)
}

func (c *countingStorage) writeCount(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writes[name]
}

func TestStoreRoundTripInline(t *testing.T) {
	ctx := context.Background()
	storage := newCountingStorage("test")
	store := NewStore(storage)

	store.Set("numbers", []int{1, 2, 3})

	assert.Equal(t, 1, storage.writeCount("numbers"))
	assert.Equal(t, []int{1, 2, 3}, Load(ctx, store, "numbers", []int(nil)))

	raw, err := storage.Get(ctx, "numbers")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(raw))
}

func TestStoreMissingSlotReturnsDefault(t *testing.T) {
	store := NewStore(newCountingStorage("test"))

	assert.Equal(t, "fallback", Load(context.Background(), store, "absent", "fallback"))

	var target struct{ Name string }
	target.Name = "untouched"
	assert.False(t, store.Get(context.Background(), "absent", &target))
	assert.Equal(t, "untouched", target.Name)
}

func TestStoreCorruptSlotReturnsDefault(t *testing.T) {
	ctx := context.Background()
	storage := newCountingStorage("test")
	require.NoError(t, storage.Put(ctx, "items", []byte("{not json")))

	store := NewStore(storage)

	assert.Equal(t, []string{"default"}, Load(ctx, store, "items", []string{"default"}))
}

func TestStoreUnencodableValueIsSkipped(t *testing.T) {
	storage := newCountingStorage("test")
	store := NewStore(storage)

	store.Set("bad", map[string]any{"fn": func() {}})

	assert.Equal(t, 0, storage.writeCount("bad"))
	_, ok := store.Raw(context.Background(), "bad")
	assert.False(t, ok)
}

func TestStoreDebounceCoalescesWrites(t *testing.T) {
	ctx := context.Background()
	storage := newCountingStorage("test")
	store := NewStore(storage, WithDebounce(40*time.Millisecond))

	for i := 1; i <= 5; i++ {
		store.Set("counter", i)
	}

	// pending value is visible before the write lands
	assert.Equal(t, 5, Load(ctx, store, "counter", 0))
	assert.Equal(t, 0, storage.writeCount("counter"))

	require.Eventually(t, func() bool {
		return storage.writeCount("counter") == 1
	}, time.Second, 5*time.Millisecond)

	raw, err := storage.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, "5", string(raw))

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, storage.writeCount("counter"))
}

func TestStoreDebounceIsPerName(t *testing.T) {
	storage := newCountingStorage("test")
	store := NewStore(storage, WithDebounce(30*time.Millisecond))

	store.Set("a", 1)
	store.Set("b", 2)

	require.Eventually(t, func() bool {
		return storage.writeCount("a") == 1 && storage.writeCount("b") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStoreFlushWritesPendingNow(t *testing.T) {
	ctx := context.Background()
	storage := newCountingStorage("test")
	store := NewStore(storage, WithDebounce(time.Hour))

	store.Set("slot", "value")
	assert.Equal(t, 0, storage.writeCount("slot"))

	store.Flush(ctx)

	assert.Equal(t, 1, storage.writeCount("slot"))
	raw, err := storage.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, `"value"`, string(raw))
}

func TestStoreCloseFlushesAndRejectsWrites(t *testing.T) {
	storage := newCountingStorage("test")
	store := NewStore(storage, WithDebounce(time.Hour))

	store.Set("slot", 1)
	require.NoError(t, store.Close())
	assert.Equal(t, 1, storage.writeCount("slot"))

	store.Set("slot", 2)
	assert.Equal(t, 1, storage.writeCount("slot"))
	assert.Equal(t, 1, Load(context.Background(), store, "slot", 0))
}

func TestStoreSubscribeNotifiesAfterWrite(t *testing.T) {
	store := NewStore(newCountingStorage("test"))

	var got []string
	unsubscribe := store.Subscribe("slot", func(raw []byte) {
		got = append(got, string(raw))
	})

	store.Set("slot", "one")
	store.Set("other", "ignored")
	unsubscribe()
	unsubscribe()
	store.Set("slot", "two")

	assert.Equal(t, []string{`"one"`}, got)
}

func TestStoreDiscardDropsPendingWrite(t *testing.T) {
	ctx := context.Background()
	storage := newCountingStorage("test")
	store := NewStore(storage, WithDebounce(time.Hour))

	store.Set("filter", "active")
	assert.True(t, store.Discard("filter"))
	assert.False(t, store.Discard("filter"))

	store.Flush(ctx)
	assert.Zero(t, storage.writeCount("filter"))
	assert.Equal(t, "all", Load(ctx, store, "filter", "all"))
}
