package redis

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a store connected to a miniredis instance
func setupTestStore(t *testing.T, mr *miniredis.Miniredis, origin string) *Store {
	t.Helper()

	store, err := NewStore(&goredis.Options{Addr: mr.Addr()}, "test-area", origin)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func startMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)
	return mr
}

func TestNewStore(t *testing.T) {
	t.Run("creates store successfully", func(t *testing.T) {
		mr := startMiniredis(t)
		store := setupTestStore(t, mr, "tab-a")
		assert.Equal(t, "test-area", store.Area())
		assert.NoError(t, store.Ping(context.Background()))
	})

	t.Run("rejects empty area", func(t *testing.T) {
		_, err := NewStore(&goredis.Options{Addr: "localhost:6379"}, " ", "tab-a")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "storage area cannot be empty")
	})
}

func TestStorePutGetDelete(t *testing.T) {
	mr := startMiniredis(t)
	store := setupTestStore(t, mr, "tab-a")
	ctx := context.Background()

	_, err := store.Get(ctx, "watchlist.items")
	require.ErrorIs(t, err, domain.ErrSlotNotFound)

	require.NoError(t, store.Put(ctx, "watchlist.items", []byte(`[]`)))

	got, err := store.Get(ctx, "watchlist.items")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	raw, err := mr.Get(SlotKey("test-area", "watchlist.items"))
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	require.NoError(t, store.Delete(ctx, "watchlist.items"))
	require.NoError(t, store.Delete(ctx, "watchlist.items"))
	assert.False(t, mr.Exists(SlotKey("test-area", "watchlist.items")))
}

func TestStoreSubscribeReceivesChangesFromOtherContexts(t *testing.T) {
	mr := startMiniredis(t)
	writer := setupTestStore(t, mr, "tab-a")
	reader := setupTestStore(t, mr, "tab-b")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub, err := reader.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, writer.Put(ctx, "watchlist.filter", []byte(`"active"`)))

	select {
	case change := <-sub.Changes():
		assert.Equal(t, ports.Change{
			Area:   "test-area",
			Name:   "watchlist.filter",
			Value:  []byte(`"active"`),
			Origin: "tab-a",
		}, change)
	case <-ctx.Done():
		t.Fatal("timed out waiting for change")
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	mr := startMiniredis(t)
	store := setupTestStore(t, mr, "tab-a")

	sub, err := store.Subscribe(context.Background())
	require.NoError(t, err)

	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())

	require.Eventually(t, func() bool {
		_, open := <-sub.Changes()
		return !open
	}, time.Second, 10*time.Millisecond)
}

type failPublishHook struct{}

func (failPublishHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (failPublishHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if cmd.Name() == "publish" {
			err := errors.New("publish refused")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (failPublishHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func TestPutKeepsWriteWhenPublishFails(t *testing.T) {
	mr := startMiniredis(t)
	var logs bytes.Buffer

	store, err := NewStore(&goredis.Options{Addr: mr.Addr()}, "test-area", "tab-a",
		WithLogger(log.New(&logs, "", 0)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	store.rdb.AddHook(failPublishHook{})

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "watchlist.filter", []byte(`"active"`)))

	got, err := store.Get(ctx, "watchlist.filter")
	require.NoError(t, err)
	assert.Equal(t, `"active"`, string(got))
	assert.Contains(t, logs.String(), "stored but not announced")
	assert.Contains(t, logs.String(), "publish refused")
}
