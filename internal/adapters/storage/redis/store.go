package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
	goredis "github.com/redis/go-redis/v9"
)

const subscriptionBuffer = 64

// Store keeps slots as plain Redis strings namespaced by area and announces
// every write on the area's change channel.
// The client is safe for concurrent use.
type Store struct {
	rdb    *goredis.Client
	area   string
	origin string
	logger *log.Logger
}

var _ ports.Backend = (*Store)(nil)

type Option func(*Store)

// WithLogger receives change announcements that could not be published.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store for area. Writes carry origin in their change
// messages so the writing context can recognise its own echoes.
func NewStore(opts *goredis.Options, area, origin string, options ...Option) (*Store, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return nil, fmt.Errorf("storage area cannot be empty")
	}

	s := &Store{
		rdb:    goredis.NewClient(opts),
		area:   area,
		origin: origin,
		logger: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(s)
	}

	return s, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Area() string {
	return s.area
}

func SlotKey(area, name string) string {
	return fmt.Sprintf("watchlist:%s:slot:%s", area, name)
}

func ChangesChannel(area string) string {
	return fmt.Sprintf("watchlist:%s:changes", area)
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, SlotKey(s.area, name)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("redis slot %q: %w", name, domain.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("failed to read slot from Redis: %w", err)
	}

	return value, nil
}

// Put writes the slot then publishes the change. Once SET succeeds the write
// stands: a failed publish is logged, not returned. Pub/Sub delivery is
// at-most-once, so other contexts miss that change until the slot is
// written again or they reload it at startup.
func (s *Store) Put(ctx context.Context, name string, value []byte) error {
	if err := s.rdb.Set(ctx, SlotKey(s.area, name), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write slot to Redis: %w", err)
	}

	s.announce(ctx, ports.Change{Area: s.area, Name: name, Value: value, Origin: s.origin})
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	removed, err := s.rdb.Del(ctx, SlotKey(s.area, name)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete slot from Redis: %w", err)
	}
	if removed == 0 {
		return nil
	}

	s.announce(ctx, ports.Change{Area: s.area, Name: name, Origin: s.origin})
	return nil
}

func (s *Store) announce(ctx context.Context, change ports.Change) {
	if err := s.publish(ctx, change); err != nil {
		s.logger.Printf("redis: slot %q stored but not announced: %v", change.Name, err)
	}
}

func (s *Store) publish(ctx context.Context, change ports.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal slot change: %w", err)
	}

	if err := s.rdb.Publish(ctx, ChangesChannel(s.area), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish slot change: %w", err)
	}

	return nil
}

// Subscribe listens on the area's change channel. The subscription is
// confirmed before Subscribe returns, so writes made afterwards are seen.
func (s *Store) Subscribe(ctx context.Context) (ports.ChangeSubscription, error) {
	pubsub := s.rdb.Subscribe(ctx, ChangesChannel(s.area))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to slot changes: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	changes := make(chan ports.Change, subscriptionBuffer)
	sub := &subscription{changes: changes, cancel: cancel}

	go func() {
		defer close(changes)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var change ports.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					continue
				}

				select {
				case changes <- change:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}

type subscription struct {
	changes chan ports.Change
	cancel  func()
	once    sync.Once
}

func (s *subscription) Changes() <-chan ports.Change {
	return s.changes
}

func (s *subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}
