package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
)

const subscriptionBuffer = 64

// Namespace is a process-local storage area shared by every Store opened on
// it. It stands in for several contexts sharing one durable namespace.
type Namespace struct {
	area string

	mu     sync.RWMutex
	slots  map[string][]byte
	subs   map[int]*subscription
	nextID int
}

func NewNamespace(area string) *Namespace {
	return &Namespace{
		area:  area,
		slots: map[string][]byte{},
		subs:  map[int]*subscription{},
	}
}

// Open returns a handle for one context. Changes written through it carry
// origin.
func (n *Namespace) Open(origin string) *Store {
	return &Store{ns: n, origin: origin}
}

type Store struct {
	ns     *Namespace
	origin string
}

var _ ports.Backend = (*Store)(nil)

func (s *Store) Area() string {
	return s.ns.area
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.ns.mu.RLock()
	defer s.ns.mu.RUnlock()

	value, ok := s.ns.slots[name]
	if !ok {
		return nil, fmt.Errorf("memory slot %q: %w", name, domain.ErrSlotNotFound)
	}

	return append([]byte(nil), value...), nil
}

func (s *Store) Put(ctx context.Context, name string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := append([]byte(nil), value...)

	s.ns.mu.Lock()
	s.ns.slots[name] = stored
	s.ns.mu.Unlock()

	s.ns.broadcast(ports.Change{Area: s.ns.area, Name: name, Value: stored, Origin: s.origin})
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.ns.mu.Lock()
	_, existed := s.ns.slots[name]
	delete(s.ns.slots, name)
	s.ns.mu.Unlock()

	if existed {
		s.ns.broadcast(ports.Change{Area: s.ns.area, Name: name, Origin: s.origin})
	}
	return nil
}

func (s *Store) Subscribe(ctx context.Context) (ports.ChangeSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &subscription{
		changes: make(chan ports.Change, subscriptionBuffer),
		done:    make(chan struct{}),
	}

	s.ns.mu.Lock()
	id := s.ns.nextID
	s.ns.nextID++
	s.ns.subs[id] = sub
	s.ns.mu.Unlock()

	sub.cancel = func() {
		s.ns.mu.Lock()
		delete(s.ns.subs, id)
		s.ns.mu.Unlock()
		close(sub.done)
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()

	return sub, nil
}

func (s *Store) Close() error {
	return nil
}

func (n *Namespace) broadcast(change ports.Change) {
	n.mu.RLock()
	targets := make([]*subscription, 0, len(n.subs))
	for _, sub := range n.subs {
		targets = append(targets, sub)
	}
	n.mu.RUnlock()

	for _, sub := range targets {
		sub.deliver(change)
	}
}

type subscription struct {
	changes chan ports.Change
	done    chan struct{}
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

func (s *subscription) deliver(change ports.Change) {
	select {
	case s.changes <- change:
	case <-s.done:
	}
}
