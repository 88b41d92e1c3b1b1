// Package durable gives typed access to named slots of a storage area.
//
// Reads never fail: a missing or undecodable slot yields the caller's
// default. Writes are scheduled per slot name and optionally debounced, so a
// burst of Set calls for the same name persists only the last value once the
// burst has been quiet for the configured delay. Until then, reads in the same
// process see the pending value.
package durable

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
)

const defaultWriteTimeout = 5 * time.Second

type Store struct {
	storage ports.SlotStorage
	delay   time.Duration
	logger  *log.Logger

	mu      sync.Mutex
	pending map[string]*pendingWrite
	closed  bool

	// writeMu keeps durable writes in issue order.
	writeMu sync.Mutex

	observersMu sync.RWMutex
	observers   map[string]map[int]func([]byte)
	nextID      int
}

type pendingWrite struct {
	data  []byte
	timer *time.Timer
}

type Option func(*Store)

// WithDebounce delays durable writes until no Set for the same name happened
// for delay. Zero writes inline.
func WithDebounce(delay time.Duration) Option {
	return func(s *Store) {
		if delay > 0 {
			s.delay = delay
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(storage ports.SlotStorage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		logger:    log.New(io.Discard, "", 0),
		pending:   map[string]*pendingWrite{},
		observers: map[string]map[int]func([]byte){},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Area() string {
	return s.storage.Area()
}

// Get decodes the value of name into target. It reports false, leaving
// target untouched, when the slot is missing or cannot be decoded.
func (s *Store) Get(ctx context.Context, name string, target any) bool {
	raw, ok := s.Raw(ctx, name)
	if !ok {
		return false
	}

	return decodeInto(raw, target)
}

// Raw returns the pending value for name if one is scheduled, otherwise the
// stored bytes.
func (s *Store) Raw(ctx context.Context, name string) ([]byte, bool) {
	s.mu.Lock()
	if p, ok := s.pending[name]; ok {
		data := append([]byte(nil), p.data...)
		s.mu.Unlock()
		return data, true
	}
	s.mu.Unlock()

	raw, err := s.storage.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrSlotNotFound) {
			s.logger.Printf("durable: read %q: %v", name, err)
		}
		return nil, false
	}

	return raw, true
}

// Load returns the value stored under name or def.
func Load[T any](ctx context.Context, s *Store, name string, def T) T {
	var value T
	if !s.Get(ctx, name, &value) {
		return def
	}

	return value
}

// Set schedules a write of value under name. A value that cannot be encoded
// is dropped. Any write already pending for name is replaced.
func (s *Store) Set(name string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Printf("durable: encode %q: %v", name, err)
		return
	}

	s.schedule(name, data)
}

// SetRaw schedules already-encoded bytes.
func (s *Store) SetRaw(name string, data []byte) {
	s.schedule(name, append([]byte(nil), data...))
}

func (s *Store) schedule(name string, data []byte) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Printf("durable: write %q after close dropped", name)
		return
	}

	if p, ok := s.pending[name]; ok && p.timer != nil {
		p.timer.Stop()
	}

	p := &pendingWrite{data: data}
	s.pending[name] = p

	if s.delay <= 0 {
		s.mu.Unlock()
		s.run(name, p)
		return
	}

	p.timer = time.AfterFunc(s.delay, func() {
		s.run(name, p)
	})
	s.mu.Unlock()
}

// Discard drops the write pending for name, if any. A write already handed to
// the backend still completes. It reports whether a pending write was dropped.
func (s *Store) Discard(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[name]
	if !ok {
		return false
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	delete(s.pending, name)

	return true
}

// run is the only path that writes to storage. A write that was replaced by a
// later Set before it fired does nothing.
func (s *Store) run(name string, p *pendingWrite) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.pending[name] != p {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
	defer cancel()

	err := s.storage.Put(ctx, name, p.data)

	s.mu.Lock()
	if s.pending[name] == p {
		delete(s.pending, name)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Printf("durable: write %q: %v", name, err)
		return
	}

	s.notify(name, p.data)
}

// Flush performs every pending write now.
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	due := make(map[string]*pendingWrite, len(s.pending))
	for name, p := range s.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		due[name] = p
	}
	s.mu.Unlock()

	for name, p := range due {
		if ctx.Err() != nil {
			return
		}
		s.run(name, p)
	}
}

// Close flushes pending writes and rejects later ones.
func (s *Store) Close() error {
	s.Flush(context.Background())

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return nil
}

// Subscribe registers fn for successful writes of name made through this
// store. The returned func unregisters it.
func (s *Store) Subscribe(name string, fn func(raw []byte)) func() {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()

	id := s.nextID
	s.nextID++
	if s.observers[name] == nil {
		s.observers[name] = map[int]func([]byte){}
	}
	s.observers[name][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.observersMu.Lock()
			defer s.observersMu.Unlock()
			delete(s.observers[name], id)
			if len(s.observers[name]) == 0 {
				delete(s.observers, name)
			}
		})
	}
}

func (s *Store) notify(name string, data []byte) {
	s.observersMu.RLock()
	fns := make([]func([]byte), 0, len(s.observers[name]))
	for _, fn := range s.observers[name] {
		fns = append(fns, fn)
	}
	s.observersMu.RUnlock()

	for _, fn := range fns {
		fn(append([]byte(nil), data...))
	}
}

func decodeInto(raw []byte, target any) bool {
	if len(raw) == 0 {
		return false
	}

	return json.Unmarshal(raw, target) == nil
}
