// Package eventlog records user and system actions in a bounded,
// newest-first log kept in durable storage.
package eventlog

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/durable"
	"github.com/bnema/watchlist-cli/internal/ports"
)

const (
	SlotName   = "watchlist.events"
	MaxEntries = 1000
)

// Log is safe for concurrent use within one context. Appends from several
// contexts sharing a storage area are last-write-wins.
type Log struct {
	store *durable.Store
	ids   ports.IDGenerator
	clock ports.Clock

	maxEntries int
	logger     *log.Logger

	mu sync.Mutex
}

type Option func(*Log)

func WithMaxEntries(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.maxEntries = n
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func New(store *durable.Store, ids ports.IDGenerator, clock ports.Clock, opts ...Option) *Log {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	l := &Log{
		store:      store,
		ids:        ids,
		clock:      clock,
		maxEntries: MaxEntries,
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Append records an event. It never fails the caller: a storage problem
// loses the entry and is only logged.
func (l *Log) Append(ctx context.Context, eventType domain.EventType, payload map[string]any) domain.EventLogEntry {
	if payload == nil {
		payload = map[string]any{}
	}

	entry := domain.EventLogEntry{
		ID:        l.ids.NewID(),
		Timestamp: l.clock.Now().UTC().Format(time.RFC3339Nano),
		Type:      eventType,
		Payload:   payload,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.read(ctx)

	next := make([]domain.EventLogEntry, 0, min(len(current)+1, l.maxEntries))
	next = append(next, entry)
	for _, existing := range current {
		if len(next) >= l.maxEntries {
			break
		}
		next = append(next, existing)
	}

	l.store.Set(SlotName, next)
	l.logger.Printf("eventlog: %s", eventType)
	return entry
}

// Entries returns the log newest first.
func (l *Log) Entries(ctx context.Context) []domain.EventLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.read(ctx)
}

func (l *Log) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.store.Set(SlotName, []domain.EventLogEntry{})
}

func (l *Log) read(ctx context.Context) []domain.EventLogEntry {
	entries := durable.Load(ctx, l.store, SlotName, []domain.EventLogEntry{})
	if entries == nil {
		return []domain.EventLogEntry{}
	}

	return entries
}
