package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/durable"
	"github.com/bnema/watchlist-cli/internal/ports"
)

const (
	CatalogCacheSlot     = "catalog.popular.v1"
	DefaultCatalogTTL    = 10 * time.Minute
	CatalogCredentialEnv = "WL_CATALOG_API_KEY"
	CatalogCredentialKey = "watchlist/catalog/api_key"
)

type CatalogState string

const (
	CatalogIdle    CatalogState = "idle"
	CatalogLoading CatalogState = "loading"
	CatalogReady   CatalogState = "ready"
	CatalogError   CatalogState = "error"
)

// CatalogSnapshot is what the view renders. Outside Ready, Entries holds the
// last cached data, if any, with Stale set.
type CatalogSnapshot struct {
	State     CatalogState
	Entries   []domain.CatalogEntry
	FetchedAt time.Time
	FromCache bool
	Stale     bool
	Message   string
	Err       error
}

// CatalogConfig carries the catalog credential and cache lifetime. When
// APIKey is empty the key is looked up in Credentials under
// CatalogCredentialKey on every load.
type CatalogConfig struct {
	APIKey      string
	Credentials ports.CredentialStore
	TTL         time.Duration
}

type catalogEnvelope = domain.CacheEnvelope[[]domain.CatalogEntry]

type CatalogService struct {
	store  *durable.Store
	client ports.CatalogClient
	events ports.EventRecorder
	clock  ports.Clock
	apiKey string
	creds  ports.CredentialStore
	ttl    time.Duration

	mu         sync.Mutex
	snapshot   CatalogSnapshot
	generation uint64
	subs       map[int]func(CatalogSnapshot)
	nextSubID  int
}

func NewCatalogService(store *durable.Store, client ports.CatalogClient, events ports.EventRecorder, clock ports.Clock, cfg CatalogConfig) *CatalogService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCatalogTTL
	}

	return &CatalogService{
		store:    store,
		client:   client,
		events:   events,
		clock:    clock,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		creds:    cfg.Credentials,
		ttl:      cfg.TTL,
		snapshot: CatalogSnapshot{State: CatalogIdle, Entries: []domain.CatalogEntry{}},
		subs:     map[int]func(CatalogSnapshot){},
	}
}

func (s *CatalogService) Snapshot() CatalogSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneSnapshot(s.snapshot)
}

// Enter serves a fresh cache envelope without touching the network,
// otherwise fetches. It blocks until the outcome is known or ctx ends. A
// cancelled or superseded call leaves state and the event log untouched.
func (s *CatalogService) Enter(ctx context.Context) CatalogSnapshot {
	return s.load(ctx, false)
}

// Refresh ignores cache freshness and fetches again.
func (s *CatalogService) Refresh(ctx context.Context) CatalogSnapshot {
	return s.load(ctx, true)
}

func (s *CatalogService) load(ctx context.Context, force bool) CatalogSnapshot {
	if ctx.Err() != nil {
		return s.Snapshot()
	}

	generation := s.begin()
	now := s.clock.Now()
	envelope := durable.Load(ctx, s.store, CatalogCacheSlot, catalogEnvelope{})

	if !force && envelope.Fresh(now, s.ttl) {
		s.transition(generation, CatalogSnapshot{
			State:     CatalogReady,
			Entries:   envelope.Data,
			FetchedAt: envelope.FetchedAt,
			FromCache: true,
		})
		s.events.Append(ctx, domain.EventCatalogCacheHit, map[string]any{
			"count":     len(envelope.Data),
			"fetchedAt": envelope.FetchedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	// The credential is checked even when the cache was fresh.
	apiKey := s.resolveKey(ctx)
	if apiKey == "" {
		err := fmt.Errorf("%w: set %s or run 'wl credential set' to browse popular titles", domain.ErrMissingCredential, CatalogCredentialEnv)
		fresh := !force && envelope.Fresh(now, s.ttl)
		s.transition(generation, CatalogSnapshot{
			State:     CatalogError,
			Entries:   envelope.Data,
			FetchedAt: envelope.FetchedAt,
			FromCache: len(envelope.Data) > 0,
			Stale:     len(envelope.Data) > 0 && !fresh,
			Message:   err.Error(),
			Err:       err,
		})
		return s.Snapshot()
	}
	if !force && envelope.Fresh(now, s.ttl) {
		return s.Snapshot()
	}

	s.transition(generation, CatalogSnapshot{
		State:     CatalogLoading,
		Entries:   envelope.Data,
		FetchedAt: envelope.FetchedAt,
		FromCache: len(envelope.Data) > 0,
		Stale:     len(envelope.Data) > 0,
	})

	entries, err := s.client.FetchPopular(ctx, apiKey)
	if ctx.Err() != nil || !s.current(generation) {
		return s.Snapshot()
	}

	if err != nil {
		s.transition(generation, CatalogSnapshot{
			State:     CatalogError,
			Entries:   envelope.Data,
			FetchedAt: envelope.FetchedAt,
			FromCache: len(envelope.Data) > 0,
			Stale:     len(envelope.Data) > 0,
			Message:   err.Error(),
			Err:       err,
		})
		s.events.Append(ctx, domain.EventCatalogFetchError, map[string]any{"error": err.Error()})
		return s.Snapshot()
	}

	if entries == nil {
		entries = []domain.CatalogEntry{}
	}
	fetchedAt := s.clock.Now()
	s.store.Set(CatalogCacheSlot, catalogEnvelope{FetchedAt: fetchedAt, Data: entries})
	s.transition(generation, CatalogSnapshot{
		State:     CatalogReady,
		Entries:   entries,
		FetchedAt: fetchedAt,
	})
	s.events.Append(ctx, domain.EventCatalogFetchSuccess, map[string]any{"count": len(entries)})

	return s.Snapshot()
}

// Subscribe calls fn after every state transition.
func (s *CatalogService) Subscribe(fn func(CatalogSnapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
		})
	}
}

func (s *CatalogService) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	return s.generation
}

func (s *CatalogService) current(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generation == generation
}

// transition applies next only if no later load started in the meantime.
func (s *CatalogService) transition(generation uint64, next CatalogSnapshot) {
	if next.Entries == nil {
		next.Entries = []domain.CatalogEntry{}
	}

	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		return
	}
	s.snapshot = next
	fns := make([]func(CatalogSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(cloneSnapshot(next))
	}
}

func cloneSnapshot(snapshot CatalogSnapshot) CatalogSnapshot {
	entries := make([]domain.CatalogEntry, len(snapshot.Entries))
	copy(entries, snapshot.Entries)
	snapshot.Entries = entries

	return snapshot
}

// IsMissingCredential reports whether snapshot failed for lack of an API key.
func (snapshot CatalogSnapshot) IsMissingCredential() bool {
	return errors.Is(snapshot.Err, domain.ErrMissingCredential)
}

func (s *CatalogService) resolveKey(ctx context.Context) string {
	if s.apiKey != "" || s.creds == nil {
		return s.apiKey
	}

	value, err := s.creds.Get(ctx, CatalogCredentialKey)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(value)
}
