package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/watchlist-cli/internal/crosstab"
	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/durable"
	"github.com/bnema/watchlist-cli/internal/ports"
)

const (
	ItemsSlot  = "watchlist.items"
	FilterSlot = "watchlist.filter"
)

// ListService owns the watchlist of one context. Mutations update the
// in-memory collection first; durable writes follow through the store.
type ListService struct {
	items  *durable.Mirror[[]domain.ListItem]
	filter *durable.Mirror[domain.FilterMode]
	events ports.EventRecorder
	ids    ports.IDGenerator
	clock  ports.Clock

	// opMu serializes mutations of the collection; mu guards the input and
	// edit state. Subscribers run under opMu and must not mutate the list.
	opMu        sync.Mutex
	lastCreated time.Time

	mu        sync.Mutex
	draft     string
	editing   domain.ItemID
	editDraft string
}

func NewListService(ctx context.Context, store *durable.Store, events ports.EventRecorder, ids ports.IDGenerator, clock ports.Clock) *ListService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ListService{
		items:  durable.NewMirror(ctx, store, ItemsSlot, []domain.ListItem{}),
		filter: durable.NewMirror(ctx, store, FilterSlot, domain.FilterAll),
		events: events,
		ids:    ids,
		clock:  clock,
	}
}

// Targets exposes the mirrors that follow writes from other contexts.
func (s *ListService) Targets() []crosstab.Target {
	return []crosstab.Target{s.items, s.filter}
}

func (s *ListService) Items() []domain.ListItem {
	return domain.CloneItems(s.items.Value())
}

func (s *ListService) Add(ctx context.Context, title string) (domain.ListItem, bool) {
	title = domain.NormalizeTitle(title)
	if title == "" {
		return domain.ListItem{}, false
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	current := s.items.Value()
	item := domain.ListItem{
		ID:        domain.ItemID(s.ids.NewID()),
		Title:     title,
		Completed: false,
		CreatedAt: s.nextCreatedAt(current),
	}

	next := make([]domain.ListItem, 0, len(current)+1)
	next = append(next, item)
	next = append(next, current...)
	s.items.Set(next)
	s.SetDraft("")

	s.events.Append(ctx, domain.EventItemAdd, map[string]any{
		"id":    string(item.ID),
		"title": item.Title,
	})
	return item, true
}

// nextCreatedAt never goes backwards, even if the wall clock does.
func (s *ListService) nextCreatedAt(current []domain.ListItem) time.Time {
	now := s.clock.Now().UTC()
	latest := s.lastCreated
	for _, item := range current {
		if item.CreatedAt.After(latest) {
			latest = item.CreatedAt
		}
	}
	if now.Before(latest) {
		now = latest
	}
	s.lastCreated = now

	return now
}

func (s *ListService) Toggle(ctx context.Context, id domain.ItemID) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	next := domain.CloneItems(s.items.Value())
	index := indexOf(next, id)
	if index < 0 {
		return false
	}
	next[index].Completed = !next[index].Completed
	s.items.Set(next)

	s.events.Append(ctx, domain.EventItemToggle, map[string]any{
		"id":        string(id),
		"completed": next[index].Completed,
	})
	return true
}

// StartEdit puts id in edit mode with its current title as draft. Starting
// an edit while another is open moves the edit to id.
func (s *ListService) StartEdit(ctx context.Context, id domain.ItemID) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	current := s.items.Value()
	index := indexOf(current, id)
	if index < 0 {
		return false
	}

	s.mu.Lock()
	s.editing = id
	s.editDraft = current[index].Title
	s.mu.Unlock()

	s.events.Append(ctx, domain.EventItemEditStart, map[string]any{"id": string(id)})
	return true
}

func (s *ListService) SetEditDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editDraft = text
}

// Editing returns the item in edit mode and its draft title.
func (s *ListService) Editing() (domain.ItemID, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editing, s.editDraft, s.editing != ""
}

// SaveEdit writes the draft title. An empty draft discards the edit the
// same way CancelEdit does.
func (s *ListService) SaveEdit(ctx context.Context) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	id, draft, ok := s.takeEdit()
	if !ok {
		return false
	}

	title := domain.NormalizeTitle(draft)
	if title == "" {
		s.events.Append(ctx, domain.EventItemEditCancel, map[string]any{"id": string(id)})
		return false
	}

	next := domain.CloneItems(s.items.Value())
	index := indexOf(next, id)
	if index < 0 {
		return false
	}
	next[index].Title = title
	s.items.Set(next)

	s.events.Append(ctx, domain.EventItemEditSave, map[string]any{
		"id":    string(id),
		"title": title,
	})
	return true
}

func (s *ListService) CancelEdit(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	id, _, ok := s.takeEdit()
	if !ok {
		return
	}

	s.events.Append(ctx, domain.EventItemEditCancel, map[string]any{"id": string(id)})
}

// takeEdit leaves edit mode and returns what was being edited.
func (s *ListService) takeEdit() (domain.ItemID, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, draft := s.editing, s.editDraft
	s.editing = ""
	s.editDraft = ""

	return id, draft, id != ""
}

func (s *ListService) dropEdit(ids ...domain.ItemID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if s.editing == id {
			s.editing = ""
			s.editDraft = ""
		}
	}
}

func (s *ListService) Remove(ctx context.Context, id domain.ItemID) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	current := s.items.Value()
	index := indexOf(current, id)
	if index < 0 {
		return false
	}
	removed := current[index]

	next := make([]domain.ListItem, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)
	s.items.Set(next)
	s.dropEdit(id)

	s.events.Append(ctx, domain.EventItemDelete, map[string]any{
		"id":    string(removed.ID),
		"title": removed.Title,
	})
	return true
}

// ClearCompleted removes every completed item at once and returns their
// titles. Nothing is written or logged when no item is completed.
func (s *ListService) ClearCompleted(ctx context.Context) []string {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	current := s.items.Value()
	kept := make([]domain.ListItem, 0, len(current))
	titles := []string{}
	removed := []domain.ItemID{}
	for _, item := range current {
		if item.Completed {
			titles = append(titles, item.Title)
			removed = append(removed, item.ID)
			continue
		}
		kept = append(kept, item)
	}
	if len(titles) == 0 {
		return titles
	}
	s.items.Set(kept)
	s.dropEdit(removed...)

	s.events.Append(ctx, domain.EventItemsClearCompleted, map[string]any{
		"titles": titles,
		"count":  len(titles),
	})
	return titles
}

func (s *ListService) Filter() domain.FilterMode {
	return s.filter.Value().Normalize()
}

func (s *ListService) SetFilter(ctx context.Context, mode domain.FilterMode) domain.FilterMode {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	mode = mode.Normalize()
	s.filter.Set(mode)

	s.events.Append(ctx, domain.EventFilterChange, map[string]any{"filter": string(mode)})
	return mode
}

func (s *ListService) Filtered(mode domain.FilterMode) []domain.ListItem {
	return domain.FilterItems(s.items.Value(), mode)
}

// Visible applies the persisted filter mode.
func (s *ListService) Visible() []domain.ListItem {
	return s.Filtered(s.Filter())
}

func (s *ListService) Stats() domain.Stats {
	return domain.ComputeStats(s.items.Value())
}

func (s *ListService) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draft
}

func (s *ListService) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = text
}

// Subscribe calls fn with the collection after every local or applied
// remote change.
func (s *ListService) Subscribe(fn func([]domain.ListItem)) func() {
	return s.items.Subscribe(func(items []domain.ListItem) {
		fn(domain.CloneItems(items))
	})
}

// SubscribeFilter calls fn whenever the filter mode changes.
func (s *ListService) SubscribeFilter(fn func(domain.FilterMode)) func() {
	return s.filter.Subscribe(func(mode domain.FilterMode) {
		fn(mode.Normalize())
	})
}

func indexOf(items []domain.ListItem, id domain.ItemID) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}

	return -1
}
