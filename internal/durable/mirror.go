package durable

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
)

// Mirror keeps one slot in memory. Set updates memory right away and hands
// the durable write to the Store; Apply folds in a value written elsewhere.
type Mirror[T any] struct {
	store *Store
	name  string
	def   T

	// writeMu orders memory updates with the writes they schedule, so
	// memory and storage agree on the last value.
	writeMu sync.Mutex

	mu     sync.RWMutex
	value  T
	subs   map[int]func(T)
	nextID int
}

// NewMirror loads name from durable storage, falling back to def.
func NewMirror[T any](ctx context.Context, store *Store, name string, def T) *Mirror[T] {
	return &Mirror[T]{
		store: store,
		name:  name,
		def:   def,
		value: Load(ctx, store, name, def),
		subs:  map[int]func(T){},
	}
}

func (m *Mirror[T]) Name() string {
	return m.name
}

func (m *Mirror[T]) Value() T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.value
}

func (m *Mirror[T]) Set(value T) {
	m.writeMu.Lock()
	m.mu.Lock()
	m.value = value
	m.mu.Unlock()
	m.store.Set(m.name, value)
	m.writeMu.Unlock()

	m.notify(value)
}

// Update applies fn to the current value under the mirror lock and stores
// the result.
func (m *Mirror[T]) Update(fn func(T) T) T {
	m.writeMu.Lock()
	m.mu.Lock()
	next := fn(m.value)
	m.value = next
	m.mu.Unlock()
	m.store.Set(m.name, next)
	m.writeMu.Unlock()

	m.notify(next)
	return next
}

// Apply decodes raw, falling back to the default when it is empty or
// corrupt, and replaces the in-memory value only when it differs. It does
// not write back to storage, and a local write still waiting on the debounce
// is dropped so it cannot overwrite the newer value later. It reports
// whether the value changed.
func (m *Mirror[T]) Apply(raw []byte) bool {
	next := m.def
	if len(raw) > 0 {
		var decoded T
		if err := json.Unmarshal(raw, &decoded); err == nil {
			next = decoded
		}
	}

	m.writeMu.Lock()
	m.mu.Lock()
	if reflect.DeepEqual(m.value, next) {
		m.mu.Unlock()
		m.writeMu.Unlock()
		return false
	}
	m.value = next
	m.mu.Unlock()
	m.store.Discard(m.name)
	m.writeMu.Unlock()

	m.notify(next)
	return true
}

func (m *Mirror[T]) Subscribe(fn func(T)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
		})
	}
}

func (m *Mirror[T]) notify(value T) {
	m.mu.RLock()
	fns := make([]func(T), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(value)
	}
}
