package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
	"github.com/fsnotify/fsnotify"
)

const subscriptionBuffer = 64

// Subscribe watches the area directory. Writes from any process sharing the
// directory are reported; the origin is never known for file slots.
func (s *Store) Subscribe(ctx context.Context) (ports.ChangeSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, slotDirMode); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch storage directory: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	changes := make(chan ports.Change, subscriptionBuffer)
	sub := &subscription{changes: changes, cancel: cancel}

	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-subCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := s.changeFromEvent(subCtx, event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-subCtx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return sub, nil
}

func (s *Store) changeFromEvent(ctx context.Context, event fsnotify.Event) (ports.Change, bool) {
	name, ok := slotNameFromPath(event.Name)
	if !ok {
		return ports.Change{}, false
	}

	switch {
	case event.Has(fsnotify.Remove):
		return ports.Change{Area: s.area, Name: name}, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write), event.Has(fsnotify.Rename):
		value, err := s.Get(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrSlotNotFound) {
				return ports.Change{Area: s.area, Name: name}, true
			}
			return ports.Change{}, false
		}
		return ports.Change{Area: s.area, Name: name, Value: value}, true
	default:
		return ports.Change{}, false
	}
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
