package sqlite

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/watchlist-cli/internal/ports"
)

const subscriptionBuffer = 64

// Subscribe polls for rows written after the subscription started.
func (s *Store) Subscribe(ctx context.Context) (ports.ChangeSubscription, error) {
	head, err := s.headSeq(ctx)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	changes := make(chan ports.Change, subscriptionBuffer)
	sub := &subscription{changes: changes, cancel: cancel}

	go func() {
		defer close(changes)

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-subCtx.Done():
				return
			case <-ticker.C:
			}

			batch, next, err := s.changesSince(subCtx, head)
			if err != nil {
				continue
			}
			head = next

			for _, change := range batch {
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
