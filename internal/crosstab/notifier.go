// Package crosstab keeps in-memory mirrors of a storage area in step with
// writes made by other contexts sharing that area.
package crosstab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/bnema/watchlist-cli/internal/ports"
)

// Target is one watched slot. durable.Mirror implements it.
type Target interface {
	Name() string
	Apply(raw []byte) bool
}

type Notifier struct {
	area    string
	feed    ports.ChangeFeed
	origin  string
	onApply func(ports.Change)
	logger  *log.Logger
}

type Option func(*Notifier)

// WithOrigin makes the notifier skip changes this context wrote itself.
func WithOrigin(origin string) Option {
	return func(n *Notifier) {
		n.origin = origin
	}
}

// WithOnApply registers a hook called after a change altered a target.
func WithOnApply(fn func(ports.Change)) Option {
	return func(n *Notifier) {
		n.onApply = fn
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func New(area string, feed ports.ChangeFeed, opts ...Option) *Notifier {
	n := &Notifier{
		area:   area,
		feed:   feed,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Watch starts delivering changes to targets until the returned Watch is
// closed or ctx is cancelled.
func (n *Notifier) Watch(ctx context.Context, targets ...Target) (*Watch, error) {
	if n.feed == nil {
		return nil, errors.New("change feed is required")
	}
	if len(targets) == 0 {
		return nil, errors.New("at least one target is required")
	}

	byName := make(map[string]Target, len(targets))
	for _, target := range targets {
		if _, dup := byName[target.Name()]; dup {
			return nil, fmt.Errorf("slot %q watched twice", target.Name())
		}
		byName[target.Name()] = target
	}

	watchCtx, cancel := context.WithCancel(ctx)
	sub, err := n.feed.Subscribe(watchCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to changes: %w", err)
	}

	w := &Watch{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		defer sub.Close()

		for {
			select {
			case <-watchCtx.Done():
				return
			case change, ok := <-sub.Changes():
				if !ok {
					return
				}
				n.handle(byName, change)
			}
		}
	}()

	return w, nil
}

func (n *Notifier) handle(targets map[string]Target, change ports.Change) {
	if change.Area != n.area {
		return
	}
	if n.origin != "" && change.Origin == n.origin {
		return
	}

	target, ok := targets[change.Name]
	if !ok {
		return
	}
	if !target.Apply(change.Value) {
		return
	}

	n.logger.Printf("crosstab: applied change to %q from %q", change.Name, change.Origin)
	if n.onApply != nil {
		n.onApply(change)
	}
}

// Watch is a running registration. Close is safe to call more than once.
type Watch struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close stops delivery and waits until no further Apply can happen.
func (w *Watch) Close() error {
	w.once.Do(w.cancel)
	<-w.done
	return nil
}

// Done is closed once the watch stopped.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}
