package ports

import "context"

// SlotStorage is one storage area: a flat namespace of named slots holding
// opaque bytes. Put must replace the whole value atomically.
type SlotStorage interface {
	Area() string
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, value []byte) error
	Delete(ctx context.Context, name string) error
}

// Change is emitted after a slot value changed durably. Value is nil when the
// slot was deleted. Origin identifies the writing context when the backend
// can carry it.
type Change struct {
	Area   string `json:"area"`
	Name   string `json:"name"`
	Value  []byte `json:"value"`
	Origin string `json:"origin,omitempty"`
}

type ChangeFeed interface {
	Subscribe(ctx context.Context) (ChangeSubscription, error)
}

type ChangeSubscription interface {
	Changes() <-chan Change
	Close() error
}

// Backend bundles storage with its change feed.
type Backend interface {
	SlotStorage
	ChangeFeed
	Close() error
}
