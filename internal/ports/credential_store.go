package ports

import "context"

// CredentialStore keeps secrets outside the storage area, keyed by a
// slash-separated path.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
