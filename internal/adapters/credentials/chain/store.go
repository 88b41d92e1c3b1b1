package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/watchlist-cli/internal/adapters/credentials/file"
	passstore "github.com/bnema/watchlist-cli/internal/adapters/credentials/pass"
	"github.com/bnema/watchlist-cli/internal/ports"
)

// Store tries each backend in order. Reads and writes stop at the first
// backend that succeeds; deletes reach every backend.
type Store struct {
	backends []ports.CredentialStore
}

var _ ports.CredentialStore = (*Store)(nil)

var errNoBackends = errors.New("credential chain has no backends")

func NewStore(backends ...ports.CredentialStore) (*Store, error) {
	kept := make([]ports.CredentialStore, 0, len(backends))
	for _, backend := range backends {
		if backend != nil {
			kept = append(kept, backend)
		}
	}
	if len(kept) == 0 {
		return nil, errNoBackends
	}

	return &Store{backends: kept}, nil
}

// NewPassFirstWithFileFallback prefers pass and falls back to owner-only
// files under fileRoot.
func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStore(passstore.NewStore(), filestore.NewStore(fileRoot))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for i, backend := range s.backends {
		value, err := backend.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if stopChain(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("backend %d: %w", i, err))
	}

	return "", fmt.Errorf("get credential %q: %w", key, errors.Join(errs...))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for i, backend := range s.backends {
		err := backend.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if stopChain(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("backend %d: %w", i, err))
	}

	return fmt.Errorf("put credential %q: %w", key, errors.Join(errs...))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	for i, backend := range s.backends {
		err := backend.Delete(ctx, key)
		if err == nil || errors.Is(err, passstore.ErrUnavailable) {
			continue
		}
		if stopChain(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("backend %d: %w", i, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("delete credential %q: %w", key, errors.Join(errs...))
	}

	return nil
}

func stopChain(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
