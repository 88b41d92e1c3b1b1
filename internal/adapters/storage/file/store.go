package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	StorageDirKey  = "storage.dir"
	StorageAreaKey = "storage.area"

	defaultArea     = "default"
	slotFileMode    = 0o600
	slotDirMode     = 0o700
	slotExtension   = ".json"
	tempFilePattern = ".slot-*.tmp"
)

// Store keeps every slot of one area in its own JSON file under
// <storage.dir>/<storage.area>/.
type Store struct {
	area string
	dir  string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.Backend = (*Store)(nil)

func NewStore(cfg *viper.Viper) (*Store, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	root := cfg.GetString(StorageDirKey)
	if root == "" {
		dataDir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		root = dataDir
	}

	area := strings.TrimSpace(cfg.GetString(StorageAreaKey))
	if area == "" {
		area = defaultArea
	}
	if err := validateName(area); err != nil {
		return nil, fmt.Errorf("storage area: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}

	dir := filepath.Join(filepath.Clean(absRoot), area)
	return &Store{area: area, dir: dir, mu: lockForPath(dir)}, nil
}

func (s *Store) Area() string {
	return s.area
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.pathForSlot(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file slot %q: %w", name, domain.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("read file slot %q: %w", name, err)
	}

	return data, nil
}

func (s *Store) Put(ctx context.Context, name string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForSlot(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeAtomic(path, value)
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForSlot(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file slot %q: %w", name, err)
	}

	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) pathForSlot(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	return filepath.Join(s.dir, strings.TrimSpace(name)+slotExtension), nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("slot name is empty")
	}

	if strings.ContainsAny(trimmed, `/\`) || strings.HasPrefix(trimmed, ".") {
		return fmt.Errorf("invalid slot name %q", name)
	}

	return nil
}

func slotNameFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, slotExtension) {
		return "", false
	}

	return strings.TrimSuffix(base, slotExtension), true
}

func defaultDataDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "watchlist"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", "watchlist"), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), slotDirMode); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp slot file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp slot file: %w", err)
	}

	if err := tempFile.Chmod(slotFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp slot file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp slot file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace slot file: %w", err)
	}

	cleanup = false
	return nil
}
