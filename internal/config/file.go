package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileMode = 0o600
	configDirMode  = 0o700
	redacted       = "<redacted>"
)

var ErrConfigExists = errors.New("config file already exists")

type fileSchema struct {
	Storage storageSchema `toml:"storage"`
	Durable durableSchema `toml:"durable"`
	Catalog catalogSchema `toml:"catalog"`
}

type storageSchema struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	SQLitePath string `toml:"sqlite_path"`
	RedisAddr  string `toml:"redis_addr"`
	Area       string `toml:"area"`
}

type durableSchema struct {
	Debounce string `toml:"debounce"`
}

type catalogSchema struct {
	TTL             string `toml:"ttl"`
	BaseURL         string `toml:"base_url"`
	ImageBaseURL    string `toml:"image_base_url"`
	CredentialStore string `toml:"credential_store"`
	APIKey          string `toml:"api_key,omitempty"`
}

func toSchema(c Config) fileSchema {
	return fileSchema{
		Storage: storageSchema{
			Backend:    c.Storage.Backend,
			Dir:        c.Storage.Dir,
			SQLitePath: c.Storage.SQLitePath,
			RedisAddr:  c.Storage.RedisAddr,
			Area:       c.Storage.Area,
		},
		Durable: durableSchema{Debounce: c.Durable.Debounce.String()},
		Catalog: catalogSchema{
			TTL:          c.Catalog.TTL.String(),
			BaseURL:      c.Catalog.BaseURL,
			ImageBaseURL: c.Catalog.ImageBaseURL,

			CredentialStore: c.Catalog.CredentialStore,
		},
	}
}

// Defaults is the configuration used when neither a file nor the
// environment set anything.
func Defaults() (Config, error) {
	dataDir, err := DataDir()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Storage: StorageConfig{
			Backend:    DefaultBackend,
			Dir:        dataDir,
			SQLitePath: filepath.Join(dataDir, "watchlist.db"),
			RedisAddr:  DefaultRedisAddr,
			Area:       DefaultArea,
		},
		Durable: DurableConfig{Debounce: DefaultDebounce},
		Catalog: CatalogConfig{
			BaseURL:      DefaultBaseURL,
			ImageBaseURL: DefaultImageBaseURL,
			TTL:          DefaultCatalogTTL,

			CredentialStore: DefaultCredentials,
		},
	}, nil
}

// WriteDefault writes the default configuration to path. An existing file
// is kept unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	defaults, err := Defaults()
	if err != nil {
		return err
	}

	encoded, err := toml.Marshal(toSchema(defaults))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, err := tempFile.Write(encoded); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	return nil
}

// TOML renders the effective configuration. The catalog credential is
// never printed, only whether it is set.
func (c Config) TOML() ([]byte, error) {
	schema := toSchema(c)
	if c.Catalog.APIKey != "" {
		schema.Catalog.APIKey = redacted
	}

	encoded, err := toml.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return encoded, nil
}
