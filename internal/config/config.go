// Package config resolves runtime settings from the config file and the
// process environment. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	CredentialsAuto = "auto"
	CredentialsPass = "pass"
	CredentialsFile = "file"
	CredentialsNone = "none"

	StorageBackendKey    = "storage.backend"
	StorageDirKey        = "storage.dir"
	StorageSQLitePathKey = "storage.sqlite_path"
	StorageRedisAddrKey  = "storage.redis_addr"
	StorageAreaKey       = "storage.area"
	DurableDebounceKey   = "durable.debounce"
	CatalogTTLKey        = "catalog.ttl"
	CatalogBaseURLKey    = "catalog.base_url"
	CatalogImageURLKey   = "catalog.image_base_url"
	CatalogCredentialKey = "catalog.credential_store"

	DefaultBackend      = BackendFile
	DefaultArea         = "default"
	DefaultRedisAddr    = "127.0.0.1:6379"
	DefaultDebounce     = 300 * time.Millisecond
	DefaultCatalogTTL   = 10 * time.Minute
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w300"
	DefaultCredentials  = CredentialsAuto

	configName = "config"
	configType = "toml"
	appDir     = "watchlist"
)

type Config struct {
	Storage StorageConfig
	Durable DurableConfig
	Catalog CatalogConfig

	// File is the config file that was read, empty when none exists.
	File string
}

type StorageConfig struct {
	Backend    string
	Dir        string
	SQLitePath string
	RedisAddr  string
	Area       string
}

type DurableConfig struct {
	Debounce time.Duration
}

type CatalogConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	TTL          time.Duration

	// CredentialStore picks where a key saved with "wl credential set"
	// lives: auto (pass, then files), pass, file or none.
	CredentialStore string
}

// Load reads <config dir>/watchlist/config.toml into cfg and overlays the
// environment. A missing config file is not an error.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	configDir, err := ConfigDir()
	if err != nil {
		return Config{}, err
	}
	dataDir, err := DataDir()
	if err != nil {
		return Config{}, err
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)
	setDefaults(cfg, dataDir)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var env Env
	if err := ParseEnv(&env); err != nil {
		return Config{}, err
	}
	env.apply(cfg)

	loaded := Config{
		Storage: StorageConfig{
			Backend:    strings.ToLower(strings.TrimSpace(cfg.GetString(StorageBackendKey))),
			Dir:        cfg.GetString(StorageDirKey),
			SQLitePath: cfg.GetString(StorageSQLitePathKey),
			RedisAddr:  cfg.GetString(StorageRedisAddrKey),
			Area:       cfg.GetString(StorageAreaKey),
		},
		Durable: DurableConfig{Debounce: cfg.GetDuration(DurableDebounceKey)},
		Catalog: CatalogConfig{
			APIKey:       env.CatalogAPIKey,
			BaseURL:      cfg.GetString(CatalogBaseURLKey),
			ImageBaseURL: cfg.GetString(CatalogImageURLKey),
			TTL:          cfg.GetDuration(CatalogTTLKey),

			CredentialStore: strings.ToLower(strings.TrimSpace(cfg.GetString(CatalogCredentialKey))),
		},
		File: cfg.ConfigFileUsed(),
	}

	if err := loaded.Validate(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unsupported storage backend %q (want file, sqlite, redis or memory)", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Area) == "" {
		return errors.New("storage area cannot be empty")
	}
	if c.Durable.Debounce < 0 {
		return fmt.Errorf("durable debounce cannot be negative: %s", c.Durable.Debounce)
	}
	if c.Catalog.TTL <= 0 {
		return fmt.Errorf("catalog ttl must be positive: %s", c.Catalog.TTL)
	}
	switch c.Catalog.CredentialStore {
	case CredentialsAuto, CredentialsPass, CredentialsFile, CredentialsNone:
	default:
		return fmt.Errorf("unsupported credential store %q (want auto, pass, file or none)", c.Catalog.CredentialStore)
	}

	return nil
}

func setDefaults(cfg *viper.Viper, dataDir string) {
	cfg.SetDefault(StorageBackendKey, DefaultBackend)
	cfg.SetDefault(StorageDirKey, dataDir)
	cfg.SetDefault(StorageSQLitePathKey, filepath.Join(dataDir, "watchlist.db"))
	cfg.SetDefault(StorageRedisAddrKey, DefaultRedisAddr)
	cfg.SetDefault(StorageAreaKey, DefaultArea)
	cfg.SetDefault(DurableDebounceKey, DefaultDebounce)
	cfg.SetDefault(CatalogTTLKey, DefaultCatalogTTL)
	cfg.SetDefault(CatalogBaseURLKey, DefaultBaseURL)
	cfg.SetDefault(CatalogImageURLKey, DefaultImageBaseURL)
	cfg.SetDefault(CatalogCredentialKey, DefaultCredentials)
}

// ConfigDir is $XDG_CONFIG_HOME/watchlist, or ~/.config/watchlist.
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDir), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appDir), nil
}

// DataDir is $XDG_DATA_HOME/watchlist, or ~/.local/share/watchlist.
func DataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appDir), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", appDir), nil
}

func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, configName+"."+configType), nil
}

// CredentialsDir holds keys saved by the file credential store.
func CredentialsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "credentials"), nil
}
