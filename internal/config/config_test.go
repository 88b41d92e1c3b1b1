package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	for _, key := range []string{
		"WL_CATALOG_API_KEY",
		"WL_CATALOG_BASE_URL",
		"WL_STORAGE_BACKEND",
		"WL_STORAGE_DIR",
		"WL_STORAGE_AREA",
		"WL_REDIS_ADDR",
		"WL_CREDENTIAL_STORE",
	} {
		t.Setenv(key, "")
	}

	return home
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	home := isolateEnv(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	dataDir := filepath.Join(home, ".local", "share", "watchlist")
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, dataDir, cfg.Storage.Dir)
	assert.Equal(t, filepath.Join(dataDir, "watchlist.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, DefaultArea, cfg.Storage.Area)
	assert.Equal(t, DefaultDebounce, cfg.Durable.Debounce)
	assert.Equal(t, DefaultCatalogTTL, cfg.Catalog.TTL)
	assert.Equal(t, DefaultBaseURL, cfg.Catalog.BaseURL)
	assert.Equal(t, CredentialsAuto, cfg.Catalog.CredentialStore)
	assert.Empty(t, cfg.Catalog.APIKey)
	assert.Empty(t, cfg.File)
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := isolateEnv(t)

	configDir := filepath.Join(home, ".config", "watchlist")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`
[storage]
backend = "sqlite"
sqlite_path = "/tmp/wl.db"
area = "work"

[durable]
debounce = "1s"

[catalog]
ttl = "2h"
`), 0o600))

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/wl.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "work", cfg.Storage.Area)
	assert.Equal(t, time.Second, cfg.Durable.Debounce)
	assert.Equal(t, 2*time.Hour, cfg.Catalog.TTL)
	assert.Equal(t, filepath.Join(configDir, "config.toml"), cfg.File)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	home := isolateEnv(t)

	configDir := filepath.Join(home, ".config", "watchlist")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`
[storage]
backend = "sqlite"
`), 0o600))

	t.Setenv("WL_STORAGE_BACKEND", "redis")
	t.Setenv("WL_REDIS_ADDR", "10.0.0.1:6380")
	t.Setenv("WL_CATALOG_API_KEY", "k-123")
	t.Setenv("WL_CATALOG_BASE_URL", "http://localhost:9999/3")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "10.0.0.1:6380", cfg.Storage.RedisAddr)
	assert.Equal(t, "k-123", cfg.Catalog.APIKey)
	assert.Equal(t, "http://localhost:9999/3", cfg.Catalog.BaseURL)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WL_STORAGE_BACKEND", "floppy")

	_, err := Load(viper.New())
	require.ErrorContains(t, err, "unsupported storage backend")
}

func TestLoadCredentialStore(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WL_CREDENTIAL_STORE", "File")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, CredentialsFile, cfg.Catalog.CredentialStore)

	t.Setenv("WL_CREDENTIAL_STORE", "keychain")
	_, err = Load(viper.New())
	require.ErrorContains(t, err, "unsupported credential store")
}

func TestCredentialsDirFollowsConfigDir(t *testing.T) {
	isolateEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	dir, err := CredentialsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg/config", "watchlist", "credentials"), dir)
}

func TestLoadRejectsMalformedConfigFile(t *testing.T) {
	home := isolateEnv(t)

	configDir := filepath.Join(home, ".config", "watchlist")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("[storage\n"), 0o600))

	_, err := Load(viper.New())
	require.ErrorContains(t, err, "read config file")
}

func TestXDGDirectories(t *testing.T) {
	isolateEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	configDir, err := ConfigDir()
	require.NoError(t, err)
	dataDir, err := DataDir()
	require.NoError(t, err)
	path, err := DefaultPath()
	require.NoError(t, err)

	assert.Equal(t, "/xdg/config/watchlist", configDir)
	assert.Equal(t, "/xdg/data/watchlist", dataDir)
	assert.Equal(t, "/xdg/config/watchlist/config.toml", path)
}

func TestWriteDefaultThenLoad(t *testing.T) {
	isolateEnv(t)

	path, err := DefaultPath()
	require.NoError(t, err)
	require.NoError(t, WriteDefault(path, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = WriteDefault(path, false)
	require.ErrorIs(t, err, ErrConfigExists)
	require.NoError(t, WriteDefault(path, true))

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	defaults, err := Defaults()
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	cfg.File = ""
	assert.Equal(t, defaults, cfg)
}

func TestTOMLRedactsCredential(t *testing.T) {
	isolateEnv(t)

	cfg, err := Defaults()
	require.NoError(t, err)
	cfg.Catalog.APIKey = "super-secret"

	encoded, err := cfg.TOML()
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "super-secret")

	var decoded map[string]any
	require.NoError(t, toml.Unmarshal(encoded, &decoded))
	catalog := decoded["catalog"].(map[string]any)
	assert.Equal(t, "<redacted>", catalog["api_key"])
	assert.Equal(t, "10m0s", catalog["ttl"])
}
