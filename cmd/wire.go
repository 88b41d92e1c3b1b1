package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/watchlist-cli/internal/adapters/catalog/tmdb"
	"github.com/bnema/watchlist-cli/internal/adapters/credentials/chain"
	credfile "github.com/bnema/watchlist-cli/internal/adapters/credentials/file"
	"github.com/bnema/watchlist-cli/internal/adapters/credentials/pass"
	"github.com/bnema/watchlist-cli/internal/adapters/ids"
	"github.com/bnema/watchlist-cli/internal/adapters/storage/file"
	"github.com/bnema/watchlist-cli/internal/adapters/storage/memory"
	redisstore "github.com/bnema/watchlist-cli/internal/adapters/storage/redis"
	"github.com/bnema/watchlist-cli/internal/adapters/storage/sqlite"
	"github.com/bnema/watchlist-cli/internal/application"
	"github.com/bnema/watchlist-cli/internal/config"
	"github.com/bnema/watchlist-cli/internal/durable"
	"github.com/bnema/watchlist-cli/internal/eventlog"
	"github.com/bnema/watchlist-cli/internal/ports"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// app is one context: a storage area handle with its durable store and the
// services layered on it.
type app struct {
	cfg     config.Config
	origin  string
	backend ports.Backend
	store   *durable.Store
	events  *eventlog.Log
	list    *application.ListService
	catalog *application.CatalogService
	logger  *log.Logger
	now     func() time.Time
}

type wireOptions struct {
	verbose bool
	stderr  io.Writer
}

var (
	memoryMu         sync.Mutex
	memoryNamespaces = map[string]*memory.Namespace{}
)

func wireApp(ctx context.Context, opts wireOptions) (*app, error) {
	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.New(opts.stderr, "wl: ", log.LstdFlags|log.Lmicroseconds)
	}

	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	creds, err := openCredentials(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire %s credential store: %w", cfg.Catalog.CredentialStore, err)
	}

	idGen := ids.UUID{}
	origin := idGen.NewID()

	backend, err := openBackend(ctx, cfg, v, origin, logger)
	if err != nil {
		return nil, fmt.Errorf("wire %s storage: %w", cfg.Storage.Backend, err)
	}
	logger.Printf("storage backend=%s area=%s origin=%s", cfg.Storage.Backend, backend.Area(), origin)

	clock := ports.SystemClock{}
	store := durable.NewStore(backend,
		durable.WithDebounce(cfg.Durable.Debounce),
		durable.WithLogger(logger),
	)
	events := eventlog.New(store, idGen, clock, eventlog.WithLogger(logger))
	client := tmdb.NewClient(&http.Client{Timeout: 15 * time.Second}, cfg.Catalog.BaseURL)

	return &app{
		cfg:     cfg,
		origin:  origin,
		backend: backend,
		store:   store,
		events:  events,
		list:    application.NewListService(ctx, store, events, idGen, clock),
		catalog: application.NewCatalogService(store, client, events, clock, application.CatalogConfig{
			APIKey:      cfg.Catalog.APIKey,
			Credentials: creds,
			TTL:         cfg.Catalog.TTL,
		}),
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close flushes pending writes before releasing the backend.
func (a *app) Close() error {
	if err := a.store.Close(); err != nil {
		return err
	}

	return a.backend.Close()
}

func openBackend(ctx context.Context, cfg config.Config, v *viper.Viper, origin string, logger *log.Logger) (ports.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		store, err := file.NewStore(v)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o700); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		store, err := sqlite.Open(cfg.Storage.SQLitePath, cfg.Storage.Area, origin)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendRedis:
		store, err := redisstore.NewStore(&goredis.Options{Addr: cfg.Storage.RedisAddr}, cfg.Storage.Area, origin, redisstore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.Storage.RedisAddr, err)
		}
		return store, nil
	case config.BackendMemory:
		return memoryNamespace(cfg.Storage.Area).Open(origin), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// openCredentials returns nil when stored credentials are disabled.
func openCredentials(cfg config.Config) (ports.CredentialStore, error) {
	if cfg.Catalog.CredentialStore == config.CredentialsNone {
		return nil, nil
	}
	if cfg.Catalog.CredentialStore == config.CredentialsPass {
		return pass.NewStore(), nil
	}

	dir, err := config.CredentialsDir()
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.CredentialStore == config.CredentialsFile {
		return credfile.NewStore(dir), nil
	}

	store, err := chain.NewPassFirstWithFileFallback(dir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// memoryNamespace returns the process-wide namespace for area, so every app
// wired in one process shares it.
func memoryNamespace(area string) *memory.Namespace {
	memoryMu.Lock()
	defer memoryMu.Unlock()

	ns, ok := memoryNamespaces[area]
	if !ok {
		ns = memory.NewNamespace(area)
		memoryNamespaces[area] = ns
	}

	return ns
}
