package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/watchlist-cli/internal/adapters/storage/sqlite/migrations"
	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
	_ "modernc.org/sqlite"
)

const defaultPollInterval = 250 * time.Millisecond

type Store struct {
	sqlDB        *sql.DB
	area         string
	origin       string
	pollInterval time.Duration
}

type Option func(*Store)

// WithPollInterval sets how often change feeds poll for new rows.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Store) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

var _ ports.Backend = (*Store)(nil)

// Open opens and migrates the database at path. origin is stamped on every
// write made through this handle.
func Open(path, area, origin string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if strings.TrimSpace(area) == "" {
		return nil, fmt.Errorf("storage area is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := &Store{
		sqlDB:        sqlDB,
		area:         strings.TrimSpace(area),
		origin:       origin,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Area() string {
	return s.area
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("slot name is required")
	}

	var value []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE area = ? AND name = ? AND value IS NOT NULL`,
		s.area, name,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sqlite slot %q: %w", name, domain.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("get slot %q: %w", name, err)
	}

	return value, nil
}

func (s *Store) Put(ctx context.Context, name string, value []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("slot name is required")
	}
	if value == nil {
		value = []byte{}
	}

	return s.upsert(ctx, name, value)
}

func (s *Store) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("slot name is required")
	}

	if _, err := s.Get(ctx, name); err != nil {
		if errors.Is(err, domain.ErrSlotNotFound) {
			return nil
		}
		return err
	}

	return s.upsert(ctx, name, nil)
}

func (s *Store) upsert(ctx context.Context, name string, value []byte) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO slots (area, name, value, origin, seq, updated_at)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM slots), ?)
		 ON CONFLICT(area, name) DO UPDATE SET
		    value = excluded.value,
		    origin = excluded.origin,
		    seq = excluded.seq,
		    updated_at = excluded.updated_at`,
		s.area,
		name,
		value,
		s.origin,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put slot %q: %w", name, err)
	}
	return nil
}

func (s *Store) headSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM slots`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read head sequence: %w", err)
	}
	return seq, nil
}

func (s *Store) changesSince(ctx context.Context, seq int64) ([]ports.Change, int64, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, value, origin, seq FROM slots WHERE area = ? AND seq > ? ORDER BY seq`,
		s.area, seq,
	)
	if err != nil {
		return nil, seq, fmt.Errorf("poll slot changes: %w", err)
	}
	defer rows.Close()

	var changes []ports.Change
	head := seq
	for rows.Next() {
		var change ports.Change
		var rowSeq int64
		if err := rows.Scan(&change.Name, &change.Value, &change.Origin, &rowSeq); err != nil {
			return nil, seq, fmt.Errorf("scan slot change: %w", err)
		}
		change.Area = s.area
		changes = append(changes, change)
		head = rowSeq
	}
	if err := rows.Err(); err != nil {
		return nil, seq, fmt.Errorf("iterate slot changes: %w", err)
	}

	return changes, head, nil
}
