package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jonny/pdm-service/internal/adapter/outbound/persistence/sqlite/migration"
)

// validJournalModes defines accepted SQLite journal modes.
var validJournalModes = map[string]bool{
	"wal": true, "delete": true, "truncate": true,
	"persist": true, "memory": true, "off": true,
}

// Config holds SQLite connection configuration.
type Config struct {
	Path              string
	MaxOpenConns      int
	PragmaJournalMode string
	PragmaBusyTimeout int
}

// Store wraps a *sql.DB and exposes it for repository use.
type Store struct {
	DB *sql.DB
}

// NewStore opens the SQLite database at cfg.Path, applies pragmas, and runs migrations.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.PragmaJournalMode != "" && !validJournalModes[strings.ToLower(cfg.PragmaJournalMode)] {
		return nil, fmt.Errorf("invalid pragma journal mode: %q", cfg.PragmaJournalMode)
	}
	if cfg.Path != ":memory:" && !strings.HasPrefix(cfg.Path, "file:") {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	// An in-memory database lives as long as its connection.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if err := migration.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{DB: db}, nil
}

func dsn(cfg Config) string {
	params := url.Values{}
	if cfg.PragmaJournalMode != "" {
		params.Set("_journal_mode", strings.ToUpper(cfg.PragmaJournalMode))
	}
	if cfg.PragmaBusyTimeout > 0 {
		params.Set("_busy_timeout", strconv.Itoa(cfg.PragmaBusyTimeout))
	}
	if len(params) == 0 {
		return cfg.Path
	}
	return cfg.Path + "?" + params.Encode()
}

// Ping checks that the database is reachable and its schema is current.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return err
	}
	pending, err := migration.Pending(ctx, s.DB)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return fmt.Errorf("schema out of date: pending migrations %s", strings.Join(pending, ", "))
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.DB.Close() }
