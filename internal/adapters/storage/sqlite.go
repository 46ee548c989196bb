// Package storage provides the SQLite implementation of the state store port.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/pomo/internal/domain"
	"github.com/xvierd/pomo/internal/ports"
	_ "modernc.org/sqlite"
)

// StateKey is the row holding the persisted timer state.
const StateKey = "plan-manager-pomodoro-v1"

// sqliteStore implements ports.StateStore as a single JSON value in a
// key-value table.
type sqliteStore struct {
	db *sql.DB
}

// Ensure sqliteStore implements ports.StateStore.
var _ ports.StateStore = (*sqliteStore)(nil)

// New opens (or creates) the SQLite database at dbPath.
func New(dbPath string) (ports.StateStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &sqliteStore{db: db}
	if err := store.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// NewMemory creates a new in-memory SQLite store for testing.
func NewMemory() (ports.StateStore, error) {
	return New(":memory:")
}

// Migrate creates the database schema.
func (s *sqliteStore) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Load returns the persisted state, or nil when nothing was saved yet.
func (s *sqliteStore) Load(ctx context.Context) (*domain.PersistedState, error) {
	return s.load(ctx, s.db)
}

// Save replaces the persisted state.
func (s *sqliteStore) Save(ctx context.Context, state *domain.PersistedState) error {
	return s.Update(ctx, func(*domain.PersistedState) (*domain.PersistedState, error) {
		if state == nil {
			return nil, nil
		}
		cp := *state
		return &cp, nil
	})
}

// Update runs a read-modify-write of the state inside one transaction.
func (s *sqliteStore) Update(ctx context.Context, fn func(current *domain.PersistedState) (*domain.PersistedState, error)) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	// IMMEDIATE takes the write lock before the read, so two processes
	// never build on the same revision.
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	current, err := s.load(ctx, conn)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		next = &domain.PersistedState{}
	}
	next.Revision = 1
	if current != nil {
		next.Revision = current.Revision + 1
	}

	value, err := encodeState(next)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", StateKey, err)
	}
	if err := s.put(ctx, conn, StateKey, value); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit %s: %w", StateKey, err)
	}
	committed = true
	return nil
}

// Close closes the database connection.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Conn.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqliteStore) load(ctx context.Context, q querier) (*domain.PersistedState, error) {
	value, err := s.get(ctx, q, StateKey)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}

	state, err := decodeState(value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", StateKey, err)
	}
	return state, nil
}

func (s *sqliteStore) get(ctx context.Context, q querier, key string) ([]byte, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *sqliteStore) put(ctx context.Context, q querier, key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := q.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
