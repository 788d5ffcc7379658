package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/bounceland/pkg/metrics"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS backups (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`

// SQLiteStore keeps documents and backups in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database at path and creates the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", ErrIO)
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrIO, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping sqlite: %v", ErrIO, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrIO, err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Load implements DocumentStore.
func (s *SQLiteStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	start := time.Now()
	defer observe("load", start)

	if err := s.ready(ctx, key); err != nil {
		return false, err
	}
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		metrics.RecordPersistenceError("load")
		return false, fmt.Errorf("%w: select %s: %v", ErrIO, key, err)
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		metrics.RecordPersistenceError("load")
		return false, fmt.Errorf("%w: %w: %s: %v", ErrIO, ErrCorrupt, key, err)
	}
	return true, nil
}

// Save implements DocumentStore.
func (s *SQLiteStore) Save(ctx context.Context, key string, v any) error {
	start := time.Now()
	defer observe("save", start)

	if err := s.ready(ctx, key); err != nil {
		return err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, string(body), s.now().UnixMilli())
	if err != nil {
		metrics.RecordPersistenceError("save")
		return fmt.Errorf("%w: upsert %s: %v", ErrIO, key, err)
	}
	return nil
}

// SaveBackup implements DocumentStore.
func (s *SQLiteStore) SaveBackup(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	defer observe("backup", start)

	if err := s.ready(ctx, name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO backups (name, data, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		name, data, s.now().UnixMilli())
	if err != nil {
		metrics.RecordPersistenceError("backup")
		return fmt.Errorf("%w: insert backup %s: %v", ErrIO, name, err)
	}
	return nil
}

// Backup returns the blob stored under name.
func (s *SQLiteStore) Backup(ctx context.Context, name string) ([]byte, bool, error) {
	if err := s.ready(ctx, name); err != nil {
		return nil, false, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM backups WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: select backup %s: %v", ErrIO, name, err)
	}
	return data, true, nil
}

// Close implements DocumentStore.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ready(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: store is not open", ErrIO)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return checkName(name)
}
