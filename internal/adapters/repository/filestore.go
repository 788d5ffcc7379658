package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/bounceland/pkg/metrics"
)

const (
	defaultFileMode = 0o644
	dirMode         = 0o755
)

// FileStore keeps one indented JSON file per key inside a directory.
type FileStore struct {
	dir       string
	backupDir string
	fileMode  os.FileMode
}

// NewFileStore creates dir (and its backup directory) if needed.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	s := &FileStore{
		dir:       dir,
		backupDir: filepath.Join(dir, "backups"),
		fileMode:  defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, d := range []string{s.dir, s.backupDir} {
		if err := os.MkdirAll(d, dirMode); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrIO, d, err)
		}
	}
	return s, nil
}

// Load implements DocumentStore.
func (s *FileStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	start := time.Now()
	defer observe("load", start)

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := checkName(key); err != nil {
		return false, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		metrics.RecordPersistenceError("load")
		return false, fmt.Errorf("%w: read %s: %v", ErrIO, key, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.RecordPersistenceError("load")
		return false, fmt.Errorf("%w: %w: %s: %v", ErrIO, ErrCorrupt, key, err)
	}
	return true, nil
}

// Save implements DocumentStore. The file is replaced atomically.
func (s *FileStore) Save(ctx context.Context, key string, v any) error {
	start := time.Now()
	defer observe("save", start)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(key); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.writeAtomic(s.path(key), buf.Bytes()); err != nil {
		metrics.RecordPersistenceError("save")
		return err
	}
	return nil
}

// SaveBackup implements DocumentStore.
func (s *FileStore) SaveBackup(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	defer observe("backup", start)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(name); err != nil {
		return err
	}
	if err := s.writeAtomic(filepath.Join(s.backupDir, name), data); err != nil {
		metrics.RecordPersistenceError("backup")
		return err
	}
	return nil
}

// Close implements DocumentStore.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, path, err)
	}
	if err := os.Chmod(tmpName, s.fileMode); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", ErrIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrIO, path, err)
	}
	return nil
}

func observe(op string, start time.Time) {
	metrics.RecordPersistenceLatency(op, float64(time.Since(start).Microseconds())/1000)
}
