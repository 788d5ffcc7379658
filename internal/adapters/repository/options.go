package repository

import "os"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode os.FileMode) Option {
	return func(s *FileStore) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

// WithBackupDir overrides the directory backups are written to.
func WithBackupDir(dir string) Option {
	return func(s *FileStore) {
		if dir != "" {
			s.backupDir = dir
		}
	}
}
