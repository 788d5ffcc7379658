// Package repository persists whole JSON documents and backup blobs.
package repository

import "context"

// Document keys.
const (
	KeyBounceland        = "bounceland"
	KeyBouncelandMessage = "bounceland_message"
	KeyMeal              = "meal"
	KeyMealMessage       = "meal_message"
)

// DocumentStore saves and loads JSON documents by key.
type DocumentStore interface {
	// Load decodes the document stored under key into dst. It reports false,
	// leaving dst untouched, when no document exists.
	Load(ctx context.Context, key string, dst any) (bool, error)
	// Save replaces the document stored under key.
	Save(ctx context.Context, key string, v any) error
	// SaveBackup stores an opaque backup blob under name.
	SaveBackup(ctx context.Context, name string, data []byte) error
	// Close releases resources.
	Close() error
}
