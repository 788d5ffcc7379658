// Package dedupe remembers recently handled interaction ids so redelivered
// interactions are applied once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 10000

// Deduper records request ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool
	// Forget removes id so a failed interaction can be retried.
	Forget(ctx context.Context, id string)
	// Size returns the number of remembered ids.
	Size() int
}

// window keeps the most recent ids in a ring; the oldest id is evicted first.
// maxSize <= 0 disables eviction.
type window struct {
	mu      sync.Mutex
	seen    map[string]int // id -> ring slot, -1 when unbounded
	ring    []string
	next    int
	maxSize int
}

// New creates an in-memory deduper.
func New(opts ...Option) Deduper {
	w := &window{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(w)
	}
	w.seen = make(map[string]int)
	if w.maxSize > 0 {
		w.ring = make([]string, w.maxSize)
	}
	return w
}

func (w *window) SeenAndRecord(_ context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[id]; ok {
		return true
	}
	if w.maxSize <= 0 {
		w.seen[id] = -1
		return false
	}

	if old := w.ring[w.next]; old != "" {
		delete(w.seen, old)
	}
	w.ring[w.next] = id
	w.seen[id] = w.next
	w.next = (w.next + 1) % w.maxSize
	return false
}

func (w *window) Forget(_ context.Context, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot, ok := w.seen[id]
	if !ok {
		return
	}
	delete(w.seen, id)
	if slot >= 0 {
		w.ring[slot] = ""
	}
}

func (w *window) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}
