package dedupe

// Option applies a configuration option to the deduper.
type Option func(*window)

// WithMaxSize bounds the number of remembered ids. Zero or negative keeps every id.
func WithMaxSize(maxSize int) Option {
	return func(w *window) {
		w.maxSize = maxSize
	}
}
