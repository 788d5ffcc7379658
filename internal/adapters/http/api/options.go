package api

const defaultMaxUpload = 10 << 20

type options struct {
	maxUpload int64
}

// Option configures the Server.
type Option func(*options)

// WithMaxUpload limits the size of imported tables.
func WithMaxUpload(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUpload = n
		}
	}
}
