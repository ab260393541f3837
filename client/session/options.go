package session

import (
	"log/slog"
	"time"
)

// Option configures a [Cache].
type Option func(*options)

type options struct {
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// WithTTL overrides [DefaultTTL]. Non-positive values are ignored.
func WithTTL(d time.Duration) Option {
	return func(opts *options) {
		if d > 0 {
			opts.ttl = d
		}
	}
}

// WithClock replaces time.Now, mainly so tests can move time forward.
func WithClock(now func() time.Time) Option {
	return func(opts *options) {
		if now != nil {
			opts.now = now
		}
	}
}

// WithLogger sets the logger used for refresh diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}
