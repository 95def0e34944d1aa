package runtime

import (
	"context"
	"log/slog"

	"github.com/vcrobe/lazydom/lazyref"
)

// DefaultMaxFlushPasses bounds how many times one flush re-renders
// instances that keep dirtying each other.
const DefaultMaxFlushPasses = 64

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithErrorHandler sets the error channel. Render, resolution and handler
// errors are delivered here instead of being returned. The default logs
// them at error level.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Renderer) {
		r.onError = fn
	}
}

// WithLoader resolves deferred references through loader.
func WithLoader(loader lazyref.Loader) Option {
	return func(r *Renderer) {
		r.resolver = lazyref.NewResolver(loader)
	}
}

// WithResolver shares an existing resolver and its cache.
func WithResolver(res *lazyref.Resolver) Option {
	return func(r *Renderer) {
		r.resolver = res
	}
}

// WithRegistry resolves components referenced by name.
func WithRegistry(reg *Registry) Option {
	return func(r *Renderer) {
		r.registry = reg
	}
}

// WithStyleInjector sets where component styles go. By default they are
// appended to the head of the host's document.
func WithStyleInjector(s StyleInjector) Option {
	return func(r *Renderer) {
		r.styles = s
	}
}

// WithMetrics records renderer metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// WithMaxFlushPasses overrides DefaultMaxFlushPasses.
func WithMaxFlushPasses(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxPasses = n
		}
	}
}

// WithContext sets the context handed to handlers and loads started by
// host events.
func WithContext(ctx context.Context) Option {
	return func(r *Renderer) {
		r.ctx = ctx
	}
}
