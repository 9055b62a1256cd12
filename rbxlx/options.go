package rbxlx

import (
	"log/slog"

	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

// Option configures Encode and Decode.
type Option func(*options)

type options struct {
	registry *rbxfile.Registry
	logger   *slog.Logger
	write    []rbxfile.WriteOption
	indent   int
}

func defaultOptions() *options {
	return &options{
		logger: slog.Default(),
		indent: -1,
	}
}

// WithRegistry binds decoded instances to the registry's class tables.
func WithRegistry(r *rbxfile.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger sets the logger for skipped-property diagnostics on both
// encode and decode.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSerializeOptions passes options through to rbxfile.Serialize.
func WithSerializeOptions(opts ...rbxfile.WriteOption) Option {
	return func(o *options) {
		o.write = append(o.write, opts...)
	}
}

// WithIndent indents output with n spaces per level. A negative n, the
// default, indents with tabs.
func WithIndent(n int) Option {
	return func(o *options) {
		o.indent = n
	}
}
