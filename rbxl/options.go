package rbxl

import (
	"log/slog"

	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

// Option configures Encode and Decode.
type Option func(*options)

type options struct {
	registry    *rbxfile.Registry
	logger      *slog.Logger
	write       []rbxfile.WriteOption
	compression Compression
}

func defaultOptions() *options {
	return &options{
		logger:      slog.Default(),
		compression: CompressionZstd,
	}
}

// WithCompression sets how Encode stores chunk payloads. The default is
// CompressionZstd.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithRegistry binds decoded instances to the registry's class tables.
func WithRegistry(r *rbxfile.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger sets the logger for skipped-property and unknown-chunk
// diagnostics.
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
