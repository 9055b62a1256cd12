package rbxfile

import "log/slog"

// WriteOption configures a serialization pass.
type WriteOption func(*writeOptions)

type writeOptions struct {
	logger    *slog.Logger
	referents func() ReferentFunc
}

func defaultWriteOptions() *writeOptions {
	return &writeOptions{
		logger:    slog.Default(),
		referents: UUIDReferents,
	}
}

// WithLogger sets the logger that receives dropped-property diagnostics.
func WithLogger(logger *slog.Logger) WriteOption {
	return func(o *writeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSequentialReferents numbers referents with a counter that restarts
// every pass instead of generating random ones. Output becomes
// deterministic.
func WithSequentialReferents() WriteOption {
	return func(o *writeOptions) {
		o.referents = SequentialReferents
	}
}

// WithReferents sets the referent generator. newSource is called once per
// pass.
func WithReferents(newSource func() ReferentFunc) WriteOption {
	return func(o *writeOptions) {
		if newSource != nil {
			o.referents = newSource
		}
	}
}
