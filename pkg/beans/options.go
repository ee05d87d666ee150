package beans

import (
	"log/slog"
)

// Options control an Engine.
//
// Logger           – receives Debug records for every degraded resolution.
// IncludeSubtypes  – expand required types with known subtypes (default true).
// MaxPathSegments  – reject longer property paths; 0 means no limit.
type Options struct {
	Logger          *slog.Logger `json:"-" yaml:"-" mapstructure:"-"`
	IncludeSubtypes bool         `json:"include_subtypes,omitempty" yaml:"include_subtypes,omitempty" mapstructure:"include_subtypes,omitempty"`
	MaxPathSegments int          `json:"max_path_segments,omitempty" yaml:"max_path_segments,omitempty" mapstructure:"max_path_segments,omitempty"`
}

func NewOptions() *Options {
	return &Options{
		IncludeSubtypes: true,
	}
}

func (o *Options) Normalize() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.MaxPathSegments < 0 {
		o.MaxPathSegments = 0
	}
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithLogger(l *slog.Logger) Option { return func(o *Options) { o.Logger = l } }
func WithoutSubtypes() Option          { return func(o *Options) { o.IncludeSubtypes = false } }
func WithMaxPathSegments(n int) Option { return func(o *Options) { o.MaxPathSegments = n } }
