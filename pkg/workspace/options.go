package workspace

import (
	"log/slog"

	"github.com/cmmoran/beanres/pkg/beans"
	"github.com/cmmoran/beanres/pkg/project"
)

// Options control how a workspace is opened.
//
// Backend     – overrides the descriptor's backend when set.
// IndexCache  – sqlite file caching the Java type index; empty disables it.
// Reindex     – ignore the cache and rebuild the index.
// Engine      – options passed to the beans.Engine.
type Options struct {
	Backend    project.Backend `json:"backend,omitempty" yaml:"backend,omitempty" mapstructure:"backend,omitempty"`
	IndexCache string          `json:"index_cache,omitempty" yaml:"index_cache,omitempty" mapstructure:"index_cache,omitempty"`
	Reindex    bool            `json:"reindex,omitempty" yaml:"reindex,omitempty" mapstructure:"reindex,omitempty"`
	Logger     *slog.Logger    `json:"-" yaml:"-" mapstructure:"-"`
	Engine     []beans.Option  `json:"-" yaml:"-" mapstructure:"-"`
}

func NewOptions() *Options {
	return &Options{}
}

func (o *Options) Normalize() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithBackend(b project.Backend) Option { return func(o *Options) { o.Backend = b } }
func WithIndexCache(path string) Option    { return func(o *Options) { o.IndexCache = path } }
func WithReindex() Option                  { return func(o *Options) { o.Reindex = true } }
func WithLogger(l *slog.Logger) Option     { return func(o *Options) { o.Logger = l } }
func WithEngineOptions(opts ...beans.Option) Option {
	return func(o *Options) { o.Engine = append(o.Engine, opts...) }
}
