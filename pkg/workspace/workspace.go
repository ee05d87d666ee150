// Package workspace opens a bean project: it parses the configuration units
// named by the descriptor, loads the type backend and wires a beans.Engine
// over both.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/cmmoran/beanres/internal/gotypes"
	"github.com/cmmoran/beanres/internal/javatypes"
	"github.com/cmmoran/beanres/internal/xmlconfig"
	"github.com/cmmoran/beanres/pkg/beans"
	"github.com/cmmoran/beanres/pkg/project"
)

var ErrUnknownBackend = errors.New("unknown type backend")

// Workspace is a loaded project.
type Workspace struct {
	mu           sync.RWMutex
	project      *project.Project
	model        *beans.Model
	introspector beans.Introspector
	engine       *beans.Engine
	opts         *Options
}

// Open loads the descriptor at path and everything it names.
func Open(ctx context.Context, path string, opts ...Option) (*Workspace, error) {
	o := NewOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.Normalize()

	p, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	if o.Backend != "" {
		p.Backend = o.Backend
	}
	w := &Workspace{project: p, opts: o}

	if w.model, err = LoadModel(p, o.Logger); err != nil {
		return nil, err
	}
	if w.introspector, err = LoadIntrospector(ctx, p, o); err != nil {
		return nil, err
	}
	w.engine = w.newEngine()
	o.Logger.With("project", path, "units", len(w.model.Units()), "backend", p.Backend).Info("workspace opened")
	return w, nil
}

func (w *Workspace) newEngine() *beans.Engine {
	opts := append([]beans.Option{beans.WithLogger(w.opts.Logger)}, w.opts.Engine...)
	return beans.NewEngine(w.model, w.introspector, opts...)
}

func (w *Workspace) Project() *project.Project {
	return w.project
}

func (w *Workspace) Model() *beans.Model {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.model
}

func (w *Workspace) Engine() *beans.Engine {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.engine
}

// UnitNames lists the loaded units in load order.
func (w *Workspace) UnitNames() []string {
	var out []string
	for _, u := range w.Model().Units() {
		out = append(out, u.Name)
	}
	return out
}

// ReloadUnits re-parses every configuration unit. The type backend is kept.
func (w *Workspace) ReloadUnits() error {
	m, err := LoadModel(w.project, w.opts.Logger)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.model = m
	w.engine = w.newEngine()
	return nil
}

// ReloadTypes reloads the type backend, using the index cache when it is
// still fresh.
func (w *Workspace) ReloadTypes(ctx context.Context) error {
	in, err := LoadIntrospector(ctx, w.project, w.opts)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.introspector = in
	w.engine = w.newEngine()
	return nil
}

// WatchRoots lists the directories holding units and sources.
func (w *Workspace) WatchRoots() []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	for _, u := range w.UnitNames() {
		add(filepath.Dir(w.project.Path(u)))
	}
	for _, root := range SourceRoots(w.project) {
		add(root)
	}
	return out
}

// LoadModel parses the units of p, following imports, into a new model.
// Declared units must exist; imported units that are missing are skipped.
func LoadModel(p *project.Project, logger *slog.Logger) (*beans.Model, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		m        = beans.NewModel()
		pending  = p.AllUnits()
		seen     = make(map[string]bool)
		declared = len(pending)
	)
	for i := 0; i < len(pending); i++ {
		name := pending[i]
		if seen[name] {
			continue
		}
		seen[name] = true

		u, err := xmlconfig.ParseFile(p.Path(name), name)
		if err != nil {
			if i >= declared && errors.Is(err, os.ErrNotExist) {
				logger.With("unit", name).Warn("imported unit not found")
				continue
			}
			return nil, fmt.Errorf("load unit %s: %w", name, err)
		}
		m.AddUnit(u)
		pending = append(pending, u.Imports...)
	}
	for _, s := range p.BeanConfigSets() {
		m.AddConfigSet(s)
	}
	return m, nil
}

// LoadIntrospector loads the type backend selected by p.Backend.
func LoadIntrospector(ctx context.Context, p *project.Project, o *Options) (beans.Introspector, error) {
	switch p.Backend {
	case project.BackendJava, "":
		x, _, err := BuildJavaIndex(ctx, SourceRoots(p), o.IndexCache, o.Reindex, o.Logger)
		if err != nil {
			return nil, err
		}
		return x, nil
	case project.BackendGo:
		return gotypes.Load(ctx, SourceRoots(p)[0], o.Logger)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, p.Backend)
}

// BuildJavaIndex returns a Java type index for roots. With a cache it loads
// the cached index unless reindex is set or a source changed, and saves a
// rebuilt one. The boolean reports whether the index came from the cache.
func BuildJavaIndex(ctx context.Context, roots []string, cache string, reindex bool, logger *slog.Logger) (*javatypes.Index, bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == "" {
		x := javatypes.NewIndex(logger)
		return x, false, x.Build(ctx, roots...)
	}

	store, err := javatypes.OpenStore(cache)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = store.Close() }()

	if !reindex {
		x, err := store.Load(ctx, logger)
		switch {
		case errors.Is(err, javatypes.ErrIndexNotBuilt):
		case err != nil:
			return nil, false, err
		default:
			stale, err := x.Stale(roots...)
			if err != nil {
				return nil, false, err
			}
			if !stale {
				return x, true, nil
			}
			logger.With("cache", cache).Info("java index cache is stale")
		}
	}

	x := javatypes.NewIndex(logger)
	if err := x.Build(ctx, roots...); err != nil {
		return nil, false, err
	}
	if err := store.Save(ctx, x); err != nil {
		return nil, false, fmt.Errorf("save index: %w", err)
	}
	return x, false, nil
}

// SourceRoots resolves the descriptor's source roots, defaulting to the
// project directory.
func SourceRoots(p *project.Project) []string {
	if len(p.SourceRoots) == 0 {
		return []string{p.Dir()}
	}
	out := make([]string, 0, len(p.SourceRoots))
	for _, r := range p.SourceRoots {
		out = append(out, p.Path(r))
	}
	return out
}
