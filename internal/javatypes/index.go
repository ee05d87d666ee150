package javatypes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var ErrIndexNotBuilt = errors.New("java type index not built")

// SourceFile records the state of an indexed file for staleness checks.
type SourceFile struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Index holds every known Java type. It is safe for concurrent reads once
// built.
type Index struct {
	mu       sync.RWMutex
	types    map[string]*TypeInfo
	bySimple map[string][]string
	sources  map[string]SourceFile
	built    bool
	logger   *slog.Logger
}

// NewIndex returns an index seeded with the builtin JDK types.
func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	x := &Index{logger: logger}
	x.reset()
	return x
}

func (x *Index) reset() {
	x.types = make(map[string]*TypeInfo)
	x.bySimple = make(map[string][]string)
	x.sources = make(map[string]SourceFile)
	for _, t := range builtinTypes() {
		x.add(t)
	}
}

func (x *Index) add(t *TypeInfo) {
	if prev, ok := x.types[t.Name]; ok && !prev.Builtin {
		// the first declaration of a name wins
		return
	}
	if _, ok := x.types[t.Name]; !ok {
		s := t.SimpleName()
		x.bySimple[s] = append(x.bySimple[s], t.Name)
	}
	x.types[t.Name] = t
}

// Add registers types directly. Used when loading a cached index.
func (x *Index) Add(types ...*TypeInfo) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, t := range types {
		if t != nil {
			x.add(t)
		}
	}
	x.built = true
}

// AddSource parses src and registers the types it declares.
func (x *Index) AddSource(ctx context.Context, file string, src []byte) error {
	types, err := ParseSource(ctx, file, src)
	if err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	x.Add(types...)
	return nil
}

// Build replaces the index contents with the types declared under roots.
func (x *Index) Build(ctx context.Context, roots ...string) error {
	var (
		parsed  []*TypeInfo
		sources = make(map[string]SourceFile)
	)
	err := walkSources(roots, func(path string, info fs.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		types, err := ParseSource(ctx, path, src)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		parsed = append(parsed, types...)
		sources[path] = SourceFile{Path: path, Size: info.Size(), ModTime: info.ModTime()}
		return nil
	})
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.reset()
	for _, t := range parsed {
		x.add(t)
	}
	x.sources = sources
	x.built = true
	x.logger.With("roots", roots, "files", len(sources), "types", len(parsed)).Info("java index built")
	return nil
}

// Stale reports whether any .java file under roots was added, removed or
// changed since the index was built.
func (x *Index) Stale(roots ...string) (bool, error) {
	x.mu.RLock()
	known := x.sources
	built := x.built
	x.mu.RUnlock()
	if !built {
		return true, nil
	}

	seen := 0
	stale := false
	err := walkSources(roots, func(path string, info fs.FileInfo) error {
		seen++
		prev, ok := known[path]
		if !ok || prev.Size != info.Size() || !prev.ModTime.Equal(info.ModTime()) {
			stale = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return true, err
	}
	return stale || seen != len(known), nil
}

func walkSources(roots []string, fn func(path string, info fs.FileInfo) error) error {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name := d.Name(); path != root && (strings.HasPrefix(name, ".") || name == "target" || name == "build") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".java" {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			return fn(path, info)
		})
		if errors.Is(err, fs.SkipAll) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("walk %s: %w", root, err)
		}
	}
	return nil
}

// Built reports whether the index holds sources.
func (x *Index) Built() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.built
}

// Type returns the named type, or nil.
func (x *Index) Type(name string) *TypeInfo {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.types[name]
}

// Types returns every indexed type sorted by name. Builtins are included
// when withBuiltins is set.
func (x *Index) Types(withBuiltins bool) []*TypeInfo {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]*TypeInfo, 0, len(x.types))
	for _, t := range x.types {
		if t.Builtin && !withBuiltins {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Sources returns the files the index was built from.
func (x *Index) Sources() []SourceFile {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]SourceFile, 0, len(x.sources))
	for _, s := range x.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (x *Index) setSources(sources []SourceFile) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, s := range sources {
		x.sources[s.Path] = s
	}
}

// resolveRef resolves a type reference written inside from (nil for a
// reference with no source context, such as a bean class attribute). It
// returns "" when the reference names no known type. Callers hold the read
// lock.
func (x *Index) resolveRef(from *TypeInfo, ref string) string {
	ref = stripGenerics(ref)
	if ref == "" || ref == "void" {
		return ""
	}
	if primitives[ref] {
		return ref
	}
	if elem, ok := strings.CutSuffix(ref, "[]"); ok {
		if r := x.resolveRef(from, elem); r != "" {
			return r + "[]"
		}
		return ""
	}
	ref = strings.ReplaceAll(ref, "$", ".")
	if _, ok := x.types[ref]; ok {
		return ref
	}

	head, rest, _ := strings.Cut(ref, ".")
	qualify := func(base string) (string, bool) {
		name := base
		if rest != "" {
			name += "." + rest
		}
		_, ok := x.types[name]
		return name, ok
	}

	if from != nil {
		// member types of the referencing type and its enclosing types
		for n := from.Name; n != ""; {
			if name, ok := qualify(n + "." + head); ok {
				return name
			}
			t := x.types[n]
			if t == nil {
				break
			}
			n = t.Outer
		}
		for _, imp := range from.Imports {
			if !strings.HasSuffix(imp, ".*") && simpleName(imp) == head {
				if name, ok := qualify(imp); ok {
					return name
				}
			}
		}
		if from.Package != "" {
			if name, ok := qualify(from.Package + "." + head); ok {
				return name
			}
		}
		for _, imp := range from.Imports {
			if pkg, ok := strings.CutSuffix(imp, ".*"); ok {
				if name, ok := qualify(pkg + "." + head); ok {
					return name
				}
			}
		}
	}
	if name, ok := qualify("java.lang." + head); ok {
		return name
	}
	if rest == "" {
		if candidates := x.bySimple[head]; len(candidates) == 1 {
			return candidates[0]
		}
	}
	return ""
}
