// Package gotypes answers bean type questions about Go packages loaded with
// go/packages. Types are named by their package path and type name
// ("example.com/app/model.Person").
package gotypes

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"

	"github.com/cmmoran/beanres/pkg/beans"
)

var ErrNoModule = errors.New("no go.mod found")

var (
	_ beans.Introspector   = (*Index)(nil)
	_ beans.SubtypeFinder  = (*Index)(nil)
	_ beans.PropertyLister = (*Index)(nil)
)

// Index holds the named types of the packages loaded from one module.
type Index struct {
	mu         sync.RWMutex
	modulePath string
	named      map[string]*types.Named
	order      []string
	funcs      map[string]map[string]*types.Func // package path → func name
	supers     map[string][]string
	logger     *slog.Logger
}

// Load loads every package of the module containing dir.
func Load(ctx context.Context, dir string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, modulePath, err := FindModule(dir)
	if err != nil {
		return nil, err
	}
	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedImports | packages.NeedDeps,
		Dir:     root,
	}, "./...")
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	var errs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("load packages: %w", errors.Join(errs...))
	}

	x := &Index{
		modulePath: modulePath,
		named:      make(map[string]*types.Named),
		funcs:      make(map[string]map[string]*types.Func),
		supers:     make(map[string][]string),
		logger:     logger,
	}
	for _, p := range pkgs {
		x.addPackage(p.Types)
	}
	logger.With("module", modulePath, "packages", len(pkgs), "types", len(x.named)).Info("go index built")
	return x, nil
}

// FindModule walks up from dir until it finds go.mod and returns the module
// root and path.
func FindModule(dir string) (string, string, error) {
	from, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	for {
		data, err := os.ReadFile(filepath.Join(from, "go.mod"))
		if err == nil {
			path := modfile.ModulePath(data)
			if path == "" {
				return "", "", fmt.Errorf("%s: missing module directive", filepath.Join(from, "go.mod"))
			}
			return from, path, nil
		}
		parent := filepath.Dir(from)
		if parent == from {
			return "", "", fmt.Errorf("%s: %w", dir, ErrNoModule)
		}
		from = parent
	}
}

func (x *Index) addPackage(pkg *types.Package) {
	if pkg == nil {
		return
	}
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		switch obj := scope.Lookup(name).(type) {
		case *types.TypeName:
			if named, ok := obj.Type().(*types.Named); ok && !obj.IsAlias() {
				key := qualified(obj)
				x.named[key] = named
				x.order = append(x.order, key)
			}
		case *types.Func:
			if x.funcs[pkg.Path()] == nil {
				x.funcs[pkg.Path()] = make(map[string]*types.Func)
			}
			x.funcs[pkg.Path()][name] = obj
		}
	}
	sort.Strings(x.order)
}

func qualified(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

// nameOf renders t with full package paths, dropping one pointer level.
func nameOf(t types.Type) string {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	return types.TypeString(t, func(p *types.Package) string { return p.Path() })
}

// ResolveType accepts a qualified name, a module-relative name
// ("model.Person") or an unambiguous type name.
func (x *Index) ResolveType(name string) (string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.resolve(name), nil
}

func (x *Index) resolve(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "*")
	if name == "" {
		return ""
	}
	if _, ok := x.named[name]; ok {
		return name
	}
	if _, ok := types.Universe.Lookup(name).(*types.TypeName); ok {
		return name
	}
	if rel := x.modulePath + "/" + name; x.named[rel] != nil {
		return rel
	}
	var found string
	for _, key := range x.order {
		if key[strings.LastIndex(key, ".")+1:] != name {
			continue
		}
		if found != "" {
			return ""
		}
		found = key
	}
	return found
}

func (x *Index) FindReadableAccessor(typeName, property string) (*beans.Member, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	suffix := beans.Capitalize(property)
	if m := x.findMethod(typeName, "Get"+suffix, isGetter); m != nil {
		return m, nil
	}
	return x.findMethod(typeName, suffix, isGetter), nil
}

func (x *Index) FindWritableAccessor(typeName, property string) (*beans.Member, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.findMethod(typeName, "Set"+beans.Capitalize(property), isSetter), nil
}

// FindMethod finds a method of typeName, or a package-level function of the
// type's package, which is reported as static.
func (x *Index) FindMethod(typeName, name string) (*beans.Member, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if m := x.findMethod(typeName, name, func(*types.Signature) bool { return true }); m != nil {
		return m, nil
	}
	named := x.named[typeName]
	if named == nil || named.Obj().Pkg() == nil {
		return nil, nil
	}
	fn := x.funcs[named.Obj().Pkg().Path()][name]
	if fn == nil {
		return nil, nil
	}
	m := member(typeName, fn)
	m.Static = true
	return &m, nil
}

func (x *Index) DeclaredReturnType(m *beans.Member) (string, error) {
	if m == nil {
		return "", nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.known(m.ReturnType), nil
}

func (x *Index) DeclaredParamType(m *beans.Member, index int) (string, error) {
	if m == nil || index < 0 || index >= len(m.ParamTypes) {
		return "", nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.known(m.ParamTypes[index]), nil
}

// known returns ref when it names a loaded or predeclared type.
func (x *Index) known(ref string) string {
	if ref == "" {
		return ""
	}
	if _, ok := x.named[ref]; ok {
		return ref
	}
	if obj, ok := types.Universe.Lookup(ref).(*types.TypeName); ok && obj != nil {
		return ref
	}
	return ""
}

// Supertypes lists typeName, the types it embeds (transitively) and the
// non-empty loaded interfaces its pointer type implements.
func (x *Index) Supertypes(typeName string) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.supertypes(typeName), nil
}

func (x *Index) supertypes(typeName string) []string {
	named := x.named[typeName]
	if named == nil {
		return []string{typeName}
	}
	if cached, ok := x.supers[typeName]; ok {
		return cached
	}

	out := []string{typeName}
	seen := map[string]bool{typeName: true}
	var embed func(t types.Type)
	embed = func(t types.Type) {
		switch u := t.Underlying().(type) {
		case *types.Struct:
			for i := 0; i < u.NumFields(); i++ {
				f := u.Field(i)
				if !f.Embedded() {
					continue
				}
				name := nameOf(f.Type())
				if _, ok := x.named[name]; !ok || seen[name] {
					continue
				}
				seen[name] = true
				out = append(out, name)
				embed(x.named[name])
			}
		case *types.Interface:
			for i := 0; i < u.NumEmbeddeds(); i++ {
				name := nameOf(u.EmbeddedType(i))
				if _, ok := x.named[name]; !ok || seen[name] {
					continue
				}
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	embed(named)

	ptr := types.NewPointer(named)
	for _, key := range x.order {
		if seen[key] {
			continue
		}
		iface, ok := x.named[key].Underlying().(*types.Interface)
		if !ok || iface.NumMethods() == 0 {
			continue
		}
		if types.Implements(ptr, iface) || types.Implements(named, iface) {
			seen[key] = true
			out = append(out, key)
		}
	}
	x.supers[typeName] = out
	return out
}

// Subtypes lists the loaded types that have typeName among their supertypes.
func (x *Index) Subtypes(typeName string) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var out []string
	for _, key := range x.order {
		if key == typeName {
			continue
		}
		for _, s := range x.supertypes(key) {
			if s == typeName {
				out = append(out, key)
				break
			}
		}
	}
	return out, nil
}

func (x *Index) ReadableProperties(typeName, prefix string) ([]beans.Property, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.properties(typeName, prefix, func(name string, sig *types.Signature) (string, bool) {
		if !isGetter(sig) {
			return "", false
		}
		if rest, ok := strings.CutPrefix(name, "Get"); ok && rest != "" {
			return rest, true
		}
		return name, true
	}), nil
}

func (x *Index) WritableProperties(typeName, prefix string) ([]beans.Property, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.properties(typeName, prefix, func(name string, sig *types.Signature) (string, bool) {
		if rest, ok := strings.CutPrefix(name, "Set"); ok && rest != "" && isSetter(sig) {
			return rest, true
		}
		return "", false
	}), nil
}

func (x *Index) properties(typeName, prefix string, accessor func(string, *types.Signature) (string, bool)) []beans.Property {
	named := x.named[typeName]
	if named == nil {
		return nil
	}
	prefix = strings.ToLower(prefix)
	seen := make(map[string]bool)
	var out []beans.Property
	mset := types.NewMethodSet(receiver(named))
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		rest, ok := accessor(fn.Name(), fn.Type().(*types.Signature))
		if !ok {
			continue
		}
		name := decapitalize(rest)
		if seen[name] || !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}
		seen[name] = true
		out = append(out, beans.Property{Name: name, Accessor: member(receiverName(fn, typeName), fn)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (x *Index) findMethod(typeName, name string, accept func(*types.Signature) bool) *beans.Member {
	named := x.named[typeName]
	if named == nil {
		return nil
	}
	obj, _, _ := types.LookupFieldOrMethod(receiver(named), true, named.Obj().Pkg(), name)
	fn, ok := obj.(*types.Func)
	if !ok || !accept(fn.Type().(*types.Signature)) {
		return nil
	}
	m := member(receiverName(fn, typeName), fn)
	return &m
}

// receiver is the type whose method set holds every method callable on a
// bean of type named.
func receiver(named *types.Named) types.Type {
	if types.IsInterface(named) {
		return named
	}
	return types.NewPointer(named)
}

// receiverName names the type declaring fn; promoted methods report the
// embedded type.
func receiverName(fn *types.Func, fallback string) string {
	sig := fn.Type().(*types.Signature)
	if sig.Recv() == nil {
		return fallback
	}
	return nameOf(sig.Recv().Type())
}

func member(declaring string, fn *types.Func) beans.Member {
	sig := fn.Type().(*types.Signature)
	m := beans.Member{Name: fn.Name(), DeclaringType: declaring}
	if sig.Results().Len() > 0 {
		m.ReturnType = nameOf(sig.Results().At(0).Type())
	}
	for i := 0; i < sig.Params().Len(); i++ {
		m.ParamTypes = append(m.ParamTypes, nameOf(sig.Params().At(i).Type()))
	}
	return m
}

// isGetter accepts func() T and func() (T, error).
func isGetter(sig *types.Signature) bool {
	if sig.Params().Len() != 0 {
		return false
	}
	switch sig.Results().Len() {
	case 1:
		return true
	case 2:
		return sig.Results().At(1).Type().String() == "error"
	}
	return false
}

func isSetter(sig *types.Signature) bool {
	return sig.Params().Len() == 1 && !sig.Variadic()
}

func decapitalize(s string) string {
	r := []rune(s)
	if len(r) > 1 && unicode.IsUpper(r[0]) && unicode.IsUpper(r[1]) {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
