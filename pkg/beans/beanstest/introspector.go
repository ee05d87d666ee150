// Package beanstest provides an in-memory beans.Introspector for tests.
package beanstest

import (
	"sort"
	"strings"
	"sync"

	"github.com/cmmoran/beanres/pkg/beans"
)

// Type is a fake implementation type.
type Type struct {
	Name    string
	Supers  []string
	Methods []beans.Member
}

// Getter adds a public getter for property returning ret.
func (t *Type) Getter(property, ret string) *Type {
	return t.Method("get"+beans.Capitalize(property), ret)
}

// Setter adds a public setter for property taking param.
func (t *Type) Setter(property, param string) *Type {
	return t.Method("set"+beans.Capitalize(property), "void", param)
}

// Method adds an instance method.
func (t *Type) Method(name, ret string, params ...string) *Type {
	t.Methods = append(t.Methods, beans.Member{Name: name, DeclaringType: t.Name, ReturnType: ret, ParamTypes: params})
	return t
}

// StaticMethod adds a static method.
func (t *Type) StaticMethod(name, ret string, params ...string) *Type {
	t.Methods = append(t.Methods, beans.Member{Name: name, DeclaringType: t.Name, ReturnType: ret, ParamTypes: params, Static: true})
	return t
}

// Introspector is a map-backed beans.Introspector. It also implements
// beans.SubtypeFinder and beans.PropertyLister. Set Fault to make every call
// fail.
type Introspector struct {
	mu    sync.Mutex
	types   map[string]*Type
	aliases map[string]string
	order   []string
	Fault   error
	Calls int
}

var (
	_ beans.Introspector   = (*Introspector)(nil)
	_ beans.SubtypeFinder  = (*Introspector)(nil)
	_ beans.PropertyLister = (*Introspector)(nil)
)

func NewIntrospector() *Introspector {
	return &Introspector{types: make(map[string]*Type), aliases: make(map[string]string)}
}

// Alias makes ResolveType map alias to name, as a binary nested name or a
// module-relative name would.
func (f *Introspector) Alias(alias, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aliases[alias] = name
}

// AddType registers a type with its direct supertypes.
func (f *Introspector) AddType(name string, supers ...string) *Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &Type{Name: name, Supers: supers}
	if _, ok := f.types[name]; !ok {
		f.order = append(f.order, name)
	}
	f.types[name] = t
	return t
}

func (f *Introspector) call() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	return f.Fault
}

func (f *Introspector) get(name string) *Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.types[name]
}

// ResolveType returns name when it is registered, the target of an alias,
// or the single registered type whose simple name is name.
func (f *Introspector) ResolveType(name string) (string, error) {
	if err := f.call(); err != nil {
		return "", err
	}
	if f.get(name) != nil {
		return name, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if target, ok := f.aliases[name]; ok {
		return target, nil
	}
	var found string
	for _, n := range f.order {
		if n[strings.LastIndex(n, ".")+1:] == name {
			if found != "" {
				return "", nil
			}
			found = n
		}
	}
	return found, nil
}

func (f *Introspector) FindReadableAccessor(typeName, property string) (*beans.Member, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.find(typeName, "get"+beans.Capitalize(property), 0), nil
}

func (f *Introspector) FindWritableAccessor(typeName, property string) (*beans.Member, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.find(typeName, "set"+beans.Capitalize(property), 1), nil
}

func (f *Introspector) FindMethod(typeName, name string) (*beans.Member, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.find(typeName, name, -1), nil
}

// find searches typeName then its supertypes. arity -1 matches any; a
// non-negative arity also requires an instance method.
func (f *Introspector) find(typeName, name string, arity int) *beans.Member {
	for _, tn := range f.closure(typeName) {
		t := f.get(tn)
		if t == nil {
			continue
		}
		for i := range t.Methods {
			m := t.Methods[i]
			if m.Name != name {
				continue
			}
			if arity >= 0 && (len(m.ParamTypes) != arity || m.Static) {
				continue
			}
			return &m
		}
	}
	return nil
}

func (f *Introspector) DeclaredReturnType(m *beans.Member) (string, error) {
	if err := f.call(); err != nil {
		return "", err
	}
	if m == nil || m.ReturnType == "void" {
		return "", nil
	}
	return m.ReturnType, nil
}

func (f *Introspector) DeclaredParamType(m *beans.Member, index int) (string, error) {
	if err := f.call(); err != nil {
		return "", err
	}
	if m == nil || index < 0 || index >= len(m.ParamTypes) {
		return "", nil
	}
	return m.ParamTypes[index], nil
}

func (f *Introspector) Supertypes(typeName string) ([]string, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.closure(typeName), nil
}

func (f *Introspector) closure(typeName string) []string {
	var (
		out  []string
		seen = map[string]bool{}
		walk func(string)
	)
	walk = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
		if t := f.get(n); t != nil {
			for _, s := range t.Supers {
				walk(s)
			}
		}
	}
	walk(typeName)
	return out
}

func (f *Introspector) Subtypes(typeName string) ([]string, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	names := append([]string(nil), f.order...)
	f.mu.Unlock()

	var out []string
	for _, n := range names {
		if n == typeName {
			continue
		}
		for _, s := range f.closure(n) {
			if s == typeName {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

func (f *Introspector) ReadableProperties(typeName, prefix string) ([]beans.Property, error) {
	return f.properties(typeName, prefix, "get", 0)
}

func (f *Introspector) WritableProperties(typeName, prefix string) ([]beans.Property, error) {
	return f.properties(typeName, prefix, "set", 1)
}

func (f *Introspector) properties(typeName, prefix, verb string, arity int) ([]beans.Property, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	prefix = strings.ToLower(prefix)
	seen := map[string]bool{}
	var out []beans.Property
	for _, tn := range f.closure(typeName) {
		t := f.get(tn)
		if t == nil {
			continue
		}
		for _, m := range t.Methods {
			if m.Static || len(m.ParamTypes) != arity || len(m.Name) <= len(verb) || !strings.HasPrefix(m.Name, verb) {
				continue
			}
			rest := m.Name[len(verb):]
			name := strings.ToLower(rest[:1]) + rest[1:]
			if seen[name] || !strings.HasPrefix(strings.ToLower(name), prefix) {
				continue
			}
			seen[name] = true
			out = append(out, beans.Property{Name: name, Accessor: m})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
