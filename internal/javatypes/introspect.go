package javatypes

import (
	"sort"
	"strings"
	"unicode"

	"github.com/cmmoran/beanres/pkg/beans"
)

const objectType = "java.lang.Object"

var (
	_ beans.Introspector   = (*Index)(nil)
	_ beans.SubtypeFinder  = (*Index)(nil)
	_ beans.PropertyLister = (*Index)(nil)
)

// ResolveType resolves a bean class attribute. Binary names ("Outer$Inner")
// and unambiguous simple names are accepted.
func (x *Index) ResolveType(name string) (string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.resolveRef(nil, name), nil
}

// FindReadableAccessor returns the public getX() or, for boolean properties,
// isX() method of typeName.
func (x *Index) FindReadableAccessor(typeName, property string) (*beans.Member, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	suffix := beans.Capitalize(property)
	if m := x.findMethod(typeName, "get"+suffix, isGetter); m != nil {
		return m, nil
	}
	return x.findMethod(typeName, "is"+suffix, isBooleanGetter), nil
}

// FindWritableAccessor returns the public single-argument setX method of
// typeName.
func (x *Index) FindWritableAccessor(typeName, property string) (*beans.Member, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.findMethod(typeName, "set"+beans.Capitalize(property), isSetter), nil
}

// FindMethod returns the first method called name on typeName or its
// supertypes.
func (x *Index) FindMethod(typeName, name string) (*beans.Member, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.findMethod(typeName, name, func(Method) bool { return true }), nil
}

func (x *Index) DeclaredReturnType(m *beans.Member) (string, error) {
	if m == nil {
		return "", nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.resolveDeclared(m.DeclaringType, m.ReturnType), nil
}

func (x *Index) DeclaredParamType(m *beans.Member, index int) (string, error) {
	if m == nil || index < 0 || index >= len(m.ParamTypes) {
		return "", nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.resolveDeclared(m.DeclaringType, m.ParamTypes[index]), nil
}

// resolveDeclared resolves ref as written in the declaring type. Types
// declared with a type parameter ("T") resolve to "".
func (x *Index) resolveDeclared(declaring, ref string) string {
	return x.resolveRef(x.types[declaring], ref)
}

// Supertypes lists typeName, its superclasses and then its interfaces.
// Reference types always end with java.lang.Object.
func (x *Index) Supertypes(typeName string) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if primitives[typeName] {
		return []string{typeName}, nil
	}
	if strings.HasSuffix(typeName, "[]") {
		return []string{typeName, objectType}, nil
	}
	h := x.hierarchy(typeName)
	out := make([]string, 0, len(h)+1)
	if x.types[typeName] == nil {
		out = append(out, typeName)
	}
	hasObject := typeName == objectType
	for _, t := range h {
		out = append(out, t.Name)
		hasObject = hasObject || t.Name == objectType
	}
	if !hasObject {
		out = append(out, objectType)
	}
	return out, nil
}

// Subtypes lists the source types assignable to typeName, sorted by name.
func (x *Index) Subtypes(typeName string) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []string
	for name, t := range x.types {
		if t.Builtin || name == typeName {
			continue
		}
		for _, s := range x.hierarchy(name) {
			if s.Name == typeName {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (x *Index) ReadableProperties(typeName, prefix string) ([]beans.Property, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.properties(typeName, prefix, func(m Method) (string, bool) {
		if rest, ok := strings.CutPrefix(m.Name, "get"); ok && rest != "" && isGetter(m) {
			return rest, true
		}
		if rest, ok := strings.CutPrefix(m.Name, "is"); ok && rest != "" && isBooleanGetter(m) {
			return rest, true
		}
		return "", false
	}), nil
}

func (x *Index) WritableProperties(typeName, prefix string) ([]beans.Property, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.properties(typeName, prefix, func(m Method) (string, bool) {
		if rest, ok := strings.CutPrefix(m.Name, "set"); ok && rest != "" && isSetter(m) {
			return rest, true
		}
		return "", false
	}), nil
}

func (x *Index) properties(typeName, prefix string, accessor func(Method) (string, bool)) []beans.Property {
	prefix = strings.ToLower(prefix)
	seen := make(map[string]bool)
	var out []beans.Property
	for _, t := range x.hierarchy(typeName) {
		for _, m := range t.Methods {
			rest, ok := accessor(m)
			if !ok {
				continue
			}
			name := decapitalize(rest)
			if seen[name] || !strings.HasPrefix(strings.ToLower(name), prefix) {
				continue
			}
			seen[name] = true
			out = append(out, beans.Property{Name: name, Accessor: member(t, m)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (x *Index) findMethod(typeName, name string, accept func(Method) bool) *beans.Member {
	for _, t := range x.hierarchy(typeName) {
		for _, m := range t.Methods {
			if m.Name == name && accept(m) {
				found := member(t, m)
				return &found
			}
		}
	}
	return nil
}

// hierarchy returns typeName's type followed by its superclass chain and then
// every interface reachable from them, breadth first. Unknown types yield an
// empty hierarchy; unknown supertypes are skipped.
func (x *Index) hierarchy(typeName string) []*TypeInfo {
	start := x.types[typeName]
	if start == nil {
		return nil
	}
	var (
		out     []*TypeInfo
		seen    = make(map[string]bool)
		pending []*TypeInfo
	)
	visit := func(t *TypeInfo) bool {
		if t == nil || seen[t.Name] {
			return false
		}
		seen[t.Name] = true
		out = append(out, t)
		return true
	}

	for t := start; visit(t); {
		pending = append(pending, t)
		next := ""
		if t.Superclass != "" {
			next = x.resolveRef(t, t.Superclass)
		} else if t.isClassLike() && t.Name != objectType {
			next = objectType
		}
		t = x.types[next]
	}
	for len(pending) > 0 {
		t := pending[0]
		pending = pending[1:]
		for _, ref := range t.Interfaces {
			iface := x.types[x.resolveRef(t, ref)]
			if visit(iface) {
				pending = append(pending, iface)
			}
		}
	}
	return out
}

func member(t *TypeInfo, m Method) beans.Member {
	return beans.Member{
		Name:          m.Name,
		DeclaringType: t.Name,
		ReturnType:    m.ReturnType,
		ParamTypes:    m.ParamTypes,
		Static:        m.Static,
	}
}

func isGetter(m Method) bool {
	return m.Public && !m.Static && len(m.ParamTypes) == 0 && m.ReturnType != "" && m.ReturnType != "void"
}

func isBooleanGetter(m Method) bool {
	return isGetter(m) && isBooleanType(m.ReturnType)
}

func isSetter(m Method) bool {
	return m.Public && !m.Static && len(m.ParamTypes) == 1
}

// decapitalize follows java.beans.Introspector: "URL" stays "URL", "Name"
// becomes "name".
func decapitalize(s string) string {
	r := []rune(s)
	if len(r) > 1 && unicode.IsUpper(r[0]) && unicode.IsUpper(r[1]) {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
