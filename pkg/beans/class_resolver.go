package beans

import (
	"fmt"
	"log/slog"
)

// LookupFunc finds the declaration referenced by id from a declaration in
// unit. It returns nil when the id is unknown.
type LookupFunc func(unit, id string) (*Declaration, error)

// ClassResolver computes the effective implementation type of a single
// declaration by following parent and factory indirection.
type ClassResolver struct {
	introspector Introspector
	logger       *slog.Logger
}

// NewClassResolver returns a ClassResolver backed by introspector.
func NewClassResolver(introspector Introspector, logger *slog.Logger) *ClassResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassResolver{introspector: introspector, logger: logger}
}

// Resolve returns the effective type of decl. Missing declarations, types
// or methods yield Unresolved; only introspector faults are returned as
// errors.
func (r *ClassResolver) Resolve(decl *Declaration, lookup LookupFunc) (ResolvedType, error) {
	visited := make(map[DeclarationKey]bool)
	return r.resolve(decl, lookup, visited)
}

func (r *ClassResolver) resolve(decl *Declaration, lookup LookupFunc, visited map[DeclarationKey]bool) (ResolvedType, error) {
	if decl == nil {
		return Unresolved, nil
	}
	key := decl.Key()
	if visited[key] {
		r.logger.With("bean", key.Name, "unit", key.Unit).Debug("reference cycle while resolving bean class")
		return Unresolved, nil
	}
	visited[key] = true

	var (
		className     = decl.ClassName
		factoryBean   = decl.FactoryBeanID
		factoryMethod = decl.FactoryMethodName
		parent        = decl.ParentID
	)

	switch {
	case factoryBean == "" && factoryMethod == "":
		if className == "" && parent != "" {
			return r.resolveReference(parent, decl, lookup, visited)
		}
		return ResolvedType(className), nil

	case className != "" && factoryMethod != "" && factoryBean == "":
		// static factory method on the bean class
		return r.resolveFactoryMethod(className, factoryMethod, decl)

	case factoryMethod != "" && factoryBean != "":
		// instance factory method on the factory bean's class
		factoryType, err := r.resolveReference(factoryBean, decl, lookup, visited)
		if err != nil || !factoryType.IsResolved() {
			return Unresolved, err
		}
		return r.resolveFactoryMethod(string(factoryType), factoryMethod, decl)

	case className == "" && parent != "":
		return r.resolveReference(parent, decl, lookup, visited)
	}

	return ResolvedType(className), nil
}

func (r *ClassResolver) resolveReference(id string, from *Declaration, lookup LookupFunc, visited map[DeclarationKey]bool) (ResolvedType, error) {
	if lookup == nil {
		return Unresolved, nil
	}
	target, err := lookup(from.Unit, id)
	if err != nil {
		return Unresolved, fmt.Errorf("lookup bean %q: %w", id, err)
	}
	if target == nil {
		r.logger.With("bean", from.Handle(), "unit", from.Unit, "ref", id).Debug("referenced bean not found")
		return Unresolved, nil
	}
	return r.resolve(target, lookup, visited)
}

func (r *ClassResolver) resolveFactoryMethod(className, methodName string, from *Declaration) (ResolvedType, error) {
	typeName, err := r.introspector.ResolveType(className)
	if err != nil {
		return Unresolved, fmt.Errorf("resolve type %q: %w", className, err)
	}
	if typeName == "" {
		r.logger.With("bean", from.Handle(), "unit", from.Unit, "class", className).Debug("factory class not found")
		return Unresolved, nil
	}
	method, err := r.introspector.FindMethod(typeName, methodName)
	if err != nil {
		return Unresolved, fmt.Errorf("find method %s.%s: %w", typeName, methodName, err)
	}
	if method == nil {
		r.logger.With("bean", from.Handle(), "unit", from.Unit, "class", typeName, "method", methodName).Debug("factory method not found")
		return Unresolved, nil
	}
	ret, err := r.introspector.DeclaredReturnType(method)
	if err != nil {
		return Unresolved, fmt.Errorf("return type of %s: %w", method, err)
	}
	return ResolvedType(ret), nil
}
