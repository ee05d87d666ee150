package beans

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoPropertyLister is returned by property-name completion when the
// introspector cannot enumerate properties.
var ErrNoPropertyLister = errors.New("introspector cannot list properties")

// Engine is the entry point used by completion and validation. It wires the
// resolvers to one Registry and one Introspector. Calls do no I/O of their
// own and share no mutable state, so an Engine may be used concurrently when
// its collaborators allow concurrent reads.
type Engine struct {
	registry     Registry
	introspector Introspector
	opts         *Options

	classes *ClassResolver
	walker  *GraphWalker
	paths   *PropertyPathResolver
	ranker  *TypeMatchRanker
}

// NewEngine returns an Engine over registry and introspector.
func NewEngine(registry Registry, introspector Introspector, opts ...Option) *Engine {
	o := NewOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.Normalize()

	return &Engine{
		registry:     registry,
		introspector: introspector,
		opts:         o,
		classes:      NewClassResolver(introspector, o.Logger),
		walker:       NewGraphWalker(registry, introspector, o.Logger),
		paths:        NewPropertyPathResolver(introspector, o.Logger),
		ranker:       NewTypeMatchRanker(introspector),
	}
}

// Registry returns the registry the engine resolves against.
func (e *Engine) Registry() Registry { return e.registry }

// Introspector returns the engine's type introspector.
func (e *Engine) Introspector() Introspector { return e.introspector }

// Lookup finds id from unit: locally first, then through configuration sets.
func (e *Engine) Lookup(unit, id string) (*Declaration, error) {
	return lookupDeclaration(e.registry, unit, id)
}

// ResolveEffectiveType returns the effective implementation type of decl.
func (e *Engine) ResolveEffectiveType(decl *Declaration) (ResolvedType, error) {
	return e.classes.Resolve(decl, e.Lookup)
}

// CollectReachableTypes returns every type reachable from decl along its
// parent chain. A declaration produced by a factory method contributes its
// effective type in place of its own class.
func (e *Engine) CollectReachableTypes(decl *Declaration) ([]string, error) {
	if decl == nil {
		return nil, nil
	}
	if decl.FactoryMethodName == "" {
		return e.walker.CollectTypes(decl.ID, decl.ClassName, decl.ParentID, decl.Unit)
	}

	types := newOrderedSet()
	effective, err := e.ResolveEffectiveType(decl)
	if err != nil {
		return nil, err
	}
	if effective.IsResolved() {
		types.add(string(effective))
	}
	inherited, err := e.walker.CollectTypes(decl.ID, "", decl.ParentID, decl.Unit)
	types.add(inherited...)
	return types.items, err
}

// ResolvePropertyWritePath returns the setter denoted by path on types.
func (e *Engine) ResolvePropertyWritePath(path []string, types []string) (*Member, error) {
	if !e.pathAllowed(path) {
		return nil, nil
	}
	return e.paths.ResolveWrite(path, types)
}

// ResolvePropertyWritePaths returns every setter path can denote on types.
func (e *Engine) ResolvePropertyWritePaths(path []string, types []string) ([]Member, error) {
	if !e.pathAllowed(path) {
		return nil, nil
	}
	return e.paths.ResolveWriteAll(path, types)
}

// ResolveReadChain resolves path to getters only.
func (e *Engine) ResolveReadChain(path []string, types []string) ([]PropertyPathStep, error) {
	if !e.pathAllowed(path) {
		return nil, nil
	}
	return e.paths.ResolveReadChain(path, types)
}

// ResolveAccessorChain resolves path to getters followed by a terminal
// setter.
func (e *Engine) ResolveAccessorChain(path []string, types []string) ([]PropertyPathStep, error) {
	if !e.pathAllowed(path) {
		return nil, nil
	}
	return e.paths.ResolveAccessorChain(path, types)
}

func (e *Engine) pathAllowed(path []string) bool {
	if limit := e.opts.MaxPathSegments; limit > 0 && len(path) > limit {
		e.opts.Logger.With("path", strings.Join(path, NestedPropertySeparator), "limit", limit).Debug("property path too long")
		return false
	}
	return true
}

// RankCandidate ranks resolved against required.
func (e *Engine) RankCandidate(resolved ResolvedType, required []string) (MatchKind, error) {
	return e.ranker.Rank(resolved, required)
}

// NewSession starts a completion session ranked by the engine.
func (e *Engine) NewSession(prefix string, required []string) *Session {
	return NewSession(e.ranker, prefix, required)
}

// RequiredTypesForProperty returns the types a reference assigned to the
// property path of decl must be compatible with: the setter's parameter type
// followed by its known subtypes.
func (e *Engine) RequiredTypesForProperty(decl *Declaration, property string) ([]string, error) {
	types, err := e.CollectReachableTypes(decl)
	if err != nil {
		return nil, err
	}
	setter, err := e.ResolvePropertyWritePath(SplitPropertyPath(property), types)
	if err != nil || setter == nil {
		return nil, err
	}
	param, err := e.introspector.DeclaredParamType(setter, 0)
	if err != nil {
		return nil, fmt.Errorf("parameter type of %s: %w", setter, err)
	}
	if param == "" {
		return nil, nil
	}

	required := newOrderedSet()
	required.add(param)
	if finder, ok := e.introspector.(SubtypeFinder); ok && e.opts.IncludeSubtypes {
		subtypes, err := finder.Subtypes(param)
		if err != nil {
			return required.items, fmt.Errorf("subtypes of %s: %w", param, err)
		}
		required.add(subtypes...)
	}
	return required.items, nil
}

// Complete proposes bean ids visible from unit that start with prefix,
// ranked against required.
func (e *Engine) Complete(unit, prefix string, required []string) ([]Proposal, error) {
	local, err := e.registry.Declarations(unit)
	if err != nil {
		return nil, fmt.Errorf("declarations of %s: %w", unit, err)
	}
	reachable, err := e.registry.ReachableViaConfigSets(unit)
	if err != nil {
		return nil, fmt.Errorf("config sets of %s: %w", unit, err)
	}

	session := e.NewSession(prefix, required)
	for _, d := range append(append([]*Declaration(nil), local...), reachable...) {
		if d == nil || d.ID == "" {
			continue
		}
		t, err := e.ResolveEffectiveType(d)
		if err != nil {
			return nil, err
		}
		if _, err = session.Offer(Candidate{Name: d.ID, Unit: d.Unit, Type: t}); err != nil {
			return nil, err
		}
	}
	return session.Proposals(), nil
}

// PropertyProposal is a property-name completion.
type PropertyProposal struct {
	Path     string `json:"path"`
	Accessor Member `json:"accessor"`
}

// CompletePropertyNames proposes writable property paths on types that
// start with prefix. In a dotted prefix the head must match exactly one
// readable property, whose type is then completed with the tail.
func (e *Engine) CompletePropertyNames(prefix string, types []string) ([]PropertyProposal, error) {
	lister, ok := e.introspector.(PropertyLister)
	if !ok {
		return nil, ErrNoPropertyLister
	}
	prefix = PrepareMatchString(prefix)

	seen := map[string]bool{}
	var out []PropertyProposal
	if err := e.completeProperties(lister, "", prefix, types, seen, &out); err != nil {
		return out, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (e *Engine) completeProperties(lister PropertyLister, done, prefix string, types []string, seen map[string]bool, out *[]PropertyProposal) error {
	head, tail, dotted := strings.Cut(prefix, NestedPropertySeparator)
	for _, t := range types {
		if !dotted {
			props, err := lister.WritableProperties(t, prefix)
			if err != nil {
				return fmt.Errorf("writable properties of %s: %w", t, err)
			}
			for _, p := range props {
				path := done + p.Name
				if seen[path] {
					continue
				}
				seen[path] = true
				*out = append(*out, PropertyProposal{Path: path, Accessor: p.Accessor})
			}
			continue
		}

		props, err := lister.ReadableProperties(t, head)
		if err != nil {
			return fmt.Errorf("readable properties of %s: %w", t, err)
		}
		if len(props) != 1 {
			continue
		}
		next, err := e.introspector.DeclaredReturnType(&props[0].Accessor)
		if err != nil {
			return fmt.Errorf("return type of %s: %w", props[0].Accessor, err)
		}
		if next == "" {
			continue
		}
		if err = e.completeProperties(lister, done+props[0].Name+NestedPropertySeparator, tail, []string{next}, seen, out); err != nil {
			return err
		}
	}
	return nil
}
