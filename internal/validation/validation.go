// Package validation checks bean declarations against the registry and the
// implementation types they name.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/jinzhu/inflection"

	"github.com/cmmoran/beanres/pkg/beans"
)

type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
)

type Rule string

const (
	RuleClass    Rule = "class"
	RuleParent   Rule = "parent"
	RuleFactory  Rule = "factory"
	RuleProperty Rule = "property"
	RuleCycle    Rule = "reference-cycle"
	RuleRef      Rule = "ref"
)

// Diagnostic is one problem found on a declaration.
type Diagnostic struct {
	Unit     string   `json:"unit"`
	Line     int      `json:"line,omitempty"`
	Bean     string   `json:"bean"`
	Rule     Rule     `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s [%s] %s: %s", d.Unit, d.Line, d.Severity, d.Rule, d.Bean, d.Message)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Validator runs every rule over the declarations of a set of units.
type Validator struct {
	engine *beans.Engine
	logger *slog.Logger
}

func New(engine *beans.Engine, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{engine: engine, logger: logger}
}

// Validate checks the declarations of units. Diagnostics are sorted by unit,
// line and bean. A non-nil error means a collaborator failed.
func (v *Validator) Validate(units ...string) ([]Diagnostic, error) {
	var (
		out    []Diagnostic
		cycles = newCycleDetector()
	)
	for _, unit := range units {
		decls, err := v.engine.Registry().Declarations(unit)
		if err != nil {
			return nil, fmt.Errorf("declarations of %s: %w", unit, err)
		}
		for _, decl := range decls {
			ds, err := v.declaration(decl, cycles)
			if err != nil {
				return nil, fmt.Errorf("validate %s in %s: %w", decl.Handle(), unit, err)
			}
			out = append(out, ds...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Bean != b.Bean {
			return a.Bean < b.Bean
		}
		return a.Rule < b.Rule
	})
	v.logger.With("units", len(units), "diagnostics", len(out)).Debug("validation finished")
	return out, nil
}

func (v *Validator) declaration(decl *beans.Declaration, cycles *cycleDetector) ([]Diagnostic, error) {
	var out []Diagnostic
	report := func(rule Rule, severity Severity, line int, format string, args ...any) {
		if line == 0 {
			line = decl.Line
		}
		out = append(out, Diagnostic{
			Unit:     decl.Unit,
			Line:     line,
			Bean:     decl.Handle(),
			Rule:     rule,
			Severity: severity,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	introspector := v.engine.Introspector()

	var classType string
	if decl.ClassName != "" {
		resolved, err := introspector.ResolveType(decl.ClassName)
		if err != nil {
			return nil, err
		}
		if resolved == "" {
			report(RuleClass, Error, 0, "class %q not found", decl.ClassName)
		}
		classType = resolved
	}

	var parent *beans.Declaration
	if decl.ParentID != "" {
		p, err := v.engine.Lookup(decl.Unit, decl.ParentID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			report(RuleParent, Error, 0, "parent bean %q not found", decl.ParentID)
		}
		parent = p
	}

	var factory *beans.Declaration
	if decl.FactoryBeanID != "" {
		f, err := v.engine.Lookup(decl.Unit, decl.FactoryBeanID)
		if err != nil {
			return nil, err
		}
		if f == nil {
			report(RuleFactory, Error, 0, "factory bean %q not found", decl.FactoryBeanID)
		}
		factory = f
	}
	if decl.FactoryMethodName != "" {
		factoryType := classType
		if decl.FactoryBeanID != "" {
			factoryType = ""
			if factory != nil {
				resolved, err := v.engine.ResolveEffectiveType(factory)
				if err != nil {
					return nil, err
				}
				factoryType = string(resolved)
			}
		}
		if factoryType != "" {
			m, err := introspector.FindMethod(factoryType, decl.FactoryMethodName)
			if err != nil {
				return nil, err
			}
			if m == nil {
				report(RuleFactory, Error, 0, "factory method %q not found on %s", decl.FactoryMethodName, factoryType)
			}
		}
	}

	if edge := cycles.add(decl, parent, factory); edge != nil {
		report(RuleCycle, Error, 0, "reference to %q closes a cycle", edge.Handle())
	}

	if len(decl.Properties) > 0 {
		ds, err := v.properties(decl)
		if err != nil {
			return nil, err
		}
		out = append(out, ds...)
	}

	for _, ref := range decl.ConstructorRefs {
		target, err := v.engine.Lookup(decl.Unit, ref)
		if err != nil {
			return nil, err
		}
		if target == nil {
			report(RuleRef, Error, 0, "constructor argument references unknown bean %q", ref)
		}
	}
	return out, nil
}

func (v *Validator) properties(decl *beans.Declaration) ([]Diagnostic, error) {
	types, err := v.engine.CollectReachableTypes(decl)
	if err != nil {
		return nil, err
	}
	var out []Diagnostic
	for _, p := range decl.Properties {
		if p.Ref != "" {
			target, err := v.engine.Lookup(decl.Unit, p.Ref)
			if err != nil {
				return nil, err
			}
			if target == nil {
				out = append(out, Diagnostic{
					Unit: decl.Unit, Line: line(p, decl), Bean: decl.Handle(),
					Rule: RuleRef, Severity: Error,
					Message: fmt.Sprintf("property %q references unknown bean %q", p.Name, p.Ref),
				})
			}
		}
		if len(types) == 0 || p.Name == "" {
			// nothing to check the path against
			continue
		}
		path := beans.SplitPropertyPath(p.Name)
		setter, err := v.engine.ResolvePropertyWritePath(path, types)
		if err != nil {
			return nil, err
		}
		if setter != nil {
			continue
		}
		msg := fmt.Sprintf("no writable property %q on %s", p.Name, types[0])
		if alt, err := v.suggest(path, types); err != nil {
			return nil, err
		} else if alt != "" {
			msg += fmt.Sprintf(", did you mean %q?", alt)
		}
		out = append(out, Diagnostic{
			Unit: decl.Unit, Line: line(p, decl), Bean: decl.Handle(),
			Rule: RuleProperty, Severity: Error, Message: msg,
		})
	}
	return out, nil
}

// suggest tries the singular and plural forms of the last path segment.
func (v *Validator) suggest(path []string, types []string) (string, error) {
	last := beans.PropertyName(path[len(path)-1])
	for _, alt := range []string{inflection.Singular(last), inflection.Plural(last)} {
		if alt == last || alt == "" {
			continue
		}
		candidate := append(append([]string(nil), path[:len(path)-1]...), alt)
		setter, err := v.engine.ResolvePropertyWritePath(candidate, types)
		if err != nil {
			return "", err
		}
		if setter != nil {
			return strings.Join(candidate, beans.NestedPropertySeparator), nil
		}
	}
	return "", nil
}

func line(p beans.PropertyValue, decl *beans.Declaration) int {
	if p.Line > 0 {
		return p.Line
	}
	return decl.Line
}

// cycleDetector accumulates parent and factory-bean edges in a graph that
// rejects cycles.
type cycleDetector struct {
	g graph.Graph[string, *beans.Declaration]
}

func newCycleDetector() *cycleDetector {
	return &cycleDetector{g: graph.New(key, graph.Directed(), graph.PreventCycles())}
}

// add records the edges of decl and returns the first target whose edge
// would close a cycle.
func (c *cycleDetector) add(decl *beans.Declaration, targets ...*beans.Declaration) *beans.Declaration {
	c.vertex(decl)
	for _, target := range targets {
		if target == nil {
			continue
		}
		c.vertex(target)
		err := c.g.AddEdge(key(decl), key(target))
		if errors.Is(err, graph.ErrEdgeCreatesCycle) {
			return target
		}
	}
	return nil
}

func (c *cycleDetector) vertex(d *beans.Declaration) {
	// ErrVertexAlreadyExists is expected for shared targets
	_ = c.g.AddVertex(d)
}

func key(d *beans.Declaration) string {
	return d.Unit + "#" + d.Handle()
}
