package beans

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownUnit = errors.New("unknown configuration unit")

// Model is an in-memory Registry of units and configuration sets. It is safe
// for concurrent use; readers see a consistent snapshot per call.
type Model struct {
	mu    sync.RWMutex
	units map[string]*Unit
	order []string
	sets  []ConfigSet
}

// NewModel returns an empty Model.
func NewModel() *Model {
	return &Model{units: make(map[string]*Unit)}
}

// AddUnit adds u, replacing any unit with the same name. The model takes
// ownership of u: declarations without a Unit get u.Name, and neither u nor
// its declarations may be modified afterwards.
func (m *Model) AddUnit(u *Unit) {
	if u == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.units[u.Name]; !ok {
		m.order = append(m.order, u.Name)
	}
	for _, d := range u.Declarations {
		if d != nil && d.Unit == "" {
			d.Unit = u.Name
		}
	}
	m.units[u.Name] = u
}

// RemoveUnit drops the named unit. Configuration sets keep their membership.
func (m *Model) RemoveUnit(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.units[name]; !ok {
		return
	}
	delete(m.units, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// AddConfigSet adds set, replacing a set with the same name.
func (m *Model) AddConfigSet(set ConfigSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sets {
		if m.sets[i].Name == set.Name {
			m.sets[i] = set
			return
		}
	}
	m.sets = append(m.sets, set)
}

// Unit returns the named unit.
func (m *Model) Unit(name string) (*Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, name)
	}
	return u, nil
}

// Units returns all units in insertion order.
func (m *Model) Units() []*Unit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Unit, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, m.units[n])
	}
	return out
}

// ConfigSets returns every configuration set.
func (m *Model) ConfigSets() []ConfigSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ConfigSet, len(m.sets))
	copy(out, m.sets)
	return out
}

// ConfigSetsOf returns the names of the sets containing unit.
func (m *Model) ConfigSetsOf(unit string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for i := range m.sets {
		if m.sets[i].Has(unit) {
			out = append(out, m.sets[i].Name)
		}
	}
	return out
}

// Declarations implements Registry. Unknown units have no declarations.
// The returned slice is a copy; the declarations are shared.
func (m *Model) Declarations(unit string) ([]*Declaration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units[unit]
	if !ok {
		return nil, nil
	}
	out := make([]*Declaration, len(u.Declarations))
	copy(out, u.Declarations)
	return out, nil
}

// FindDeclaration implements Registry.
func (m *Model) FindDeclaration(unit, id string) (*Declaration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units[unit]
	if !ok {
		return nil, nil
	}
	return u.Declarations.Find(id), nil
}

// ReachableViaConfigSets implements Registry. Besides the units sharing a
// set with unit, units imported by unit or by any of those units are
// reachable, transitively. Declarations of unit itself are never included.
func (m *Model) ReachableViaConfigSets(unit string) ([]*Declaration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := newOrderedSet()
	for i := range m.sets {
		if !m.sets[i].Has(unit) {
			continue
		}
		names.add(m.sets[i].Units...)
	}

	visited := map[string]bool{unit: true}
	var addImports func(name string)
	addImports = func(name string) {
		u, ok := m.units[name]
		if !ok {
			return
		}
		for _, imp := range u.Imports {
			if visited[imp] {
				continue
			}
			visited[imp] = true
			names.add(imp)
			addImports(imp)
		}
	}
	addImports(unit)
	for _, n := range append([]string(nil), names.items...) {
		if !visited[n] {
			visited[n] = true
			addImports(n)
		}
	}

	var out []*Declaration
	for _, n := range names.items {
		if n == unit {
			continue
		}
		if u, ok := m.units[n]; ok {
			out = append(out, u.Declarations...)
		}
	}
	return out, nil
}
