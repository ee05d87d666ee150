package beans

import (
	"fmt"
	"strings"
)

// Declaration is a single component ("bean") declaration as it appears in a
// configuration unit. An empty string means the attribute is absent.
//
// Declarations are source facts: they are never mutated after parsing and
// never carry resolution results.
type Declaration struct {
	ID                string
	ClassName         string
	ParentID          string
	FactoryBeanID     string
	FactoryMethodName string

	Unit   string // owning unit name
	Line   int    // 1-based source line, 0 when unknown
	Column int

	Properties      []PropertyValue
	ConstructorRefs []string
}

// PropertyValue is a <property> child of a declaration.
type PropertyValue struct {
	Name  string
	Ref   string
	Value string
	Line  int
}

// Handle returns the identity of d within its unit. Anonymous declarations
// fall back to their source position.
func (d *Declaration) Handle() string {
	if d == nil {
		return ""
	}
	if d.ID != "" {
		return d.ID
	}
	return fmt.Sprintf("%s@%d:%d", d.Unit, d.Line, d.Column)
}

// Key identifies d across all units.
func (d *Declaration) Key() DeclarationKey {
	return DeclarationKey{Name: d.Handle(), Unit: d.Unit}
}

// DeclarationKey is the (name, owning-unit) identity of a declaration.
type DeclarationKey struct {
	Name string
	Unit string
}

// Declarations is an ordered list of declarations.
type Declarations []*Declaration

// Find returns the first declaration with the given id. Later duplicates are
// shadowed.
func (x Declarations) Find(id string) *Declaration {
	if id == "" {
		return nil
	}
	for _, d := range x {
		if d != nil && d.ID == id {
			return d
		}
	}
	return nil
}

// Unit is one configuration unit (one source file's worth of declarations).
type Unit struct {
	Name         string
	Declarations Declarations
	Imports      []string // names of imported units
}

// ConfigSet groups units that are resolved together.
type ConfigSet struct {
	Name  string
	Units []string
}

// Has reports whether the set contains the named unit.
func (s *ConfigSet) Has(unit string) bool {
	for _, u := range s.Units {
		if u == unit {
			return true
		}
	}
	return false
}

// ResolvedType names a concrete implementation type. The zero value means
// unresolved.
type ResolvedType string

// Unresolved is the result of a resolution that could not determine a type.
const Unresolved ResolvedType = ""

// IsResolved reports whether t names a type.
func (t ResolvedType) IsResolved() bool {
	return strings.TrimSpace(string(t)) != ""
}

func (t ResolvedType) String() string {
	if !t.IsResolved() {
		return "<unresolved>"
	}
	return string(t)
}

// Member is a method found by an Introspector.
type Member struct {
	Name          string   `json:"name"`
	DeclaringType string   `json:"declaringType"`
	ReturnType    string   `json:"returnType,omitempty"` // as declared, may be unqualified
	ParamTypes    []string `json:"paramTypes,omitempty"`
	Static        bool     `json:"static,omitempty"`
}

func (m Member) String() string {
	return m.DeclaringType + "." + m.Name + "(" + strings.Join(m.ParamTypes, ", ") + ")"
}

// MatchKind is the ranking outcome of a completion candidate.
type MatchKind int

const (
	NoMatch MatchKind = iota
	TypeMatch
	PlainMatch
)

// Relevance values used to order proposals.
const (
	TypeMatchRelevance  = 20
	PlainMatchRelevance = 10
)

// Relevance returns the proposal relevance for k.
func (k MatchKind) Relevance() int {
	switch k {
	case TypeMatch:
		return TypeMatchRelevance
	case PlainMatch:
		return PlainMatchRelevance
	}
	return 0
}

func (k MatchKind) String() string {
	switch k {
	case TypeMatch:
		return "TYPE_MATCH"
	case PlainMatch:
		return "PLAIN_MATCH"
	}
	return "NO_MATCH"
}

// MarshalText renders k by name.
func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
