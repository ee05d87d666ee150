package beans

// Registry supplies declarations by unit. Implementations must give a
// consistent snapshot for the duration of one resolution call.
type Registry interface {
	// Declarations returns the declarations of unit in document order.
	Declarations(unit string) ([]*Declaration, error)
	// FindDeclaration returns the declaration with id in unit, or nil.
	FindDeclaration(unit, id string) (*Declaration, error)
	// ReachableViaConfigSets returns declarations of every other unit that
	// shares a configuration set with unit.
	ReachableViaConfigSets(unit string) ([]*Declaration, error)
}

// Introspector answers questions about implementation types. Type names are
// fully qualified. A nil/empty result with a nil error means "not found";
// a non-nil error is a backend fault.
type Introspector interface {
	// ResolveType returns the qualified name of the named type, or "".
	ResolveType(name string) (string, error)
	// FindReadableAccessor returns the getter for property on typeName.
	FindReadableAccessor(typeName, property string) (*Member, error)
	// FindWritableAccessor returns the setter for property on typeName.
	FindWritableAccessor(typeName, property string) (*Member, error)
	// FindMethod returns the first method named name on typeName or its
	// supertypes, regardless of arity.
	FindMethod(typeName, name string) (*Member, error)
	// DeclaredReturnType resolves m's return type to a qualified name, or ""
	// for void and unknown types.
	DeclaredReturnType(m *Member) (string, error)
	// DeclaredParamType resolves the type of m's index-th parameter, or "".
	DeclaredParamType(m *Member, index int) (string, error)
	// Supertypes returns the transitive closure of superclasses and
	// interfaces of typeName, including typeName itself.
	Supertypes(typeName string) ([]string, error)
}

// SubtypeFinder is implemented by introspectors that can list the known
// subtypes of a type.
type SubtypeFinder interface {
	Subtypes(typeName string) ([]string, error)
}

// Property is a named bean property and the accessor that exposes it.
type Property struct {
	Name     string `json:"name"`
	Accessor Member `json:"accessor"`
}

// PropertyLister is implemented by introspectors that can enumerate
// properties by name prefix (case-insensitive), including inherited ones.
type PropertyLister interface {
	ReadableProperties(typeName, prefix string) ([]Property, error)
	WritableProperties(typeName, prefix string) ([]Property, error)
}
