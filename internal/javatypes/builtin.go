package javatypes

// builtin is a JDK type known without sources.
type builtin struct {
	name       string
	kind       Kind
	superclass string
	interfaces []string
}

// builtinTable lists the JDK types bean definitions commonly reference, with
// enough hierarchy for assignability checks.
var builtinTable = []builtin{
	// java.lang, implicitly imported
	{name: "java.lang.Object", kind: Class},
	{name: "java.lang.CharSequence", kind: Interface},
	{name: "java.lang.Comparable", kind: Interface},
	{name: "java.lang.Iterable", kind: Interface},
	{name: "java.lang.AutoCloseable", kind: Interface},
	{name: "java.lang.Runnable", kind: Interface},
	{name: "java.lang.Cloneable", kind: Interface},
	{name: "java.lang.String", kind: Class, interfaces: []string{"java.lang.CharSequence", "java.lang.Comparable", "java.io.Serializable"}},
	{name: "java.lang.Number", kind: Class, interfaces: []string{"java.io.Serializable"}},
	{name: "java.lang.Integer", kind: Class, superclass: "java.lang.Number", interfaces: []string{"java.lang.Comparable"}},
	{name: "java.lang.Long", kind: Class, superclass: "java.lang.Number", interfaces: []string{"java.lang.Comparable"}},
	{name: "java.lang.Short", kind: Class, superclass: "java.lang.Number", interfaces: []string{"java.lang.Comparable"}},
	{name: "java.lang.Byte", kind: Class, superclass: "java.lang.Number", interfaces: []string{"java.lang.Comparable"}},
	{name: "java.lang.Double", kind: Class, superclass: "java.lang.Number", interfaces: []string{"java.lang.Comparable"}},
	{name: "java.lang.Float", kind: Class, superclass: "java.lang.Number", interfaces: []string{"java.lang.Comparable"}},
	{name: "java.lang.Boolean", kind: Class, interfaces: []string{"java.io.Serializable", "java.lang.Comparable"}},
	{name: "java.lang.Character", kind: Class, interfaces: []string{"java.io.Serializable", "java.lang.Comparable"}},
	{name: "java.lang.Class", kind: Class},
	{name: "java.lang.Enum", kind: Class, interfaces: []string{"java.lang.Comparable", "java.io.Serializable"}},
	{name: "java.lang.Thread", kind: Class, interfaces: []string{"java.lang.Runnable"}},
	{name: "java.lang.Throwable", kind: Class, interfaces: []string{"java.io.Serializable"}},
	{name: "java.lang.Exception", kind: Class, superclass: "java.lang.Throwable"},
	{name: "java.lang.RuntimeException", kind: Class, superclass: "java.lang.Exception"},

	// java.io
	{name: "java.io.Serializable", kind: Interface},
	{name: "java.io.Closeable", kind: Interface, interfaces: []string{"java.lang.AutoCloseable"}},
	{name: "java.io.File", kind: Class, interfaces: []string{"java.io.Serializable", "java.lang.Comparable"}},

	// java.util collections
	{name: "java.util.Collection", kind: Interface, interfaces: []string{"java.lang.Iterable"}},
	{name: "java.util.List", kind: Interface, interfaces: []string{"java.util.Collection"}},
	{name: "java.util.Set", kind: Interface, interfaces: []string{"java.util.Collection"}},
	{name: "java.util.SortedSet", kind: Interface, interfaces: []string{"java.util.Set"}},
	{name: "java.util.Queue", kind: Interface, interfaces: []string{"java.util.Collection"}},
	{name: "java.util.Deque", kind: Interface, interfaces: []string{"java.util.Queue"}},
	{name: "java.util.Map", kind: Interface},
	{name: "java.util.SortedMap", kind: Interface, interfaces: []string{"java.util.Map"}},
	{name: "java.util.AbstractCollection", kind: Class, interfaces: []string{"java.util.Collection"}},
	{name: "java.util.AbstractList", kind: Class, superclass: "java.util.AbstractCollection", interfaces: []string{"java.util.List"}},
	{name: "java.util.ArrayList", kind: Class, superclass: "java.util.AbstractList", interfaces: []string{"java.util.List", "java.lang.Cloneable", "java.io.Serializable"}},
	{name: "java.util.LinkedList", kind: Class, superclass: "java.util.AbstractList", interfaces: []string{"java.util.List", "java.util.Deque", "java.lang.Cloneable", "java.io.Serializable"}},
	{name: "java.util.HashSet", kind: Class, superclass: "java.util.AbstractCollection", interfaces: []string{"java.util.Set", "java.lang.Cloneable", "java.io.Serializable"}},
	{name: "java.util.LinkedHashSet", kind: Class, superclass: "java.util.HashSet", interfaces: []string{"java.util.Set"}},
	{name: "java.util.TreeSet", kind: Class, superclass: "java.util.AbstractCollection", interfaces: []string{"java.util.SortedSet", "java.lang.Cloneable", "java.io.Serializable"}},
	{name: "java.util.AbstractMap", kind: Class, interfaces: []string{"java.util.Map"}},
	{name: "java.util.HashMap", kind: Class, superclass: "java.util.AbstractMap", interfaces: []string{"java.util.Map", "java.lang.Cloneable", "java.io.Serializable"}},
	{name: "java.util.LinkedHashMap", kind: Class, superclass: "java.util.HashMap", interfaces: []string{"java.util.Map"}},
	{name: "java.util.TreeMap", kind: Class, superclass: "java.util.AbstractMap", interfaces: []string{"java.util.SortedMap", "java.lang.Cloneable", "java.io.Serializable"}},
	{name: "java.util.Dictionary", kind: Class},
	{name: "java.util.Hashtable", kind: Class, superclass: "java.util.Dictionary", interfaces: []string{"java.util.Map", "java.lang.Cloneable", "java.io.Serializable"}},
	{name: "java.util.Properties", kind: Class, superclass: "java.util.Hashtable"},
	{name: "java.util.Date", kind: Class, interfaces: []string{"java.io.Serializable", "java.lang.Cloneable", "java.lang.Comparable"}},
	{name: "java.util.Locale", kind: Class, interfaces: []string{"java.lang.Cloneable", "java.io.Serializable"}},
	{name: "java.util.UUID", kind: Class, interfaces: []string{"java.io.Serializable", "java.lang.Comparable"}},

	// java.time, java.net, java.math
	{name: "java.time.Duration", kind: Class, interfaces: []string{"java.io.Serializable", "java.lang.Comparable"}},
	{name: "java.time.Instant", kind: Class, interfaces: []string{"java.io.Serializable", "java.lang.Comparable"}},
	{name: "java.time.LocalDate", kind: Class, interfaces: []string{"java.io.Serializable", "java.lang.Comparable"}},
	{name: "java.net.URL", kind: Class, interfaces: []string{"java.io.Serializable"}},
	{name: "java.net.URI", kind: Class, interfaces: []string{"java.lang.Comparable", "java.io.Serializable"}},
	{name: "java.math.BigDecimal", kind: Class, superclass: "java.lang.Number", interfaces: []string{"java.lang.Comparable"}},
	{name: "java.math.BigInteger", kind: Class, superclass: "java.lang.Number", interfaces: []string{"java.lang.Comparable"}},

	// javax.sql
	{name: "javax.sql.DataSource", kind: Interface},
}

func builtinTypes() []*TypeInfo {
	out := make([]*TypeInfo, 0, len(builtinTable))
	for _, b := range builtinTable {
		i := len(b.name) - len(simpleName(b.name)) - 1
		out = append(out, &TypeInfo{
			Name:       b.name,
			Package:    b.name[:i],
			Kind:       b.kind,
			Superclass: b.superclass,
			Interfaces: b.interfaces,
			Builtin:    true,
		})
	}
	return out
}
