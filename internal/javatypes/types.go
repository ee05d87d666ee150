// Package javatypes indexes Java sources with tree-sitter and answers type
// questions about them for bean resolution.
package javatypes

import (
	"strings"
)

// Kind is the declaration kind of an indexed type.
type Kind string

const (
	Class      Kind = "class"
	Interface  Kind = "interface"
	Enum       Kind = "enum"
	Record     Kind = "record"
	Annotation Kind = "annotation"
)

// TypeInfo is one indexed Java type. Names are qualified with nested types
// joined by '.'; type references (Superclass, Interfaces, method types) are
// kept as written and resolved against Package, Imports and Outer on demand.
type TypeInfo struct {
	Name       string   `json:"name"`
	Package    string   `json:"package,omitempty"`
	Outer      string   `json:"outer,omitempty"`
	Kind       Kind     `json:"kind"`
	Superclass string   `json:"superclass,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	Imports    []string `json:"imports,omitempty"`
	Methods    []Method `json:"methods,omitempty"`
	File       string   `json:"file,omitempty"`
	Line       int      `json:"line,omitempty"`
	Builtin    bool     `json:"builtin,omitempty"`
}

// Method is a method signature as written in source.
type Method struct {
	Name       string   `json:"name"`
	ReturnType string   `json:"returnType,omitempty"`
	ParamTypes []string `json:"paramTypes,omitempty"`
	Public     bool     `json:"public,omitempty"`
	Static     bool     `json:"static,omitempty"`
}

// SimpleName returns the last segment of the type's name.
func (t *TypeInfo) SimpleName() string {
	return simpleName(t.Name)
}

func (t *TypeInfo) isClassLike() bool {
	return t.Kind == Class || t.Kind == Enum || t.Kind == Record
}

func simpleName(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

var primitives = map[string]bool{
	"boolean": true,
	"byte":    true,
	"char":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
}

// stripGenerics removes type arguments: "List<String>" becomes "List",
// "Map.Entry<K, V>[]" becomes "Map.Entry[]".
func stripGenerics(ref string) string {
	if !strings.Contains(ref, "<") {
		return strings.TrimSpace(ref)
	}
	var (
		b     strings.Builder
		depth int
	)
	for _, r := range ref {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func isBooleanType(ref string) bool {
	return ref == "boolean" || ref == "Boolean" || ref == "java.lang.Boolean"
}
