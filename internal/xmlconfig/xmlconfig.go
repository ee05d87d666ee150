// Package xmlconfig reads Spring-style beans XML documents into
// configuration units.
package xmlconfig

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/cmmoran/beanres/pkg/beans"
)

var ErrNotBeansDocument = errors.New("not a beans document")

const classpathPrefix = "classpath:"

// element is one open element while decoding.
type element struct {
	local    string
	decl     *beans.Declaration // set for <bean>
	property int                // index into the owning decl's properties, -1 otherwise
	owner    *beans.Declaration // bean owning a <property> or <constructor-arg>
}

// ParseFile reads the document at file and names the unit name.
func ParseFile(file, name string) (*beans.Unit, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	u, err := Parse(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return u, nil
}

// Parse decodes a beans document. Every <bean> element, at any depth,
// becomes a declaration in document order.
func Parse(r io.Reader, name string) (*beans.Unit, error) {
	var (
		dec   = xml.NewDecoder(r)
		unit  = &beans.Unit{Name: name}
		stack []*element
		root  bool
	)

	for {
		line, col := dec.InputPos()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !root {
				if t.Name.Local != "beans" {
					return nil, fmt.Errorf("%w: root element is <%s>", ErrNotBeansDocument, t.Name.Local)
				}
				root = true
			}
			el := &element{local: t.Name.Local, property: -1}
			parent := top(stack)

			switch t.Name.Local {
			case "bean":
				d := newDeclaration(t.Attr, name, line, col)
				unit.Declarations = append(unit.Declarations, d)
				el.decl = d
			case "import":
				if res := attr(t.Attr, "resource"); res != "" {
					unit.Imports = append(unit.Imports, ResolveImport(name, res))
				}
			case "property":
				if parent != nil && parent.decl != nil {
					parent.decl.Properties = append(parent.decl.Properties, beans.PropertyValue{
						Name:  attr(t.Attr, "name"),
						Ref:   attr(t.Attr, "ref"),
						Value: attr(t.Attr, "value"),
						Line:  line,
					})
					el.owner = parent.decl
					el.property = len(parent.decl.Properties) - 1
				}
			case "constructor-arg":
				if parent != nil && parent.decl != nil {
					el.owner = parent.decl
					if ref := attr(t.Attr, "ref"); ref != "" {
						parent.decl.ConstructorRefs = append(parent.decl.ConstructorRefs, ref)
					}
				}
			case "ref", "idref":
				if parent != nil && parent.owner != nil {
					ref := attr(t.Attr, "bean")
					if ref == "" {
						ref = attr(t.Attr, "local")
					}
					if ref == "" {
						ref = attr(t.Attr, "parent")
					}
					if ref != "" {
						if parent.local == "property" {
							parent.owner.Properties[parent.property].Ref = ref
						} else {
							parent.owner.ConstructorRefs = append(parent.owner.ConstructorRefs, ref)
						}
					}
				}
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !root {
		return nil, fmt.Errorf("%w: empty document", ErrNotBeansDocument)
	}
	return unit, nil
}

func newDeclaration(attrs []xml.Attr, unit string, line, col int) *beans.Declaration {
	d := &beans.Declaration{
		ID:                attr(attrs, "id"),
		ClassName:         attr(attrs, "class"),
		ParentID:          attr(attrs, "parent"),
		FactoryBeanID:     attr(attrs, "factory-bean"),
		FactoryMethodName: attr(attrs, "factory-method"),
		Unit:              unit,
		Line:              line,
		Column:            col,
	}
	if d.FactoryBeanID == "" {
		d.FactoryBeanID = attr(attrs, "factory-ref")
	}
	if d.ID == "" {
		if aliases := Aliases(attr(attrs, "name")); len(aliases) > 0 {
			d.ID = aliases[0]
		}
	}
	return d
}

// Aliases splits a name attribute on commas, semicolons and spaces.
func Aliases(names string) []string {
	return strings.FieldsFunc(names, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
}

// ResolveImport returns the unit name an <import resource> refers to from
// the importing unit. Relative resources resolve against the importing
// unit's directory.
func ResolveImport(from, resource string) string {
	resource = strings.TrimSpace(strings.TrimPrefix(resource, classpathPrefix))
	if strings.HasPrefix(resource, "/") {
		return path.Clean(strings.TrimPrefix(resource, "/"))
	}
	return path.Join(path.Dir(from), resource)
}

func attr(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local && a.Name.Space == "" {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func top(stack []*element) *element {
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}
