package javatypes

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsjava "github.com/smacker/go-tree-sitter/java"
)

var typeDeclarations = map[string]Kind{
	"class_declaration":           Class,
	"interface_declaration":       Interface,
	"enum_declaration":            Enum,
	"record_declaration":          Record,
	"annotation_type_declaration": Annotation,
}

// ParseSource extracts every type declared in one compilation unit,
// including nested types.
func ParseSource(ctx context.Context, file string, src []byte) ([]*TypeInfo, error) {
	tree, err := parseJava(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	var (
		pkg     = packageName(root, src)
		imports = importPaths(root, src)
		out     []*TypeInfo
	)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		out = collectType(root.NamedChild(i), src, pkg, nil, imports, file, out)
	}
	return out, nil
}

func parseJava(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsjava.GetLanguage())
	return parser.ParseCtx(ctx, nil, src)
}

func packageName(root *sitter.Node, src []byte) string {
	node := findFirstChildOfType(root, "package_declaration")
	if node == nil {
		return ""
	}
	if name := findFirstChildOfType(node, "scoped_identifier", "identifier"); name != nil {
		return strings.TrimSpace(name.Content(src))
	}
	return ""
}

// importPaths returns single-type and on-demand imports; static imports are
// skipped since they never name a type used in a signature.
func importPaths(root *sitter.Node, src []byte) []string {
	var out []string
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node == nil || node.Type() != "import_declaration" {
			continue
		}
		if strings.Contains(node.Content(src), "static ") {
			continue
		}
		name := findFirstChildOfType(node, "scoped_identifier", "identifier")
		if name == nil {
			continue
		}
		path := strings.TrimSpace(name.Content(src))
		if findFirstChildOfType(node, "asterisk") != nil {
			path += ".*"
		}
		out = append(out, path)
	}
	return out
}

func collectType(node *sitter.Node, src []byte, pkg string, outer *TypeInfo, imports []string, file string, out []*TypeInfo) []*TypeInfo {
	if node == nil {
		return out
	}
	kind, ok := typeDeclarations[node.Type()]
	if !ok {
		return out
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return out
	}

	t := &TypeInfo{
		Kind:    kind,
		Package: pkg,
		Imports: imports,
		File:    file,
		Line:    int(node.StartPoint().Row) + 1,
	}
	name := strings.TrimSpace(nameNode.Content(src))
	switch {
	case outer != nil:
		t.Name = outer.Name + "." + name
		t.Outer = outer.Name
	case pkg != "":
		t.Name = pkg + "." + name
	default:
		t.Name = name
	}

	if sc := node.ChildByFieldName("superclass"); sc != nil && sc.NamedChildCount() > 0 {
		t.Superclass = typeRef(sc.NamedChild(0), src)
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		t.Interfaces = append(t.Interfaces, typeList(ifaces, src)...)
	}
	if ext := findFirstChildOfType(node, "extends_interfaces"); ext != nil {
		t.Interfaces = append(t.Interfaces, typeList(ext, src)...)
	}
	out = append(out, t)

	body := node.ChildByFieldName("body")
	if body == nil {
		return out
	}
	return collectMembers(body, src, t, imports, file, out)
}

func collectMembers(body *sitter.Node, src []byte, t *TypeInfo, imports []string, file string, out []*TypeInfo) []*TypeInfo {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "method_declaration", "interface_method_declaration":
			if m, ok := method(child, src, t.Kind == Interface || t.Kind == Annotation); ok {
				t.Methods = append(t.Methods, m)
			}
		case "enum_body_declarations":
			out = collectMembers(child, src, t, imports, file, out)
		default:
			out = collectType(child, src, t.Package, t, imports, file, out)
		}
	}
	return out
}

func method(node *sitter.Node, src []byte, inInterface bool) (Method, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return Method{}, false
	}
	m := Method{
		Name:       strings.TrimSpace(nameNode.Content(src)),
		ReturnType: typeRef(node.ChildByFieldName("type"), src),
		Public:     inInterface,
	}
	if mods := findFirstChildOfType(node, "modifiers"); mods != nil {
		for i := 0; i < int(mods.ChildCount()); i++ {
			switch mods.Child(i).Type() {
			case "public":
				m.Public = true
			case "private", "protected":
				m.Public = false
			case "static":
				m.Static = true
			}
		}
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if p == nil {
				continue
			}
			switch p.Type() {
			case "formal_parameter":
				m.ParamTypes = append(m.ParamTypes, typeRef(p.ChildByFieldName("type"), src))
			case "spread_parameter":
				if tn := findFirstTypeChild(p); tn != nil {
					m.ParamTypes = append(m.ParamTypes, typeRef(tn, src)+"[]")
				}
			}
		}
	}
	return m, true
}

// typeRef renders a type node without type arguments.
func typeRef(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "void_type":
		return "void"
	case "generic_type":
		if base := node.ChildByFieldName("type"); base != nil {
			return typeRef(base, src)
		}
		if node.NamedChildCount() > 0 {
			return typeRef(node.NamedChild(0), src)
		}
	case "array_type":
		elem := typeRef(node.ChildByFieldName("element"), src)
		dims := node.ChildByFieldName("dimensions")
		if dims == nil {
			return elem + "[]"
		}
		return elem + strings.Repeat("[]", strings.Count(dims.Content(src), "["))
	case "annotated_type":
		if tn := findFirstTypeChild(node); tn != nil {
			return typeRef(tn, src)
		}
	}
	return stripGenerics(node.Content(src))
}

func typeList(node *sitter.Node, src []byte) []string {
	list := findFirstChildOfType(node, "type_list")
	if list == nil {
		list = node
	}
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		if ref := typeRef(list.NamedChild(i), src); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

func findFirstTypeChild(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "modifiers", "variable_declarator", "marker_annotation", "annotation", "identifier":
			continue
		}
		return child
	}
	return nil
}

func findFirstChildOfType(node *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}
