package source

import (
	"context"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoParser extracts package-level funcs, methods and function-valued vars from Go source.
type GoParser struct{}

// NewGoParser creates a new Go parser.
func NewGoParser() *GoParser {
	return &GoParser{}
}

func (p *GoParser) Language() string              { return "go" }
func (p *GoParser) SupportedExtensions() []string { return []string{".go"} }
func (p *GoParser) CommentPrefix() string         { return "//" }

// Parse extracts callables. Methods are keyed as Receiver.Name.
func (p *GoParser) Parse(ctx context.Context, path string, content []byte) (*Module, error) {
	tree, err := parseTree(ctx, golang.GetLanguage(), path, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	comments := collectComments(root)
	mod := newModule(path, p.Language())

	for i := 0; i < int(root.NamedChildCount()); i++ {
		decl := root.NamedChild(i)
		switch decl.Type() {
		case "function_declaration":
			nameNode := decl.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := nodeText(content, nameNode)
			if name == "_" || isReserved(name) {
				continue
			}
			mod.bind(newCallable(name, KindFunction, content, decl, comments))

		case "method_declaration":
			nameNode := decl.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := nodeText(content, nameNode)
			if recv := receiverType(content, decl.ChildByFieldName("receiver")); recv != "" {
				name = recv + "." + name
			}
			mod.bind(newCallable(name, KindFunction, content, decl, comments))

		case "var_declaration":
			forEachVarSpec(decl, func(spec *sitter.Node) {
				bindVarSpec(mod, content, spec, comments)
			})
		}
	}
	return mod, nil
}

// receiverType returns the bare type name of a method receiver.
func receiverType(content []byte, recv *sitter.Node) string {
	if recv == nil {
		return ""
	}
	var found string
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if found != "" {
			return
		}
		if n.Type() == "type_identifier" {
			found = nodeText(content, n)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(recv)
	return found
}

func forEachVarSpec(n *sitter.Node, fn func(*sitter.Node)) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "var_spec":
			fn(child)
		case "var_spec_list":
			forEachVarSpec(child, fn)
		}
	}
}

// bindVarSpec handles `var name = value` pairs positionally.
func bindVarSpec(mod *Module, content []byte, spec *sitter.Node, comments []span) {
	var names []string
	for i := 0; i < int(spec.NamedChildCount()); i++ {
		child := spec.NamedChild(i)
		if child.Type() == "identifier" {
			names = append(names, nodeText(content, child))
		}
	}

	valueList := spec.ChildByFieldName("value")
	if valueList == nil {
		return
	}
	var values []*sitter.Node
	for i := 0; i < int(valueList.NamedChildCount()); i++ {
		values = append(values, valueList.NamedChild(i))
	}

	for i, name := range names {
		if i >= len(values) || name == "_" || isReserved(name) {
			continue
		}
		value := values[i]
		switch value.Type() {
		case "func_literal":
			mod.bind(newCallable(name, KindLambda, content, spec, comments))

		case "identifier":
			target := nodeText(content, value)
			if existing, ok := mod.Lookup(target); ok {
				alias := existing
				alias.Name = name
				alias.Target = target
				if existing.Kind != KindDynamic {
					alias.Kind = KindAlias
				}
				mod.bind(alias)
			}

		case "call_expression", "selector_expression", "index_expression":
			line := int(spec.StartPoint().Row) + 1
			mod.bind(Callable{
				Name:      name,
				Kind:      KindDynamic,
				StartLine: line,
				EndLine:   int(spec.EndPoint().Row) + 1,
				Reason:    "bound to a computed value at line " + strconv.Itoa(line),
			})
		}
	}
}
