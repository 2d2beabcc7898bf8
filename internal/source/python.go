package source

import (
	"context"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonParser extracts module-level callables from Python source.
type PythonParser struct{}

// NewPythonParser creates a new Python parser.
func NewPythonParser() *PythonParser {
	return &PythonParser{}
}

func (p *PythonParser) Language() string              { return "python" }
func (p *PythonParser) SupportedExtensions() []string { return []string{".py", ".pyw"} }
func (p *PythonParser) CommentPrefix() string         { return "#" }

// Parse walks module-level statements in execution order, so later bindings
// replace earlier ones the way the interpreter would.
func (p *PythonParser) Parse(ctx context.Context, path string, content []byte) (*Module, error) {
	tree, err := parseTree(ctx, python.GetLanguage(), path, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &pyWalker{
		mod:      newModule(path, p.Language()),
		content:  content,
		comments: collectComments(root),
	}
	w.walk(root)
	return w.mod, nil
}

type pyWalker struct {
	mod      *Module
	content  []byte
	comments []span
}

func (w *pyWalker) walk(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			w.define(child, child, KindFunction)

		case "class_definition":
			w.define(child, child, KindClass)

		case "decorated_definition":
			// The decorators are part of the definition's source.
			inner := child.ChildByFieldName("definition")
			if inner == nil {
				continue
			}
			kind := KindFunction
			if inner.Type() == "class_definition" {
				kind = KindClass
			}
			w.define(inner, child, kind)

		case "expression_statement":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if stmt := child.NamedChild(j); stmt.Type() == "assignment" {
					w.assign(stmt, child)
				}
			}

		case "import_from_statement":
			w.imported(child)

		case "comment":
			// nothing bound

		case "if_statement":
			// A script entry point never runs when the file is imported.
			if isMainGuard(w.content, child.ChildByFieldName("condition")) {
				w.walkAlternatives(child)
				continue
			}
			w.walk(child)

		default:
			// if/try/with/for blocks at module level still bind module names.
			w.walk(child)
		}
	}
}

func (w *pyWalker) define(def, outer *sitter.Node, kind Kind) {
	nameNode := def.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(w.content, nameNode)
	if isReserved(name) {
		return
	}
	w.mod.bind(newCallable(name, kind, w.content, outer, w.comments))
}

// walkAlternatives visits the elif/else branches of an if statement.
func (w *pyWalker) walkAlternatives(stmt *sitter.Node) {
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		child := stmt.NamedChild(i)
		if t := child.Type(); t == "elif_clause" || t == "else_clause" {
			w.walk(child)
		}
	}
}

// isMainGuard matches `__name__ == "__main__"` with the operands in either order.
func isMainGuard(content []byte, cond *sitter.Node) bool {
	if cond == nil || cond.Type() != "comparison_operator" || cond.NamedChildCount() != 2 {
		return false
	}
	for i := 0; i < int(cond.ChildCount()); i++ {
		if c := cond.Child(i); !c.IsNamed() && c.Type() != "==" {
			return false
		}
	}
	a, b := cond.NamedChild(0), cond.NamedChild(1)
	if a.Type() == "string" {
		a, b = b, a
	}
	return a.Type() == "identifier" && nodeText(content, a) == "__name__" &&
		b.Type() == "string" && strings.Trim(nodeText(content, b), `"'`) == "__main__"
}

// plainBuiltins never return a callable.
var plainBuiltins = map[string]bool{
	"abs": true, "all": true, "any": true, "bin": true, "bool": true,
	"bytearray": true, "bytes": true, "chr": true, "complex": true, "dict": true,
	"divmod": true, "enumerate": true, "float": true, "format": true, "frozenset": true,
	"hash": true, "hex": true, "id": true, "input": true, "int": true,
	"isinstance": true, "iter": true, "len": true, "list": true, "max": true,
	"min": true, "object": true, "oct": true, "open": true, "ord": true,
	"pow": true, "range": true, "repr": true, "reversed": true, "round": true,
	"set": true, "sorted": true, "str": true, "sum": true, "tuple": true,
	"zip": true,
}

// assign handles `name = value` at module level. Chained targets
// (`a = b = value`) bind every target to the final value; tuple targets
// (`a, b = f, g`) bind by position.
func (w *pyWalker) assign(stmt, outer *sitter.Node) {
	var targets []*sitter.Node
	value := stmt
	for value != nil && value.Type() == "assignment" {
		if left := value.ChildByFieldName("left"); left != nil {
			targets = append(targets, left)
		}
		value = value.ChildByFieldName("right")
	}
	if value == nil {
		// Annotation only (`x: int`), nothing bound.
		return
	}

	for _, target := range targets {
		w.assignTarget(target, value, outer)
	}
}

func (w *pyWalker) assignTarget(target, value, outer *sitter.Node) {
	switch target.Type() {
	case "identifier":
		w.bindValue(nodeText(w.content, target), value, outer)

	case "pattern_list", "tuple_pattern", "list_pattern":
		names := namedChildren(target)
		var values []*sitter.Node
		if t := value.Type(); t == "expression_list" || t == "tuple" || t == "list" {
			values = namedChildren(value)
		}
		for i, name := range names {
			if len(values) == len(names) {
				w.assignTarget(name, values[i], outer)
			} else {
				// Unpacking a single value.
				w.assignTarget(name, value, outer)
			}
		}
	}
}

func (w *pyWalker) bindValue(name string, value, outer *sitter.Node) {
	if isReserved(name) {
		return
	}

	switch value.Type() {
	case "lambda":
		w.mod.bind(newCallable(name, KindLambda, w.content, outer, w.comments))

	case "identifier":
		target := nodeText(w.content, value)
		existing, ok := w.mod.Lookup(target)
		if !ok {
			w.dynamic(name, outer, "bound to "+target+", which has no source in this file")
			return
		}
		alias := existing
		alias.Name = name
		alias.Kind = KindAlias
		alias.Target = target
		if existing.Kind == KindAlias {
			alias.Target = existing.Target
		}
		if existing.Kind == KindDynamic {
			alias.Kind = KindDynamic
		}
		w.mod.bind(alias)

	case "call":
		if fn := value.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
			callee := nodeText(w.content, fn)
			if _, shadowed := w.mod.Lookup(callee); plainBuiltins[callee] && !shadowed {
				w.mod.unbind(name)
				return
			}
		}
		w.dynamic(name, outer, "")

	case "attribute", "subscript", "conditional_expression", "await", "parenthesized_expression", "boolean_operator":
		w.dynamic(name, outer, "")

	default:
		// Literals and arithmetic never produce a callable.
		w.mod.unbind(name)
	}
}

// dynamic binds name without source; an empty reason names the line.
func (w *pyWalker) dynamic(name string, outer *sitter.Node, reason string) {
	c := newCallable(name, KindDynamic, w.content, outer, w.comments)
	c.Source, c.Code = "", ""
	c.Reason = reason
	if c.Reason == "" {
		c.Reason = "bound to a computed value at line " + strconv.Itoa(c.StartLine)
	}
	w.mod.bind(c)
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// imported marks `from x import y` names as bindings without local source.
func (w *pyWalker) imported(stmt *sitter.Node) {
	module := stmt.ChildByFieldName("module_name")
	from := "another module"
	if module != nil {
		from = nodeText(w.content, module)
	}
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		child := stmt.NamedChild(i)
		if module != nil && child.StartByte() == module.StartByte() && child.EndByte() == module.EndByte() {
			continue
		}

		var name string
		switch child.Type() {
		case "dotted_name":
			name = nodeText(w.content, child)
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				name = nodeText(w.content, alias)
			}
		}
		if name == "" || isReserved(name) {
			continue
		}
		w.mod.bind(Callable{
			Name:      name,
			Kind:      KindDynamic,
			StartLine: int(stmt.StartPoint().Row) + 1,
			EndLine:   int(stmt.EndPoint().Row) + 1,
			Reason:    "imported from " + from,
		})
	}
}
