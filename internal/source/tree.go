package source

import (
	"context"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// span is a half-open byte range.
type span struct {
	start, end uint32
}

// parseTree parses content with a fresh parser and rejects trees with error nodes.
func parseTree(ctx context.Context, lang *sitter.Language, path string, content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}

	root := tree.RootNode()
	if root.HasError() {
		bad := firstErrorNode(root)
		tree.Close()
		serr := &SyntaxError{Path: path, Line: 1, Column: 1}
		if bad != nil {
			serr.Line = int(bad.StartPoint().Row) + 1
			serr.Column = int(bad.StartPoint().Column) + 1
		}
		return nil, serr
	}
	return tree, nil
}

// firstErrorNode finds the earliest ERROR or MISSING node in document order.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

// collectComments returns the byte ranges of every comment node, sorted.
func collectComments(root *sitter.Node) []span {
	var spans []span
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "comment" {
			spans = append(spans, span{n.StartByte(), n.EndByte()})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// lineStart returns the offset of the first byte of the line containing off.
func lineStart(content []byte, off uint32) uint32 {
	for off > 0 && content[off-1] != '\n' {
		off--
	}
	return off
}

// sourceOf returns the full lines covered by n, verbatim and with comments removed.
func sourceOf(content []byte, n *sitter.Node, comments []span) (verbatim, code string) {
	start := lineStart(content, n.StartByte())
	end := n.EndByte()
	verbatim = string(content[start:end])

	var b strings.Builder
	cur := start
	for _, c := range comments {
		if c.end <= start || c.start >= end {
			continue
		}
		if c.start > cur {
			b.Write(content[cur:c.start])
		}
		// Keep line structure for multi-line block comments.
		b.WriteString(strings.Repeat("\n", strings.Count(string(content[c.start:c.end]), "\n")))
		if c.end > cur {
			cur = c.end
		}
	}
	if cur < end {
		b.Write(content[cur:end])
	}
	return verbatim, b.String()
}

func nodeText(content []byte, n *sitter.Node) string {
	return string(content[n.StartByte():n.EndByte()])
}

func newCallable(name string, kind Kind, content []byte, n *sitter.Node, comments []span) Callable {
	verbatim, code := sourceOf(content, n, comments)
	return Callable{
		Name:      name,
		Kind:      kind,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Source:    verbatim,
		Code:      code,
	}
}
