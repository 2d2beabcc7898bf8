// Package source extracts top-level callables and their source text from
// practice files using Tree-sitter grammars.
package source

import "fmt"

// Kind classifies how a top-level name was bound.
type Kind int

const (
	KindFunction Kind = iota // def / func declaration
	KindClass                // class definition
	KindLambda               // name bound to an anonymous function
	KindAlias                // name bound to another callable
	KindDynamic              // name bound to a computed value; no source available
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindLambda:
		return "lambda"
	case KindAlias:
		return "alias"
	case KindDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Callable is one top-level callable binding.
type Callable struct {
	Name      string
	Kind      Kind
	StartLine int // 1-indexed, inclusive
	EndLine   int
	Source    string // verbatim lines of the definition
	Code      string // Source with comment tokens removed
	Target    string // aliased name, for KindAlias
	Reason    string // why no source exists, for KindDynamic
}

// HasSource reports whether source text can be attributed to the binding.
func (c Callable) HasSource() bool {
	return c.Kind != KindDynamic
}

// Module is the set of callables defined by one file.
type Module struct {
	Path     string
	Language string

	callables map[string]Callable
	order     []string
}

func newModule(path, language string) *Module {
	return &Module{
		Path:      path,
		Language:  language,
		callables: make(map[string]Callable),
	}
}

// bind records a binding, keeping the position of the first binding of a name.
func (m *Module) bind(c Callable) {
	if _, exists := m.callables[c.Name]; !exists {
		m.order = append(m.order, c.Name)
	}
	m.callables[c.Name] = c
}

// unbind removes a name that was rebound to a non-callable value.
func (m *Module) unbind(name string) {
	if _, exists := m.callables[name]; !exists {
		return
	}
	delete(m.callables, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Names returns callable names in definition order.
func (m *Module) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Lookup returns the callable bound to name.
func (m *Module) Lookup(name string) (Callable, bool) {
	c, ok := m.callables[name]
	return c, ok
}

// Len returns the number of callables.
func (m *Module) Len() int {
	return len(m.order)
}

// SyntaxError reports the first error node Tree-sitter found.
type SyntaxError struct {
	Path   string
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %s at line %d, column %d", e.Path, e.Line, e.Column)
}

// UnsupportedError is returned for a file extension without a parser.
type UnsupportedError struct {
	Path      string
	Extension string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("no parser registered for extension %q (%s)", e.Extension, e.Path)
}

// isReserved reports names hidden from comparison.
func isReserved(name string) bool {
	return len(name) >= 2 && name[:2] == "__"
}
