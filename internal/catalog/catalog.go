// Package catalog holds the read-only registry of practice patterns.
// The built-in catalog is baked into the binary with go:embed; an external
// YAML file with the same shape can replace it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"scales/internal/logging"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// languageExtensions maps a template language tag to the practice file extension.
var languageExtensions = map[string]string{
	"python": ".py",
	"go":     ".go",
}

// Template is a named code skeleton with an unimplemented body.
type Template struct {
	Name     string `yaml:"name"`
	Language string `yaml:"language"`
	Body     string `yaml:"template"`
}

// Slug returns the lowercased name with spaces replaced by underscores.
func (t Template) Slug() string {
	return strings.ReplaceAll(strings.ToLower(t.Name), " ", "_")
}

// Extension returns the file extension for the template language.
func (t Template) Extension() string {
	return languageExtensions[t.Language]
}

// Pattern is an algorithmic technique bundling one or more templates.
type Pattern struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Templates   []Template `yaml:"templates"`
}

type catalogFile struct {
	Patterns []Pattern `yaml:"patterns"`
}

// NotFoundError is returned for an unknown pattern identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pattern %s not found", e.ID)
}

// Registry maps pattern identifiers to patterns. It is immutable after Load.
type Registry struct {
	order    []string
	patterns map[string]Pattern
}

// Default returns the registry built from the embedded catalog.
func Default() (*Registry, error) {
	return Load(builtinCatalog)
}

// LoadFile builds a registry from an external YAML catalog.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Load(data)
}

// Load parses and validates catalog YAML.
func Load(data []byte) (*Registry, error) {
	timer := logging.StartTimer(logging.CategoryCatalog, "catalog.Load")
	defer timer.Stop()

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(cf.Patterns) == 0 {
		return nil, fmt.Errorf("catalog defines no patterns")
	}

	r := &Registry{
		order:    make([]string, 0, len(cf.Patterns)),
		patterns: make(map[string]Pattern, len(cf.Patterns)),
	}
	for i, p := range cf.Patterns {
		if err := validatePattern(p); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, dup := r.patterns[p.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate pattern id %q", i, p.ID)
		}
		r.order = append(r.order, p.ID)
		r.patterns[p.ID] = p
		logging.CatalogDebug("Registered pattern %s with %d templates", p.ID, len(p.Templates))
	}

	logging.Catalog("Loaded catalog with %d patterns", len(r.order))
	return r, nil
}

func validatePattern(p Pattern) error {
	if p.ID == "" {
		return fmt.Errorf("pattern id is empty")
	}
	if strings.ContainsAny(p.ID, " /\\") {
		return fmt.Errorf("pattern id %q must not contain spaces or path separators", p.ID)
	}
	if len(p.Templates) == 0 {
		return fmt.Errorf("pattern %s has no templates", p.ID)
	}
	for _, t := range p.Templates {
		if t.Name == "" {
			return fmt.Errorf("pattern %s has a template without a name", p.ID)
		}
		if strings.ContainsAny(t.Name, "/\\") {
			return fmt.Errorf("template %q of pattern %s must not contain path separators", t.Name, p.ID)
		}
		if strings.TrimSpace(t.Body) == "" {
			return fmt.Errorf("template %q of pattern %s has an empty body", t.Name, p.ID)
		}
		if _, ok := languageExtensions[t.Language]; !ok {
			return fmt.Errorf("template %q of pattern %s has unknown language %q", t.Name, p.ID, t.Language)
		}
	}
	return nil
}

// List returns the pattern identifiers in catalog order.
func (r *Registry) List() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns a copy of the pattern with the given identifier.
func (r *Registry) Get(id string) (Pattern, error) {
	p, ok := r.patterns[id]
	if !ok {
		return Pattern{}, &NotFoundError{ID: id}
	}
	p.Templates = append([]Template(nil), p.Templates...)
	return p, nil
}
