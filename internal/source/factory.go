package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scales/internal/logging"
)

// Parser extracts callables for one language.
type Parser interface {
	// Language returns the catalog language tag ("python", "go").
	Language() string

	// SupportedExtensions returns extensions with the leading dot.
	SupportedExtensions() []string

	// CommentPrefix returns the line-comment marker.
	CommentPrefix() string

	// Parse builds a Module from file content. Each call uses a fresh
	// Tree-sitter parser, so modules never share state.
	Parse(ctx context.Context, path string, content []byte) (*Module, error)
}

// Factory routes files to parsers by extension.
type Factory struct {
	parsers map[string]Parser
}

// NewFactory returns a factory with the Python and Go parsers registered.
func NewFactory() *Factory {
	f := &Factory{parsers: make(map[string]Parser)}
	f.Register(NewPythonParser())
	f.Register(NewGoParser())
	return f
}

// Register adds a parser for its supported extensions, replacing earlier ones.
func (f *Factory) Register(p Parser) {
	for _, ext := range p.SupportedExtensions() {
		ext = normalizeExtension(ext)
		logging.ValidateDebug("Registering %s parser for %s", p.Language(), ext)
		f.parsers[ext] = p
	}
}

// ForPath returns the parser for a file path.
func (f *Factory) ForPath(path string) (Parser, error) {
	ext := normalizeExtension(filepath.Ext(path))
	p, ok := f.parsers[ext]
	if !ok {
		return nil, &UnsupportedError{Path: path, Extension: ext}
	}
	return p, nil
}

// LoadFile reads and parses a file.
func (f *Factory) LoadFile(ctx context.Context, path string) (*Module, error) {
	p, err := f.ForPath(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	start := time.Now()
	mod, err := p.Parse(ctx, path, content)
	if err != nil {
		logging.Get(logging.CategoryValidate).Error("Parse failed: %s - %v", path, err)
		return nil, err
	}
	logging.ValidateDebug("Parsed %s (%s): %d callables in %v",
		filepath.Base(path), p.Language(), mod.Len(), time.Since(start))
	return mod, nil
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
