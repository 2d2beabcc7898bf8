// Package validate compares the top-level callables of a practice file
// against the template it was generated from.
package validate

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"scales/internal/diff"
	"scales/internal/logging"
	"scales/internal/source"
)

// Status is the outcome for one template function.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusPartial Status = "PARTIAL"
	StatusMissing Status = "MISSING"
	StatusError   Status = "ERROR"
)

// Diff labels for the two sides of a comparison.
const (
	TemplateLabel = "template"
	PracticeLabel = "practice"
)

// LoadError aborts a validation when either file cannot be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// FunctionResult is the comparison outcome for one template function.
type FunctionResult struct {
	Name       string
	Status     Status
	Diff       []string // unified diff lines, PARTIAL only
	Message    string   // MISSING and ERROR only
	Similarity float64  // 1 for PASS, 0 for MISSING and ERROR
}

// Result holds per-function outcomes in template definition order.
type Result struct {
	TemplatePath string
	PracticePath string
	Functions    []FunctionResult
}

// Get returns the outcome for a function name.
func (r *Result) Get(name string) (FunctionResult, bool) {
	for _, f := range r.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return FunctionResult{}, false
}

// Counts tallies outcomes by status.
func (r *Result) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, f := range r.Functions {
		counts[f.Status]++
	}
	return counts
}

// Passed reports whether every template function matched.
func (r *Result) Passed() bool {
	for _, f := range r.Functions {
		if f.Status != StatusPass {
			return false
		}
	}
	return true
}

// slowValidation is the duration past which a validation is logged as a warning.
const slowValidation = time.Second

// Validator parses both files and compares their callables.
type Validator struct {
	factory *source.Factory
	engine  *diff.Engine
}

// New returns a validator using the default parsers and diff engine.
func New() *Validator {
	return NewWithFactory(source.NewFactory(), diff.DefaultEngine)
}

// NewWithFactory returns a validator with explicit collaborators.
func NewWithFactory(factory *source.Factory, engine *diff.Engine) *Validator {
	return &Validator{factory: factory, engine: engine}
}

// Validate compares every template callable with the practice file's
// binding of the same name. Practice-only callables are ignored.
func (v *Validator) Validate(ctx context.Context, templatePath, practicePath string) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryValidate, "Validate")
	defer timer.StopWithThreshold(slowValidation)

	tmpl, tmplPrefix, err := v.load(ctx, templatePath)
	if err != nil {
		return nil, err
	}
	practice, practicePrefix, err := v.load(ctx, practicePath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		TemplatePath: templatePath,
		PracticePath: practicePath,
		Functions:    make([]FunctionResult, 0, tmpl.Len()),
	}
	for _, name := range tmpl.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		want, _ := tmpl.Lookup(name)
		fr := v.compare(name, want, practice, tmplPrefix, practicePrefix)
		logging.ValidateDebug("%s: %s", name, fr.Status)
		result.Functions = append(result.Functions, fr)
	}

	counts := result.Counts()
	logging.Validate("Validated %s against %s: %d pass, %d partial, %d missing, %d error",
		practicePath, templatePath,
		counts[StatusPass], counts[StatusPartial], counts[StatusMissing], counts[StatusError])
	return result, nil
}

func (v *Validator) load(ctx context.Context, path string) (*source.Module, string, error) {
	parser, err := v.factory.ForPath(path)
	if err != nil {
		return nil, "", &LoadError{Path: path, Err: err}
	}
	mod, err := v.factory.LoadFile(ctx, path)
	if err != nil {
		return nil, "", &LoadError{Path: path, Err: err}
	}
	return mod, parser.CommentPrefix(), nil
}

// compare never panics; an unexpected failure becomes an ERROR entry.
func (v *Validator) compare(name string, want source.Callable, practice *source.Module, tmplPrefix, practicePrefix string) (fr FunctionResult) {
	fr.Name = name
	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategoryValidate).Error("Comparison of %s panicked: %v", name, r)
			fr = FunctionResult{
				Name:    name,
				Status:  StatusError,
				Message: fmt.Sprintf("Error comparing %s: %v", name, r),
			}
		}
	}()

	got, ok := practice.Lookup(name)
	if !ok {
		fr.Status = StatusMissing
		fr.Message = fmt.Sprintf("Function %s not found in practice file", name)
		return fr
	}
	if !want.HasSource() {
		fr.Status = StatusError
		fr.Message = fmt.Sprintf("Cannot retrieve source of %s in template: %s", name, want.Reason)
		return fr
	}
	if !got.HasSource() {
		fr.Status = StatusError
		fr.Message = fmt.Sprintf("Cannot retrieve source of %s in practice file: %s", name, got.Reason)
		return fr
	}

	a := Normalize(want.Code, tmplPrefix)
	b := Normalize(got.Code, practicePrefix)
	if slices.Equal(a, b) {
		fr.Status = StatusPass
		fr.Similarity = 1
		return fr
	}

	fr.Status = StatusPartial
	fr.Diff = v.engine.Unified(a, b, TemplateLabel, PracticeLabel)
	fr.Similarity = v.engine.Similarity(a, b)
	return fr
}

// Normalize trims every line and drops blank lines and lines that start
// with the comment prefix.
func Normalize(text, commentPrefix string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if commentPrefix != "" && strings.HasPrefix(line, commentPrefix) {
			continue
		}
		out = append(out, line)
	}
	return out
}
