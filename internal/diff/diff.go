// Package diff compares normalized source listings. Unified diffs come from
// go-difflib so the output matches the conventional `---/+++/@@` layout;
// similarity scoring uses the sergi/go-diff line-mode reduction.
package diff

import (
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType represents the type of a unified diff line
type LineType int

const (
	LineContext LineType = iota // Unchanged context line
	LineAdded                   // Added line
	LineRemoved                 // Removed line
	LineHeader                  // File or hunk header
)

// Classify returns the type of a line produced by Unified.
func Classify(line string) LineType {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
		return LineHeader
	case strings.HasPrefix(line, "+"):
		return LineAdded
	case strings.HasPrefix(line, "-"):
		return LineRemoved
	default:
		return LineContext
	}
}

// Engine computes diffs and similarity scores
type Engine struct {
	dmp     *diffmatchpatch.DiffMatchPatch
	context int
	cache   sync.Map // similarity by content pair
}

type cacheKey struct {
	oldHash uint64
	newHash uint64
}

// NewEngine creates a new diff engine with three lines of context
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // Disable timeout for accuracy
	return &Engine{
		dmp:     dmp,
		context: 3,
	}
}

// DefaultEngine is a singleton engine for general use
var DefaultEngine = NewEngine()

// Unified returns the unified diff of two line lists, one entry per output
// line without trailing newlines. Identical inputs produce nil.
func (e *Engine) Unified(a, b []string, fromFile, toFile string) []string {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        withNewlines(a),
		B:        withNewlines(b),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  e.context,
	})
	if err != nil || out == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

// Similarity returns 1 minus the line-level edit distance divided by the
// longer listing's length. Two empty listings are identical.
func (e *Engine) Similarity(a, b []string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}

	oldContent := strings.Join(withNewlines(a), "")
	newContent := strings.Join(withNewlines(b), "")
	key := cacheKey{hash(oldContent), hash(newContent)}
	if cached, ok := e.cache.Load(key); ok {
		return cached.(float64)
	}

	// Line-mode reduction: every distinct line becomes one symbol.
	chars1, chars2, lineArray := e.dmp.DiffLinesToChars(oldContent, newContent)
	diffs := e.dmp.DiffMain(chars1, chars2, false)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)
	distance := lineLevenshtein(diffs)

	score := 1 - float64(distance)/float64(longest)
	if score < 0 {
		score = 0
	}
	e.cache.Store(key, score)
	return score
}

// ClearCache clears the similarity cache
func (e *Engine) ClearCache() {
	e.cache.Range(func(k, _ any) bool {
		e.cache.Delete(k)
		return true
	})
}

// lineLevenshtein mirrors DiffLevenshtein but counts lines, not runes.
func lineLevenshtein(diffs []diffmatchpatch.Diff) int {
	distance, insertions, deletions := 0, 0, 0
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			insertions += n
		case diffmatchpatch.DiffDelete:
			deletions += n
		case diffmatchpatch.DiffEqual:
			// A deletion and an insertion is one substitution.
			distance += max(insertions, deletions)
			insertions, deletions = 0, 0
		}
	}
	return distance + max(insertions, deletions)
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}

// hash computes a simple hash for caching (FNV-1a algorithm)
func hash(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
