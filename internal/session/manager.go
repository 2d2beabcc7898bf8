// Package session generates practice files and commits the practice counters.
package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"scales/internal/catalog"
	"scales/internal/logging"
	"scales/internal/progress"
	"scales/internal/store"
)

// Record describes one generated practice file.
type Record struct {
	ID           string
	Pattern      string
	TemplateName string
	Language     string
	FilePath     string
	Timestamp    time.Time
}

// HistoryRecorder journals generated sessions. *store.History satisfies it.
type HistoryRecorder interface {
	Record(ctx context.Context, rec store.SessionRecord) error
}

// Config holds manager settings.
type Config struct {
	// PracticeDir receives the generated practice files.
	PracticeDir string

	// Rand drives pattern and template selection. Nil uses a randomly seeded source.
	Rand *rand.Rand

	// Now stamps records. Nil uses time.Now.
	Now func() time.Time
}

// Manager owns pattern selection, practice file output and counter updates.
type Manager struct {
	mu sync.Mutex

	registry *catalog.Registry
	tracker  *progress.Tracker
	history  HistoryRecorder // optional
	dir      string
	rng      *rand.Rand
	now      func() time.Time
}

// NewManager wires a manager. history may be nil.
func NewManager(registry *catalog.Registry, tracker *progress.Tracker, history HistoryRecorder, cfg Config) *Manager {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logging.Session("Creating session manager (dir: %s, history: %v)", cfg.PracticeDir, history != nil)
	return &Manager{
		registry: registry,
		tracker:  tracker,
		history:  history,
		dir:      cfg.PracticeDir,
		rng:      rng,
		now:      now,
	}
}

// Generate writes a practice file for patternID, or for a uniformly random
// pattern when patternID is empty. The file is written before the counters
// move, so a failed write leaves the practice log untouched.
func (m *Manager) Generate(ctx context.Context, patternID string) (*Record, error) {
	timer := logging.StartTimer(logging.CategorySession, "Generate")
	defer timer.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if patternID == "" {
		ids := m.registry.List()
		if len(ids) == 0 {
			return nil, fmt.Errorf("no patterns registered")
		}
		patternID = ids[m.rng.IntN(len(ids))]
		logging.SessionDebug("Picked random pattern %s", patternID)
	}

	pattern, err := m.registry.Get(patternID)
	if err != nil {
		return nil, err
	}
	tmpl := pattern.Templates[m.rng.IntN(len(pattern.Templates))]

	filename := fmt.Sprintf("%s_%s_practice%s", pattern.ID, tmpl.Slug(), tmpl.Extension())
	path := filepath.Join(m.dir, filename)

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create practice dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(tmpl.Body), 0644); err != nil {
		logging.SessionError("Failed to write practice file %s: %v", path, err)
		return nil, fmt.Errorf("failed to write practice file: %w", err)
	}

	if err := m.tracker.Record(pattern.ID); err != nil {
		logging.SessionError("Failed to commit counters for %s: %v", pattern.ID, err)
		return nil, err
	}

	rec := &Record{
		ID:           uuid.NewString(),
		Pattern:      pattern.ID,
		TemplateName: tmpl.Name,
		Language:     tmpl.Language,
		FilePath:     path,
		Timestamp:    m.now(),
	}
	logging.Session("Generated %s (%s) at %s", pattern.ID, tmpl.Name, path)

	if m.history != nil {
		err := m.history.Record(ctx, store.SessionRecord{
			ID:           rec.ID,
			Pattern:      rec.Pattern,
			TemplateName: rec.TemplateName,
			Language:     rec.Language,
			FilePath:     rec.FilePath,
			CreatedAt:    rec.Timestamp,
		})
		if err != nil {
			logging.SessionWarn("Session %s not journaled: %v", rec.ID, err)
		}
	}
	return rec, nil
}

// Progress returns a copy of the current counters.
func (m *Manager) Progress() progress.Log {
	return m.tracker.Snapshot()
}

// PatternIDs returns the registered pattern identifiers in catalog order.
func (m *Manager) PatternIDs() []string {
	return m.registry.List()
}
