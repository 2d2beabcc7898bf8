// Package progress persists the practice counters.
package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"scales/internal/logging"
)

// Log is the persisted counter file.
// TotalSessions always equals the sum of PatternsPracticed.
type Log struct {
	TotalSessions     int            `json:"total_sessions"`
	PatternsPracticed map[string]int `json:"patterns_practiced"`
}

// Total returns the sum of all per-pattern counters.
func (l Log) Total() int {
	sum := 0
	for _, n := range l.PatternsPracticed {
		sum += n
	}
	return sum
}

func (l Log) clone() Log {
	out := Log{
		TotalSessions:     l.TotalSessions,
		PatternsPracticed: make(map[string]int, len(l.PatternsPracticed)),
	}
	for k, v := range l.PatternsPracticed {
		out.PatternsPracticed[k] = v
	}
	return out
}

func emptyLog() Log {
	return Log{PatternsPracticed: make(map[string]int)}
}

// Tracker owns the in-memory log and its file.
type Tracker struct {
	mu       sync.Mutex
	data     Log
	filePath string
}

// NewTracker creates the parent directory and loads the log at path.
// A missing or malformed file leaves the counters at zero.
func NewTracker(path string) (*Tracker, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create practice dir: %w", err)
	}

	t := &Tracker{filePath: path, data: emptyLog()}
	if err := t.Load(); err != nil {
		logging.SessionWarn("Ignoring unreadable practice log %s: %v", path, err)
		t.data = emptyLog()
	}
	return t, nil
}

// Path returns the log file path.
func (t *Tracker) Path() string {
	return t.filePath
}

// Load reads the log from disk, replacing the in-memory counters.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		t.data = emptyLog()
		return nil
	}
	if err != nil {
		return err
	}

	var loaded Log
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	if loaded.PatternsPracticed == nil {
		loaded.PatternsPracticed = make(map[string]int)
	}
	for id, n := range loaded.PatternsPracticed {
		if n < 0 {
			return fmt.Errorf("negative count %d for pattern %s", n, id)
		}
	}
	if sum := loaded.Total(); loaded.TotalSessions != sum {
		logging.SessionWarn("Practice log total %d disagrees with per-pattern sum %d; using sum",
			loaded.TotalSessions, sum)
		loaded.TotalSessions = sum
	}

	t.data = loaded
	logging.SessionDebug("Loaded practice log: %d sessions", loaded.TotalSessions)
	return nil
}

// Save writes the whole log to disk.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

// saveLocked replaces the file through a rename so readers never see a partial write.
func (t *Tracker) saveLocked() error {
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.filePath), ".practice_log-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, t.filePath)
}

// Record increments the total and the pattern counter and persists the log.
// On a failed write the in-memory counters are restored.
func (t *Tracker) Record(pattern string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.data.PatternsPracticed[pattern]
	t.data.TotalSessions++
	t.data.PatternsPracticed[pattern] = prev + 1

	if err := t.saveLocked(); err != nil {
		t.data.TotalSessions--
		if prev == 0 {
			delete(t.data.PatternsPracticed, pattern)
		} else {
			t.data.PatternsPracticed[pattern] = prev
		}
		return fmt.Errorf("failed to save practice log: %w", err)
	}

	logging.SessionDebug("Recorded session for %s (total=%d)", pattern, t.data.TotalSessions)
	return nil
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Log {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.clone()
}
