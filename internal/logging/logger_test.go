package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetLogging(t *testing.T) {
	t.Helper()
	CloseAll()
	t.Cleanup(func() {
		CloseAll()
		_ = Initialize(t.TempDir(), Options{})
	})
}

func readCategoryLog(t *testing.T, dir string, cat Category) string {
	t.Helper()
	filename := time.Now().Format("2006-01-02") + "_" + string(cat) + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read %s log: %v", cat, err)
	}
	return string(data)
}

// TestAllCategoriesLog tests that all categories create log files when debug mode is on
func TestAllCategoriesLog(t *testing.T) {
	resetLogging(t)
	dir := filepath.Join(t.TempDir(), "logs")

	if err := Initialize(dir, Options{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot,
		CategoryCatalog,
		CategorySession,
		CategoryStore,
		CategoryValidate,
		CategoryWatch,
	}

	for _, cat := range categories {
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}
	CloseAll()

	for _, cat := range categories {
		content := readCategoryLog(t, dir, cat)
		for _, want := range []string{"info message", "debug message", "warn message", "error message"} {
			if !strings.Contains(content, want) {
				t.Errorf("category %s: missing %q in log", cat, want)
			}
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	resetLogging(t)
	dir := filepath.Join(t.TempDir(), "logs")

	if err := Initialize(dir, Options{DebugMode: false}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	Session("should not be written")
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("logs directory should not exist in production mode, stat err=%v", err)
	}
}

func TestCategoryToggle(t *testing.T) {
	resetLogging(t)
	dir := filepath.Join(t.TempDir(), "logs")

	err := Initialize(dir, Options{
		DebugMode:  true,
		Level:      "info",
		Categories: map[string]bool{"store": false},
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if IsCategoryEnabled(CategoryStore) {
		t.Error("store category should be disabled")
	}
	if !IsCategoryEnabled(CategoryWatch) {
		t.Error("unlisted category should default to enabled")
	}

	Store("hidden")
	Watch("visible")
	WatchDebug("below level")
	CloseAll()

	filename := time.Now().Format("2006-01-02") + "_store.log"
	if _, err := os.Stat(filepath.Join(dir, filename)); !os.IsNotExist(err) {
		t.Error("disabled category must not create a log file")
	}

	content := readCategoryLog(t, dir, CategoryWatch)
	if !strings.Contains(content, "visible") {
		t.Error("expected info entry in watch log")
	}
	if strings.Contains(content, "below level") {
		t.Error("debug entry should be filtered at info level")
	}
}

func TestJSONFormat(t *testing.T) {
	resetLogging(t)
	dir := filepath.Join(t.TempDir(), "logs")

	if err := Initialize(dir, Options{DebugMode: true, JSONFormat: true}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	Get(CategoryCatalog).With("pattern", "two_pointers").Info("loaded")
	CloseAll()

	content := readCategoryLog(t, dir, CategoryCatalog)
	if !strings.Contains(content, `"msg":"loaded"`) || !strings.Contains(content, `"pattern":"two_pointers"`) {
		t.Errorf("expected structured JSON entry, got: %s", content)
	}
}

func TestTimerLogging(t *testing.T) {
	resetLogging(t)

	timer := StartTimer(CategoryValidate, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("Timer should have recorded non-zero duration")
	}
}

func TestTimerThreshold(t *testing.T) {
	resetLogging(t)
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Initialize(dir, Options{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	StartTimer(CategoryValidate, "fast").StopWithThreshold(time.Hour)
	slow := StartTimer(CategoryValidate, "slow")
	time.Sleep(2 * time.Millisecond)
	slow.StopWithThreshold(time.Nanosecond)
	CloseAll()

	content := readCategoryLog(t, dir, CategoryValidate)
	if !strings.Contains(content, "fast completed in") {
		t.Error("expected debug entry for fast operation")
	}
	if !strings.Contains(content, "WARN") || !strings.Contains(content, "slow took") {
		t.Errorf("expected warning for slow operation, got: %s", content)
	}
}

func TestNoopLoggerIsSafe(t *testing.T) {
	var l Logger
	l.Info("nothing %d", 1)
	l.With("k", "v").Error("still nothing")
}
