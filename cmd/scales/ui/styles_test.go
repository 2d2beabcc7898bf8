package ui

import (
	"strings"
	"testing"

	"scales/internal/validate"
)

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("SCALES_DARK_MODE", "1")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme when SCALES_DARK_MODE=1")
	}

	t.Setenv("SCALES_DARK_MODE", "")
	if DetectTheme().IsDark {
		t.Fatalf("expected light theme when SCALES_DARK_MODE is unset")
	}

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for a black background")
	}
}

func TestStatusKeepsText(t *testing.T) {
	s := NewStyles(LightTheme())
	for _, status := range []validate.Status{validate.StatusPass, validate.StatusPartial, validate.StatusMissing, validate.StatusError} {
		if got := s.Status(status); !strings.Contains(got, string(status)) {
			t.Errorf("Status(%s) = %q", status, got)
		}
	}
}

func TestDiffLineKeepsText(t *testing.T) {
	s := NewStyles(DarkTheme())
	for _, line := range []string{"--- template", "+++ practice", "@@ -1 +1 @@", "-pass", "+return 1", " def f():"} {
		if got := s.DiffLine(line); !strings.Contains(got, line) {
			t.Errorf("DiffLine(%q) = %q", line, got)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(LightTheme(), "# Sliding Window\n\nPractice sliding window technique\n")
	if !strings.Contains(out, "Sliding") {
		t.Fatalf("rendered markdown lost the heading: %q", out)
	}
}
