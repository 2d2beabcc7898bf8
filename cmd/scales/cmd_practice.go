package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// generateCmd writes a practice file
var generateCmd = &cobra.Command{
	Use:   "generate [pattern]",
	Short: "Generate a practice session",
	Long: `Writes a randomly chosen template of the given pattern (or of a random
pattern) to the practice directory and counts the session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

// progressCmd prints the practice counters
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show practice progress",
	Args:  cobra.NoArgs,
	RunE:  runProgress,
}

// patternsCmd lists the catalog
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List available practice patterns",
	Args:  cobra.NoArgs,
	RunE:  runPatterns,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	pattern := ""
	if len(args) > 0 {
		pattern = args[0]
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.manager.Generate(cmd.Context(), pattern)
	if err != nil {
		return err
	}
	logger.Info("Generated practice",
		zap.String("pattern", rec.Pattern),
		zap.String("template", rec.TemplateName),
		zap.String("session", rec.ID))

	fmt.Printf("Generated practice: %s\n", rec.FilePath)
	return nil
}

func runProgress(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.manager.Progress()
	fmt.Println(styles.Title.Render("Practice Progress:"))
	fmt.Printf("Total Sessions: %d\n", p.TotalSessions)
	fmt.Println("Patterns Practiced:")
	for _, id := range orderedPatterns(a.manager.PatternIDs(), p.PatternsPracticed) {
		fmt.Printf("  %s: %d sessions\n", id, p.PatternsPracticed[id])
	}
	return nil
}

// orderedPatterns lists practiced ids in catalog order, then any ids the
// catalog no longer knows, sorted.
func orderedPatterns(catalogOrder []string, counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	known := make(map[string]bool, len(catalogOrder))
	for _, id := range catalogOrder {
		known[id] = true
		if _, ok := counts[id]; ok {
			out = append(out, id)
		}
	}
	var rest []string
	for id := range counts {
		if !known[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func runPatterns(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	fmt.Println(styles.Title.Render("Available Patterns:"))
	for _, id := range registry.List() {
		fmt.Printf("  %s\n", id)
	}
	return nil
}
