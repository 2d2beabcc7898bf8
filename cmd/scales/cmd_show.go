package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scales/cmd/scales/ui"
	"scales/internal/catalog"
)

// showCmd renders a pattern and its templates
var showCmd = &cobra.Command{
	Use:   "show <pattern>",
	Short: "Show a pattern's description and templates",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	p, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderMarkdown(styles.Theme, patternMarkdown(p)))
	return nil
}

func patternMarkdown(p catalog.Pattern) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", p.Description)
	}
	for _, t := range p.Templates {
		fmt.Fprintf(&sb, "## %s (%s)\n\n", t.Name, t.Language)
		fmt.Fprintf(&sb, "```%s\n%s", t.Language, t.Body)
		if !strings.HasSuffix(t.Body, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n\n")
	}
	return sb.String()
}
