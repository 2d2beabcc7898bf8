package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd prints the session journal
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently generated practice sessions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.history == nil {
		fmt.Println("Session history is disabled")
		return nil
	}

	recent, err := a.history.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	fmt.Println(styles.Title.Render("Recent Sessions:"))
	if len(recent) == 0 {
		fmt.Println(styles.Muted.Render("  none yet"))
		return nil
	}
	for _, r := range recent {
		fmt.Printf("  %s  %s  %s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Pattern, r.TemplateName, r.FilePath)
	}

	counts, err := a.history.CountByPattern(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println(styles.Title.Render("Sessions by Pattern:"))
	for _, c := range counts {
		fmt.Printf("  %s: %d\n", c.Pattern, c.Count)
	}
	return nil
}
