package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scales/internal/diff"
	"scales/internal/validate"
	"scales/internal/watch"
)

var watchMode bool

// validateCmd compares a practice file with its template
var validateCmd = &cobra.Command{
	Use:   "validate <template> <practice>",
	Short: "Validate practice implementation",
	Long: `Compares every top-level function of the template with the function of
the same name in the practice file. Comments, indentation and blank lines are
ignored. Each function is reported as PASS, PARTIAL (with a unified diff),
MISSING or ERROR.

With --watch the comparison is repeated whenever either file is saved.`,
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	templatePath, practicePath := args[0], args[1]
	v := validate.New()

	res, err := v.Validate(cmd.Context(), templatePath, practicePath)
	if err != nil {
		return err
	}
	printResult(res)

	if !watchMode {
		return nil
	}
	return watchAndValidate(cmd.Context(), v, templatePath, practicePath)
}

func printResult(res *validate.Result) {
	if len(res.Functions) == 0 {
		fmt.Println(styles.Muted.Render("No functions found in template"))
		return
	}
	for _, f := range res.Functions {
		fmt.Printf("Function: %s\n", f.Name)
		fmt.Printf("Status: %s\n", styles.Status(f.Status))

		switch f.Status {
		case validate.StatusPartial:
			fmt.Println(styles.Muted.Render(fmt.Sprintf("Similarity: %.0f%%", f.Similarity*100)))
			fmt.Println("Differences:")
			for _, line := range f.Diff {
				fmt.Println(styles.DiffLine(line))
			}
		case validate.StatusMissing, validate.StatusError:
			fmt.Println(f.Message)
		}
	}

	fmt.Println()
	if res.Passed() {
		fmt.Println(styles.Pass.Render(fmt.Sprintf("All %d functions match the template", len(res.Functions))))
		return
	}
	fmt.Println(styles.Muted.Render(fmt.Sprintf("%d of %d functions match the template",
		res.Counts()[validate.StatusPass], len(res.Functions))))
}

// watchAndValidate re-runs validation after every settled write until interrupted.
func watchAndValidate(parent context.Context, v *validate.Validator, templatePath, practicePath string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New([]string{templatePath, practicePath}, cfg.GetWatchDebounce())
	if err != nil {
		return err
	}
	logger.Debug("Watching directories", zap.Strings("dirs", w.Dirs()))
	fmt.Println(styles.Muted.Render("Watching for changes (Ctrl+C to stop)..."))
	defer func() {
		s := w.Stats()
		logger.Info("Watch stopped",
			zap.Int("events", s.Events),
			zap.Int("changes", s.Changes),
			zap.Int("errors", s.Errors))
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		for change := range w.Changes() {
			logger.Debug("Change detected", zap.String("path", change.Path))
			fmt.Println()
			fmt.Println(styles.Title.Render("Changed: " + change.Path))

			// Scores from earlier edits are never looked up again.
			diff.DefaultEngine.ClearCache()
			res, err := v.Validate(gctx, templatePath, practicePath)
			if err != nil {
				// A half-written file is normal while editing.
				fmt.Println(styles.Error.Render(err.Error()))
				continue
			}
			printResult(res)
		}
		return nil
	})
	return g.Wait()
}
