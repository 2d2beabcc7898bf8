package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"scales/cmd/scales/ui"
	"scales/internal/config"
	"scales/internal/logging"
)

var (
	// Global flags
	verbose     bool
	practiceDir string
	configPath  string

	// Resolved at startup
	cfg    *config.Config
	styles ui.Styles

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scales",
	Short: "scales - coding pattern practice generator",
	Long: `scales writes algorithm-pattern templates (sliding window, two pointers,
backtracking, dynamic programming, monotonic stack) to disk for deliberate
practice, counts how often each pattern was practiced, and compares a
filled-in practice file against its template.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Initialize(cfg.LogsDir(), logging.Options{
			DebugMode:  cfg.Logging.DebugMode,
			Level:      level,
			JSONFormat: cfg.Logging.JSONFormat(),
			Categories: cfg.Logging.Categories,
		}); err != nil {
			logger.Warn("File logging unavailable", zap.Error(err))
		}
		logging.Boot("Practice dir: %s", cfg.PracticeDir)
		logging.BootDebug("Catalog override: %q, history enabled: %v", cfg.CatalogPath, cfg.History.Enabled)

		styles = ui.DefaultStyles()
		logger.Debug("Configuration resolved",
			zap.String("practice_dir", cfg.PracticeDir),
			zap.String("catalog", cfg.CatalogPath),
			zap.Bool("history", cfg.History.Enabled))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// loadConfig reads the config file and applies the --dir override.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(practiceDir) != "" {
		c.PracticeDir = practiceDir
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&practiceDir, "dir", "d", "", "Practice directory (default: ~/.local/share/scales)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/scales/config.yaml)")

	// Command flags
	validateCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Re-validate whenever either file changes")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of sessions to show")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
