package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/maltedev/shoplens/internal/app"
	"github.com/maltedev/shoplens/internal/config"
	"github.com/maltedev/shoplens/internal/logger"
)

var (
	noColor    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "shoplensctl",
	Short:         "Inspect and manage shoplens search history, wishlist, alerts and scans",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of tables")
}

// openApp loads configuration and opens the configured storage. Logs go to
// stderr so command output stays clean.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, cliLogger(cfg, os.Stderr))
}

func cliLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.Logging.Level
	if level == "info" {
		level = "warn"
	}
	return logger.NewWithWriter(w, level, "text")
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer a.Close()

	return fn(ctx, a)
}
