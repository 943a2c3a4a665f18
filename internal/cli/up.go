package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/ciya"
)

const repoSlug = "happyhackingspace/ciya"

func (c *CLI) newUpCommand() *cobra.Command {
	var check bool
	var modelDir string

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Self-update to the latest release and report the local model",
		Example: `  ciya up
  ciya up --check
  ciya up --model custom-model`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.selfUpdate(cmd.Context(), check); err != nil {
				return err
			}
			reportModel(cmd.Context(), cmd.OutOrStdout(), modelDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether a newer release exists")
	cmd.Flags().StringVar(&modelDir, "model", "", "Model folder to report on (default: auto-detect ./model)")
	return cmd
}

func (c *CLI) selfUpdate(ctx context.Context, check bool) error {
	current := c.version
	if current == "dev" {
		current = "0.0.0"
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return err
	}
	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release of %s found", repoSlug)
	}

	switch {
	case latest.LessOrEqual(current):
		fmt.Printf("ciya %s is up to date\n", c.version)
		return nil
	case check:
		fmt.Printf("ciya %s is available (running %s)\n", latest.Version(), c.version)
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}
	slog.Info("Updating", "from", c.version, "to", latest.Version(), "binary", exe)
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	fmt.Printf("Updated ciya to %s\n", latest.Version())
	return nil
}

// reportModel prints which build trained the local model, so a user can tell
// whether it predates the binary. A missing model is not an error.
func reportModel(ctx context.Context, w io.Writer, dir string) {
	if dir == "" {
		found, err := ciya.FindModelDir()
		if err != nil {
			slog.Debug("No local model", "error", err)
			return
		}
		dir = found
	}
	stats, err := ciya.ReadStatistics(ctx, dir)
	if err != nil {
		slog.Debug("No training statistics", "dir", dir, "error", err)
		return
	}
	version := stats.Version
	if version == "" {
		version = "unknown"
	}
	f1 := "n/a"
	if stats.Test != nil {
		f1 = fmt.Sprintf("%.3f", stats.Test.F1)
	}
	fmt.Fprintf(w, "Model %s: trained by ciya %s (run %s, test F1 %s)\n", dir, version, stats.RunID, f1)
}
