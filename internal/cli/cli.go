// Package cli implements the ciya command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/ciya/internal/banner"
)

// levelSilent is above every level slog emits.
const levelSilent = slog.Level(100)

// CLI holds the root command and the global flags shared by subcommands.
type CLI struct {
	version string
	verbose bool
	silent  bool
	ready   bool
	rootCmd *cobra.Command
}

// New builds the command tree for the given version string.
func New(version string) *CLI {
	c := &CLI{version: version}
	c.rootCmd = &cobra.Command{
		Use:           "ciya",
		Short:         "Mountain name recognition in free text",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.setup(cmd.ErrOrStderr())
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	flags := c.rootCmd.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose/debug output")
	flags.BoolVarP(&c.silent, "silent", "s", false, "Suppress all logging and banner")

	help := c.rootCmd.HelpFunc()
	c.rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		c.setup(cmd.ErrOrStderr())
		help(cmd, args)
	})

	c.rootCmd.AddCommand(
		c.newPrepareCommand(),
		c.newTrainCommand(),
		c.newEvaluateCommand(),
		c.newRunCommand(),
		c.newDataCommand(),
		c.newUpCommand(),
	)
	return c
}

// Run executes the command line until completion or interrupt.
func (c *CLI) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := c.rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		return err
	}
	return nil
}

// setup installs the default logger and prints the banner once.
func (c *CLI) setup(w io.Writer) {
	if c.ready {
		return
	}
	c.ready = true

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.level()})))
	if c.silent {
		return
	}
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		fmt.Fprint(w, banner.Banner(c.version))
		return
	}
	fmt.Fprint(w, banner.Plain(c.version))
}

func (c *CLI) level() slog.Level {
	switch {
	case c.silent:
		return levelSilent
	case c.verbose:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
