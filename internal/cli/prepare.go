package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/ciya"
	"github.com/happyhackingspace/ciya/corpus"
)

func (c *CLI) newPrepareCommand() *cobra.Command {
	var configPath string
	cfg := ciya.DefaultPrepareConfig()

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Build balanced binary train/validation/test splits from Few-NERD",
		Example: `  ciya prepare
  ciya prepare --source-dir data/few-nerd --output-dir data/balanced
  ciya prepare --config prepare.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				loaded, err := ciya.LoadPrepareConfig(cmd.Context(), configPath)
				if err != nil {
					return err
				}
				// explicit flags win over the file
				flags := cmd.Flags()
				for name, apply := range map[string]func(){
					"source-dir":    func() { loaded.SourceDir = cfg.SourceDir },
					"source-format": func() { loaded.SourceFormat = cfg.SourceFormat },
					"output-dir":    func() { loaded.OutputDir = cfg.OutputDir },
					"tag-column":    func() { loaded.TagColumn = cfg.TagColumn },
					"target":        func() { loaded.Target = cfg.Target },
					"seed":          func() { loaded.Seed = cfg.Seed },
				} {
					if flags.Changed(name) {
						apply()
					}
				}
				cfg = loaded
			}

			slog.Info("Preparing splits", "source", cfg.SourceDir, "output", cfg.OutputDir, "target", cfg.Target, "seed", cfg.Seed)
			start := time.Now()
			result, err := ciya.Prepare(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			slog.Debug("Preparation completed", "duration", time.Since(start))

			for _, split := range corpus.Splits {
				s, ok := result.Splits[split]
				if !ok {
					continue
				}
				fmt.Printf("%-10s %6d source rows, %5d with target, %5d written (%d distinct target words)\n",
					split, s.Rows, s.Positives, s.Balanced, len(s.Words))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding the default configuration")
	cmd.Flags().StringVar(&cfg.SourceDir, "source-dir", cfg.SourceDir, "Folder holding <split>.<format> source files")
	cmd.Flags().StringVar(&cfg.SourceFormat, "source-format", cfg.SourceFormat, "Source file format: parquet, jsonl or csv")
	cmd.Flags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Destination folder (local or s3://)")
	cmd.Flags().StringVar(&cfg.TagColumn, "tag-column", cfg.TagColumn, "Source tag column: fine_ner_tags or ner_tags")
	cmd.Flags().IntVar(&cfg.Target, "target", cfg.Target, "Tag id of the entity to keep")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Seed for sampling and shuffling")
	return cmd
}
