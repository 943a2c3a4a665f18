package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/ciya"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	cfg := ciya.DefaultTrainConfig()

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the mountain tagger on the balanced splits",
		Example: `  ciya train --output_dir model
  ciya train --output_dir model --learning_rate 0.1 --num_train_epochs 10
  ciya train --output_dir s3://bucket/ciya/model --data-folder s3://bucket/ciya/balanced`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Version = c.version
			slog.Info("Training tagger", "data-folder", cfg.DataDir, "output", cfg.OutputDir)
			start := time.Now()
			result, err := ciya.Train(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start), "run_id", result.Statistics.RunID)
			slog.Info("Model saved", "dir", cfg.OutputDir)
			fmt.Printf("The F1 Score on test data is: %v\n", result.Test.F1)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.OutputDir, "output_dir", "", "Folder receiving model.json, statistics.json and tokenizer.json")
	cmd.Flags().Float64Var(&cfg.Trainer.LearningRate, "learning_rate", cfg.Trainer.LearningRate, "SGD learning rate")
	cmd.Flags().IntVar(&cfg.Trainer.Epochs, "num_train_epochs", cfg.Trainer.Epochs, "Number of passes over the train split")
	cmd.Flags().StringVar(&cfg.DataDir, "data-folder", cfg.DataDir, "Folder with the balanced splits")
	cmd.Flags().StringVar(&cfg.TokenizerPath, "tokenizer", cfg.TokenizerPath, "Path to tokenizer.json")
	cmd.Flags().IntVar(&cfg.Trainer.BatchSize, "batch-size", cfg.Trainer.BatchSize, "Rows per gradient step")
	cmd.Flags().Float64Var(&cfg.Trainer.WeightDecay, "weight-decay", cfg.Trainer.WeightDecay, "Decoupled weight decay per step")
	cmd.Flags().IntVar(&cfg.Trainer.Patience, "patience", cfg.Trainer.Patience, "Stop after this many epochs without validation F1 gain (0 disables)")
	cmd.Flags().Uint64Var(&cfg.Trainer.Seed, "seed", cfg.Trainer.Seed, "Seed for batch shuffling")
	_ = cmd.MarkFlagRequired("output_dir")
	return cmd
}
