package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/ciya"
	"github.com/happyhackingspace/ciya/corpus"
	"github.com/happyhackingspace/ciya/metrics"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var cfg ciya.EvalConfig

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a trained model on one of the balanced splits",
		Example: `  ciya evaluate --model model
  ciya evaluate --model model --split validation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.ModelDir == "" {
				dir, err := ciya.FindModelDir()
				if err != nil {
					return err
				}
				cfg.ModelDir = dir
			}
			slog.Info("Evaluating", "model", cfg.ModelDir, "data-folder", cfg.DataDir, "split", cfg.Split)
			start := time.Now()
			result, err := ciya.Evaluate(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			fmt.Printf("Mountain precision: %.1f%%\n", result.Precision*100)
			fmt.Printf("Mountain recall:    %.1f%%\n", result.Recall*100)
			fmt.Printf("Mountain F1:        %.1f%%\n", result.F1*100)
			fmt.Printf("Token accuracy:     %.1f%% (%d/%d)\n", result.Accuracy*100, result.Correct, result.Total)
			printConfusionMatrix(result.Confusion, []string{ciya.CategoryOther, ciya.CategoryMountain})
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.ModelDir, "model", "", "Model folder (default: auto-detect ./model)")
	cmd.Flags().StringVar(&cfg.DataDir, "data-folder", "data/balanced", "Folder with the balanced splits")
	cmd.Flags().StringVar(&cfg.Split, "split", corpus.Test, "Split to score: train, validation or test")
	return cmd
}

func printConfusionMatrix(confusion [metrics.NumClasses][metrics.NumClasses]int, classes []string) {
	fmt.Printf("\nConfusion matrix (rows=true, cols=predicted):\n")
	fmt.Printf("%10s", "")
	for _, c := range classes {
		fmt.Printf(" %8s", c)
	}
	fmt.Printf("    total  acc%%\n")

	for t, trueClass := range classes {
		fmt.Printf("%10s", trueClass)
		total := 0
		for p := range classes {
			count := confusion[t][p]
			total += count
			if count == 0 {
				fmt.Printf(" %8s", ".")
			} else {
				fmt.Printf(" %8d", count)
			}
		}
		acc := 0.0
		if total > 0 {
			acc = float64(confusion[t][t]) / float64(total) * 100
		}
		fmt.Printf(" %8d %5.1f\n", total, acc)
	}
}
