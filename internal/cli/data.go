package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/ciya/internal/hfdata"
	"github.com/happyhackingspace/ciya/internal/storage"
)

func (c *CLI) newDataCommand() *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Manage source data (download via Hugging Face)",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	var dataFolder, cacheDir string
	var skipTokenizer bool
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download the Few-NERD splits and the BERT tokenizer from Hugging Face",
		Example: `  ciya data download
  ciya data download --data-folder data
  HF_TOKEN=hf_xxx ciya data download`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := hfdata.Downloader{AuthToken: os.Getenv("HF_TOKEN"), CacheDir: cacheDir}
			files, err := d.DatasetSplits(cmd.Context(), storage.JoinPath(dataFolder, "few-nerd"))
			if err != nil {
				return err
			}
			slog.Info("Dataset downloaded", "files", len(files), "folder", dataFolder)
			if skipTokenizer {
				return nil
			}
			path, err := d.Tokenizer(cmd.Context(), storage.JoinPath(dataFolder, "tokenizer"))
			if err != nil {
				return err
			}
			slog.Info("Tokenizer downloaded", "path", path)
			return nil
		},
	}
	downloadCmd.Flags().StringVar(&dataFolder, "data-folder", "data", "Destination folder")
	downloadCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Hugging Face cache folder (default: hub default)")
	downloadCmd.Flags().BoolVar(&skipTokenizer, "skip-tokenizer", false, "Only download the dataset splits")

	dataCmd.AddCommand(downloadCmd)
	return dataCmd
}
