// Package hfdata fetches the Few-NERD splits and the base tokenizer from the
// Hugging Face hub.
package hfdata

import (
	"context"
	"log/slog"
	"net/url"
	"path"

	"github.com/gomlx/go-huggingface/hub"
	"github.com/pkg/errors"

	"github.com/happyhackingspace/ciya/corpus"
	"github.com/happyhackingspace/ciya/internal/storage"
	"github.com/happyhackingspace/ciya/tokenizer"
)

const (
	// DatasetRepo is the Few-NERD dataset on the hub.
	DatasetRepo = "DFKI-SLT/few-nerd"
	// DatasetConfig is the Few-NERD configuration with fine types per token.
	DatasetConfig = "supervised"
	// ParquetRevision is the hub branch holding the parquet export of a dataset.
	ParquetRevision = "refs/convert/parquet"
	// TokenizerRepo is the model whose tokenizer the tagger is trained with.
	TokenizerRepo = "dslim/bert-large-NER"
)

// Downloader fetches files from the hub into a local cache and copies them to
// their destination.
type Downloader struct {
	AuthToken string // HF_TOKEN, optional for public repos
	CacheDir  string // hub cache, "" for the default
}

func (d Downloader) repo(id string) *hub.Repo {
	r := hub.New(id).WithAuth(d.AuthToken)
	if d.CacheDir != "" {
		r = r.WithCacheDir(d.CacheDir)
	}
	return r
}

// ShardName returns the parquet file of split in the hub export.
func ShardName(split string) string {
	return path.Join(DatasetConfig, split, "0000.parquet")
}

// DatasetSplits downloads the three splits to dest/<split>.parquet and
// returns the written paths.
func (d Downloader) DatasetSplits(ctx context.Context, dest string) ([]string, error) {
	repo := d.repo(DatasetRepo).WithType(hub.RepoTypeDataset).WithRevision(url.PathEscape(ParquetRevision))
	var out []string
	for _, split := range corpus.Splits {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		name := ShardName(split)
		slog.Info("Downloading split", "repo", DatasetRepo, "file", name)
		local, err := repo.DownloadFile(name)
		if err != nil {
			return out, errors.Wrapf(err, "downloading %s from %s", name, DatasetRepo)
		}
		target := storage.JoinPath(dest, split+".parquet")
		if err := storage.CopyFile(ctx, local, target); err != nil {
			return out, errors.Wrapf(err, "copying %q to %q", local, target)
		}
		out = append(out, target)
	}
	return out, nil
}

// Tokenizer downloads tokenizer.json of TokenizerRepo into dest.
func (d Downloader) Tokenizer(ctx context.Context, dest string) (string, error) {
	slog.Info("Downloading tokenizer", "repo", TokenizerRepo)
	local, err := d.repo(TokenizerRepo).DownloadFile(tokenizer.FileName)
	if err != nil {
		return "", errors.Wrapf(err, "downloading %s from %s", tokenizer.FileName, TokenizerRepo)
	}
	target := storage.JoinPath(dest, tokenizer.FileName)
	if err := storage.CopyFile(ctx, local, target); err != nil {
		return "", errors.Wrapf(err, "copying %q to %q", local, target)
	}
	return target, nil
}
