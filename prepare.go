package ciya

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/ciya/corpus"
	"github.com/happyhackingspace/ciya/internal/storage"
)

// DefaultTarget is the Few-NERD fine tag of location-mountain.
const DefaultTarget = 24

// SplitConfig sets how one split is balanced.
type SplitConfig struct {
	// Positives is the expected number of rows containing the target. It is
	// only checked; every positive row is kept.
	Positives int `yaml:"positives"`
	// Additional is the number of negative rows sampled.
	Additional int `yaml:"additional"`
	// Source overrides the source file of the split.
	Source string `yaml:"source,omitempty"`
}

// PrepareConfig holds configuration for building the balanced splits.
type PrepareConfig struct {
	SourceDir    string                 `yaml:"source_dir"`
	SourceFormat string                 `yaml:"source_format"` // parquet, jsonl or csv
	OutputDir    string                 `yaml:"output_dir"`
	TagColumn    string                 `yaml:"tag_column"`
	Target       int                    `yaml:"target"`
	Seed         uint64                 `yaml:"seed"`
	Splits       map[string]SplitConfig `yaml:"splits"`
}

// DefaultPrepareConfig returns the configuration of the published splits:
// 2000 train, 300 validation and 550 test rows.
func DefaultPrepareConfig() PrepareConfig {
	return PrepareConfig{
		SourceDir:    "data/few-nerd",
		SourceFormat: "parquet",
		OutputDir:    "data/balanced",
		TagColumn:    storage.ColumnFineTags,
		Target:       DefaultTarget,
		Seed:         corpus.DefaultSeed,
		Splits: map[string]SplitConfig{
			corpus.Train:      {Positives: 1502, Additional: 498},
			corpus.Validation: {Positives: 218, Additional: 82},
			corpus.Test:       {Positives: 448, Additional: 102},
		},
	}
}

// LoadPrepareConfig reads a YAML file over the defaults. A split listed in
// the file replaces the default entry for that split.
func LoadPrepareConfig(ctx context.Context, path string) (PrepareConfig, error) {
	cfg := DefaultPrepareConfig()
	data, err := storage.ReadFile(ctx, path)
	if err != nil {
		return cfg, fmt.Errorf("ciya: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("ciya: parse %s: %w", path, err)
	}
	return cfg, nil
}

// SourcePath returns the source file of split.
func (c PrepareConfig) SourcePath(split string) string {
	if sc, ok := c.Splits[split]; ok && sc.Source != "" {
		return sc.Source
	}
	return storage.JoinPath(c.SourceDir, split+"."+c.SourceFormat)
}

// SplitSummary describes one prepared split.
type SplitSummary struct {
	Source    string
	Rows      int      // source rows
	Positives int      // source rows containing the target
	Balanced  int      // rows written
	Words     []string // distinct words tagged with the target
}

// PrepareResult holds the per-split summaries of Prepare.
type PrepareResult struct {
	Splits map[string]SplitSummary
}

// Prepare balances and binarizes every configured split and writes them to
// cfg.OutputDir. Each split draws from its own generator seeded with cfg.Seed.
func Prepare(ctx context.Context, cfg PrepareConfig) (*PrepareResult, error) {
	opts := storage.SourceOptions{TagColumn: cfg.TagColumn}
	result := &PrepareResult{Splits: make(map[string]SplitSummary, len(cfg.Splits))}
	out := make(map[string][]corpus.Row, len(cfg.Splits))

	for _, split := range corpus.Splits {
		sc, ok := cfg.Splits[split]
		if !ok {
			continue
		}
		src := cfg.SourcePath(split)
		rows, err := storage.ReadSource(ctx, src, opts)
		if err != nil {
			return nil, fmt.Errorf("ciya: %w", err)
		}

		st := corpus.CountTarget(rows, cfg.Target)
		slog.Info("Loaded source split", "split", split, "rows", st.Total, "positives", st.Rows, "target_tokens", st.Tokens, "distinct_words", len(st.Words))
		if sc.Positives > 0 && st.Rows != sc.Positives {
			slog.Warn("Positive row count differs from configuration", "split", split, "expected", sc.Positives, "found", st.Rows)
		}

		balanced, err := corpus.Balance(rows, cfg.Target, sc.Additional, corpus.NewRand(cfg.Seed))
		if err != nil {
			var insufficient *corpus.InsufficientDataError
			if errors.As(err, &insufficient) {
				insufficient.Split = split
			}
			return nil, fmt.Errorf("ciya: %w", err)
		}
		binary, err := corpus.Binarize(balanced, cfg.Target)
		if err != nil {
			return nil, fmt.Errorf("ciya: %w", err)
		}

		out[split] = binary
		result.Splits[split] = SplitSummary{
			Source:    src,
			Rows:      st.Total,
			Positives: st.Rows,
			Balanced:  len(binary),
			Words:     st.Words,
		}
		slog.Debug("Balanced split", "split", split, "rows", len(binary))
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("ciya: no splits configured")
	}
	if err := storage.NewStorage(cfg.OutputDir).WriteSplits(ctx, out); err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	return result, nil
}
