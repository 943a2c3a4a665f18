package ciya

import (
	"context"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/happyhackingspace/ciya/corpus"
	"github.com/happyhackingspace/ciya/internal/storage"
	"github.com/happyhackingspace/ciya/metrics"
	"github.com/happyhackingspace/ciya/tagger"
	"github.com/happyhackingspace/ciya/tokenizer"
)

// StatisticsFileName is written next to the model by Train.
const StatisticsFileName = "statistics.json"

// TrainConfig holds configuration for training.
type TrainConfig struct {
	DataDir       string // folder with the balanced splits
	OutputDir     string
	TokenizerPath string // tokenizer.json, copied into OutputDir
	// Tokenizer overrides TokenizerPath when set. Nothing is copied then.
	Tokenizer tokenizer.Tokenizer
	Trainer   tagger.TrainerConfig
	Version   string // recorded in statistics.json
}

// DefaultTrainConfig returns the default training configuration.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		DataDir:       "data/balanced",
		OutputDir:     DefaultModelDir,
		TokenizerPath: "data/tokenizer/" + tokenizer.FileName,
		Trainer:       tagger.DefaultTrainerConfig(),
	}
}

// TrainResult holds the trained model and its run statistics.
type TrainResult struct {
	Model      *tagger.Model
	Statistics *tagger.Statistics
	Test       metrics.Result
}

// Train fits a model on the train split, evaluates every epoch on the
// validation split and finally on the test split, then saves model.json,
// statistics.json and the tokenizer to cfg.OutputDir.
func Train(ctx context.Context, cfg TrainConfig) (*TrainResult, error) {
	tk, err := cfg.tokenizer(ctx)
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	splits, err := storage.NewStorage(cfg.DataDir).ReadSplits(ctx)
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	for _, split := range corpus.Splits {
		if err := corpus.ValidateBinary(splits[split]); err != nil {
			return nil, fmt.Errorf("ciya: %s: %w", split, err)
		}
	}
	slog.Info("Training", "train", len(splits[corpus.Train]), "validation", len(splits[corpus.Validation]), "test", len(splits[corpus.Test]), "epochs", cfg.Trainer.Epochs, "learning_rate", cfg.Trainer.LearningRate)

	trainer := tagger.NewTrainer(tk, cfg.Trainer)
	model, stats, err := trainer.Train(ctx, splits[corpus.Train], splits[corpus.Validation])
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}

	test, err := trainer.Evaluate(model, splits[corpus.Test])
	if err != nil {
		return nil, fmt.Errorf("ciya: test: %w", err)
	}
	stats.Test = &test
	stats.Version = cfg.Version
	slog.Info("Test evaluation", "precision", test.Precision, "recall", test.Recall, "f1", test.F1, "accuracy", test.Accuracy)

	if err := save(ctx, cfg, model, stats); err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	return &TrainResult{Model: model, Statistics: stats, Test: test}, nil
}

func (cfg TrainConfig) tokenizer(ctx context.Context) (tokenizer.Tokenizer, error) {
	if cfg.Tokenizer != nil {
		return cfg.Tokenizer, nil
	}
	return tokenizer.Load(ctx, cfg.TokenizerPath)
}

func save(ctx context.Context, cfg TrainConfig, model *tagger.Model, stats *tagger.Statistics) error {
	if err := tagger.SaveModel(ctx, model, storage.JoinPath(cfg.OutputDir, tagger.FileName)); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	if err := storage.WriteFile(ctx, storage.JoinPath(cfg.OutputDir, StatisticsFileName), data); err != nil {
		return fmt.Errorf("save statistics: %w", err)
	}
	if cfg.Tokenizer == nil {
		if err := storage.CopyFile(ctx, cfg.TokenizerPath, storage.JoinPath(cfg.OutputDir, tokenizer.FileName)); err != nil {
			return fmt.Errorf("copy tokenizer: %w", err)
		}
	}
	slog.Debug("Saved model", "dir", cfg.OutputDir, "run_id", stats.RunID)
	return nil
}

// ReadStatistics loads the statistics.json written next to a model by Train.
func ReadStatistics(ctx context.Context, modelDir string) (*tagger.Statistics, error) {
	data, err := storage.ReadFile(ctx, storage.JoinPath(modelDir, StatisticsFileName))
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	var stats tagger.Statistics
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("ciya: parse %s: %w", StatisticsFileName, err)
	}
	return &stats, nil
}

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	ModelDir string
	DataDir  string
	Split    string
	// Tokenizer overrides the tokenizer.json of ModelDir when set.
	Tokenizer tokenizer.Tokenizer
}

// Evaluate scores a saved model on one balanced split.
func Evaluate(ctx context.Context, cfg EvalConfig) (*metrics.Result, error) {
	split := cfg.Split
	if split == "" {
		split = corpus.Test
	}
	model, err := tagger.LoadModel(ctx, storage.JoinPath(cfg.ModelDir, tagger.FileName))
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	tk := cfg.Tokenizer
	if tk == nil {
		if tk, err = tokenizer.Load(ctx, storage.JoinPath(cfg.ModelDir, tokenizer.FileName)); err != nil {
			return nil, fmt.Errorf("ciya: %w", err)
		}
	}
	rows, err := storage.NewStorage(cfg.DataDir).ReadSplit(ctx, split)
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	result, err := tagger.Evaluate(tk, model, rows)
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	return &result, nil
}
