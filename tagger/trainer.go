package tagger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/happyhackingspace/ciya/align"
	"github.com/happyhackingspace/ciya/corpus"
	"github.com/happyhackingspace/ciya/internal/vectorizer"
	"github.com/happyhackingspace/ciya/metrics"
	"github.com/happyhackingspace/ciya/tokenizer"
)

// TrainerConfig holds training hyperparameters.
type TrainerConfig struct {
	LearningRate    float64
	Epochs          int
	BatchSize       int
	WeightDecay     float64 // decoupled, applied once per batch
	Seed            uint64  // batch order shuffle
	MinFeatureCount int     // features seen fewer times are dropped
	Patience        int     // epochs without F1 gain before stopping, 0 disables
	Tolerance       float64 // minimum F1 gain that resets patience
}

// DefaultTrainerConfig returns the default training config.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		LearningRate:    0.05,
		Epochs:          5,
		BatchSize:       16,
		WeightDecay:     0.01,
		Seed:            corpus.DefaultSeed,
		MinFeatureCount: 1,
	}
}

// EpochStats records one training epoch.
type EpochStats struct {
	Epoch     int             `json:"epoch"`
	TrainLoss float64         `json:"train_loss"`
	Eval      *metrics.Result `json:"eval,omitempty"`
	Duration  time.Duration   `json:"duration_ns"`
}

// Statistics summarizes a training run.
type Statistics struct {
	RunID        string                  `json:"run_id"`
	Version      string                  `json:"version,omitempty"` // ciya build that trained the model
	ClassCounts  [metrics.NumClasses]int `json:"class_counts"`
	ClassWeights metrics.Weights         `json:"class_weights"`
	Features     int                     `json:"features"`
	Epochs       []EpochStats            `json:"epochs"`
	BestEpoch    int                     `json:"best_epoch"`
	StoppedEarly bool                    `json:"stopped_early"`
	Test         *metrics.Result         `json:"test,omitempty"`
}

// Trainer fits a Model on binary-tagged rows.
type Trainer struct {
	config TrainerConfig
	tk     tokenizer.Tokenizer
}

// NewTrainer creates a trainer that segments rows with tk.
func NewTrainer(tk tokenizer.Tokenizer, config TrainerConfig) *Trainer {
	return &Trainer{config: config, tk: tk}
}

// dataset is an aligned split with its token features.
type dataset struct {
	samples []align.Sample
	encs    []tokenizer.Encoding
	xs      [][]vectorizer.SparseVector
}

func (d *dataset) labels() [][]int {
	out := make([][]int, len(d.samples))
	for i, s := range d.samples {
		out[i] = s.Labels
	}
	return out
}

func (t *Trainer) align(rows []corpus.Row) (*dataset, error) {
	samples, encs, err := align.Batch(t.tk, rows)
	if err != nil {
		return nil, err
	}
	return &dataset{samples: samples, encs: encs}, nil
}

func (d *dataset) featurize(m *Model) {
	d.xs = make([][]vectorizer.SparseVector, len(d.encs))
	for i, enc := range d.encs {
		d.xs[i] = m.Featurize(enc)
	}
}

// Train fits a model on train, evaluating on validation after every epoch.
// Class weights are computed once from the aligned training labels.
func (t *Trainer) Train(ctx context.Context, train, validation []corpus.Row) (*Model, *Statistics, error) {
	cfg := t.config
	if cfg.BatchSize <= 0 {
		return nil, nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if len(train) == 0 {
		return nil, nil, fmt.Errorf("no training rows")
	}

	trainSet, err := t.align(train)
	if err != nil {
		return nil, nil, fmt.Errorf("align train: %w", err)
	}
	counts, err := metrics.Counts(trainSet.labels())
	if err != nil {
		return nil, nil, err
	}
	weights, err := metrics.WeightsFromCounts(counts)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Class weights", "other", weights[0], "entity", weights[1], "counts", counts)

	dv := vectorizer.NewDictVectorizer(cfg.MinFeatureCount)
	for _, enc := range trainSet.encs {
		for _, f := range TokenFeatures(enc) {
			dv.Observe(f)
		}
	}
	dv.Fit(nil)
	model := NewModel(dv)
	trainSet.featurize(model)
	slog.Debug("Built features", "features", dv.VocabSize(), "rows", len(train))

	var valSet *dataset
	if len(validation) > 0 {
		if valSet, err = t.align(validation); err != nil {
			return nil, nil, fmt.Errorf("align validation: %w", err)
		}
		valSet.featurize(model)
	}

	stats := &Statistics{
		RunID:        uuid.NewString(),
		ClassCounts:  counts,
		ClassWeights: weights,
		Features:     dv.VocabSize(),
	}

	rng := corpus.NewRand(cfg.Seed)
	order := make([]int, len(train))
	for i := range order {
		order[i] = i
	}

	bestF1, wait := -1.0, 0
	var best *Model

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		start := time.Now()
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var lossSum float64
		var batches int
		for lo := 0; lo < len(order); lo += cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			batch := order[lo:min(lo+cfg.BatchSize, len(order))]
			loss, err := t.step(model, trainSet, batch, weights)
			if err != nil {
				return nil, nil, err
			}
			lossSum += loss
			batches++
		}

		es := EpochStats{Epoch: epoch, TrainLoss: lossSum / float64(batches)}
		if valSet != nil {
			r, err := evaluate(model, valSet)
			if err != nil {
				return nil, nil, err
			}
			es.Eval = &r
		}
		es.Duration = time.Since(start)
		stats.Epochs = append(stats.Epochs, es)

		attrs := []any{"epoch", epoch, "loss", es.TrainLoss, "duration", es.Duration}
		if es.Eval != nil {
			attrs = append(attrs, "precision", es.Eval.Precision, "recall", es.Eval.Recall, "f1", es.Eval.F1, "accuracy", es.Eval.Accuracy)
		}
		slog.Info("Epoch done", attrs...)

		if es.Eval == nil || cfg.Patience <= 0 {
			stats.BestEpoch = epoch
			continue
		}
		if es.Eval.F1 > bestF1+cfg.Tolerance {
			bestF1, wait = es.Eval.F1, 0
			best = model.clone()
			stats.BestEpoch = epoch
			continue
		}
		wait++
		if wait >= cfg.Patience {
			slog.Info("Early stopping", "epoch", epoch, "best_epoch", stats.BestEpoch, "best_f1", bestF1)
			stats.StoppedEarly = true
			break
		}
	}

	if best != nil {
		model = best
	}
	return model, stats, nil
}

// step runs forward, loss and backward for one mini-batch and returns its loss.
func (t *Trainer) step(m *Model, d *dataset, batch []int, w metrics.Weights) (float64, error) {
	logits := make([][][]float64, len(batch))
	labels := make([][]int, len(batch))
	for i, idx := range batch {
		logits[i] = m.Logits(d.xs[idx])
		labels[i] = d.samples[idx].Labels
	}
	loss, err := metrics.WeightedCrossEntropy(logits, labels, w)
	if err != nil {
		return 0, err
	}
	for i, idx := range batch {
		m.Backward(d.xs[idx], loss.Grad[i], t.config.LearningRate)
	}
	m.Decay(t.config.LearningRate, t.config.WeightDecay)
	return loss.Value, nil
}

// Evaluate scores m on rows.
func (t *Trainer) Evaluate(m *Model, rows []corpus.Row) (metrics.Result, error) {
	return Evaluate(t.tk, m, rows)
}

// Evaluate aligns rows with tk and scores m's predictions against them.
func Evaluate(tk tokenizer.Tokenizer, m *Model, rows []corpus.Row) (metrics.Result, error) {
	samples, encs, err := align.Batch(tk, rows)
	if err != nil {
		return metrics.Result{}, err
	}
	d := &dataset{samples: samples, encs: encs}
	d.featurize(m)
	return evaluate(m, d)
}

func evaluate(m *Model, d *dataset) (metrics.Result, error) {
	var acc metrics.Accumulator
	for i, x := range d.xs {
		pred := metrics.Predict([][][]float64{m.Logits(x)})
		if err := acc.Add(pred, [][]int{d.samples[i].Labels}); err != nil {
			return metrics.Result{}, err
		}
	}
	return acc.Result(), nil
}

func (m *Model) clone() *Model {
	c := &Model{
		Labels:     slices.Clone(m.Labels),
		Coef:       make([][]float64, len(m.Coef)),
		Intercept:  slices.Clone(m.Intercept),
		Vectorizer: m.Vectorizer,
	}
	for i := range m.Coef {
		c.Coef[i] = slices.Clone(m.Coef[i])
	}
	return c
}
