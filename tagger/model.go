// Package tagger is a token-level two-class log-linear model over sub-word
// features, trained with weighted cross-entropy.
package tagger

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/happyhackingspace/ciya/internal/storage"
	"github.com/happyhackingspace/ciya/internal/vectorizer"
	"github.com/happyhackingspace/ciya/metrics"
	"github.com/happyhackingspace/ciya/tokenizer"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileName is the conventional name of a saved model.
const FileName = "model.json"

// Labels are the model's output labels, in class order.
var Labels = []string{"LABEL_0", "LABEL_1"}

// Model holds the weights of the tagger.
type Model struct {
	Labels     []string                   `json:"labels"`
	Coef       [][]float64                `json:"coef"`      // [numClasses][numFeatures]
	Intercept  []float64                  `json:"intercept"` // [numClasses]
	Vectorizer *vectorizer.DictVectorizer `json:"vectorizer"`
}

// NewModel returns a zero-initialized model over the vectorizer's features.
func NewModel(vec *vectorizer.DictVectorizer) *Model {
	m := &Model{
		Labels:     append([]string(nil), Labels...),
		Coef:       make([][]float64, metrics.NumClasses),
		Intercept:  make([]float64, metrics.NumClasses),
		Vectorizer: vec,
	}
	for c := range m.Coef {
		m.Coef[c] = make([]float64, vec.VocabSize())
	}
	return m
}

// Logits returns per-token logits [T][numClasses].
func (m *Model) Logits(xs []vectorizer.SparseVector) [][]float64 {
	out := make([][]float64, len(xs))
	for t, x := range xs {
		out[t] = make([]float64, len(m.Coef))
		for c := range m.Coef {
			out[t][c] = x.Dot(m.Coef[c]) + m.Intercept[c]
		}
	}
	return out
}

// Backward applies one SGD step given d(loss)/d(logits) for xs.
func (m *Model) Backward(xs []vectorizer.SparseVector, grad [][]float64, lr float64) {
	for t, x := range xs {
		for c := range m.Coef {
			g := grad[t][c]
			if g == 0 {
				continue
			}
			x.AddTo(m.Coef[c], -lr*g)
			m.Intercept[c] -= lr * g
		}
	}
}

// Decay shrinks every coefficient by lr*wd. Intercepts are not decayed.
func (m *Model) Decay(lr, wd float64) {
	if wd == 0 {
		return
	}
	scale := 1 - lr*wd
	for c := range m.Coef {
		for i := range m.Coef[c] {
			m.Coef[c][i] *= scale
		}
	}
}

// Predict returns the arg-max class of every token of enc.
func (m *Model) Predict(enc tokenizer.Encoding) []int {
	logits := m.Logits(m.Featurize(enc))
	out := make([]int, len(logits))
	for t, l := range logits {
		out[t] = metrics.ArgMax(l)
	}
	return out
}

// Validate checks that the weights match the vocabulary and the label set.
func (m *Model) Validate() error {
	if m.Vectorizer == nil {
		return fmt.Errorf("model has no vectorizer")
	}
	if len(m.Labels) != metrics.NumClasses || len(m.Coef) != metrics.NumClasses || len(m.Intercept) != metrics.NumClasses {
		return fmt.Errorf("model has %d labels, %d weight rows and %d intercepts, want %d", len(m.Labels), len(m.Coef), len(m.Intercept), metrics.NumClasses)
	}
	dim := m.Vectorizer.VocabSize()
	for c, row := range m.Coef {
		if len(row) != dim {
			return fmt.Errorf("weight row %d has %d entries for %d features", c, len(row), dim)
		}
	}
	return nil
}

// SaveModel serializes the model to JSON at path.
func SaveModel(ctx context.Context, model *Model, path string) error {
	data, err := json.Marshal(model)
	if err != nil {
		return err
	}
	return storage.WriteFile(ctx, path, data)
}

// LoadModel deserializes a model from JSON at path.
func LoadModel(ctx context.Context, path string) (*Model, error) {
	data, err := storage.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return &model, nil
}
