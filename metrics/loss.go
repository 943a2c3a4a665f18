package metrics

import (
	"math"

	"github.com/happyhackingspace/ciya/align"
	"github.com/happyhackingspace/ciya/corpus"
)

// Loss is the result of WeightedCrossEntropy for one batch.
type Loss struct {
	Value float64
	// Grad has the shape of the logits: d(Value)/d(logit) per position.
	// Ignored positions have zero gradient.
	Grad [][][]float64
	// Tokens is the number of positions that contributed.
	Tokens int
}

// WeightedCrossEntropy computes the class-weighted mean cross-entropy over a
// batch of [seq][pos][class] logits. Positions labelled IgnoreLabel add
// nothing to the sum nor to the normalizer, which is the sum of the weights of
// the counted positions. A batch without counted positions has zero loss.
func WeightedCrossEntropy(logits [][][]float64, labels [][]int, w Weights) (Loss, error) {
	if len(logits) != len(labels) {
		return Loss{}, corpus.IntegrityError(-1, "", "%d logit sequences but %d label sequences", len(logits), len(labels))
	}

	grad := make([][][]float64, len(logits))
	var sum, norm float64
	tokens := 0
	for i, seq := range logits {
		if len(seq) != len(labels[i]) {
			return Loss{}, corpus.IntegrityError(i, "", "%d logits but %d labels", len(seq), len(labels[i]))
		}
		grad[i] = make([][]float64, len(seq))
		for j, z := range seq {
			grad[i][j] = make([]float64, len(z))
			y := labels[i][j]
			if y == align.IgnoreLabel {
				continue
			}
			if y != corpus.Other && y != corpus.Entity {
				return Loss{}, corpus.IntegrityError(i, "", "label %d at position %d out of range", y, j)
			}
			if len(z) != NumClasses {
				return Loss{}, corpus.IntegrityError(i, "", "position %d has %d logits, want %d", j, len(z), NumClasses)
			}
			probs := Softmax(z)
			sum -= w[y] * math.Log(max(probs[y], math.SmallestNonzeroFloat64))
			norm += w[y]
			tokens++
			for c := range z {
				indicator := 0.0
				if c == y {
					indicator = 1.0
				}
				grad[i][j][c] = w[y] * (probs[c] - indicator)
			}
		}
	}

	if norm == 0 {
		return Loss{Grad: grad}, nil
	}
	for i := range grad {
		for j := range grad[i] {
			for c := range grad[i][j] {
				grad[i][j][c] /= norm
			}
		}
	}
	return Loss{Value: sum / norm, Grad: grad, Tokens: tokens}, nil
}

// Softmax returns the normalized exponentials of logits.
func Softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// ArgMax returns the index of the largest logit, preferring the lower index
// on ties.
func ArgMax(logits []float64) int {
	best := 0
	for i, l := range logits {
		if l > logits[best] {
			best = i
		}
	}
	return best
}

// Predict returns the arg-max class of every position.
func Predict(logits [][][]float64) [][]int {
	out := make([][]int, len(logits))
	for i, seq := range logits {
		out[i] = make([]int, len(seq))
		for j, z := range seq {
			out[i][j] = ArgMax(z)
		}
	}
	return out
}
