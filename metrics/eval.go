package metrics

import (
	"github.com/happyhackingspace/ciya/align"
	"github.com/happyhackingspace/ciya/corpus"
)

// Epsilon guards every ratio against a zero denominator.
const Epsilon = 1e-9

// Result holds minority-class metrics and overall token accuracy.
type Result struct {
	Precision float64 `json:"class_1_precision"`
	Recall    float64 `json:"class_1_recall"`
	F1        float64 `json:"class_1_f1"`
	Accuracy  float64 `json:"overall_accuracy"`
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
	// Confusion[true][predicted]
	Confusion [NumClasses][NumClasses]int `json:"confusion"`
}

// Accumulator gathers counts over many batches.
type Accumulator struct {
	tp, fp, fn     int
	correct, total int
	confusion      [NumClasses][NumClasses]int
}

// Add counts a batch of predictions against labels. IgnoreLabel positions are
// dropped before counting.
func (a *Accumulator) Add(preds, labels [][]int) error {
	if len(preds) != len(labels) {
		return corpus.IntegrityError(-1, "", "%d prediction sequences but %d label sequences", len(preds), len(labels))
	}
	// count into a copy so a malformed sequence leaves a untouched
	batch := *a
	for i := range labels {
		if len(preds[i]) != len(labels[i]) {
			return corpus.IntegrityError(i, "", "%d predictions but %d labels", len(preds[i]), len(labels[i]))
		}
		for j, y := range labels[i] {
			if y == align.IgnoreLabel {
				continue
			}
			p := preds[i][j]
			if y != corpus.Other && y != corpus.Entity {
				return corpus.IntegrityError(i, "", "label %d at position %d out of range", y, j)
			}
			if p != corpus.Other && p != corpus.Entity {
				return corpus.IntegrityError(i, "", "prediction %d at position %d out of range", p, j)
			}
			switch {
			case p == corpus.Entity && y == corpus.Entity:
				batch.tp++
			case p == corpus.Entity:
				batch.fp++
			case y == corpus.Entity:
				batch.fn++
			}
			if p == y {
				batch.correct++
			}
			batch.total++
			batch.confusion[y][p]++
		}
	}
	*a = batch
	return nil
}

// Result returns the metrics for everything added so far.
func (a *Accumulator) Result() Result {
	precision := float64(a.tp) / max(float64(a.tp+a.fp), Epsilon)
	recall := float64(a.tp) / max(float64(a.tp+a.fn), Epsilon)
	return Result{
		Precision: precision,
		Recall:    recall,
		F1:        2 * precision * recall / max(precision+recall, Epsilon),
		Accuracy:  float64(a.correct) / max(float64(a.total), Epsilon),
		TP:        a.tp,
		FP:        a.fp,
		FN:        a.fn,
		Correct:   a.correct,
		Total:     a.total,
		Confusion: a.confusion,
	}
}

// Evaluate computes metrics for a single batch.
func Evaluate(preds, labels [][]int) (Result, error) {
	var a Accumulator
	if err := a.Add(preds, labels); err != nil {
		return Result{}, err
	}
	return a.Result(), nil
}
