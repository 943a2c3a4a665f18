// Package metrics computes class weights, the weighted cross-entropy loss and
// minority-class precision, recall and F1 for binary token classification.
package metrics

import (
	"fmt"

	"github.com/happyhackingspace/ciya/align"
	"github.com/happyhackingspace/ciya/corpus"
)

// NumClasses is the size of the binary label space.
const NumClasses = 2

// Weights holds one weight per binary class, indexed by label.
type Weights [NumClasses]float64

// Uniform weights leave the loss unweighted.
var Uniform = Weights{1, 1}

// Counts returns the number of labels per class, skipping IgnoreLabel.
func Counts(labels [][]int) ([NumClasses]int, error) {
	var counts [NumClasses]int
	for i, seq := range labels {
		for j, l := range seq {
			switch l {
			case align.IgnoreLabel:
			case corpus.Other, corpus.Entity:
				counts[l]++
			default:
				return counts, corpus.IntegrityError(i, "", "label %d at position %d out of range", l, j)
			}
		}
	}
	return counts, nil
}

// ClassWeights returns inverse-frequency weights
// total / (NumClasses * count[c]) over all non-ignored labels.
func ClassWeights(labels [][]int) (Weights, error) {
	counts, err := Counts(labels)
	if err != nil {
		return Weights{}, err
	}
	return WeightsFromCounts(counts)
}

// WeightsFromCounts applies inverse-frequency balancing to label counts.
func WeightsFromCounts(counts [NumClasses]int) (Weights, error) {
	total := 0
	for _, c := range counts {
		total += c
	}
	var w Weights
	for c, n := range counts {
		if n == 0 {
			return Weights{}, fmt.Errorf("class %d has no labels, weight undefined", c)
		}
		w[c] = float64(total) / float64(NumClasses*n)
	}
	return w, nil
}
