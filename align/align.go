// Package align projects word-level labels onto a sub-word segmentation.
package align

import (
	"github.com/happyhackingspace/ciya/corpus"
	"github.com/happyhackingspace/ciya/tokenizer"
)

// IgnoreLabel marks positions excluded from loss and metrics.
const IgnoreLabel = -100

// Sample is a sub-word sequence with one label per token.
type Sample struct {
	InputIDs []int
	WordIDs  []int
	Labels   []int
}

// Len returns the number of sub-word tokens.
func (s Sample) Len() int {
	return len(s.InputIDs)
}

// Align labels every sub-word of enc with tags[word id], so continuation
// pieces repeat the label of the word's first piece and a word with no pieces
// shifts nothing. Tokens that belong to no word get IgnoreLabel. Errors are
// *corpus.DataIntegrityError with Row set to -1.
func Align(tags []int, enc tokenizer.Encoding) (Sample, error) {
	n := enc.Len()
	if len(enc.WordIDs) != n {
		return Sample{}, corpus.IntegrityError(-1, "", "%d input ids but %d word ids", n, len(enc.WordIDs))
	}
	for i, tag := range tags {
		if tag != corpus.Other && tag != corpus.Entity {
			return Sample{}, corpus.IntegrityError(-1, "", "tag %d at word %d is not binary", tag, i)
		}
	}

	labels := make([]int, n)
	for i, wid := range enc.WordIDs {
		if wid == tokenizer.NoWord || enc.IsSpecial(i) {
			labels[i] = IgnoreLabel
			continue
		}
		// word ids index tags directly; a word that yields no sub-words leaves a gap
		if wid < 0 || wid >= len(tags) {
			return Sample{}, corpus.IntegrityError(-1, "", "sub-word %d belongs to word %d but there are %d tags", i, wid, len(tags))
		}
		labels[i] = tags[wid]
	}

	s := Sample{
		InputIDs: make([]int, n),
		WordIDs:  make([]int, n),
		Labels:   labels,
	}
	copy(s.InputIDs, enc.IDs)
	copy(s.WordIDs, enc.WordIDs)
	return s, nil
}

// Batch tokenizes rows with tk and aligns each of them. Integrity errors carry
// the row's position in rows.
func Batch(tk tokenizer.Tokenizer, rows []corpus.Row) ([]Sample, []tokenizer.Encoding, error) {
	words := make([][]string, len(rows))
	for i, r := range rows {
		if err := r.Validate(i); err != nil {
			return nil, nil, err
		}
		words[i] = r.Tokens
	}
	encs, err := tk.EncodeWords(words)
	if err != nil {
		return nil, nil, err
	}
	if len(encs) != len(rows) {
		return nil, nil, corpus.IntegrityError(-1, "", "tokenizer returned %d encodings for %d rows", len(encs), len(rows))
	}

	samples := make([]Sample, len(rows))
	for i, r := range rows {
		s, err := Align(r.Tags, encs[i])
		if err != nil {
			if ie, ok := err.(*corpus.DataIntegrityError); ok {
				ie.Row, ie.ID = i, r.ID
			}
			return nil, nil, err
		}
		samples[i] = s
	}
	return samples, encs, nil
}
