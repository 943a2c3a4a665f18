// Package corpus holds word-tagged corpus rows and the transformations that
// turn a raw multi-class corpus into a balanced, binary-tagged one.
package corpus

import "slices"

// Split names, also used as file names by the persistence layer.
const (
	Train      = "train"
	Validation = "validation"
	Test       = "test"
)

// Splits lists the split names in load order.
var Splits = []string{Train, Validation, Test}

// Binary tag values.
const (
	Other  = 0
	Entity = 1
)

// Row is one sentence: its word tokens, one tag per token, and any
// pass-through columns of the source corpus.
type Row struct {
	ID     string
	Tokens []string
	Tags   []int
	Meta   map[string]string
}

// HasTag reports whether tag occurs anywhere in the row.
func (r Row) HasTag(tag int) bool {
	return slices.Contains(r.Tags, tag)
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	out := Row{
		ID:     r.ID,
		Tokens: slices.Clone(r.Tokens),
		Tags:   slices.Clone(r.Tags),
	}
	if r.Meta != nil {
		out.Meta = make(map[string]string, len(r.Meta))
		for k, v := range r.Meta {
			out.Meta[k] = v
		}
	}
	return out
}

// Validate checks the token/tag length invariant.
func (r Row) Validate(index int) error {
	if len(r.Tokens) != len(r.Tags) {
		return integrityf(index, r.ID, "%d tokens but %d tags", len(r.Tokens), len(r.Tags))
	}
	return nil
}
