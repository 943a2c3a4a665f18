package tagger

import (
	"strings"

	"github.com/happyhackingspace/ciya/internal/textutil"
	"github.com/happyhackingspace/ciya/internal/vectorizer"
	"github.com/happyhackingspace/ciya/tokenizer"
)

const (
	boundary     = "<s>"
	continuation = "##"
)

// TokenFeatures returns the feature dict of every sub-word token of enc.
func TokenFeatures(enc tokenizer.Encoding) []map[string]any {
	out := make([]map[string]any, enc.Len())
	for i := range out {
		out[i] = tokenFeatures(enc, i)
	}
	return out
}

func tokenFeatures(enc tokenizer.Encoding, i int) map[string]any {
	if enc.IsSpecial(i) {
		return map[string]any{"bias": true, "special": enc.Tokens[i]}
	}

	piece := strings.TrimPrefix(enc.Tokens[i], continuation)
	lower := strings.ToLower(piece)
	f := map[string]any{
		"bias":  true,
		"tok":   enc.Tokens[i],
		"lower": lower,
		"shape": textutil.Shape(piece),
		"cont":  enc.IsContinuation(i),
		"prev":  neighbour(enc, i-1),
		"next":  neighbour(enc, i+1),
		"tri":   textutil.Ngrams("<"+lower+">", 3, 3),
	}
	if !enc.IsContinuation(i) && i+1 < enc.Len() && enc.IsContinuation(i+1) {
		f["split"] = true
	}
	if p := textutil.DigitPattern(piece, 0.3); p != "" {
		f["num"] = p
	}
	if i > 0 && !enc.IsSpecial(i-1) {
		f["prev_shape"] = textutil.Shape(strings.TrimPrefix(enc.Tokens[i-1], continuation))
	}
	return f
}

func neighbour(enc tokenizer.Encoding, i int) string {
	if i < 0 || i >= enc.Len() || enc.IsSpecial(i) {
		return boundary
	}
	return strings.ToLower(enc.Tokens[i])
}

// Featurize vectorizes every token of enc with the model's vocabulary.
func (m *Model) Featurize(enc tokenizer.Encoding) []vectorizer.SparseVector {
	feats := TokenFeatures(enc)
	xs := make([]vectorizer.SparseVector, len(feats))
	for i, f := range feats {
		xs[i] = m.Vectorizer.Transform(f)
	}
	return xs
}
