// Package tokenizertest provides a deterministic tokenizer for tests.
package tokenizertest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/happyhackingspace/ciya/tokenizer"
)

// Special token ids.
const (
	ClsID = 101
	SepID = 102
)

// Fake splits every word into pieces of at most PieceLen runes, marks
// continuation pieces with "##" and wraps each sequence in [CLS] ... [SEP].
type Fake struct {
	PieceLen int
	vocab    map[string]int
}

// New returns a Fake with the given piece length.
func New(pieceLen int) *Fake {
	return &Fake{PieceLen: pieceLen, vocab: map[string]int{"[CLS]": ClsID, "[SEP]": SepID}}
}

func (f *Fake) id(piece string) int {
	if id, ok := f.vocab[piece]; ok {
		return id
	}
	id := 1000 + len(f.vocab)
	f.vocab[piece] = id
	return id
}

// EncodeWords implements tokenizer.Tokenizer.
func (f *Fake) EncodeWords(batch [][]string) ([]tokenizer.Encoding, error) {
	out := make([]tokenizer.Encoding, len(batch))
	for i, words := range batch {
		var spans [][2]int
		pos := 0
		for _, w := range words {
			spans = append(spans, [2]int{pos, pos + len(w)})
			pos += len(w) + 1
		}
		out[i] = f.encode(strings.Join(words, " "), words, spans)
	}
	return out, nil
}

// Encode implements tokenizer.Tokenizer, splitting on whitespace and
// punctuation.
func (f *Fake) Encode(text string) (tokenizer.Encoding, error) {
	var words []string
	var spans [][2]int
	start := -1
	flush := func(end int) {
		if start >= 0 {
			words = append(words, text[start:end])
			spans = append(spans, [2]int{start, end})
			start = -1
		}
	}
	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case unicode.IsPunct(r):
			flush(i)
			words = append(words, string(r))
			spans = append(spans, [2]int{i, i + utf8.RuneLen(r)})
		case start < 0:
			start = i
		}
	}
	flush(len(text))
	return f.encode(text, words, spans), nil
}

func (f *Fake) encode(_ string, words []string, spans [][2]int) tokenizer.Encoding {
	var enc tokenizer.Encoding
	push := func(tok string, wid int, span [2]int, special bool) {
		enc.IDs = append(enc.IDs, f.id(tok))
		enc.Tokens = append(enc.Tokens, tok)
		enc.WordIDs = append(enc.WordIDs, wid)
		enc.Offsets = append(enc.Offsets, span)
		enc.Special = append(enc.Special, special)
	}
	push("[CLS]", tokenizer.NoWord, [2]int{}, true)
	for w, word := range words {
		runes := []rune(word)
		offset := spans[w][0]
		for start := 0; start < len(runes); start += f.PieceLen {
			end := min(start+f.PieceLen, len(runes))
			piece := string(runes[start:end])
			tok := piece
			if start > 0 {
				tok = "##" + piece
			}
			push(tok, w, [2]int{offset, offset + len(piece)}, false)
			offset += len(piece)
		}
	}
	push("[SEP]", tokenizer.NoWord, [2]int{}, true)
	return enc
}
