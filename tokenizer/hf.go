package tokenizer

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"github.com/happyhackingspace/ciya/internal/storage"
)

// FileName is the conventional name of a serialized Hugging Face tokenizer.
const FileName = "tokenizer.json"

// HF wraps a Hugging Face tokenizer.json loaded with the pure Go runtime.
type HF struct {
	tk *tokenizer.Tokenizer
}

// Load reads a tokenizer.json from a local path or any URL the storage layer
// understands (e.g. s3://).
func Load(ctx context.Context, path string) (*HF, error) {
	data, err := storage.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading tokenizer %q", path)
	}
	return FromBytes(data)
}

// FromBytes builds a tokenizer from the contents of a tokenizer.json.
func FromBytes(data []byte) (*HF, error) {
	tk, err := pretrained.FromReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing tokenizer.json")
	}
	return &HF{tk: tk}, nil
}

// EncodeWords encodes each row as pre-split words with special tokens added.
func (h *HF) EncodeWords(batch [][]string) ([]Encoding, error) {
	inputs := make([]tokenizer.EncodeInput, len(batch))
	for i, words := range batch {
		inputs[i] = tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(words))
	}
	encs, err := h.tk.EncodeBatch(inputs, true)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding batch of %d rows", len(batch))
	}
	out := make([]Encoding, len(encs))
	for i := range encs {
		out[i] = fromEncoding(&encs[i])
	}
	return out, nil
}

// Encode encodes free text with special tokens added.
func (h *HF) Encode(text string) (Encoding, error) {
	enc, err := h.tk.EncodeSingle(text, true)
	if err != nil {
		return Encoding{}, errors.Wrap(err, "encoding text")
	}
	return fromEncoding(enc), nil
}

func fromEncoding(enc *tokenizer.Encoding) Encoding {
	n := len(enc.Ids)
	out := Encoding{
		IDs:     make([]int, n),
		Tokens:  make([]string, n),
		WordIDs: make([]int, n),
		Offsets: make([][2]int, n),
		Special: make([]bool, n),
	}
	copy(out.IDs, enc.Ids)
	copy(out.Tokens, enc.Tokens)
	for i := range n {
		out.WordIDs[i] = NoWord
		if i < len(enc.Words) && enc.Words[i] >= 0 {
			out.WordIDs[i] = enc.Words[i]
		}
		if i < len(enc.Offsets) && len(enc.Offsets[i]) == 2 {
			out.Offsets[i] = [2]int{enc.Offsets[i][0], enc.Offsets[i][1]}
		}
		special := i < len(enc.SpecialTokenMask) && enc.SpecialTokenMask[i] != 0
		padding := i < len(enc.AttentionMask) && enc.AttentionMask[i] == 0
		if special || padding {
			out.Special[i] = true
			out.WordIDs[i] = NoWord
		}
	}
	return out
}
