// Package tokenizer defines the sub-word tokenizer collaborator and its
// Hugging Face implementation.
package tokenizer

// NoWord marks a sub-word position that does not belong to any input word,
// such as [CLS], [SEP] or padding.
const NoWord = -1

// Encoding is the sub-word segmentation of one input. All slices have one
// entry per sub-word token.
type Encoding struct {
	IDs     []int
	Tokens  []string
	WordIDs []int    // index of the originating word, or NoWord
	Offsets [][2]int // byte span of each token in the encoded text
	Special []bool   // tokens inserted by the tokenizer
}

// Len returns the number of sub-word tokens.
func (e Encoding) Len() int {
	return len(e.IDs)
}

// IsContinuation reports whether token i continues the word started by an
// earlier token.
func (e Encoding) IsContinuation(i int) bool {
	if i <= 0 || i >= len(e.WordIDs) {
		return false
	}
	wid := e.WordIDs[i]
	return wid != NoWord && e.WordIDs[i-1] == wid
}

// IsSpecial reports whether token i was inserted by the tokenizer.
func (e Encoding) IsSpecial(i int) bool {
	if i < len(e.Special) && e.Special[i] {
		return true
	}
	return i < len(e.WordIDs) && e.WordIDs[i] == NoWord
}

// Tokenizer is the collaborator that segments text into sub-word tokens.
type Tokenizer interface {
	// EncodeWords encodes pre-split rows; WordIDs index into each row's words.
	EncodeWords(batch [][]string) ([]Encoding, error)
	// Encode encodes free text; WordIDs index the tokenizer's own word split.
	Encode(text string) (Encoding, error)
}
