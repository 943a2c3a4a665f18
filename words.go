package ciya

import (
	"strings"

	"github.com/happyhackingspace/ciya/tokenizer"
)

// Word is a whole word rebuilt from its sub-word tokens.
type Word struct {
	Text     string `json:"word"`
	Category string `json:"category"`
	Start    int    `json:"start"` // byte offset in the input
	End      int    `json:"end"`
}

type wordState int

const (
	awaitingWordStart wordState = iota
	accumulatingContinuation
)

// assembleWords groups sub-word tokens into words. A token continues the
// current word iff the tokenizer assigned it the same word id as the token
// before it; special tokens are skipped. The category of a word is the one
// predicted for its first token.
func assembleWords(text string, enc tokenizer.Encoding, classes []int, categories []string) []Word {
	var (
		words  []Word
		cur    Word
		pieces []string
		state  = awaitingWordStart
	)

	begin := func(i int) {
		cur = Word{Category: categories[classes[i]], Start: -1, End: -1}
		pieces = pieces[:0]
		extend(&cur, &pieces, enc, i)
	}
	finish := func() {
		cur.Text = wordText(text, cur, pieces)
		words = append(words, cur)
	}

	for i := range enc.Len() {
		if enc.IsSpecial(i) {
			continue
		}
		switch state {
		case awaitingWordStart:
			begin(i)
			state = accumulatingContinuation
		case accumulatingContinuation:
			if enc.IsContinuation(i) {
				extend(&cur, &pieces, enc, i)
				continue
			}
			finish()
			begin(i)
		}
	}
	if state == accumulatingContinuation {
		finish()
	}
	return words
}

func extend(w *Word, pieces *[]string, enc tokenizer.Encoding, i int) {
	*pieces = append(*pieces, strings.TrimPrefix(enc.Tokens[i], "##"))
	if i >= len(enc.Offsets) {
		return
	}
	span := enc.Offsets[i]
	if span[1] <= span[0] {
		return
	}
	if w.Start < 0 || span[0] < w.Start {
		w.Start = span[0]
	}
	if span[1] > w.End {
		w.End = span[1]
	}
}

// wordText slices the word out of text when its offsets are usable and falls
// back to joining the token pieces.
func wordText(text string, w Word, pieces []string) string {
	if w.Start >= 0 && w.End <= len(text) && w.Start < w.End {
		return text[w.Start:w.End]
	}
	return strings.Join(pieces, "")
}
