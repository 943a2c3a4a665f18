package tokenizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/tokenizer"
)

func TestFromEncoding(t *testing.T) {
	enc := &tokenizer.Encoding{
		Ids:              []int{101, 2000, 2001, 2002, 102},
		Tokens:           []string{"[CLS]", "Mont", "##bla", "##nc", "[SEP]"},
		Offsets:          [][]int{{0, 0}, {0, 4}, {5, 8}, {8, 10}, {0, 0}},
		SpecialTokenMask: []int{1, 0, 0, 0, 1},
		AttentionMask:    []int{1, 1, 1, 1, 1},
		Words:            []int{-1, 0, 1, 1, -1},
	}
	out := fromEncoding(enc)

	assert.Equal(t, 5, out.Len())
	assert.Equal(t, []int{NoWord, 0, 1, 1, NoWord}, out.WordIDs)
	assert.Equal(t, [2]int{5, 8}, out.Offsets[2])
	assert.Equal(t, []bool{true, false, false, false, true}, out.Special)
}

func TestFromEncodingPadding(t *testing.T) {
	enc := &tokenizer.Encoding{
		Ids:              []int{101, 2000, 102, 0},
		Tokens:           []string{"[CLS]", "K2", "[SEP]", "[PAD]"},
		Offsets:          [][]int{{0, 0}, {0, 2}, {0, 0}, {0, 0}},
		SpecialTokenMask: []int{1, 0, 1, 0},
		AttentionMask:    []int{1, 1, 1, 0},
		Words:            []int{-1, 0, -1, 0},
	}
	out := fromEncoding(enc)
	assert.Equal(t, NoWord, out.WordIDs[3])
	assert.True(t, out.IsSpecial(3))
}

func TestIsContinuation(t *testing.T) {
	enc := Encoding{
		IDs:     []int{1, 2, 3, 4, 5},
		WordIDs: []int{NoWord, 0, 0, 1, NoWord},
	}
	assert.False(t, enc.IsContinuation(0))
	assert.False(t, enc.IsContinuation(1))
	assert.True(t, enc.IsContinuation(2))
	assert.False(t, enc.IsContinuation(3))
	assert.False(t, enc.IsContinuation(4))
	assert.True(t, enc.IsSpecial(0))
	assert.False(t, enc.IsSpecial(2))
}

const testTokenizer = "testdata/tokenizer.json"

func TestHFEncodeWords(t *testing.T) {
	tk, err := Load(context.Background(), testTokenizer)
	require.NoError(t, err)

	encs, err := tk.EncodeWords([][]string{
		{"Climbing", "Kilimanjaro", "today"},
		{"We", "\u200b", "Mont", "is", "high"},
	})
	require.NoError(t, err)
	require.Len(t, encs, 2)

	enc := encs[0]
	assert.Equal(t, []string{"[CLS]", "Climbing", "Kil", "##iman", "##jaro", "today", "[SEP]"}, enc.Tokens)
	assert.Equal(t, []int{2, 8, 9, 10, 11, 12, 3}, enc.IDs)
	assert.Equal(t, []int{NoWord, 0, 1, 1, 1, 2, NoWord}, enc.WordIDs)
	assert.Equal(t, []bool{true, false, false, false, false, false, true}, enc.Special)
	assert.False(t, enc.IsContinuation(2))
	assert.True(t, enc.IsContinuation(3))
	assert.True(t, enc.IsContinuation(4))

	// the zero-width space normalizes to nothing, so word 1 has no pieces
	assert.Equal(t, []int{NoWord, 0, 2, 3, 4, NoWord}, encs[1].WordIDs)
}

func TestHFEncode(t *testing.T) {
	tk, err := Load(context.Background(), testTokenizer)
	require.NoError(t, err)

	enc, err := tk.Encode("Mont Blanc is high.")
	require.NoError(t, err)
	assert.Equal(t, []string{"[CLS]", "Mont", "Blanc", "is", "high", ".", "[SEP]"}, enc.Tokens)
	assert.True(t, enc.IsSpecial(0))
	assert.True(t, enc.IsSpecial(enc.Len()-1))
	assert.Equal(t, [2]int{0, 4}, enc.Offsets[1])
	assert.Equal(t, [2]int{5, 10}, enc.Offsets[2])
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), "testdata/missing.json")
	assert.Error(t, err)
}
