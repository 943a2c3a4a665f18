package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/ciya/corpus"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		elem []string
		want string
	}{
		{[]string{"data", "train.csv"}, filepath.Join("data", "train.csv")},
		{[]string{"s3://bucket/data/", "train.csv"}, "s3://bucket/data/train.csv"},
		{[]string{"s3://bucket", "a", "b.csv"}, "s3://bucket/a/b.csv"},
	}
	for _, tt := range tests {
		got := JoinPath(tt.elem...)
		if got != tt.want {
			t.Errorf("JoinPath(%q) = %q, want %q", tt.elem, got, tt.want)
		}
	}
}

func TestEncodeCSV(t *testing.T) {
	rows := []corpus.Row{
		{ID: "7", Tokens: []string{"Mont", "Blanc", ",", "\"high\""}, Tags: []int{1, 1, 0, 0}, Meta: map[string]string{"coarse_ner_tags": "[2, 2, 0, 0]"}},
		{ID: "8", Tokens: []string{"Paris"}, Tags: []int{0}},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,tokens,ner_tags,coarse_ner_tags", lines[0])
	assert.Equal(t, `8,"[""Paris""]",[0],`, lines[2])

	got, err := DecodeCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestDecodeCSVMissingColumn(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("id,tokens\n1,[]\n"))
	assert.ErrorContains(t, err, "ner_tags")
}

func TestDecodeCSVLengthMismatch(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("id,tokens,ner_tags\na,\"[\"\"x\"\"]\",[0]\nb,\"[\"\"y\"\"]\",\"[0, 1]\"\n"))
	var integrity *corpus.DataIntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Equal(t, 1, integrity.Row)
	assert.Equal(t, "b", integrity.ID)
}

func TestDecodeCSVEmpty(t *testing.T) {
	rows, err := DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteReadSplits(t *testing.T) {
	ctx := context.Background()
	s := NewStorage(filepath.Join(t.TempDir(), "balanced"))

	splits := map[string][]corpus.Row{
		corpus.Train:      {{ID: "1", Tokens: []string{"K2"}, Tags: []int{1}}},
		corpus.Validation: {{ID: "2", Tokens: []string{"the", "Alps"}, Tags: []int{0, 1}}},
		corpus.Test:       {{ID: "3", Tokens: []string{"rain"}, Tags: []int{0}}},
	}
	require.NoError(t, s.WriteSplits(ctx, splits))

	for _, split := range corpus.Splits {
		_, err := os.Stat(s.SplitPath(split))
		assert.NoError(t, err, split)
	}

	got, err := s.ReadSplits(ctx)
	require.NoError(t, err)
	assert.Equal(t, splits, got)

	// a second write replaces the files
	splits[corpus.Train] = append(splits[corpus.Train], corpus.Row{ID: "4", Tokens: []string{"Eiger"}, Tags: []int{1}})
	require.NoError(t, s.WriteSplits(ctx, splits))
	train, err := s.ReadSplit(ctx, corpus.Train)
	require.NoError(t, err)
	assert.Len(t, train, 2)
}

func TestWriteSplitsLocked(t *testing.T) {
	dir := t.TempDir()
	lock := flock.New(filepath.Join(dir, LockName))
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer lock.Unlock()

	err = NewStorage(dir).WriteSplits(context.Background(), map[string][]corpus.Row{corpus.Train: nil})
	assert.ErrorContains(t, err, "another process")
}

func TestReadSourceJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.jsonl")
	data := `{"id":"0","tokens":["Climbing","Everest"],"ner_tags":[0,2],"fine_ner_tags":[0,24]}

{"id":"1","tokens":["Hello"],"ner_tags":[0],"fine_ner_tags":[0]}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	rows, err := ReadSource(context.Background(), path, DefaultSourceOptions())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []int{0, 24}, rows[0].Tags)
	assert.Equal(t, "[0,2]", rows[0].Meta[ColumnCoarseTags])

	rows, err = ReadSource(context.Background(), path, SourceOptions{TagColumn: ColumnTags})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, rows[0].Tags)
	assert.Equal(t, "[0,24]", rows[0].Meta[ColumnFineTags])
}

func TestReadSourceParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.parquet")
	records := []sourceRecord{
		{ID: "0", Tokens: []string{"Mount", "Kenya"}, NerTags: []int64{2, 2}, FineNerTags: []int64{24, 24}},
		{ID: "1", Tokens: []string{"Nairobi"}, NerTags: []int64{2}, FineNerTags: []int64{20}},
	}
	require.NoError(t, parquet.WriteFile(path, records))

	rows, err := ReadSource(context.Background(), path, DefaultSourceOptions())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "0", rows[0].ID)
	assert.Equal(t, []string{"Mount", "Kenya"}, rows[0].Tokens)
	assert.Equal(t, []int{24, 24}, rows[0].Tags)
	assert.Equal(t, []int{20}, rows[1].Tags)
}

func TestReadSourceErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id":"0","tokens":["a","b"],"fine_ner_tags":[0]}`+"\n"), 0o644))

	_, err := ReadSource(context.Background(), bad, DefaultSourceOptions())
	var integrity *corpus.DataIntegrityError
	assert.True(t, errors.As(err, &integrity))

	_, err = ReadSource(context.Background(), filepath.Join(dir, "x.txt"), DefaultSourceOptions())
	assert.Error(t, err)

	_, err = ReadSource(context.Background(), bad, SourceOptions{TagColumn: "pos_tags"})
	assert.ErrorContains(t, err, "pos_tags")
}
