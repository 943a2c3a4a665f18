package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/happyhackingspace/ciya/corpus"
)

// Tag columns of a Few-NERD style source.
const (
	ColumnFineTags   = "fine_ner_tags"
	ColumnCoarseTags = "coarse_ner_tags"
)

// SourceOptions controls how a source corpus is turned into rows.
type SourceOptions struct {
	// TagColumn is the tag column fed to the balancer: "fine_ner_tags" or
	// "ner_tags". The other one is kept as literal meta text.
	TagColumn string
}

// DefaultSourceOptions returns options for the Few-NERD supervised layout.
func DefaultSourceOptions() SourceOptions {
	return SourceOptions{TagColumn: ColumnFineTags}
}

// sourceRecord is one row of a Few-NERD split. In the hub layout ner_tags
// holds the coarse types and fine_ner_tags the fine ones.
type sourceRecord struct {
	ID          string   `json:"id" parquet:"id"`
	Tokens      []string `json:"tokens" parquet:"tokens,list"`
	NerTags     []int64  `json:"ner_tags" parquet:"ner_tags,list"`
	FineNerTags []int64  `json:"fine_ner_tags" parquet:"fine_ner_tags,list"`
}

// ReadSource loads a source split from a .jsonl, .parquet or .csv file.
func ReadSource(ctx context.Context, url string, opts SourceOptions) ([]corpus.Row, error) {
	if opts.TagColumn == "" {
		opts.TagColumn = ColumnFineTags
	}
	if opts.TagColumn != ColumnFineTags && opts.TagColumn != ColumnTags {
		return nil, fmt.Errorf("unknown tag column %q", opts.TagColumn)
	}

	data, err := ReadFile(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", url, err)
	}

	var records []sourceRecord
	switch ext := strings.ToLower(path.Ext(url)); ext {
	case ".jsonl":
		records, err = decodeJSONL(bytes.NewReader(data))
	case ".parquet":
		records, err = parquet.Read[sourceRecord](bytes.NewReader(data), int64(len(data)))
	case ".csv":
		return DecodeCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported source format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode source %s: %w", url, err)
	}

	rows := make([]corpus.Row, len(records))
	for i, rec := range records {
		row, err := rec.toRow(opts.TagColumn)
		if err != nil {
			return nil, err
		}
		if err := row.Validate(i); err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

func (rec sourceRecord) toRow(tagColumn string) (corpus.Row, error) {
	tags, other, otherName := rec.FineNerTags, rec.NerTags, ColumnCoarseTags
	if tagColumn == ColumnTags {
		tags, other, otherName = rec.NerTags, rec.FineNerTags, ColumnFineTags
	}

	row := corpus.Row{
		ID:     rec.ID,
		Tokens: rec.Tokens,
		Tags:   make([]int, len(tags)),
	}
	for i, t := range tags {
		row.Tags[i] = int(t)
	}
	if len(other) > 0 {
		text, err := json.MarshalToString(other)
		if err != nil {
			return corpus.Row{}, err
		}
		row.Meta = map[string]string{otherName: text}
	}
	return row, nil
}

func decodeJSONL(r io.Reader) ([]sourceRecord, error) {
	br := bufio.NewReader(r)
	var records []sourceRecord
	for n := 1; ; n++ {
		line, err := readLine(br)
		if len(bytes.TrimSpace(line)) > 0 {
			var rec sourceRecord
			if uerr := json.Unmarshal(line, &rec); uerr != nil {
				return nil, fmt.Errorf("line %d: %w", n, uerr)
			}
			records = append(records, rec)
		}
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
