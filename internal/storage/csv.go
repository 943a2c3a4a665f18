package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	jsoniter "github.com/json-iterator/go"

	"github.com/happyhackingspace/ciya/corpus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Fixed split columns. Any further column is carried in Row.Meta.
const (
	ColumnID     = "id"
	ColumnTokens = "tokens"
	ColumnTags   = "ner_tags"
)

// EncodeCSV writes rows with the header id,tokens,ner_tags followed by the
// sorted union of meta keys. List columns are JSON literals.
func EncodeCSV(w io.Writer, rows []corpus.Row) error {
	var metaKeys []string
	seen := make(map[string]bool)
	for _, r := range rows {
		for k := range r.Meta {
			if !seen[k] {
				seen[k] = true
				metaKeys = append(metaKeys, k)
			}
		}
	}
	slices.Sort(metaKeys)

	cw := csv.NewWriter(w)
	header := append([]string{ColumnID, ColumnTokens, ColumnTags}, metaKeys...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, r := range rows {
		tokens, err := json.MarshalToString(r.Tokens)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		tags, err := json.MarshalToString(r.Tags)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		record[0], record[1], record[2] = r.ID, tokens, tags
		for j, k := range metaKeys {
			record[3+j] = r.Meta[k]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeCSV reads rows written by EncodeCSV. Empty meta cells are dropped.
func DecodeCSV(r io.Reader) ([]corpus.Row, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{ColumnID, ColumnTokens, ColumnTags} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []corpus.Row
	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := corpus.Row{ID: record[col[ColumnID]]}
		if err := json.UnmarshalFromString(record[col[ColumnTokens]], &row.Tokens); err != nil {
			return nil, corpus.IntegrityError(line-1, row.ID, "tokens column: %v", err)
		}
		if err := json.UnmarshalFromString(record[col[ColumnTags]], &row.Tags); err != nil {
			return nil, corpus.IntegrityError(line-1, row.ID, "ner_tags column: %v", err)
		}
		for i, name := range header {
			switch name {
			case ColumnID, ColumnTokens, ColumnTags:
				continue
			}
			if record[i] == "" {
				continue
			}
			if row.Meta == nil {
				row.Meta = make(map[string]string)
			}
			row.Meta[name] = record[i]
		}
		if err := row.Validate(line - 1); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
