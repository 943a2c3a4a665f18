// Package storage reads source corpora and reads and writes balanced splits.
// Paths may be local or any URL afs understands, including s3://.
package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/viant/afs"
	"github.com/viant/afs/option"
	_ "github.com/viant/afsc/s3"

	"github.com/happyhackingspace/ciya/corpus"
)

var fileSystem = afs.New()

const partSize = 64 * 1024 * 1024

// LockName is the lock file taken in a local split folder while it is written.
const LockName = ".ciya.lock"

// Storage wraps the folder holding train.csv, validation.csv and test.csv.
type Storage struct {
	Folder string
}

// NewStorage creates a Storage for the given data folder.
func NewStorage(folder string) *Storage {
	return &Storage{Folder: folder}
}

// SplitPath returns the CSV location of a split.
func (s *Storage) SplitPath(split string) string {
	return JoinPath(s.Folder, split+".csv")
}

// ReadSplit loads one balanced split.
func (s *Storage) ReadSplit(ctx context.Context, split string) ([]corpus.Row, error) {
	path := s.SplitPath(split)
	f, err := fileSystem.OpenURL(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open split %s: %w", split, err)
	}
	defer f.Close()

	rows, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read split %s: %w", split, err)
	}
	slog.Debug("Loaded split", "split", split, "rows", len(rows), "path", path)
	return rows, nil
}

// WriteSplit stores one split, replacing any previous file.
func (s *Storage) WriteSplit(ctx context.Context, split string, rows []corpus.Row) error {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, rows); err != nil {
		return fmt.Errorf("encode split %s: %w", split, err)
	}
	path := s.SplitPath(split)
	if err := WriteFile(ctx, path, buf.Bytes()); err != nil {
		return fmt.Errorf("write split %s: %w", split, err)
	}
	slog.Debug("Wrote split", "split", split, "rows", len(rows), "path", path)
	return nil
}

// WriteSplits writes every split in order. A local folder is locked for the
// duration so two concurrent runs cannot interleave their files.
func (s *Storage) WriteSplits(ctx context.Context, splits map[string][]corpus.Row) (err error) {
	if err := fileSystem.Create(ctx, s.Folder, os.ModePerm, true); err != nil {
		exists, existsErr := fileSystem.Exists(ctx, s.Folder)
		if existsErr != nil || !exists {
			return fmt.Errorf("create folder %s: %w", s.Folder, err)
		}
	}

	if !IsRemote(s.Folder) {
		lock := flock.New(filepath.Join(s.Folder, LockName))
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", s.Folder, err)
		}
		if !locked {
			return fmt.Errorf("folder %s is being written by another process", s.Folder)
		}
		defer func() {
			err = errors.Join(err, lock.Unlock())
		}()
	}

	for _, split := range corpus.Splits {
		rows, ok := splits[split]
		if !ok {
			continue
		}
		if err := s.WriteSplit(ctx, split, rows); err != nil {
			return err
		}
	}
	return nil
}

// ReadSplits loads all three splits.
func (s *Storage) ReadSplits(ctx context.Context) (map[string][]corpus.Row, error) {
	out := make(map[string][]corpus.Row, len(corpus.Splits))
	for _, split := range corpus.Splits {
		rows, err := s.ReadSplit(ctx, split)
		if err != nil {
			return nil, err
		}
		out[split] = rows
	}
	return out, nil
}

// ReadFile returns the contents of a local path or URL.
func ReadFile(ctx context.Context, url string) (data []byte, err error) {
	f, err := fileSystem.OpenURL(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return io.ReadAll(f)
}

// WriteFile replaces the file at url with data.
func WriteFile(ctx context.Context, url string, data []byte) error {
	exists, err := fileSystem.Exists(ctx, url)
	if err != nil {
		return err
	}
	if exists {
		if err := fileSystem.Delete(ctx, url); err != nil {
			return err
		}
	}
	w, err := fileSystem.NewWriter(ctx, url, 0o644, option.NewSkipChecksum(true))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Join(err, w.Close())
	}
	return w.Close()
}

// CopyFile copies between any two supported locations.
func CopyFile(ctx context.Context, from, to string) error {
	return fileSystem.Copy(ctx, from, to, option.NewSource(option.NewStream(partSize, 0)), option.NewDest(option.NewSkipChecksum(true)))
}

// Exists reports whether url exists.
func Exists(ctx context.Context, url string) (bool, error) {
	return fileSystem.Exists(ctx, url)
}

// IsRemote reports whether path is a URL rather than a local path.
func IsRemote(path string) bool {
	return strings.Contains(path, "://") && !strings.HasPrefix(path, "file://")
}

// JoinPath joins path elements, keeping the double slash of URL schemes.
func JoinPath(elem ...string) string {
	if len(elem) == 0 {
		return ""
	}
	if IsRemote(elem[0]) {
		base := strings.TrimSuffix(elem[0], "/")
		return base + "/" + strings.Join(elem[1:], "/")
	}
	return filepath.Join(elem...)
}

// readLine returns a single line without its ending \n, regardless of length.
func readLine(r *bufio.Reader) ([]byte, error) {
	var (
		isPrefix = true
		err      error
		line, ln []byte
	)
	for isPrefix && err == nil {
		line, isPrefix, err = r.ReadLine()
		ln = append(ln, line...)
	}
	return ln, err
}
