// Package ciya finds mountain names in text with a token classifier trained
// on a balanced, binary-tagged slice of Few-NERD.
//
//	r, _ := ciya.Load(ctx, "model")
//	tags, _ := r.Recognize("We climbed Mont Blanc in June.")
//	fmt.Println(tags) // map[.:other Blanc:mountain June:other Mont:mountain We:other climbed:other in:other]
package ciya

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/happyhackingspace/ciya/internal/storage"
	"github.com/happyhackingspace/ciya/tagger"
	"github.com/happyhackingspace/ciya/tokenizer"
)

// Categories.
const (
	CategoryOther    = "other"
	CategoryMountain = "mountain"
)

// DefaultModelDir is where Train writes and Load looks by default.
const DefaultModelDir = "model"

// LabelCategories maps every model output label to its category.
var LabelCategories = map[string]string{
	"LABEL_0": CategoryOther,
	"LABEL_1": CategoryMountain,
}

// Recognizer tags the words of free text.
type Recognizer struct {
	model      *tagger.Model
	tk         tokenizer.Tokenizer
	categories []string // indexed by class
}

// New builds a Recognizer, checking that every model label has a category
// and every category is produced by some label.
func New(model *tagger.Model, tk tokenizer.Tokenizer) (*Recognizer, error) {
	categories, err := categoriesFor(model.Labels)
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	return &Recognizer{model: model, tk: tk, categories: categories}, nil
}

func categoriesFor(labels []string) ([]string, error) {
	if len(labels) != len(LabelCategories) {
		return nil, fmt.Errorf("model has %d labels, want %d", len(labels), len(LabelCategories))
	}
	out := make([]string, len(labels))
	used := make(map[string]bool, len(labels))
	for i, l := range labels {
		cat, ok := LabelCategories[l]
		if !ok {
			return nil, fmt.Errorf("model label %q has no category", l)
		}
		if used[l] {
			return nil, fmt.Errorf("model label %q repeated", l)
		}
		used[l] = true
		out[i] = cat
	}
	return out, nil
}

// Load reads model.json and tokenizer.json from dir.
func Load(ctx context.Context, dir string) (*Recognizer, error) {
	model, err := tagger.LoadModel(ctx, storage.JoinPath(dir, tagger.FileName))
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	tk, err := tokenizer.Load(ctx, storage.JoinPath(dir, tokenizer.FileName))
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	return New(model, tk)
}

// FindModelDir looks for DefaultModelDir in the current directory and its
// parents up to the module root (where go.mod lives).
func FindModelDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("ciya: %w", err)
	}
	for {
		path := filepath.Join(dir, DefaultModelDir)
		if _, err := os.Stat(filepath.Join(path, tagger.FileName)); err == nil {
			return path, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("ciya: %s/%s not found", DefaultModelDir, tagger.FileName)
}

// Words returns the whole words of text in order, each with the category
// predicted for its first sub-word.
func (r *Recognizer) Words(text string) ([]Word, error) {
	enc, err := r.tk.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("ciya: %w", err)
	}
	return assembleWords(text, enc, r.model.Predict(enc), r.categories), nil
}

// Recognize maps each word of text to its category. A word that occurs more
// than once keeps the category of its last occurrence.
func (r *Recognizer) Recognize(text string) (map[string]string, error) {
	words, err := r.Words(text)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(words))
	for _, w := range words {
		out[w.Text] = w.Category
	}
	return out, nil
}
