package vectorizer

import (
	"fmt"
	"sort"
)

// DictVectorizer converts feature dicts to sparse vectors. Feature names seen
// fewer than MinCount times during Fit are dropped.
type DictVectorizer struct {
	FeatureNames []string       `json:"feature_names"`
	FeatureIndex map[string]int `json:"feature_index"`
	MinCount     int            `json:"min_count"`

	counts map[string]int
}

// NewDictVectorizer creates an empty DictVectorizer.
func NewDictVectorizer(minCount int) *DictVectorizer {
	return &DictVectorizer{MinCount: minCount}
}

// Observe counts the features of one dict. Call Fit once everything has been
// observed.
func (dv *DictVectorizer) Observe(d map[string]any) {
	if dv.counts == nil {
		dv.counts = make(map[string]int)
	}
	for k, v := range d {
		for _, key := range featureKeys(k, v) {
			dv.counts[key]++
		}
	}
}

// Fit builds the feature mapping from observed dicts plus data.
func (dv *DictVectorizer) Fit(data []map[string]any) {
	for _, d := range data {
		dv.Observe(d)
	}

	dv.FeatureNames = dv.FeatureNames[:0]
	for f, n := range dv.counts {
		if n >= dv.MinCount {
			dv.FeatureNames = append(dv.FeatureNames, f)
		}
	}
	sort.Strings(dv.FeatureNames)

	dv.FeatureIndex = make(map[string]int, len(dv.FeatureNames))
	for i, f := range dv.FeatureNames {
		dv.FeatureIndex[f] = i
	}
	dv.counts = nil
}

// Transform converts a feature dict to a sparse vector sorted by index.
// Unknown features are skipped.
func (dv *DictVectorizer) Transform(d map[string]any) SparseVector {
	sv := NewSparseVector(len(dv.FeatureNames))
	for k, v := range d {
		val := featureValue(v)
		for _, key := range featureKeys(k, v) {
			if idx, ok := dv.FeatureIndex[key]; ok {
				sv.Set(idx, val)
			}
		}
	}
	sv.Sort()
	return sv
}

// VocabSize returns the number of features.
func (dv *DictVectorizer) VocabSize() int {
	return len(dv.FeatureNames)
}

// featureKeys returns the feature names for a name-value pair:
// "name=value" for strings, "name:item" per item of a []string, and the bare
// name for numbers and bools.
func featureKeys(name string, value any) []string {
	switch v := value.(type) {
	case string:
		return []string{fmt.Sprintf("%s=%s", name, v)}
	case []string:
		keys := make([]string, len(v))
		for i, item := range v {
			keys[i] = fmt.Sprintf("%s:%s", name, item)
		}
		return keys
	case bool:
		if !v {
			return nil
		}
		return []string{name}
	default:
		return []string{name}
	}
}

// featureValue returns the numeric value for a feature.
func featureValue(value any) float64 {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 1.0
	}
}
