// Package vectorizer turns per-token feature dicts into sparse vectors.
package vectorizer

import "sort"

// SparseVector represents a sparse float64 vector.
type SparseVector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// NewSparseVector creates a sparse vector with given dimension.
func NewSparseVector(dim int) SparseVector {
	return SparseVector{Dim: dim}
}

// Set adds or updates a value at the given index.
func (sv *SparseVector) Set(idx int, val float64) {
	for i, existingIdx := range sv.Indices {
		if existingIdx == idx {
			sv.Values[i] = val
			return
		}
	}
	sv.Indices = append(sv.Indices, idx)
	sv.Values = append(sv.Values, val)
}

// Sort orders the entries by index so that sums over them are reproducible.
func (sv *SparseVector) Sort() {
	sort.Sort(byIndex{sv})
}

type byIndex struct{ sv *SparseVector }

func (b byIndex) Len() int           { return len(b.sv.Indices) }
func (b byIndex) Less(i, j int) bool { return b.sv.Indices[i] < b.sv.Indices[j] }
func (b byIndex) Swap(i, j int) {
	b.sv.Indices[i], b.sv.Indices[j] = b.sv.Indices[j], b.sv.Indices[i]
	b.sv.Values[i], b.sv.Values[j] = b.sv.Values[j], b.sv.Values[i]
}

// Dot computes the dot product with a dense vector.
func (sv SparseVector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range sv.Indices {
		if idx < len(dense) {
			sum += sv.Values[i] * dense[idx]
		}
	}
	return sum
}

// AddTo performs dense += scale * sv on the touched indices only.
func (sv SparseVector) AddTo(dense []float64, scale float64) {
	for i, idx := range sv.Indices {
		if idx < len(dense) {
			dense[idx] += scale * sv.Values[i]
		}
	}
}

// ToDense converts to a dense float64 slice.
func (sv SparseVector) ToDense() []float64 {
	dense := make([]float64, sv.Dim)
	for i, idx := range sv.Indices {
		if idx < sv.Dim {
			dense[idx] = sv.Values[i]
		}
	}
	return dense
}

// Nnz returns the number of non-zero entries.
func (sv SparseVector) Nnz() int {
	return len(sv.Indices)
}
