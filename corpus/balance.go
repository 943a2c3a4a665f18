package corpus

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// DefaultSeed is the seed used for sampling and shuffling unless configured.
const DefaultSeed uint64 = 42

// NewRand returns the generator used by Balance. PCG is a fixed algorithm, so
// a given seed yields the same stream on every platform.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// Balance keeps every row containing target, adds additional rows sampled
// without replacement from the rows that do not, and shuffles the result.
// The sample and the shuffle both draw from rng. Rows are cloned; the input
// is left untouched.
func Balance(rows []Row, target, additional int, rng *rand.Rand) ([]Row, error) {
	var positives, negatives []int
	for i, r := range rows {
		if r.HasTag(target) {
			positives = append(positives, i)
		} else {
			negatives = append(negatives, i)
		}
	}
	if additional < 0 {
		return nil, fmt.Errorf("negative row count %d", additional)
	}
	if additional > len(negatives) {
		return nil, &InsufficientDataError{Requested: additional, Available: len(negatives)}
	}

	picked := sample(negatives, additional, rng)

	out := make([]Row, 0, len(positives)+additional)
	for _, idx := range slices.Concat(positives, picked) {
		out = append(out, rows[idx].Clone())
	}
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out, nil
}

// sample draws k distinct elements of pool in selection order using a partial
// Fisher-Yates pass over a copy.
func sample(pool []int, k int, rng *rand.Rand) []int {
	work := slices.Clone(pool)
	for i := range k {
		j := i + rng.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k]
}
