package corpus

// Binarize returns a copy of rows where each tag becomes Entity when it equals
// target and Other otherwise. Tokens, IDs and Meta are carried over unchanged.
func Binarize(rows []Row, target int) ([]Row, error) {
	out := make([]Row, len(rows))
	for i, r := range rows {
		if err := r.Validate(i); err != nil {
			return nil, err
		}
		b := r.Clone()
		for j, tag := range r.Tags {
			if tag == target {
				b.Tags[j] = Entity
			} else {
				b.Tags[j] = Other
			}
		}
		out[i] = b
	}
	return out, nil
}

// ValidateBinary checks that every row satisfies the length invariant and
// only carries binary tags.
func ValidateBinary(rows []Row) error {
	for i, r := range rows {
		if err := r.Validate(i); err != nil {
			return err
		}
		for j, tag := range r.Tags {
			if tag != Other && tag != Entity {
				return integrityf(i, r.ID, "tag %d at position %d is not binary", tag, j)
			}
		}
	}
	return nil
}
