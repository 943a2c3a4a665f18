package corpus

import "sort"

// TargetStats summarizes how often the target label occurs in a corpus.
type TargetStats struct {
	Rows      int      // rows with at least one target tag
	Tokens    int      // tokens tagged with the target
	Total     int      // all rows
	Negatives int      // rows without the target
	Words     []string // distinct tagged words, sorted
}

// CountTarget collects TargetStats for target over rows.
func CountTarget(rows []Row, target int) TargetStats {
	st := TargetStats{Total: len(rows)}
	seen := make(map[string]bool)
	for _, r := range rows {
		found := false
		for i, tag := range r.Tags {
			if tag != target || i >= len(r.Tokens) {
				continue
			}
			found = true
			st.Tokens++
			seen[r.Tokens[i]] = true
		}
		if found {
			st.Rows++
		}
	}
	st.Negatives = st.Total - st.Rows
	st.Words = make([]string, 0, len(seen))
	for w := range seen {
		st.Words = append(st.Words, w)
	}
	sort.Strings(st.Words)
	return st
}
