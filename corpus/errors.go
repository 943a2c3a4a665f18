package corpus

import "fmt"

// InsufficientDataError is returned when more negative rows are requested
// than the corpus holds.
type InsufficientDataError struct {
	Split     string
	Requested int
	Available int
}

func (e *InsufficientDataError) Error() string {
	if e.Split != "" {
		return fmt.Sprintf("insufficient data in %s: requested %d negative rows, %d available", e.Split, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient data: requested %d negative rows, %d available", e.Requested, e.Available)
}

// DataIntegrityError reports a malformed row: a token/label length mismatch
// or a label outside the accepted set. Row is the index of the offending row
// in its batch or corpus, -1 when unknown.
type DataIntegrityError struct {
	Row    int
	ID     string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	switch {
	case e.Row < 0:
		return "data integrity: " + e.Reason
	case e.ID != "":
		return fmt.Sprintf("data integrity: row %d (id %s): %s", e.Row, e.ID, e.Reason)
	default:
		return fmt.Sprintf("data integrity: row %d: %s", e.Row, e.Reason)
	}
}

// IntegrityError builds a DataIntegrityError for the given row.
func IntegrityError(row int, id, format string, args ...any) *DataIntegrityError {
	return &DataIntegrityError{Row: row, ID: id, Reason: fmt.Sprintf(format, args...)}
}

func integrityf(row int, id, format string, args ...any) error {
	return IntegrityError(row, id, format, args...)
}
