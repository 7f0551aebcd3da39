// Package catalog loads the two run inputs: the master lookup table that
// maps a ticket code to its city and region, and the daily code list.
// Both are immutable for the duration of a run.
package catalog

import "fmt"

// Entry is one row of the master lookup table, keyed by ticket code.
type Entry struct {
	// City and Region are the dropdown filter values for the code.
	City   string
	Region string
	// Row is the 1-based source row number, for diagnostics only.
	Row int
}

// Lookup maps a ticket code to its entry. Duplicate codes in the source
// file resolve to the last occurrence.
type Lookup map[string]Entry

// DataLoadError reports a fatal problem with an input file. It aborts the
// run; per-item UI failures never produce one.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }
