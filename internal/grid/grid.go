// Package grid abstracts the tabular surface the operator edits. Row 1
// is the frozen header; everything below is one product per row.
package grid

import "context"

type Grid interface {
	// Header returns row 1, or nil when the sheet is empty.
	Header(ctx context.Context) ([]string, error)
	// ReadRows returns the data rows (row 2 down), excluding trailing
	// fully blank rows.
	ReadRows(ctx context.Context) ([][]string, error)
	// ReplaceRows discards every data row and writes the header plus
	// the given rows in one pass.
	ReplaceRows(ctx context.Context, header []string, rows [][]string) error
}
