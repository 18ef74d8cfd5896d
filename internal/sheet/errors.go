package sheet

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is matched by every error caused by cell content.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidTimeRange is returned for time cells that are not "<start>-<end>".
	ErrInvalidTimeRange = fmt.Errorf("%w: invalid time range", ErrMalformedInput)

	// ErrInvalidDate is returned for date text that cannot be read as a calendar day.
	ErrInvalidDate = fmt.Errorf("%w: invalid date", ErrMalformedInput)

	// ErrFetch wraps failures to retrieve or decode a workbook.
	ErrFetch = errors.New("workbook fetch failed")

	errOrphanContinuation = errors.New("continuation row has no practice to continue")
	errTimeIsDate         = errors.New(`time cell holds a date; enter the range as text such as "8-10"`)
	errUnexpectedKind     = errors.New("unexpected cell type")
)

// MalformedInputError pinpoints the cell that stopped a parse.
type MalformedInputError struct {
	Sheet  string
	Row    int // 1-based within the sheet's data rows
	Column string
	Value  string
	Err    error
}

func (e *MalformedInputError) Error() string {
	loc := fmt.Sprintf("row %d", e.Row)
	if e.Sheet != "" {
		loc = fmt.Sprintf("sheet %q %s", e.Sheet, loc)
	}
	if e.Column != "" {
		loc += " column " + e.Column
	}
	return fmt.Sprintf("malformed input at %s (value %q): %v", loc, e.Value, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// Is makes every MalformedInputError match ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}
