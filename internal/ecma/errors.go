package ecma

import (
	"errors"
	"fmt"
)

var (
	// ErrBadSignature is returned when the metadata root does not start with "BSJB".
	ErrBadSignature = errors.New("ecma: bad metadata signature")
	// ErrTruncated is returned when a structure extends past the end of its container.
	ErrTruncated = errors.New("ecma: truncated metadata")
	// ErrMissingStream is returned when the table stream is absent.
	ErrMissingStream = errors.New("ecma: missing table stream")
	// ErrUnsupportedTable is returned for table ids outside ECMA-335 II.22.
	ErrUnsupportedTable = errors.New("ecma: unsupported table")
	// ErrTooManyRows is returned when a table exceeds the 24-bit row space.
	ErrTooManyRows = errors.New("ecma: too many rows")
	// ErrHeapTooLarge is returned when a heap cannot be addressed by a handle.
	ErrHeapTooLarge = errors.New("ecma: heap too large")
	// ErrBadHeapOffset is returned when a column points outside its heap.
	ErrBadHeapOffset = errors.New("ecma: heap offset out of range")
	// ErrRowOutOfRange is returned when a row index exceeds its table.
	ErrRowOutOfRange = errors.New("ecma: row out of range")
	// ErrMissingAnchor is returned when Windows Runtime metadata has no
	// mscorlib AssemblyRef to project against.
	ErrMissingAnchor = errors.New("ecma: windows runtime metadata has no mscorlib reference")
)

// FormatError describes a malformed metadata structure.
//
// The sentinel cause can be tested with errors.Is.
type FormatError struct {
	Section string
	Offset  int64
	Err     error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v (%s at offset %#x)", e.Err, e.Section, e.Offset)
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(section string, offset int, err error) error {
	return &FormatError{Section: section, Offset: int64(offset), Err: err}
}
