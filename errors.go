package asmref

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when a closed Reader is used.
	ErrClosed = errors.New("asmref: reader is closed")

	// ErrUnsupportedImage is returned when an image is neither a PE file nor
	// a metadata root, in plain or compressed form.
	ErrUnsupportedImage = errors.New("asmref: unsupported image")
)

// ErrOpen reports a failure to load a named image.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrOpen struct {
	Name  string
	cause error
}

func (e *ErrOpen) Error() string {
	return fmt.Sprintf("asmref: open %s: %v", e.Name, e.cause)
}

func (e *ErrOpen) Unwrap() error { return e.cause }

func openError(name string, err error) error {
	if err == nil {
		return nil
	}
	var oe *ErrOpen
	if errors.As(err, &oe) {
		return err
	}
	return &ErrOpen{Name: name, cause: err}
}
