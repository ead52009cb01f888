package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned for a zero-byte upload.
	ErrEmptyInput = errors.New("empty design file")

	// ErrInvalidDesign is returned when the decoder yields no pattern or a
	// pattern without stitch data.
	ErrInvalidDesign = errors.New("invalid design file")
)

// DecodeError wraps a failure raised by the stitch decoder.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("decode design: %v", e.Err)
	}
	return fmt.Sprintf("decode design %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
