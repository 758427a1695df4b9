package pipeline

import (
	"errors"
	"fmt"
)

// ErrMalformedBlock marks an SRT block that could not be parsed. The SRT
// parser skips such blocks and never returns this error to its caller.
var ErrMalformedBlock = errors.New("malformed srt block")

// FileReadError is returned when a transcript file is missing or unreadable.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read transcript %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// DecodeError is returned when a JSON transcript is malformed. The whole file
// is rejected.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode json transcript: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
