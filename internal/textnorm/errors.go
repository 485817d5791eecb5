package textnorm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUTF8 is wrapped by EncodingError when the input is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8 sequence")

	// ErrUnknownNormalizer is returned by ParsePipeline for unregistered names.
	ErrUnknownNormalizer = errors.New("unknown normalizer")
)

// EncodingError reports text that could not be mapped through the
// transliteration table.
type EncodingError struct {
	// Offset is the byte offset of the first byte that could not be processed.
	Offset int
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("transliterate: byte %d: %v", e.Offset, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
