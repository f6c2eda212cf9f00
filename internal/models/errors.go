package models

import "errors"

// Error taxonomy shared across the pipeline. Per-file errors
// (ErrUnsupportedFormat, ErrMalformedInput) are fatal to that file but never
// to a batch build; ErrIndexFailure is fatal and propagates to the caller.
var (
	// ErrUnsupportedFormat is returned when a file extension is outside the
	// supported set.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrMalformedInput is returned when markup or JSON cannot be parsed.
	ErrMalformedInput = errors.New("malformed input")

	// ErrIndexFailure is returned when the embedding service or index
	// backend fails during add or search.
	ErrIndexFailure = errors.New("index operation failed")
)
