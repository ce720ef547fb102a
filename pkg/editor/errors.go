package editor

import (
	"github.com/pkg/errors"
)

var (
	// ErrIndexOutOfRange is returned when a prompt selection does not exist
	// in the editable app.
	ErrIndexOutOfRange = errors.New("prompt index out of range")
	// ErrMalformedInput is returned when user supplied raw JSON does not
	// parse. The held document stays untouched.
	ErrMalformedInput = errors.New("malformed input")
	// ErrNoChange signals that an edit equals the original text and there
	// is nothing to publish.
	ErrNoChange = errors.New("no changes detected")
)
