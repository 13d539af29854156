package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrEmptyTask indicates no task description was given on the command line or stdin.
	ErrEmptyTask = errors.New("task description is empty")

	// ErrEmptySecret indicates key set received no API key.
	ErrEmptySecret = errors.New("API key is empty")

	// ErrInvalidLimit indicates a non-positive history limit.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")
)
