package guest

import "errors"

var (
	// ErrEmptyFile is returned when a zero-byte file is selected for
	// upload; no network call is made for such files.
	ErrEmptyFile = errors.New("file is empty")

	// ErrEndpointRequired is returned when no server endpoint is set.
	ErrEndpointRequired = errors.New("server endpoint is required")

	// ErrNoFiles is returned when an upload batch contains no paths.
	ErrNoFiles = errors.New("no files provided")
)
