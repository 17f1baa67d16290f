package directory

import "errors"

var (
	// ErrUserNotFound is returned when a lookup finds no record.
	ErrUserNotFound = errors.New("user not found")

	// ErrViewerRequired is returned when a query is missing the viewer identity.
	ErrViewerRequired = errors.New("viewer identity is required")
)
