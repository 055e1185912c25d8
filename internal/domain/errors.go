package domain

import "errors"

// Error kinds every service error wraps. Transports classify failures with
// errors.Is against these four values.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidState     = errors.New("invalid state")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
)
