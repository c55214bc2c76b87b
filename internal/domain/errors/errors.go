package errors

import "errors"

// Sentinel errors for handlers to map to the protocol status codes.
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("a user with this email already exists")
	ErrForbidden          = errors.New("not authorized for this project")
	ErrInvalidOperation   = errors.New("invalid update type")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMalformedContent   = errors.New("workspace content failed to parse")
)
