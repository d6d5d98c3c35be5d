package entities

import "errors"

// Domain errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrContactNotFound = errors.New("contact request not found")
	ErrInvalidKind     = errors.New("invalid contact kind")
	ErrInvalidResponse = errors.New("invalid contact response")
)
