package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden access")
	ErrNotFound     = errors.New("resource not found")
)

// Contact request errors
var (
	ErrAlreadyAnswered  = errors.New("contact request already answered")
	ErrHostNotFound     = errors.New("host not found")
	ErrHostUnreachable  = errors.New("recipient has no live connection")
	ErrArchiveTooRecent = errors.New("contact request too recent to archive")
)

// Real-time errors
var (
	ErrMalformedSignal = errors.New("malformed signaling message")
	ErrHubClosed       = errors.New("real-time hub closed")
)
