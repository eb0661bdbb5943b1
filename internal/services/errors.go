package services

import "errors"

// Errors returned by the services. They are wrapped with context, match them with errors.Is.
var (
	// ErrValidation is returned when input is rejected before any write
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned when a role change is not allowed from the current role
	ErrInvalidTransition = errors.New("invalid role transition")
	// ErrSelfActionDenied is returned when a user tries to change their own role
	ErrSelfActionDenied = errors.New("users cannot change their own role")
	// ErrNotFound is returned when the preset does not exist or was deleted
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when nobody is signed in
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the caller may not act on the resource
	ErrForbidden = errors.New("insufficient permissions")
)
