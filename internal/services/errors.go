package services

import "errors"

// Business failures are returned as values so the web layer can render a
// user-facing message; anything not matching one of these sentinels is an
// unexpected storage error.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrAlreadyMember    = errors.New("already a member")
	ErrOwnerCannotLeave = errors.New("owner cannot leave")
	ErrInvalidResponse  = errors.New("invalid response")
	ErrNoFields         = errors.New("no fields to update")
)
