package service

import "errors"

// Sentinel errors matched by the HTTP layer with errors.Is. The split between
// ErrNotFound and ErrNotActive matters: a missing row is 404, a soft-deleted
// one is 403. Login failures collapse to ErrNotAuthorized so responses never
// reveal whether the email or the password was wrong.
var (
	ErrNotFound         = errors.New("not_found")
	ErrNotActive        = errors.New("not_active")
	ErrNotValidated     = errors.New("not_validated")
	ErrLocked           = errors.New("locked")
	ErrNotAuthorized    = errors.New("not_authorized")
	ErrNotAuthenticated = errors.New("not_authenticated")
	ErrPermissionDenied = errors.New("permission_denied")
	ErrInvalidInput     = errors.New("invalid_input")
)
