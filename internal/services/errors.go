package services

import "errors"

// Sentinel errors returned by the services. Handlers map these onto
// HTTP status codes; anything else is an unexpected failure (500).
var (
	// ErrNotFound means the id does not resolve under the operation's
	// visibility filter (e.g. an inactive user, a soft-deleted post).
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness rule was violated, e.g. registering
	// an email already taken by any user, active or not.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized means the presented credentials are wrong.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrForbidden means the identity is valid but the account is not
	// allowed to proceed (inactive account).
	ErrForbidden = errors.New("forbidden")
)
