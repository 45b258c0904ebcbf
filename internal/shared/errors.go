package shared

import "errors"

// Sentinel errors shared across modules. Repositories translate driver
// failures into these so services and handlers can branch with errors.Is.
var (
	// ErrNotFound reports a row that does not exist or belongs to
	// another store.
	ErrNotFound = errors.New("shared: not found")
	// ErrInvalidCredentials reports a failed username/password check.
	ErrInvalidCredentials = errors.New("shared: invalid credentials")
	// ErrCSRFTokenMissing reports a form post that carried no CSRF token.
	ErrCSRFTokenMissing = errors.New("shared: csrf token missing")
	// ErrCSRFTokenMismatch reports a CSRF token that does not match the
	// session copy.
	ErrCSRFTokenMismatch = errors.New("shared: csrf token mismatch")
)
