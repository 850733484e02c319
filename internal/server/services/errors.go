package services

import "errors"

// Error taxonomy shared by the handlers. Auth failures are deliberately
// generic so callers cannot distinguish unknown users from wrong passwords,
// or expired codes from consumed ones.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrCodeInvalid        = errors.New("invalid or expired code")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrSelfDelete         = errors.New("cannot delete your own account")
)
