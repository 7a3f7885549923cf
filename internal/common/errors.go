// Package common defines shared constants and sentinel errors used across
// the todoapi server, its repositories and the admin tooling. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
	ErrorQuery    = errors.New("query error")

	// Service-level errors.
	ErrorInternal           = errors.New("internal error")
	ErrorValidation         = errors.New("validation error")
	ErrorForbidden          = errors.New("forbidden")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Upload errors. All of them are reported to callers as validation failures.
	ErrorNoFile          = errors.New("no file uploaded")
	ErrorUnexpectedField = errors.New("unexpected file field")
	ErrorTooManyFiles    = errors.New("too many files")
	ErrorInvalidFileType = errors.New("invalid file type")
	ErrorFileTooLarge    = errors.New("file too large")
)

// IsUploadError reports whether err is one of the upload rejection errors.
func IsUploadError(err error) bool {
	return errors.Is(err, ErrorNoFile) ||
		errors.Is(err, ErrorUnexpectedField) ||
		errors.Is(err, ErrorTooManyFiles) ||
		errors.Is(err, ErrorInvalidFileType) ||
		errors.Is(err, ErrorFileTooLarge)
}
