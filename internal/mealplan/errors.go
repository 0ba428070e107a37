package mealplan

import "errors"

// Repository error taxonomy. Implementations wrap these sentinels so
// callers can branch with errors.Is.
var (
	// ErrStorageUnavailable means the remote store could not be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound distinguishes "none exists" from a legitimately empty
	// result, only where the caller needs to know.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied means a row-scope violation was detected.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMalformedRecord means a stored or generated record could not be
	// translated into its domain representation.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidDateRange means an archive start date failed to parse.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrNoMatchingEntity means the targeted profile or list id does not
	// exist.
	ErrNoMatchingEntity = errors.New("no matching entity")
)
