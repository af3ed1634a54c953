package models

import "errors"

// Failure taxonomy for report operations. Every failure is returned to
// the caller as a wrapped sentinel; nothing here is fatal to the process
// and no operation retries on its own.
var (
	// ErrValidation marks missing or malformed user input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized marks calls without an authenticated acting user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks calls whose acting user lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidStatus marks a status value outside the closed enum.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrClassification marks a sentiment classifier failure. Report
	// creation fails closed on it; no report is persisted.
	ErrClassification = errors.New("sentiment classification failed")

	// ErrNotFound marks a reference to a report that does not exist.
	ErrNotFound = errors.New("report not found")
)
