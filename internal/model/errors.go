package model

import "errors"

// Error taxonomy shared by the domain, services and the HTTP boundary.
// Callers wrap these with context and match them with errors.Is.
var (
	// ErrNotFound is returned when a room, user or question does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned for duplicate room names, question texts or emails.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized is returned when someone other than the creator attempts a creator-only action.
	ErrUnauthorized = errors.New("not the room creator")
	// ErrForbidden is returned when a non-member attempts a member-only action.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState is returned for illegal room status transitions.
	ErrInvalidState = errors.New("invalid room state")
	// ErrDuplicateJoin is returned when a user joins a room twice.
	ErrDuplicateJoin = errors.New("user already joined")
	// ErrInsufficientData is returned when the question bank cannot fill a sample.
	ErrInsufficientData = errors.New("not enough questions in the bank")
	// ErrAttemptLimit is returned when a user has used every individual quiz attempt.
	ErrAttemptLimit = errors.New("maximum quiz attempts reached")
	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
