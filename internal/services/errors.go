package services

import "errors"

// Sentinel errors mapped to HTTP statuses in the handler layer.
var (
	// InvalidArgument
	ErrSelfAction     = errors.New("operation cannot target yourself")
	ErrInvalidContent = errors.New("message content must be non-empty and at most 2000 characters")
	ErrInvalidReason  = errors.New("report reason must be non-empty and at most 1000 characters")
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrInvalidName    = errors.New("invalid name")
	ErrWeakPassword   = errors.New("password must be at least 8 characters")
	ErrMissingField   = errors.New("missing required field")

	// Unauthorized
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Forbidden
	ErrNotHost = errors.New("only the session host may perform this action")

	// NotFound
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrNotAttendee     = errors.New("user is not an attendee of this session")

	// Conflict
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrAlreadyBlocked   = errors.New("user is already blocked")
	ErrAlreadyAttendee  = errors.New("user has already joined this session")
	ErrAlreadyInvited   = errors.New("user is already invited to this session")
	ErrEmailTaken       = errors.New("email already registered")

	// InvalidState
	ErrInvalidSessionState = errors.New("invalid session status transition")
	ErrNotInvited          = errors.New("session is private and the user is not invited")

	// Too many requests
	ErrRateLimited = errors.New("too many messages, slow down")
)
