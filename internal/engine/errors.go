package engine

import "errors"

// Validation errors surface as 4xx responses and never leave partial
// state behind
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidDomain     = errors.New("unknown task domain")
	ErrInvalidLevel      = errors.New("unknown difficulty level")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrTaskCompleted     = errors.New("task already completed")
	ErrEmptySubmission   = errors.New("submission must not be empty")
)
