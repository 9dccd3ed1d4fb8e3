package tutor

import "errors"

// Rejected mutations. The state is left untouched when any of these is returned.
var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrUnknownLesson   = errors.New("unknown lesson")
	ErrLessonLocked    = errors.New("lesson is locked")
	ErrCheckFailed     = errors.New("submission did not pass the lesson check")
	ErrInvalidUsername = errors.New("username must not be empty")
	ErrInvalidTheme    = errors.New("unsupported theme")
	ErrInvalidImport   = errors.New("import data is not a progress record")
)
