package posts

import "errors"

// ErrNotFound is returned when no post exists for the requested ID.
var ErrNotFound = errors.New("Post not found")

// ErrDuplicateID is returned by a backend when a generated ID is already taken.
var ErrDuplicateID = errors.New("post id already exists")

// ErrInvalidInput is the sentinel matched by every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// Messages returned to API clients for invalid writes.
const (
	MsgTitleAndBodyRequired = "title and body are required"
	MsgPatchFieldRequired   = "Provide at least one field: title or body"
	MsgTitleEmpty           = "title must not be empty"
	MsgBodyEmpty            = "body must not be empty"
)

// ValidationError describes a rejected write. Message is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// IsNotFound returns true if err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput returns true if err is or wraps a ValidationError.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
