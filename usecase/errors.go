package usecase

import "errors"

// Error kinds. Handlers map them onto HTTP status codes.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error carries a client-facing message for one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }
func authError(msg string) error { return &Error{Kind: ErrAuth, Message: msg} }
func permissionError(msg string) error { return &Error{Kind: ErrPermission, Message: msg} }
func notFoundError(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }
func conflictError(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// Message returns the client-facing text of err, or "" for errors that are not ours.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

const msgInvalidCredentials = "Invalid credentials"
