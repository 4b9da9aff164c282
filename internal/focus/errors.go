package focus

import "errors"

// Request error taxonomy. Handlers map these to HTTP statuses with
// errors.Is; the wrapped message is what the client sees.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrInvalidState = errors.New("invalid state")
	ErrUpstream     = errors.New("upstream failure")
)

type RequestError struct {
	Kind    error
	Message string
}

func (e *RequestError) Error() string { return e.Message }
func (e *RequestError) Unwrap() error { return e.Kind }

func validation(msg string) error   { return &RequestError{Kind: ErrValidation, Message: msg} }
func invalidState(msg string) error { return &RequestError{Kind: ErrInvalidState, Message: msg} }
func notFound(msg string) error     { return &RequestError{Kind: ErrNotFound, Message: msg} }
func forbidden(msg string) error    { return &RequestError{Kind: ErrForbidden, Message: msg} }

// BreakLockedError rejects a break start before the unlock delay has
// elapsed, carrying the remaining countdown for the client.
type BreakLockedError struct {
	UnlockInSeconds int64
}

func (e *BreakLockedError) Error() string {
	return "Breaks unlock after the first 60 minutes of a session."
}

func (e *BreakLockedError) Unwrap() error { return ErrInvalidState }
