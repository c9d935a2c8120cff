package validate

import (
	"errors"
	"fmt"
)

// Rejection taxonomy. Handlers map these to HTTP statuses with errors.Is;
// the wrapped Rejection carries the message shown to the submitter.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrPolicyViolation  = errors.New("policy violation")
	ErrConflict         = errors.New("track already exists")
	ErrCapacityExceeded = errors.New("crate full")
)

// Rejection pairs a taxonomy sentinel with a user-facing message.
type Rejection struct {
	kind    error
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func (r *Rejection) Unwrap() error { return r.kind }

func reject(kind error, format string, args ...any) error {
	return &Rejection{kind: kind, Message: fmt.Sprintf(format, args...)}
}
