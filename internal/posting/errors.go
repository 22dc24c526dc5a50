package posting

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// ErrorKind classifies why a posting document could not be parsed.
//
// All parse failures are deterministic functions of the input document:
// re-parsing identical input reproduces the same kind and message.
type ErrorKind string

const (
	// KindStructure means the document does not contain the expected table
	// layout. Fatal for that document; callers should skip it and continue
	// with the next one, never abort the batch.
	KindStructure ErrorKind = "STRUCTURE"

	// KindMissingField means a required field's label was not found on the
	// posting. Optional fields (salary, hours) never produce this kind; they
	// degrade to absent values instead.
	KindMissingField ErrorKind = "MISSING_FIELD"

	// KindFormat means a present field's text does not match its expected
	// micro-format (currently only the deadline pattern is strict).
	KindFormat ErrorKind = "FORMAT"
)

// Error is the typed failure returned by Parse and its helpers.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
	stack   []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StackTrace returns the stack captured when the error was created.
func (e *Error) StackTrace() []byte {
	return e.stack
}

func newError(kind ErrorKind, message string, err error) *Error {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
		stack:   stack,
	}
}

func structureError(message string, err error) *Error {
	return newError(KindStructure, message, err)
}

func missingFieldError(message string, err error) *Error {
	return newError(KindMissingField, message, err)
}

func formatError(message string, err error) *Error {
	return newError(KindFormat, message, err)
}

// IsKind reports whether err is (or wraps) a posting *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind == kind
}
