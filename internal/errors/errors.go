// Package errors defines the shell's typed error taxonomy.
//
// Every failure a command can hit is classified by Code so the dispatcher can
// pick how to report it (usage text, remediation hint, plain log line).
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a shell error.
type Code int

const (
	CodeInternal Code = iota
	// CodeResolution: unknown context or command.
	CodeResolution
	// CodeValidation: arity mismatch or type coercion failure.
	CodeValidation
	// CodePrecondition: missing active credential, node not connected.
	CodePrecondition
	// CodeRemote: the remote node rejected or failed the call.
	CodeRemote
	// CodeAborted: the operator canceled an interactive flow.
	CodeAborted
)

var codeNames = map[Code]string{
	CodeInternal:     "internal",
	CodeResolution:   "resolution",
	CodeValidation:   "validation",
	CodePrecondition: "precondition",
	CodeRemote:       "remote",
	CodeAborted:      "aborted",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is a typed shell error that carries a Code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost typed error in err's chain,
// or CodeInternal when there is none.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
