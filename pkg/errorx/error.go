package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// Is reports whether the target is an Error carrying the same code, so
// callers can compare by category with errors.Is regardless of the message.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}

	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// Kind returns an Error carrying only the code, usable as an errors.Is target.
func Kind(code Code) Error {
	return Error{Code: code}
}

// CodeOf returns the code of err if it is an Error, otherwise Unknown's code.
func CodeOf(err error) Code {
	var e Error
	if errors.As(err, &e) {
		return e.Code
	}

	return Unknown.Code
}
