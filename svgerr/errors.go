// Package svgerr defines the error values shared by the svgdoc packages.
//
// Errors carry a machine-readable Code so that callers can branch on the
// category without string matching:
//
//	doc, err := svgdoc.Load(data)
//	if svgerr.Is(err, svgerr.CodeParse) {
//		// malformed markup
//	}
//
// Markup errors are reported as *ParseError, which records where in the input
// the problem was found.
package svgerr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeParse                Code = "PARSE_ERROR"
	CodeUnsupportedFeature   Code = "UNSUPPORTED_FEATURE"
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"
	CodeResourceLimit        Code = "RESOURCE_LIMIT_EXCEEDED"
	CodeUnsupportedOperation Code = "UNSUPPORTED_OPERATION"
)

// Error is a categorized error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error wrapping cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err, or any error it wraps, has the given code.
// A *ParseError has code CodeParse, except for the UnsupportedElement and
// UnsupportedAttribute kinds which report CodeUnsupportedFeature.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode returns the code of the first categorized error in err's chain,
// or the empty string.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case *ParseError:
			return e.code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}
