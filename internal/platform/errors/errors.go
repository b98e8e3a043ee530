// Package errors provides the structured error type shared by repos, services
// and the HTTP layer. Import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for the wire. Values are part of the API, append only
type ErrorCode uint16

// Codes in wire order
const (
	ErrorCodeUnknown         ErrorCode = iota // unclassified, 500
	ErrorCodePanic                            // recovered by middleware
	ErrorCodeUnavailable                      // transient, a retry may succeed
	ErrorCodeTooManyRequests                  // rate limited
	ErrorCodeConflict                         // state or ownership conflict
	ErrorCodeUnauthorized
	ErrorCodeForbidden       // wrong confirmation password and similar
	ErrorCodeInvalidArgument // well formed but unusable input
	ErrorCodeValidation      // struct tag failures
	ErrorCodeJSON            // undecodable body
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
)

var statusByCode = map[ErrorCode]int{
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
	ErrorCodeTooManyRequests: http.StatusTooManyRequests,
	ErrorCodeConflict:        http.StatusConflict,
	ErrorCodeDuplicateKey:    http.StatusConflict,
	ErrorCodeUnauthorized:    http.StatusUnauthorized,
	ErrorCodeForbidden:       http.StatusForbidden,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeJSON:            http.StatusBadRequest,
	ErrorCodeNotFound:        http.StatusNotFound,
}

// HTTPStatusCode maps a code to its status, 500 for anything unlisted
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrNotFound is returned by store helpers when a query yields no row
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error carries a code, a message safe to show operators and optionally the
// offending field (or scan reject code), an operation tag and the cause
type Error struct {
	code  ErrorCode
	msg   string
	field string
	op    string
	orig  error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.orig != nil:
		return e.msg + ": " + e.orig.Error()
	default:
		return e.msg
	}
}

func (e *Error) Unwrap() error   { return e.orig }
func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Field() string   { return e.field }
func (e *Error) Op() string      { return e.op }

// Wire is the error body the API returns. The cause never reaches it
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// WireFrom builds the wire body for any error. Foreign errors are Unknown
// and nil is the zero Wire
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return Wire{Code: e.code, Message: e.msg, Field: e.field}
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf is the code of the first *Error in the chain, Unknown otherwise
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

func tag(err error, set func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	set(&c)
	return &c
}

// WithField returns a copy tagged with field. Foreign errors pass through
func WithField(err error, field string) error {
	return tag(err, func(e *Error) { e.field = field })
}

// WithOp returns a copy tagged with op. Foreign errors pass through
func WithOp(err error, op string) error {
	return tag(err, func(e *Error) { e.op = op })
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap keeps orig for errors.Is while the wire shows only msg
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

func NotFoundf(format string, a ...any) error    { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error  { return Newf(ErrorCodeInvalidArgument, format, a...) }
func JSONErrf(format string, a ...any) error     { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error    { return Newf(ErrorCodePanic, format, a...) }
func Forbiddenf(format string, a ...any) error   { return Newf(ErrorCodeForbidden, format, a...) }
func Conflictf(format string, a ...any) error    { return Newf(ErrorCodeConflict, format, a...) }
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }
