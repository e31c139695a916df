// Package apperr defines the closed set of failure kinds the API can report.
// Every error that leaves a repository, the auth core or a handler is either
// an *Error or gets classified as Unexpected by KindOf.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-stack/stack"
	"github.com/rs/zerolog"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindAlreadyExists
	KindInvalidInput
	KindInvalidToken
	KindInvalidCredentials
	KindStorage
	KindHashing
)

var kindNames = map[Kind]string{
	KindUnexpected:         "Unexpected",
	KindNotFound:           "NotFound",
	KindAlreadyExists:      "AlreadyExists",
	KindInvalidInput:       "InvalidInput",
	KindInvalidToken:       "InvalidToken",
	KindInvalidCredentials: "InvalidCredentials",
	KindStorage:            "Storage",
	KindHashing:            "Hashing",
}

var kindCodes = map[Kind]string{
	KindUnexpected:         "unexpected",
	KindNotFound:           "not_found",
	KindAlreadyExists:      "already_exists",
	KindInvalidInput:       "invalid_input",
	KindInvalidToken:       "invalid_token",
	KindInvalidCredentials: "invalid_credentials",
	KindStorage:            "storage",
	KindHashing:            "hashing",
}

var kindStatus = map[Kind]int{
	KindUnexpected:         http.StatusInternalServerError,
	KindNotFound:           http.StatusNotFound,
	KindAlreadyExists:      http.StatusConflict,
	KindInvalidInput:       http.StatusBadRequest,
	KindInvalidToken:       http.StatusUnauthorized,
	KindInvalidCredentials: http.StatusUnauthorized,
	KindStorage:            http.StatusInternalServerError,
	KindHashing:            http.StatusInternalServerError,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return kindNames[KindUnexpected]
}

// Code is the machine-readable tag sent as the envelope's "code" field.
func (k Kind) Code() string {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return kindCodes[KindUnexpected]
}

func (k Kind) Status() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Internal reports whether the kind is a server fault whose message must not
// reach clients.
func (k Kind) Internal() bool {
	return k.Status() >= http.StatusInternalServerError
}

type Error struct {
	Kind    Kind
	Message string
	Wrapped error
	Stack   Trace
}

func (e *Error) Error() string {
	if e.Wrapped == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Trace lists the frames above the constructor call, innermost first.
type Trace []Frame

type Frame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (t Trace) MarshalZerologArray(a *zerolog.Array) {
	for _, f := range t {
		a.Object(f)
	}
}

func (f Frame) MarshalZerologObject(e *zerolog.Event) {
	e.Str("function", f.Function).Str("file", f.File).Int("line", f.Line)
}

// MarshalStack is zerolog's ErrorStackMarshaler: .Stack() on an event logs
// the Trace of the first *Error in the chain.
func MarshalStack(err error) interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Stack
	}
	return nil
}

// capture records the stack from the frame skip levels above capture.
func capture(skip int) Trace {
	calls := stack.Trace().TrimBelow(stack.Caller(skip)).TrimRuntime()
	trace := make(Trace, 0, len(calls))
	for _, c := range calls {
		fr := c.Frame()
		trace = append(trace, Frame{File: fr.File, Line: fr.Line, Function: fr.Function})
	}
	return trace
}

func newError(skip int, kind Kind, wrapped error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Wrapped: wrapped,
		Stack:   capture(skip + 1),
	}
}

// New creates an error of the given kind. The message is shown to clients for
// 4xx kinds, so it must never contain secrets or hash output.
func New(kind Kind, wrapped error, format string, args ...interface{}) error {
	return newError(2, kind, wrapped, format, args...)
}

func NotFound(resource string) error {
	return newError(2, KindNotFound, nil, "%s not found", resource)
}

func AlreadyExists(resource string) error {
	return newError(2, KindAlreadyExists, nil, "%s already exists", resource)
}

func InvalidInput(format string, args ...interface{}) error {
	return newError(2, KindInvalidInput, nil, format, args...)
}

func InvalidToken(wrapped error) error {
	return newError(2, KindInvalidToken, wrapped, "invalid token")
}

func InvalidCredentials(wrapped error) error {
	return newError(2, KindInvalidCredentials, wrapped, "invalid credentials")
}

func Storage(wrapped error, format string, args ...interface{}) error {
	return newError(2, KindStorage, wrapped, format, args...)
}

func Hashing(wrapped error, format string, args ...interface{}) error {
	return newError(2, KindHashing, wrapped, format, args...)
}

func Unexpected(wrapped error, format string, args ...interface{}) error {
	return newError(2, KindUnexpected, wrapped, format, args...)
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage is the text safe to return to a client for err.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	switch e.Kind {
	case KindStorage:
		return "database error"
	case KindHashing:
		return "password hashing failed"
	case KindUnexpected:
		return "internal server error"
	case KindInvalidToken:
		return "invalid token"
	case KindInvalidCredentials:
		return "invalid credentials"
	}
	return e.Message
}
