package pkgerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by stores for a missing key or upload.
	ErrNotFound = errors.New("resource not found")

	// ErrQuotaExceeded is returned by size-limited stores when a write would
	// push the stored bytes over the configured quota. The previous value is
	// left untouched.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Type says who is at fault: the server, a rule of the ingestion flow, or the
// request itself.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

var typeNames = [...]string{
	TypeServer:     "ERROR_TYPE_SERVER",
	TypeBusiness:   "ERROR_TYPE_BUSINESS",
	TypeValidation: "ERROR_TYPE_VALIDATION",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "ERROR_TYPE_UNKNOWN"
	}
	return typeNames[t]
}

// Code picks the HTTP status an error is answered with.
type Code int

const (
	CodeInternal      Code = iota
	CodeInvalidFormat      // unreadable multipart body
	CodeInvalidInput       // missing file or bad parameter
	CodeNotFound           // unknown upload
	CodeConflict           // upload already in flight
	CodeTooLarge           // file above ingest.upload.max_bytes
)

type codeInfo struct {
	name   string
	status int
}

var codes = map[Code]codeInfo{
	CodeInternal:      {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat: {"ERROR_CODE_INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:  {"ERROR_CODE_INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:      {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeConflict:      {"ERROR_CODE_CONFLICT", http.StatusConflict},
	CodeTooLarge:      {"ERROR_CODE_TOO_LARGE", http.StatusRequestEntityTooLarge},
}

func (c Code) info() codeInfo {
	if ci, ok := codes[c]; ok {
		return ci
	}
	return codes[CodeInternal]
}

func (c Code) String() string {
	return c.info().name
}

// Error carries the message shown to the client next to the cause that is
// logged, plus the type and code the HTTP edge maps from.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	default:
		return e.code.String()
	}
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("%s %s: msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string {
	return e.msg
}

// Reason is the cause's text, or empty when the error has no cause.
func (e *Error) Reason() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *Error) Type() Type {
	return e.errType
}

func (e *Error) Code() Code {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) StatusCode() int {
	return e.code.info().status
}

// As returns the *Error in err's chain.
func As(err error) (*Error, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

func newError(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer hides err behind a generic message.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

func NewInvalidInput(err error) error {
	return newError(err, "validation error", TypeValidation, CodeInvalidInput)
}

func NewInvalidFormat() error {
	return newError(nil, "invalid request body", TypeValidation, CodeInvalidFormat)
}

func NewTooLarge(err error) error {
	return newError(err, "payload too large", TypeValidation, CodeTooLarge)
}

// NewNotFound wraps ErrNotFound, so errors.Is still matches it.
func NewNotFound(msg string) error {
	return newError(ErrNotFound, msg, TypeBusiness, CodeNotFound)
}

// NewConflict rejects a request that clashes with work already in progress.
func NewConflict(msg string) error {
	return newError(nil, msg, TypeBusiness, CodeConflict)
}
