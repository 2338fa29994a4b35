package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for retry decisions and HTTP mapping.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindTransientIO Kind = "transient_io"
	KindTerminalIO  Kind = "terminal_io"
	KindAssembly    Kind = "assembly"
)

// Codes reported by storage and metadata backends.
const (
	CodeForbidden          = "403"
	CodeNotFound           = "404"
	CodeTimeout            = "408"
	CodeConflict           = "409"
	CodeInternal           = "500"
	CodeBadGateway         = "502"
	CodeUnavailable        = "503"
	CodeGatewayTimeout     = "504"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
)

// Error is the structured error shared by storage, metadata and assembly code.
type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Op       string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil && e.Err.Error() != msg {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s (attempts=%d)", msg, e.Attempts)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a kind, code and operation to err.
func Wrap(err error, kind Kind, code, op string) *Error {
	return &Error{Kind: kind, Code: code, Op: op, Err: err}
}

// Validation reports rejected user input. Validation errors are never retried.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Transient wraps a failure that may succeed when repeated.
func Transient(code, op string, err error) *Error {
	return &Error{Kind: KindTransientIO, Code: code, Op: op, Err: err}
}

// Terminal wraps a failure that repeating will not fix.
func Terminal(code, op string, err error) *Error {
	return &Error{Kind: KindTerminalIO, Code: code, Op: op, Err: err}
}

// NotFound is a terminal error with the 404 code.
func NotFound(op, message string) *Error {
	return &Error{Kind: KindTerminalIO, Code: CodeNotFound, Op: op, Message: message}
}

// Assembly reports a malformed template table.
func Assembly(message string) *Error {
	return &Error{Kind: KindAssembly, Message: message}
}

// As extracts the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of the outermost *Error, or "" when none.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return ""
}

// CodeOf returns the first non-empty code in err's chain.
func CodeOf(err error) string {
	for err != nil {
		var ae *Error
		if !errors.As(err, &ae) || ae == nil {
			return ""
		}
		if ae.Code != "" {
			return ae.Code
		}
		err = ae.Err
	}
	return ""
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var ae *Error
		if !errors.As(err, &ae) || ae == nil {
			return false
		}
		if ae.Kind == kind {
			return true
		}
		err = ae.Err
	}
	return false
}

// IsNotFound reports whether err carries the 404 code.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// HTTPStatus maps err to the status code returned by handlers.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	}
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindTransientIO:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
