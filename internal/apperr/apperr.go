// Package apperr defines the error taxonomy shared by the query pipeline.
//
// Every failure that reaches the HTTP boundary is either an *Error carrying a
// Kind, or an arbitrary error that the boundary treats as KindUnhandled.
// Validation stages return *Error values instead of panicking so callers can
// propagate them with ordinary error returns.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
)

// Kind classifies an error for status mapping and logging.
type Kind string

const (
	KindInvalidLocale     Kind = "invalid_locale"
	KindInvalidFilter     Kind = "invalid_filter"
	KindInvalidPagination Kind = "invalid_pagination"
	KindNotFound          Kind = "not_found"
	KindRateLimited       Kind = "rate_limited"
	KindStore             Kind = "store_error"
	KindUnhandled         Kind = "unhandled"
)

// Status returns the HTTP status for k.
func (k Kind) Status() int {
	switch k {
	case KindInvalidLocale, KindInvalidFilter, KindInvalidPagination:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is the pipeline's error value. Messages holds one entry per violated
// constraint for validation kinds and a single entry otherwise.
type Error struct {
	Kind     Kind
	Messages []string
	Cause    error

	// Location is "file:line function" of the constructor's caller.
	Location string
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Cause != nil && msg == "" {
		msg = e.Cause.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Status is shorthand for e.Kind.Status().
func (e *Error) Status() int { return e.Kind.Status() }

// New builds an Error of kind k, recording the caller as Location.
func New(k Kind, messages ...string) *Error {
	return &Error{Kind: k, Messages: messages, Location: caller(2)}
}

// Wrap builds an Error of kind k whose message is cause's text.
func Wrap(k Kind, cause error) *Error {
	return &Error{Kind: k, Messages: []string{cause.Error()}, Cause: cause, Location: caller(2)}
}

func InvalidLocale(messages ...string) *Error     { return at(KindInvalidLocale, messages) }
func InvalidFilter(messages ...string) *Error     { return at(KindInvalidFilter, messages) }
func InvalidPagination(messages ...string) *Error { return at(KindInvalidPagination, messages) }
func NotFound(message string) *Error              { return at(KindNotFound, []string{message}) }

// Store wraps a store failure. The store's own text becomes the message.
func Store(cause error) *Error {
	return &Error{Kind: KindStore, Messages: []string{cause.Error()}, Cause: cause, Location: caller(2)}
}

func at(k Kind, messages []string) *Error {
	return &Error{Kind: k, Messages: messages, Location: caller(3)}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindUnhandled for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnhandled
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}

// Violations accumulates validation messages so a validator can report every
// failing field at once.
type Violations []string

func (v *Violations) Add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

// Err returns nil when nothing was recorded, otherwise an Error of kind k.
// The Location is the validator that called Err.
func (v Violations) Err(k Kind) error {
	if len(v) == 0 {
		return nil
	}
	msgs := make([]string, len(v))
	copy(msgs, v)
	return &Error{Kind: k, Messages: msgs, Location: caller(2)}
}

func caller(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	loc := fmt.Sprintf("%s:%d", filepath.Base(file), line)
	if fn := runtime.FuncForPC(pc); fn != nil {
		loc += " " + shortFuncName(fn.Name())
	}
	return loc
}

// shortFuncName trims the import path from a runtime function name.
func shortFuncName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
