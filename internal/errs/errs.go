// Package errs defines the error taxonomy surfaced by the orchestration
// core. Every error carries a Kind so the HTTP layer can map it to a status
// code without string matching.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindInvalidTransition
	KindProvider
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func Authorizationf(format string, args ...any) *Error {
	return newf(KindAuthorization, format, args...)
}

// InvalidTransitionf names current and requested state so a client can
// explain the rejection.
func InvalidTransitionf(from, to string) *Error {
	return newf(KindInvalidTransition, "invalid state transition from %s to %s", from, to)
}

// Provider wraps a payment adapter failure. The message stays generic to
// avoid leaking processor internals to clients.
func Provider(op string, err error) *Error {
	return &Error{Kind: KindProvider, Msg: "payment provider " + op + " failed", Err: err}
}

// KindOf extracts the Kind from an error chain, KindUnknown if absent.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool          { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool        { return KindOf(err) == KindValidation }
func IsAuthorization(err error) bool     { return KindOf(err) == KindAuthorization }
func IsInvalidTransition(err error) bool { return KindOf(err) == KindInvalidTransition }
func IsProvider(err error) bool          { return KindOf(err) == KindProvider }
