package authutils

import "errors"

// Kinds of failure. Compare with errors.Is; the concrete value returned by
// this module is always an *Error wrapping one of these.
var (
	// ErrInvalidScope indicates the caller supplied a scope that is not of the
	// form "scheme:path". It is a usage error and is never skipped.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrTokenFormat indicates raw content is not a well-formed token.
	ErrTokenFormat = errors.New("malformed token")

	// ErrTokenVerification indicates a token decoded but its signature or
	// issuer could not be verified.
	ErrTokenVerification = errors.New("token verification failed")

	// ErrIO indicates a credential file could not be read.
	ErrIO = errors.New("credential file unreadable")

	// ErrNotFound indicates no candidate source produced a valid credential.
	ErrNotFound = errors.New("no valid credential found")

	// ErrPlatform indicates a discovery mechanism is not available on the
	// current platform.
	ErrPlatform = errors.New("unsupported on this platform")

	// ErrAcquisition indicates the external token helper failed.
	ErrAcquisition = errors.New("token acquisition failed")
)

// Error is a credential discovery failure.
type Error struct {
	// Kind is one of the Err* sentinels in this package.
	Kind error
	// Msg is the human readable description.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

// NewError builds an *Error of the given kind.
func NewError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return e.Kind.Error()
	case e.Msg == "":
		return e.Kind.Error() + ": " + e.Err.Error()
	case e.Err == nil:
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsSkippable reports whether err describes a single bad candidate (a
// malformed, unverifiable or unreadable credential) that a discovery loop may
// step over when asked to skip errors.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrTokenFormat) ||
		errors.Is(err, ErrTokenVerification) ||
		errors.Is(err, ErrIO)
}
