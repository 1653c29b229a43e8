// ABOUTME: Error taxonomy for haptic playback
// ABOUTME: Typed errors carry an ErrorKind so callers can assert on cause
package haptic

import (
	"errors"
	"fmt"
)

// ErrorKind classifies playback failures
type ErrorKind int

const (
	// KindUnknown is returned by KindOf for errors outside this taxonomy
	KindUnknown ErrorKind = iota
	// InvalidHandle means the controller is nil, uninitialized or released
	InvalidHandle
	// NoClipLoaded means play was requested before a successful load
	NoClipLoaded
	// MalformedClip means the decoder rejected the clip data
	MalformedClip
	// ActuatorUnavailable means the platform could not start or stop output
	ActuatorUnavailable
	// ResourceExhausted means no actuator session could be allocated
	ResourceExhausted
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case InvalidHandle:
		return "invalid handle"
	case NoClipLoaded:
		return "no clip loaded"
	case MalformedClip:
		return "malformed clip"
	case ActuatorUnavailable:
		return "actuator unavailable"
	case ResourceExhausted:
		return "resource exhausted"
	default:
		return "unknown"
	}
}

// Sentinel errors for use with errors.Is
var (
	ErrInvalidHandle       = &Error{Kind: InvalidHandle}
	ErrNoClipLoaded        = &Error{Kind: NoClipLoaded}
	ErrMalformedClip       = &Error{Kind: MalformedClip}
	ErrActuatorUnavailable = &Error{Kind: ActuatorUnavailable}
	ErrResourceExhausted   = &Error{Kind: ResourceExhausted}
)

// Error is a playback error with its operation and cause
type Error struct {
	Op   string // "create", "load", "play", "stop", "release"
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels compare by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the ErrorKind carried by err, or KindUnknown
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(op string, kind ErrorKind, format string, args ...interface{}) *Error {
	var cause error
	if format != "" {
		cause = fmt.Errorf(format, args...)
	}
	return &Error{Op: op, Kind: kind, Err: cause}
}
