package ar

import (
	"errors"
	"fmt"
)

// Kind categorises failures so hosts can pick a message without string
// matching.
type Kind int

const (
	KindUnknown Kind = iota
	// Unsupported: runtime missing, declined or device incompatible.
	Unsupported
	// PermissionDenied: no camera permission.
	PermissionDenied
	// VersionMismatch: runtime or app too old.
	VersionMismatch
	// CameraUnavailable: camera busy or disconnected; the session must be
	// discarded, not paused.
	CameraUnavailable
	// GraphicsSetupFailure: shader, program or GL state error during setup.
	GraphicsSetupFailure
	// SessionFailure: any other session creation failure.
	SessionFailure
)

var kindNames = [...]string{
	KindUnknown:          "unknown",
	Unsupported:          "unsupported",
	PermissionDenied:     "permission-denied",
	VersionMismatch:      "version-mismatch",
	CameraUnavailable:    "camera-unavailable",
	GraphicsSetupFailure: "graphics-setup-failure",
	SessionFailure:       "session-failure",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a categorised failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	// Reason refines Kind for messaging, e.g. "device-not-compatible".
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind, so errors.Is(err, &Error{Kind: k})
// works as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Kind == e.Kind
}

// Errorf builds an *Error with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Reasons used by runtimes to refine Unsupported and VersionMismatch.
const (
	ReasonNotInstalled        = "not-installed"
	ReasonUserDeclinedInstall = "user-declined-install"
	ReasonDeviceNotCompatible = "device-not-compatible"
	ReasonRuntimeTooOld       = "runtime-too-old"
	ReasonAppTooOld           = "app-too-old"
)

// KindOf returns the Kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ReasonOf returns the Reason of the first *Error in err's chain.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
