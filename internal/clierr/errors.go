// Package clierr defines the error taxonomy of the template pipeline and
// formats errors for the terminal with actionable remediation steps.
package clierr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// Unknown is the zero Kind.
	Unknown Kind = iota
	// RegistryUnavailable means a registry lookup errored or returned no data.
	RegistryUnavailable
	// NoVersionsFound means the registry listed no versions for a package.
	NoVersionsFound
	// InstallFailed means fetching a package into the cache failed.
	InstallFailed
	// RenderFailed means a template file could not be rendered.
	RenderFailed
	// CommandNotAllowed means a command line named a program outside the allow-list.
	CommandNotAllowed
	// ManifestMissing means no package.json entry point could be resolved.
	ManifestMissing
	// ValidationFailed means user or descriptor input failed a format check.
	ValidationFailed
	// Precondition means startup cannot continue (no home dir, no templates).
	Precondition
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case RegistryUnavailable:
		return "Registry Unavailable"
	case NoVersionsFound:
		return "No Versions Found"
	case InstallFailed:
		return "Install Failed"
	case RenderFailed:
		return "Render Failed"
	case CommandNotAllowed:
		return "Command Not Allowed"
	case ManifestMissing:
		return "Manifest Missing"
	case ValidationFailed:
		return "Validation Failed"
	case Precondition:
		return "Precondition Failed"
	default:
		return "Error"
	}
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrRegistryUnavailable = &Error{Kind: RegistryUnavailable}
	ErrNoVersionsFound     = &Error{Kind: NoVersionsFound}
	ErrInstallFailed       = &Error{Kind: InstallFailed}
	ErrRenderFailed        = &Error{Kind: RenderFailed}
	ErrCommandNotAllowed   = &Error{Kind: CommandNotAllowed}
	ErrManifestMissing     = &Error{Kind: ManifestMissing}
	ErrValidationFailed    = &Error{Kind: ValidationFailed}
	ErrPrecondition        = &Error{Kind: Precondition}
)

// Error is a categorized error with an optional cause and remediation steps.
type Error struct {
	Kind        Kind
	Message     string
	Err         error
	Remediation []string
}

// New creates an Error of the given kind.
func New(kind Kind, message string, remediation ...string) *Error {
	return &Error{Kind: kind, Message: message, Remediation: remediation}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to a cause. Returns nil for a nil cause.
func Wrap(err error, kind Kind, message string, remediation ...string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err, Remediation: remediation}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
