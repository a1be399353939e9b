// pkg/dts_err/errors.go
//
// Error classification for lifecycle operations. Fatal conditions map to
// exit code 1; a user abort is not an error at all (exit 0), it is just
// marked so the CLI wrapper can skip the stack annotation.

package dts_err

import (
	"errors"
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// ErrorKind names the fatal failure classes of the installer.
type ErrorKind int

const (
	// KindSystem - OS/filesystem issues
	KindSystem ErrorKind = iota
	// KindValidation - malformed ServerConfig or join JSON, reported before any mutation
	KindValidation
	// KindPortOccupied - target port already has a listener, pre-flight
	KindPortOccupied
	// KindDownload - binary fetch transport failure
	KindDownload
	// KindActivation - service manager refused to load the service
	KindActivation
	// KindNotInstalled - restart/status with no service file present
	KindNotInstalled
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPortOccupied:
		return "port_occupied"
	case KindDownload:
		return "download"
	case KindActivation:
		return "activation"
	case KindNotInstalled:
		return "not_installed"
	default:
		return "system"
	}
}

// ClassifiedError wraps a fatal error with its kind and remediation steps.
type ClassifiedError struct {
	Kind        ErrorKind
	Message     string
	Cause       error
	Remediation []string
}

func (e *ClassifiedError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf("\n\nCause: %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// New constructs a classified fatal error.
func New(kind ErrorKind, message string) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: message}
}

// Wrap constructs a classified fatal error around a cause.
func Wrap(kind ErrorKind, cause error, message string) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: message, Cause: cause}
}

// WithRemediation attaches concrete follow-up commands to the error.
func (e *ClassifiedError) WithRemediation(steps ...string) *ClassifiedError {
	e.Remediation = append(e.Remediation, steps...)
	return e
}

// KindOf extracts the kind from any error, defaulting to KindSystem.
func KindOf(err error) ErrorKind {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindSystem
}

// GetExitCode maps an error to the process exit status: 0 for nil or a
// user abort, 1 for every fatal error.
func GetExitCode(err error) int {
	if err == nil || IsExpectedUserError(err) {
		return 0
	}
	return 1
}

// UserError marks an error as an expected user decision (e.g. declining
// a confirmation) for softer UX handling.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}

// NewExpectedError wraps an error as an expected user decision.
func NewExpectedError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

// NewExpectedErrorf formats an expected user error.
func NewExpectedErrorf(format string, args ...interface{}) error {
	return &UserError{cause: cerr.Newf(format, args...)}
}

// IsExpectedUserError checks if the error is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}
