// pkg/installer/outcome.go

package installer

import "github.com/drawthingsai/dts-util/pkg/launchd"

// OutcomeKind tags the result of a lifecycle operation.
type OutcomeKind int

const (
	KindInstalled OutcomeKind = iota
	KindAlreadyRunning
	KindUninstalled
	KindRestarted
	KindAborted
)

func (k OutcomeKind) String() string {
	switch k {
	case KindInstalled:
		return "installed"
	case KindAlreadyRunning:
		return "already_running"
	case KindUninstalled:
		return "uninstalled"
	case KindRestarted:
		return "restarted"
	case KindAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of a lifecycle operation. Fatal failures
// are returned as errors instead.
type Outcome struct {
	Kind        OutcomeKind
	Descriptor  *launchd.ServiceDescriptor
	ServicePath string
	BinaryPath  string
	Reason      string

	// Degraded means the install completed but post-install verification
	// could not confirm the service is listening. Not a failure: the
	// service may still be starting.
	Degraded bool
}
