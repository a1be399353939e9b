// pkg/conflict/conflict.go

// Package conflict detects pre-existing installations and drives their
// interactive-or-quiet resolution before an install mutates anything.
package conflict

import (
	"context"
	"fmt"
	"os"

	"github.com/drawthingsai/dts-util/pkg/interaction"
	"github.com/drawthingsai/dts-util/pkg/launchd"
	"github.com/drawthingsai/dts-util/pkg/process"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Report aggregates every sign of an existing installation. Ephemeral,
// produced per run, never persisted.
type Report struct {
	MatchingServiceFiles []string
	RunningProcessLines  []string
	PortInUse            bool
	PortOwnerInfo        string
}

// Empty reports that no conflict was detected.
func (r *Report) Empty() bool {
	return len(r.MatchingServiceFiles) == 0 && len(r.RunningProcessLines) == 0 && !r.PortInUse
}

// Resolution is the outcome of resolving a conflict report.
type Resolution struct {
	Proceed      bool
	DidUninstall bool
}

type serviceFinder interface {
	FindAllVariants(ctx context.Context, patterns []string) []string
}

type processProber interface {
	FindRunningInstances(ctx context.Context, namePattern string) []process.Instance
}

type portProber interface {
	IsPortFree(ctx context.Context, port int) bool
	DescribePortOwner(ctx context.Context, port int) string
}

// Resolver detects conflicts across the registry, process table, and
// default port, and asks the user what to do about them.
type Resolver struct {
	Registry  serviceFinder
	Processes processProber
	Ports     portProber
	Confirm   interaction.Confirmer

	// UninstallExisting tears down the discovered installation; injected
	// by the orchestrator so resolution can reuse the full uninstall path.
	UninstallExisting func(ctx context.Context) error

	// ProcessPattern matches running server instances.
	ProcessPattern string
	// DefaultPort is probed for an existing listener.
	DefaultPort int
}

// Detect aggregates service files, running processes, and port state.
func (r *Resolver) Detect(ctx context.Context) *Report {
	log := otelzap.Ctx(ctx)
	log.Info("Checking for existing services")

	report := &Report{
		MatchingServiceFiles: r.Registry.FindAllVariants(ctx, launchd.LegacyLabelGlobs),
	}

	for _, inst := range r.Processes.FindRunningInstances(ctx, r.ProcessPattern) {
		report.RunningProcessLines = append(report.RunningProcessLines, inst.CommandLine)
	}

	if !r.Ports.IsPortFree(ctx, r.DefaultPort) {
		report.PortInUse = true
		report.PortOwnerInfo = r.Ports.DescribePortOwner(ctx, r.DefaultPort)
	}

	log.Debug("Conflict detection finished",
		zap.Int("service_files", len(report.MatchingServiceFiles)),
		zap.Int("running_processes", len(report.RunningProcessLines)),
		zap.Bool("port_in_use", report.PortInUse))
	return report
}

// Resolve decides whether the install proceeds. An empty report
// proceeds immediately. Otherwise the user is asked once, defaulting to
// "yes, uninstall" (quiet mode takes that default); declining triggers
// a second gate defaulting to abort, so a stray Enter press can never
// leave two instances racing for the same port.
func (r *Resolver) Resolve(ctx context.Context, report *Report) (Resolution, error) {
	log := otelzap.Ctx(ctx)

	if report.Empty() {
		return Resolution{Proceed: true}, nil
	}

	r.describe(report)

	if r.Confirm.Confirm(ctx, "Found an existing Draw Things gRPC installation. Uninstall it now?", true) {
		if err := r.UninstallExisting(ctx); err != nil {
			return Resolution{}, err
		}
		log.Info("Existing installation removed, continuing with fresh installation")
		return Resolution{Proceed: true, DidUninstall: true}, nil
	}

	if r.Confirm.Confirm(ctx, "Proceed without uninstalling? This might cause issues.", false) {
		log.Warn("Proceeding without uninstalling the existing installation")
		return Resolution{Proceed: true}, nil
	}

	return Resolution{}, nil
}

func (r *Resolver) describe(report *Report) {
	if len(report.MatchingServiceFiles) > 0 {
		fmt.Fprintln(os.Stderr, "\nFound existing service files:")
		for _, path := range report.MatchingServiceFiles {
			fmt.Fprintf(os.Stderr, "  - %s\n", path)
		}
	}
	if len(report.RunningProcessLines) > 0 {
		fmt.Fprintln(os.Stderr, "\nFound running gRPC processes:")
		for _, line := range report.RunningProcessLines {
			fmt.Fprintf(os.Stderr, "  - %s\n", line)
		}
	}
	if report.PortInUse {
		fmt.Fprintf(os.Stderr, "\nPort %d is already in use!\n", r.DefaultPort)
		if report.PortOwnerInfo != "" {
			fmt.Fprintf(os.Stderr, "Process using the port:\n%s\n", report.PortOwnerInfo)
		}
	}
}
