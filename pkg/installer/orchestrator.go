// pkg/installer/orchestrator.go

// Package installer is the top-level lifecycle state machine: Install,
// Uninstall, Restart, Status. It composes the probes, the service
// registry, the install-path resolver, and the injected fetch and
// activation collaborators. Execution is sequential and synchronous;
// fixed settle delays after state-changing operations stand in for
// polling. Detection runs immediately before mutation, accepting the
// narrow TOCTOU window of a single-user local tool.
package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/drawthingsai/dts-util/pkg/conflict"
	"github.com/drawthingsai/dts-util/pkg/config"
	"github.com/drawthingsai/dts-util/pkg/dts_err"
	"github.com/drawthingsai/dts-util/pkg/download"
	"github.com/drawthingsai/dts-util/pkg/installpath"
	"github.com/drawthingsai/dts-util/pkg/interaction"
	"github.com/drawthingsai/dts-util/pkg/launchd"
	"github.com/drawthingsai/dts-util/pkg/portcheck"
	"github.com/drawthingsai/dts-util/pkg/process"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	// processPattern matches both the CLI binary and its helpers, the
	// way the server names its processes.
	processPattern = "gRPCServer"
	// binaryProcess is the exact process name used for the existence check.
	binaryProcess = config.BinaryName

	settleShort = 1 * time.Second
	settleLong  = 2 * time.Second
)

type serviceRegistry interface {
	Find(label string) string
	FindAllVariants(ctx context.Context, patterns []string) []string
	Write(ctx context.Context, d *launchd.ServiceDescriptor) (string, error)
	Remove(ctx context.Context, path string) error
}

type serviceManager interface {
	Activate(ctx context.Context, path string) error
	Deactivate(ctx context.Context, path, label string)
	Unload(ctx context.Context, path string) error
}

type processProber interface {
	FindRunningInstances(ctx context.Context, namePattern string) []process.Instance
	TerminateMatching(ctx context.Context, namePattern string)
}

type portProber interface {
	IsPortFree(ctx context.Context, port int) bool
	DescribePortOwner(ctx context.Context, port int) string
	IsListening(ctx context.Context, port int, processHint string) bool
}

type installResolver interface {
	Resolve(ctx context.Context) (installpath.Target, error)
}

type binaryFetcher interface {
	LatestReleaseURL(ctx context.Context) string
	Fetch(ctx context.Context, url, dir string) (string, error)
}

// Orchestrator drives one lifecycle operation per invocation.
type Orchestrator struct {
	Config    *config.ServerConfig
	Registry  serviceRegistry
	Manager   serviceManager
	Processes processProber
	Ports     portProber
	Resolver  installResolver
	Fetcher   binaryFetcher
	Confirm   interaction.Confirmer

	// BinaryLocations are swept on uninstall.
	BinaryLocations []string

	// Sleep is replaceable in tests; settle delays otherwise dominate
	// the test suite's runtime.
	Sleep func(time.Duration)
}

// New wires the orchestrator with its production collaborators.
func New(cfg *config.ServerConfig) (*Orchestrator, error) {
	registry, err := launchd.NewRegistry()
	if err != nil {
		return nil, err
	}
	confirm := &interaction.TerminalConfirmer{Quiet: cfg.Quiet}
	resolver, err := installpath.NewResolver(confirm)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		Config:    cfg,
		Registry:  registry,
		Manager:   &launchd.Manager{},
		Processes: &process.Probe{},
		Ports:     &portcheck.Probe{},
		Resolver:  resolver,
		Fetcher:   download.NewFetcher(),
		Confirm:   confirm,
		BinaryLocations: []string{
			filepath.Join(resolver.PreferredDir, config.BinaryName),
			filepath.Join(resolver.FallbackDir, config.BinaryName),
		},
		Sleep: time.Sleep,
	}, nil
}

// Install runs the full install path: pre-flight port check, conflict
// resolution, fetch, placement, service write + activation, and
// post-install verification.
func (o *Orchestrator) Install(ctx context.Context) (Outcome, error) {
	log := otelzap.Ctx(ctx)

	if o.Config.NoTLS {
		if !o.Confirm.Confirm(ctx, "--no-tls disables encryption. Use only in trusted networks! Continue?", false) {
			return o.abort(ctx, "installation cancelled")
		}
	}

	// Pre-flight: the target port must be free before anything mutates.
	if !o.Ports.IsPortFree(ctx, o.Config.Port) {
		e := dts_err.New(dts_err.KindPortOccupied,
			fmt.Sprintf("port %d is already in use", o.Config.Port))
		if owner := o.Ports.DescribePortOwner(ctx, o.Config.Port); owner != "" {
			e.Message += "\n\nProcess using the port:\n" + owner
		}
		return Outcome{}, e.WithRemediation(
			"Stop the process using the port, or",
			fmt.Sprintf("install with a different port: dts-util install -p %d", o.Config.Port+1),
		)
	}

	resolver := &conflict.Resolver{
		Registry:          o.Registry,
		Processes:         o.Processes,
		Ports:             o.Ports,
		Confirm:           o.Confirm,
		UninstallExisting: o.teardown,
		ProcessPattern:    processPattern,
		DefaultPort:       config.DefaultPort,
	}
	resolution, err := resolver.Resolve(ctx, resolver.Detect(ctx))
	if err != nil {
		return Outcome{}, err
	}
	if !resolution.Proceed {
		return o.abort(ctx, "installation cancelled")
	}

	scratch, err := os.MkdirTemp("", "dts-util-")
	if err != nil {
		return Outcome{}, cerr.Wrap(err, "create scratch directory")
	}
	defer os.RemoveAll(scratch)

	fetched, err := o.Fetcher.Fetch(ctx, o.Fetcher.LatestReleaseURL(ctx), scratch)
	if err != nil {
		return Outcome{}, err
	}

	target, err := o.Resolver.Resolve(ctx)
	if err != nil {
		return Outcome{}, err
	}

	dest := filepath.Join(target.Directory, config.BinaryName)
	if _, err := os.Stat(dest); err == nil {
		log.Info("Found existing server binary", zap.String("path", dest))
		if !o.Confirm.Confirm(ctx, fmt.Sprintf("Found existing %s at %s. Overwrite it?", config.BinaryName, dest), true) {
			return o.abort(ctx, "installation cancelled")
		}
		o.stopExisting(ctx)
	}

	if err := moveBinary(fetched, dest); err != nil {
		return Outcome{}, cerr.Wrapf(err, "install binary to %s", dest)
	}
	if err := os.Chmod(dest, 0o755); err != nil {
		return Outcome{}, cerr.Wrap(err, "mark binary executable")
	}
	log.Info("Server binary installed", zap.String("path", dest))

	// A service file left from a prior install must be unloaded before
	// its replacement is written, or launchd keeps the old job alive.
	if existing := o.Registry.Find(config.ServiceLabel); existing != "" {
		o.Manager.Deactivate(ctx, existing, config.ServiceLabel)
		o.Sleep(settleShort)
	}

	descriptor := launchd.NewServiceDescriptor(config.ServiceLabel, o.Config.ServiceArgs(dest))
	servicePath, err := o.Registry.Write(ctx, descriptor)
	if err != nil {
		return Outcome{}, err
	}
	if err := o.Manager.Activate(ctx, servicePath); err != nil {
		return Outcome{}, err
	}

	log.Info("Waiting for service to start")
	o.Sleep(settleLong)

	outcome := Outcome{
		Kind:        KindInstalled,
		Descriptor:  descriptor,
		ServicePath: servicePath,
		BinaryPath:  dest,
	}
	if !o.verifyRunning(ctx) {
		outcome.Degraded = true
	}
	return outcome, nil
}

// Uninstall tears everything down best-effort. Sub-step failures are
// logged as warnings and never abort the sequence; running it twice in
// a row succeeds both times.
func (o *Orchestrator) Uninstall(ctx context.Context) (Outcome, error) {
	if err := o.teardown(ctx); err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: KindUninstalled}, nil
}

// Restart unloads and reloads the service. It fails fast when nothing
// is installed and surfaces every service-manager error directly: the
// user expects a running service afterwards.
func (o *Orchestrator) Restart(ctx context.Context) (Outcome, error) {
	log := otelzap.Ctx(ctx)
	log.Info("Restarting service", zap.String("label", config.ServiceLabel))

	servicePath := o.Registry.Find(config.ServiceLabel)
	if servicePath == "" {
		return Outcome{}, dts_err.New(dts_err.KindNotInstalled, "service not installed").
			WithRemediation("dts-util install")
	}

	if err := o.Manager.Unload(ctx, servicePath); err != nil {
		return Outcome{}, err
	}
	o.Sleep(settleShort)
	if err := o.Manager.Activate(ctx, servicePath); err != nil {
		return Outcome{}, err
	}

	log.Info("Service restarted")
	return Outcome{Kind: KindRestarted, ServicePath: servicePath}, nil
}

// Status checks that the server process exists and is actually
// listening. Process existence alone is never reported as running.
func (o *Orchestrator) Status(ctx context.Context) (Outcome, error) {
	log := otelzap.Ctx(ctx)

	instances := o.Processes.FindRunningInstances(ctx, binaryProcess)
	if len(instances) == 0 {
		return Outcome{}, dts_err.New(dts_err.KindNotInstalled, config.BinaryName+" process not found").
			WithRemediation("dts-util install", "dts-util restart")
	}
	log.Info("Found server process",
		zap.Int("pid", instances[0].PID),
		zap.Int("count", len(instances)))

	// Give a just-started server a moment before probing the port.
	o.Sleep(settleShort)

	if !o.Ports.IsListening(ctx, o.Config.Port, processPattern) {
		return Outcome{}, dts_err.New(dts_err.KindSystem,
			fmt.Sprintf("server is not accepting connections on port %d", o.Config.Port)).
			WithRemediation(
				"log show --predicate 'process == \""+config.BinaryName+"\"' --last 5m",
				"dts-util restart",
			)
	}

	log.Info("Server is listening", zap.Int("port", o.Config.Port))
	return Outcome{Kind: KindAlreadyRunning}, nil
}

// teardown is the shared best-effort removal used by Uninstall and by
// conflict resolution.
func (o *Orchestrator) teardown(ctx context.Context) error {
	log := otelzap.Ctx(ctx)
	log.Info("Uninstalling " + config.BinaryName)

	for _, path := range o.Registry.FindAllVariants(ctx, launchd.LegacyLabelGlobs) {
		o.Manager.Deactivate(ctx, path, labelFromPath(path))
		if err := o.Registry.Remove(ctx, path); err != nil {
			log.Warn("Failed to remove service file", zap.String("path", path), zap.Error(err))
		}
	}

	o.Processes.TerminateMatching(ctx, processPattern)
	o.Sleep(settleShort)

	for _, path := range o.BinaryLocations {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		log.Info("Removing binary", zap.String("path", path))
		if err := os.Remove(path); err != nil {
			log.Warn("Failed to remove binary", zap.String("path", path), zap.Error(err))
		}
	}

	if !o.Ports.IsPortFree(ctx, config.DefaultPort) {
		log.Warn("Port is still in use after uninstall",
			zap.Int("port", config.DefaultPort))
		fmt.Fprintf(os.Stderr, "WARNING: Port %d is still in use!\n", config.DefaultPort)
		fmt.Fprintln(os.Stderr, "You may need to restart your computer or check for other services using this port.")
	}

	log.Info("Uninstall complete (models directory was not removed)")
	return nil
}

// stopExisting stops the service and any stray processes before the
// binary underneath them is replaced.
func (o *Orchestrator) stopExisting(ctx context.Context) {
	if existing := o.Registry.Find(config.ServiceLabel); existing != "" {
		otelzap.Ctx(ctx).Info("Stopping existing service before updating binary")
		o.Manager.Deactivate(ctx, existing, config.ServiceLabel)
	}
	o.Processes.TerminateMatching(ctx, processPattern)
	o.Sleep(settleShort)
}

func (o *Orchestrator) verifyRunning(ctx context.Context) bool {
	log := otelzap.Ctx(ctx)

	if len(o.Processes.FindRunningInstances(ctx, binaryProcess)) == 0 {
		log.Warn("Server process not found after install")
		return false
	}
	if !o.Ports.IsListening(ctx, o.Config.Port, processPattern) {
		log.Warn("Server is not listening yet", zap.Int("port", o.Config.Port))
		return false
	}
	return true
}

func (o *Orchestrator) abort(ctx context.Context, reason string) (Outcome, error) {
	otelzap.Ctx(ctx).Info("Aborted by user", zap.String("reason", reason))
	return Outcome{Kind: KindAborted, Reason: reason}, dts_err.NewExpectedErrorf("%s", reason)
}

// moveBinary renames when possible and falls back to copy+remove when
// the scratch directory sits on a different volume.
func moveBinary(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

func labelFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
