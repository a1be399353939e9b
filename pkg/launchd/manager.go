// pkg/launchd/manager.go

package launchd

import (
	"context"

	"github.com/drawthingsai/dts-util/pkg/dts_err"
	"github.com/drawthingsai/dts-util/pkg/execute"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Manager drives launchctl. Deactivation is best effort ("already not
// loaded" is a common benign case); activation failures are fatal
// because they leave the system without a running service.
type Manager struct{}

// Activate loads a service file into launchd.
func (m *Manager) Activate(ctx context.Context, path string) error {
	log := otelzap.Ctx(ctx)

	out, err := execute.Run(ctx, execute.Options{
		Command: "launchctl",
		Args:    []string{"load", path},
		Capture: true,
	})
	if err != nil {
		log.Error("launchctl load failed",
			zap.String("path", path),
			zap.String("output", out),
			zap.Error(err))
		return dts_err.Wrap(dts_err.KindActivation, err, "failed to load service").
			WithRemediation(
				"launchctl load "+path,
				"log show --predicate 'process == \"gRPCServerCLI\"' --last 5m",
			)
	}

	log.Info("Service loaded", zap.String("path", path))
	return nil
}

// Deactivate unloads a service file and drops the job by label. Errors
// are logged and swallowed.
func (m *Manager) Deactivate(ctx context.Context, path, label string) {
	log := otelzap.Ctx(ctx)

	if _, err := execute.Run(ctx, execute.Options{
		Command: "launchctl",
		Args:    []string{"unload", path},
		Capture: true,
	}); err != nil {
		log.Warn("launchctl unload failed (service may not be loaded)",
			zap.String("path", path), zap.Error(err))
	}

	if _, err := execute.Run(ctx, execute.Options{
		Command: "launchctl",
		Args:    []string{"remove", label},
		Capture: true,
	}); err != nil {
		log.Debug("launchctl remove failed (job may not exist)",
			zap.String("label", label), zap.Error(err))
	}
}

// Unload unloads a service file and surfaces the error. Restart uses
// this instead of Deactivate: a failed unload there must be loud,
// because the user expects a running service afterwards.
func (m *Manager) Unload(ctx context.Context, path string) error {
	out, err := execute.Run(ctx, execute.Options{
		Command: "launchctl",
		Args:    []string{"unload", path},
		Capture: true,
	})
	if err != nil {
		return dts_err.Wrap(dts_err.KindActivation, err, "failed to unload service: "+out)
	}
	return nil
}
