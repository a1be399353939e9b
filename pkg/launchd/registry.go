// pkg/launchd/registry.go

package launchd

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/drawthingsai/dts-util/pkg/dts_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// LegacyLabelGlobs covers every service identity this tool has shipped
// under. The label changed across versions, so upgrades and uninstalls
// must sweep all of them or stale registrations survive.
var LegacyLabelGlobs = []string{
	"com.drawthings.grpcserver*.plist",
	"com.draw-things.grpcserver*.plist",
	"*drawthings*grpc*.plist",
	"*draw-things*grpc*.plist",
}

// Registry locates, reads, writes and removes the persistent service
// definition files under the user's LaunchAgents directory.
type Registry struct {
	AgentsDir string
}

// NewRegistry points at ~/Library/LaunchAgents.
func NewRegistry() (*Registry, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, cerr.Wrap(err, "resolve home directory")
	}
	return &Registry{AgentsDir: filepath.Join(home, "Library", "LaunchAgents")}, nil
}

// ServicePath returns where the descriptor for a label lives.
func (r *Registry) ServicePath(label string) string {
	return filepath.Join(r.AgentsDir, label+".plist")
}

// Find returns the service file path for a label, or "" when absent.
func (r *Registry) Find(label string) string {
	path := r.ServicePath(label)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// FindAllVariants globs the agents directory for every known historical
// label pattern and returns the matching files, deduplicated and sorted.
func (r *Registry) FindAllVariants(ctx context.Context, patterns []string) []string {
	log := otelzap.Ctx(ctx)

	seen := make(map[string]struct{})
	var matches []string
	for _, pattern := range patterns {
		paths, err := filepath.Glob(filepath.Join(r.AgentsDir, pattern))
		if err != nil {
			// Only malformed patterns error here; ours are fixed.
			log.Warn("Service file glob failed", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		for _, p := range paths {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			matches = append(matches, p)
		}
	}
	sort.Strings(matches)

	log.Debug("Service file scan finished", zap.Int("matches", len(matches)))
	return matches
}

// Write serializes the descriptor into the agents directory and returns
// its path. The parent directory is created on demand.
func (r *Registry) Write(ctx context.Context, d *ServiceDescriptor) (string, error) {
	log := otelzap.Ctx(ctx)

	if err := os.MkdirAll(r.AgentsDir, 0o755); err != nil {
		return "", dts_err.Wrap(dts_err.KindSystem, err, "cannot create LaunchAgents directory")
	}

	path := r.ServicePath(d.Label)
	if err := os.WriteFile(path, d.MarshalPlist(), 0o644); err != nil {
		return "", dts_err.Wrap(dts_err.KindSystem, err, "cannot write service file")
	}

	log.Info("Service file written",
		zap.String("path", path),
		zap.String("label", d.Label))
	return path, nil
}

// Remove deletes a service file. An already-absent file is success, not
// an error, so uninstall stays idempotent.
func (r *Registry) Remove(ctx context.Context, path string) error {
	log := otelzap.Ctx(ctx)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			log.Debug("Service file already absent", zap.String("path", path))
			return nil
		}
		return cerr.Wrapf(err, "remove service file %s", path)
	}

	log.Info("Service file removed", zap.String("path", path))
	return nil
}
