// pkg/installpath/resolver.go

// Package installpath picks a writable installation directory under an
// ordered preference list.
package installpath

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/drawthingsai/dts-util/pkg/interaction"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Target is the chosen installation directory. Computed fresh each run,
// never persisted.
type Target struct {
	Directory string
	// Fallback reports that the preferred directory was not writable.
	Fallback bool
}

// Resolver chooses between a preferred and a fallback directory, and
// offers a PATH registration when the fallback is used.
type Resolver struct {
	PreferredDir string
	FallbackDir  string
	Confirm      interaction.Confirmer

	// Overridable for tests.
	PathEnv  string
	ShellEnv string
	HomeDir  string
}

// NewResolver targets /usr/local/bin with ~/.local/bin as fallback.
func NewResolver(confirm interaction.Confirmer) (*Resolver, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, cerr.Wrap(err, "resolve home directory")
	}
	return &Resolver{
		PreferredDir: "/usr/local/bin",
		FallbackDir:  filepath.Join(home, ".local", "bin"),
		Confirm:      confirm,
		PathEnv:      os.Getenv("PATH"),
		ShellEnv:     os.Getenv("SHELL"),
		HomeDir:      home,
	}, nil
}

// Resolve creates the preferred directory if needed and write-probes it.
// On any permission or OS error it falls back, creating the fallback
// directory and offering to register it on PATH. Once fallen back, the
// preferred directory is never touched again this run.
func (r *Resolver) Resolve(ctx context.Context) (Target, error) {
	log := otelzap.Ctx(ctx)

	if err := r.writeProbe(r.PreferredDir); err == nil {
		log.Info("Using preferred install directory", zap.String("dir", r.PreferredDir))
		return Target{Directory: r.PreferredDir}, nil
	} else {
		log.Info("Preferred install directory not writable, falling back",
			zap.String("preferred", r.PreferredDir),
			zap.String("fallback", r.FallbackDir),
			zap.Error(err))
	}

	if err := os.MkdirAll(r.FallbackDir, 0o755); err != nil {
		return Target{}, cerr.Wrapf(err, "create fallback directory %s", r.FallbackDir)
	}

	r.offerPathRegistration(ctx)

	return Target{Directory: r.FallbackDir, Fallback: true}, nil
}

// writeProbe creates the directory if absent, then creates and deletes a
// sentinel file to prove real write access. Stat alone lies on
// read-only mounts.
func (r *Resolver) writeProbe(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	sentinel := filepath.Join(dir, ".write_test")
	f, err := os.Create(sentinel)
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(sentinel)
}

// offerPathRegistration appends a PATH export to the user's shell rc
// file when the fallback directory is not already on PATH and the user
// agrees. Failures are reported but never abort the install.
func (r *Resolver) offerPathRegistration(ctx context.Context) {
	log := otelzap.Ctx(ctx)

	if strings.Contains(r.PathEnv, r.FallbackDir) {
		return
	}

	log.Info("Fallback directory is not on PATH", zap.String("dir", r.FallbackDir))
	if !r.Confirm.Confirm(ctx, fmt.Sprintf("Add %s to your PATH?", r.FallbackDir), false) {
		fmt.Fprintf(os.Stderr, "To add it manually, add this line to your shell configuration:\n")
		fmt.Fprintf(os.Stderr, "    export PATH=\"%s:$PATH\"\n", r.FallbackDir)
		return
	}

	rcFile := r.rcFile()
	pathLine := "\nexport PATH=\"$HOME/.local/bin:$PATH\"  # Added by Draw Things installer\n"

	f, err := os.OpenFile(rcFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		_, err = f.WriteString(pathLine)
		f.Close()
	}
	if err != nil {
		log.Warn("Failed to update shell rc file", zap.String("rc_file", rcFile), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to modify %s. To add it manually, add this line:\n", rcFile)
		fmt.Fprintf(os.Stderr, "    export PATH=\"%s:$PATH\"\n", r.FallbackDir)
		return
	}

	log.Info("Shell rc file updated", zap.String("rc_file", rcFile))
	fmt.Fprintf(os.Stderr, "Added %s to PATH in %s\n", r.FallbackDir, rcFile)
	fmt.Fprintf(os.Stderr, "Restart your terminal or run:\n    source %s\n", rcFile)
}

// rcFile picks the shell startup file from $SHELL: zsh gets .zshrc,
// everything else .bash_profile.
func (r *Resolver) rcFile() string {
	if strings.Contains(r.ShellEnv, "zsh") {
		return filepath.Join(r.HomeDir, ".zshrc")
	}
	return filepath.Join(r.HomeDir, ".bash_profile")
}
