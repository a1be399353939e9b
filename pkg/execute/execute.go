// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every spawned command; probes and launchctl
// verbs are all expected to finish well inside it.
const DefaultTimeout = 30 * time.Second

// Options describes a single command invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
	// Capture returns combined stdout+stderr to the caller instead of
	// discarding it.
	Capture bool
}

// Run executes a command with structured logging. Shell interpolation is
// never used; arguments are passed verbatim.
func Run(ctx context.Context, opts Options) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := otelzap.Ctx(ctx)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmdStr := opts.Command + " " + strings.Join(opts.Args, " ")
	log.Debug("Executing command", zap.String("command", cmdStr))

	cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := buf.String()

	if err != nil {
		log.Debug("Command failed",
			zap.String("command", cmdStr),
			zap.Error(err),
			zap.String("output", firstLine(output)))
		return output, cerr.Wrapf(err, "command %q failed", cmdStr)
	}

	log.Debug("Command succeeded", zap.String("command", cmdStr))
	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// RunSimple executes a command, discarding its output.
func RunSimple(ctx context.Context, command string, args ...string) error {
	_, err := Run(ctx, Options{Command: command, Args: args})
	return err
}

// LookPath reports whether a binary is available on PATH.
func LookPath(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
