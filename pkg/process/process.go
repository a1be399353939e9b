// pkg/process/process.go

// Package process discovers and signals running instances of the
// managed server binary.
package process

import (
	"context"
	"strconv"
	"strings"

	"github.com/drawthingsai/dts-util/pkg/execute"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Instance is one running process matched by name pattern.
type Instance struct {
	PID         int
	CommandLine string
}

// Probe inspects the process table via pgrep/pkill.
type Probe struct{}

// FindRunningInstances returns processes whose full command line matches
// the pattern. A missing pgrep binary or no matches both yield an empty
// list, never an error.
func (p *Probe) FindRunningInstances(ctx context.Context, namePattern string) []Instance {
	log := otelzap.Ctx(ctx)

	if !execute.LookPath("pgrep") {
		log.Debug("pgrep not available, skipping process discovery")
		return nil
	}

	out, err := execute.Run(ctx, execute.Options{
		Command: "pgrep",
		Args:    []string{"-fl", namePattern},
		Capture: true,
	})
	if err != nil {
		// pgrep exits 1 when nothing matches.
		return nil
	}

	var instances []Instance
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		instances = append(instances, parseLine(line))
	}

	log.Debug("Process discovery finished",
		zap.String("pattern", namePattern),
		zap.Int("matches", len(instances)))
	return instances
}

// TerminateMatching sends a best-effort TERM to every match. It does not
// verify termination; callers re-probe when they need confirmation.
func (p *Probe) TerminateMatching(ctx context.Context, namePattern string) {
	log := otelzap.Ctx(ctx)

	if !execute.LookPath("pkill") {
		log.Warn("pkill not available, cannot stop running processes")
		return
	}

	if _, err := execute.Run(ctx, execute.Options{
		Command: "pkill",
		Args:    []string{"-f", namePattern},
		Capture: true,
	}); err != nil {
		// Exit 1 means no process matched, which is fine here.
		log.Debug("pkill reported no matches", zap.String("pattern", namePattern))
	}
}

func parseLine(line string) Instance {
	inst := Instance{CommandLine: line}
	fields := strings.SplitN(line, " ", 2)
	if pid, err := strconv.Atoi(fields[0]); err == nil {
		inst.PID = pid
		if len(fields) == 2 {
			inst.CommandLine = strings.TrimSpace(fields[1])
		}
	}
	return inst
}
