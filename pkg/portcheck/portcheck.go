// pkg/portcheck/portcheck.go

// Package portcheck probes TCP port occupancy on the local host.
package portcheck

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/drawthingsai/dts-util/pkg/execute"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ProbeTimeout bounds the connect attempt so a firewalled port cannot
// stall the installer.
const ProbeTimeout = 1 * time.Second

// Probe checks local TCP ports. The zero value probes localhost.
type Probe struct {
	// Host overrides the probed host, for tests.
	Host string
}

func (p *Probe) host() string {
	if p.Host != "" {
		return p.Host
	}
	return "localhost"
}

// IsPortFree attempts a short TCP connect; success means something is
// already listening. Connect failures of any kind (refused, timeout)
// are deliberately read as "free" so a broken probe never blocks an
// install on a healthy machine.
func (p *Probe) IsPortFree(ctx context.Context, port int) bool {
	log := otelzap.Ctx(ctx)
	addr := net.JoinHostPort(p.host(), strconv.Itoa(port))

	conn, err := net.DialTimeout("tcp", addr, ProbeTimeout)
	if err != nil {
		log.Debug("Port probe found no listener", zap.String("addr", addr), zap.Error(err))
		return true
	}
	_ = conn.Close()

	log.Debug("Port probe found a listener", zap.String("addr", addr))
	return false
}

// DescribePortOwner asks lsof which process owns the port. Best effort:
// a missing lsof binary or a non-zero exit yields no info, never an error.
func (p *Probe) DescribePortOwner(ctx context.Context, port int) string {
	if !execute.LookPath("lsof") {
		return ""
	}

	out, err := execute.Run(ctx, execute.Options{
		Command: "lsof",
		Args:    []string{"-i", fmt.Sprintf(":%d", port)},
		Capture: true,
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// IsListening reports whether the managed server is listed by lsof as
// listening on the port, falling back to a direct connect attempt when
// lsof is unavailable or inconclusive.
func (p *Probe) IsListening(ctx context.Context, port int, processHint string) bool {
	out := p.DescribePortOwner(ctx, port)
	if out != "" && strings.Contains(out, processHint) && strings.Contains(out, "LISTEN") {
		return true
	}
	return !p.IsPortFree(ctx, port)
}
