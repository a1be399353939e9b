// pkg/conflict/conflict_test.go

package conflict

import (
	"context"
	"testing"

	"github.com/drawthingsai/dts-util/pkg/interaction"
	"github.com/drawthingsai/dts-util/pkg/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	files []string
}

func (f *fakeFinder) FindAllVariants(ctx context.Context, patterns []string) []string {
	return f.files
}

type fakeProcesses struct {
	instances []process.Instance
}

func (f *fakeProcesses) FindRunningInstances(ctx context.Context, namePattern string) []process.Instance {
	return f.instances
}

type fakePorts struct {
	free  bool
	owner string
}

func (f *fakePorts) IsPortFree(ctx context.Context, port int) bool { return f.free }

func (f *fakePorts) DescribePortOwner(ctx context.Context, port int) string { return f.owner }

type scriptedConfirmer struct {
	answers []bool
	asked   int
}

func (c *scriptedConfirmer) Confirm(ctx context.Context, question string, defaultYes bool) bool {
	c.asked++
	if len(c.answers) == 0 {
		return defaultYes
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer
}

func newResolver(confirm interaction.Confirmer, uninstalls *int) *Resolver {
	return &Resolver{
		Registry:  &fakeFinder{},
		Processes: &fakeProcesses{},
		Ports:     &fakePorts{free: true},
		Confirm:   confirm,
		UninstallExisting: func(ctx context.Context) error {
			*uninstalls++
			return nil
		},
		ProcessPattern: "gRPCServer",
		DefaultPort:    7859,
	}
}

func TestDetectAggregatesAllSignals(t *testing.T) {
	r := &Resolver{
		Registry: &fakeFinder{files: []string{"/agents/com.drawthings.grpcserver.plist"}},
		Processes: &fakeProcesses{instances: []process.Instance{
			{PID: 42, CommandLine: "gRPCServerCLI /models"},
		}},
		Ports:          &fakePorts{free: false, owner: "gRPCServerCLI 42 (LISTEN)"},
		ProcessPattern: "gRPCServer",
		DefaultPort:    7859,
	}

	report := r.Detect(context.Background())

	assert.Equal(t, []string{"/agents/com.drawthings.grpcserver.plist"}, report.MatchingServiceFiles)
	assert.Equal(t, []string{"gRPCServerCLI /models"}, report.RunningProcessLines)
	assert.True(t, report.PortInUse)
	assert.Equal(t, "gRPCServerCLI 42 (LISTEN)", report.PortOwnerInfo)
	assert.False(t, report.Empty())
}

func TestDetectCleanSystem(t *testing.T) {
	r := &Resolver{
		Registry:       &fakeFinder{},
		Processes:      &fakeProcesses{},
		Ports:          &fakePorts{free: true},
		ProcessPattern: "gRPCServer",
		DefaultPort:    7859,
	}

	report := r.Detect(context.Background())
	assert.True(t, report.Empty())
}

func TestResolveEmptyReportProceedsWithoutPrompting(t *testing.T) {
	confirm := &scriptedConfirmer{}
	uninstalls := 0
	r := newResolver(confirm, &uninstalls)

	resolution, err := r.Resolve(context.Background(), &Report{})
	require.NoError(t, err)

	assert.True(t, resolution.Proceed)
	assert.False(t, resolution.DidUninstall)
	assert.Zero(t, confirm.asked)
	assert.Zero(t, uninstalls)
}

func TestResolveQuietModeUninstallsAndProceeds(t *testing.T) {
	// Quiet mode takes the prompt defaults: yes to the uninstall offer.
	uninstalls := 0
	r := newResolver(&interaction.TerminalConfirmer{Quiet: true}, &uninstalls)

	report := &Report{MatchingServiceFiles: []string{"/agents/old.plist"}}
	resolution, err := r.Resolve(context.Background(), report)
	require.NoError(t, err)

	assert.True(t, resolution.Proceed)
	assert.True(t, resolution.DidUninstall)
	assert.Equal(t, 1, uninstalls)
}

func TestResolveDeclineBothGatesAborts(t *testing.T) {
	confirm := &scriptedConfirmer{answers: []bool{false, false}}
	uninstalls := 0
	r := newResolver(confirm, &uninstalls)

	report := &Report{PortInUse: true}
	resolution, err := r.Resolve(context.Background(), report)
	require.NoError(t, err)

	assert.False(t, resolution.Proceed)
	assert.Zero(t, uninstalls)
	assert.Equal(t, 2, confirm.asked)
}

func TestResolveProceedWithoutUninstalling(t *testing.T) {
	confirm := &scriptedConfirmer{answers: []bool{false, true}}
	uninstalls := 0
	r := newResolver(confirm, &uninstalls)

	report := &Report{RunningProcessLines: []string{"gRPCServerCLI /models"}}
	resolution, err := r.Resolve(context.Background(), report)
	require.NoError(t, err)

	assert.True(t, resolution.Proceed)
	assert.False(t, resolution.DidUninstall)
	assert.Zero(t, uninstalls)
}

func TestResolvePropagatesUninstallFailure(t *testing.T) {
	confirm := &scriptedConfirmer{answers: []bool{true}}
	r := newResolver(confirm, new(int))
	r.UninstallExisting = func(ctx context.Context) error {
		return assert.AnError
	}

	_, err := r.Resolve(context.Background(), &Report{PortInUse: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
