// pkg/dts_err/errors_test.go

package dts_err

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "user abort", err: NewExpectedErrorf("installation cancelled"), want: 0},
		{name: "wrapped user abort", err: fmt.Errorf("context: %w", NewExpectedErrorf("cancelled")), want: 0},
		{name: "classified fatal", err: New(KindPortOccupied, "port 7859 is already in use"), want: 1},
		{name: "plain error", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindDownload, KindOf(New(KindDownload, "fetch failed")))
	assert.Equal(t, KindValidation, KindOf(fmt.Errorf("load: %w", New(KindValidation, "bad port"))))
	assert.Equal(t, KindSystem, KindOf(errors.New("unclassified")))
}

func TestClassifiedErrorMessage(t *testing.T) {
	err := Wrap(KindActivation, errors.New("launchctl exited 1"), "failed to load service").
		WithRemediation("launchctl load ~/Library/LaunchAgents/com.drawthings.grpcserver.plist", "dts-util restart")

	msg := err.Error()
	assert.Contains(t, msg, "failed to load service")
	assert.Contains(t, msg, "Cause: launchctl exited 1")
	assert.Contains(t, msg, "1. launchctl load")
	assert.Contains(t, msg, "2. dts-util restart")
}

func TestClassifiedErrorUnwraps(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(KindSystem, cause, "cannot write service file")
	assert.ErrorIs(t, err, cause)
}

func TestExpectedUserErrorMarker(t *testing.T) {
	require.True(t, IsExpectedUserError(NewExpectedError(errors.New("declined"))))
	assert.False(t, IsExpectedUserError(errors.New("declined")))
	assert.Nil(t, NewExpectedError(nil))
}
