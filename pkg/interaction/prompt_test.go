// pkg/interaction/prompt_test.go

package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeYesNoInput(t *testing.T) {
	tests := []struct {
		input      string
		wantAnswer bool
		wantOK     bool
	}{
		{input: "y", wantAnswer: true, wantOK: true},
		{input: "Y", wantAnswer: true, wantOK: true},
		{input: "yes", wantAnswer: true, wantOK: true},
		{input: " YES ", wantAnswer: true, wantOK: true},
		{input: "n", wantAnswer: false, wantOK: true},
		{input: "no", wantAnswer: false, wantOK: true},
		{input: "No", wantAnswer: false, wantOK: true},
		{input: "", wantAnswer: false, wantOK: false},
		{input: "maybe", wantAnswer: false, wantOK: false},
		{input: "yess", wantAnswer: false, wantOK: false},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			answer, ok := NormalizeYesNoInput(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAnswer, answer)
		})
	}
}

func TestQuietConfirmerTakesDefaults(t *testing.T) {
	c := &TerminalConfirmer{Quiet: true}

	assert.True(t, c.Confirm(context.Background(), "uninstall existing?", true))
	assert.False(t, c.Confirm(context.Background(), "proceed anyway?", false))
}
