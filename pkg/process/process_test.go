// pkg/process/process_test.go

package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Instance
	}{
		{
			name: "pid and command",
			line: "4242 gRPCServerCLI /Users/x/models --port 7859",
			want: Instance{PID: 4242, CommandLine: "gRPCServerCLI /Users/x/models --port 7859"},
		},
		{
			name: "pid only",
			line: "4242",
			want: Instance{PID: 4242, CommandLine: "4242"},
		},
		{
			name: "no leading pid",
			line: "gRPCServerCLI /models",
			want: Instance{CommandLine: "gRPCServerCLI /models"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLine(tt.line))
		})
	}
}
