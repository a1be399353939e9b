// pkg/launchd/descriptor_test.go

package launchd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarshalPlist(t *testing.T) {
	d := NewServiceDescriptor("com.drawthings.grpcserver", []string{
		"/usr/local/bin/gRPCServerCLI",
		"/Users/x/models",
		"--port", "7860",
	})

	out := string(d.MarshalPlist())

	assert.Contains(t, out, `<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN"`)
	assert.Contains(t, out, "<key>Label</key>\n\t<string>com.drawthings.grpcserver</string>")
	assert.Contains(t, out, "<string>/usr/local/bin/gRPCServerCLI</string>")
	assert.Contains(t, out, "<string>--port</string>\n\t\t<string>7860</string>")
	assert.Contains(t, out, "<key>RunAtLoad</key>\n\t<true/>")
	assert.Contains(t, out, "<key>KeepAlive</key>\n\t<true/>")
	assert.True(t, strings.HasSuffix(out, "</dict>\n</plist>\n"))
}

func TestMarshalPlistEscapesArguments(t *testing.T) {
	d := NewServiceDescriptor("com.drawthings.grpcserver", []string{
		"/bin/server",
		"--join", `{"host":"proxy","port":7859,"note":"<&>"}`,
	})

	out := string(d.MarshalPlist())

	assert.Contains(t, out, "&lt;&amp;&gt;")
	assert.NotContains(t, out, "<&>")
}

func TestMarshalPlistPreservesArgumentOrder(t *testing.T) {
	args := []string{"/bin/server", "/models", "--name", "box", "--port", "7860"}
	out := string(NewServiceDescriptor("l", args).MarshalPlist())

	last := 0
	for _, arg := range args {
		idx := strings.Index(out[last:], "<string>"+arg+"</string>")
		assert.GreaterOrEqual(t, idx, 0, "argument %q out of order or missing", arg)
		last += idx
	}
}
