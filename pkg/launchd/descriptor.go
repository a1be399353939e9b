// pkg/launchd/descriptor.go

// Package launchd persists and drives the per-user LaunchAgent that
// supervises the server binary.
package launchd

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// ServiceDescriptor tells launchd how to launch and supervise the
// managed process. Label is the stable identity key; exactly one
// descriptor exists per managed service.
type ServiceDescriptor struct {
	Label            string
	ProgramArguments []string
	RunAtLoad        bool
	KeepAlive        bool
}

// NewServiceDescriptor builds the standard descriptor: run at login,
// restart on exit.
func NewServiceDescriptor(label string, programArguments []string) *ServiceDescriptor {
	return &ServiceDescriptor{
		Label:            label,
		ProgramArguments: programArguments,
		RunAtLoad:        true,
		KeepAlive:        true,
	}
}

// MarshalPlist serializes the descriptor to launchd's XML plist format.
func (d *ServiceDescriptor) MarshalPlist() []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	sb.WriteString("<plist version=\"1.0\">\n<dict>\n")

	fmt.Fprintf(&sb, "\t<key>Label</key>\n\t<string>%s</string>\n", escape(d.Label))

	sb.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	for _, arg := range d.ProgramArguments {
		fmt.Fprintf(&sb, "\t\t<string>%s</string>\n", escape(arg))
	}
	sb.WriteString("\t</array>\n")

	fmt.Fprintf(&sb, "\t<key>RunAtLoad</key>\n\t<%t/>\n", d.RunAtLoad)
	fmt.Fprintf(&sb, "\t<key>KeepAlive</key>\n\t<%t/>\n", d.KeepAlive)

	sb.WriteString("</dict>\n</plist>\n")
	return []byte(sb.String())
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
