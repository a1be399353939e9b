// pkg/config/args.go

package config

import "strconv"

// ServiceArgs derives the service argument vector from the
// configuration. The binary path and the model path come first; only
// values differing from the documented defaults are emitted after them,
// so a default install produces the shortest possible vector.
func (c *ServerConfig) ServiceArgs(binaryPath string) []string {
	args := []string{binaryPath, c.ModelPath}

	if c.Name != DefaultName() {
		args = append(args, "--name", c.Name)
	}
	if c.Port != DefaultPort {
		args = append(args, "--port", strconv.Itoa(c.Port))
	}
	if c.Address != DefaultAddress {
		args = append(args, "--address", c.Address)
	}
	if c.GPU != DefaultGPU {
		args = append(args, "--gpu", strconv.Itoa(c.GPU))
	}
	if c.DatadogAPIKey != "" {
		args = append(args, "--datadog-api-key", c.DatadogAPIKey)
	}
	if c.SharedSecret != "" {
		args = append(args, "--shared-secret", c.SharedSecret)
	}
	if c.NoTLS {
		args = append(args, "--no-tls")
	}
	if c.NoResponseCompression {
		args = append(args, "--no-response-compression")
	}
	if c.ModelBrowser {
		args = append(args, "--model-browser")
	}
	if c.NoFlashAttention {
		args = append(args, "--no-flash-attention")
	}
	if c.Debug {
		args = append(args, "--debug")
	}
	if c.Join != "" {
		args = append(args, "--join", c.Join)
	}

	return args
}

// NonDefaultSettings lists the configuration values that differ from the
// documented defaults, for the post-install summary.
func (c *ServerConfig) NonDefaultSettings() map[string]string {
	out := make(map[string]string)
	if c.Name != DefaultName() {
		out["name"] = c.Name
	}
	if c.Port != DefaultPort {
		out["port"] = strconv.Itoa(c.Port)
	}
	if c.Address != DefaultAddress {
		out["address"] = c.Address
	}
	if c.GPU != DefaultGPU {
		out["gpu"] = strconv.Itoa(c.GPU)
	}
	if c.DatadogAPIKey != "" {
		out["datadog-api-key"] = c.DatadogAPIKey
	}
	if c.SharedSecret != "" {
		out["shared-secret"] = "(set)"
	}
	if c.NoTLS {
		out["no-tls"] = "true"
	}
	if c.NoResponseCompression {
		out["no-response-compression"] = "true"
	}
	if c.ModelBrowser {
		out["model-browser"] = "true"
	}
	if c.NoFlashAttention {
		out["no-flash-attention"] = "true"
	}
	if c.Debug {
		out["debug"] = "true"
	}
	if c.Join != "" {
		out["join"] = c.Join
	}
	return out
}
