// pkg/config/args_test.go

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultTestConfig() *ServerConfig {
	return &ServerConfig{
		Name:      DefaultName(),
		Port:      DefaultPort,
		Address:   DefaultAddress,
		GPU:       DefaultGPU,
		ModelPath: "/Users/x/models",
	}
}

func TestServiceArgsDefaultsAreOmitted(t *testing.T) {
	args := defaultTestConfig().ServiceArgs("/usr/local/bin/" + BinaryName)

	assert.Equal(t, []string{"/usr/local/bin/" + BinaryName, "/Users/x/models"}, args)
}

func TestServiceArgsEmitsOnlyChangedValues(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Port = 7860

	args := cfg.ServiceArgs("/bin/server")

	assert.Equal(t, []string{"/bin/server", "/Users/x/models", "--port", "7860"}, args)
}

func TestServiceArgsFullConfiguration(t *testing.T) {
	cfg := &ServerConfig{
		Name:                  "MyServer",
		Port:                  7860,
		Address:               "127.0.0.1",
		GPU:                   1,
		DatadogAPIKey:         "dd-key",
		SharedSecret:          "hunter2",
		NoTLS:                 true,
		NoResponseCompression: true,
		ModelBrowser:          true,
		NoFlashAttention:      true,
		Debug:                 true,
		Join:                  `{"host":"proxy.local","port":7859}`,
		ModelPath:             "/models",
	}

	args := cfg.ServiceArgs("/bin/server")

	assert.Equal(t, []string{
		"/bin/server", "/models",
		"--name", "MyServer",
		"--port", "7860",
		"--address", "127.0.0.1",
		"--gpu", "1",
		"--datadog-api-key", "dd-key",
		"--shared-secret", "hunter2",
		"--no-tls",
		"--no-response-compression",
		"--model-browser",
		"--no-flash-attention",
		"--debug",
		"--join", `{"host":"proxy.local","port":7859}`,
	}, args)
}

func TestNonDefaultSettingsMasksSecret(t *testing.T) {
	cfg := defaultTestConfig()
	assert.Empty(t, cfg.NonDefaultSettings())

	cfg.SharedSecret = "hunter2"
	cfg.Port = 7860

	settings := cfg.NonDefaultSettings()
	assert.Equal(t, "(set)", settings["shared-secret"])
	assert.Equal(t, "7860", settings["port"])
	assert.NotContains(t, settings, "address")
}
