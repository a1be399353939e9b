// pkg/config/config.go

// Package config builds the immutable server configuration for one
// installer invocation. Values merge documented defaults, DTS_*
// environment variables, and command-line flags, then validate once.
package config

import (
	"os"
	"strings"

	"github.com/drawthingsai/dts-util/pkg/dts_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Server defaults as documented by the gRPCServerCLI binary. Only values
// differing from these end up in the service argument vector.
const (
	DefaultPort    = 7859
	DefaultAddress = "0.0.0.0"
	DefaultGPU     = 0
)

// Installation constants.
const (
	BinaryName   = "gRPCServerCLI"
	ServiceLabel = "com.drawthings.grpcserver"
	AssetSuffix  = "-macOS"
)

// ServerConfig is the validated, immutable configuration for one run.
// It is constructed once by Load and never mutated afterwards.
type ServerConfig struct {
	Name                  string `validate:"required"`
	Port                  int    `validate:"gt=0,lte=65535"`
	Address               string `validate:"required"`
	GPU                   int    `validate:"gte=0"`
	DatadogAPIKey         string
	SharedSecret          string
	NoTLS                 bool
	NoResponseCompression bool
	ModelBrowser          bool
	NoFlashAttention      bool
	Debug                 bool
	Join                  string
	ModelPath             string
	Quiet                 bool
}

var validate = validator.New()

// NewViper returns a viper instance seeded with the documented defaults
// and bound to the DTS_ environment prefix.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("name", DefaultName())
	v.SetDefault("port", DefaultPort)
	v.SetDefault("address", DefaultAddress)
	v.SetDefault("gpu", DefaultGPU)
	v.SetDefault("model-path", os.Getenv("DRAW_THINGS_MODEL_PATH"))
	v.SetEnvPrefix("DTS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load assembles a ServerConfig from the given viper instance and
// validates it. Validation failures are fatal and reported before any
// mutation happens.
func Load(v *viper.Viper) (*ServerConfig, error) {
	cfg := &ServerConfig{
		Name:                  v.GetString("name"),
		Port:                  v.GetInt("port"),
		Address:               v.GetString("address"),
		GPU:                   v.GetInt("gpu"),
		DatadogAPIKey:         v.GetString("datadog-api-key"),
		SharedSecret:          v.GetString("shared-secret"),
		NoTLS:                 v.GetBool("no-tls"),
		NoResponseCompression: v.GetBool("no-response-compression"),
		ModelBrowser:          v.GetBool("model-browser"),
		NoFlashAttention:      v.GetBool("no-flash-attention"),
		Debug:                 v.GetBool("debug"),
		Join:                  v.GetString("join"),
		ModelPath:             v.GetString("model-path"),
		Quiet:                 v.GetBool("quiet"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs struct validation plus join-configuration parsing.
func (c *ServerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return dts_err.Wrap(dts_err.KindValidation, err, "invalid server configuration")
	}
	if c.Join != "" {
		if _, err := ParseJoinConfig(c.Join); err != nil {
			return err
		}
	}
	return nil
}

// DefaultName returns the local hostname with any .local suffix removed,
// matching how the server names itself on the network.
func DefaultName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "DrawThings"
	}
	return strings.TrimSuffix(hostname, ".local")
}

// DefaultModelPath is where the Draw Things app keeps its models.
func DefaultModelPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", cerr.Wrap(err, "resolve home directory")
	}
	return home + "/Library/Containers/com.liuliu.draw-things/Data/Documents/Models", nil
}
