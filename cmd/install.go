// cmd/install.go

package cmd

import (
	"fmt"
	"os"

	"github.com/drawthingsai/dts-util/pkg/config"
	"github.com/drawthingsai/dts-util/pkg/dts_cli"
	"github.com/drawthingsai/dts-util/pkg/dts_err"
	"github.com/drawthingsai/dts-util/pkg/dts_io"
	"github.com/drawthingsai/dts-util/pkg/installer"
	"github.com/drawthingsai/dts-util/pkg/interaction"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InstallCmd downloads the server binary and installs it as a
// LaunchAgent service.
var InstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Download gRPCServerCLI and set it up as a LaunchAgent service",
	Long: `Download the Draw Things gRPCServerCLI binary, install it, and create
a LaunchAgent service that starts at login.

Examples:
  # Install using default settings
  dts-util install

  # Install with custom model path
  dts-util install -m /path/to/models

  # Install with custom port and server name
  dts-util install -p 7860 -n "MyServer"

  # Install with security options (recommended for public networks)
  dts-util install -s "mysecret"

  # Install with proxy configuration
  dts-util install --join '{"host":"proxy.local", "port":7859}'

  # Quiet install with defaults
  dts-util install -q`,
	RunE: dts_cli.Wrap(func(rc *dts_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		v := config.NewViper()
		bindInstallFlags(v, cmd)

		cfg, err := config.Load(v)
		if err != nil {
			return err
		}

		cfg, err = resolveModelPath(rc, cfg)
		if err != nil {
			return err
		}

		orch, err := installer.New(cfg)
		if err != nil {
			return err
		}

		outcome, err := orch.Install(rc.Ctx)
		if err != nil {
			return err
		}

		printInstallSummary(cfg, outcome)
		return nil
	}),
}

func init() {
	f := InstallCmd.Flags()
	f.StringP("model-path", "m", "", "Custom path to store models (default: Draw Things app models directory)")
	f.BoolP("quiet", "q", false, "Minimize output and assume default answers to prompts")
	f.StringP("name", "n", "", "Server name in local network (default: machine name)")
	f.IntP("port", "p", config.DefaultPort, "Server port")
	f.StringP("address", "a", config.DefaultAddress, "Network address to bind to")
	f.IntP("gpu", "g", config.DefaultGPU, "GPU device index")
	f.StringP("datadog-api-key", "d", "", "Datadog API key for logging backend")
	f.StringP("shared-secret", "s", "", "Shared secret for server security")
	f.Bool("no-tls", false, "Disable TLS for connections (not recommended)")
	f.Bool("no-response-compression", false, "Disable response compression")
	f.Bool("model-browser", false, "Enable model browsing")
	f.Bool("no-flash-attention", false, "Disable Flash Attention")
	f.Bool("debug", false, "Enable verbose model inference logging")
	f.String("join", "", "JSON configuration for proxy setup")
}

func bindInstallFlags(v *viper.Viper, cmd *cobra.Command) {
	for _, name := range []string{
		"model-path", "quiet", "name", "port", "address", "gpu",
		"datadog-api-key", "shared-secret", "no-tls",
		"no-response-compression", "model-browser", "no-flash-attention",
		"debug", "join",
	} {
		_ = v.BindPFlag(name, cmd.Flags().Lookup(name))
	}
}

// resolveModelPath fills in the models directory: explicit flag, then
// the Draw Things app default, then an interactive prompt loop. Quiet
// mode fails instead of prompting.
func resolveModelPath(rc *dts_io.RuntimeContext, cfg *config.ServerConfig) (*config.ServerConfig, error) {
	if cfg.ModelPath != "" {
		return cfg, nil
	}

	defaultPath, err := config.DefaultModelPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(defaultPath); err == nil {
		out := *cfg
		out.ModelPath = defaultPath
		return &out, nil
	}

	rc.Log.Info("Default model path not found", zap.String("path", defaultPath))
	if cfg.Quiet {
		return nil, dts_err.New(dts_err.KindValidation,
			"default model path not found; pass one with -m /path/to/models")
	}

	fmt.Fprintf(os.Stderr, "Default model path not found: %s\n", defaultPath)
	for {
		path := interaction.PromptInput(rc.Ctx, "Please enter path for models (or 'q' to quit)", "")
		if path == "q" || path == "" {
			return nil, dts_err.NewExpectedErrorf("installation cancelled")
		}
		if _, err := os.Stat(path); err == nil {
			out := *cfg
			out.ModelPath = path
			return &out, nil
		}
		fmt.Fprintln(os.Stderr, "Path does not exist. Please try again.")
	}
}

func printInstallSummary(cfg *config.ServerConfig, outcome installer.Outcome) {
	if outcome.Kind != installer.KindInstalled {
		return
	}

	if outcome.Degraded {
		fmt.Fprintln(os.Stderr, "\nWARNING: Installation completed but server may not be running correctly.")
		fmt.Fprintln(os.Stderr, "Try these troubleshooting steps:")
		fmt.Fprintln(os.Stderr, "1. Check the system log for errors:")
		fmt.Fprintf(os.Stderr, "    log show --predicate 'process == \"%s\"' --last 5m\n", config.BinaryName)
		fmt.Fprintln(os.Stderr, "2. Restart the service:")
		fmt.Fprintf(os.Stderr, "    launchctl unload %s\n", outcome.ServicePath)
		fmt.Fprintf(os.Stderr, "    launchctl load %s\n", outcome.ServicePath)
		fmt.Fprintln(os.Stderr, "3. Check if the models directory is accessible:")
		fmt.Fprintf(os.Stderr, "    ls %s\n", cfg.ModelPath)
		return
	}

	fmt.Fprintln(os.Stderr, "\nInstallation completed successfully!")
	fmt.Fprintf(os.Stderr, "Models directory: %s\n", cfg.ModelPath)
	fmt.Fprintf(os.Stderr, "Binary location: %s\n", outcome.BinaryPath)
	if settings := cfg.NonDefaultSettings(); len(settings) > 0 {
		fmt.Fprintln(os.Stderr, "Server configuration:")
		for key, value := range settings {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", key, value)
		}
	}
	fmt.Fprintln(os.Stderr, "\nThe service is running and will start automatically on login.")
	fmt.Fprintln(os.Stderr, "You can manage it with these commands:")
	fmt.Fprintf(os.Stderr, "    launchctl unload %s\n", outcome.ServicePath)
	fmt.Fprintf(os.Stderr, "    launchctl load %s\n", outcome.ServicePath)
}
