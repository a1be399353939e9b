// cmd/root.go

package cmd

import (
	"fmt"
	"os"

	"github.com/drawthingsai/dts-util/pkg/dts_err"
	"github.com/drawthingsai/dts-util/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd is the base command for dts-util.
var RootCmd = &cobra.Command{
	Use:   "dts-util",
	Short: "Install and manage the Draw Things gRPC server",
	Long: `dts-util installs the Draw Things gRPCServerCLI binary and sets it up
as a LaunchAgent service that starts at login and restarts on exit.

The installer will:
  1. Download the gRPCServerCLI binary
  2. Install it to /usr/local/bin (or ~/.local/bin if /usr/local/bin is not writable)
  3. Create and start a LaunchAgent service`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	RootCmd.AddCommand(InstallCmd)
	RootCmd.AddCommand(UninstallCmd)
	RootCmd.AddCommand(RestartCmd)
	RootCmd.AddCommand(StatusCmd)
}

// Execute runs the CLI and maps errors to exit codes: 0 for success or
// a user abort, 1 for any fatal error.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	if dts_err.IsExpectedUserError(err) {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(0)
	}

	logger.L().Error("Command failed", zap.Error(err))
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	fmt.Fprintln(os.Stderr, "\nFor usage information, run:\n    dts-util --help")
	os.Exit(dts_err.GetExitCode(err))
}
