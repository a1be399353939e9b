// cmd/restart.go

package cmd

import (
	"fmt"
	"os"

	"github.com/drawthingsai/dts-util/pkg/config"
	"github.com/drawthingsai/dts-util/pkg/dts_cli"
	"github.com/drawthingsai/dts-util/pkg/dts_io"
	"github.com/drawthingsai/dts-util/pkg/installer"
	"github.com/spf13/cobra"
)

// RestartCmd reloads the installed service. It never installs: with no
// service file present it fails fast.
var RestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the gRPCServerCLI service",
	RunE: dts_cli.Wrap(func(rc *dts_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.NewViper())
		if err != nil {
			return err
		}

		orch, err := installer.New(cfg)
		if err != nil {
			return err
		}

		if _, err := orch.Restart(rc.Ctx); err != nil {
			return err
		}

		fmt.Fprintln(os.Stderr, "Service restarted successfully")
		return nil
	}),
}
