// cmd/status.go

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

// StatusCmd verifies the server process exists and is listening on its
// port. Process existence alone is never enough.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the gRPCServerCLI service is running and listening",
	RunE: dts_cli.Wrap(func(rc *dts_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		v := config.NewViper()
		_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))

		cfg, err := config.Load(v)
		if err != nil {
			return err
		}

		orch, err := installer.New(cfg)
		if err != nil {
			return err
		}

		if _, err := orch.Status(rc.Ctx); err != nil {
			return err
		}

		fmt.Fprintln(os.Stderr, "Server is running and responding!")
		return nil
	}),
}

func init() {
	StatusCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to check")
}
