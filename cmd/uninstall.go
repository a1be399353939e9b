// cmd/uninstall.go

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

// UninstallCmd removes the service, the binary, and any stale legacy
// registrations. Best effort throughout: running it twice is fine.
var UninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove gRPCServerCLI, its service, and related files",
	RunE: dts_cli.Wrap(func(rc *dts_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

		v := config.NewViper()
		v.Set("quiet", quiet)
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}

		orch, err := installer.New(cfg)
		if err != nil {
			return err
		}

		if _, err := orch.Uninstall(rc.Ctx); err != nil {
			return err
		}

		fmt.Fprintln(os.Stderr, "\nUninstall complete!")
		fmt.Fprintln(os.Stderr, "Note: Model directory was not removed.")
		return nil
	}),
}

func init() {
	UninstallCmd.Flags().BoolP("quiet", "q", false, "Minimize output and assume default answers to prompts")
}
