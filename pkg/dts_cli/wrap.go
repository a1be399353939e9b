// pkg/dts_cli/wrap.go

package dts_cli

import (
	"context"

	"github.com/drawthingsai/dts-util/pkg/dts_err"
	"github.com/drawthingsai/dts-util/pkg/dts_io"
	"github.com/drawthingsai/dts-util/pkg/logger"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Wrap ensures panic recovery, telemetry and logging around a command.
func Wrap(fn func(rc *dts_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		rc := dts_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		err = fn(rc, cmd, args)
		if err != nil && !dts_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
