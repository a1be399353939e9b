// main.go
package main

import (
	"github.com/drawthingsai/dts-util/cmd"
	"github.com/drawthingsai/dts-util/pkg/logger"
	"github.com/drawthingsai/dts-util/pkg/telemetry"
)

func main() {
	logger.InitializeWithFallback()

	if err := telemetry.Init("dts-util"); err != nil {
		logger.L().Warn("Telemetry disabled: " + err.Error())
	}

	cmd.Execute()
}
