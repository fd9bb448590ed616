// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/ikewire/ikewire/logger"
	"github.com/ikewire/ikewire/service"
)

var IKEWIRE = &service.Ikewire{}

var appLog *zap.SugaredLogger

func init() {
	appLog = logger.AppLog
}

func main() {
	app := cli.NewApp()
	app.Name = "ikewire"
	appLog.Infoln(app.Name)
	app.Usage = "-cfg ikewire configuration file"
	app.Action = action
	app.Flags = IKEWIRE.GetCliCmd()
	if err := app.Run(os.Args); err != nil {
		appLog.Errorf("ikewire run error: %v", err)
	}
}

func action(c *cli.Context) error {
	if err := IKEWIRE.Initialize(c); err != nil {
		logger.CfgLog.Errorf("%+v", err)
		return fmt.Errorf("failed to initialize")
	}

	IKEWIRE.Start()

	return nil
}
