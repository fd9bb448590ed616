// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	"fmt"
	"os"

	"github.com/ikewire/ikewire/logger"
	"gopkg.in/yaml.v2"
)

var IkewireConfig Config

func InitConfigFactory(f string) error {
	content, err := os.ReadFile(f)
	if err != nil {
		return err
	}

	IkewireConfig = Config{}
	if err = yaml.Unmarshal(content, &IkewireConfig); err != nil {
		return err
	}

	return nil
}

func CheckConfigVersion() error {
	currentVersion := IkewireConfig.getVersion()

	if currentVersion != IKEWIRE_EXPECTED_CONFIG_VERSION {
		return fmt.Errorf("config version is [%s], but expected is [%s]",
			currentVersion, IKEWIRE_EXPECTED_CONFIG_VERSION)
	}

	logger.CfgLog.Infof("config version [%s]", currentVersion)

	return nil
}
