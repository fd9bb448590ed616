// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	utilLogger "github.com/omec-project/util/logger"
)

const (
	IKEWIRE_EXPECTED_CONFIG_VERSION = "1.0.0"
)

type Config struct {
	Info          *Info          `yaml:"info"`
	Configuration *Configuration `yaml:"configuration"`
	Logger        *Logger        `yaml:"logger"`
}

type Info struct {
	Version     string `yaml:"version,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type Configuration struct {
	IkeBindAddress string `yaml:"ikeBindAddress"`
	IkePort        int    `yaml:"ikePort,omitempty"`
	NattPort       int    `yaml:"nattPort,omitempty"`
	Fqdn           string `yaml:"fqdn,omitempty"` // e.g. gw.ikewire.org
	PreSharedKey   string `yaml:"preSharedKey,omitempty"`
	PrivateKey     string `yaml:"privateKey,omitempty"`
	Certificate    string `yaml:"certificate,omitempty"`
}

// Logger carries per-module log level settings.
type Logger struct {
	Ikewire *utilLogger.LogSetting `yaml:"ikewire"`
}

func (c *Config) getVersion() string {
	if c.Info != nil && c.Info.Version != "" {
		return c.Info.Version
	}
	return ""
}
