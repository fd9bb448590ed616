// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	utilLogger "github.com/omec-project/util/logger"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ikewire/ikewire/factory"
	"github.com/ikewire/ikewire/ike"
	"github.com/ikewire/ikewire/logger"
	"github.com/ikewire/ikewire/util"
)

// Ikewire main struct
type Ikewire struct {
	registry *ike.SocketRegistry
	sockets  []*ike.IkeSocket
}

// Config holds configuration file path
type Config struct {
	cfg string
}

var config Config

var ikewireCLi = []cli.Flag{
	cli.StringFlag{
		Name:     "cfg",
		Usage:    "ikewire config file",
		Required: true,
	},
}

func (*Ikewire) GetCliCmd() (flags []cli.Flag) {
	return ikewireCLi
}

// Initialize loads config and sets log levels
func (iw *Ikewire) Initialize(c *cli.Context) error {
	config = Config{cfg: c.String("cfg")}
	absPath, err := filepath.Abs(config.cfg)
	if err != nil {
		logger.CfgLog.Errorln(err)
		return err
	}
	if err := factory.InitConfigFactory(absPath); err != nil {
		return err
	}
	if err := factory.CheckConfigVersion(); err != nil {
		return err
	}
	iw.setLogLevel()
	return nil
}

// setLogLevel configures log levels from the config file
func (iw *Ikewire) setLogLevel() {
	cfgLogger := factory.IkewireConfig.Logger
	if cfgLogger == nil {
		logger.InitLog.Warnln("config without log level setting")
		return
	}
	setModuleLogLevel(cfgLogger.Ikewire, logger.InitLog, logger.SetLogLevel, "IKEWIRE")
}

// setModuleLogLevel is a helper to reduce repetition in log level setup
func setModuleLogLevel(moduleCfg *utilLogger.LogSetting, logObj *zap.SugaredLogger, setLevel func(zapcore.Level), moduleName string) {
	if moduleCfg == nil {
		logObj.Warnf("%s Log level not set. Default set to [info] level", moduleName)
		setLevel(zap.InfoLevel)
		return
	}
	if moduleCfg.DebugLevel != "" {
		level, err := zapcore.ParseLevel(moduleCfg.DebugLevel)
		if err != nil {
			logObj.Warnf("%s Log level [%s] is invalid, set to [info] level", moduleName, moduleCfg.DebugLevel)
			setLevel(zap.InfoLevel)
		} else {
			logObj.Infof("%s Log level is set to [%s] level", moduleName, level)
			setLevel(level)
		}
	} else {
		logObj.Warnf("%s Log level not set. Default set to [info] level", moduleName)
		setLevel(zap.InfoLevel)
	}
}

// Start binds the IKE and NAT-T sockets and blocks until shutdown
func (iw *Ikewire) Start() {
	logger.InitLog.Infoln("server started")
	defer util.RecoverWithLog(logger.InitLog)

	cfg := factory.IkewireConfig.Configuration
	if cfg == nil {
		logger.InitLog.Errorln("no configuration section")
		return
	}
	ikePort := cfg.IkePort
	if ikePort == 0 {
		ikePort = ike.DEFAULT_IKE_PORT
	}
	nattPort := cfg.NattPort
	if nattPort == 0 {
		nattPort = ike.DEFAULT_NATT_PORT
	}

	iw.registry = ike.NewSocketRegistry()
	for _, port := range []int{ikePort, nattPort} {
		bindAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", cfg.IkeBindAddress, port))
		if err != nil {
			logger.InitLog.Errorf("resolve UDP address failed: %+v", err)
			iw.Terminate()
			return
		}
		sock, err := iw.registry.Acquire(bindAddr)
		if err != nil {
			logger.InitLog.Errorf("bind IKE socket failed: %+v", err)
			iw.Terminate()
			return
		}
		iw.sockets = append(iw.sockets, sock)
	}
	logger.InitLog.Infoln("IKE service running")

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
	<-signalChannel
	iw.Terminate()
}

// Terminate releases every held socket reference
func (iw *Ikewire) Terminate() {
	logger.InitLog.Infoln("terminating ikewire")
	for _, sock := range iw.sockets {
		sock.Release()
	}
	iw.sockets = nil
}
