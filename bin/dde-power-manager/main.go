// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-power-manager/loader"
	login1 "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.login1"
	"github.com/linuxdeepin/go-lib/dbusutil"
	. "github.com/linuxdeepin/go-lib/gettext"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/utils"

	// modules:
	_ "github.com/linuxdeepin/dde-power-manager/session/power1"
)

const serviceName = "org.deepin.dde.PowerManager1"

var logger = log.NewLogger("dde-power-manager")

var _options struct {
	verbose  bool
	logLevel string
	list     bool
	disable  string
}

func toLogLevel(name string) (log.Priority, error) {
	name = strings.ToLower(name)
	logLevel := log.LevelInfo
	var err error
	switch name {
	case "":
		logLevel = log.LevelInfo
	case "error":
		logLevel = log.LevelError
	case "warn":
		logLevel = log.LevelWarning
	case "info":
		logLevel = log.LevelInfo
	case "debug":
		logLevel = log.LevelDebug
	case "no":
		logLevel = log.LevelDisable
	default:
		err = fmt.Errorf("%s is not support", name)
	}

	return logLevel, err
}

func init() {
	// -v | -verbose
	const verboseUsage = "Show much more message, shorthand for --loglevel debug."
	flag.BoolVar(&_options.verbose, "v", false, verboseUsage)
	flag.BoolVar(&_options.verbose, "verbose", false, verboseUsage)

	// -l | -loglevel
	const logLevelUsage = "Set log level, possible value is error/warn/info/debug/no, info is default"
	flag.StringVar(&_options.logLevel, "l", "", logLevelUsage)
	flag.StringVar(&_options.logLevel, "loglevel", "", logLevelUsage)

	// -list
	flag.BoolVar(&_options.list, "list", false, "List all the modules.")

	// -disable
	flag.StringVar(&_options.disable, "disable", "", "Disable modules, comma separated.")
}

func isInShutdown() bool {
	bus, err := dbus.SystemBus()
	if err != nil {
		return false
	}
	manager := login1.NewManager(bus)
	val, err := manager.PreparingForShutdown().Get(0)
	if err != nil {
		return false
	}
	return val
}

func splitModules(value string) []string {
	var result []string
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			result = append(result, name)
		}
	}
	return result
}

func main() {
	logger.SetLogLevel(log.LevelInfo)
	flag.Parse()

	if _options.list {
		for _, module := range loader.List() {
			fmt.Println(module.Name(), module.GetDependencies())
		}
		return
	}

	if isInShutdown() {
		logger.Warning("system is in shutdown, no need to run")
		os.Exit(1)
	}

	InitI18n()
	BindTextdomainCodeset("dde-power-manager", "UTF-8")
	Textdomain("dde-power-manager")

	if _options.verbose {
		_options.logLevel = "debug"
	}
	logLevel, err := toLogLevel(_options.logLevel)
	if err != nil {
		logger.Warning("failed to parse loglevel:", err)
		os.Exit(1)
	}

	service, err := dbusutil.NewSessionService()
	if err != nil {
		logger.Fatal("failed to new session service:", err)
	}
	hasOwner, err := service.NameHasOwner(serviceName)
	if err != nil {
		logger.Fatal(err)
	}
	if hasOwner {
		logger.Warningf("%s is running", serviceName)
		os.Exit(0)
	}

	loader.SetService(service)
	if _options.logLevel == "" &&
		(utils.IsEnvExists(log.DebugLevelEnv) || utils.IsEnvExists(log.DebugMatchEnv)) {
		logger.Info("Log level is none and debug env exists, so do not call loader.SetLogLevel")
	} else {
		logger.SetLogLevel(logLevel)
		loader.SetLogLevel(logLevel)
	}

	var modules []string
	for _, module := range loader.List() {
		modules = append(modules, module.Name())
	}
	err = loader.EnableModules(modules, splitModules(_options.disable),
		loader.EnableFlagIgnoreMissingModule)
	if err != nil {
		logger.Warning(err)
		os.Exit(1)
	}
	defer loader.StopAll()

	service.Wait()
	logger.Info("quit")
}
