// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"os"
	"strings"

	dbus "github.com/godbus/dbus/v5"
	login1 "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.login1"
	"golang.org/x/xerrors"
)

const (
	login1ServiceName = "org.freedesktop.login1"

	consoleKitServiceName = "org.freedesktop.ConsoleKit"
	consoleKitPath        = "/org/freedesktop/ConsoleKit/Manager"
	consoleKitInterface   = "org.freedesktop.ConsoleKit.Manager"

	sysPowerStateFile = "/sys/power/state"
)

// parseCanResult maps the logind style answer "yes", "challenge", "no"
// or "na" to capability and authorization.
func parseCanResult(result string) (can, auth bool) {
	switch result {
	case "yes":
		return true, true
	case "challenge":
		return true, false
	case "no":
		return true, false
	}
	return false, false
}

type logindSleepBackend struct {
	loginManager login1.Manager
}

func (b *logindSleepBackend) Name() string {
	return "logind"
}

// Async is true: logind replies before the system goes down and reports
// the resume through PrepareForSleep.
func (b *logindSleepBackend) Async() bool {
	return true
}

func (b *logindSleepBackend) Caps() SleepCaps {
	var caps SleepCaps
	query := func(name string, fn func(dbus.Flags) (string, error)) (bool, bool) {
		result, err := fn(0)
		if err != nil {
			logger.Warningf("logind %s: %v", name, err)
			return false, false
		}
		return parseCanResult(result)
	}
	caps.CanSuspend, caps.AuthSuspend = query("CanSuspend", b.loginManager.CanSuspend)
	caps.CanHibernate, caps.AuthHibernate = query("CanHibernate", b.loginManager.CanHibernate)
	caps.CanShutdown, caps.AuthShutdown = query("CanPowerOff", b.loginManager.CanPowerOff)
	caps.CanReboot, caps.AuthReboot = query("CanReboot", b.loginManager.CanReboot)
	return caps
}

func (b *logindSleepBackend) Suspend() error {
	return b.loginManager.Suspend(0, true)
}

func (b *logindSleepBackend) Hibernate() error {
	return b.loginManager.Hibernate(0, true)
}

func (b *logindSleepBackend) Shutdown() error {
	return b.loginManager.PowerOff(0, true)
}

func (b *logindSleepBackend) Reboot() error {
	return b.loginManager.Reboot(0, true)
}

// consoleKitSleepBackend talks to ConsoleKit2, which has no go-dbus-factory
// proxy.
type consoleKitSleepBackend struct {
	obj dbus.BusObject
}

func newConsoleKitSleepBackend(sysBus *dbus.Conn) *consoleKitSleepBackend {
	return &consoleKitSleepBackend{
		obj: sysBus.Object(consoleKitServiceName, consoleKitPath),
	}
}

func (b *consoleKitSleepBackend) Name() string {
	return "consolekit2"
}

func (b *consoleKitSleepBackend) can(method string) (bool, bool) {
	var result string
	err := b.obj.Call(consoleKitInterface+"."+method, 0).Store(&result)
	if err != nil {
		logger.Debugf("consolekit %s: %v", method, err)
		return false, false
	}
	return parseCanResult(result)
}

func (b *consoleKitSleepBackend) Caps() SleepCaps {
	var caps SleepCaps
	caps.CanSuspend, caps.AuthSuspend = b.can("CanSuspend")
	caps.CanHibernate, caps.AuthHibernate = b.can("CanHibernate")
	caps.CanShutdown, caps.AuthShutdown = b.can("CanPowerOff")
	caps.CanReboot, caps.AuthReboot = b.can("CanReboot")
	return caps
}

// usable reports a ConsoleKit2 daemon that can suspend or hibernate.
func (b *consoleKitSleepBackend) usable() bool {
	caps := b.Caps()
	return caps.CanSuspend || caps.CanHibernate
}

func (b *consoleKitSleepBackend) call(method string) error {
	return b.obj.Call(consoleKitInterface+"."+method, 0, true).Err
}

func (b *consoleKitSleepBackend) Suspend() error {
	return b.call("Suspend")
}

func (b *consoleKitSleepBackend) Hibernate() error {
	return b.call("Hibernate")
}

func (b *consoleKitSleepBackend) Shutdown() error {
	return b.call("PowerOff")
}

func (b *consoleKitSleepBackend) Reboot() error {
	return b.call("Reboot")
}

// helperSleepBackend writes /sys/power/state through the privileged helper.
// It cannot shut down or reboot.
type helperSleepBackend struct {
	runner     commandRunner
	helperPath string
	stateFile  string
}

func newHelperSleepBackend() *helperSleepBackend {
	return &helperSleepBackend{
		runner:     execRunner{},
		helperPath: helperProcessPath,
		stateFile:  sysPowerStateFile,
	}
}

func (b *helperSleepBackend) Name() string {
	return "helper"
}

func (b *helperSleepBackend) sysStates() []string {
	content, err := os.ReadFile(b.stateFile)
	if err != nil {
		logger.Debug(err)
		return nil
	}
	return strings.Fields(string(content))
}

func (b *helperSleepBackend) Caps() SleepCaps {
	var caps SleepCaps
	_, err := os.Stat(b.helperPath)
	helperOk := err == nil
	for _, state := range b.sysStates() {
		switch state {
		case "mem":
			caps.CanSuspend = true
		case "disk":
			caps.CanHibernate = true
		}
	}
	caps.AuthSuspend = caps.CanSuspend && helperOk
	caps.AuthHibernate = caps.CanHibernate && helperOk
	return caps
}

func (b *helperSleepBackend) run(flag string) error {
	out, err := b.runner.Run("pkexec", b.helperPath, flag)
	if err != nil {
		return xerrors.Errorf("%s %s: %w (%s)", b.helperPath, flag,
			err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *helperSleepBackend) Suspend() error {
	return b.run("--suspend")
}

func (b *helperSleepBackend) Hibernate() error {
	return b.run("--hibernate")
}

func (b *helperSleepBackend) Shutdown() error {
	return newError(ErrorCodeNoHardwareSupport, "helper backend cannot shut down")
}

func (b *helperSleepBackend) Reboot() error {
	return newError(ErrorCodeNoHardwareSupport, "helper backend cannot reboot")
}

// chooseSleepBackend prefers logind, then ConsoleKit2, then the helper.
func chooseSleepBackend(sysBus *dbus.Conn, loginManager login1.Manager) SleepBackend {
	if systemBusHasName(sysBus, login1ServiceName) {
		logger.Info("using logind sleep backend")
		return &logindSleepBackend{loginManager: loginManager}
	}
	ck := newConsoleKitSleepBackend(sysBus)
	if ck.usable() {
		logger.Info("using consolekit2 sleep backend")
		return ck
	}
	logger.Info("using helper sleep backend")
	return newHelperSleepBackend()
}
