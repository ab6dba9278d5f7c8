// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"strconv"

	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

func (m *Manager) Inhibit(sender dbus.Sender, appName, reason string) (cookie uint32, busErr *dbus.Error) {
	cookie, err := m.inhibits.Inhibit(appName, reason, string(sender))
	if err != nil {
		return 0, toBusError(err)
	}
	return cookie, nil
}

func (m *Manager) UnInhibit(cookie uint32) *dbus.Error {
	return toBusError(m.inhibits.UnInhibit(cookie))
}

func (m *Manager) HasInhibit() (bool, *dbus.Error) {
	return m.inhibits.HasInhibit(), nil
}

func (m *Manager) GetInhibitors() ([]string, *dbus.Error) {
	return m.inhibits.List(), nil
}

func (m *Manager) Suspend() *dbus.Error {
	return toBusError(m.policy.RequestSleep(PowerActionSuspend, false))
}

func (m *Manager) Hibernate() *dbus.Error {
	return toBusError(m.policy.RequestSleep(PowerActionHibernate, false))
}

func (m *Manager) Shutdown() *dbus.Error {
	return toBusError(m.policy.Shutdown())
}

func (m *Manager) Reboot() *dbus.Error {
	return toBusError(m.policy.Reboot())
}

func (m *Manager) caps() SleepCaps {
	return m.policy.caps()
}

func (m *Manager) CanSuspend() (bool, *dbus.Error) {
	return m.caps().CanSuspend, nil
}

func (m *Manager) CanHibernate() (bool, *dbus.Error) {
	return m.caps().CanHibernate, nil
}

func (m *Manager) CanShutdown() (bool, *dbus.Error) {
	return m.caps().CanShutdown, nil
}

func (m *Manager) CanReboot() (bool, *dbus.Error) {
	return m.caps().CanReboot, nil
}

func (m *Manager) GetOnBattery() (bool, *dbus.Error) {
	return m.policy.State().OnBattery, nil
}

func (m *Manager) GetLowBattery() (bool, *dbus.Error) {
	return m.policy.State().OnLowBattery, nil
}

// GetConfig returns the capability flags followed by every config key.
func (m *Manager) GetConfig() (map[string]string, *dbus.Error) {
	return m.configSnapshot(), nil
}

func (m *Manager) configSnapshot() map[string]string {
	result := m.policy.Config().toMap()
	caps := m.caps()
	state := m.policy.State()
	flags := map[string]bool{
		"sleep-button":     m.hasButton(ButtonSleep),
		"power-button":     m.hasButton(ButtonPower),
		"hibernate-button": m.hasButton(ButtonHibernate),
		"battery-button":   m.hasButton(ButtonBattery),
		"auth-suspend":     caps.AuthSuspend,
		"auth-hibernate":   caps.AuthHibernate,
		"can-suspend":      caps.CanSuspend,
		"can-hibernate":    caps.CanHibernate,
		"can-shutdown":     caps.CanShutdown,
		"can-reboot":       caps.CanReboot,
		"has-battery":      m.policy.hasBattery(),
		"has-lid":          state.LidPresent,
		"has-brightness":   m.brightness.HasHardware(),
	}
	for key, value := range flags {
		result[key] = strconv.FormatBool(value)
	}
	return result
}

func (m *Manager) SetConfig(key, value string) *dbus.Error {
	return toBusError(m.setConfig(key, value))
}

func (m *Manager) setConfig(key, value string) error {
	m.configMu.Lock()
	defer m.configMu.Unlock()

	cfg := m.policy.Config()
	err := cfg.Set(key, value)
	if err != nil {
		return err
	}
	err = saveConfig(m.configFile, cfg)
	if err != nil {
		logger.Warning("save config:", err)
	}
	m.applyConfig(cfg)
	return nil
}

func (m *Manager) GetInfo() (name, version, vendor string, busErr *dbus.Error) {
	return appName, appVersion, appVendor, nil
}

func (m *Manager) HandleButton(name string) *dbus.Error {
	b, err := parseButton(name)
	if err != nil {
		return toBusError(err)
	}
	m.noteButton(b)
	m.policy.HandleButton(b)
	return nil
}

func (m *Manager) SetPresentationMode(on bool) *dbus.Error {
	return toBusError(m.setConfig("presentation-mode", strconv.FormatBool(on)))
}

func (m *Manager) Dump() (string, *dbus.Error) {
	return dumpState(m.policy), nil
}

func (m *Manager) Quit() *dbus.Error {
	logger.Info("quit requested")
	if m.quit != nil {
		// reply first
		go m.quit()
	}
	return nil
}

func (m *Manager) Restart() *dbus.Error {
	logger.Info("restart requested")
	go restartDaemon(m.stopModules)
	return nil
}

func (m *Manager) GetExportedMethods() dbusutil.ExportedMethods {
	return dbusutil.ExportedMethods{
		{
			Name:    "Inhibit",
			Fn:      m.Inhibit,
			InArgs:  []string{"appName", "reason"},
			OutArgs: []string{"cookie"},
		},
		{
			Name:   "UnInhibit",
			Fn:     m.UnInhibit,
			InArgs: []string{"cookie"},
		},
		{
			Name:    "HasInhibit",
			Fn:      m.HasInhibit,
			OutArgs: []string{"hasInhibit"},
		},
		{
			Name:    "GetInhibitors",
			Fn:      m.GetInhibitors,
			OutArgs: []string{"inhibitors"},
		},
		{
			Name: "Suspend",
			Fn:   m.Suspend,
		},
		{
			Name: "Hibernate",
			Fn:   m.Hibernate,
		},
		{
			Name: "Shutdown",
			Fn:   m.Shutdown,
		},
		{
			Name: "Reboot",
			Fn:   m.Reboot,
		},
		{
			Name:    "CanSuspend",
			Fn:      m.CanSuspend,
			OutArgs: []string{"can"},
		},
		{
			Name:    "CanHibernate",
			Fn:      m.CanHibernate,
			OutArgs: []string{"can"},
		},
		{
			Name:    "CanShutdown",
			Fn:      m.CanShutdown,
			OutArgs: []string{"can"},
		},
		{
			Name:    "CanReboot",
			Fn:      m.CanReboot,
			OutArgs: []string{"can"},
		},
		{
			Name:    "GetOnBattery",
			Fn:      m.GetOnBattery,
			OutArgs: []string{"onBattery"},
		},
		{
			Name:    "GetLowBattery",
			Fn:      m.GetLowBattery,
			OutArgs: []string{"lowBattery"},
		},
		{
			Name:    "GetConfig",
			Fn:      m.GetConfig,
			OutArgs: []string{"config"},
		},
		{
			Name:   "SetConfig",
			Fn:     m.SetConfig,
			InArgs: []string{"key", "value"},
		},
		{
			Name:    "GetInfo",
			Fn:      m.GetInfo,
			OutArgs: []string{"name", "version", "vendor"},
		},
		{
			Name:   "HandleButton",
			Fn:     m.HandleButton,
			InArgs: []string{"name"},
		},
		{
			Name:   "SetPresentationMode",
			Fn:     m.SetPresentationMode,
			InArgs: []string{"on"},
		},
		{
			Name:    "Dump",
			Fn:      m.Dump,
			OutArgs: []string{"state"},
		},
		{
			Name: "Quit",
			Fn:   m.Quit,
		},
		{
			Name: "Restart",
			Fn:   m.Restart,
		},
	}
}
