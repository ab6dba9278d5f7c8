// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"strings"
	"time"

	"golang.org/x/xerrors"
)

const (
	dbusServiceName = "org.deepin.dde.PowerManager1"
	dbusPath        = "/org/deepin/dde/PowerManager1"
	dbusInterface   = dbusServiceName

	fdoInhibitServiceName = "org.freedesktop.PowerManagement"
	fdoInhibitPath        = "/org/freedesktop/PowerManagement/Inhibit"
	fdoInhibitInterface   = "org.freedesktop.PowerManagement.Inhibit"

	appName    = "dde-power-manager"
	appVersion = "1.0.0"
	appVendor  = "deepin"
)

const (
	// inactivity timeouts are in minutes, this value disables the alarm
	inactivityNever = 14
	// dim timeouts are in seconds, this value disables the alarm
	brightnessDimNever = 9

	sleepKeyDebounce = time.Second
	lidSwitchDelay   = 500 * time.Millisecond

	// new cookies land in (max, max+cookieRange)
	cookieRange = 40

	criticalLevelMin = 1
	criticalLevelMax = 20
	// low threshold is critical + lowLevelOffset
	lowLevelOffset = 10
)

const (
	iconBatteryFull     = "battery-full-charged"
	iconBatteryCharging = "battery-good-charging"
	iconBatteryLow      = "battery-caution"
	iconBatteryCritical = "battery-empty"
	iconBatteryEmpty    = "battery-empty"
	iconACAdapter       = "ac-adapter"
	iconBrightness      = "display-brightness"
	iconKbdBrightness   = "keyboard-brightness"
	iconError           = "dialog-error"
	iconSleep           = "system-suspend"
)

type PowerAction int32

const (
	PowerActionNothing PowerAction = iota
	PowerActionSuspend
	PowerActionHibernate
	PowerActionAsk
	PowerActionShutdown
	PowerActionLockScreen
)

var powerActionNames = []string{
	PowerActionNothing:    "nothing",
	PowerActionSuspend:    "suspend",
	PowerActionHibernate:  "hibernate",
	PowerActionAsk:        "ask",
	PowerActionShutdown:   "shutdown",
	PowerActionLockScreen: "lock-screen",
}

func (a PowerAction) String() string {
	if a < 0 || int(a) >= len(powerActionNames) {
		return "unknown"
	}
	return powerActionNames[a]
}

func (a PowerAction) isSleep() bool {
	return a == PowerActionSuspend || a == PowerActionHibernate
}

func parsePowerAction(s string) (PowerAction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range powerActionNames {
		if name == s {
			return PowerAction(i), nil
		}
	}
	return PowerActionNothing, xerrors.Errorf("invalid power action %q", s)
}

type dpmsSleepMode string

const (
	dpmsSleepModeStandby dpmsSleepMode = "Standby"
	dpmsSleepModeSuspend dpmsSleepMode = "Suspend"
)
