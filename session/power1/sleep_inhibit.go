// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	login1 "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.login1"
	"github.com/linuxdeepin/go-lib/dbusutil/proxy"
)

// sleepInhibitor holds a delay inhibitor so the screen gets locked before
// logind suspends, whoever asked for the sleep.
type sleepInhibitor struct {
	*logindInhibitor
	hasRunBeforeSleep bool

	OnBeforeSleep func()
	OnWakeup      func()
}

func newSleepInhibitor(loginManager login1.Manager) *sleepInhibitor {
	inhibitor := &sleepInhibitor{
		logindInhibitor: newLogindInhibitor(loginManager, "sleep",
			"run screen lock", "delay"),
	}
	_, err := loginManager.ConnectPrepareForSleep(inhibitor.handlePrepareForSleep)
	if err != nil {
		logger.Warning(err)
	}
	return inhibitor
}

func (inhibitor *sleepInhibitor) handlePrepareForSleep(before bool) {
	logger.Info("prepare for sleep:", before)
	if before {
		inhibitor.hasRunBeforeSleep = true
		if inhibitor.OnBeforeSleep != nil {
			inhibitor.OnBeforeSleep()
		}
		inhibitor.release()
		return
	}

	if !inhibitor.hasRunBeforeSleep {
		logger.Debug("not run before sleep, skip wakeup")
		return
	}
	inhibitor.hasRunBeforeSleep = false
	if inhibitor.OnWakeup != nil {
		inhibitor.OnWakeup()
	}
	inhibitor.acquire()
}

func (inhibitor *sleepInhibitor) destroy() {
	inhibitor.release()
	inhibitor.loginManager.RemoveHandler(proxy.RemoveAllHandlers)
}
