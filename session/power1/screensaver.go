// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"sync"
	"time"

	dbus "github.com/godbus/dbus/v5"
	sessionmanager "github.com/linuxdeepin/go-dbus-factory/session/org.deepin.dde.sessionmanager1"
	screensaver "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.screensaver"
	networkmanager "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.networkmanager"
	. "github.com/linuxdeepin/go-lib/gettext"
)

const (
	shutdownFrontServiceName = "com.deepin.dde.shutdownFront"
	shutdownFrontPath        = "/com/deepin/dde/shutdownFront"
	shutdownFrontInterface   = shutdownFrontServiceName

	lockShowTimeout = 2 * time.Second
)

// sessionLocker locks through the session manager and holds a screensaver
// inhibit while presentation mode or an inhibitor is active.
type sessionLocker struct {
	sessionManager sessionmanager.SessionManager
	screenSaver    screensaver.ScreenSaver

	mu        sync.Mutex
	cookie    uint32
	inhibited bool
}

func newSessionLocker(sm sessionmanager.SessionManager, ss screensaver.ScreenSaver) *sessionLocker {
	return &sessionLocker{
		sessionManager: sm,
		screenSaver:    ss,
	}
}

func (l *sessionLocker) Lock() bool {
	logger.Info("lock screen")
	err := l.sessionManager.RequestLock(0)
	if err != nil {
		logger.Warning("request lock:", err)
		return false
	}
	return l.waitLockShowing(lockShowTimeout)
}

func (l *sessionLocker) waitLockShowing(timeout time.Duration) bool {
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ticker.C:
			locked, err := l.sessionManager.Locked().Get(0)
			if err != nil {
				logger.Warning(err)
				continue
			}
			if locked {
				return true
			}
		case <-timer.C:
			logger.Debug("lock screen not shown before timeout")
			return false
		}
	}
}

func (l *sessionLocker) Inhibit(inhibit bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inhibited == inhibit {
		return
	}
	if inhibit {
		cookie, err := l.screenSaver.Inhibit(0, appName, Tr("Power manager inhibit"))
		if err != nil {
			logger.Warning("inhibit screensaver:", err)
			return
		}
		l.cookie = cookie
	} else {
		err := l.screenSaver.UnInhibit(0, l.cookie)
		if err != nil {
			logger.Warning("uninhibit screensaver:", err)
		}
		l.cookie = 0
	}
	l.inhibited = inhibit
}

// sessionPrompter shows the shutdown dialog, or falls back to the session
// manager request when the dialog is unavailable.
type sessionPrompter struct {
	sessionBus     *dbus.Conn
	sessionManager sessionmanager.SessionManager
}

func (sp *sessionPrompter) AskShutdown() error {
	obj := sp.sessionBus.Object(shutdownFrontServiceName, shutdownFrontPath)
	err := obj.Call(shutdownFrontInterface+".Show", 0).Err
	if err == nil {
		return nil
	}
	logger.Warning("show shutdown dialog:", err)
	return sp.sessionManager.RequestShutdown(0)
}

type networkSleeper struct {
	nm networkmanager.Manager
}

func (ns *networkSleeper) Sleep(sleep bool) error {
	return ns.nm.Sleep(0, sleep)
}
