// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"strings"
	"sync"
	"syscall"

	ofdbus "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.dbus"
	login1 "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.login1"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/dbusutil/proxy"
)

// logindInhibitor holds one logind inhibitor fd.
type logindInhibitor struct {
	loginManager login1.Manager
	why          string
	mode         string

	mu   sync.Mutex
	what string
	fd   int
}

func newLogindInhibitor(m login1.Manager, what, why, mode string) *logindInhibitor {
	return &logindInhibitor{
		loginManager: m,
		what:         what,
		why:          why,
		mode:         mode,
		fd:           -1,
	}
}

func (li *logindInhibitor) acquireLocked() {
	if li.fd != -1 || li.what == "" {
		return
	}
	fd, err := li.loginManager.Inhibit(0, li.what, dbusServiceName, li.why, li.mode)
	if err != nil {
		logger.Warningf("inhibit %s (%s): %v", li.what, li.mode, err)
		return
	}
	logger.Debugf("inhibit %s (%s) fd: %d", li.what, li.mode, fd)
	li.fd = int(fd)
}

func (li *logindInhibitor) releaseLocked() {
	if li.fd == -1 {
		return
	}
	logger.Debugf("release inhibit %s (%s)", li.what, li.mode)
	err := syscall.Close(li.fd)
	if err != nil {
		logger.Warning("failed to close fd:", err)
	}
	li.fd = -1
}

func (li *logindInhibitor) acquire() {
	li.mu.Lock()
	li.acquireLocked()
	li.mu.Unlock()
}

func (li *logindInhibitor) release() {
	li.mu.Lock()
	li.releaseLocked()
	li.mu.Unlock()
}

// reacquire takes a new fd if one was held, used after logind restarts.
func (li *logindInhibitor) reacquire() {
	li.mu.Lock()
	defer li.mu.Unlock()
	if li.fd == -1 {
		return
	}
	li.releaseLocked()
	li.acquireLocked()
}

// setWhat switches the inhibited events and retakes the fd.
func (li *logindInhibitor) setWhat(what string) {
	li.mu.Lock()
	defer li.mu.Unlock()
	if li.what == what && li.fd != -1 {
		return
	}
	li.releaseLocked()
	li.what = what
	li.acquireLocked()
}

func (li *logindInhibitor) held() bool {
	li.mu.Lock()
	defer li.mu.Unlock()
	return li.fd != -1
}

// handleKeysWhat lists the events the daemon handles itself, those whose
// logind-handle flag is off.
func handleKeysWhat(cfg *Config) string {
	var what []string
	if !cfg.LogindHandlePowerKey {
		what = append(what, "handle-power-key")
	}
	if !cfg.LogindHandleSuspendKey {
		what = append(what, "handle-suspend-key")
	}
	if !cfg.LogindHandleHibernateKey {
		what = append(what, "handle-hibernate-key")
	}
	if !cfg.LogindHandleLidSwitch {
		what = append(what, "handle-lid-switch")
	}
	return strings.Join(what, ":")
}

func newHandleKeysInhibitor(m login1.Manager, cfg *Config) *logindInhibitor {
	return newLogindInhibitor(m, handleKeysWhat(cfg),
		"handling key press and lid switch close", "block")
}

// login1Watcher retakes the inhibitors when login1 gets a new owner.
type login1Watcher struct {
	dbusObj    ofdbus.DBus
	inhibitors []*logindInhibitor
}

func newLogin1Watcher(dbusObj ofdbus.DBus, sigLoop *dbusutil.SignalLoop,
	inhibitors ...*logindInhibitor) *login1Watcher {
	w := &login1Watcher{
		dbusObj:    dbusObj,
		inhibitors: inhibitors,
	}
	dbusObj.InitSignalExt(sigLoop, true)
	_, err := dbusObj.ConnectNameOwnerChanged(func(name, oldOwner, newOwner string) {
		if name == login1ServiceName && newOwner != "" && oldOwner == "" {
			logger.Info("login1 restarted, inhibit again")
			for _, li := range w.inhibitors {
				li.reacquire()
			}
		}
	})
	if err != nil {
		logger.Warning(err)
	}
	return w
}

func (w *login1Watcher) destroy() {
	w.dbusObj.RemoveHandler(proxy.RemoveAllHandlers)
}
