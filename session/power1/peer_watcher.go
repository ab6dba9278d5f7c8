// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"sync"

	ofdbus "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.dbus"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/dbusutil/proxy"
)

// busPeerWatcher follows NameOwnerChanged on the session bus and reports
// watched unique names that lost their owner.
type busPeerWatcher struct {
	mu           sync.Mutex
	peers        map[string]struct{}
	dbusObj      ofdbus.DBus
	OnDisconnect func(peer string)
}

func newBusPeerWatcher(dbusObj ofdbus.DBus, sigLoop *dbusutil.SignalLoop) *busPeerWatcher {
	w := &busPeerWatcher{
		peers:   make(map[string]struct{}),
		dbusObj: dbusObj,
	}
	dbusObj.InitSignalExt(sigLoop, true)
	_, err := dbusObj.ConnectNameOwnerChanged(w.handleNameOwnerChanged)
	if err != nil {
		logger.Warning(err)
	}
	return w
}

func (w *busPeerWatcher) handleNameOwnerChanged(name, oldOwner, newOwner string) {
	if newOwner != "" {
		return
	}
	w.mu.Lock()
	_, ok := w.peers[name]
	if ok {
		delete(w.peers, name)
	}
	w.mu.Unlock()

	if ok && w.OnDisconnect != nil {
		logger.Debug("peer disconnected:", name, oldOwner)
		w.OnDisconnect(name)
	}
}

func (w *busPeerWatcher) Watch(peer string) {
	w.mu.Lock()
	w.peers[peer] = struct{}{}
	w.mu.Unlock()
}

func (w *busPeerWatcher) Unwatch(peer string) {
	w.mu.Lock()
	delete(w.peers, peer)
	w.mu.Unlock()
}

func (w *busPeerWatcher) destroy() {
	w.dbusObj.RemoveHandler(proxy.RemoveAllHandlers)
}
