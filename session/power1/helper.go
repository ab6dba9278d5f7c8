// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"os"

	"github.com/godbus/dbus/v5"
	sessionmanager "github.com/linuxdeepin/go-dbus-factory/session/org.deepin.dde.sessionmanager1"
	sessiondbus "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.dbus"
	notifications "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.notifications"
	screensaver "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.screensaver"
	ofdbus "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.dbus"
	login1 "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.login1"
	networkmanager "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.networkmanager"
	"github.com/linuxdeepin/go-lib/dbusutil/proxy"
	x "github.com/linuxdeepin/go-x11-client"
)

// Helper holds the bus proxies and the X connection shared by the
// daemon parts.
type Helper struct {
	sysBus     *dbus.Conn
	sessionBus *dbus.Conn

	// system bus
	LoginManager   login1.Manager // sig
	SysDBusDaemon  ofdbus.DBus    // sig
	NetworkManager networkmanager.Manager

	// session bus
	Notifications     notifications.Notifications // sig
	SessionDBusDaemon sessiondbus.DBus            // sig
	SessionManager    sessionmanager.SessionManager
	ScreenSaver       screensaver.ScreenSaver

	xConn *x.Conn
}

func newHelper(systemBus, sessionBus *dbus.Conn) (*Helper, error) {
	h := &Helper{}
	err := h.init(systemBus, sessionBus)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Helper) init(sysBus, sessionBus *dbus.Conn) error {
	var err error
	h.sysBus = sysBus
	h.sessionBus = sessionBus

	h.LoginManager = login1.NewManager(sysBus)
	h.SysDBusDaemon = ofdbus.NewDBus(sysBus)
	h.NetworkManager = networkmanager.NewManager(sysBus)

	h.Notifications = notifications.NewNotifications(sessionBus)
	h.SessionDBusDaemon = sessiondbus.NewDBus(sessionBus)
	h.SessionManager = sessionmanager.NewSessionManager(sessionBus)
	h.ScreenSaver = screensaver.NewScreenSaver(sessionBus)

	// init X conn
	if !useWayland() {
		h.xConn, err = x.NewConn()
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Helper) Destroy() {
	h.SysDBusDaemon.RemoveHandler(proxy.RemoveAllHandlers)
	h.LoginManager.RemoveHandler(proxy.RemoveAllHandlers)

	h.Notifications.RemoveHandler(proxy.RemoveAllHandlers)
	h.SessionDBusDaemon.RemoveHandler(proxy.RemoveAllHandlers)

	if h.xConn != nil {
		h.xConn.Close()
		h.xConn = nil
	}
}

func useWayland() bool {
	return os.Getenv("XDG_SESSION_TYPE") == "wayland"
}
