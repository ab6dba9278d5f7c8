// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"errors"

	dbus "github.com/godbus/dbus/v5"
	screensaver "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.screensaver"
	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/dpms"
	"github.com/linuxdeepin/go-x11-client/ext/randr"
)

var errNoXConn = errors.New("no X connection")

// xDisplayPower drives DPMS through the X server and the blank timeout
// through the session screensaver.
type xDisplayPower struct {
	xConn       *x.Conn
	screenSaver screensaver.ScreenSaver
}

func newXDisplayPower(xConn *x.Conn, ss screensaver.ScreenSaver) *xDisplayPower {
	return &xDisplayPower{
		xConn:       xConn,
		screenSaver: ss,
	}
}

func (d *xDisplayPower) ForceLevel(on bool) error {
	c := d.xConn
	if c == nil {
		return errNoXConn
	}
	level := uint16(dpms.DPMSModeOff)
	if on {
		level = dpms.DPMSModeOn
	}
	logger.Debug("force dpms level", level)
	return dpms.ForceLevelChecked(c, level).Check(c)
}

func (d *xDisplayPower) SetTimeouts(standby, suspend, off uint16) error {
	c := d.xConn
	if c == nil {
		return errNoXConn
	}
	logger.Debugf("dpms timeouts standby %d suspend %d off %d", standby, suspend, off)
	return dpms.SetTimeoutsChecked(c, standby, suspend, off).Check(c)
}

func (d *xDisplayPower) Inhibit(inhibit bool) error {
	c := d.xConn
	if c == nil {
		return errNoXConn
	}
	if inhibit {
		return dpms.DisableChecked(c).Check(c)
	}
	return dpms.EnableChecked(c).Check(c)
}

func (d *xDisplayPower) SetBlankTime(seconds uint32) error {
	if d.screenSaver == nil {
		return nil
	}
	return d.screenSaver.SetTimeout(0, seconds, 0, false)
}

// MultiHead reports more than one connected output.
func (d *xDisplayPower) MultiHead() bool {
	c := d.xConn
	if c == nil {
		return false
	}
	root := c.GetDefaultScreen().Root
	resources, err := randr.GetScreenResources(c, root).Reply(c)
	if err != nil {
		logger.Warning(err)
		return false
	}
	connected := 0
	for _, output := range resources.Outputs {
		info, err := randr.GetOutputInfo(c, output, resources.ConfigTimestamp).Reply(c)
		if err != nil {
			logger.Warningf("get output %v info failed: %v", output, err)
			continue
		}
		if info.Connection == randr.ConnectionConnected {
			connected++
		}
	}
	return connected > 1
}

const (
	kwaylandServiceName = "com.deepin.daemon.KWayland"
	kwaylandDpmsPath    = "/com/deepin/daemon/KWayland/DpmsManager"
	kwaylandDpmsManager = "com.deepin.daemon.KWayland.DpmsManager"
	kwaylandDpms        = "com.deepin.daemon.KWayland.Dpms"

	kwinDpmsOn  int32 = 0
	kwinDpmsOff int32 = 3
)

// kwinDisplayPower is the Wayland variant. KWin owns the DPMS timeouts, so
// only forced levels and the blank time are applied.
type kwinDisplayPower struct {
	sessionBus  *dbus.Conn
	screenSaver screensaver.ScreenSaver
}

func newKWinDisplayPower(sessionBus *dbus.Conn, ss screensaver.ScreenSaver) *kwinDisplayPower {
	return &kwinDisplayPower{
		sessionBus:  sessionBus,
		screenSaver: ss,
	}
}

func (d *kwinDisplayPower) dpmsList() ([]dbus.ObjectPath, error) {
	obj := d.sessionBus.Object(kwaylandServiceName, kwaylandDpmsPath)
	var ret []dbus.Variant
	err := obj.Call(kwaylandDpmsManager+".dpmsList", 0).Store(&ret)
	if err != nil {
		return nil, err
	}
	paths := make([]dbus.ObjectPath, 0, len(ret))
	for _, v := range ret {
		s, ok := v.Value().(string)
		if ok {
			paths = append(paths, dbus.ObjectPath(s))
		}
	}
	return paths, nil
}

func (d *kwinDisplayPower) ForceLevel(on bool) error {
	paths, err := d.dpmsList()
	if err != nil {
		return err
	}
	mode := kwinDpmsOff
	if on {
		mode = kwinDpmsOn
	}
	for _, path := range paths {
		obj := d.sessionBus.Object(kwaylandServiceName, path)
		err = obj.Call(kwaylandDpms+".setDpmsMode", 0, mode).Err
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *kwinDisplayPower) SetTimeouts(standby, suspend, off uint16) error {
	return nil
}

func (d *kwinDisplayPower) Inhibit(inhibit bool) error {
	return nil
}

func (d *kwinDisplayPower) SetBlankTime(seconds uint32) error {
	if d.screenSaver == nil {
		return nil
	}
	return d.screenSaver.SetTimeout(0, seconds, 0, false)
}

func (d *kwinDisplayPower) MultiHead() bool {
	paths, err := d.dpmsList()
	if err != nil {
		logger.Warning(err)
		return false
	}
	return len(paths) > 1
}
