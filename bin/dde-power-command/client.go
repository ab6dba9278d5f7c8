// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	dbus "github.com/godbus/dbus/v5"
	"golang.org/x/xerrors"
)

const (
	dbusServiceName = "org.deepin.dde.PowerManager1"
	dbusPath        = "/org/deepin/dde/PowerManager1"
	dbusInterface   = dbusServiceName
)

type powerClient interface {
	Dump() (string, error)
	GetConfig() (map[string]string, error)
	SetConfig(key, value string) error
	Inhibit(app, reason string) (uint32, error)
	UnInhibit(cookie uint32) error
	SetPresentationMode(on bool) error
	// Call runs a method without arguments or results.
	Call(method string) error
}

type busClient struct {
	obj dbus.BusObject
}

func newBusClient() (*busClient, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, xerrors.Errorf("connect session bus: %w", err)
	}
	return &busClient{obj: conn.Object(dbusServiceName, dbusPath)}, nil
}

func (c *busClient) call(method string, args ...interface{}) *dbus.Call {
	return c.obj.Call(dbusInterface+"."+method, 0, args...)
}

func (c *busClient) Dump() (state string, err error) {
	err = c.call("Dump").Store(&state)
	return
}

func (c *busClient) GetConfig() (config map[string]string, err error) {
	err = c.call("GetConfig").Store(&config)
	return
}

func (c *busClient) SetConfig(key, value string) error {
	return c.call("SetConfig", key, value).Err
}

func (c *busClient) Inhibit(app, reason string) (cookie uint32, err error) {
	err = c.call("Inhibit", app, reason).Store(&cookie)
	return
}

func (c *busClient) UnInhibit(cookie uint32) error {
	return c.call("UnInhibit", cookie).Err
}

func (c *busClient) SetPresentationMode(on bool) error {
	return c.call("SetPresentationMode", on).Err
}

func (c *busClient) Call(method string) error {
	return c.call(method).Err
}
