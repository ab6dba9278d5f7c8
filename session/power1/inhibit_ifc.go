// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

// fdoInhibit serves org.freedesktop.PowerManagement.Inhibit on top of the
// same registry as the main object.
type fdoInhibit struct {
	manager *Manager

	//nolint
	signals *struct {
		HasInhibitChanged struct {
			hasInhibit bool
		}
	}
}

func (*fdoInhibit) GetInterfaceName() string {
	return fdoInhibitInterface
}

func (fi *fdoInhibit) Inhibit(sender dbus.Sender, appName, reason string) (cookie uint32, busErr *dbus.Error) {
	return fi.manager.Inhibit(sender, appName, reason)
}

func (fi *fdoInhibit) UnInhibit(cookie uint32) *dbus.Error {
	return fi.manager.UnInhibit(cookie)
}

func (fi *fdoInhibit) HasInhibit() (bool, *dbus.Error) {
	return fi.manager.HasInhibit()
}

func (fi *fdoInhibit) emitHasInhibitChanged(hasInhibit bool) {
	service := fi.manager.service
	if service == nil {
		return
	}
	err := service.Emit(fi, "HasInhibitChanged", hasInhibit)
	if err != nil {
		logger.Debug(err)
	}
}

func (fi *fdoInhibit) GetExportedMethods() dbusutil.ExportedMethods {
	return dbusutil.ExportedMethods{
		{
			Name:    "Inhibit",
			Fn:      fi.Inhibit,
			InArgs:  []string{"application", "reason"},
			OutArgs: []string{"cookie"},
		},
		{
			Name:   "UnInhibit",
			Fn:     fi.UnInhibit,
			InArgs: []string{"cookie"},
		},
		{
			Name:    "HasInhibit",
			Fn:      fi.HasInhibit,
			OutArgs: []string{"hasInhibit"},
		},
	}
}
