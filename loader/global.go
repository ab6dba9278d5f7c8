// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"sync"

	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
)

var (
	loaderOnce sync.Once
	_loader    *Loader
)

func getLoader() *Loader {
	loaderOnce.Do(func() {
		_loader = &Loader{
			modules: Modules{},
			log:     log.NewLogger("dde-power-manager/loader"),
		}
	})
	return _loader
}

// SetService sets the bus connection modules export their objects on.
func SetService(s *dbusutil.Service) {
	getLoader().service = s
}

func GetService() *dbusutil.Service {
	return getLoader().service
}

func Register(m Module) {
	getLoader().AddModule(m)
}

func List() []Module {
	return getLoader().List()
}

func GetModule(name string) Module {
	return getLoader().GetModule(name)
}

func SetLogLevel(pri log.Priority) {
	getLoader().SetLogLevel(pri)
}

func EnableModules(enablingModules []string, disableModules []string, flag EnableFlag) error {
	return getLoader().EnableModules(enablingModules, disableModules, flag)
}

// StopAll stops the enabled modules in reverse name order.
func StopAll() {
	l := getLoader()
	modules := l.List()
	for i := len(modules) - 1; i >= 0; i-- {
		m := modules[i]
		if !m.IsEnable() {
			continue
		}
		err := m.Enable(false)
		if err != nil {
			l.log.Warning(err)
		}
	}
}
