// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
)

type EnableFlag int

const (
	EnableFlagNone EnableFlag = 1 << iota
	EnableFlagIgnoreMissingModule
	// start modules even if they are listed as disabled
	EnableFlagForceStart
)

func (flags EnableFlag) HasFlag(flag EnableFlag) bool {
	return flags&flag != 0
}

const (
	ErrorCircleDependencies int = iota + 1
	ErrorMissingModule
	ErrorConflict
)

type EnableError struct {
	ModuleName string
	Code       int
}

func (e *EnableError) Error() string {
	switch e.Code {
	case ErrorCircleDependencies:
		return "modules depend on each other"
	case ErrorMissingModule:
		return fmt.Sprintf("module %s is not registered", e.ModuleName)
	case ErrorConflict:
		return fmt.Sprintf("module %s is disabled but required", e.ModuleName)
	}
	return fmt.Sprintf("module %s: enable error %d", e.ModuleName, e.Code)
}

type Loader struct {
	modules Modules
	log     *log.Logger
	lock    sync.Mutex
	service *dbusutil.Service
}

func (l *Loader) SetLogLevel(pri log.Priority) {
	l.log.SetLogLevel(pri)

	l.lock.Lock()
	defer l.lock.Unlock()
	for _, module := range l.modules {
		module.SetLogLevel(pri)
	}
}

func (l *Loader) AddModule(m Module) {
	l.lock.Lock()
	defer l.lock.Unlock()
	name := m.Name()
	if _, ok := l.modules[name]; ok {
		l.log.Warningf("module %s registered twice", name)
		return
	}
	l.modules[name] = m
}

// List returns the registered modules sorted by name.
func (l *Loader) List() []Module {
	l.lock.Lock()
	defer l.lock.Unlock()
	names := make([]string, 0, len(l.modules))
	for name := range l.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([]Module, 0, len(names))
	for _, name := range names {
		result = append(result, l.modules[name])
	}
	return result
}

func (l *Loader) GetModule(name string) Module {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.modules[name]
}

// enableModule blocks until every registered dependency made its first
// enable attempt, then starts m.
func (l *Loader) enableModule(m Module, deps []Module) {
	begin := time.Now()
	for _, dep := range deps {
		dep.WaitEnable()
	}
	err := m.Enable(true)
	if err != nil {
		l.log.Errorf("enable module %s failed after %s: %v", m.Name(), time.Since(begin), err)
		return
	}
	l.log.Infof("module %s enabled in %s", m.Name(), time.Since(begin))
}

// EnableModules starts the named modules and everything they depend on.
// Independent modules start concurrently.
func (l *Loader) EnableModules(enablingModules []string, disableModules []string, flag EnableFlag) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	begin := time.Now()
	dag, err := NewDAGBuilder(l, enablingModules, disableModules, flag).Execute()
	if err != nil {
		return err
	}
	names, ok := dag.topologicalSort()
	if !ok {
		return &EnableError{Code: ErrorCircleDependencies}
	}
	l.log.Debugf("start order %v", names)

	var enabling []Module
	for _, name := range names {
		m, ok := l.modules[name]
		if !ok {
			continue
		}
		var deps []Module
		for _, depName := range m.GetDependencies() {
			if dep, ok := l.modules[depName]; ok {
				deps = append(deps, dep)
			}
		}
		enabling = append(enabling, m)
		go l.enableModule(m, deps)
	}

	for _, m := range enabling {
		m.WaitEnable()
	}
	l.log.Infof("%d modules enabled in %s", len(enabling), time.Since(begin))
	return nil
}
