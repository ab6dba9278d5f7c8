// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

// submoduleList is filled by init functions, so submodules start in file
// name order.
var submoduleList []func(*Manager) (string, submodule, error)

type submodule interface {
	Start() error
	Destroy()
}

type namedSubmodule struct {
	name string
	submodule
}

// initSubmodules creates the optional parts of the daemon. A submodule that
// cannot be created is skipped.
func (m *Manager) initSubmodules() {
	m.submodules = m.submodules[:0]
	for _, newFn := range submoduleList {
		name, sm, err := newFn(m)
		if err != nil {
			logger.Warningf("submodule %s unavailable: %v", name, err)
			continue
		}
		m.submodules = append(m.submodules, namedSubmodule{name: name, submodule: sm})
	}
}

func (m *Manager) startSubmodules() {
	for _, sm := range m.submodules {
		err := sm.Start()
		if err != nil {
			logger.Warningf("start submodule %s: %v", sm.name, err)
			continue
		}
		logger.Debug("submodule started:", sm.name)
	}
}

func (m *Manager) destroySubmodules() {
	for i := len(m.submodules) - 1; i >= 0; i-- {
		m.submodules[i].Destroy()
	}
	m.submodules = nil
}
