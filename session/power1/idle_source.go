// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"time"

	x "github.com/linuxdeepin/go-x11-client"
	xscreensaver "github.com/linuxdeepin/go-x11-client/ext/screensaver"
)

const idlePollInterval = time.Second

// xIdleSource polls the X server idle counter. A counter lower than the
// previous reading means the user did something.
type xIdleSource struct {
	query    func() (uint32, error)
	lastIdle uint32
	ticker   *countTicker

	OnActivity func()
}

func newXIdleSource(xConn *x.Conn) *xIdleSource {
	s := &xIdleSource{}
	s.query = func() (uint32, error) {
		screen := xConn.GetDefaultScreen()
		info, err := xscreensaver.QueryInfo(xConn, x.Drawable(screen.Root)).Reply(xConn)
		if err != nil {
			return 0, err
		}
		return info.MsSinceUserInput, nil
	}
	return s
}

func (s *xIdleSource) poll() {
	idle, err := s.query()
	if err != nil {
		logger.Warning("query idle time:", err)
		return
	}
	last := s.lastIdle
	s.lastIdle = idle
	if idle < last && s.OnActivity != nil {
		logger.Debugf("user activity, idle %d ms", idle)
		s.OnActivity()
	}
}

func (s *xIdleSource) Start() {
	s.ticker = newCountTicker(idlePollInterval, func(int) {
		s.poll()
	})
}

func (s *xIdleSource) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func init() {
	submoduleList = append(submoduleList, newIdleMonitor)
}

// IdleMonitor turns X input activity into idle alarm resets.
type IdleMonitor struct {
	manager *Manager
	source  *xIdleSource
}

func newIdleMonitor(m *Manager) (string, submodule, error) {
	const name = "IdleMonitor"
	if m.helper == nil || m.helper.xConn == nil {
		return name, nil, errNoXConn
	}
	im := &IdleMonitor{
		manager: m,
		source:  newXIdleSource(m.helper.xConn),
	}
	return name, im, nil
}

func (im *IdleMonitor) Start() error {
	im.source.OnActivity = im.manager.idle.ResetAll
	im.source.Start()
	return nil
}

func (im *IdleMonitor) Destroy() {
	im.source.Stop()
}
