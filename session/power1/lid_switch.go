// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"sync"
	"time"
)

func init() {
	submoduleList = append(submoduleList, newLidSwitchHandler)
}

// LidSwitchHandler debounces lid reports so a bouncing switch yields one
// policy decision.
type LidSwitchHandler struct {
	manager *Manager
	delay   time.Duration

	mu      sync.Mutex
	task    *delayedTask
	present bool
	closed  bool
}

func newLidSwitchHandler(m *Manager) (string, submodule, error) {
	h := &LidSwitchHandler{
		manager: m,
		delay:   lidSwitchDelay,
	}
	return "LidSwitchHandler", h, nil
}

func (h *LidSwitchHandler) Start() error {
	if h.manager.upower != nil {
		h.manager.upower.OnLidChanged = h.onLidChanged
	}
	return nil
}

func (h *LidSwitchHandler) onLidChanged(present, closed bool) {
	logger.Infof("lid present %v closed %v", present, closed)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.present = present
	h.closed = closed
	if h.task != nil {
		h.task.Cancel()
	}
	h.task = newDelayedTask("lid", h.delay, h.apply)
}

func (h *LidSwitchHandler) apply() {
	h.mu.Lock()
	present, closed := h.present, h.closed
	h.mu.Unlock()
	h.manager.policy.SetLid(present, closed)
}

func (h *LidSwitchHandler) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.task != nil {
		h.task.Cancel()
		h.task = nil
	}
	if h.manager.upower != nil {
		h.manager.upower.OnLidChanged = nil
	}
}
