// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

func (m *Manager) setPropOnBattery(val bool) {
	m.PropsMu.Lock()
	if m.OnBattery == val {
		m.PropsMu.Unlock()
		return
	}
	m.OnBattery = val
	m.PropsMu.Unlock()
	m.emitPropChangedOnBattery(val)
}

func (m *Manager) emitPropChangedOnBattery(val bool) {
	err := m.service.EmitPropertyChanged(m, "OnBattery", val)
	if err != nil {
		logger.Warning(err)
	}
}

func (m *Manager) setPropOnLowBattery(val bool) {
	m.PropsMu.Lock()
	if m.OnLowBattery == val {
		m.PropsMu.Unlock()
		return
	}
	m.OnLowBattery = val
	m.PropsMu.Unlock()
	m.emitPropChangedOnLowBattery(val)
}

func (m *Manager) emitPropChangedOnLowBattery(val bool) {
	err := m.service.EmitPropertyChanged(m, "OnLowBattery", val)
	if err != nil {
		logger.Warning(err)
	}
}

func (m *Manager) setPropLidIsPresent(val bool) {
	m.PropsMu.Lock()
	if m.LidIsPresent == val {
		m.PropsMu.Unlock()
		return
	}
	m.LidIsPresent = val
	m.PropsMu.Unlock()
	m.emitPropChangedLidIsPresent(val)
}

func (m *Manager) emitPropChangedLidIsPresent(val bool) {
	err := m.service.EmitPropertyChanged(m, "LidIsPresent", val)
	if err != nil {
		logger.Warning(err)
	}
}

func (m *Manager) setPropLidIsClosed(val bool) {
	m.PropsMu.Lock()
	if m.LidIsClosed == val {
		m.PropsMu.Unlock()
		return
	}
	m.LidIsClosed = val
	m.PropsMu.Unlock()
	m.emitPropChangedLidIsClosed(val)
}

func (m *Manager) emitPropChangedLidIsClosed(val bool) {
	err := m.service.EmitPropertyChanged(m, "LidIsClosed", val)
	if err != nil {
		logger.Warning(err)
	}
}

func (m *Manager) setPropPresentationMode(val bool) {
	m.PropsMu.Lock()
	if m.PresentationMode == val {
		m.PropsMu.Unlock()
		return
	}
	m.PresentationMode = val
	m.PropsMu.Unlock()
	m.emitPropChangedPresentationMode(val)
}

func (m *Manager) emitPropChangedPresentationMode(val bool) {
	err := m.service.EmitPropertyChanged(m, "PresentationMode", val)
	if err != nil {
		logger.Warning(err)
	}
}

func (m *Manager) setPropInhibited(val bool) {
	m.PropsMu.Lock()
	if m.Inhibited == val {
		m.PropsMu.Unlock()
		return
	}
	m.Inhibited = val
	m.PropsMu.Unlock()
	m.emitPropChangedInhibited(val)
}

func (m *Manager) emitPropChangedInhibited(val bool) {
	err := m.service.EmitPropertyChanged(m, "Inhibited", val)
	if err != nil {
		logger.Warning(err)
	}
}

func (m *Manager) setPropHasBrightness(val bool) {
	m.PropsMu.Lock()
	if m.HasBrightness == val {
		m.PropsMu.Unlock()
		return
	}
	m.HasBrightness = val
	m.PropsMu.Unlock()
	m.emitPropChangedHasBrightness(val)
}

func (m *Manager) emitPropChangedHasBrightness(val bool) {
	err := m.service.EmitPropertyChanged(m, "HasBrightness", val)
	if err != nil {
		logger.Warning(err)
	}
}
