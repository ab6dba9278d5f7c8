// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

// backlightDimPolicy lowers the backlight on idle and puts it back on
// activity. The engine lock guards it.
type backlightDimPolicy struct {
	brightness *BrightnessController
	dimmed     bool
	// set by brightness keys, the next restore leaves the level alone
	block     bool
	lastLevel int32
}

func newBacklightDimPolicy(brightness *BrightnessController) *backlightDimPolicy {
	return &backlightDimPolicy{brightness: brightness}
}

func (p *backlightDimPolicy) dim(percent uint32) {
	if !p.brightness.HasHardware() {
		return
	}
	current, err := p.brightness.GetLevel()
	if err != nil {
		logger.Warning("get brightness before dim:", err)
		return
	}
	dimLevel := int32(percent) * p.brightness.MaxLevel() / 100
	if current <= dimLevel {
		logger.Debugf("skip dim, level %d already at or below %d", current, dimLevel)
		return
	}
	err = p.brightness.SetLevel(dimLevel)
	if err != nil {
		logger.Warning("dim brightness:", err)
		return
	}
	logger.Debugf("dim brightness %d -> %d", current, dimLevel)
	p.lastLevel = current
	p.dimmed = true
}

func (p *backlightDimPolicy) onAlarm(id AlarmID, onBattery, presentation bool, percent uint32) {
	p.block = false
	if id != dimAlarmFor(onBattery) || presentation {
		return
	}
	p.dim(percent)
}

func (p *backlightDimPolicy) onReset() {
	if p.dimmed && !p.block {
		err := p.brightness.SetLevel(p.lastLevel)
		if err != nil {
			logger.Warning("restore brightness:", err)
		} else {
			logger.Debug("restore brightness", p.lastLevel)
		}
	}
	p.dimmed = false
}

func (p *backlightDimPolicy) onButton() {
	p.block = true
}
