// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBacklightDimAndRestore(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 200, level: 150}
	p := newBacklightDimPolicy(NewBrightnessController(b))

	p.onAlarm(AlarmDimOnAC, false, false, 30)
	assert.True(t, p.dimmed)
	assert.Equal(t, int32(60), b.level)

	p.onReset()
	assert.False(t, p.dimmed)
	assert.Equal(t, int32(150), b.level)
}

func TestBacklightDimSkips(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 100, level: 80}
	p := newBacklightDimPolicy(NewBrightnessController(b))

	// alarm of the other power source
	p.onAlarm(AlarmDimOnBattery, false, false, 30)
	// presentation mode
	p.onAlarm(AlarmDimOnAC, false, true, 30)
	// inactivity alarm
	p.onAlarm(AlarmInactivityOnAC, false, false, 30)
	assert.Empty(t, b.writes)

	b.level = 20
	p.onAlarm(AlarmDimOnAC, false, false, 30)
	assert.False(t, p.dimmed)
	assert.Empty(t, b.writes)

	p.onReset()
	assert.Empty(t, b.writes)
}

func TestBacklightDimBrightnessKeyBlocksRestore(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 100, level: 90}
	p := newBacklightDimPolicy(NewBrightnessController(b))

	p.onAlarm(AlarmDimOnBattery, true, false, 50)
	assert.Equal(t, int32(50), b.level)

	p.onButton()
	b.level = 70
	p.onReset()
	assert.Equal(t, int32(70), b.level)
	assert.False(t, p.dimmed)

	// the next alarm clears the block
	p.onAlarm(AlarmDimOnBattery, true, false, 50)
	assert.False(t, p.block)
	p.onReset()
	assert.Equal(t, int32(70), b.level)
}

func TestBacklightDimNoHardware(t *testing.T) {
	p := newBacklightDimPolicy(NewBrightnessController())
	p.onAlarm(AlarmDimOnAC, false, false, 30)
	assert.False(t, p.dimmed)
}
