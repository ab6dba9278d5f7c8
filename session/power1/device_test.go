// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_classifyCharge(t *testing.T) {
	tests := []struct {
		percentage float64
		want       ChargeLevel
	}{
		{-1, ChargeLevelUnknown},
		{101, ChargeLevelUnknown},
		{math.NaN(), ChargeLevelUnknown},
		{0, ChargeLevelCritical},
		{5, ChargeLevelCritical},
		{5.5, ChargeLevelCritical},
		{5.99, ChargeLevelCritical},
		{6, ChargeLevelLow},
		{15, ChargeLevelLow},
		{15.5, ChargeLevelLow},
		{16, ChargeLevelOk},
		{100, ChargeLevelOk},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyCharge(tt.percentage, 5), "percentage %v", tt.percentage)
	}
}

func Test_classifyChargeMonotonic(t *testing.T) {
	for critical := uint32(1); critical <= 20; critical++ {
		prev := classifyCharge(0, critical)
		assert.Equal(t, ChargeLevelCritical, prev, "critical %d", critical)
		for tenths := 1; tenths <= 1000; tenths++ {
			percentage := float64(tenths) / 10
			level := classifyCharge(percentage, critical)
			// more charge never gives a more severe level
			assert.LessOrEqual(t, level.severity(), prev.severity(),
				"critical %d percentage %.1f", critical, percentage)
			prev = level
		}
		assert.Equal(t, ChargeLevelOk, prev, "critical %d", critical)
	}
}

func TestChargeLevelSeverity(t *testing.T) {
	assert.Less(t, ChargeLevelUnknown.severity(), ChargeLevelOk.severity())
	assert.Less(t, ChargeLevelOk.severity(), ChargeLevelLow.severity())
	assert.Less(t, ChargeLevelLow.severity(), ChargeLevelCritical.severity())
}

func TestDeviceTrackerRefresh(t *testing.T) {
	tracker := newDeviceTracker("/org/freedesktop/UPower/devices/battery_BAT0")
	props := DeviceProps{
		Kind:        DeviceKindBattery,
		PowerSupply: true,
		Present:     true,
		Percentage:  80,
		State:       DeviceStateDischarging,
		TimeToEmpty: 3600,
	}

	stateChanged, chargeChanged := tracker.refresh(props, 5)
	// the first observation never counts as a state change
	assert.False(t, stateChanged)
	assert.True(t, chargeChanged)
	assert.Equal(t, ChargeLevelOk, tracker.Charge)
	assert.True(t, tracker.counts())

	props.Percentage = 79
	stateChanged, chargeChanged = tracker.refresh(props, 5)
	assert.False(t, stateChanged)
	assert.False(t, chargeChanged)

	props.Percentage = 10
	props.State = DeviceStateCharging
	stateChanged, chargeChanged = tracker.refresh(props, 5)
	assert.True(t, stateChanged)
	assert.True(t, chargeChanged)
	assert.Equal(t, ChargeLevelLow, tracker.Charge)

	props.Present = false
	_, chargeChanged = tracker.refresh(props, 5)
	assert.True(t, chargeChanged)
	assert.Equal(t, ChargeLevelUnknown, tracker.Charge)
	assert.False(t, tracker.counts())
}

func TestDeviceTrackerPeripheralTimes(t *testing.T) {
	tracker := newDeviceTracker("mouse")
	tracker.refresh(DeviceProps{
		Kind:        DeviceKindMouse,
		Present:     true,
		Percentage:  50,
		TimeToEmpty: 100,
		TimeToFull:  100,
	}, 5)
	assert.Zero(t, tracker.TimeToEmpty)
	assert.Zero(t, tracker.TimeToFull)
	assert.False(t, tracker.counts())
}

func Test_formatTimeLeft(t *testing.T) {
	assert.Equal(t, "unknown", formatTimeLeft(0))
	assert.Equal(t, "1 minute", formatTimeLeft(60))
	assert.Equal(t, "45 minutes", formatTimeLeft(45*60+10))
	assert.Equal(t, "2 hours", formatTimeLeft(2*3600))
	assert.Equal(t, "1 hours 30 minutes", formatTimeLeft(90*60))
}

func TestDeviceStateMessage(t *testing.T) {
	d := &Device{DeviceProps: DeviceProps{
		Kind:       DeviceKindBattery,
		Percentage: 42.4,
		State:      DeviceStateCharging,
		TimeToFull: 1800,
	}}
	summary, body, icon, ok := d.stateMessage()
	assert.True(t, ok)
	assert.Equal(t, "Your battery is charging", summary)
	assert.Equal(t, "(42%)\n30 minutes until fully charged", body)
	assert.Equal(t, iconBatteryCharging, icon)

	d.State = DeviceStateUnknown
	_, _, _, ok = d.stateMessage()
	assert.False(t, ok)

	d.TimeToEmpty = 0
	summary, body = d.lowMessage()
	assert.Equal(t, "Your battery charge level is low", summary)
	assert.Equal(t, "Estimated time left unknown", body)
}

func TestDeviceKindString(t *testing.T) {
	assert.Equal(t, "battery", DeviceKindBattery.String())
	assert.Equal(t, "unknown", DeviceKind(42).String())
	assert.Equal(t, "charging", DeviceStatePendingCharge.String())
	assert.Equal(t, "critical", ChargeLevelCritical.String())
}
