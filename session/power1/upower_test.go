// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"errors"
	"testing"

	"github.com/distatus/battery"
	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_devicePropsFromMap(t *testing.T) {
	props := map[string]dbus.Variant{
		"Type":        dbus.MakeVariant(uint32(2)),
		"Model":       dbus.MakeVariant("DELL 1VX1H"),
		"PowerSupply": dbus.MakeVariant(true),
		"IsPresent":   dbus.MakeVariant(true),
		"Percentage":  dbus.MakeVariant(42.5),
		"State":       dbus.MakeVariant(uint32(2)),
		"TimeToEmpty": dbus.MakeVariant(int64(5400)),
		"TimeToFull":  dbus.MakeVariant(int64(0)),
	}
	assert.Equal(t, DeviceProps{
		Kind:        DeviceKindBattery,
		Model:       "DELL 1VX1H",
		PowerSupply: true,
		Present:     true,
		Percentage:  42.5,
		State:       DeviceStateDischarging,
		TimeToEmpty: 5400,
	}, devicePropsFromMap(props))

	// wrong types and missing keys leave zero values
	dp := devicePropsFromMap(map[string]dbus.Variant{
		"Type":       dbus.MakeVariant("battery"),
		"IsPresent":  dbus.MakeVariant(uint32(1)),
		"Percentage": dbus.MakeVariant(int32(50)),
	})
	assert.Equal(t, DeviceProps{}, dp)
}

func Test_batteryDeviceProps(t *testing.T) {
	dp := batteryDeviceProps(&battery.Battery{
		State:      battery.Discharging,
		Current:    25000,
		Full:       50000,
		ChargeRate: 10000,
	})
	assert.Equal(t, DeviceKindBattery, dp.Kind)
	assert.True(t, dp.PowerSupply)
	assert.True(t, dp.Present)
	assert.Equal(t, float64(50), dp.Percentage)
	assert.Equal(t, DeviceStateDischarging, dp.State)
	assert.Equal(t, int64(9000), dp.TimeToEmpty)

	dp = batteryDeviceProps(&battery.Battery{
		State:      battery.Charging,
		Current:    40000,
		Full:       50000,
		ChargeRate: 5000,
	})
	assert.Equal(t, DeviceStateCharging, dp.State)
	assert.Equal(t, int64(7200), dp.TimeToFull)
	assert.Zero(t, dp.TimeToEmpty)

	dp = batteryDeviceProps(&battery.Battery{State: battery.Full, Current: 51000, Full: 50000})
	assert.Equal(t, float64(100), dp.Percentage)
	assert.Equal(t, DeviceStateFullyCharged, dp.State)
}

func TestBatteryPollerSnapshot(t *testing.T) {
	p := &batteryPoller{getAll: func() ([]*battery.Battery, error) {
		return []*battery.Battery{
			{State: battery.Full, Current: 100, Full: 100},
			nil,
			{State: battery.Discharging, Current: 10, Full: 100},
		}, errors.New("battery 1 unreadable")
	}}
	snapshot, err := p.Snapshot()
	require.NoError(t, err)
	assert.True(t, snapshot.OnBattery)
	assert.Len(t, snapshot.Devices, 2)
	assert.Equal(t, float64(10), snapshot.Devices["battery:2"].Percentage)

	p.getAll = func() ([]*battery.Battery, error) {
		return nil, errors.New("no batteries")
	}
	_, err = p.Snapshot()
	assert.Error(t, err)
}
