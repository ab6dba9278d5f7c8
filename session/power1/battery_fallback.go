// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"fmt"
	"time"

	"github.com/distatus/battery"
	"golang.org/x/xerrors"
)

const batteryPollInterval = 30 * time.Second

// batteryPoller reads the batteries straight from the kernel when UPower
// is not on the bus. It reports no lid.
type batteryPoller struct {
	getAll func() ([]*battery.Battery, error)
	ticker *countTicker
}

func newBatteryPoller() *batteryPoller {
	return &batteryPoller{getAll: battery.GetAll}
}

func batteryDeviceProps(bat *battery.Battery) DeviceProps {
	dp := DeviceProps{
		Kind:        DeviceKindBattery,
		PowerSupply: true,
		Present:     true,
	}
	if bat.Full > 0 {
		dp.Percentage = bat.Current / bat.Full * 100
		if dp.Percentage > 100 {
			dp.Percentage = 100
		}
	}
	rate := bat.ChargeRate
	switch bat.State {
	case battery.Charging:
		dp.State = DeviceStateCharging
		if rate > 0 && bat.Full > bat.Current {
			dp.TimeToFull = int64((bat.Full - bat.Current) / rate * 3600)
		}
	case battery.Discharging:
		dp.State = DeviceStateDischarging
		if rate > 0 {
			dp.TimeToEmpty = int64(bat.Current / rate * 3600)
		}
	case battery.Full:
		dp.State = DeviceStateFullyCharged
	case battery.Empty:
		dp.State = DeviceStateEmpty
	}
	return dp
}

// Snapshot reports the system on battery when any battery discharges.
func (p *batteryPoller) Snapshot() (*platformSnapshot, error) {
	batteries, err := p.getAll()
	if err != nil && len(batteries) == 0 {
		return nil, xerrors.Errorf("read batteries: %w", err)
	}
	snapshot := &platformSnapshot{
		Devices: make(map[string]DeviceProps),
	}
	for i, bat := range batteries {
		if bat == nil {
			continue
		}
		dp := batteryDeviceProps(bat)
		if dp.State == DeviceStateDischarging {
			snapshot.OnBattery = true
		}
		snapshot.Devices[fmt.Sprintf("battery:%d", i)] = dp
	}
	return snapshot, nil
}

// Start polls until Stop, calling refresh on every tick after the first.
func (p *batteryPoller) Start(refresh func()) {
	p.ticker = newCountTicker(batteryPollInterval, func(count int) {
		if count == 0 {
			return
		}
		refresh()
	})
}

func (p *batteryPoller) Stop() {
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
}
