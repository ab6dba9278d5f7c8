// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"fmt"
	"math"

	. "github.com/linuxdeepin/go-lib/gettext"
)

// DeviceKind follows the UPower numbering.
type DeviceKind uint32

const (
	DeviceKindUnknown DeviceKind = iota
	DeviceKindLinePower
	DeviceKindBattery
	DeviceKindUPS
	DeviceKindMonitor
	DeviceKindMouse
	DeviceKindKeyboard
	DeviceKindPDA
	DeviceKindPhone
)

func (k DeviceKind) String() string {
	switch k {
	case DeviceKindLinePower:
		return "line-power"
	case DeviceKindBattery:
		return "battery"
	case DeviceKindUPS:
		return "ups"
	case DeviceKindMonitor:
		return "monitor"
	case DeviceKindMouse:
		return "mouse"
	case DeviceKindKeyboard:
		return "keyboard"
	case DeviceKindPDA:
		return "pda"
	case DeviceKindPhone:
		return "phone"
	}
	return "unknown"
}

func (k DeviceKind) isPowerSource() bool {
	return k == DeviceKindBattery || k == DeviceKindUPS
}

func (k DeviceKind) localizedName() string {
	switch k {
	case DeviceKindBattery:
		return Tr("battery")
	case DeviceKindUPS:
		return Tr("UPS")
	case DeviceKindMonitor:
		return Tr("monitor")
	case DeviceKindMouse:
		return Tr("mouse")
	case DeviceKindKeyboard:
		return Tr("keyboard")
	case DeviceKindPDA:
		return Tr("PDA")
	case DeviceKindPhone:
		return Tr("phone")
	}
	return Tr("device")
}

// DeviceState follows the UPower numbering.
type DeviceState uint32

const (
	DeviceStateUnknown DeviceState = iota
	DeviceStateCharging
	DeviceStateDischarging
	DeviceStateEmpty
	DeviceStateFullyCharged
	DeviceStatePendingCharge
	DeviceStatePendingDischarge
)

func (s DeviceState) String() string {
	switch s {
	case DeviceStateCharging, DeviceStatePendingCharge:
		return "charging"
	case DeviceStateDischarging, DeviceStatePendingDischarge:
		return "discharging"
	case DeviceStateEmpty:
		return "empty"
	case DeviceStateFullyCharged:
		return "fully-charged"
	}
	return "unknown"
}

// ChargeLevel values are ordered by remaining charge, so Low or better
// means level >= ChargeLevelLow.
type ChargeLevel uint32

const (
	ChargeLevelUnknown ChargeLevel = iota
	ChargeLevelCritical
	ChargeLevelLow
	ChargeLevelOk
)

func (l ChargeLevel) String() string {
	switch l {
	case ChargeLevelCritical:
		return "critical"
	case ChargeLevelLow:
		return "low"
	case ChargeLevelOk:
		return "ok"
	}
	return "unknown"
}

// severity orders levels by urgency: Unknown < Ok < Low < Critical.
func (l ChargeLevel) severity() int {
	switch l {
	case ChargeLevelOk:
		return 1
	case ChargeLevelLow:
		return 2
	case ChargeLevelCritical:
		return 3
	}
	return 0
}

func classifyCharge(percentage float64, criticalLevel uint32) ChargeLevel {
	if math.IsNaN(percentage) || percentage < 0 || percentage > 100 {
		return ChargeLevelUnknown
	}
	// whole percents, the fraction never moves a boundary
	level := uint32(percentage)
	low := criticalLevel + lowLevelOffset
	switch {
	case level > low:
		return ChargeLevelOk
	case level > criticalLevel:
		return ChargeLevelLow
	default:
		return ChargeLevelCritical
	}
}

// DeviceProps is what the platform reports about a device.
type DeviceProps struct {
	Kind        DeviceKind
	Model       string
	PowerSupply bool
	Present     bool
	Percentage  float64
	State       DeviceState
	TimeToEmpty int64
	TimeToFull  int64
}

type Device struct {
	ID string
	DeviceProps
	Charge ChargeLevel
}

// deviceTracker keeps one device and classifies its charge.
type deviceTracker struct {
	Device
	stateKnown bool
}

func newDeviceTracker(id string) *deviceTracker {
	return &deviceTracker{Device: Device{ID: id}}
}

// refresh applies props and reports whether the device state changed after
// the first observation and whether the charge level changed.
func (t *deviceTracker) refresh(props DeviceProps, criticalLevel uint32) (stateChanged, chargeChanged bool) {
	oldState := t.State
	t.Kind = props.Kind
	t.Model = props.Model
	t.PowerSupply = props.PowerSupply
	t.Present = props.Present
	t.Percentage = props.Percentage
	t.State = props.State

	if props.Kind.isPowerSource() {
		t.TimeToEmpty = props.TimeToEmpty
		t.TimeToFull = props.TimeToFull
	} else {
		t.TimeToEmpty = 0
		t.TimeToFull = 0
	}

	if t.stateKnown {
		stateChanged = oldState != t.State
	}
	t.stateKnown = true

	chargeChanged = t.reclassify(criticalLevel)
	return
}

func (t *deviceTracker) reclassify(criticalLevel uint32) bool {
	var level ChargeLevel
	if t.Present {
		level = classifyCharge(t.Percentage, criticalLevel)
	}
	if level == t.Charge {
		return false
	}
	t.Charge = level
	return true
}

// counts reports whether the device takes part in the aggregate charge.
func (d *Device) counts() bool {
	return d.Present && d.PowerSupply && d.Kind.isPowerSource()
}

func formatTimeLeft(seconds int64) string {
	if seconds <= 0 {
		return Tr("unknown")
	}
	minutes := (seconds + 30) / 60
	if minutes < 60 {
		return fmt.Sprintf(NTr("%d minute", "%d minutes", int(minutes)), minutes)
	}
	hours := minutes / 60
	minutes %= 60
	if minutes == 0 {
		return fmt.Sprintf(NTr("%d hour", "%d hours", int(hours)), hours)
	}
	return fmt.Sprintf(Tr("%d hours %d minutes"), hours, minutes)
}

// stateMessage describes the current state of d, or returns ok=false for
// states that are not announced.
func (d *Device) stateMessage() (summary, body, icon string, ok bool) {
	name := d.Kind.localizedName()
	pct := int(math.Round(d.Percentage))
	switch d.State {
	case DeviceStateFullyCharged:
		return fmt.Sprintf(Tr("Your %s is fully charged"), name), "",
			iconBatteryFull, true
	case DeviceStateCharging:
		body = fmt.Sprintf(Tr("(%d%%)"), pct)
		if d.TimeToFull > 0 {
			body = fmt.Sprintf(Tr("(%d%%)\n%s until fully charged"), pct,
				formatTimeLeft(d.TimeToFull))
		}
		return fmt.Sprintf(Tr("Your %s is charging"), name), body,
			iconBatteryCharging, true
	case DeviceStateDischarging:
		body = fmt.Sprintf(Tr("(%d%%)"), pct)
		if d.TimeToEmpty > 0 {
			body = fmt.Sprintf(Tr("(%d%%)\nEstimated time left is %s"), pct,
				formatTimeLeft(d.TimeToEmpty))
		}
		return fmt.Sprintf(Tr("Your %s is discharging"), name), body,
			iconBatteryLow, true
	case DeviceStateEmpty:
		return fmt.Sprintf(Tr("Your %s is empty"), name), "",
			iconBatteryEmpty, true
	}
	return "", "", "", false
}

func (d *Device) lowMessage() (summary, body string) {
	summary = fmt.Sprintf(Tr("Your %s charge level is low"), d.Kind.localizedName())
	body = fmt.Sprintf(Tr("Estimated time left %s"), formatTimeLeft(d.TimeToEmpty))
	return
}
