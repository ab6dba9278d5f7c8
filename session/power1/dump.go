// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

type stateDump struct {
	State      SystemPowerState
	Devices    []Device
	Inhibitors []Inhibitor
	Brightness struct {
		Backend string
		Level   int32
		Min     int32
		Max     int32
	}
	Sleep struct {
		Backend string
		Caps    SleepCaps
	}
	Config *Config
}

func dumpState(p *powerPolicy) string {
	var d stateDump
	d.State = p.State()
	d.Devices = p.Devices()
	d.Config = p.Config()
	d.Inhibitors = p.Inhibits.snapshot()

	d.Brightness.Backend = p.Brightness.BackendName()
	if p.Brightness.HasHardware() {
		level, err := p.Brightness.GetLevel()
		if err != nil {
			logger.Warning(err)
		}
		d.Brightness.Level = level
		d.Brightness.Min = p.Brightness.MinLevel()
		d.Brightness.Max = p.Brightness.MaxLevel()
	}

	if p.Sleeper != nil {
		d.Sleep.Backend = p.Sleeper.Name()
	}
	d.Sleep.Caps = p.caps()
	return dumpConfig.Sdump(d)
}
