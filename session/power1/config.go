// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/linuxdeepin/go-lib/xdg/basedir"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// display timeouts are uint16 seconds
const dpmsMaxMinutes = math.MaxUint16 / 60

type Config struct {
	CriticalPowerLevel  uint32      `yaml:"critical-power-level"`
	CriticalPowerAction PowerAction `yaml:"critical-power-action"`
	GeneralNotification bool        `yaml:"general-notification"`
	LockScreenOnSleep   bool        `yaml:"lock-screen-suspend-hibernate"`
	NetworkManagerSleep bool        `yaml:"network-manager-sleep"`

	PowerButtonAction     PowerAction `yaml:"power-button-action"`
	SleepButtonAction     PowerAction `yaml:"sleep-button-action"`
	HibernateButtonAction PowerAction `yaml:"hibernate-button-action"`
	BatteryButtonAction   PowerAction `yaml:"battery-button-action"`
	LidActionOnAC         PowerAction `yaml:"lid-action-on-ac"`
	LidActionOnBattery    PowerAction `yaml:"lid-action-on-battery"`

	// minutes
	InactivityOnAC               uint32      `yaml:"inactivity-on-ac"`
	InactivityOnBattery          uint32      `yaml:"inactivity-on-battery"`
	InactivitySleepModeOnAC      PowerAction `yaml:"inactivity-sleep-mode-on-ac"`
	InactivitySleepModeOnBattery PowerAction `yaml:"inactivity-sleep-mode-on-battery"`

	// seconds
	BrightnessOnAC           uint32 `yaml:"brightness-on-ac"`
	BrightnessOnBattery      uint32 `yaml:"brightness-on-battery"`
	BrightnessLevelOnAC      uint32 `yaml:"brightness-level-on-ac"`
	BrightnessLevelOnBattery uint32 `yaml:"brightness-level-on-battery"`
	BrightnessStepCount      uint32 `yaml:"brightness-step-count"`
	BrightnessExponential    bool   `yaml:"brightness-exponential"`
	BrightnessSliderMinLevel int32  `yaml:"brightness-slider-min-level"`
	HandleBrightnessKeys     bool   `yaml:"handle-brightness-keys"`
	ShowBrightnessPopup      bool   `yaml:"show-brightness-popup"`

	DPMSEnabled        bool          `yaml:"dpms-enabled"`
	DPMSOnACSleep      uint32        `yaml:"dpms-on-ac-sleep"`
	DPMSOnACOff        uint32        `yaml:"dpms-on-ac-off"`
	DPMSOnBatterySleep uint32        `yaml:"dpms-on-battery-sleep"`
	DPMSOnBatteryOff   uint32        `yaml:"dpms-on-battery-off"`
	DPMSSleepMode      dpmsSleepMode `yaml:"dpms-sleep-mode"`

	BlankOnAC      uint32 `yaml:"blank-on-ac"`
	BlankOnBattery uint32 `yaml:"blank-on-battery"`

	PresentationMode bool `yaml:"presentation-mode"`

	LogindHandlePowerKey     bool `yaml:"logind-handle-power-key"`
	LogindHandleSuspendKey   bool `yaml:"logind-handle-suspend-key"`
	LogindHandleHibernateKey bool `yaml:"logind-handle-hibernate-key"`
	LogindHandleLidSwitch    bool `yaml:"logind-handle-lid-switch"`
}

func DefaultConfig() *Config {
	return &Config{
		CriticalPowerLevel:  5,
		CriticalPowerAction: PowerActionNothing,
		GeneralNotification: true,
		LockScreenOnSleep:   true,
		NetworkManagerSleep: true,

		PowerButtonAction:     PowerActionNothing,
		SleepButtonAction:     PowerActionNothing,
		HibernateButtonAction: PowerActionNothing,
		BatteryButtonAction:   PowerActionNothing,
		LidActionOnAC:         PowerActionLockScreen,
		LidActionOnBattery:    PowerActionLockScreen,

		InactivityOnAC:               inactivityNever,
		InactivityOnBattery:          inactivityNever,
		InactivitySleepModeOnAC:      PowerActionSuspend,
		InactivitySleepModeOnBattery: PowerActionHibernate,

		BrightnessOnAC:           brightnessDimNever,
		BrightnessOnBattery:      120,
		BrightnessLevelOnAC:      80,
		BrightnessLevelOnBattery: 80,
		BrightnessStepCount:      10,
		BrightnessSliderMinLevel: -1,
		HandleBrightnessKeys:     true,
		ShowBrightnessPopup:      true,

		DPMSEnabled:        true,
		DPMSOnACSleep:      10,
		DPMSOnACOff:        15,
		DPMSOnBatterySleep: 5,
		DPMSOnBatteryOff:   10,
		DPMSSleepMode:      dpmsSleepModeStandby,

		BlankOnAC:      15,
		BlankOnBattery: 10,
	}
}

func clampUint32(v, min, max uint32) uint32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func normalizeSleepMode(a PowerAction, fallback PowerAction) PowerAction {
	if a.isSleep() {
		return a
	}
	return fallback
}

func normalizeLidAction(a PowerAction) PowerAction {
	switch a {
	case PowerActionNothing, PowerActionSuspend, PowerActionHibernate, PowerActionLockScreen:
		return a
	}
	return PowerActionLockScreen
}

// Normalize clamps ranged values into their valid range.
func (c *Config) Normalize() {
	c.CriticalPowerLevel = clampUint32(c.CriticalPowerLevel, criticalLevelMin, criticalLevelMax)
	switch c.CriticalPowerAction {
	case PowerActionNothing, PowerActionSuspend, PowerActionHibernate,
		PowerActionShutdown, PowerActionAsk:
	default:
		c.CriticalPowerAction = PowerActionNothing
	}
	c.LidActionOnAC = normalizeLidAction(c.LidActionOnAC)
	c.LidActionOnBattery = normalizeLidAction(c.LidActionOnBattery)
	c.InactivitySleepModeOnAC = normalizeSleepMode(c.InactivitySleepModeOnAC, PowerActionSuspend)
	c.InactivitySleepModeOnBattery = normalizeSleepMode(c.InactivitySleepModeOnBattery, PowerActionHibernate)
	c.BrightnessLevelOnAC = clampUint32(c.BrightnessLevelOnAC, 1, 100)
	c.BrightnessLevelOnBattery = clampUint32(c.BrightnessLevelOnBattery, 1, 100)
	c.BrightnessStepCount = clampUint32(c.BrightnessStepCount, 2, 100)
	if c.BrightnessSliderMinLevel < -1 {
		c.BrightnessSliderMinLevel = -1
	}
	if c.DPMSSleepMode != dpmsSleepModeSuspend {
		c.DPMSSleepMode = dpmsSleepModeStandby
	}
	c.DPMSOnACSleep = clampUint32(c.DPMSOnACSleep, 0, dpmsMaxMinutes)
	c.DPMSOnACOff = clampUint32(c.DPMSOnACOff, 0, dpmsMaxMinutes)
	c.DPMSOnBatterySleep = clampUint32(c.DPMSOnBatterySleep, 0, dpmsMaxMinutes)
	c.DPMSOnBatteryOff = clampUint32(c.DPMSOnBatteryOff, 0, dpmsMaxMinutes)
}

func (c *Config) clone() *Config {
	cfg := *c
	return &cfg
}

func (a PowerAction) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

func (a *PowerAction) UnmarshalYAML(node *yaml.Node) error {
	var s string
	err := node.Decode(&s)
	if err != nil {
		return err
	}
	action, err := parsePowerAction(s)
	if err != nil {
		return err
	}
	*a = action
	return nil
}

type configKey struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

func boolKey(field func(c *Config) *bool) configKey {
	return configKey{
		get: func(c *Config) string {
			return strconv.FormatBool(*field(c))
		},
		set: func(c *Config, value string) error {
			v, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*field(c) = v
			return nil
		},
	}
}

func uintKey(field func(c *Config) *uint32) configKey {
	return configKey{
		get: func(c *Config) string {
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, value string) error {
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return err
			}
			*field(c) = uint32(v)
			return nil
		},
	}
}

func actionKey(field func(c *Config) *PowerAction) configKey {
	return configKey{
		get: func(c *Config) string {
			return field(c).String()
		},
		set: func(c *Config, value string) error {
			v, err := parsePowerAction(value)
			if err != nil {
				return err
			}
			*field(c) = v
			return nil
		},
	}
}

var configKeys = map[string]configKey{
	"critical-power-level": uintKey(func(c *Config) *uint32 { return &c.CriticalPowerLevel }),
	"critical-power-action": actionKey(func(c *Config) *PowerAction {
		return &c.CriticalPowerAction
	}),
	"general-notification":          boolKey(func(c *Config) *bool { return &c.GeneralNotification }),
	"lock-screen-suspend-hibernate": boolKey(func(c *Config) *bool { return &c.LockScreenOnSleep }),
	"network-manager-sleep":         boolKey(func(c *Config) *bool { return &c.NetworkManagerSleep }),

	"power-button-action":     actionKey(func(c *Config) *PowerAction { return &c.PowerButtonAction }),
	"sleep-button-action":     actionKey(func(c *Config) *PowerAction { return &c.SleepButtonAction }),
	"hibernate-button-action": actionKey(func(c *Config) *PowerAction { return &c.HibernateButtonAction }),
	"battery-button-action":   actionKey(func(c *Config) *PowerAction { return &c.BatteryButtonAction }),
	"lid-action-on-ac":        actionKey(func(c *Config) *PowerAction { return &c.LidActionOnAC }),
	"lid-action-on-battery":   actionKey(func(c *Config) *PowerAction { return &c.LidActionOnBattery }),

	"inactivity-on-ac":      uintKey(func(c *Config) *uint32 { return &c.InactivityOnAC }),
	"inactivity-on-battery": uintKey(func(c *Config) *uint32 { return &c.InactivityOnBattery }),
	"inactivity-sleep-mode-on-ac": actionKey(func(c *Config) *PowerAction {
		return &c.InactivitySleepModeOnAC
	}),
	"inactivity-sleep-mode-on-battery": actionKey(func(c *Config) *PowerAction {
		return &c.InactivitySleepModeOnBattery
	}),

	"brightness-on-ac":            uintKey(func(c *Config) *uint32 { return &c.BrightnessOnAC }),
	"brightness-on-battery":       uintKey(func(c *Config) *uint32 { return &c.BrightnessOnBattery }),
	"brightness-level-on-ac":      uintKey(func(c *Config) *uint32 { return &c.BrightnessLevelOnAC }),
	"brightness-level-on-battery": uintKey(func(c *Config) *uint32 { return &c.BrightnessLevelOnBattery }),
	"brightness-step-count":       uintKey(func(c *Config) *uint32 { return &c.BrightnessStepCount }),
	"brightness-exponential":      boolKey(func(c *Config) *bool { return &c.BrightnessExponential }),
	"brightness-slider-min-level": {
		get: func(c *Config) string {
			return strconv.FormatInt(int64(c.BrightnessSliderMinLevel), 10)
		},
		set: func(c *Config, value string) error {
			v, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return err
			}
			c.BrightnessSliderMinLevel = int32(v)
			return nil
		},
	},
	"handle-brightness-keys": boolKey(func(c *Config) *bool { return &c.HandleBrightnessKeys }),
	"show-brightness-popup":  boolKey(func(c *Config) *bool { return &c.ShowBrightnessPopup }),

	"dpms-enabled":          boolKey(func(c *Config) *bool { return &c.DPMSEnabled }),
	"dpms-on-ac-sleep":      uintKey(func(c *Config) *uint32 { return &c.DPMSOnACSleep }),
	"dpms-on-ac-off":        uintKey(func(c *Config) *uint32 { return &c.DPMSOnACOff }),
	"dpms-on-battery-sleep": uintKey(func(c *Config) *uint32 { return &c.DPMSOnBatterySleep }),
	"dpms-on-battery-off":   uintKey(func(c *Config) *uint32 { return &c.DPMSOnBatteryOff }),
	"dpms-sleep-mode": {
		get: func(c *Config) string {
			return string(c.DPMSSleepMode)
		},
		set: func(c *Config, value string) error {
			switch dpmsSleepMode(value) {
			case dpmsSleepModeStandby, dpmsSleepModeSuspend:
				c.DPMSSleepMode = dpmsSleepMode(value)
				return nil
			}
			return xerrors.Errorf("invalid dpms sleep mode %q", value)
		},
	},

	"blank-on-ac":      uintKey(func(c *Config) *uint32 { return &c.BlankOnAC }),
	"blank-on-battery": uintKey(func(c *Config) *uint32 { return &c.BlankOnBattery }),

	"presentation-mode": boolKey(func(c *Config) *bool { return &c.PresentationMode }),

	"logind-handle-power-key":     boolKey(func(c *Config) *bool { return &c.LogindHandlePowerKey }),
	"logind-handle-suspend-key":   boolKey(func(c *Config) *bool { return &c.LogindHandleSuspendKey }),
	"logind-handle-hibernate-key": boolKey(func(c *Config) *bool { return &c.LogindHandleHibernateKey }),
	"logind-handle-lid-switch":    boolKey(func(c *Config) *bool { return &c.LogindHandleLidSwitch }),
}

func configKeyNames() []string {
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the string form of the value stored under key.
func (c *Config) Get(key string) (string, bool) {
	k, ok := configKeys[key]
	if !ok {
		return "", false
	}
	return k.get(c), true
}

// Set parses value and stores it under key. The result is normalized.
func (c *Config) Set(key, value string) error {
	k, ok := configKeys[key]
	if !ok {
		return newError(ErrorCodeInvalidArguments, "unknown config key %q", key)
	}
	err := k.set(c, value)
	if err != nil {
		return newError(ErrorCodeInvalidArguments, "bad value for %s: %v", key, err)
	}
	c.Normalize()
	return nil
}

func (c *Config) toMap() map[string]string {
	result := make(map[string]string, len(configKeys))
	for name, k := range configKeys {
		result[name] = k.get(c)
	}
	return result
}

// Diff lists the keys whose values differ, sorted by name.
func Diff(old, new *Config) []string {
	var changed []string
	for _, name := range configKeyNames() {
		k := configKeys[name]
		if k.get(old) != k.get(new) {
			changed = append(changed, name)
		}
	}
	return changed
}

func defaultConfigFile() string {
	return filepath.Join(basedir.GetUserConfigDir(), "deepin", appName, "config.yaml")
}

// loadConfig reads filename over the defaults. A missing file is not an
// error.
func loadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	content, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	err = yaml.Unmarshal(content, cfg)
	if err != nil {
		return DefaultConfig(), xerrors.Errorf("parse %s: %w", filename, err)
	}
	cfg.Normalize()
	return cfg, nil
}

func saveConfig(filename string, cfg *Config) error {
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(filename), 0755)
	if err != nil {
		return err
	}
	tmp := filename + ".tmp"
	err = os.WriteFile(tmp, content, 0644)
	if err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}
