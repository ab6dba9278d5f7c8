// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func Test_parsePowerAction(t *testing.T) {
	for _, name := range []string{"nothing", "suspend", "hibernate", "ask", "shutdown", "lock-screen"} {
		action, err := parsePowerAction(name)
		require.NoError(t, err)
		assert.Equal(t, name, action.String())
	}
	action, err := parsePowerAction(" Suspend ")
	require.NoError(t, err)
	assert.Equal(t, PowerActionSuspend, action)

	_, err = parsePowerAction("explode")
	assert.Error(t, err)
	assert.Equal(t, "unknown", PowerAction(99).String())
}

func TestConfigGetSet(t *testing.T) {
	cfg := DefaultConfig()
	value, ok := cfg.Get("critical-power-level")
	require.True(t, ok)
	assert.Equal(t, "5", value)

	require.NoError(t, cfg.Set("critical-power-action", "hibernate"))
	assert.Equal(t, PowerActionHibernate, cfg.CriticalPowerAction)

	require.NoError(t, cfg.Set("brightness-slider-min-level", "12"))
	assert.Equal(t, int32(12), cfg.BrightnessSliderMinLevel)

	require.NoError(t, cfg.Set("dpms-sleep-mode", "Suspend"))
	value, _ = cfg.Get("dpms-sleep-mode")
	assert.Equal(t, "Suspend", value)

	err := cfg.Set("no-such-key", "1")
	assert.True(t, xerrors.Is(err, ErrInvalidArguments))
	err = cfg.Set("general-notification", "perhaps")
	assert.True(t, xerrors.Is(err, ErrInvalidArguments))
	err = cfg.Set("dpms-sleep-mode", "Off")
	assert.True(t, xerrors.Is(err, ErrInvalidArguments))

	_, ok = cfg.Get("no-such-key")
	assert.False(t, ok)
}

func TestConfigNormalize(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Set("critical-power-level", "50"))
	assert.Equal(t, uint32(criticalLevelMax), cfg.CriticalPowerLevel)
	require.NoError(t, cfg.Set("critical-power-level", "0"))
	assert.Equal(t, uint32(criticalLevelMin), cfg.CriticalPowerLevel)

	require.NoError(t, cfg.Set("critical-power-action", "lock-screen"))
	assert.Equal(t, PowerActionNothing, cfg.CriticalPowerAction)

	require.NoError(t, cfg.Set("lid-action-on-ac", "shutdown"))
	assert.Equal(t, PowerActionLockScreen, cfg.LidActionOnAC)

	require.NoError(t, cfg.Set("inactivity-sleep-mode-on-battery", "ask"))
	assert.Equal(t, PowerActionHibernate, cfg.InactivitySleepModeOnBattery)

	require.NoError(t, cfg.Set("brightness-step-count", "1"))
	assert.Equal(t, uint32(2), cfg.BrightnessStepCount)

	require.NoError(t, cfg.Set("brightness-slider-min-level", "-7"))
	assert.Equal(t, int32(-1), cfg.BrightnessSliderMinLevel)

	require.NoError(t, cfg.Set("dpms-on-ac-sleep", "1093"))
	assert.Equal(t, uint32(1092), cfg.DPMSOnACSleep)
	require.NoError(t, cfg.Set("dpms-on-battery-off", "4294967295"))
	assert.Equal(t, uint32(dpmsMaxMinutes), cfg.DPMSOnBatteryOff)
	require.NoError(t, cfg.Set("dpms-on-ac-off", "1092"))
	assert.Equal(t, uint32(1092), cfg.DPMSOnACOff)
	assert.LessOrEqual(t, cfg.DPMSOnBatteryOff*60, uint32(math.MaxUint16))
}

func TestConfigDiff(t *testing.T) {
	old := DefaultConfig()
	cfg := old.clone()
	assert.Empty(t, Diff(old, cfg))

	cfg.PresentationMode = true
	cfg.InactivityOnAC = 30
	assert.Equal(t, []string{"inactivity-on-ac", "presentation-mode"}, Diff(old, cfg))
	// clone does not share state
	assert.False(t, old.PresentationMode)
}

func TestConfigToMapHasEveryKey(t *testing.T) {
	m := DefaultConfig().toMap()
	assert.Len(t, m, len(configKeys))
	assert.Equal(t, "lock-screen", m["lid-action-on-ac"])
	assert.Equal(t, "true", m["lock-screen-suspend-hibernate"])
}

func TestConfigLoadSave(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "deepin", "config.yaml")

	cfg, err := loadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg.CriticalPowerAction = PowerActionShutdown
	cfg.InactivityOnBattery = 20
	require.NoError(t, saveConfig(filename, cfg))

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(content), "critical-power-action: shutdown")

	loaded, err := loadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigLoadPartialAndBroken(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("critical-power-level: 99\nlid-action-on-battery: suspend\n"), 0644))

	cfg, err := loadConfig(partial)
	require.NoError(t, err)
	assert.Equal(t, uint32(criticalLevelMax), cfg.CriticalPowerLevel)
	assert.Equal(t, PowerActionSuspend, cfg.LidActionOnBattery)
	assert.True(t, cfg.GeneralNotification)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("lid-action-on-ac: fly\n"), 0644))
	cfg, err = loadConfig(broken)
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
