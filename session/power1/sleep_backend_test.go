// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/linuxdeepin/dde-power-manager/common/backlight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

type fakeRunner struct {
	commands []string
	outputs  map[string]string
	err      error
}

func (r *fakeRunner) Run(name string, args ...string) ([]byte, error) {
	cmd := strings.Join(append([]string{name}, args...), " ")
	r.commands = append(r.commands, cmd)
	if r.err != nil {
		return []byte("not authorized"), r.err
	}
	return []byte(r.outputs[cmd]), nil
}

func Test_parseCanResult(t *testing.T) {
	tests := []struct {
		result    string
		can, auth bool
	}{
		{"yes", true, true},
		{"challenge", true, false},
		{"no", true, false},
		{"na", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		can, auth := parseCanResult(tt.result)
		assert.Equal(t, tt.can, can, tt.result)
		assert.Equal(t, tt.auth, auth, tt.result)
	}
}

func newTestHelperSleepBackend(t *testing.T, states string, withHelper bool) (*helperSleepBackend, *fakeRunner) {
	dir := t.TempDir()
	stateFile := filepath.Join(dir, "state")
	require.NoError(t, os.WriteFile(stateFile, []byte(states), 0644))
	helperPath := filepath.Join(dir, "backlight_helper")
	if withHelper {
		require.NoError(t, os.WriteFile(helperPath, nil, 0755))
	}
	runner := &fakeRunner{}
	return &helperSleepBackend{runner: runner, helperPath: helperPath, stateFile: stateFile}, runner
}

func TestHelperSleepBackendCaps(t *testing.T) {
	b, _ := newTestHelperSleepBackend(t, "freeze mem disk\n", true)
	caps := b.Caps()
	assert.True(t, caps.CanSuspend)
	assert.True(t, caps.AuthSuspend)
	assert.True(t, caps.CanHibernate)
	assert.True(t, caps.AuthHibernate)
	assert.False(t, caps.CanShutdown)
	assert.False(t, caps.CanReboot)

	b, _ = newTestHelperSleepBackend(t, "freeze mem\n", false)
	caps = b.Caps()
	assert.True(t, caps.CanSuspend)
	assert.False(t, caps.AuthSuspend)
	assert.False(t, caps.CanHibernate)

	b.stateFile = filepath.Join(t.TempDir(), "missing")
	assert.Equal(t, SleepCaps{}, b.Caps())
}

func TestHelperSleepBackendRun(t *testing.T) {
	b, runner := newTestHelperSleepBackend(t, "mem disk", true)
	require.NoError(t, b.Suspend())
	require.NoError(t, b.Hibernate())
	assert.Equal(t, []string{
		"pkexec " + b.helperPath + " --suspend",
		"pkexec " + b.helperPath + " --hibernate",
	}, runner.commands)

	runner.err = errors.New("exit status 126")
	err := b.Suspend()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")

	assert.True(t, xerrors.Is(b.Shutdown(), ErrNoHardwareSupport))
	assert.True(t, xerrors.Is(b.Reboot(), ErrNoHardwareSupport))
	assert.False(t, sleepsAsync(b))
	assert.True(t, sleepsAsync(&logindSleepBackend{}))
}

func Test_parseHelperOutput(t *testing.T) {
	v, err := parseHelperOutput([]byte("937\n"))
	require.NoError(t, err)
	assert.Equal(t, int32(937), v)

	v, err = parseHelperOutput([]byte("Y"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	v, err = parseHelperOutput([]byte("N\n"))
	require.NoError(t, err)
	assert.Equal(t, int32(0), v)

	_, err = parseHelperOutput([]byte("error: no device"))
	assert.Error(t, err)
}

func TestHelperProcessBackend(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		helperProcessPath + " --get-max-brightness": "255\n",
		helperProcessPath + " --get-brightness":     "128\n",
	}}
	b := newHelperProcessBackend(runner)

	max, err := b.MaxLevel()
	require.NoError(t, err)
	assert.Equal(t, int32(255), max)
	level, err := b.GetLevel()
	require.NoError(t, err)
	assert.Equal(t, int32(128), level)

	require.NoError(t, b.SetLevel(12))
	assert.Equal(t, "pkexec "+helperProcessPath+" --set-brightness 12",
		runner.commands[len(runner.commands)-1])

	runner.err = errors.New("exit status 1")
	_, err = b.MaxLevel()
	assert.Error(t, err)
	assert.Error(t, b.SetLevel(1))
}

func TestSysfsBackend(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "acpi_video0")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "type"), []byte("firmware\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte("15\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte("7\n"), 0644))
	defer backlight.SetSysfsDir(root)()

	b := newSysfsBackend()
	require.NotNil(t, b)
	assert.Equal(t, "sysfs:acpi_video0", b.Name())

	c := NewBrightnessController(b)
	require.True(t, c.HasHardware())
	level, err := c.StepUp()
	require.NoError(t, err)
	assert.Equal(t, int32(8), level)

	content, err := os.ReadFile(filepath.Join(dir, "brightness"))
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(8), string(content))
}
