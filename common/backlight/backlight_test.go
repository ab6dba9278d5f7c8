// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package backlight

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	displayBl "github.com/linuxdeepin/go-lib/backlight/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDevice(t *testing.T, root, name, typ string, max, value int) {
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "type"), []byte(typ+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"),
		[]byte(strconv.Itoa(max)+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"),
		[]byte(strconv.Itoa(value)+"\n"), 0644))
}

func useSysfs(t *testing.T) string {
	root := t.TempDir()
	t.Cleanup(SetSysfsDir(root))
	return root
}

func TestCheckName(t *testing.T) {
	assert.NoError(t, CheckName("intel_backlight"))
	assert.Error(t, CheckName(""))
	assert.Error(t, CheckName("."))
	assert.Error(t, CheckName(".."))
	assert.Error(t, CheckName("../../etc"))
}

func TestListOrder(t *testing.T) {
	root := useSysfs(t)
	writeDevice(t, root, "intel_backlight", "raw", 19393, 10000)
	writeDevice(t, root, "acpi_video1", "firmware", 7, 3)
	writeDevice(t, root, "acpi_video0", "firmware", 15, 7)
	writeDevice(t, root, "thinkpad_screen", "platform", 100, 50)
	writeDevice(t, root, "broken", "raw", 0, 0)

	controllers, err := List()
	require.NoError(t, err)
	var names []string
	for _, c := range controllers {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"acpi_video0", "acpi_video1", "thinkpad_screen", "intel_backlight"}, names)

	c, err := Preferred()
	require.NoError(t, err)
	assert.Equal(t, "acpi_video0", c.Name)
	assert.Equal(t, displayBl.ControllerTypeFirmware, c.Type)
}

func TestPreferredWithoutController(t *testing.T) {
	useSysfs(t)
	_, err := Preferred()
	assert.Equal(t, ErrNoController, err)
}

func TestSetBrightness(t *testing.T) {
	root := useSysfs(t)
	writeDevice(t, root, "intel_backlight", "raw", 100, 40)

	c, err := Preferred()
	require.NoError(t, err)
	assert.True(t, Writable(c))

	value, err := Brightness(c)
	require.NoError(t, err)
	assert.Equal(t, 40, value)

	require.NoError(t, SetBrightness(c, 75))
	value, err = Brightness(c)
	require.NoError(t, err)
	assert.Equal(t, 75, value)

	assert.Error(t, SetBrightness(c, 101))
	assert.Error(t, SetBrightness(c, -1))
}

func TestBrightnessPrefersActual(t *testing.T) {
	root := useSysfs(t)
	writeDevice(t, root, "intel_backlight", "raw", 100, 40)
	require.NoError(t, os.WriteFile(filepath.Join(root, "intel_backlight", "actual_brightness"),
		[]byte("38\n"), 0644))

	c, err := Preferred()
	require.NoError(t, err)
	value, err := Brightness(c)
	require.NoError(t, err)
	assert.Equal(t, 38, value)
}
