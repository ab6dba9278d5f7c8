// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-power-manager/common/backlight"
	backlighthelper "github.com/linuxdeepin/go-dbus-factory/system/org.deepin.dde.backlighthelper1"
	displayBl "github.com/linuxdeepin/go-lib/backlight/display"
	"github.com/linuxdeepin/go-lib/strv"
	"golang.org/x/xerrors"
)

const (
	backlightHelperServiceName = "org.deepin.dde.BacklightHelper1"
	backlightTypeDisplay       = 1

	helperProcessPath = "/usr/lib/deepin-daemon/backlight_helper"
)

// sysfsBackend writes the class device directly when it is writable by the
// session user, which is the case on systems with udev ACLs.
type sysfsBackend struct {
	controller *displayBl.Controller
}

func newSysfsBackend() *sysfsBackend {
	c, err := backlight.Preferred()
	if err != nil {
		logger.Debug("no display backlight controller:", err)
		return nil
	}
	if !backlight.Writable(c) {
		return nil
	}
	return &sysfsBackend{controller: c}
}

func (b *sysfsBackend) Name() string {
	return "sysfs:" + b.controller.Name
}

func (b *sysfsBackend) MaxLevel() (int32, error) {
	return int32(b.controller.MaxBrightness), nil
}

func (b *sysfsBackend) GetLevel() (int32, error) {
	v, err := backlight.Brightness(b.controller)
	return int32(v), err
}

func (b *sysfsBackend) SetLevel(level int32) error {
	return backlight.SetBrightness(b.controller, int(level))
}

// helperBusBackend reads sysfs and writes through the system backlight
// helper service.
type helperBusBackend struct {
	controller *displayBl.Controller
	helper     backlighthelper.Backlight
}

func systemBusHasName(sysBus *dbus.Conn, name string) bool {
	var names []string
	err := sysBus.BusObject().Call("org.freedesktop.DBus.ListActivatableNames", 0).Store(&names)
	if err == nil && strv.Strv(names).Contains(name) {
		return true
	}
	var hasOwner bool
	err = sysBus.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&hasOwner)
	if err != nil {
		logger.Warning(err)
		return false
	}
	return hasOwner
}

func newHelperBusBackend(sysBus *dbus.Conn) *helperBusBackend {
	if sysBus == nil || !systemBusHasName(sysBus, backlightHelperServiceName) {
		return nil
	}
	c, err := backlight.Preferred()
	if err != nil {
		logger.Debug("no display backlight controller:", err)
		return nil
	}
	return &helperBusBackend{
		controller: c,
		helper:     backlighthelper.NewBacklight(sysBus),
	}
}

func (b *helperBusBackend) Name() string {
	return "helper-service:" + b.controller.Name
}

func (b *helperBusBackend) MaxLevel() (int32, error) {
	return int32(b.controller.MaxBrightness), nil
}

func (b *helperBusBackend) GetLevel() (int32, error) {
	v, err := backlight.Brightness(b.controller)
	return int32(v), err
}

func (b *helperBusBackend) SetLevel(level int32) error {
	return b.helper.SetBrightness(0, backlightTypeDisplay, b.controller.Name, level)
}

type commandRunner interface {
	Run(name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// helperProcessBackend spawns the privileged helper for every access.
type helperProcessBackend struct {
	runner commandRunner
	path   string
}

func newHelperProcessBackend(runner commandRunner) *helperProcessBackend {
	if runner == nil {
		runner = execRunner{}
	}
	return &helperProcessBackend{runner: runner, path: helperProcessPath}
}

func (b *helperProcessBackend) Name() string {
	return "helper-process"
}

func parseHelperOutput(out []byte) (int32, error) {
	s := strings.TrimSpace(string(out))
	switch {
	case strings.HasPrefix(s, "N"):
		return 0, nil
	case strings.HasPrefix(s, "Y"):
		return 1, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, xerrors.Errorf("unexpected helper output %q", s)
	}
	return int32(v), nil
}

func (b *helperProcessBackend) query(flag string) (int32, error) {
	out, err := b.runner.Run(b.path, flag)
	if err != nil {
		return 0, xerrors.Errorf("%s %s: %w", b.path, flag, err)
	}
	return parseHelperOutput(out)
}

func (b *helperProcessBackend) MaxLevel() (int32, error) {
	return b.query("--get-max-brightness")
}

func (b *helperProcessBackend) GetLevel() (int32, error) {
	return b.query("--get-brightness")
}

func (b *helperProcessBackend) SetLevel(level int32) error {
	_, err := b.runner.Run("pkexec", b.path, "--set-brightness", strconv.Itoa(int(level)))
	if err != nil {
		return xerrors.Errorf("helper set brightness %d: %w", level, err)
	}
	return nil
}

// brightnessBackends lists the candidates in preference order. Nil entries are
// skipped by NewBrightnessController.
func brightnessBackends(sysBus *dbus.Conn) []BrightnessBackend {
	var result []BrightnessBackend
	if b := newSysfsBackend(); b != nil {
		result = append(result, b)
	}
	if b := newHelperBusBackend(sysBus); b != nil {
		result = append(result, b)
	}
	result = append(result, newHelperProcessBackend(nil))
	return result
}
