// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// backlight_helper performs the privileged writes of the power manager.
// Without arguments it serves the system bus; with an action flag it runs
// once, which is how pkexec invokes it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-power-manager/common/backlight"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
)

const (
	dbusServiceName = "org.deepin.dde.BacklightHelper1"
	dbusPath        = "/org/deepin/dde/BacklightHelper1"
	dbusInterface   = dbusServiceName
)

const (
	DisplayBacklight byte = iota + 1
	KeyboardBacklight
)

var logger = log.NewLogger("backlight_helper")

var (
	sysClassDir   = "/sys/class"
	sysPowerState = "/sys/power/state"
)

type Manager struct {
	service *dbusutil.Service
}

func (*Manager) GetInterfaceName() string {
	return dbusInterface
}

func (m *Manager) SetBrightness(type0 byte, name string, value int32) *dbus.Error {
	m.service.DelayAutoQuit()
	filename, err := getBrightnessFilename(type0, name)
	if err != nil {
		return dbusutil.ToError(err)
	}

	fh, err := os.OpenFile(filename, os.O_WRONLY, 0666)
	if err != nil {
		return dbusutil.ToError(err)
	}
	defer fh.Close()

	_, err = fh.WriteString(strconv.Itoa(int(value)))
	if err != nil {
		return dbusutil.ToError(err)
	}
	return nil
}

func (m *Manager) GetExportedMethods() dbusutil.ExportedMethods {
	return dbusutil.ExportedMethods{
		{
			Name:   "SetBrightness",
			Fn:     m.SetBrightness,
			InArgs: []string{"type", "name", "value"},
		},
	}
}

func getBrightnessFilename(type0 byte, name string) (string, error) {
	var subsystem string
	switch type0 {
	case DisplayBacklight:
		subsystem = "backlight"
	case KeyboardBacklight:
		subsystem = "leds"
	default:
		return "", fmt.Errorf("invalid type %d", type0)
	}

	err := backlight.CheckName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(sysClassDir, subsystem, name, "brightness"), nil
}

// writePowerState asks the kernel to enter state, "mem" or "disk".
func writePowerState(state string) error {
	fh, err := os.OpenFile(sysPowerState, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer fh.Close()
	_, err = fh.WriteString(state)
	return err
}

type options struct {
	getBrightness    bool
	getMaxBrightness bool
	setBrightness    int
	suspend          bool
	hibernate        bool
}

func parseOptions(args []string) (*options, error) {
	opts := &options{setBrightness: -1}
	fs := flag.NewFlagSet("backlight_helper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.getBrightness, "get-brightness", false, "Print the current brightness")
	fs.BoolVar(&opts.getMaxBrightness, "get-max-brightness", false, "Print the maximum brightness")
	fs.IntVar(&opts.setBrightness, "set-brightness", -1, "Set the brightness")
	fs.BoolVar(&opts.suspend, "suspend", false, "Suspend to RAM")
	fs.BoolVar(&opts.hibernate, "hibernate", false, "Suspend to disk")
	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return opts, nil
}

func (o *options) hasAction() bool {
	return o.getBrightness || o.getMaxBrightness || o.setBrightness >= 0 ||
		o.suspend || o.hibernate
}

// runAction executes one action and writes its result to out.
func runAction(o *options, out io.Writer) error {
	switch {
	case o.suspend:
		return writePowerState("mem")
	case o.hibernate:
		return writePowerState("disk")
	}

	c, err := backlight.Preferred()
	if err != nil {
		return err
	}
	switch {
	case o.getBrightness:
		value, err := backlight.Brightness(c)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, value)
		return err
	case o.getMaxBrightness:
		_, err = fmt.Fprintln(out, c.MaxBrightness)
		return err
	default:
		return backlight.SetBrightness(c, o.setBrightness)
	}
}

func serve() {
	m := &Manager{}
	service, err := dbusutil.NewSystemService()
	if err != nil {
		logger.Fatal("failed to new system service:", err)
	}
	m.service = service

	err = service.Export(dbusPath, m)
	if err != nil {
		logger.Fatal("failed to export:", err)
	}
	err = service.RequestName(dbusServiceName)
	if err != nil {
		logger.Fatal("failed to request name:", err)
	}
	service.SetAutoQuitHandler(time.Second*30, nil)
	service.Wait()
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if !opts.hasAction() {
		serve()
		return
	}
	err = runAction(opts, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
