// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backlight picks the display backlight controller shared by the
// power daemon and the backlight helper, and writes its brightness.
package backlight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	blCommon "github.com/linuxdeepin/go-lib/backlight/common"
	displayBl "github.com/linuxdeepin/go-lib/backlight/display"
)

// listControllers is displayBl.List unless SetSysfsDir replaced it.
var listControllers = displayBl.List

var ErrNoController = errors.New("no backlight controller")

// SetSysfsDir reads controllers from dir instead of /sys/class/backlight
// and returns a function restoring the previous source.
func SetSysfsDir(dir string) (restore func()) {
	old := listControllers
	listControllers = func() (displayBl.Controllers, error) {
		return listIn(dir)
	}
	return func() {
		listControllers = old
	}
}

func listIn(dir string) (displayBl.Controllers, error) {
	paths, err := blCommon.ListControllerPaths(dir)
	if err != nil {
		return nil, err
	}
	var result displayBl.Controllers
	for _, path := range paths {
		c, err := displayBl.NewController(path)
		if err != nil {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

// CheckName rejects names that could escape the class directory.
func CheckName(name string) error {
	if strings.ContainsRune(name, '/') || name == "" ||
		name == "." || name == ".." {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}

func typePriority(t displayBl.ControllerType) int {
	switch t {
	case displayBl.ControllerTypeFirmware:
		return 0
	case displayBl.ControllerTypePlatform:
		return 1
	case displayBl.ControllerTypeRaw:
		return 2
	}
	return 3
}

// List returns the controllers, the one most likely driving the internal
// panel first: firmware before platform before raw, then the finest
// granularity.
func List() (displayBl.Controllers, error) {
	controllers, err := listControllers()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(controllers, func(i, j int) bool {
		pi, pj := typePriority(controllers[i].Type), typePriority(controllers[j].Type)
		if pi != pj {
			return pi < pj
		}
		return controllers[i].MaxBrightness > controllers[j].MaxBrightness
	})
	return controllers, nil
}

func Preferred() (*displayBl.Controller, error) {
	controllers, err := List()
	if err != nil {
		return nil, err
	}
	if len(controllers) == 0 {
		return nil, ErrNoController
	}
	return controllers[0], nil
}

// Brightness prefers actual_brightness, which some drivers keep apart from
// the last requested value.
func Brightness(c *displayBl.Controller) (int, error) {
	value, err := c.GetActualBrightness()
	if err == nil {
		return value, nil
	}
	return c.GetBrightness()
}

func brightnessFile(c *displayBl.Controller) string {
	return filepath.Join(c.Path, "brightness")
}

func SetBrightness(c *displayBl.Controller, value int) error {
	if value < 0 || value > c.MaxBrightness {
		return fmt.Errorf("brightness %d out of range [0, %d]", value, c.MaxBrightness)
	}
	fh, err := os.OpenFile(brightnessFile(c), os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer fh.Close()

	_, err = fh.WriteString(strconv.Itoa(value))
	return err
}

// Writable reports whether the current process may write the brightness
// file directly.
func Writable(c *displayBl.Controller) bool {
	fh, err := os.OpenFile(brightnessFile(c), os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = fh.Close()
	return true
}
