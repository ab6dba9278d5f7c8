// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"math"
	"sync"

	dbus "github.com/godbus/dbus/v5"
	"golang.org/x/xerrors"
)

const (
	upowerKbdBacklightPath      = "/org/freedesktop/UPower/KbdBacklight"
	upowerKbdBacklightInterface = "org.freedesktop.UPower.KbdBacklight"

	// keys move the keyboard backlight in this many steps
	kbdBacklightSteps = 5
)

// KbdBacklight reads and writes the keyboard backlight level.
type KbdBacklight interface {
	MaxBrightness() (int32, error)
	Brightness() (int32, error)
	SetBrightness(value int32) error
}

type upowerKbdBacklight struct {
	obj dbus.BusObject
}

func newUPowerKbdBacklight(conn *dbus.Conn) *upowerKbdBacklight {
	return &upowerKbdBacklight{
		obj: conn.Object(upowerServiceName, upowerKbdBacklightPath),
	}
}

func (k *upowerKbdBacklight) getInt(method string) (int32, error) {
	var value int32
	err := k.obj.Call(upowerKbdBacklightInterface+"."+method, 0).Store(&value)
	if err != nil {
		return 0, xerrors.Errorf("kbd backlight %s: %w", method, err)
	}
	return value, nil
}

func (k *upowerKbdBacklight) MaxBrightness() (int32, error) {
	return k.getInt("GetMaxBrightness")
}

func (k *upowerKbdBacklight) Brightness() (int32, error) {
	return k.getInt("GetBrightness")
}

func (k *upowerKbdBacklight) SetBrightness(value int32) error {
	err := k.obj.Call(upowerKbdBacklightInterface+".SetBrightness", 0, value).Err
	if err != nil {
		return xerrors.Errorf("kbd backlight SetBrightness: %w", err)
	}
	return nil
}

// KbdBacklightStepper moves the keyboard backlight one step per key press.
type KbdBacklightStepper struct {
	mu   sync.Mutex
	dev  KbdBacklight
	max  int32
	step int32
}

// NewKbdBacklightStepper returns nil when dev has no usable backlight.
func NewKbdBacklightStepper(dev KbdBacklight) *KbdBacklightStepper {
	if dev == nil {
		return nil
	}
	max, err := dev.MaxBrightness()
	if err != nil {
		logger.Debug("no keyboard backlight:", err)
		return nil
	}
	if max <= 0 {
		return nil
	}
	return &KbdBacklightStepper{
		dev:  dev,
		max:  max,
		step: kbdBacklightStep(max),
	}
}

func kbdBacklightStep(max int32) int32 {
	if max > kbdBacklightSteps {
		return max / kbdBacklightSteps
	}
	return 1
}

func (s *KbdBacklightStepper) MaxLevel() int32 {
	return s.max
}

func (s *KbdBacklightStepper) GetLevel() (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.Brightness()
}

func (s *KbdBacklightStepper) StepUp() (int32, error) {
	return s.move(s.step)
}

func (s *KbdBacklightStepper) StepDown() (int32, error) {
	return s.move(-s.step)
}

func (s *KbdBacklightStepper) move(delta int32) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.dev.Brightness()
	if err != nil {
		return 0, err
	}
	level := current + delta
	if level > s.max {
		level = s.max
	} else if level < 0 {
		level = 0
	}
	if level == current {
		return current, nil
	}
	err = s.dev.SetBrightness(level)
	if err != nil {
		return current, err
	}
	return level, nil
}

// Percent converts level to a rounded percentage of the maximum.
func (s *KbdBacklightStepper) Percent(level int32) float64 {
	return math.Round(float64(level) * 100 / float64(s.max))
}
