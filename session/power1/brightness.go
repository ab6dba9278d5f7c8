// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"math"
	"sync"

	"golang.org/x/xerrors"
)

// BrightnessBackend is one way of reaching the panel backlight.
type BrightnessBackend interface {
	Name() string
	MaxLevel() (int32, error)
	GetLevel() (int32, error)
	SetLevel(level int32) error
}

var errBrightnessUnchanged = xerrors.New("brightness did not change after write")

type BrightnessController struct {
	mu          sync.Mutex
	backend     BrightnessBackend
	minLevel    int32
	maxLevel    int32
	step        int32
	expStep     float64
	exponential bool
}

// NewBrightnessController uses the first backend that reports a usable
// maximum level. Without one the controller has no hardware and every
// operation fails with ErrNoHardwareSupport.
func NewBrightnessController(backends ...BrightnessBackend) *BrightnessController {
	c := &BrightnessController{}
	for _, backend := range backends {
		if backend == nil {
			continue
		}
		max, err := backend.MaxLevel()
		if err != nil {
			logger.Debugf("brightness backend %s unusable: %v", backend.Name(), err)
			continue
		}
		if max <= 0 {
			continue
		}
		c.backend = backend
		c.maxLevel = max
		break
	}
	if c.backend == nil {
		logger.Info("no brightness hardware support")
		return c
	}

	logger.Infof("brightness backend %s, max level %d", c.backend.Name(), c.maxLevel)
	if c.maxLevel <= 20 {
		c.step = 1
	} else {
		c.step = c.maxLevel / 10
	}
	c.expStep = 2
	return c
}

func (c *BrightnessController) HasHardware() bool {
	return c.backend != nil
}

func (c *BrightnessController) BackendName() string {
	if c.backend == nil {
		return ""
	}
	return c.backend.Name()
}

func (c *BrightnessController) MaxLevel() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxLevel
}

func (c *BrightnessController) MinLevel() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minLevel
}

func (c *BrightnessController) GetLevel() (int32, error) {
	if c.backend == nil {
		return 0, ErrNoHardwareSupport
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.GetLevel()
}

func (c *BrightnessController) clamp(level int32) int32 {
	if level < c.minLevel {
		return c.minLevel
	}
	if level > c.maxLevel {
		return c.maxLevel
	}
	return level
}

func (c *BrightnessController) SetLevel(level int32) error {
	if c.backend == nil {
		return ErrNoHardwareSupport
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.SetLevel(c.clamp(level))
}

// write sets level and reads it back, failing if the hardware kept old.
func (c *BrightnessController) write(old, level int32) (int32, error) {
	err := c.backend.SetLevel(level)
	if err != nil {
		return old, err
	}
	actual, err := c.backend.GetLevel()
	if err != nil {
		return old, err
	}
	if actual == old {
		return old, errBrightnessUnchanged
	}
	return actual, nil
}

func (c *BrightnessController) increase(level int32) int32 {
	if !c.exponential {
		return level + c.step
	}
	next := int32(math.Round(float64(level) * c.expStep))
	if next == level {
		next++
	}
	return next
}

func (c *BrightnessController) decrease(level int32) int32 {
	if !c.exponential {
		return level - c.step
	}
	next := int32(math.Round(float64(level) / c.expStep))
	if next == level {
		next--
	}
	return next
}

// StepUp raises the level by one step and returns the new level.
func (c *BrightnessController) StepUp() (int32, error) {
	if c.backend == nil {
		return 0, ErrNoHardwareSupport
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	hw, err := c.backend.GetLevel()
	if err != nil {
		return 0, err
	}
	if hw >= c.maxLevel {
		return c.maxLevel, nil
	}
	return c.write(hw, c.clamp(c.increase(hw)))
}

// StepDown lowers the level by one step and returns the new level.
func (c *BrightnessController) StepDown() (int32, error) {
	if c.backend == nil {
		return 0, ErrNoHardwareSupport
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	hw, err := c.backend.GetLevel()
	if err != nil {
		return 0, err
	}
	if hw <= c.minLevel {
		return c.minLevel, nil
	}
	return c.write(hw, c.clamp(c.decrease(hw)))
}

// SetStepCount splits [min, max] into count steps, linear or exponential.
// It returns false without hardware.
func (c *BrightnessController) SetStepCount(count int32, exponential bool) bool {
	if c.backend == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if count < 2 {
		count = 2
	}
	c.exponential = exponential
	delta := c.maxLevel - c.minLevel
	if delta < 2*count {
		c.step = 1
	} else {
		c.step = delta / count
	}
	c.expStep = math.Pow(float64(delta), 1/float64(count))
	return true
}

// SetMinLevel overrides the lower bound. A negative value restores 0.
func (c *BrightnessController) SetMinLevel(level int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if level < 0 || level >= c.maxLevel {
		level = 0
	}
	c.minLevel = level
}

// DimDown drops straight to the minimum level.
func (c *BrightnessController) DimDown() error {
	if c.backend == nil {
		return ErrNoHardwareSupport
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.SetLevel(c.minLevel)
}

// Percent converts level to a rounded percentage of the maximum.
func (c *BrightnessController) Percent(level int32) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxLevel <= 0 {
		return 0
	}
	return math.Round(float64(level) * 100 / float64(c.maxLevel))
}
