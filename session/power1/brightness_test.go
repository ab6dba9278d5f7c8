// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

type fakeBacklight struct {
	name   string
	max    int32
	maxErr error
	level  int32
	// stuck ignores writes
	stuck  bool
	writes []int32
}

func (b *fakeBacklight) Name() string {
	return b.name
}

func (b *fakeBacklight) MaxLevel() (int32, error) {
	return b.max, b.maxErr
}

func (b *fakeBacklight) GetLevel() (int32, error) {
	return b.level, nil
}

func (b *fakeBacklight) SetLevel(level int32) error {
	b.writes = append(b.writes, level)
	if !b.stuck {
		b.level = level
	}
	return nil
}

func TestBrightnessNoHardware(t *testing.T) {
	c := NewBrightnessController(nil, &fakeBacklight{name: "broken", maxErr: errors.New("no device")},
		&fakeBacklight{name: "zero"})
	assert.False(t, c.HasHardware())
	assert.Equal(t, "", c.BackendName())

	_, err := c.GetLevel()
	assert.True(t, xerrors.Is(err, ErrNoHardwareSupport))
	_, err = c.StepUp()
	assert.True(t, xerrors.Is(err, ErrNoHardwareSupport))
	assert.True(t, xerrors.Is(c.DimDown(), ErrNoHardwareSupport))
	assert.False(t, c.SetStepCount(10, false))
}

func TestBrightnessPicksFirstUsableBackend(t *testing.T) {
	good := &fakeBacklight{name: "sysfs", max: 100, level: 50}
	c := NewBrightnessController(&fakeBacklight{name: "broken", maxErr: errors.New("x")}, good)
	require.True(t, c.HasHardware())
	assert.Equal(t, "sysfs", c.BackendName())
	assert.Equal(t, int32(100), c.MaxLevel())
}

func TestBrightnessLinearSteps(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 100, level: 50}
	c := NewBrightnessController(b)

	level, err := c.StepUp()
	require.NoError(t, err)
	assert.Equal(t, int32(60), level)

	level, err = c.StepDown()
	require.NoError(t, err)
	assert.Equal(t, int32(50), level)

	b.level = 95
	level, err = c.StepUp()
	require.NoError(t, err)
	assert.Equal(t, int32(100), level)

	b.writes = nil
	level, err = c.StepUp()
	require.NoError(t, err)
	assert.Equal(t, int32(100), level)
	assert.Empty(t, b.writes)
}

func TestBrightnessSmallRangeStepsByOne(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 15, level: 7}
	c := NewBrightnessController(b)
	level, err := c.StepUp()
	require.NoError(t, err)
	assert.Equal(t, int32(8), level)
}

func TestBrightnessStuckHardware(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 100, level: 50, stuck: true}
	c := NewBrightnessController(b)

	level, err := c.StepUp()
	assert.Equal(t, errBrightnessUnchanged, err)
	assert.Equal(t, int32(50), level)
	assert.Equal(t, []int32{60}, b.writes)
}

func TestBrightnessClampAndMin(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 100, level: 50}
	c := NewBrightnessController(b)
	c.SetMinLevel(5)
	assert.Equal(t, int32(5), c.MinLevel())

	require.NoError(t, c.SetLevel(0))
	assert.Equal(t, int32(5), b.level)
	require.NoError(t, c.SetLevel(1000))
	assert.Equal(t, int32(100), b.level)

	require.NoError(t, c.DimDown())
	assert.Equal(t, int32(5), b.level)

	level, err := c.StepDown()
	require.NoError(t, err)
	assert.Equal(t, int32(5), level)

	c.SetMinLevel(-1)
	assert.Equal(t, int32(0), c.MinLevel())
	c.SetMinLevel(100)
	assert.Equal(t, int32(0), c.MinLevel())
}

func TestBrightnessExponentialSteps(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 100, level: 10}
	c := NewBrightnessController(b)
	require.True(t, c.SetStepCount(10, true))

	level, err := c.StepUp()
	require.NoError(t, err)
	assert.Equal(t, int32(16), level)

	level, err = c.StepDown()
	require.NoError(t, err)
	assert.Equal(t, int32(10), level)

	// rounding would keep the level, force one unit
	b.level = 1
	level, err = c.StepUp()
	require.NoError(t, err)
	assert.Equal(t, int32(2), level)
}

func TestBrightnessStepCount(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 100, level: 0}
	c := NewBrightnessController(b)
	require.True(t, c.SetStepCount(4, false))

	level, err := c.StepUp()
	require.NoError(t, err)
	assert.Equal(t, int32(25), level)

	// fewer than two units per step
	require.True(t, c.SetStepCount(60, false))
	level, err = c.StepUp()
	require.NoError(t, err)
	assert.Equal(t, int32(26), level)
}

func TestBrightnessPercent(t *testing.T) {
	c := NewBrightnessController(&fakeBacklight{name: "sysfs", max: 200})
	assert.Equal(t, float64(25), c.Percent(50))
	assert.Equal(t, float64(100), c.Percent(200))

	assert.Equal(t, float64(0), NewBrightnessController().Percent(10))
}

func TestBrightnessSetLevelIdempotent(t *testing.T) {
	b := &fakeBacklight{name: "sysfs", max: 100, level: 50}
	c := NewBrightnessController(b)
	c.SetMinLevel(5)

	for level := int32(-3); level <= 103; level++ {
		require.NoError(t, c.SetLevel(level))
		first, err := c.GetLevel()
		require.NoError(t, err)

		require.NoError(t, c.SetLevel(level))
		second, err := c.GetLevel()
		require.NoError(t, err)

		assert.Equal(t, first, second, "level %d", level)
		assert.Equal(t, c.clamp(level), second, "level %d", level)
	}
}

func TestBrightnessExponentialRoundTrip(t *testing.T) {
	for _, max := range []int32{7, 15, 100, 255, 19393} {
		for _, count := range []int32{5, 10, 20} {
			b := &fakeBacklight{name: "sysfs", max: max}
			c := NewBrightnessController(b)
			require.True(t, c.SetStepCount(count, true))

			for start := int32(0); start <= max; start++ {
				b.level = start
				_, err := c.StepUp()
				require.NoError(t, err)
				if start < max {
					_, err = c.StepDown()
					require.NoError(t, err)
				}
				assert.LessOrEqual(t, b.level, start+1,
					"max %d count %d start %d", max, count, start)
			}
		}
	}
}
