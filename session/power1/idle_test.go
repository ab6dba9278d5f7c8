// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	timeout time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

type fakeTimers struct {
	timers []*fakeTimer
}

func (f *fakeTimers) afterFunc(d time.Duration, fn func()) alarmTimer {
	timer := &fakeTimer{timeout: d, fn: fn}
	f.timers = append(f.timers, timer)
	return timer
}

func (f *fakeTimers) last() *fakeTimer {
	return f.timers[len(f.timers)-1]
}

// elapse fires every live timer with the given timeout.
func (f *fakeTimers) elapse(d time.Duration) {
	for _, timer := range append([]*fakeTimer(nil), f.timers...) {
		if !timer.stopped && timer.timeout == d {
			timer.stopped = true
			timer.fn()
		}
	}
}

func newTestScheduler() (*IdleAlarmScheduler, *fakeTimers, *[]AlarmID) {
	timers := &fakeTimers{}
	s := NewIdleAlarmScheduler()
	s.afterFunc = timers.afterFunc
	var fired []AlarmID
	s.OnAlarm = func(id AlarmID) {
		fired = append(fired, id)
	}
	return s, timers, &fired
}

func TestIdleAlarmFiresOncePerPeriod(t *testing.T) {
	s, timers, fired := newTestScheduler()
	resets := 0
	s.OnReset = func() {
		resets++
	}

	s.Set(AlarmDimOnAC, 30*time.Second)
	s.Set(AlarmInactivityOnAC, 60*time.Second)
	assert.True(t, s.Armed(AlarmDimOnAC))

	timers.elapse(30 * time.Second)
	assert.Equal(t, []AlarmID{AlarmDimOnAC}, *fired)
	assert.False(t, s.Armed(AlarmDimOnAC))
	assert.True(t, s.Armed(AlarmInactivityOnAC))

	timers.elapse(30 * time.Second)
	assert.Equal(t, []AlarmID{AlarmDimOnAC}, *fired)

	s.ResetAll()
	assert.Equal(t, 1, resets)
	assert.True(t, s.Armed(AlarmDimOnAC))
	timers.elapse(60 * time.Second)
	assert.Equal(t, []AlarmID{AlarmDimOnAC, AlarmInactivityOnAC}, *fired)
}

func TestIdleAlarmSetAndRemove(t *testing.T) {
	s, timers, fired := newTestScheduler()

	s.Set(AlarmDimOnBattery, 10*time.Second)
	first := timers.last()
	// same timeout keeps the running timer
	s.Set(AlarmDimOnBattery, 10*time.Second)
	assert.Len(t, timers.timers, 1)

	s.Set(AlarmDimOnBattery, 20*time.Second)
	assert.True(t, first.stopped)
	timeout, ok := s.Timeout(AlarmDimOnBattery)
	require.True(t, ok)
	assert.Equal(t, 20*time.Second, timeout)

	s.Set(AlarmDimOnBattery, 0)
	_, ok = s.Timeout(AlarmDimOnBattery)
	assert.False(t, ok)
	assert.True(t, timers.last().stopped)

	s.Remove(AlarmInactivityOnBattery)
	assert.Empty(t, *fired)
}

func TestIdleAlarmStaleCallbackIgnored(t *testing.T) {
	s, timers, fired := newTestScheduler()
	s.Set(AlarmInactivityOnBattery, time.Minute)
	stale := timers.last()

	s.Rearm()
	// a timer that fired concurrently with the rearm
	stale.fn()
	assert.Empty(t, *fired)

	timers.last().fn()
	assert.Equal(t, []AlarmID{AlarmInactivityOnBattery}, *fired)
}

func TestIdleAlarmRearmDoesNotReportReset(t *testing.T) {
	s, _, _ := newTestScheduler()
	resets := 0
	s.OnReset = func() {
		resets++
	}
	s.Set(AlarmDimOnAC, time.Second)
	s.Rearm()
	assert.Zero(t, resets)
}

func TestIdleAlarmStop(t *testing.T) {
	s, timers, _ := newTestScheduler()
	s.Set(AlarmDimOnAC, time.Second)
	s.Set(AlarmDimOnBattery, 2*time.Second)
	s.Stop()

	for _, timer := range timers.timers {
		assert.True(t, timer.stopped)
	}
	assert.False(t, s.Armed(AlarmDimOnAC))
}

func TestAlarmFor(t *testing.T) {
	assert.Equal(t, AlarmDimOnBattery, dimAlarmFor(true))
	assert.Equal(t, AlarmDimOnAC, dimAlarmFor(false))
	assert.Equal(t, AlarmInactivityOnBattery, inactivityAlarmFor(true))
	assert.Equal(t, "inactivity-on-ac", inactivityAlarmFor(false).String())
}
