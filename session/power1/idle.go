// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"sync"
	"time"
)

type AlarmID int

const (
	AlarmDimOnAC AlarmID = iota
	AlarmDimOnBattery
	AlarmInactivityOnAC
	AlarmInactivityOnBattery
)

func (id AlarmID) String() string {
	switch id {
	case AlarmDimOnAC:
		return "dim-on-ac"
	case AlarmDimOnBattery:
		return "dim-on-battery"
	case AlarmInactivityOnAC:
		return "inactivity-on-ac"
	case AlarmInactivityOnBattery:
		return "inactivity-on-battery"
	}
	return "unknown"
}

func dimAlarmFor(onBattery bool) AlarmID {
	if onBattery {
		return AlarmDimOnBattery
	}
	return AlarmDimOnAC
}

func inactivityAlarmFor(onBattery bool) AlarmID {
	if onBattery {
		return AlarmInactivityOnBattery
	}
	return AlarmInactivityOnAC
}

type alarmTimer interface {
	Stop() bool
}

type idleAlarm struct {
	id      AlarmID
	timeout time.Duration
	armed   bool
	timer   alarmTimer
	// bumps on every rearm so a stale timer callback is ignored
	gen uint64
}

// IdleAlarmScheduler runs one timer per alarm, counted from the last
// activity reset. Each alarm fires at most once per idle period.
type IdleAlarmScheduler struct {
	mu        sync.Mutex
	alarms    map[AlarmID]*idleAlarm
	afterFunc func(d time.Duration, fn func()) alarmTimer

	OnAlarm func(id AlarmID)
	OnReset func()
}

func NewIdleAlarmScheduler() *IdleAlarmScheduler {
	return &IdleAlarmScheduler{
		alarms: make(map[AlarmID]*idleAlarm),
		afterFunc: func(d time.Duration, fn func()) alarmTimer {
			return time.AfterFunc(d, fn)
		},
	}
}

func (s *IdleAlarmScheduler) armLocked(a *idleAlarm) {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	id := a.id
	a.armed = true
	a.timer = s.afterFunc(a.timeout, func() {
		s.fire(id, gen)
	})
}

func (s *IdleAlarmScheduler) fire(id AlarmID, gen uint64) {
	s.mu.Lock()
	a, ok := s.alarms[id]
	if !ok || a.gen != gen || !a.armed {
		s.mu.Unlock()
		return
	}
	a.armed = false
	s.mu.Unlock()

	logger.Debug("idle alarm fired:", id)
	if s.OnAlarm != nil {
		s.OnAlarm(id)
	}
}

// Set installs or updates an alarm. A zero timeout removes it.
func (s *IdleAlarmScheduler) Set(id AlarmID, timeout time.Duration) {
	if timeout <= 0 {
		s.Remove(id)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alarms[id]
	if ok && a.timeout == timeout {
		return
	}
	if !ok {
		a = &idleAlarm{id: id}
		s.alarms[id] = a
	}
	a.timeout = timeout
	s.armLocked(a)
}

func (s *IdleAlarmScheduler) Remove(id AlarmID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alarms[id]
	if !ok {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	delete(s.alarms, id)
}

func (s *IdleAlarmScheduler) Timeout(id AlarmID) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alarms[id]
	if !ok {
		return 0, false
	}
	return a.timeout, true
}

func (s *IdleAlarmScheduler) Armed(id AlarmID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alarms[id]
	return ok && a.armed
}

// Rearm restarts every alarm from now without reporting a reset.
func (s *IdleAlarmScheduler) Rearm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alarms {
		s.armLocked(a)
	}
}

// ResetAll restarts every alarm from now and reports the reset.
func (s *IdleAlarmScheduler) ResetAll() {
	s.mu.Lock()
	for _, a := range s.alarms {
		s.armLocked(a)
	}
	s.mu.Unlock()

	if s.OnReset != nil {
		s.OnReset()
	}
}

func (s *IdleAlarmScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.alarms {
		if a.timer != nil {
			a.timer.Stop()
		}
		delete(s.alarms, id)
	}
}
