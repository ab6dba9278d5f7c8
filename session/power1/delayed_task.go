// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"sync"
	"time"
)

type delayedTaskState uint

const (
	delayedTaskStateReady delayedTaskState = iota
	delayedTaskStateRunning
	delayedTaskStateDone
)

// delayedTask runs fn once after delay unless cancelled first.
type delayedTask struct {
	name  string
	mu    sync.Mutex
	state delayedTaskState
	timer *time.Timer
}

func newDelayedTask(name string, delay time.Duration, fn func()) *delayedTask {
	t := &delayedTask{
		name:  name,
		state: delayedTaskStateReady,
	}
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		if t.state != delayedTaskStateReady {
			t.mu.Unlock()
			return
		}
		t.state = delayedTaskStateRunning
		t.mu.Unlock()

		fn()

		t.mu.Lock()
		t.state = delayedTaskStateDone
		t.mu.Unlock()
	})
	return t
}

// Cancel stops a task that has not started yet and reports whether it did.
func (t *delayedTask) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != delayedTaskStateReady {
		return false
	}
	t.timer.Stop()
	t.state = delayedTaskStateDone
	logger.Debugf("delayedTask %s cancelled", t.name)
	return true
}

func (t *delayedTask) done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == delayedTaskStateDone
}
