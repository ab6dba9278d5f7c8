// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayedTaskRuns(t *testing.T) {
	ran := make(chan struct{})
	task := newDelayedTask("lid", 10*time.Millisecond, func() {
		close(ran)
	})
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	assert.Eventually(t, task.done, time.Second, 5*time.Millisecond)
	assert.False(t, task.Cancel())
}

func TestDelayedTaskCancel(t *testing.T) {
	ran := make(chan struct{}, 1)
	task := newDelayedTask("lid", 50*time.Millisecond, func() {
		ran <- struct{}{}
	})
	assert.True(t, task.Cancel())
	assert.True(t, task.done())
	assert.False(t, task.Cancel())

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, ran)
}
