// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"errors"
	"sync"
	"testing"
	"time"

	dbus "github.com/godbus/dbus/v5"
	notifications "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentNotification struct {
	replacesID uint32
	summary    string
	actions    []string
	urgency    byte
	timeout    int32
}

type fakeNotifications struct {
	notifications.Notifications

	mu     sync.Mutex
	nextID uint32
	sent   []sentNotification
	closed []uint32
	err    error
	notify chan uint32
}

func (f *fakeNotifications) Notify(flags dbus.Flags, appName string, replacesID uint32,
	icon, summary, body string, actions []string, hints map[string]dbus.Variant,
	timeout int32) (uint32, error) {
	f.mu.Lock()
	if f.err != nil {
		f.mu.Unlock()
		return 0, f.err
	}
	f.nextID++
	id := f.nextID
	urgency, _ := hints["urgency"].Value().(byte)
	f.sent = append(f.sent, sentNotification{
		replacesID: replacesID,
		summary:    summary,
		actions:    actions,
		urgency:    urgency,
		timeout:    timeout,
	})
	f.mu.Unlock()
	if f.notify != nil {
		f.notify <- id
	}
	return id, nil
}

func (f *fakeNotifications) CloseNotification(flags dbus.Flags, id uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, id)
	return nil
}

func newTestBusNotifier(n notifications.Notifications) *busNotifier {
	return &busNotifier{
		notifications: n,
		actions:       make(map[uint32][]NotifyAction),
		pending:       make(map[uint32]chan bool),
	}
}

func TestBusNotifierShow(t *testing.T) {
	fake := &fakeNotifications{}
	bn := newTestBusNotifier(fake)

	id := bn.Show(0, Notification{Summary: "low", Urgency: UrgencyNormal})
	assert.Equal(t, uint32(1), id)
	id = bn.Show(id, Notification{Summary: "critical", Urgency: UrgencyCritical})
	require.Len(t, fake.sent, 2)
	assert.Equal(t, uint32(1), fake.sent[1].replacesID)
	assert.Equal(t, byte(UrgencyCritical), fake.sent[1].urgency)
	assert.Equal(t, int32(notifyExpireTimeoutNever), fake.sent[1].timeout)
	assert.Equal(t, int32(notifyExpireTimeoutDefault), fake.sent[0].timeout)

	bn.Close(id)
	assert.Equal(t, []uint32{id}, fake.closed)

	// a failed notify keeps the old id
	fake.err = errors.New("no notification daemon")
	assert.Equal(t, uint32(7), bn.Show(7, Notification{Summary: "x"}))
}

func TestBusNotifierActions(t *testing.T) {
	fake := &fakeNotifications{}
	bn := newTestBusNotifier(fake)
	invoked := make(chan string, 1)

	id := bn.Show(0, Notification{
		Summary: "critical",
		Actions: []NotifyAction{
			{Key: "suspend", Label: "Suspend", Fn: func() { invoked <- "suspend" }},
			{Key: "shutdown", Label: "Shut down", Fn: func() { invoked <- "shutdown" }},
		},
	})
	assert.Equal(t, []string{"suspend", "Suspend", "shutdown", "Shut down"}, fake.sent[0].actions)

	bn.handleActionInvoked(id, "shutdown")
	select {
	case key := <-invoked:
		assert.Equal(t, "shutdown", key)
	case <-time.After(time.Second):
		t.Fatal("action not run")
	}

	// actions are forgotten after the first invocation
	bn.handleActionInvoked(id, "suspend")
	select {
	case key := <-invoked:
		t.Fatalf("unexpected action %s", key)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBusNotifierConfirm(t *testing.T) {
	fake := &fakeNotifications{notify: make(chan uint32, 1)}
	bn := newTestBusNotifier(fake)

	answer := make(chan bool)
	go func() {
		answer <- bn.Confirm("sure?", "", iconSleep)
	}()
	id := <-fake.notify
	bn.handleActionInvoked(id, confirmActionYes)
	assert.True(t, <-answer)

	go func() {
		answer <- bn.Confirm("sure?", "", iconSleep)
	}()
	id = <-fake.notify
	bn.handleClosed(id, 2)
	assert.False(t, <-answer)

	fake.notify = nil
	fake.err = errors.New("no daemon")
	assert.False(t, bn.Confirm("sure?", "", iconSleep))
}
