// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"sync"

	dbus "github.com/godbus/dbus/v5"
	notifications "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.notifications"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/dbusutil/proxy"
	. "github.com/linuxdeepin/go-lib/gettext"
)

const (
	notifyExpireTimeoutDefault = -1
	notifyExpireTimeoutNever   = 0

	confirmActionYes = "yes"
	confirmActionNo  = "no"
)

// busNotifier talks to org.freedesktop.Notifications. Action callbacks run
// on their own goroutine so they may call back into the engine.
type busNotifier struct {
	notifications notifications.Notifications

	mu      sync.Mutex
	actions map[uint32][]NotifyAction
	pending map[uint32]chan bool
}

func newBusNotifier(n notifications.Notifications, sigLoop *dbusutil.SignalLoop) *busNotifier {
	bn := &busNotifier{
		notifications: n,
		actions:       make(map[uint32][]NotifyAction),
		pending:       make(map[uint32]chan bool),
	}
	n.InitSignalExt(sigLoop, true)
	_, err := n.ConnectActionInvoked(bn.handleActionInvoked)
	if err != nil {
		logger.Warning(err)
	}
	_, err = n.ConnectNotificationClosed(bn.handleClosed)
	if err != nil {
		logger.Warning(err)
	}
	return bn
}

func (bn *busNotifier) handleActionInvoked(id uint32, actionKey string) {
	logger.Debugf("notification action invoked id: %d, key: %q", id, actionKey)
	bn.mu.Lock()
	ch, isConfirm := bn.pending[id]
	if isConfirm {
		delete(bn.pending, id)
	}
	actions := bn.actions[id]
	delete(bn.actions, id)
	bn.mu.Unlock()

	if isConfirm {
		ch <- actionKey == confirmActionYes
		return
	}
	for _, action := range actions {
		if action.Key == actionKey && action.Fn != nil {
			go action.Fn()
			return
		}
	}
}

// handleClosed treats a dismissed confirmation as a no.
func (bn *busNotifier) handleClosed(id uint32, reason uint32) {
	bn.mu.Lock()
	ch, isConfirm := bn.pending[id]
	if isConfirm {
		delete(bn.pending, id)
	}
	delete(bn.actions, id)
	bn.mu.Unlock()

	if isConfirm {
		logger.Debugf("confirmation %d closed, reason %d", id, reason)
		ch <- false
	}
}

func (bn *busNotifier) send(replacesID uint32, n Notification, timeout int32) (uint32, error) {
	var as []string
	for _, action := range n.Actions {
		as = append(as, action.Key, action.Label)
	}
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(n.Urgency)),
	}
	return bn.notifications.Notify(0, Tr("Power Manager"), replacesID, n.Icon,
		n.Summary, n.Body, as, hints, timeout)
}

func (bn *busNotifier) Show(replacesID uint32, n Notification) uint32 {
	timeout := int32(notifyExpireTimeoutDefault)
	if n.Urgency == UrgencyCritical {
		timeout = notifyExpireTimeoutNever
	}
	id, err := bn.send(replacesID, n, timeout)
	if err != nil {
		logger.Warningf("notify %q failed: %v", n.Summary, err)
		return replacesID
	}
	bn.mu.Lock()
	if len(n.Actions) > 0 {
		bn.actions[id] = n.Actions
	} else {
		delete(bn.actions, id)
	}
	bn.mu.Unlock()
	return id
}

func (bn *busNotifier) Close(id uint32) {
	bn.mu.Lock()
	delete(bn.actions, id)
	bn.mu.Unlock()
	err := bn.notifications.CloseNotification(0, id)
	if err != nil {
		logger.Warning(err)
	}
}

// Confirm shows a yes/no notification and waits for the answer.
func (bn *busNotifier) Confirm(summary, body, icon string) bool {
	ch := make(chan bool, 1)
	// held across Notify so an early answer finds the pending entry
	bn.mu.Lock()
	id, err := bn.send(0, Notification{
		Summary: summary,
		Body:    body,
		Icon:    icon,
		Urgency: UrgencyCritical,
		Actions: []NotifyAction{
			{Key: confirmActionYes, Label: Tr("Yes")},
			{Key: confirmActionNo, Label: Tr("No")},
		},
	}, notifyExpireTimeoutNever)
	if err != nil {
		bn.mu.Unlock()
		logger.Warning("confirm:", err)
		return false
	}
	bn.pending[id] = ch
	bn.mu.Unlock()

	return <-ch
}

func (bn *busNotifier) destroy() {
	bn.notifications.RemoveHandler(proxy.RemoveAllHandlers)
}
