// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

type Inhibitor struct {
	Cookie  uint32
	AppName string
	Reason  string
	Peer    string
}

// peerWatcher reports when a bus peer goes away.
type peerWatcher interface {
	Watch(peer string)
	Unwatch(peer string)
}

type InhibitRegistry struct {
	mu         sync.Mutex
	inhibitors []*Inhibitor
	inhibited  bool
	watcher    peerWatcher
	rand       *rand.Rand

	// called on the empty/non-empty edge only
	OnInhibitedChanged func(inhibited bool)
	// called after every successful add or remove
	OnListChanged func()
}

func NewInhibitRegistry(watcher peerWatcher) *InhibitRegistry {
	return &InhibitRegistry{
		watcher: watcher,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *InhibitRegistry) findCookie(cookie uint32) int {
	for i, inh := range r.inhibitors {
		if inh.Cookie == cookie {
			return i
		}
	}
	return -1
}

func (r *InhibitRegistry) peerCount(peer string) int {
	count := 0
	for _, inh := range r.inhibitors {
		if inh.Peer == peer {
			count++
		}
	}
	return count
}

// newCookie picks a value in (max, max+cookieRange). Near the top of the
// range it falls back to the lowest free value.
func (r *InhibitRegistry) newCookie() uint32 {
	var max uint32
	for _, inh := range r.inhibitors {
		if inh.Cookie > max {
			max = inh.Cookie
		}
	}
	if max < math.MaxUint32-cookieRange {
		return max + 1 + uint32(r.rand.Intn(cookieRange-1))
	}
	for cookie := uint32(1); ; cookie++ {
		if r.findCookie(cookie) < 0 {
			return cookie
		}
	}
}

func (r *InhibitRegistry) updateInhibitedLocked() (changed bool) {
	inhibited := len(r.inhibitors) > 0
	if inhibited == r.inhibited {
		return false
	}
	r.inhibited = inhibited
	return true
}

func (r *InhibitRegistry) notify(inhibitedChanged bool, inhibited bool) {
	if inhibitedChanged && r.OnInhibitedChanged != nil {
		r.OnInhibitedChanged(inhibited)
	}
	if r.OnListChanged != nil {
		r.OnListChanged()
	}
}

func (r *InhibitRegistry) Inhibit(appName, reason, peer string) (uint32, error) {
	if appName == "" || reason == "" || peer == "" {
		return 0, newError(ErrorCodeInvalidArguments,
			"application name and reason must not be empty")
	}

	r.mu.Lock()
	cookie := r.newCookie()
	r.inhibitors = append(r.inhibitors, &Inhibitor{
		Cookie:  cookie,
		AppName: appName,
		Reason:  reason,
		Peer:    peer,
	})
	firstOfPeer := r.peerCount(peer) == 1
	changed := r.updateInhibitedLocked()
	inhibited := r.inhibited
	r.mu.Unlock()

	logger.Infof("inhibit by %s (%s) reason %q, cookie %d", appName, peer, reason, cookie)
	if firstOfPeer && r.watcher != nil {
		r.watcher.Watch(peer)
	}
	r.notify(changed, inhibited)
	return cookie, nil
}

func (r *InhibitRegistry) UnInhibit(cookie uint32) error {
	r.mu.Lock()
	idx := r.findCookie(cookie)
	if idx < 0 {
		r.mu.Unlock()
		return newError(ErrorCodeCookieNotFound, "no inhibitor with cookie %d", cookie)
	}
	inh := r.inhibitors[idx]
	r.inhibitors = append(r.inhibitors[:idx], r.inhibitors[idx+1:]...)
	lastOfPeer := r.peerCount(inh.Peer) == 0
	changed := r.updateInhibitedLocked()
	inhibited := r.inhibited
	r.mu.Unlock()

	logger.Infof("uninhibit %s cookie %d", inh.AppName, cookie)
	if lastOfPeer && r.watcher != nil {
		r.watcher.Unwatch(inh.Peer)
	}
	r.notify(changed, inhibited)
	return nil
}

// RemovePeer drops every inhibitor held by peer.
func (r *InhibitRegistry) RemovePeer(peer string) {
	r.mu.Lock()
	kept := r.inhibitors[:0]
	removed := 0
	for _, inh := range r.inhibitors {
		if inh.Peer == peer {
			logger.Infof("peer %s vanished, drop inhibitor %s cookie %d",
				peer, inh.AppName, inh.Cookie)
			removed++
			continue
		}
		kept = append(kept, inh)
	}
	for i := len(kept); i < len(r.inhibitors); i++ {
		r.inhibitors[i] = nil
	}
	r.inhibitors = kept
	changed := r.updateInhibitedLocked()
	inhibited := r.inhibited
	r.mu.Unlock()

	if removed == 0 {
		return
	}
	if r.watcher != nil {
		r.watcher.Unwatch(peer)
	}
	r.notify(changed, inhibited)
}

func (r *InhibitRegistry) HasInhibit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inhibited
}

// List returns the application names in insertion order.
func (r *InhibitRegistry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]string, 0, len(r.inhibitors))
	for _, inh := range r.inhibitors {
		result = append(result, inh.AppName)
	}
	return result
}

func (r *InhibitRegistry) snapshot() []Inhibitor {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Inhibitor, 0, len(r.inhibitors))
	for _, inh := range r.inhibitors {
		result = append(result, *inh)
	}
	return result
}
