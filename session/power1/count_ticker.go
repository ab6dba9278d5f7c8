// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"sync"
	"time"
)

// countTicker calls action right away with 0 and then once per interval
// with the tick count, until Stop.
type countTicker struct {
	action   func(count int)
	interval time.Duration

	mu     sync.Mutex
	ticker *time.Ticker
	exit   chan struct{}
}

func newCountTicker(interval time.Duration, action func(int)) *countTicker {
	t := &countTicker{
		interval: interval,
		action:   action,
	}
	t.Reset()
	return t
}

func (t *countTicker) Reset() {
	t.Stop()

	t.mu.Lock()
	ticker := time.NewTicker(t.interval)
	exit := make(chan struct{})
	t.ticker = ticker
	t.exit = exit
	t.mu.Unlock()

	t.action(0)
	go func() {
		count := 0
		for {
			select {
			case <-ticker.C:
				count++
				t.action(count)
			case <-exit:
				return
			}
		}
	}()
}

func (t *countTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
	if t.exit != nil {
		close(t.exit)
		t.exit = nil
	}
}
