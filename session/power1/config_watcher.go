// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const configReloadDelay = 200 * time.Millisecond

func init() {
	submoduleList = append(submoduleList, newConfigWatcher)
}

// ConfigWatcher reloads the config file when it changes on disk. The
// directory is watched because editors replace the file.
type ConfigWatcher struct {
	manager  *Manager
	filename string
	watcher  *fsnotify.Watcher
	done     chan struct{}

	mu   sync.Mutex
	task *delayedTask
}

func newConfigWatcher(m *Manager) (string, submodule, error) {
	w := &ConfigWatcher{
		manager:  m,
		filename: m.configFile,
		done:     make(chan struct{}),
	}
	return "ConfigWatcher", w, nil
}

func (w *ConfigWatcher) Start() error {
	if w.filename == "" {
		return nil
	}
	dir := filepath.Dir(w.filename)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	err = w.watcher.Add(dir)
	if err != nil {
		w.watcher.Close()
		w.watcher = nil
		return err
	}
	logger.Debugf("watch config dir %q", dir)
	go w.handleFileEvents(w.watcher)
	return nil
}

func (w *ConfigWatcher) handleFileEvents(watcher *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.filename) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug("config file event:", ev)
			w.scheduleReload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warning("config watcher error:", err)
		case <-w.done:
			return
		}
	}
}

func (w *ConfigWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.task != nil {
		w.task.Cancel()
	}
	w.task = newDelayedTask("config-reload", configReloadDelay, w.reload)
}

func (w *ConfigWatcher) reload() {
	w.manager.configMu.Lock()
	defer w.manager.configMu.Unlock()

	cfg, err := loadConfig(w.filename)
	if err != nil {
		logger.Warning("reload config:", err)
		return
	}
	w.manager.applyConfig(cfg)
}

func (w *ConfigWatcher) Destroy() {
	w.mu.Lock()
	if w.task != nil {
		w.task.Cancel()
		w.task = nil
	}
	w.mu.Unlock()
	if w.watcher == nil {
		return
	}
	close(w.done)
	err := w.watcher.Close()
	if err != nil {
		logger.Warning(err)
	}
	w.watcher = nil
}
