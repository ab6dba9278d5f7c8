// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"sync"

	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

type Manager struct {
	service        *dbusutil.Service
	sessionSigLoop *dbusutil.SignalLoop
	systemSigLoop  *dbusutil.SignalLoop
	helper         *Helper
	configFile     string
	submodules     []namedSubmodule

	policy      *powerPolicy
	inhibits    *InhibitRegistry
	peerWatcher *busPeerWatcher
	notifier    *busNotifier
	brightness  *BrightnessController
	idle        *IdleAlarmScheduler
	upower      *upowerSource
	poller      *batteryPoller

	sleepInhibitor *sleepInhibitor
	keysInhibitor  *logindInhibitor
	login1Watcher  *login1Watcher

	inhibitObj *fdoInhibit

	buttonsMu   sync.Mutex
	seenButtons map[Button]struct{}

	// serializes config read, save and apply
	configMu sync.Mutex

	// set by the daemon: quit stops the service loop, stopModules stops
	// the loader modules
	quit        func()
	stopModules func()

	PropsMu sync.RWMutex
	// running on battery power
	OnBattery bool
	// aggregate charge is Critical while on battery
	OnLowBattery     bool
	LidIsPresent     bool
	LidIsClosed      bool
	PresentationMode bool
	// at least one inhibitor is registered
	Inhibited     bool
	HasBrightness bool

	//nolint
	signals *struct {
		OnBatteryChanged struct {
			onBattery bool
		}
		LowBatteryChanged struct {
			lowBattery bool
		}
		HasInhibitChanged struct {
			hasInhibit bool
		}
		InhibitorsListChanged struct{}
		ConfigChanged         struct {
			key string
		}
	}
}

func newManager(service *dbusutil.Service) (*Manager, error) {
	systemBus, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	m := new(Manager)
	m.service = service
	sessionBus := service.Conn()
	m.sessionSigLoop = dbusutil.NewSignalLoop(sessionBus, 10)
	m.systemSigLoop = dbusutil.NewSignalLoop(systemBus, 10)
	m.configFile = defaultConfigFile()
	m.seenButtons = make(map[Button]struct{})

	helper, err := newHelper(systemBus, sessionBus)
	if err != nil {
		return nil, err
	}
	m.helper = helper
	m.inhibitObj = &fdoInhibit{manager: m}

	cfg, err := loadConfig(m.configFile)
	if err != nil {
		logger.Warning("load config:", err)
	}
	m.initComponents(cfg)
	return m, nil
}

// initComponents builds everything the exported methods use.
func (m *Manager) initComponents(cfg *Config) {
	h := m.helper
	m.peerWatcher = newBusPeerWatcher(h.SessionDBusDaemon, m.sessionSigLoop)
	m.inhibits = NewInhibitRegistry(m.peerWatcher)
	m.peerWatcher.OnDisconnect = m.inhibits.RemovePeer

	m.notifier = newBusNotifier(h.Notifications, m.sessionSigLoop)
	m.brightness = NewBrightnessController(brightnessBackends(h.sysBus)...)
	m.idle = NewIdleAlarmScheduler()

	deps := policyDeps{
		Inhibits:   m.inhibits,
		Brightness: m.brightness,
		Idle:       m.idle,
		Notifier:   m.notifier,
		Sleeper:    chooseSleepBackend(h.sysBus, h.LoginManager),
		Locker:     newSessionLocker(h.SessionManager, h.ScreenSaver),
		Network:    &networkSleeper{nm: h.NetworkManager},
		Prompter: &sessionPrompter{
			sessionBus:     h.sessionBus,
			sessionManager: h.SessionManager,
		},
	}
	if h.xConn != nil {
		deps.Display = newXDisplayPower(h.xConn, h.ScreenSaver)
	} else if useWayland() {
		deps.Display = newKWinDisplayPower(h.sessionBus, h.ScreenSaver)
	}

	if systemBusHasName(h.sysBus, upowerServiceName) {
		m.upower = newUPowerSource(h.sysBus, m.systemSigLoop)
		deps.Snapshot = m.upower.Snapshot
		deps.Keyboard = NewKbdBacklightStepper(newUPowerKbdBacklight(h.sysBus))
	} else {
		logger.Info("UPower is not running, poll batteries")
		m.poller = newBatteryPoller()
		deps.Snapshot = m.poller.Snapshot
	}

	m.policy = newPowerPolicy(cfg, deps)
	m.policy.events = policyEvents{
		OnBatteryChanged: func(onBattery bool) {
			m.setPropOnBattery(onBattery)
			m.emitSignal("OnBatteryChanged", onBattery)
		},
		LowBatteryChanged: func(low bool) {
			m.setPropOnLowBattery(low)
			m.emitSignal("LowBatteryChanged", low)
		},
		LidChanged: func(present, closed bool) {
			m.setPropLidIsPresent(present)
			m.setPropLidIsClosed(closed)
		},
		PresentationModeChanged: m.setPropPresentationMode,
		LogindHandleFlagsChanged: func(cfg *Config) {
			if m.keysInhibitor != nil {
				m.keysInhibitor.setWhat(handleKeysWhat(cfg))
			}
		},
	}

	m.inhibits.OnInhibitedChanged = func(inhibited bool) {
		m.policy.SetInhibited(inhibited)
		m.setPropInhibited(inhibited)
		m.emitSignal("HasInhibitChanged", inhibited)
		m.inhibitObj.emitHasInhibitChanged(inhibited)
	}
	m.inhibits.OnListChanged = func() {
		m.emitSignal("InhibitorsListChanged")
	}

	m.idle.OnAlarm = m.policy.HandleIdleAlarm
	m.idle.OnReset = m.policy.HandleIdleReset
}

func (m *Manager) init() {
	m.sessionSigLoop.Start()
	m.systemSigLoop.Start()

	if systemBusHasName(m.helper.sysBus, login1ServiceName) {
		m.initLogind(m.policy.Config())
	}

	m.initSubmodules()
	m.startSubmodules()

	var snapshot *platformSnapshot
	var err error
	if m.policy.Snapshot != nil {
		snapshot, err = m.policy.Snapshot()
		if err != nil {
			logger.Warning("read platform state:", err)
		}
	}
	m.setPropHasBrightness(m.brightness.HasHardware())
	m.policy.start(snapshot)

	if m.upower != nil {
		m.upower.OnBatteryChanged = m.policy.SetOnBattery
		m.upower.OnDeviceChanged = m.policy.UpdateDevice
		m.upower.OnDeviceRemoved = m.policy.RemoveDevice
		err = m.upower.Start()
		if err != nil {
			logger.Warning("listen UPower signals:", err)
		}
	} else {
		m.poller.Start(m.policy.Refresh)
	}
	logger.Info("power manager started")
}

func (m *Manager) initLogind(cfg *Config) {
	h := m.helper
	h.LoginManager.InitSignalExt(m.systemSigLoop, true)

	m.sleepInhibitor = newSleepInhibitor(h.LoginManager)
	m.sleepInhibitor.OnBeforeSleep = m.policy.PrepareForSleep
	m.sleepInhibitor.OnWakeup = m.policy.HandleResume
	m.sleepInhibitor.acquire()

	m.keysInhibitor = newHandleKeysInhibitor(h.LoginManager, cfg)
	m.keysInhibitor.acquire()

	m.login1Watcher = newLogin1Watcher(h.SysDBusDaemon, m.systemSigLoop,
		m.sleepInhibitor.logindInhibitor, m.keysInhibitor)
}

// applyConfig switches the engine to cfg and announces every changed key.
func (m *Manager) applyConfig(cfg *Config) {
	if m.policy == nil {
		return
	}
	changed := m.policy.ApplyConfig(cfg)
	for _, key := range changed {
		m.emitSignal("ConfigChanged", key)
	}
}

// noteButton remembers that the session delivers this button.
func (m *Manager) noteButton(b Button) {
	m.buttonsMu.Lock()
	m.seenButtons[b] = struct{}{}
	m.buttonsMu.Unlock()
}

func (m *Manager) hasButton(b Button) bool {
	m.buttonsMu.Lock()
	defer m.buttonsMu.Unlock()
	_, ok := m.seenButtons[b]
	return ok
}

func (m *Manager) emitSignal(name string, args ...interface{}) {
	if m.service == nil {
		return
	}
	err := m.service.Emit(m, name, args...)
	if err != nil {
		logger.Warning(err)
	}
}

func (m *Manager) destroy() {
	m.destroySubmodules()

	if m.upower != nil {
		m.upower.OnBatteryChanged = nil
		m.upower.OnDeviceChanged = nil
		m.upower.OnDeviceRemoved = nil
	}
	if m.poller != nil {
		m.poller.Stop()
	}
	if m.idle != nil {
		m.idle.Stop()
	}
	if m.login1Watcher != nil {
		m.login1Watcher.destroy()
		m.login1Watcher = nil
	}
	if m.sleepInhibitor != nil {
		m.sleepInhibitor.destroy()
		m.sleepInhibitor = nil
	}
	if m.keysInhibitor != nil {
		m.keysInhibitor.release()
		m.keysInhibitor = nil
	}
	if m.notifier != nil {
		m.notifier.destroy()
	}
	if m.peerWatcher != nil {
		m.peerWatcher.destroy()
	}

	if m.helper != nil {
		m.helper.Destroy()
		m.helper = nil
	}

	m.systemSigLoop.Stop()
	m.sessionSigLoop.Stop()
}

func (*Manager) GetInterfaceName() string {
	return dbusInterface
}
