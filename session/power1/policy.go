// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/linuxdeepin/dde-api/soundutils"
	. "github.com/linuxdeepin/go-lib/gettext"
)

type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

type NotifyAction struct {
	Key   string
	Label string
	Fn    func()
}

type Notification struct {
	Summary string
	Body    string
	Icon    string
	Urgency Urgency
	Actions []NotifyAction
}

// Notifier shows desktop notifications. Confirm blocks until the user
// answers and reports a yes.
type Notifier interface {
	Show(replacesID uint32, n Notification) uint32
	Close(id uint32)
	Confirm(summary, body, icon string) bool
}

type SleepCaps struct {
	CanSuspend    bool
	CanHibernate  bool
	CanShutdown   bool
	CanReboot     bool
	AuthSuspend   bool
	AuthHibernate bool
	AuthShutdown  bool
	AuthReboot    bool
}

type SleepBackend interface {
	Name() string
	Caps() SleepCaps
	Suspend() error
	Hibernate() error
	Shutdown() error
	Reboot() error
}

type ScreenLocker interface {
	Lock() bool
	Inhibit(inhibit bool)
}

type DisplayPower interface {
	ForceLevel(on bool) error
	SetTimeouts(standby, suspend, off uint16) error
	// Inhibit disables DPMS while true
	Inhibit(inhibit bool) error
	SetBlankTime(seconds uint32) error
	MultiHead() bool
}

type NetworkSleeper interface {
	Sleep(sleep bool) error
}

// SessionPrompter asks the session to show the shutdown dialog.
type SessionPrompter interface {
	AskShutdown() error
}

// platformSnapshot is re-read from the platform after resume.
type platformSnapshot struct {
	OnBattery  bool
	LidPresent bool
	LidClosed  bool
	Devices    map[string]DeviceProps
}

type SystemPowerState struct {
	OnBattery          bool
	OnLowBattery       bool
	OverallCharge      ChargeLevel
	LidPresent         bool
	LidClosed          bool
	PresentationMode   bool
	Inhibited          bool
	CriticalActionDone bool
}

type policyEvents struct {
	OnBatteryChanged         func(onBattery bool)
	LowBatteryChanged        func(lowBattery bool)
	LidChanged               func(present, closed bool)
	PresentationModeChanged  func(on bool)
	LogindHandleFlagsChanged func(cfg *Config)
}

// policyDeps are the collaborators of the engine. Nil members disable the
// matching feature.
type policyDeps struct {
	Inhibits   *InhibitRegistry
	Brightness *BrightnessController
	Keyboard   *KbdBacklightStepper
	Idle       *IdleAlarmScheduler
	Notifier   Notifier
	Sleeper    SleepBackend
	Locker     ScreenLocker
	Display    DisplayPower
	Network    NetworkSleeper
	Prompter   SessionPrompter
	Snapshot   func() (*platformSnapshot, error)
	PlaySound  func(name string)
}

// powerPolicy is the decision engine. Every entry point takes mu, so one
// event is fully handled before the next one starts. The only exception is
// a sleep confirmation, which releases mu while the user decides.
type powerPolicy struct {
	mu      sync.Mutex
	cfg     *Config
	state   SystemPowerState
	devices map[string]*deviceTracker
	dim     *backlightDimPolicy
	policyDeps
	events policyEvents

	now            func() time.Time
	lastButtonTime time.Time
	pendingResume  func()
	// a sleep request is between its checks and the backend call
	sleepBusy bool

	criticalNotifyID   uint32
	brightnessNotifyID uint32
	powerNotifyID      uint32
	batteryNotifyID    uint32
}

func newPowerPolicy(cfg *Config, deps policyDeps) *powerPolicy {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if deps.Brightness == nil {
		deps.Brightness = NewBrightnessController()
	}
	if deps.Idle == nil {
		deps.Idle = NewIdleAlarmScheduler()
	}
	if deps.Inhibits == nil {
		deps.Inhibits = NewInhibitRegistry(nil)
	}
	if deps.PlaySound == nil {
		deps.PlaySound = playSound
	}
	return &powerPolicy{
		cfg:        cfg,
		devices:    make(map[string]*deviceTracker),
		dim:        newBacklightDimPolicy(deps.Brightness),
		policyDeps: deps,
		now:        time.Now,
	}
}

// start applies the first platform snapshot and the config.
func (p *powerPolicy) start(snapshot *platformSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Inhibited = p.Inhibits.HasInhibit()
	if snapshot != nil {
		p.applySnapshotLocked(snapshot)
	}
	p.setupBrightnessLocked()
	p.setupAlarmsLocked()
	p.setPresentationModeLocked(p.cfg.PresentationMode)
	p.updateDisplayPowerLocked()
}

func (p *powerPolicy) setupBrightnessLocked() {
	if !p.Brightness.HasHardware() {
		return
	}
	p.Brightness.SetMinLevel(p.cfg.BrightnessSliderMinLevel)
	p.Brightness.SetStepCount(int32(p.cfg.BrightnessStepCount), p.cfg.BrightnessExponential)
}

func (p *powerPolicy) setupAlarmsLocked() {
	setMinutes := func(id AlarmID, minutes uint32) {
		if minutes == inactivityNever {
			p.Idle.Remove(id)
			return
		}
		p.Idle.Set(id, time.Duration(minutes)*time.Minute)
	}
	setSeconds := func(id AlarmID, seconds uint32) {
		if seconds == brightnessDimNever {
			p.Idle.Remove(id)
			return
		}
		p.Idle.Set(id, time.Duration(seconds)*time.Second)
	}
	setMinutes(AlarmInactivityOnAC, p.cfg.InactivityOnAC)
	setMinutes(AlarmInactivityOnBattery, p.cfg.InactivityOnBattery)
	setSeconds(AlarmDimOnAC, p.cfg.BrightnessOnAC)
	setSeconds(AlarmDimOnBattery, p.cfg.BrightnessOnBattery)
}

func (p *powerPolicy) notify(replacesID uint32, n Notification) uint32 {
	if p.Notifier == nil {
		return 0
	}
	return p.Notifier.Show(replacesID, n)
}

// confirmUnlocked asks the user with mu released. The answer comes in on
// the session signal loop, behind inhibitor and peer events that take mu.
// Callers must re-check any state they read before.
func (p *powerPolicy) confirmUnlocked(summary, body, icon string) bool {
	if p.Notifier == nil {
		return false
	}
	p.mu.Unlock()
	defer p.mu.Lock()
	return p.Notifier.Confirm(summary, body, icon)
}

func (p *powerPolicy) caps() SleepCaps {
	if p.Sleeper == nil {
		return SleepCaps{}
	}
	return p.Sleeper.Caps()
}

// aggregateLocked returns the most severe level among present power
// supplies.
func (p *powerPolicy) aggregateLocked() ChargeLevel {
	result := ChargeLevelUnknown
	for _, t := range p.devices {
		if !t.counts() {
			continue
		}
		if t.Charge.severity() > result.severity() {
			result = t.Charge
		}
	}
	return result
}

func (p *powerPolicy) UpdateDevice(id string, props DeviceProps) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateDeviceLocked(id, props)
}

func (p *powerPolicy) updateDeviceLocked(id string, props DeviceProps) {
	t, ok := p.devices[id]
	if !ok {
		t = newDeviceTracker(id)
		p.devices[id] = t
		logger.Infof("device added %s kind %v", id, props.Kind)
	}
	stateChanged, chargeChanged := t.refresh(props, p.cfg.CriticalPowerLevel)
	if stateChanged {
		logger.Debugf("device %s state %v", id, t.State)
		p.notifyDeviceStateLocked(t)
	}
	if chargeChanged {
		logger.Debugf("device %s charge %v at %.1f%%", id, t.Charge, t.Percentage)
		p.chargeChangedLocked(&t.Device)
	}
}

func (p *powerPolicy) RemoveDevice(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeDeviceLocked(id)
}

func (p *powerPolicy) removeDeviceLocked(id string) {
	t, ok := p.devices[id]
	if !ok {
		return
	}
	delete(p.devices, id)
	logger.Info("device removed", id)
	dev := t.Device
	dev.Present = false
	p.chargeChangedLocked(&dev)
}

func (p *powerPolicy) notifyDeviceStateLocked(t *deviceTracker) {
	if !p.cfg.GeneralNotification || !t.Present {
		return
	}
	summary, body, icon, ok := t.stateMessage()
	if !ok {
		return
	}
	p.batteryNotifyID = p.notify(p.batteryNotifyID, Notification{
		Summary: summary,
		Body:    body,
		Icon:    icon,
		Urgency: UrgencyNormal,
	})
}

// chargeChangedLocked recomputes the overall charge after dev changed.
func (p *powerPolicy) chargeChangedLocked(dev *Device) {
	current := p.aggregateLocked()
	if current == p.state.OverallCharge {
		return
	}
	if current >= ChargeLevelLow {
		p.state.CriticalActionDone = false
	}
	logger.Infof("overall charge %v -> %v", p.state.OverallCharge, current)
	p.state.OverallCharge = current

	if current == ChargeLevelCritical && p.state.OnBattery {
		p.handleCriticalLocked()
		p.setLowBatteryLocked(true)
		return
	}

	p.setLowBatteryLocked(false)

	// a charging machine gets no low warnings
	if p.state.OnBattery && p.cfg.GeneralNotification {
		if current == ChargeLevelLow {
			p.PlaySound(soundutils.EventBatteryLow)
			p.batteryNotifyID = p.notify(p.batteryNotifyID, Notification{
				Summary: Tr("System is running on low power"),
				Icon:    iconBatteryLow,
				Urgency: UrgencyNormal,
			})
		} else if dev.Charge == ChargeLevelLow && dev.Present {
			summary, body := dev.lowMessage()
			p.batteryNotifyID = p.notify(p.batteryNotifyID, Notification{
				Summary: summary,
				Body:    body,
				Icon:    iconBatteryLow,
				Urgency: UrgencyNormal,
			})
		}
	}
	p.closeCriticalPromptLocked()
}

func (p *powerPolicy) setLowBatteryLocked(low bool) {
	if p.state.OnLowBattery == low {
		return
	}
	p.state.OnLowBattery = low
	if p.events.LowBatteryChanged != nil {
		p.events.LowBatteryChanged(low)
	}
}

// handleCriticalLocked runs the configured critical action once per
// excursion and shows the prompt otherwise.
func (p *powerPolicy) handleCriticalLocked() {
	p.PlaySound(soundutils.EventBatteryLow)
	action := p.cfg.CriticalPowerAction
	if action == PowerActionNothing {
		p.showCriticalPromptLocked()
		return
	}
	if p.state.CriticalActionDone {
		p.showCriticalPromptLocked()
		return
	}
	p.state.CriticalActionDone = true
	logger.Info("critical battery, run action", action)
	p.processCriticalActionLocked(action)
}

func (p *powerPolicy) processCriticalActionLocked(action PowerAction) {
	switch action {
	case PowerActionAsk:
		p.askShutdownLocked()
	case PowerActionSuspend, PowerActionHibernate:
		err := p.sleepLocked(action, true)
		if err != nil {
			logger.Warning(err)
		}
	case PowerActionShutdown:
		err := p.shutdownLocked(false)
		if err != nil {
			logger.Warning(err)
		}
	}
}

func (p *powerPolicy) askShutdownLocked() {
	if p.Prompter == nil {
		logger.Warning("no session prompter for shutdown")
		return
	}
	err := p.Prompter.AskShutdown()
	if err != nil {
		logger.Warning("ask shutdown:", err)
	}
}

func (p *powerPolicy) criticalBatteryDevice() *Device {
	var ids []string
	for id, t := range p.devices {
		if t.counts() && t.Charge == ChargeLevelCritical {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Strings(ids)
	return &p.devices[ids[0]].Device
}

func (p *powerPolicy) showCriticalPromptLocked() {
	caps := p.caps()
	var actions []NotifyAction
	if caps.CanHibernate && caps.AuthHibernate {
		actions = append(actions, NotifyAction{
			Key:   "hibernate",
			Label: Tr("Hibernate"),
			Fn:    func() { p.runPromptSleep(PowerActionHibernate) },
		})
	}
	if caps.CanSuspend && caps.AuthSuspend {
		actions = append(actions, NotifyAction{
			Key:   "suspend",
			Label: Tr("Suspend"),
			Fn:    func() { p.runPromptSleep(PowerActionSuspend) },
		})
	}
	if caps.CanShutdown && caps.AuthShutdown {
		actions = append(actions, NotifyAction{
			Key:   "shutdown",
			Label: Tr("Shut down"),
			Fn: func() {
				err := p.Shutdown()
				if err != nil {
					logger.Warning(err)
				}
			},
		})
	}

	body := Tr("Please plug in the power adapter or save your work")
	if dev := p.criticalBatteryDevice(); dev != nil && dev.TimeToEmpty > 0 {
		body = fmt.Sprintf(Tr("Estimated time left %s"), formatTimeLeft(dev.TimeToEmpty)) +
			"\n" + body
	}
	p.criticalNotifyID = p.notify(p.criticalNotifyID, Notification{
		Summary: Tr("Battery critically low"),
		Body:    body,
		Icon:    iconBatteryCritical,
		Urgency: UrgencyCritical,
		Actions: actions,
	})
}

func (p *powerPolicy) runPromptSleep(action PowerAction) {
	err := p.RequestSleep(action, true)
	if err != nil {
		logger.Warning(err)
	}
}

func (p *powerPolicy) closeCriticalPromptLocked() {
	if p.criticalNotifyID == 0 || p.Notifier == nil {
		return
	}
	p.Notifier.Close(p.criticalNotifyID)
	p.criticalNotifyID = 0
}

func (p *powerPolicy) SetOnBattery(onBattery bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setOnBatteryLocked(onBattery, true)
}

func (p *powerPolicy) setOnBatteryLocked(onBattery bool, announce bool) {
	if p.state.OnBattery == onBattery {
		return
	}
	logger.Info("on battery:", onBattery)
	p.state.OnBattery = onBattery

	// alarms restart before the display settings follow the new source
	p.Idle.Rearm()
	p.dim.onReset()

	if !onBattery {
		p.closeCriticalPromptLocked()
	}
	if announce {
		if onBattery {
			p.PlaySound(soundutils.EventPowerUnplug)
		} else {
			p.PlaySound(soundutils.EventPowerPlug)
		}
		if p.cfg.GeneralNotification {
			summary := Tr("System is running on AC power")
			if onBattery {
				summary = Tr("System is running on battery power")
			}
			p.powerNotifyID = p.notify(p.powerNotifyID, Notification{
				Summary: summary,
				Icon:    iconACAdapter,
				Urgency: UrgencyLow,
			})
		}
	}
	p.updateDisplayPowerLocked()

	if p.events.OnBatteryChanged != nil {
		p.events.OnBatteryChanged(onBattery)
	}
}

func (p *powerPolicy) lidActionLocked() PowerAction {
	if p.state.OnBattery {
		return p.cfg.LidActionOnBattery
	}
	return p.cfg.LidActionOnAC
}

func (p *powerPolicy) SetLid(present, closed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setLidLocked(present, closed, true)
}

func (p *powerPolicy) setLidLocked(present, closed bool, act bool) {
	if p.state.LidPresent == present && p.state.LidClosed == closed {
		return
	}
	closedChanged := p.state.LidClosed != closed
	p.state.LidPresent = present
	p.state.LidClosed = closed
	if p.events.LidChanged != nil {
		p.events.LidChanged(present, closed)
	}
	if !closedChanged || !act {
		return
	}

	if !closed {
		logger.Info("lid opened")
		p.forceDisplayLocked(true)
		return
	}

	logger.Info("lid closed")
	if p.cfg.LogindHandleLidSwitch {
		logger.Debug("lid switch handled by logind")
		return
	}
	action := p.lidActionLocked()
	multiHead := p.Display != nil && p.Display.MultiHead()
	switch action {
	case PowerActionNothing:
		if !multiHead {
			p.forceDisplayLocked(false)
		}
	case PowerActionLockScreen:
		if !multiHead && p.Locker != nil {
			p.Locker.Lock()
		}
	default:
		err := p.sleepLocked(action, true)
		if err != nil {
			logger.Warning(err)
		}
	}
}

func (p *powerPolicy) forceDisplayLocked(on bool) {
	if p.Display == nil {
		return
	}
	err := p.Display.ForceLevel(on)
	if err != nil {
		logger.Warning("force dpms level:", err)
	}
}

func (p *powerPolicy) HandleIdleAlarm(id AlarmID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	onBattery := p.state.OnBattery
	percent := p.cfg.BrightnessLevelOnAC
	if onBattery {
		percent = p.cfg.BrightnessLevelOnBattery
	}
	p.dim.onAlarm(id, onBattery, p.state.PresentationMode, percent)

	if id != inactivityAlarmFor(onBattery) {
		return
	}
	if p.state.PresentationMode || p.state.Inhibited {
		logger.Debug("skip inactivity action, presentation mode or inhibited")
		return
	}
	action := p.cfg.InactivitySleepModeOnAC
	if onBattery {
		action = p.cfg.InactivitySleepModeOnBattery
	}
	logger.Info("inactivity timeout, run", action)
	err := p.sleepLocked(action, false)
	if err != nil {
		logger.Warning(err)
	}
}

func (p *powerPolicy) HandleIdleReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dim.onReset()
}

func (p *powerPolicy) SetInhibited(inhibited bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Inhibited == inhibited {
		return
	}
	p.state.Inhibited = inhibited
	if !p.state.PresentationMode && p.Locker != nil {
		p.Locker.Inhibit(inhibited)
	}
}

func (p *powerPolicy) setPresentationModeLocked(on bool) {
	if p.state.PresentationMode == on {
		return
	}
	logger.Info("presentation mode:", on)
	p.state.PresentationMode = on
	if on {
		if p.Locker != nil {
			p.Locker.Inhibit(true)
		}
	} else {
		if p.Locker != nil && !p.state.Inhibited {
			p.Locker.Inhibit(false)
		}
		p.Idle.Rearm()
		p.dim.onReset()
	}
	p.updateDisplayPowerLocked()
	if p.events.PresentationModeChanged != nil {
		p.events.PresentationModeChanged(on)
	}
}

func (p *powerPolicy) updateDisplayPowerLocked() {
	if p.Display == nil {
		return
	}
	if !p.cfg.DPMSEnabled || p.state.PresentationMode {
		err := p.Display.Inhibit(true)
		if err != nil {
			logger.Warning("disable dpms:", err)
		}
	} else {
		err := p.Display.Inhibit(false)
		if err != nil {
			logger.Warning("enable dpms:", err)
		}
		sleep, off := p.cfg.DPMSOnACSleep, p.cfg.DPMSOnACOff
		if p.state.OnBattery {
			sleep, off = p.cfg.DPMSOnBatterySleep, p.cfg.DPMSOnBatteryOff
		}
		sleepSec, offSec := uint16(sleep*60), uint16(off*60)
		if p.cfg.DPMSSleepMode == dpmsSleepModeStandby {
			err = p.Display.SetTimeouts(sleepSec, 0, offSec)
		} else {
			err = p.Display.SetTimeouts(0, sleepSec, offSec)
		}
		if err != nil {
			logger.Warning("set dpms timeouts:", err)
		}
	}

	var blank uint32
	if !p.state.PresentationMode {
		blank = p.cfg.BlankOnAC
		if p.state.OnBattery {
			blank = p.cfg.BlankOnBattery
		}
		blank *= 60
	}
	err := p.Display.SetBlankTime(blank)
	if err != nil {
		logger.Warning("set blank time:", err)
	}
}

// ApplyConfig switches to cfg and runs the handlers of the changed keys.
func (p *powerPolicy) ApplyConfig(cfg *Config) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg = cfg.clone()
	cfg.Normalize()
	changed := Diff(p.cfg, cfg)
	if len(changed) == 0 {
		return nil
	}
	p.cfg = cfg
	logger.Info("config changed:", changed)

	var alarms, display, brightness, logind bool
	for _, key := range changed {
		switch key {
		case "critical-power-level":
			p.reclassifyLocked()
		case "inactivity-on-ac", "inactivity-on-battery",
			"brightness-on-ac", "brightness-on-battery":
			alarms = true
		case "brightness-slider-min-level", "brightness-step-count",
			"brightness-exponential":
			brightness = true
		case "dpms-enabled", "dpms-on-ac-sleep", "dpms-on-ac-off",
			"dpms-on-battery-sleep", "dpms-on-battery-off", "dpms-sleep-mode",
			"blank-on-ac", "blank-on-battery":
			display = true
		case "presentation-mode":
			p.setPresentationModeLocked(cfg.PresentationMode)
		case "logind-handle-power-key", "logind-handle-suspend-key",
			"logind-handle-hibernate-key", "logind-handle-lid-switch":
			logind = true
		}
	}
	if alarms {
		p.setupAlarmsLocked()
	}
	if brightness {
		p.setupBrightnessLocked()
	}
	if display {
		p.updateDisplayPowerLocked()
	}
	if logind && p.events.LogindHandleFlagsChanged != nil {
		p.events.LogindHandleFlagsChanged(cfg.clone())
	}
	return changed
}

func (p *powerPolicy) reclassifyLocked() {
	ids := make([]string, 0, len(p.devices))
	for id := range p.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := p.devices[id]
		if t.reclassify(p.cfg.CriticalPowerLevel) {
			p.chargeChangedLocked(&t.Device)
		}
	}
}

func (p *powerPolicy) applySnapshotLocked(s *platformSnapshot) {
	p.setOnBatteryLocked(s.OnBattery, false)
	for id := range p.devices {
		if _, ok := s.Devices[id]; !ok {
			p.removeDeviceLocked(id)
		}
	}
	ids := make([]string, 0, len(s.Devices))
	for id := range s.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p.updateDeviceLocked(id, s.Devices[id])
	}
	p.setLidLocked(s.LidPresent, s.LidClosed, false)
}

// Refresh re-reads the platform state, used after resume.
func (p *powerPolicy) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshLocked()
}

func (p *powerPolicy) refreshLocked() {
	if p.Snapshot == nil {
		return
	}
	s, err := p.Snapshot()
	if err != nil {
		logger.Warning("refresh platform state:", err)
		return
	}
	p.applySnapshotLocked(s)
}

// PrepareForSleep locks the screen before a sleep the daemon did not
// start itself, such as one logind runs for the lid.
func (p *powerPolicy) PrepareForSleep() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pendingResume != nil {
		// our own sleep, already locked
		return
	}
	if p.cfg.LockScreenOnSleep && p.Locker != nil {
		p.Locker.Lock()
	}
}

// HandleResume re-reads the platform and restarts the idle period.
func (p *powerPolicy) HandleResume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	logger.Info("resumed")
	p.PlaySound(soundutils.EventWakeup)
	p.refreshLocked()
	if p.pendingResume != nil {
		p.pendingResume()
		p.pendingResume = nil
	}
	p.Idle.Rearm()
	p.dim.onReset()
	p.forceDisplayLocked(true)
}

func (p *powerPolicy) State() SystemPowerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *powerPolicy) Config() *Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.clone()
}

func (p *powerPolicy) Devices() []Device {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]Device, 0, len(p.devices))
	for _, t := range p.devices {
		result = append(result, t.Device)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

func (p *powerPolicy) hasBattery() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.devices {
		if t.Present && t.Kind.isPowerSource() {
			return true
		}
	}
	return false
}
