// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	. "github.com/linuxdeepin/go-lib/gettext"
	"golang.org/x/xerrors"
)

func checkSleepCaps(action PowerAction, caps SleepCaps) error {
	var can, auth bool
	switch action {
	case PowerActionSuspend:
		can, auth = caps.CanSuspend, caps.AuthSuspend
	case PowerActionHibernate:
		can, auth = caps.CanHibernate, caps.AuthHibernate
	default:
		return newError(ErrorCodeInvalidArguments, "%v is not a sleep action", action)
	}
	if !can {
		return newError(ErrorCodeNoHardwareSupport, "%v is not supported", action)
	}
	if !auth {
		return newError(ErrorCodePermissionDenied, "%v is not authorized", action)
	}
	return nil
}

// RequestSleep suspends or hibernates. Unless force is set an active
// inhibitor makes the user confirm first.
func (p *powerPolicy) RequestSleep(action PowerAction, force bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sleepLocked(action, force)
}

func sleepConfirmText(action PowerAction) (summary, body string) {
	if action == PowerActionHibernate {
		return Tr("An application is preventing the computer from hibernating"),
			Tr("Are you sure you want to hibernate the computer?")
	}
	return Tr("An application is preventing the computer from suspending"),
		Tr("Are you sure you want to suspend the computer?")
}

func (p *powerPolicy) sleepLocked(action PowerAction, force bool) error {
	if p.Sleeper == nil {
		return newError(ErrorCodeNoHardwareSupport, "no sleep backend")
	}
	err := checkSleepCaps(action, p.Sleeper.Caps())
	if err != nil {
		return err
	}
	if p.sleepBusy {
		logger.Infof("%v ignored, another sleep request is running", action)
		return nil
	}
	p.sleepBusy = true
	defer func() {
		p.sleepBusy = false
	}()

	if p.state.Inhibited && !force {
		summary, body := sleepConfirmText(action)
		if !p.confirmUnlocked(summary, body, iconSleep) {
			logger.Info("sleep declined by user")
			return nil
		}
		// the platform may have changed while the question was shown
		err = checkSleepCaps(action, p.Sleeper.Caps())
		if err != nil {
			return err
		}
	}

	var savedLevel int32
	hasLevel := false
	if p.Brightness.HasHardware() {
		savedLevel, err = p.Brightness.GetLevel()
		hasLevel = err == nil
	}

	networkSlept := false
	if p.cfg.NetworkManagerSleep && p.Network != nil {
		err = p.Network.Sleep(true)
		if err != nil {
			logger.Warning("network sleep:", err)
		} else {
			networkSlept = true
		}
	}
	wakeNetwork := func() {
		if !networkSlept {
			return
		}
		err := p.Network.Sleep(false)
		if err != nil {
			logger.Warning("network wake:", err)
		}
	}

	if p.cfg.LockScreenOnSleep && p.Locker != nil {
		if !p.Locker.Lock() && !force {
			ok := p.confirmUnlocked(Tr("Could not lock the screen"),
				Tr("Do you want to continue anyway?"), iconError)
			if !ok {
				wakeNetwork()
				return nil
			}
		}
	}

	logger.Infof("%v via %s", action, p.Sleeper.Name())
	if action == PowerActionHibernate {
		err = p.Sleeper.Hibernate()
	} else {
		err = p.Sleeper.Suspend()
	}
	var result error
	if err != nil {
		if isBenignSleepError(err) {
			logger.Debug("ignore sleep reply error:", err)
		} else {
			logger.Warning("sleep failed:", err)
			p.notify(0, Notification{
				Summary: Tr("Sleep failed"),
				Body:    err.Error(),
				Icon:    iconError,
				Urgency: UrgencyCritical,
			})
			result = &Error{Code: ErrorCodeSleepFailed, Msg: err.Error()}
		}
	}

	resume := func() {
		if hasLevel {
			err := p.Brightness.SetLevel(savedLevel)
			if err != nil {
				logger.Warning("restore brightness after sleep:", err)
			}
		}
		wakeNetwork()
	}
	if result == nil && sleepsAsync(p.Sleeper) {
		// the backend returns before the machine sleeps, HandleResume
		// finishes the job
		p.pendingResume = resume
		return nil
	}

	// resumed
	p.refreshLocked()
	resume()
	return result
}

// asyncSleeper is a backend whose calls return before the transition.
type asyncSleeper interface {
	Async() bool
}

func sleepsAsync(b SleepBackend) bool {
	ab, ok := b.(asyncSleeper)
	return ok && ab.Async()
}

func (p *powerPolicy) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdownLocked(false)
}

func (p *powerPolicy) Reboot() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdownLocked(true)
}

func (p *powerPolicy) shutdownLocked(reboot bool) error {
	if p.Sleeper == nil {
		return newError(ErrorCodeNoHardwareSupport, "no power backend")
	}
	caps := p.Sleeper.Caps()
	can, auth := caps.CanShutdown, caps.AuthShutdown
	name := "shutdown"
	if reboot {
		can, auth = caps.CanReboot, caps.AuthReboot
		name = "reboot"
	}
	if !can {
		return newError(ErrorCodeNoHardwareSupport, "%s is not supported", name)
	}
	if !auth {
		return newError(ErrorCodePermissionDenied, "%s is not authorized", name)
	}

	logger.Infof("%s via %s", name, p.Sleeper.Name())
	var err error
	if reboot {
		err = p.Sleeper.Reboot()
	} else {
		err = p.Sleeper.Shutdown()
	}
	if err == nil || isBenignSleepError(err) {
		return nil
	}
	p.notify(0, Notification{
		Summary: Tr("Shutdown failed"),
		Body:    err.Error(),
		Icon:    iconError,
		Urgency: UrgencyCritical,
	})
	return xerrors.Errorf("%s: %w", name, err)
}
