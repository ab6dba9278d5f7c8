// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"fmt"
	"strings"

	. "github.com/linuxdeepin/go-lib/gettext"
)

type Button int

const (
	ButtonUnknown Button = iota
	ButtonPower
	ButtonSleep
	ButtonHibernate
	ButtonBattery
	ButtonBrightnessUp
	ButtonBrightnessDown
	ButtonKbdBrightnessUp
	ButtonKbdBrightnessDown
)

var buttonNames = map[string]Button{
	"power":               ButtonPower,
	"poweroff":            ButtonPower,
	"sleep":               ButtonSleep,
	"suspend":             ButtonSleep,
	"hibernate":           ButtonHibernate,
	"battery":             ButtonBattery,
	"brightness-up":       ButtonBrightnessUp,
	"monbrightnessup":     ButtonBrightnessUp,
	"brightness-down":     ButtonBrightnessDown,
	"monbrightnessdown":   ButtonBrightnessDown,
	"kbd-brightness-up":   ButtonKbdBrightnessUp,
	"kbdbrightnessup":     ButtonKbdBrightnessUp,
	"kbd-brightness-down": ButtonKbdBrightnessDown,
	"kbdbrightnessdown":   ButtonKbdBrightnessDown,
}

func parseButton(name string) (Button, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "XF86"))
	key = strings.ReplaceAll(key, "_", "-")
	b, ok := buttonNames[key]
	if !ok {
		return ButtonUnknown, newError(ErrorCodeInvalidArguments, "unknown button %q", name)
	}
	return b, nil
}

func (b Button) String() string {
	switch b {
	case ButtonPower:
		return "power"
	case ButtonSleep:
		return "sleep"
	case ButtonHibernate:
		return "hibernate"
	case ButtonBattery:
		return "battery"
	case ButtonBrightnessUp:
		return "brightness-up"
	case ButtonBrightnessDown:
		return "brightness-down"
	case ButtonKbdBrightnessUp:
		return "kbd-brightness-up"
	case ButtonKbdBrightnessDown:
		return "kbd-brightness-down"
	}
	return "unknown"
}

func (p *powerPolicy) buttonActionLocked(b Button) PowerAction {
	switch b {
	case ButtonPower:
		return p.cfg.PowerButtonAction
	case ButtonSleep:
		return p.cfg.SleepButtonAction
	case ButtonHibernate:
		return p.cfg.HibernateButtonAction
	case ButtonBattery:
		return p.cfg.BatteryButtonAction
	}
	return PowerActionNothing
}

func (p *powerPolicy) HandleButton(b Button) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch b {
	case ButtonBrightnessUp, ButtonBrightnessDown:
		p.brightnessKeyLocked(b == ButtonBrightnessUp)
		return
	case ButtonKbdBrightnessUp, ButtonKbdBrightnessDown:
		p.kbdBrightnessKeyLocked(b == ButtonKbdBrightnessUp)
		return
	case ButtonUnknown:
		return
	}

	now := p.now()
	if !p.lastButtonTime.IsZero() && now.Sub(p.lastButtonTime) < sleepKeyDebounce {
		logger.Debug("ignore button", b, "within debounce")
		return
	}
	p.lastButtonTime = now

	action := p.buttonActionLocked(b)
	logger.Infof("button %v pressed, action %v", b, action)
	switch action {
	case PowerActionSuspend, PowerActionHibernate:
		err := p.sleepLocked(action, false)
		if err != nil {
			logger.Warning(err)
		}
	case PowerActionShutdown:
		err := p.shutdownLocked(false)
		if err != nil {
			logger.Warning(err)
		}
	case PowerActionAsk:
		p.askShutdownLocked()
	case PowerActionLockScreen:
		if p.Locker != nil {
			p.Locker.Lock()
		}
	}
}

func (p *powerPolicy) brightnessKeyLocked(up bool) {
	if !p.Brightness.HasHardware() {
		return
	}
	p.dim.onButton()

	var level int32
	var err error
	if p.cfg.HandleBrightnessKeys {
		p.Brightness.SetStepCount(int32(p.cfg.BrightnessStepCount), p.cfg.BrightnessExponential)
		if up {
			level, err = p.Brightness.StepUp()
		} else {
			level, err = p.Brightness.StepDown()
		}
	} else {
		level, err = p.Brightness.GetLevel()
	}
	if err != nil {
		logger.Warning("brightness key:", err)
		return
	}
	if !p.cfg.ShowBrightnessPopup {
		return
	}
	p.brightnessNotifyID = p.notify(p.brightnessNotifyID, Notification{
		Summary: fmt.Sprintf(Tr("Brightness: %.0f percent"), p.Brightness.Percent(level)),
		Icon:    iconBrightness,
		Urgency: UrgencyLow,
	})
}

func (p *powerPolicy) kbdBrightnessKeyLocked(up bool) {
	if p.Keyboard == nil {
		return
	}

	var level int32
	var err error
	if p.cfg.HandleBrightnessKeys {
		if up {
			level, err = p.Keyboard.StepUp()
		} else {
			level, err = p.Keyboard.StepDown()
		}
	} else {
		level, err = p.Keyboard.GetLevel()
	}
	if err != nil {
		logger.Warning("keyboard brightness key:", err)
		return
	}
	if !p.cfg.ShowBrightnessPopup {
		return
	}
	p.brightnessNotifyID = p.notify(p.brightnessNotifyID, Notification{
		Summary: fmt.Sprintf(Tr("Keyboard brightness: %.0f percent"), p.Keyboard.Percent(level)),
		Icon:    iconKbdBrightness,
		Urgency: UrgencyLow,
	})
}
