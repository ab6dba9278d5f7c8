// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"strings"
	"sync"

	dbus "github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"golang.org/x/xerrors"
)

const (
	upowerServiceName     = "org.freedesktop.UPower"
	upowerPath            = "/org/freedesktop/UPower"
	upowerInterface       = upowerServiceName
	upowerDeviceInterface = "org.freedesktop.UPower.Device"
	upowerDevicesPrefix   = "/org/freedesktop/UPower/devices/"

	dbusPropsInterface     = "org.freedesktop.DBus.Properties"
	memberPropsChanged     = "PropertiesChanged"
	memberDeviceAdded      = "DeviceAdded"
	memberDeviceRemoved    = "DeviceRemoved"
	signalPropsChangedName = dbusPropsInterface + "." + memberPropsChanged
)

// upowerSource reads power devices, the AC state and the lid from UPower
// and follows its signals.
type upowerSource struct {
	conn    *dbus.Conn
	sigLoop *dbusutil.SignalLoop

	mu      sync.Mutex
	devices map[dbus.ObjectPath]struct{}

	OnDeviceChanged  func(id string, props DeviceProps)
	OnDeviceRemoved  func(id string)
	OnBatteryChanged func(onBattery bool)
	OnLidChanged     func(present, closed bool)
}

func newUPowerSource(conn *dbus.Conn, sigLoop *dbusutil.SignalLoop) *upowerSource {
	return &upowerSource{
		conn:    conn,
		sigLoop: sigLoop,
		devices: make(map[dbus.ObjectPath]struct{}),
	}
}

func variantBool(props map[string]dbus.Variant, key string) (bool, bool) {
	v, ok := props[key]
	if !ok {
		return false, false
	}
	b, ok := v.Value().(bool)
	return b, ok
}

// devicePropsFromMap converts an org.freedesktop.UPower.Device property map.
func devicePropsFromMap(props map[string]dbus.Variant) DeviceProps {
	var dp DeviceProps
	if v, ok := props["Type"]; ok {
		kind, _ := v.Value().(uint32)
		dp.Kind = DeviceKind(kind)
	}
	if v, ok := props["Model"]; ok {
		dp.Model, _ = v.Value().(string)
	}
	dp.PowerSupply, _ = variantBool(props, "PowerSupply")
	dp.Present, _ = variantBool(props, "IsPresent")
	if v, ok := props["Percentage"]; ok {
		dp.Percentage, _ = v.Value().(float64)
	}
	if v, ok := props["State"]; ok {
		state, _ := v.Value().(uint32)
		dp.State = DeviceState(state)
	}
	if v, ok := props["TimeToEmpty"]; ok {
		dp.TimeToEmpty, _ = v.Value().(int64)
	}
	if v, ok := props["TimeToFull"]; ok {
		dp.TimeToFull, _ = v.Value().(int64)
	}
	return dp
}

func (s *upowerSource) getAll(path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error) {
	var props map[string]dbus.Variant
	err := s.conn.Object(upowerServiceName, path).
		Call(dbusPropsInterface+".GetAll", 0, iface).Store(&props)
	if err != nil {
		return nil, xerrors.Errorf("get properties of %s: %w", path, err)
	}
	return props, nil
}

func (s *upowerSource) readDevice(path dbus.ObjectPath) (DeviceProps, error) {
	props, err := s.getAll(path, upowerDeviceInterface)
	if err != nil {
		return DeviceProps{}, err
	}
	return devicePropsFromMap(props), nil
}

func (s *upowerSource) enumerate() ([]dbus.ObjectPath, error) {
	var paths []dbus.ObjectPath
	err := s.conn.Object(upowerServiceName, upowerPath).
		Call(upowerInterface+".EnumerateDevices", 0).Store(&paths)
	if err != nil {
		return nil, xerrors.Errorf("enumerate devices: %w", err)
	}
	return paths, nil
}

// Snapshot reads the whole platform state.
func (s *upowerSource) Snapshot() (*platformSnapshot, error) {
	daemonProps, err := s.getAll(upowerPath, upowerInterface)
	if err != nil {
		return nil, err
	}
	snapshot := &platformSnapshot{
		Devices: make(map[string]DeviceProps),
	}
	snapshot.OnBattery, _ = variantBool(daemonProps, "OnBattery")
	snapshot.LidPresent, _ = variantBool(daemonProps, "LidIsPresent")
	snapshot.LidClosed, _ = variantBool(daemonProps, "LidIsClosed")

	paths, err := s.enumerate()
	if err != nil {
		return nil, err
	}
	known := make(map[dbus.ObjectPath]struct{}, len(paths))
	for _, path := range paths {
		dp, err := s.readDevice(path)
		if err != nil {
			logger.Warning(err)
			continue
		}
		snapshot.Devices[string(path)] = dp
		known[path] = struct{}{}
	}
	s.mu.Lock()
	s.devices = known
	s.mu.Unlock()
	return snapshot, nil
}

func (s *upowerSource) addMatchRules() error {
	conn := s.sigLoop.Conn()
	err := dbusutil.NewMatchRuleBuilder().
		Type("signal").
		Sender(upowerServiceName).
		Interface(upowerInterface).Build().
		AddTo(conn)
	if err != nil {
		return err
	}
	return dbusutil.NewMatchRuleBuilder().
		Type("signal").
		Sender(upowerServiceName).
		Interface(dbusPropsInterface).
		Member(memberPropsChanged).Build().
		AddTo(conn)
}

// Start subscribes to UPower signals.
func (s *upowerSource) Start() error {
	err := s.addMatchRules()
	if err != nil {
		return err
	}
	s.sigLoop.AddHandler(&dbusutil.SignalRule{
		Name: upowerInterface + "." + memberDeviceAdded,
	}, func(sig *dbus.Signal) {
		path, ok := signalPath(sig)
		if ok {
			s.handleDeviceAdded(path)
		}
	})
	s.sigLoop.AddHandler(&dbusutil.SignalRule{
		Name: upowerInterface + "." + memberDeviceRemoved,
	}, func(sig *dbus.Signal) {
		path, ok := signalPath(sig)
		if ok {
			s.handleDeviceRemoved(path)
		}
	})
	s.sigLoop.AddHandler(&dbusutil.SignalRule{
		Name: signalPropsChangedName,
	}, s.handlePropertiesChanged)
	return nil
}

func signalPath(sig *dbus.Signal) (dbus.ObjectPath, bool) {
	if len(sig.Body) < 1 {
		return "", false
	}
	path, ok := sig.Body[0].(dbus.ObjectPath)
	return path, ok
}

func (s *upowerSource) handleDeviceAdded(path dbus.ObjectPath) {
	logger.Debug("upower device added:", path)
	s.mu.Lock()
	s.devices[path] = struct{}{}
	s.mu.Unlock()
	s.refreshDevice(path)
}

func (s *upowerSource) handleDeviceRemoved(path dbus.ObjectPath) {
	logger.Debug("upower device removed:", path)
	s.mu.Lock()
	_, ok := s.devices[path]
	delete(s.devices, path)
	s.mu.Unlock()
	if ok && s.OnDeviceRemoved != nil {
		s.OnDeviceRemoved(string(path))
	}
}

func (s *upowerSource) refreshDevice(path dbus.ObjectPath) {
	dp, err := s.readDevice(path)
	if err != nil {
		logger.Warning(err)
		return
	}
	if s.OnDeviceChanged != nil {
		s.OnDeviceChanged(string(path), dp)
	}
}

func (s *upowerSource) handlePropertiesChanged(sig *dbus.Signal) {
	if len(sig.Body) != 3 {
		return
	}
	iface, ok := sig.Body[0].(string)
	if !ok {
		return
	}
	switch {
	case iface == upowerDeviceInterface &&
		strings.HasPrefix(string(sig.Path), upowerDevicesPrefix):
		s.mu.Lock()
		_, known := s.devices[sig.Path]
		s.mu.Unlock()
		if known {
			// re-read the device, the signal only carries the changed part
			s.refreshDevice(sig.Path)
		}
	case iface == upowerInterface && sig.Path == upowerPath:
		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			return
		}
		s.handleDaemonPropsChanged(changed)
	}
}

func (s *upowerSource) handleDaemonPropsChanged(changed map[string]dbus.Variant) {
	if onBattery, ok := variantBool(changed, "OnBattery"); ok && s.OnBatteryChanged != nil {
		s.OnBatteryChanged(onBattery)
	}
	_, presentChanged := changed["LidIsPresent"]
	_, closedChanged := changed["LidIsClosed"]
	if !presentChanged && !closedChanged {
		return
	}
	props, err := s.getAll(upowerPath, upowerInterface)
	if err != nil {
		logger.Warning(err)
		return
	}
	present, _ := variantBool(props, "LidIsPresent")
	closed, _ := variantBool(props, "LidIsClosed")
	if s.OnLidChanged != nil {
		s.OnLidChanged(present, closed)
	}
}
