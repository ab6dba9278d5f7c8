// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"golang.org/x/xerrors"
)

type ErrorCode uint32

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePermissionDenied
	ErrorCodeNoHardwareSupport
	ErrorCodeCookieNotFound
	ErrorCodeInvalidArguments
	ErrorCodeSleepFailed
)

var errorCodeNames = [...]string{
	ErrorCodeUnknown:           "Unknown",
	ErrorCodePermissionDenied:  "PermissionDenied",
	ErrorCodeNoHardwareSupport: "NoHardwareSupport",
	ErrorCodeCookieNotFound:    "CookieNotFound",
	ErrorCodeInvalidArguments:  "InvalidArguments",
	ErrorCodeSleepFailed:       "SleepFailed",
}

func (c ErrorCode) String() string {
	if int(c) < len(errorCodeNames) {
		return errorCodeNames[c]
	}
	return errorCodeNames[ErrorCodeUnknown]
}

// Error is returned to callers of the control API.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Msg
}

// Is matches any *Error with the same code, so sentinels work with
// xerrors.Is regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: xerrors.Errorf(format, args...).Error()}
}

var (
	ErrPermissionDenied  = &Error{Code: ErrorCodePermissionDenied}
	ErrNoHardwareSupport = &Error{Code: ErrorCodeNoHardwareSupport}
	ErrCookieNotFound    = &Error{Code: ErrorCodeCookieNotFound}
	ErrInvalidArguments  = &Error{Code: ErrorCodeInvalidArguments}
	ErrSleepFailed       = &Error{Code: ErrorCodeSleepFailed}
)

func busErrorName(code ErrorCode) string {
	return dbusInterface + ".Error." + code.String()
}

func toBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	var pErr *Error
	if xerrors.As(err, &pErr) {
		return &dbus.Error{
			Name: busErrorName(pErr.Code),
			Body: []interface{}{err.Error()},
		}
	}
	return dbusutil.ToError(err)
}

var benignSleepErrorNames = []string{
	"org.freedesktop.DBus.Error.NoReply",
	"org.freedesktop.DBus.Error.Timeout",
	"org.freedesktop.DBus.Error.TimedOut",
}

// isBenignSleepError reports whether err only says the reply to a sleep
// call got lost, which happens when the machine went down before replying.
func isBenignSleepError(err error) bool {
	if err == nil {
		return false
	}
	var name string
	var busErr dbus.Error
	var busErrPtr *dbus.Error
	switch {
	case xerrors.As(err, &busErrPtr):
		name = busErrPtr.Name
	case xerrors.As(err, &busErr):
		name = busErr.Name
	default:
		return false
	}
	for _, benign := range benignSleepErrorNames {
		if strings.EqualFold(name, benign) {
			return true
		}
	}
	return false
}
