// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"os"
	"syscall"

	"github.com/linuxdeepin/dde-api/soundutils"
	"github.com/linuxdeepin/go-lib/utils"
)

func playSound(name string) {
	logger.Debug("play system sound", name)
	go func() {
		err := soundutils.PlaySystemSound(name, "")
		if err != nil {
			logger.Warning(err)
		}
	}()
}

func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if !utils.IsFileExist(exe) {
		// replaced by a package upgrade
		return os.Args[0], nil
	}
	return exe, nil
}

// restartDaemon stops the modules and execs the binary again with the
// same arguments.
func restartDaemon(stop func()) {
	exe, err := executablePath()
	if err != nil {
		logger.Warning("restart:", err)
		return
	}
	if stop != nil {
		stop()
	}
	logger.Info("exec", exe, os.Args[1:])
	err = syscall.Exec(exe, os.Args, os.Environ())
	if err != nil {
		logger.Error("restart failed:", err)
		os.Exit(1)
	}
}
