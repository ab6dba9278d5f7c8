// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_executablePath(t *testing.T) {
	exe, err := executablePath()
	require.NoError(t, err)
	expected, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, expected, exe)
}
