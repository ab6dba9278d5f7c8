// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func Test_parseButton(t *testing.T) {
	tests := []struct {
		name string
		want Button
	}{
		{"power", ButtonPower},
		{"XF86PowerOff", ButtonPower},
		{"suspend", ButtonSleep},
		{"XF86Sleep", ButtonSleep},
		{"hibernate", ButtonHibernate},
		{"battery", ButtonBattery},
		{"XF86MonBrightnessUp", ButtonBrightnessUp},
		{"brightness_down", ButtonBrightnessDown},
		{"XF86KbdBrightnessUp", ButtonKbdBrightnessUp},
		{"kbd-brightness-down", ButtonKbdBrightnessDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := parseButton(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)
		})
	}

	b, err := parseButton("eject")
	assert.True(t, xerrors.Is(err, ErrInvalidArguments))
	assert.Equal(t, ButtonUnknown, b)
	assert.Equal(t, "unknown", b.String())
	assert.Equal(t, "brightness-up", ButtonBrightnessUp.String())
	assert.Equal(t, "kbd-brightness-down", ButtonKbdBrightnessDown.String())
}
