// ESide
// Copyright (c) 2026 The ESide Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of ESide.
//
// ESide is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ESide is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ESide.  If not, see <http://www.gnu.org/licenses/>.

package emulators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		expected string
	}{
		{in: "cue", expected: "*.cue"},
		{in: ".CUE", expected: "*.cue"},
		{in: "*.iso", expected: "*.iso"},
		{in: "track?.bin", expected: "track?.bin"},
		{in: "  ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, NormalizeExtension(tt.in))
		})
	}
}

func TestVariantFor_FirstMatchWins(t *testing.T) {
	t.Parallel()

	def := &Definition{
		Variants: []LaunchVariant{
			{Key: "run_pattern", Extensions: []string{"*.cue", "*.iso"}},
			{Key: "run_pattern1", Extensions: []string{"*.iso", "*.zip"}},
		},
	}

	v, ok := def.VariantFor("/roms/Game.ISO")
	assert.True(t, ok)
	assert.Equal(t, "run_pattern", v.Key)

	v, ok = def.VariantFor("/roms/Game.zip")
	assert.True(t, ok)
	assert.Equal(t, "run_pattern1", v.Key)

	_, ok = def.VariantFor("/roms/readme.txt")
	assert.False(t, ok)
}

func TestIgnored(t *testing.T) {
	t.Parallel()

	def := &Definition{Ignore: []string{"*(Disk [2-9] of*", "[bad"}}

	assert.True(t, def.Ignored("Game (Disk 2 of 3).adf"))
	assert.False(t, def.Ignored("Game (Disk 1 of 3).adf"))
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x", (&Definition{ID: "x"}).DisplayName())
	assert.Equal(t, "Amiga", (&Definition{ID: "x", SystemName: "Amiga"}).DisplayName())
}
