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

package roms

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverride_LookupOrder(t *testing.T) {
	t.Parallel()

	o, err := ParseOverride([]byte(`
[*.iso]
title = From Glob

[Game.iso]
title = From Base

[europe/Game.iso]
title = From Rel
`))
	require.NoError(t, err)
	assert.Equal(t, 3, o.Len())

	tests := []struct {
		rel      string
		expected string
	}{
		{rel: "europe/Game.iso", expected: "From Rel"},
		{rel: "usa/game.ISO", expected: "From Base"},
		{rel: "Other.iso", expected: "From Glob"},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			rec, ok := o.Lookup(filepath.FromSlash(tt.rel))
			require.True(t, ok)
			assert.Equal(t, tt.expected, rec.Title)
		})
	}

	_, ok := o.Lookup("Other.bin")
	assert.False(t, ok)
}

func TestParseOverride_SlashGlobMatchesRelativePath(t *testing.T) {
	t.Parallel()

	o, err := ParseOverride([]byte("[beta/*]\nhide = 1\n"))
	require.NoError(t, err)

	rec, ok := o.Lookup("beta/Game.iso")
	require.True(t, ok)
	assert.True(t, rec.Hide)

	_, ok = o.Lookup("release/Game.iso")
	assert.False(t, ok)
}

func TestParseOverride_ExtraKeysBecomeVars(t *testing.T) {
	t.Parallel()

	o, err := ParseOverride([]byte("[Game.adf]\ntitle = Game\nModel = A1200\n"))
	require.NoError(t, err)

	rec, ok := o.Lookup("Game.adf")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"model": "A1200"}, rec.Vars)
}

func TestParseOverride_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "bad_hide", data: "[a.iso]\nhide = yes please\n"},
		{name: "keys_without_section", data: "title = Orphan\n"},
		{name: "bad_glob", data: "[[a-.iso]\nhide = 1\n"},
		{name: "unterminated_section", data: "[a.iso\nhide = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseOverride([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedOverride)
		})
	}
}

func TestOverrideRecord_Excludes(t *testing.T) {
	t.Parallel()

	var none *OverrideRecord
	assert.False(t, none.Excludes("a.iso"))

	assert.True(t, (&OverrideRecord{Hide: true}).Excludes("a.iso"))

	main := &OverrideRecord{MainRom: "Game (Disk 1 of 2).adf"}
	assert.False(t, main.Excludes("Game (Disk 1 of 2).adf"))
	assert.False(t, main.Excludes(filepath.FromSlash("sub/game (disk 1 of 2).adf")))
	assert.True(t, main.Excludes("Game (Disk 2 of 2).adf"))
}

func TestLoadOverride_Missing(t *testing.T) {
	t.Parallel()

	o, err := LoadOverride(t.TempDir())
	require.NoError(t, err)

	assert.Zero(t, o.Len())
	_, ok := o.Lookup("any.iso")
	assert.False(t, ok)
}

func TestOverride_NilLookup(t *testing.T) {
	t.Parallel()

	var o *Override
	_, ok := o.Lookup("a.iso")
	assert.False(t, ok)
}
