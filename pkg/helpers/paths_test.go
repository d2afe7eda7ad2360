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

package helpers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, files, dirs []string, path map[string]string) *Resolver {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("x"), 0o755))
	}
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(d, 0o755))
	}
	return &Resolver{
		Fs:    fs,
		Roots: []string{"/home/user", "/srv"},
		LookPath: func(file string) (string, error) {
			if p, ok := path[file]; ok {
				return p, nil
			}
			return "", errors.New("executable file not found in $PATH")
		},
	}
}

func TestResolver_ResolveExecutable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path       map[string]string
		name       string
		expected   string
		files      []string
		candidates []string
		found      bool
	}{
		{
			name:       "absolute_path",
			files:      []string{"/opt/fs-uae/fs-uae"},
			candidates: []string{"/opt/fs-uae/fs-uae"},
			expected:   "/opt/fs-uae/fs-uae",
			found:      true,
		},
		{
			name:       "relative_to_second_root",
			files:      []string{"/srv/emus/mednafen"},
			candidates: []string{"emus/mednafen"},
			expected:   "/srv/emus/mednafen",
			found:      true,
		},
		{
			name:       "first_root_wins",
			files:      []string{"/srv/emus/mednafen", "/home/user/emus/mednafen"},
			candidates: []string{"emus/mednafen"},
			expected:   "/home/user/emus/mednafen",
			found:      true,
		},
		{
			name:       "basename_under_root",
			files:      []string{"/home/user/hatari"},
			candidates: []string{"apps/atari/hatari"},
			expected:   "/home/user/hatari",
			found:      true,
		},
		{
			name:       "executable_search_path",
			files:      []string{"/usr/bin/retroarch"},
			path:       map[string]string{"retroarch": "/usr/bin/retroarch"},
			candidates: []string{"retroarch"},
			expected:   "/usr/bin/retroarch",
			found:      true,
		},
		{
			name:       "glob_candidate",
			files:      []string{"/opt/pcsx2-1.7/pcsx2"},
			candidates: []string{"/opt/pcsx2-*/pcsx2"},
			expected:   "/opt/pcsx2-1.7/pcsx2",
			found:      true,
		},
		{
			name:       "declared_order_beats_tier",
			files:      []string{"/usr/bin/dosbox", "/opt/dosbox-x/dosbox-x"},
			path:       map[string]string{"dosbox": "/usr/bin/dosbox"},
			candidates: []string{"dosbox", "/opt/dosbox-x/dosbox-x"},
			expected:   "/usr/bin/dosbox",
			found:      true,
		},
		{
			name:       "falls_through_to_later_candidate",
			files:      []string{"/opt/dosbox-x/dosbox-x"},
			candidates: []string{"dosbox", "/opt/dosbox-x/dosbox-x"},
			expected:   "/opt/dosbox-x/dosbox-x",
			found:      true,
		},
		{
			name:       "nothing_found",
			candidates: []string{"missing", "/nowhere/missing"},
		},
		{
			name:       "empty_candidates_skipped",
			files:      []string{"/opt/vice/x64sc"},
			candidates: []string{"", "  ", "/opt/vice/x64sc"},
			expected:   "/opt/vice/x64sc",
			found:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestResolver(t, tt.files, nil, tt.path)
			got, ok := r.ResolveExecutable(tt.candidates)

			assert.Equal(t, tt.found, ok)
			assert.Equal(t, filepath.FromSlash(tt.expected), got)
		})
	}
}

func TestResolver_ExecutableMustBeFile(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, nil, []string{"/opt/mame"}, map[string]string{"mame": "/opt/mame"})

	_, ok := r.ResolveExecutable([]string{"/opt/mame", "mame"})

	assert.False(t, ok)
}

func TestResolver_ResolveDir(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t,
		[]string{"/home/user/roms/amiga.txt"},
		[]string{"/srv/roms/amiga", "/srv/roms/psx"},
		map[string]string{"amiga": "/srv/roms/amiga"},
	)

	got, ok := r.ResolveDir([]string{"roms/amiga.txt", "roms/amiga"})
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("/srv/roms/amiga"), got)

	_, ok = r.ResolveDir([]string{"amiga"})
	assert.False(t, ok, "directories are never looked up in the executable search path")
}

func TestResolver_FindFirst(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, []string{"/bios/kick13.rom", "/bios/kick31.rom"}, []string{"/bios/dir.rom"}, nil)

	got, ok := r.FindFirst([]string{"/bios/kick20.rom", "/bios/*.rom"})
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("/bios/kick13.rom"), got)

	_, ok = r.FindFirst([]string{"kick13.rom"})
	assert.False(t, ok, "no search roots are involved")
}

func TestNormalizeConfigPath(t *testing.T) {
	t.Setenv("ESIDE_TEST_DIR", "/data/emus")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "  ", expected: ""},
		{name: "dollar_var", input: "$ESIDE_TEST_DIR/mame", expected: "/data/emus/mame"},
		{name: "braced_var", input: "${ESIDE_TEST_DIR}/mame", expected: "/data/emus/mame"},
		{name: "percent_var", input: "%ESIDE_TEST_DIR%/mame", expected: "/data/emus/mame"},
		{name: "unknown_percent_var_kept", input: "%ESIDE_NOT_SET_XYZ%/mame", expected: "%ESIDE_NOT_SET_XYZ%/mame"},
		{name: "backslashes", input: `emus\fs-uae\fs-uae.exe`, expected: "emus/fs-uae/fs-uae.exe"},
		{name: "home", input: "~/roms", expected: filepath.ToSlash(home) + "/roms"},
		{name: "tilde_inside_name", input: "roms~old", expected: "roms~old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.expected), NormalizeConfigPath(tt.input))
		})
	}
}

func TestExpandSearchPaths(t *testing.T) {
	t.Parallel()

	list := strings.Join([]string{"/a", "/b", ""}, string(os.PathListSeparator))

	got := ExpandSearchPaths([]string{"/c", list, "/A", "", "/c/"})

	assert.Equal(t, []string{"/c", "/a", "/b"}, got)
}

func TestPathHasPrefix(t *testing.T) {
	t.Parallel()

	assert.True(t, PathHasPrefix("/roms/amiga/game.adf", "/roms"))
	assert.True(t, PathHasPrefix("/ROMS/amiga", "/roms/"))
	assert.True(t, PathHasPrefix("/roms", "/roms"))
	assert.False(t, PathHasPrefix("/roms2/game.adf", "/roms"))
	assert.False(t, PathHasPrefix("/roms/game.adf", ""))
}

func TestRealPath(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	target := filepath.Join(dir, "roms")
	require.NoError(t, os.Mkdir(target, 0o750))
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	assert.Equal(t, target, RealPath(link))
	assert.Equal(t, filepath.Join(dir, "missing"), RealPath(filepath.Join(dir, "x", "..", "missing")))
}
