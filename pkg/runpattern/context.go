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

package runpattern

import (
	"maps"
	"path/filepath"
	"strings"
)

// Context keys set by the launcher and the preparation steps.
const (
	KeyExePath                = "exe_path"
	KeyExeDir                 = "exe_dir"
	KeyRomPath                = "rom_path"
	KeyRomDir                 = "rom_dir"
	KeyRomName                = "rom_name"
	KeyRomTitle               = "rom_title"
	KeyRomIndex               = "rom_index"
	KeyRomsPath               = "roms_path"
	KeyFirmwarePath           = "firmware_path"
	KeyUnpackedRomPath        = "unpacked_rom_path"
	KeyUnpackedRomFirstSubdir = "unpacked_rom_first_subdir"
	KeyWriteBasename          = "write_basename"
)

// Context is the set of values placeholders are filled from. It lives for
// one launch.
type Context map[string]string

// Clone returns an independent copy.
func (c Context) Clone() Context {
	return maps.Clone(c)
}

// Merge copies vars into the context, replacing existing keys.
func (c Context) Merge(vars map[string]string) {
	maps.Copy(c, vars)
}

// SetRom fills the rom_* keys for a file.
func (c Context) SetRom(path string) {
	base := filepath.Base(path)
	c[KeyRomPath] = path
	c[KeyRomDir] = filepath.Dir(path)
	c[KeyRomName] = strings.TrimSuffix(base, filepath.Ext(base))
}

// SetExe fills the exe_* keys for an executable.
func (c Context) SetExe(path string) {
	c[KeyExePath] = path
	c[KeyExeDir] = filepath.Dir(path)
}
