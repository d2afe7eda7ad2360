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

package launcher

import (
	"fmt"
	"strings"
)

// NoExecutableMessage is the guidance shown when an emulator's executable
// can't be found.
func NoExecutableMessage(emu *Emulator) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "No executable found for %s.\n", emu.Def.DisplayName())
	if len(emu.Def.ExePaths) > 0 {
		fmt.Fprintf(&sb, "Looked for: %s\n", strings.Join(emu.Def.ExePaths, ", "))
	}
	if emu.Def.InfoURL != "" {
		fmt.Fprintf(&sb, "Get it from %s\n", emu.Def.InfoURL)
	}
	return sb.String()
}

// NoRomsMessage is the guidance shown when an emulator has no ROMs. root is
// the resolved ROM root, empty when none was found.
func NoRomsMessage(emu *Emulator, root string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "No ROMs found for %s.\n", emu.Def.DisplayName())
	switch {
	case !emu.Def.CanLaunch():
		sb.WriteString("No run pattern is configured for this emulator.\n")
	case root == "":
		if len(emu.Def.RomsPaths) > 0 {
			fmt.Fprintf(&sb, "None of these folders exist: %s\n", strings.Join(emu.Def.RomsPaths, ", "))
		} else {
			sb.WriteString("No roms_path is configured for this emulator.\n")
		}
	default:
		fmt.Fprintf(&sb, "Put files matching %s in %s\n",
			strings.Join(emu.Def.ExtensionGlobs(), ", "), root)
	}
	return sb.String()
}
