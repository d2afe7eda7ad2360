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

package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Global holds the [global] section of the emulators file. Booleans are
// written as 0/1 strings and lists are comma separated.
type Global struct {
	FirmwarePath        string   `mapstructure:"firmware_path"`
	CompanionCommand    string   `mapstructure:"companion_command"`
	SearchPaths         []string `mapstructure:"search_paths"`
	ShowNonExeEmulator  bool     `mapstructure:"show_non_exe_emulator"`
	ShowNonRomsEmulator bool     `mapstructure:"show_non_roms_emulator"`
	SortBySystemName    bool     `mapstructure:"sort_by_system_name"`
	FixArticles         bool     `mapstructure:"fix_articles"`
	SplitCamelCase      bool     `mapstructure:"split_camel_case"`
	UnderscoreTail      bool     `mapstructure:"underscore_tail"`
}

// DecodeGlobal decodes the global section. A missing section gives the zero
// value. Unknown keys are ignored so front-ends can keep their own toggles
// in the same section.
func DecodeGlobal(sections Sections) (Global, error) {
	var g Global

	sec, ok := sections.Lookup(GlobalSection)
	if !ok {
		return g, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           &g,
	})
	if err != nil {
		return g, fmt.Errorf("failed to create global decoder: %w", err)
	}

	if err := decoder.Decode(sec.Map()); err != nil {
		return g, fmt.Errorf("invalid [%s] section: %w", GlobalSection, err)
	}

	return g, nil
}
