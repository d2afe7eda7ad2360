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

// Package emulators holds the emulator definition model and the builder
// that turns a parsed emulator.* section into it.
package emulators

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/esideproject/eside/pkg/titles"
)

// Pre-command operations.
const (
	OpCopy          = "copy"
	OpUnpack        = "unpack"
	OpDelete        = "delete"
	OpWrite         = "write"
	OpWriteBasename = "write_basename"
)

// DefaultGUIRunPattern is used for the front-end when gui_run_pattern is
// not set.
const DefaultGUIRunPattern = `"{exe_path}"`

// PreCommand is one preparation step. Args are templates expanded against
// the launch context when the step runs.
type PreCommand struct {
	Op   string
	Args []string
}

// LaunchVariant is a run pattern together with the extension globs it
// claims and the pre-commands that prepare it.
type LaunchVariant struct {
	// Key is the config key the variant came from, e.g. "run_pattern1".
	Key         string
	Template    string   `validate:"required"`
	Extensions  []string `validate:"min=1,dive,glob"`
	PreCommands []PreCommand
}

// Matches reports whether a file name is claimed by the variant. Matching
// is done on the lower cased base name.
func (v *LaunchVariant) Matches(name string) bool {
	return MatchAny(v.Extensions, filepath.Base(name))
}

// Definition is an immutable emulator target.
type Definition struct {
	Vars          map[string]string
	ID            string `validate:"required,excludesall=/\\"`
	SystemName    string `validate:"required"`
	EmulatorName  string
	InfoURL       string          `validate:"omitempty,url"`
	GUIRunPattern string          `validate:"required"`
	ExePaths      []string        `validate:"min=1,dive,required"`
	GUIExePaths   []string        `validate:"dive,required"`
	RomsPaths     []string        `validate:"dive,required"`
	Variants      []LaunchVariant `validate:"dive"`
	NameRemovers  []string        `validate:"dive,regex"`
	Ignore        []string        `validate:"dive,glob"`
	TitleOptions  titles.Options
}

// DisplayName is the label front-ends show for the emulator.
func (d *Definition) DisplayName() string {
	switch {
	case d.SystemName != "" && d.EmulatorName != "":
		return d.SystemName + " (" + d.EmulatorName + ")"
	case d.SystemName != "":
		return d.SystemName
	default:
		return d.ID
	}
}

// VariantFor returns the first variant, in declaration order, that claims
// the file.
func (d *Definition) VariantFor(file string) (*LaunchVariant, bool) {
	for i := range d.Variants {
		if d.Variants[i].Matches(file) {
			return &d.Variants[i], true
		}
	}
	return nil, false
}

// ExtensionGlobs lists every extension glob across variants in declaration
// order without repeats. Each one is a separate catalog scan group.
func (d *Definition) ExtensionGlobs() []string {
	seen := make(map[string]struct{})
	var globs []string
	for _, v := range d.Variants {
		for _, g := range v.Extensions {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			globs = append(globs, g)
		}
	}
	return globs
}

// CanLaunch reports whether the definition has at least one launch variant.
func (d *Definition) CanLaunch() bool {
	return len(d.Variants) > 0
}

// Ignored reports whether a base name matches one of the ignore globs.
func (d *Definition) Ignored(name string) bool {
	return MatchAny(d.Ignore, name)
}

// MatchAny matches name case-insensitively against glob patterns. Bad
// patterns never match.
func MatchAny(patterns []string, name string) bool {
	name = strings.ToLower(name)
	for _, p := range patterns {
		if ok, err := path.Match(strings.ToLower(p), name); err == nil && ok {
			return true
		}
	}
	return false
}

// NormalizeExtension turns "cue", ".cue" or "*.cue" into "*.cue". Anything
// that already looks like a glob is kept as is.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	switch {
	case ext == "":
		return ""
	case strings.ContainsAny(ext, "*?["):
		return ext
	case strings.HasPrefix(ext, "."):
		return "*" + ext
	default:
		return "*." + ext
	}
}
