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
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/esideproject/eside/pkg/config"
	"github.com/esideproject/eside/pkg/titles"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
)

var ErrInvalidDefinition = errors.New("invalid emulator definition")

const varPrefix = "var_"

var (
	runPatternKey = regexp.MustCompile(
		`^run_pattern(\d*)(?:_(roms_extensions|pre_command(\d+)))?$`,
	)
	nameRemoveKey = regexp.MustCompile(`^rom_name_remove(\d+)$`)
)

// variantKeys collects the raw keys for one run_pattern[N].
type variantKeys struct {
	preCommands map[int]string
	template    string
	extensions  string
	key         string
	order       int
	hasTemplate bool
	hasExts     bool
}

type indexed struct {
	value string
	n     int
}

// Builder turns emulator sections into definitions. Global toggles supply
// the title defaults each section may override.
type Builder struct {
	validator *Validator
	global    config.Global
}

func NewBuilder(global config.Global) *Builder {
	return &Builder{
		global:    global,
		validator: DefaultValidator,
	}
}

// LoadDefinitions builds every emulator.* section in declaration order.
// Duplicate ids are rejected.
func LoadDefinitions(sections config.Sections, global config.Global) ([]*Definition, error) {
	b := NewBuilder(global)
	emus := sections.Emulators()
	defs := make([]*Definition, 0, len(emus))
	seen := make(map[string]struct{}, len(emus))
	for i := range emus {
		def, err := b.Build(&emus[i])
		if err != nil {
			return nil, err
		}
		if _, ok := seen[def.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate emulator id %q", ErrInvalidDefinition, def.ID)
		}
		seen[def.ID] = struct{}{}
		defs = append(defs, def)
	}
	return defs, nil
}

// Build parses a single emulator section.
func (b *Builder) Build(sec *config.Section) (*Definition, error) {
	id := strings.TrimPrefix(sec.Name, config.EmulatorPrefix)
	def := &Definition{
		ID:            id,
		Vars:          make(map[string]string),
		GUIRunPattern: DefaultGUIRunPattern,
		TitleOptions: titles.Options{
			FixArticles:    b.global.FixArticles,
			SplitCamelCase: b.global.SplitCamelCase,
			UnderscoreTail: b.global.UnderscoreTail,
		},
	}

	variants := make(map[string]*variantKeys)
	variant := func(suffix string) *variantKeys {
		v, ok := variants[suffix]
		if !ok {
			order := 0
			if suffix != "" {
				// "" sorts first, numbered variants after it
				n, _ := strconv.Atoi(suffix)
				order = n + 1
			}
			v = &variantKeys{
				key:         "run_pattern" + suffix,
				order:       order,
				preCommands: make(map[int]string),
			}
			variants[suffix] = v
		}
		return v
	}

	var removers []indexed

	for _, kv := range sec.Keys {
		key, value := kv.Key, kv.Value

		if m := runPatternKey.FindStringSubmatch(key); m != nil {
			v := variant(m[1])
			switch {
			case m[2] == "":
				v.template, v.hasTemplate = value, true
			case m[2] == "roms_extensions":
				v.extensions, v.hasExts = value, true
			default:
				n, _ := strconv.Atoi(m[3])
				v.preCommands[n] = value
			}
			continue
		}

		if key == "roms_extensions" {
			v := variant("")
			v.extensions, v.hasExts = value, true
			continue
		}

		if m := nameRemoveKey.FindStringSubmatch(key); m != nil {
			n, _ := strconv.Atoi(m[1])
			removers = append(removers, indexed{n: n, value: value})
			continue
		}

		if name, ok := strings.CutPrefix(key, varPrefix); ok && name != "" {
			def.Vars[name] = value
			continue
		}

		if err := b.applyKey(def, key, value); err != nil {
			return nil, fmt.Errorf("%w: [%s] %s: %w", ErrInvalidDefinition, sec.Name, key, err)
		}
	}

	slices.SortFunc(removers, func(a, c indexed) int { return a.n - c.n })
	for _, r := range removers {
		def.NameRemovers = append(def.NameRemovers, r.value)
	}

	built, err := buildVariants(variants)
	if err != nil {
		return nil, fmt.Errorf("%w: [%s]: %w", ErrInvalidDefinition, sec.Name, err)
	}
	def.Variants = built

	if err := b.validator.Validate(def); err != nil {
		return nil, fmt.Errorf("%w: [%s]: %w", ErrInvalidDefinition, sec.Name, err)
	}

	return def, nil
}

func (*Builder) applyKey(def *Definition, key, value string) error {
	switch key {
	case "system_name":
		def.SystemName = value
	case "emulator_name":
		def.EmulatorName = value
	case "info_url":
		def.InfoURL = value
	case "exe_paths", "exe_path":
		def.ExePaths = SplitList(value)
	case "gui_exe_paths", "gui_exe_path":
		def.GUIExePaths = SplitList(value)
	case "gui_run_pattern":
		def.GUIRunPattern = value
	case "roms_paths", "roms_path":
		def.RomsPaths = SplitList(value)
	case "roms_ignore":
		def.Ignore = SplitList(value)
	case "fix_articles":
		return parseToggle(value, &def.TitleOptions.FixArticles)
	case "split_camel_case":
		return parseToggle(value, &def.TitleOptions.SplitCamelCase)
	case "underscore_tail":
		return parseToggle(value, &def.TitleOptions.UnderscoreTail)
	default:
		log.Debug().Str("key", key).Str("emulator", def.ID).Msg("ignoring unknown emulator key")
	}
	return nil
}

func buildVariants(keys map[string]*variantKeys) ([]LaunchVariant, error) {
	ordered := make([]*variantKeys, 0, len(keys))
	for _, v := range keys {
		ordered = append(ordered, v)
	}
	slices.SortFunc(ordered, func(a, b *variantKeys) int { return a.order - b.order })

	variants := make([]LaunchVariant, 0, len(ordered))
	for _, v := range ordered {
		switch {
		case !v.hasTemplate:
			return nil, fmt.Errorf("%s_roms_extensions or pre-commands without %s", v.key, v.key)
		case !v.hasExts:
			return nil, fmt.Errorf("%s without %s_roms_extensions", v.key, v.key)
		}

		lv := LaunchVariant{Key: v.key, Template: v.template}
		for _, ext := range SplitList(v.extensions) {
			if glob := NormalizeExtension(ext); glob != "" {
				lv.Extensions = append(lv.Extensions, glob)
			}
		}

		idxs := make([]int, 0, len(v.preCommands))
		for n := range v.preCommands {
			idxs = append(idxs, n)
		}
		slices.Sort(idxs)
		for _, n := range idxs {
			pc, err := ParsePreCommand(v.preCommands[n])
			if err != nil {
				return nil, fmt.Errorf("%s_pre_command%d: %w", v.key, n, err)
			}
			lv.PreCommands = append(lv.PreCommands, pc)
		}

		variants = append(variants, lv)
	}
	return variants, nil
}

// ParsePreCommand splits a pre-command line with shell quoting rules. The
// first word is the operation.
func ParsePreCommand(line string) (PreCommand, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return PreCommand{}, fmt.Errorf("failed to split pre-command: %w", err)
	}
	if len(words) == 0 {
		return PreCommand{}, errors.New("empty pre-command")
	}
	return PreCommand{Op: strings.ToLower(words[0]), Args: words[1:]}, nil
}

// SplitList splits a comma separated value, dropping empty items.
func SplitList(value string) []string {
	var items []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseToggle(value string, dst *bool) error {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid toggle %q", value)
	}
	*dst = b
	return nil
}
