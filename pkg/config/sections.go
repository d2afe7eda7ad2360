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
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/ini.v1"
)

const (
	GlobalSection  = "global"
	EmulatorPrefix = "emulator."
)

//go:embed default.ini
var DefaultEmulators []byte

// KeyValue is one entry of a section, in file order.
type KeyValue struct {
	Key   string
	Value string
}

// Section is an ordered list of keys. Keys are lower case.
type Section struct {
	Name string
	Keys []KeyValue
}

// Get returns the value of key and whether it was present.
func (s *Section) Get(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, kv := range s.Keys {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Map returns the section as a plain map.
func (s *Section) Map() map[string]string {
	m := make(map[string]string, len(s.Keys))
	for _, kv := range s.Keys {
		m[kv.Key] = kv.Value
	}
	return m
}

// Sections is a parsed emulators file: sections in declaration order.
type Sections []Section

// Lookup finds a section by name.
func (ss Sections) Lookup(name string) (*Section, bool) {
	name = strings.ToLower(name)
	for i := range ss {
		if ss[i].Name == name {
			return &ss[i], true
		}
	}
	return nil, false
}

// Emulators returns the emulator.* sections in declaration order.
func (ss Sections) Emulators() []Section {
	var emus []Section
	for _, s := range ss {
		if strings.HasPrefix(s.Name, EmulatorPrefix) && len(s.Name) > len(EmulatorPrefix) {
			emus = append(emus, s)
		}
	}
	return emus
}

// iniOptions keeps values byte-exact: run patterns carry quotes, regexes
// carry ; and # and Windows paths may end in a backslash.
func iniOptions() ini.LoadOptions {
	return ini.LoadOptions{
		InsensitiveSections:     true,
		InsensitiveKeys:         true,
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
		KeyValueDelimiters:      "=",
	}
}

// ParseSections parses emulators file contents.
func ParseSections(data []byte) (Sections, error) {
	f, err := ini.LoadSources(iniOptions(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse emulators file: %w", err)
	}

	var sections Sections
	for _, sec := range f.Sections() {
		if strings.EqualFold(sec.Name(), ini.DefaultSection) && len(sec.Keys()) == 0 {
			continue
		}
		s := Section{Name: strings.ToLower(sec.Name())}
		for _, k := range sec.Keys() {
			s.Keys = append(s.Keys, KeyValue{
				Key:   k.Name(),
				Value: strings.TrimSpace(k.Value()),
			})
		}
		sections = append(sections, s)
	}

	return sections, nil
}

// LoadSections reads the emulators file at path. When the file doesn't
// exist the embedded defaults are used instead.
func LoadSections(path string) (Sections, error) {
	//nolint:gosec // Safe: reads the user's own emulators file
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", path).Msg("emulators file not found, using defaults")
		data = DefaultEmulators
	} else if err != nil {
		return nil, fmt.Errorf("failed to read emulators file: %w", err)
	}

	return ParseSections(data)
}
