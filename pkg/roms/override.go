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
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// OverrideFile is the per-root override file name.
const OverrideFile = "roms.ini"

var ErrMalformedOverride = errors.New("malformed override file")

// OverrideRecord adjusts how one file, or every file matching a pattern,
// shows up in the catalog. Vars holds any extra keys for templates.
type OverrideRecord struct {
	Vars    map[string]string
	Pattern string
	Title   string
	MainRom string
	Hide    bool
}

// Override is a parsed roms.ini. The zero value has no records.
type Override struct {
	exact   map[string]*OverrideRecord
	globbed []*OverrideRecord
}

// LoadOverride reads roms.ini from a ROM root. A missing file gives an
// empty override.
func LoadOverride(root string) (*Override, error) {
	p := filepath.Join(root, OverrideFile)
	//nolint:gosec // Safe: override file under the user's ROM root
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return &Override{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}

	o, err := ParseOverride(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return o, nil
}

// ParseOverride parses override file contents. Section names are file
// names, relative paths or glob patterns.
func ParseOverride(data []byte) (*Override, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveSections: true,
		InsensitiveKeys:     true,
		IgnoreInlineComment: true,
		IgnoreContinuation:  true,
		KeyValueDelimiters:  "=",
	}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOverride, err)
	}

	o := &Override{exact: make(map[string]*OverrideRecord)}
	for _, sec := range f.Sections() {
		if strings.EqualFold(sec.Name(), ini.DefaultSection) {
			if len(sec.Keys()) > 0 {
				return nil, fmt.Errorf("%w: keys outside of a section", ErrMalformedOverride)
			}
			continue
		}

		pattern := strings.ToLower(filepath.ToSlash(sec.Name()))
		rec := &OverrideRecord{Pattern: pattern}
		for _, k := range sec.Keys() {
			value := strings.TrimSpace(k.Value())
			switch k.Name() {
			case "title":
				rec.Title = value
			case "hide":
				hide, err := strconv.ParseBool(value)
				if err != nil {
					return nil, fmt.Errorf("%w: [%s] hide: %q is not 0 or 1",
						ErrMalformedOverride, sec.Name(), value)
				}
				rec.Hide = hide
			case "main_rom":
				rec.MainRom = value
			default:
				if rec.Vars == nil {
					rec.Vars = make(map[string]string)
				}
				rec.Vars[k.Name()] = value
			}
		}

		if strings.ContainsAny(pattern, "*?[") {
			if _, err := path.Match(pattern, ""); err != nil {
				return nil, fmt.Errorf("%w: [%s]: %w", ErrMalformedOverride, sec.Name(), err)
			}
			o.globbed = append(o.globbed, rec)
		} else {
			o.exact[pattern] = rec
		}
	}

	return o, nil
}

// Lookup finds the record for a file given its slash separated path
// relative to the ROM root. Exact relative path wins over exact base name,
// which wins over the first matching pattern.
func (o *Override) Lookup(rel string) (*OverrideRecord, bool) {
	if o == nil {
		return nil, false
	}
	rel = strings.ToLower(filepath.ToSlash(rel))
	base := path.Base(rel)

	if rec, ok := o.exact[rel]; ok {
		return rec, true
	}
	if rec, ok := o.exact[base]; ok {
		return rec, true
	}
	for _, rec := range o.globbed {
		target := base
		if strings.Contains(rec.Pattern, "/") {
			target = rel
		}
		if ok, _ := path.Match(rec.Pattern, target); ok {
			return rec, true
		}
	}
	return nil, false
}

// Excludes reports whether the record drops a file from the catalog,
// either by hiding it or by naming another file as the main one.
func (r *OverrideRecord) Excludes(rel string) bool {
	if r == nil {
		return false
	}
	if r.Hide {
		return true
	}
	if r.MainRom == "" {
		return false
	}
	main := strings.ToLower(filepath.ToSlash(r.MainRom))
	rel = strings.ToLower(filepath.ToSlash(rel))
	return main != rel && main != path.Base(rel)
}

// Len is the number of records.
func (o *Override) Len() int {
	if o == nil {
		return 0
	}
	return len(o.exact) + len(o.globbed)
}
