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
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var discMarker = regexp.MustCompile(`(?i)\s*\((?:disk|disc)\s*\d+\s*of\s*\d+\)`)

// FindSiblings returns the other parts of a multi-disc title, the given
// file included, sorted by path. Parts are recognized by a "(Disk N of M)"
// marker in the name and share the same stem once the marker is removed,
// so tags after the marker take part in the match. Files without a marker
// are returned alone.
func FindSiblings(afs afero.Fs, p string) []string {
	dir, base := filepath.Split(p)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if !discMarker.MatchString(stem) {
		return []string{p}
	}
	clean := cleanStem(stem)

	entries, err := afero.ReadDir(afs, filepath.Clean(dir))
	if err != nil {
		log.Debug().Err(err).Str("path", p).Msg("failed to list sibling directory")
		return []string{p}
	}

	var siblings []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		nameStem := strings.TrimSuffix(name, filepath.Ext(name))
		if len(discMarker.FindAllStringIndex(nameStem, -1)) != 1 {
			continue
		}
		if cleanStem(nameStem) != clean {
			continue
		}
		siblings = append(siblings, filepath.Join(dir, name))
	}

	if len(siblings) == 0 {
		return []string{p}
	}
	slices.Sort(siblings)
	return siblings
}

func cleanStem(stem string) string {
	return strings.ToLower(strings.TrimSpace(discMarker.ReplaceAllString(stem, "")))
}
