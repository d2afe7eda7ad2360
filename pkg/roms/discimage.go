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
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var cueFileLine = regexp.MustCompile(`(?mi)^\s*FILE\s+(?:"([^"]*)"|(\S+))\s+\S+\s*$`)

// CueReferences returns the file names referenced by FILE lines of a cue
// sheet, in order.
func CueReferences(data []byte) []string {
	var refs []string
	for _, m := range cueFileLine.FindAllSubmatch(data, -1) {
		name := string(m[1])
		if name == "" {
			name = string(m[2])
		}
		if name != "" {
			refs = append(refs, name)
		}
	}
	return refs
}

// companionKey is the skip-set key for a file: its cleaned lower case path.
func companionKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

// discCompanions returns the skip-set of data files hidden behind a disc
// sheet. A .cue hides every file it references, a .ccd hides the .img with
// the same stem. Only sheets the catalog would claim are considered.
func discCompanions(files []string, claimed func(string) bool) map[string]struct{} {
	skip := make(map[string]struct{})
	for _, f := range files {
		if !claimed(f) {
			continue
		}
		dir := filepath.Dir(f)
		switch strings.ToLower(filepath.Ext(f)) {
		case ".cue":
			//nolint:gosec // Safe: cue sheets found under the user's ROM root
			data, err := os.ReadFile(f)
			if err != nil {
				log.Debug().Err(err).Str("path", f).Msg("failed to read cue sheet")
				continue
			}
			for _, ref := range CueReferences(data) {
				ref = filepath.FromSlash(strings.ReplaceAll(ref, `\`, "/"))
				skip[companionKey(filepath.Join(dir, ref))] = struct{}{}
			}
		case ".ccd":
			stem := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
			skip[companionKey(filepath.Join(dir, stem+".img"))] = struct{}{}
		}
	}
	return skip
}
