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
	"cmp"
	"slices"
	"strings"

	"github.com/esideproject/eside/pkg/titles"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
)

// MinSimilarity is the lowest Jaro-Winkler score FindRom accepts.
const MinSimilarity = 0.8

// Match is a catalog entry found by FindRom.
type Match struct {
	titles.Entry
	Similarity float32
}

// FindRom looks a title up in the emulator's catalog. Exact matches,
// ignoring case, come first. Otherwise the closest titles by Jaro-Winkler
// similarity are returned, best first.
func (e *Engine) FindRom(emu *Emulator, query string) ([]Match, error) {
	catalog, err := e.RomCatalog(emu, true)
	if err != nil {
		return nil, err
	}
	return findTitle(catalog.Entries(), query), nil
}

func findTitle(entries []titles.Entry, query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var exact, fuzzy []Match
	for _, entry := range entries {
		t := strings.ToLower(entry.Title)
		if t == q {
			exact = append(exact, Match{Entry: entry, Similarity: 1})
			continue
		}
		sim := edlib.JaroWinklerSimilarity(q, t)
		if sim >= MinSimilarity {
			fuzzy = append(fuzzy, Match{Entry: entry, Similarity: sim})
		}
	}
	if len(exact) > 0 {
		return exact
	}

	slices.SortStableFunc(fuzzy, func(a, b Match) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	if len(fuzzy) > 0 {
		log.Debug().
			Str("query", query).
			Str("best", fuzzy[0].Title).
			Float32("similarity", fuzzy[0].Similarity).
			Msg("fuzzy title match")
	}
	return fuzzy
}
