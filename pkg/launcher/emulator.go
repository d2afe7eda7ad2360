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
	"github.com/esideproject/eside/pkg/emulators"
	"github.com/esideproject/eside/pkg/helpers/syncutil"
	"github.com/esideproject/eside/pkg/roms"
	"github.com/esideproject/eside/pkg/titles"
)

// lookup is a cached resolution result. Absence is cached too.
type lookup struct {
	path string
	done bool
	ok   bool
}

// cache holds everything derived from the filesystem for one emulator.
// It survives until Refresh.
type cache struct {
	normalizer *titles.Normalizer
	catalog    *roms.Catalog
	exe        lookup
	guiExe     lookup
	roms       lookup
}

// Emulator is a loaded definition plus its resolution caches.
type Emulator struct {
	Def   *emulators.Definition
	cache cache
	mu    syncutil.Mutex
}

func newEmulator(def *emulators.Definition) *Emulator {
	return &Emulator{Def: def}
}

func (e *Emulator) ID() string {
	return e.Def.ID
}

// Refresh drops cached executable, ROM root and catalog results so the
// next query looks at the filesystem again.
func (e *Emulator) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = cache{normalizer: e.cache.normalizer}
}

// resolve returns a cached lookup or runs find and stores its result.
func (e *Emulator) resolve(slot func(*cache) *lookup, find func() (string, bool)) (string, bool) {
	e.mu.Lock()
	l := slot(&e.cache)
	if l.done {
		e.mu.Unlock()
		return l.path, l.ok
	}
	e.mu.Unlock()

	p, ok := find()

	e.mu.Lock()
	*slot(&e.cache) = lookup{path: p, ok: ok, done: true}
	e.mu.Unlock()
	return p, ok
}

func (e *Emulator) cachedCatalog() *roms.Catalog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.catalog
}

func (e *Emulator) storeCatalog(c *roms.Catalog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.catalog = c
}

// normalizer compiles the title cleanup patterns once per emulator.
func (e *Emulator) normalizer() (*titles.Normalizer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cache.normalizer != nil {
		return e.cache.normalizer, nil
	}
	n, err := titles.NewNormalizer(e.Def.NameRemovers, e.Def.TitleOptions)
	if err != nil {
		return nil, err
	}
	e.cache.normalizer = n
	return n, nil
}
