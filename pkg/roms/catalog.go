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

// Package roms builds the title catalog of a ROM collection and groups
// multi-disc titles.
package roms

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/esideproject/eside/pkg/titles"
	"github.com/rs/zerolog/log"
)

// Options configures a catalog build.
type Options struct {
	Normalizer *titles.Normalizer
	// Override is used as is when set, otherwise roms.ini is read from Root.
	Override *Override
	Root     string
	// Globs are extension globs in priority order. Each is a scan group.
	Globs  []string
	Ignore []string
}

// Catalog is an ordered path to title mapping, sorted by title.
type Catalog struct {
	index   map[string]int
	entries []titles.Entry
}

func newCatalog(entries []titles.Entry) *Catalog {
	c := &Catalog{
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		c.index[e.Path] = i
	}
	return c
}

// Entries returns a copy of the catalog entries.
func (c *Catalog) Entries() []titles.Entry {
	if c == nil {
		return nil
	}
	return slices.Clone(c.entries)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Title returns the display title of a path.
func (c *Catalog) Title(p string) (string, bool) {
	if c == nil {
		return "", false
	}
	i, ok := c.index[p]
	if !ok {
		return "", false
	}
	return c.entries[i].Title, true
}

// Paths lists catalog paths in title order.
func (c *Catalog) Paths() []string {
	if c == nil {
		return nil
	}
	paths := make([]string, len(c.entries))
	for i, e := range c.entries {
		paths[i] = e.Path
	}
	return paths
}

// Build scans Root and returns its catalog. An unreadable root gives an
// empty catalog, a malformed override file is an error.
func Build(opts *Options) (*Catalog, error) {
	override := opts.Override
	if override == nil {
		var err error
		override, err = LoadOverride(opts.Root)
		if err != nil {
			return nil, err
		}
	}

	files, err := listFiles(opts.Root)
	if err != nil {
		log.Debug().Err(err).Str("root", opts.Root).Msg("failed to scan roms path")
		return newCatalog(nil), nil
	}

	skip := discCompanions(files, func(f string) bool {
		return matchesAny(opts.Globs, filepath.Base(f))
	})

	var (
		entries []titles.Entry
		// titles from finished groups; later groups only fill gaps
		earlier = make(map[string]struct{})
		added   = make(map[string]struct{})
	)

	for _, glob := range opts.Globs {
		glob = strings.ToLower(glob)
		var group []titles.Entry

		for _, f := range files {
			base := filepath.Base(f)
			if strings.HasPrefix(base, ".") {
				continue
			}
			if ok, _ := path.Match(glob, strings.ToLower(base)); !ok {
				continue
			}
			if matchesAny(opts.Ignore, base) {
				continue
			}
			if _, ok := skip[companionKey(f)]; ok {
				continue
			}
			if _, ok := added[f]; ok {
				continue
			}

			rel, err := filepath.Rel(opts.Root, f)
			if err != nil {
				continue
			}
			rec, hasRec := override.Lookup(rel)
			if rec.Excludes(rel) {
				continue
			}

			stem := stemOf(rel)
			title := stem
			if opts.Normalizer != nil {
				title = opts.Normalizer.Title(stem)
			}
			if hasRec && rec.Title != "" {
				title = rec.Title
			}
			if title == "" {
				title = stem
			}

			if _, ok := earlier[title]; ok {
				continue
			}

			added[f] = struct{}{}
			group = append(group, titles.Entry{Path: f, Title: title})
		}

		for _, e := range group {
			earlier[e.Title] = struct{}{}
		}
		entries = append(entries, group...)
	}

	titles.Deduplicate(entries)
	slices.SortStableFunc(entries, func(a, b titles.Entry) int {
		return strings.Compare(a.Title, b.Title)
	})

	return newCatalog(entries), nil
}

// stemOf is the name a title is derived from: the file name without its
// extension for files directly under the root, otherwise the top level
// directory name.
func stemOf(rel string) string {
	first, rest, nested := strings.Cut(filepath.ToSlash(rel), "/")
	if nested && rest != "" {
		return first
	}
	return strings.TrimSuffix(first, filepath.Ext(first))
}

func matchesAny(globs []string, name string) bool {
	name = strings.ToLower(name)
	for _, g := range globs {
		if ok, _ := path.Match(strings.ToLower(g), name); ok {
			return true
		}
	}
	return false
}

// listFiles walks root following symlinks and returns regular files sorted
// by path. Dot directories are not entered.
func listFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat roms path: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.New("roms path is not a directory")
	}

	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: true}
	err = fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Err(err).Str("path", p).Msg("skipping unreadable path")
			return nil
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		mode := d.Type()
		if mode&fs.ModeSymlink != 0 {
			fi, err := os.Stat(p)
			if err != nil {
				return nil
			}
			mode = fi.Mode().Type()
		}
		if !mode.IsRegular() {
			return nil
		}

		mu.Lock()
		files = append(files, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk roms path: %w", err)
	}

	slices.Sort(files)
	return files, nil
}
