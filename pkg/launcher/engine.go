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

// Package launcher is the engine front-ends talk to: it lists emulators,
// resolves their executables and ROM catalogs and launches titles.
package launcher

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/esideproject/eside/pkg/config"
	"github.com/esideproject/eside/pkg/emulators"
	"github.com/esideproject/eside/pkg/helpers"
	"github.com/esideproject/eside/pkg/helpers/command"
	"github.com/esideproject/eside/pkg/launcher/companion"
	"github.com/esideproject/eside/pkg/precommands"
	"github.com/esideproject/eside/pkg/roms"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Options are the engine's collaborators. Zero values get real
// implementations.
type Options struct {
	Fs       afero.Fs
	Executor command.Executor
	Resolver *helpers.Resolver
	Clock    clockwork.Clock
	// UnpackCommand is the extractor argv template, see config.Unpack.
	UnpackCommand []string
	HideWindow    bool
}

// Engine serves the queries and launches of one loaded emulators file.
type Engine struct {
	fs         afero.Fs
	executor   command.Executor
	resolver   *helpers.Resolver
	pipeline   *precommands.Pipeline
	tracker    *companion.Tracker
	byID       map[string]*Emulator
	global     config.Global
	emulators  []*Emulator
	hideWindow bool
}

// New creates an engine for already built definitions.
func New(defs []*emulators.Definition, global config.Global, opts Options) *Engine {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Executor == nil {
		opts.Executor = &command.RealExecutor{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Resolver == nil {
		roots := helpers.ExpandSearchPaths(global.SearchPaths)
		if len(roots) == 0 {
			roots = helpers.DefaultSearchRoots()
		}
		opts.Resolver = helpers.NewResolver(roots)
		opts.Resolver.Fs = opts.Fs
	}

	e := &Engine{
		fs:         opts.Fs,
		executor:   opts.Executor,
		resolver:   opts.Resolver,
		pipeline:   precommands.NewPipeline(opts.Fs, opts.Executor, opts.UnpackCommand),
		tracker:    companion.New(opts.Clock),
		global:     global,
		hideWindow: opts.HideWindow,
		byID:       make(map[string]*Emulator, len(defs)),
	}
	for _, def := range defs {
		emu := newEmulator(def)
		e.emulators = append(e.emulators, emu)
		e.byID[def.ID] = emu
	}
	return e
}

// Load builds an engine from a parsed emulators file.
func Load(sections config.Sections, opts Options) (*Engine, error) {
	global, err := config.DecodeGlobal(sections)
	if err != nil {
		return nil, err
	}
	defs, err := emulators.LoadDefinitions(sections, global)
	if err != nil {
		return nil, err
	}
	log.Info().Int("emulators", len(defs)).Msg("loaded emulator definitions")
	return New(defs, global, opts), nil
}

// Close stops companion tracking.
func (e *Engine) Close() {
	e.tracker.Stop()
}

// Global returns the [global] settings the engine was loaded with.
func (e *Engine) Global() config.Global {
	return e.global
}

// Emulators returns every definition in declaration order.
func (e *Engine) Emulators() []*Emulator {
	return slices.Clone(e.emulators)
}

// Emulator finds an emulator by id.
func (e *Engine) Emulator(id string) (*Emulator, error) {
	emu, ok := e.byID[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmulator, id)
	}
	return emu, nil
}

// Refresh drops every emulator's caches.
func (e *Engine) Refresh() {
	for _, emu := range e.emulators {
		emu.Refresh()
	}
}

// ListFilter selects which emulators ListEmulators returns.
type ListFilter struct {
	ShowWithoutExecutable bool
	ShowWithoutRoms       bool
	SortBySystemName      bool
}

// DefaultFilter is the filter the [global] section asks for.
func (e *Engine) DefaultFilter() ListFilter {
	return ListFilter{
		ShowWithoutExecutable: e.global.ShowNonExeEmulator,
		ShowWithoutRoms:       e.global.ShowNonRomsEmulator,
		SortBySystemName:      e.global.SortBySystemName,
	}
}

// listWorkers bounds how many emulators ListEmulators checks at once.
const listWorkers = 4

// ListEmulators returns the emulators passing the filter. An emulator whose
// catalog can't be built is left out and its error is returned alongside
// the rest of the list.
func (e *Engine) ListEmulators(filter ListFilter) ([]*Emulator, error) {
	type verdict struct {
		err  error
		keep bool
	}
	verdicts := make([]verdict, len(e.emulators))

	var g errgroup.Group
	g.SetLimit(listWorkers)
	for i, emu := range e.emulators {
		g.Go(func() error {
			keep, err := e.passes(emu, filter)
			verdicts[i] = verdict{keep: keep, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var (
		list []*Emulator
		errs []error
	)
	for i, v := range verdicts {
		if v.err != nil {
			errs = append(errs, v.err)
			continue
		}
		if v.keep {
			list = append(list, e.emulators[i])
		}
	}

	if filter.SortBySystemName {
		slices.SortStableFunc(list, func(a, b *Emulator) int {
			return cmp.Or(
				strings.Compare(strings.ToLower(a.Def.SystemName), strings.ToLower(b.Def.SystemName)),
				strings.Compare(strings.ToLower(a.Def.EmulatorName), strings.ToLower(b.Def.EmulatorName)),
			)
		})
	}

	return list, errors.Join(errs...)
}

func (e *Engine) passes(emu *Emulator, filter ListFilter) (bool, error) {
	if !filter.ShowWithoutExecutable {
		if _, ok := e.ExecutablePath(emu); !ok {
			return false, nil
		}
	}
	if !filter.ShowWithoutRoms {
		catalog, err := e.RomCatalog(emu, true)
		if err != nil {
			return false, err
		}
		if catalog.Len() == 0 {
			return false, nil
		}
	}
	return true, nil
}

// ExecutablePath resolves the emulator's executable. The result, found or
// not, is cached until Refresh.
func (e *Engine) ExecutablePath(emu *Emulator) (string, bool) {
	return emu.resolve(func(c *cache) *lookup { return &c.exe }, func() (string, bool) {
		return e.resolver.ResolveExecutable(emu.Def.ExePaths)
	})
}

// FrontEndPath resolves the executable for the emulator's own front-end,
// falling back to the main executable.
func (e *Engine) FrontEndPath(emu *Emulator) (string, bool) {
	if len(emu.Def.GUIExePaths) == 0 {
		return e.ExecutablePath(emu)
	}
	return emu.resolve(func(c *cache) *lookup { return &c.guiExe }, func() (string, bool) {
		return e.resolver.ResolveExecutable(emu.Def.GUIExePaths)
	})
}

// RomsPath resolves the emulator's ROM root.
func (e *Engine) RomsPath(emu *Emulator) (string, bool) {
	return emu.resolve(func(c *cache) *lookup { return &c.roms }, func() (string, bool) {
		p, ok := e.resolver.ResolveDir(emu.Def.RomsPaths)
		if ok {
			p = helpers.RealPath(p)
		}
		return p, ok
	})
}

// RomCatalog returns the emulator's titles. A nil catalog means the
// emulator can't have ROMs: it has no launch variant or no ROM root. With
// useCache the last built catalog is reused.
func (e *Engine) RomCatalog(emu *Emulator, useCache bool) (*roms.Catalog, error) {
	if !emu.Def.CanLaunch() {
		return nil, nil //nolint:nilnil // no catalog is a normal outcome
	}
	if useCache {
		if c := emu.cachedCatalog(); c != nil {
			return c, nil
		}
	}

	root, ok := e.RomsPath(emu)
	if !ok {
		return nil, nil //nolint:nilnil // no catalog is a normal outcome
	}

	n, err := emu.normalizer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", emu.ID(), err)
	}

	c, err := roms.Build(&roms.Options{
		Root:       root,
		Globs:      emu.Def.ExtensionGlobs(),
		Ignore:     emu.Def.Ignore,
		Normalizer: n,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", emu.ID(), err)
	}

	log.Debug().Str("emulator", emu.ID()).Int("roms", c.Len()).Msg("built rom catalog")
	emu.storeCatalog(c)
	return c, nil
}
