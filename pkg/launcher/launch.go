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
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/esideproject/eside/pkg/emulators"
	"github.com/esideproject/eside/pkg/helpers"
	"github.com/esideproject/eside/pkg/helpers/command"
	"github.com/esideproject/eside/pkg/precommands"
	"github.com/esideproject/eside/pkg/roms"
	"github.com/esideproject/eside/pkg/runpattern"
	"github.com/rs/zerolog/log"
)

// Plan is a fully prepared launch: the argument vector and the context it
// was expanded from.
type Plan struct {
	Vars    runpattern.Context
	Variant *emulators.LaunchVariant
	Dir     string
	Argv    []string
}

// String is the plan as a shell-quoted command line.
func (p *Plan) String() string {
	return runpattern.Quote(p.Argv)
}

// baseContext holds the keys every template of an emulator can use.
func (e *Engine) baseContext(emu *Emulator, exe string) (runpattern.Context, error) {
	vars := runpattern.Context{
		runpattern.KeyFirmwarePath: helpers.NormalizeConfigPath(e.global.FirmwarePath),
	}
	vars.SetExe(exe)
	if root, ok := e.RomsPath(emu); ok {
		vars[runpattern.KeyRomsPath] = root
	} else {
		vars[runpattern.KeyRomsPath] = ""
	}

	// custom variables may refer to the keys above but not to each other
	base := vars.Clone()
	for name, value := range emu.Def.Vars {
		v, err := runpattern.Format(value, base)
		if err != nil {
			return nil, fmt.Errorf("var_%s: %w", name, err)
		}
		vars[name] = v
	}
	return vars, nil
}

// romContext adds the per-file keys: the rom_* values, the title and any
// variables from the ROM root's override file.
func (e *Engine) romContext(emu *Emulator, vars runpattern.Context, romPath string) error {
	vars.SetRom(romPath)
	vars[runpattern.KeyRomTitle] = vars[runpattern.KeyRomName]
	if c := emu.cachedCatalog(); c != nil {
		if title, ok := c.Title(romPath); ok {
			vars[runpattern.KeyRomTitle] = title
		}
	}

	root := vars[runpattern.KeyRomsPath]
	if root == "" {
		return nil
	}
	rel, err := filepath.Rel(root, romPath)
	if err != nil || !helpers.PathHasPrefix(romPath, root) {
		return nil
	}
	override, err := roms.LoadOverride(root)
	if err != nil {
		return err
	}
	if rec, ok := override.Lookup(rel); ok {
		vars.Merge(rec.Vars)
		if rec.Title != "" {
			vars[runpattern.KeyRomTitle] = rec.Title
		}
	}
	return nil
}

// PrepareLaunch resolves everything needed to launch romPath and runs the
// variant's pre-commands, but doesn't start the emulator.
func (e *Engine) PrepareLaunch(ctx context.Context, emu *Emulator, romPath string) (*Plan, error) {
	fail := func(err error) (*Plan, error) {
		return nil, &LaunchError{Emulator: emu.ID(), Path: romPath, Err: err}
	}

	exe, ok := e.ExecutablePath(emu)
	if !ok {
		return fail(ErrNoExecutable)
	}
	variant, ok := emu.Def.VariantFor(romPath)
	if !ok {
		return fail(ErrNoLaunchVariant)
	}

	vars, err := e.baseContext(emu, exe)
	if err != nil {
		return fail(err)
	}
	if err := e.romContext(emu, vars, romPath); err != nil {
		return fail(err)
	}

	if err := e.pipeline.Run(ctx, variant.PreCommands, vars); err != nil {
		return fail(err)
	}

	if runpattern.References(variant.Template, runpattern.KeyUnpackedRomFirstSubdir) {
		if dir, ok := precommands.FirstSubdir(e.fs, vars[runpattern.KeyUnpackedRomPath]); ok {
			vars[runpattern.KeyUnpackedRomFirstSubdir] = dir
		} else {
			vars[runpattern.KeyUnpackedRomFirstSubdir] = vars[runpattern.KeyUnpackedRomPath]
		}
	}

	siblings := roms.FindSiblings(e.fs, romPath)
	argv, err := runpattern.Expand(variant.Template, vars, romPath, siblings)
	if err != nil {
		return fail(err)
	}
	if len(argv) == 0 {
		return fail(fmt.Errorf("%s expands to an empty command", variant.Key))
	}

	return &Plan{
		Argv:    argv,
		Dir:     vars[runpattern.KeyExeDir],
		Vars:    vars,
		Variant: variant,
	}, nil
}

// LaunchRom prepares and starts romPath. It returns as soon as the process
// is running. When a companion command is configured it is started too and
// stopped once the emulator exits.
func (e *Engine) LaunchRom(ctx context.Context, emu *Emulator, romPath string) (command.Process, error) {
	plan, err := e.PrepareLaunch(ctx, emu, romPath)
	if err != nil {
		return nil, err
	}

	proc, err := e.spawn(ctx, plan)
	if err != nil {
		return nil, &LaunchError{Emulator: emu.ID(), Path: romPath, Err: err}
	}

	if e.global.CompanionCommand != "" {
		e.startCompanion(ctx, plan, proc)
	}

	return proc, nil
}

// LaunchFrontEnd starts the emulator's own user interface.
func (e *Engine) LaunchFrontEnd(ctx context.Context, emu *Emulator) (command.Process, error) {
	fail := func(err error) (command.Process, error) {
		return nil, &LaunchError{Emulator: emu.ID(), Err: err}
	}

	exe, ok := e.FrontEndPath(emu)
	if !ok {
		return fail(ErrNoExecutable)
	}
	vars, err := e.baseContext(emu, exe)
	if err != nil {
		return fail(err)
	}
	argv, err := runpattern.Expand(emu.Def.GUIRunPattern, vars, "", nil)
	if err != nil {
		return fail(err)
	}
	if len(argv) == 0 {
		return fail(errors.New("gui_run_pattern expands to an empty command"))
	}

	proc, err := e.spawn(ctx, &Plan{Argv: argv, Dir: vars[runpattern.KeyExeDir], Vars: vars})
	if err != nil {
		return fail(err)
	}
	return proc, nil
}

func (e *Engine) spawn(ctx context.Context, plan *Plan) (command.Process, error) {
	log.Info().Str("command", plan.String()).Str("dir", plan.Dir).Msg("launching")
	proc, err := e.executor.Spawn(ctx, command.StartOptions{
		Dir:        plan.Dir,
		HideWindow: e.hideWindow,
	}, plan.Argv[0], plan.Argv[1:]...)
	if err != nil {
		return nil, fmt.Errorf("failed to start emulator: %w", err)
	}
	return proc, nil
}

// startCompanion runs the global companion command next to an emulator.
// Failures are logged only, the emulator keeps running.
func (e *Engine) startCompanion(ctx context.Context, plan *Plan, emuProc command.Process) {
	argv, err := runpattern.Expand(e.global.CompanionCommand, plan.Vars, plan.Vars[runpattern.KeyRomPath], nil)
	if err != nil || len(argv) == 0 {
		log.Warn().Err(err).Msg("invalid companion command")
		return
	}
	log.Debug().Str("command", runpattern.Quote(argv)).Msg("starting companion")
	proc, err := e.executor.Spawn(ctx, command.StartOptions{HideWindow: e.hideWindow}, argv[0], argv[1:]...)
	if err != nil {
		log.Warn().Err(err).Msg("failed to start companion")
		return
	}
	e.tracker.Track(emuProc, proc)
}
