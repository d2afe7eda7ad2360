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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/esideproject/eside/pkg/helpers/command"
	"github.com/esideproject/eside/pkg/launcher"
	"github.com/rs/zerolog/log"
)

// Run performs the action selected by the flags.
func Run(ctx context.Context, eng *launcher.Engine, f *Flags, out io.Writer) error {
	switch {
	case *f.List:
		return listEmulators(eng, f, out)
	case *f.Roms != "":
		return listRoms(eng, *f.Roms, out)
	case *f.Launch != "":
		return launchRom(ctx, eng, f, out)
	case *f.FrontEnd != "":
		return launchFrontEnd(ctx, eng, *f.FrontEnd, out)
	default:
		return ErrNoAction
	}
}

func listEmulators(eng *launcher.Engine, f *Flags, out io.Writer) error {
	filter := eng.DefaultFilter()
	if *f.All {
		filter.ShowWithoutExecutable = true
		filter.ShowWithoutRoms = true
	}
	if *f.SortSystem {
		filter.SortBySystemName = true
	}

	list, err := eng.ListEmulators(filter)
	if err != nil {
		log.Warn().Err(err).Msg("some emulators were skipped")
		_, _ = fmt.Fprintf(out, "Warning: %v\n", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tROMS\tEXECUTABLE")
	for _, emu := range list {
		exe, ok := eng.ExecutablePath(emu)
		if !ok {
			exe = "-"
		}
		roms := "-"
		if c, err := eng.RomCatalog(emu, true); err == nil && c != nil {
			roms = strconv.Itoa(c.Len())
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", emu.ID(), emu.Def.DisplayName(), roms, exe)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write list: %w", err)
	}
	return nil
}

func listRoms(eng *launcher.Engine, id string, out io.Writer) error {
	emu, err := eng.Emulator(id)
	if err != nil {
		return err
	}

	catalog, err := eng.RomCatalog(emu, true)
	if err != nil {
		return err
	}
	if catalog.Len() == 0 {
		root, _ := eng.RomsPath(emu)
		_, _ = fmt.Fprint(out, launcher.NoRomsMessage(emu, root))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, entry := range catalog.Entries() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", entry.Title, entry.Path)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// romPath picks the file to launch from -rom or -title.
func romPath(eng *launcher.Engine, emu *launcher.Emulator, f *Flags) (string, error) {
	if *f.Rom != "" {
		return *f.Rom, nil
	}
	if *f.Title == "" {
		return "", errors.New("-launch needs -rom or -title")
	}

	matches, err := eng.FindRom(emu, *f.Title)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no title matching %q", *f.Title)
	}
	best := matches[0]
	if best.Similarity < 1 {
		log.Info().
			Str("query", *f.Title).
			Str("title", best.Title).
			Float32("similarity", best.Similarity).
			Msg("using closest title")
	}
	return best.Path, nil
}

func launchRom(ctx context.Context, eng *launcher.Engine, f *Flags, out io.Writer) error {
	emu, err := eng.Emulator(*f.Launch)
	if err != nil {
		return err
	}
	path, err := romPath(eng, emu, f)
	if err != nil {
		return err
	}

	if *f.DryRun {
		plan, err := eng.PrepareLaunch(ctx, emu, path)
		if err != nil {
			return explain(emu, err, out)
		}
		_, _ = fmt.Fprintln(out, plan.String())
		return nil
	}

	proc, err := eng.LaunchRom(ctx, emu, path)
	if err != nil {
		return explain(emu, err, out)
	}
	return wait(ctx, proc)
}

func launchFrontEnd(ctx context.Context, eng *launcher.Engine, id string, out io.Writer) error {
	emu, err := eng.Emulator(id)
	if err != nil {
		return err
	}
	proc, err := eng.LaunchFrontEnd(ctx, emu)
	if err != nil {
		return explain(emu, err, out)
	}
	return wait(ctx, proc)
}

// explain prints the user guidance for a missing executable.
func explain(emu *launcher.Emulator, err error, out io.Writer) error {
	if errors.Is(err, launcher.ErrNoExecutable) {
		_, _ = fmt.Fprint(out, launcher.NoExecutableMessage(emu))
	}
	return err
}

// wait blocks until the emulator exits or ctx is cancelled. Cancelling
// leaves the emulator running.
func wait(ctx context.Context, proc command.Process) error {
	select {
	case <-proc.Done():
		if err := proc.Err(); err != nil {
			log.Info().Err(err).Int("pid", proc.Pid()).Msg("emulator exited with an error")
			return fmt.Errorf("emulator exited: %w", err)
		}
		log.Info().Int("pid", proc.Pid()).Msg("emulator exited")
		return nil
	case <-ctx.Done():
		log.Info().Int("pid", proc.Pid()).Msg("stopped waiting for emulator")
		return nil
	}
}
