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

// Package precommands runs the preparation steps declared for a launch
// variant before its run pattern is expanded.
package precommands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/esideproject/eside/pkg/emulators"
	"github.com/esideproject/eside/pkg/helpers"
	"github.com/esideproject/eside/pkg/helpers/command"
	"github.com/esideproject/eside/pkg/runpattern"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// UnpackDir is the directory under a ROM root that holds unpacked
// archives. It starts with a dot so catalog scans skip it.
const UnpackDir = ".eside_unpacked"

// Placeholders of the extractor command template.
const (
	KeyArchive = "archive"
	KeyOutput  = "output"
)

var (
	ErrUnknownCommand = errors.New("unknown pre-command")
	ErrBadArguments   = errors.New("wrong number of pre-command arguments")
	ErrNoUnpacker     = errors.New("no unpack command configured")
)

// Pipeline executes pre-commands against a launch context.
type Pipeline struct {
	Fs       afero.Fs
	Executor command.Executor
	// UnpackCommand is the extractor argv template using {archive} and
	// {output}.
	UnpackCommand []string
}

func NewPipeline(afs afero.Fs, exec command.Executor, unpackCommand []string) *Pipeline {
	return &Pipeline{
		Fs:            afs,
		Executor:      exec,
		UnpackCommand: slices.Clone(unpackCommand),
	}
}

// Run executes cmds in order. Each step may add keys to vars that later
// steps and the run pattern use. The first failing step stops the run.
func (p *Pipeline) Run(ctx context.Context, cmds []emulators.PreCommand, vars runpattern.Context) error {
	for i, pc := range cmds {
		if err := p.RunOne(ctx, pc, vars); err != nil {
			return fmt.Errorf("pre-command %d (%s): %w", i, pc.Op, err)
		}
	}
	return nil
}

var arity = map[string]int{
	emulators.OpCopy:          2,
	emulators.OpUnpack:        1,
	emulators.OpDelete:        1,
	emulators.OpWrite:         2,
	emulators.OpWriteBasename: 3,
}

// RunOne executes a single pre-command.
func (p *Pipeline) RunOne(ctx context.Context, pc emulators.PreCommand, vars runpattern.Context) error {
	want, ok := arity[pc.Op]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, pc.Op)
	}
	if len(pc.Args) != want {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrBadArguments, pc.Op, want, len(pc.Args))
	}

	if pc.Op == emulators.OpWriteBasename {
		// the line is formatted after write_basename is bound
		return p.writeBasename(pc.Args, vars)
	}

	args, err := runpattern.ExpandArgs(pc.Args, vars)
	if err != nil {
		return err
	}

	switch pc.Op {
	case emulators.OpCopy:
		return p.copy(args[0], args[1])
	case emulators.OpUnpack:
		return p.unpack(ctx, args[0], vars)
	case emulators.OpDelete:
		log.Debug().Str("path", args[0]).Msg("pre-command delete")
		return helpers.RemoveIfExists(p.Fs, args[0])
	default:
		log.Debug().Str("path", args[0]).Msg("pre-command write")
		return helpers.AppendLine(p.Fs, args[0], args[1])
	}
}

func (p *Pipeline) copy(srcGlob, dst string) error {
	matches, err := afero.Glob(p.Fs, srcGlob)
	if err != nil {
		return fmt.Errorf("invalid copy source %q: %w", srcGlob, err)
	}
	var files []string
	for _, m := range matches {
		if info, err := p.Fs.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		log.Debug().Str("source", srcGlob).Msg("pre-command copy matched nothing")
		return nil
	}

	if strings.HasSuffix(dst, "/") || strings.HasSuffix(dst, string(os.PathSeparator)) {
		n, err := helpers.CopyIntoDir(p.Fs, files, dst, false)
		if err != nil {
			return err
		}
		log.Debug().Int("copied", n).Str("dir", dst).Msg("pre-command copy")
		return nil
	}

	log.Debug().Str("source", files[0]).Str("dest", dst).Msg("pre-command copy")
	return helpers.CopyFile(p.Fs, files[0], dst)
}

// UnpackPath is where an archive is unpacked: a directory named after the
// archive stem under the ROM root's unpack directory.
func UnpackPath(romsPath, archive string) string {
	if romsPath == "" {
		romsPath = filepath.Dir(archive)
	}
	base := filepath.Base(archive)
	return filepath.Join(romsPath, UnpackDir, strings.TrimSuffix(base, filepath.Ext(base)))
}

func (p *Pipeline) unpack(ctx context.Context, archive string, vars runpattern.Context) error {
	out := UnpackPath(vars[runpattern.KeyRomsPath], archive)

	if exists, _ := afero.DirExists(p.Fs, out); exists {
		log.Debug().Str("dir", out).Msg("archive already unpacked")
		vars[runpattern.KeyUnpackedRomPath] = out
		return nil
	}

	if len(p.UnpackCommand) == 0 {
		return ErrNoUnpacker
	}
	argv, err := runpattern.ExpandArgs(p.UnpackCommand, runpattern.Context{
		KeyArchive: archive,
		KeyOutput:  out,
	})
	if err != nil {
		return fmt.Errorf("invalid unpack command: %w", err)
	}

	if err := p.Fs.MkdirAll(out, 0o750); err != nil {
		return fmt.Errorf("failed to create unpack directory: %w", err)
	}

	log.Info().Str("archive", archive).Str("dir", out).Msg("unpacking archive")
	err = p.Executor.Run(ctx, argv[0], argv[1:]...)
	switch {
	case err == nil:
	case command.IsExitError(err):
		log.Warn().Err(err).Str("archive", archive).Msg("extractor reported an error, continuing")
	default:
		if rmErr := p.Fs.RemoveAll(out); rmErr != nil {
			log.Warn().Err(rmErr).Str("dir", out).Msg("failed to clean up unpack directory")
		}
		return fmt.Errorf("failed to unpack %s: %w", archive, err)
	}

	vars[runpattern.KeyUnpackedRomPath] = out
	return nil
}

func (p *Pipeline) writeBasename(args []string, vars runpattern.Context) error {
	pattern, err := runpattern.Format(args[0], vars)
	if err != nil {
		return err
	}
	target, err := runpattern.Format(args[1], vars)
	if err != nil {
		return err
	}

	matches, err := afero.Glob(p.Fs, pattern)
	if err != nil {
		return fmt.Errorf("invalid write_basename pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		log.Warn().Str("pattern", pattern).Msg("write_basename matched nothing, skipping")
		return nil
	}

	vars[runpattern.KeyWriteBasename] = filepath.Base(matches[0])
	line, err := runpattern.Format(args[2], vars)
	if err != nil {
		return err
	}

	log.Debug().Str("path", target).Str("line", line).Msg("pre-command write_basename")
	return helpers.AppendLine(p.Fs, target, line)
}

// FirstSubdir returns the first subdirectory of dir by name.
func FirstSubdir(afs afero.Fs, dir string) (string, bool) {
	entries, err := afero.ReadDir(afs, dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}
