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

// Package cli is the command line front-end of the launcher engine.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/esideproject/eside/pkg/config"
	"github.com/esideproject/eside/pkg/helpers"
	"github.com/esideproject/eside/pkg/launcher"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNoAction = errors.New("nothing to do, see -help")

type Flags struct {
	List       *bool
	All        *bool
	SortSystem *bool
	Roms       *string
	Launch     *string
	Rom        *string
	Title      *string
	DryRun     *bool
	FrontEnd   *string
	Config     *string
	Version    *bool
	Debug      *bool
}

// SetupFlags defines the CLI flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		List: fs.Bool(
			"list",
			false,
			"list emulators with an executable and ROMs",
		),
		All: fs.Bool(
			"all",
			false,
			"with -list, include emulators missing an executable or ROMs",
		),
		SortSystem: fs.Bool(
			"sort-system",
			false,
			"with -list, sort by system name",
		),
		Roms: fs.String(
			"roms",
			"",
			"list the ROM catalog of an emulator",
		),
		Launch: fs.String(
			"launch",
			"",
			"launch a ROM with the given emulator, see -rom and -title",
		),
		Rom: fs.String(
			"rom",
			"",
			"with -launch, path of the ROM to launch",
		),
		Title: fs.String(
			"title",
			"",
			"with -launch, title to look up in the catalog",
		),
		DryRun: fs.Bool(
			"dry-run",
			false,
			"with -launch, print the command instead of running it",
		),
		FrontEnd: fs.String(
			"frontend",
			"",
			"open an emulator's own user interface",
		),
		Config: fs.String(
			"config",
			"",
			"emulator definitions file to use instead of the configured one",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging to stderr",
		),
	}
}

// Pre handles the flags which need no setup. It reports whether the
// program should exit.
func (f *Flags) Pre(out io.Writer) bool {
	if *f.Version {
		_, _ = fmt.Fprintf(out, "%s v%s\n", config.AppName, config.AppVersion)
		return true
	}
	return false
}

// Setup initializes logging and the settings file. Returns the settings.
func Setup(configDir, logDir string, debug bool, writers []io.Writer) (*config.Instance, error) {
	if err := helpers.InitLogging(logDir, debug, writers...); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(configDir, config.BaseDefaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if debug || cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Str("version", config.AppVersion).Str("config", cfg.Path()).Msg("eside starting")
	return cfg, nil
}

// LoadEngine reads the emulator definitions and creates the engine. An
// empty emulatorsFile means the one named in the settings.
//
//nolint:gocritic // options are copied and filled in
func LoadEngine(cfg *config.Instance, emulatorsFile string, opts launcher.Options) (*launcher.Engine, error) {
	if emulatorsFile == "" {
		emulatorsFile = cfg.EmulatorsFile()
	}
	sections, err := config.LoadSections(emulatorsFile)
	if err != nil {
		return nil, err
	}

	opts.UnpackCommand = cfg.UnpackCommand()
	opts.HideWindow = cfg.HideWindow()

	eng, err := launcher.Load(sections, opts)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", emulatorsFile, err)
	}
	return eng, nil
}
