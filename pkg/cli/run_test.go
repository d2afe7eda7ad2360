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
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/esideproject/eside/pkg/config"
	"github.com/esideproject/eside/pkg/helpers"
	"github.com/esideproject/eside/pkg/launcher"
	testhelpers "github.com/esideproject/eside/pkg/testing/helpers"
	"github.com/esideproject/eside/pkg/testing/mocks"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testEmulators = `
[emulator.stella]
system_name = Atari 2600
emulator_name = Stella
exe_paths = bin/stella
roms_path = roms/a2600
run_pattern = "{exe_path}" -fullscreen 1 "{rom_path}"
run_pattern_roms_extensions = a26

[emulator.prosystem]
system_name = Atari 7800
exe_paths = bin/prosystem
roms_path = roms/a7800
run_pattern = "{exe_path}" "{rom_path}"
run_pattern_roms_extensions = a78
`

type cliFixture struct {
	eng      *launcher.Engine
	executor *mocks.MockCommandExecutor
	root     string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	h := testhelpers.NewOSFS()
	require.NoError(t, h.CreateExecutable(filepath.Join(root, "bin", "stella")))
	require.NoError(t, h.CreateRomTree(root, map[string]string{
		"roms/a2600/Pitfall.a26":    "",
		"roms/a2600/River Raid.a26": "",
		"roms/a7800/Joust.a78":      "",
	}))
	require.NoError(t, h.CreateEmulatorsFile(filepath.Join(root, "cfg", "eside.ini"), testEmulators))

	cfg, err := config.NewConfig(filepath.Join(root, "cfg"), config.BaseDefaults)
	require.NoError(t, err)

	executor := &mocks.MockCommandExecutor{}
	fs := afero.NewOsFs()
	eng, err := LoadEngine(cfg, "", launcher.Options{
		Fs:       fs,
		Executor: executor,
		Resolver: &helpers.Resolver{
			Fs:       fs,
			Roots:    []string{root},
			LookPath: func(string) (string, error) { return "", errors.New("not found") },
		},
	})
	require.NoError(t, err)
	t.Cleanup(eng.Close)

	return &cliFixture{eng: eng, executor: executor, root: root}
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	fs := flag.NewFlagSet("eside", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := SetupFlags(fs)
	require.NoError(t, fs.Parse(args))

	var out bytes.Buffer
	err := Run(context.Background(), f.eng, flags, &out)
	return out.String(), err
}

func TestRun_NoAction(t *testing.T) {
	t.Parallel()

	f := newCLIFixture(t)
	_, err := f.run(t)
	assert.ErrorIs(t, err, ErrNoAction)
}

func TestRun_List(t *testing.T) {
	t.Parallel()

	f := newCLIFixture(t)

	out, err := f.run(t, "-list")
	require.NoError(t, err)
	assert.Contains(t, out, "Atari 2600 (Stella)")
	assert.Contains(t, out, filepath.Join(f.root, "bin", "stella"))
	assert.NotContains(t, out, "prosystem")

	out, err = f.run(t, "-list", "-all")
	require.NoError(t, err)
	assert.Contains(t, out, "prosystem")
	assert.Contains(t, out, "Atari 7800")
}

func TestRun_Roms(t *testing.T) {
	t.Parallel()

	f := newCLIFixture(t)

	out, err := f.run(t, "-roms", "stella")
	require.NoError(t, err)
	assert.Contains(t, out, "Pitfall")
	assert.Contains(t, out, filepath.Join(f.root, "roms", "a2600", "River Raid.a26"))

	_, err = f.run(t, "-roms", "intellivision")
	assert.ErrorIs(t, err, launcher.ErrUnknownEmulator)
}

func TestRun_RomsEmptyCatalog(t *testing.T) {
	t.Parallel()

	f := newCLIFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.root, "roms", "a7800", "Joust.a78")))

	out, err := f.run(t, "-roms", "prosystem")
	require.NoError(t, err)
	assert.Contains(t, out, "No ROMs found for Atari 7800")
	assert.Contains(t, out, "*.a78")
}

func TestRun_LaunchDryRun(t *testing.T) {
	t.Parallel()

	f := newCLIFixture(t)
	rom := filepath.Join(f.root, "roms", "a2600", "Pitfall.a26")

	out, err := f.run(t, "-launch", "stella", "-rom", rom, "-dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "-fullscreen 1")
	assert.Contains(t, out, "Pitfall.a26")
	f.executor.AssertNotCalled(t, "Spawn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_LaunchByTitle(t *testing.T) {
	t.Parallel()

	f := newCLIFixture(t)
	proc := mocks.NewFakeProcess(100)
	proc.Exit(nil)
	f.executor.On("Spawn", mock.Anything, mock.Anything, filepath.Join(f.root, "bin", "stella"), []string{
		"-fullscreen", "1", filepath.Join(f.root, "roms", "a2600", "River Raid.a26"),
	}).Return(proc, nil)

	_, err := f.run(t, "-launch", "stella", "-title", "river rade")
	require.NoError(t, err)
	f.executor.AssertExpectations(t)
}

func TestRun_LaunchErrors(t *testing.T) {
	t.Parallel()

	f := newCLIFixture(t)

	_, err := f.run(t, "-launch", "stella")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-rom or -title")

	_, err = f.run(t, "-launch", "stella", "-title", "qqqqqqqq")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no title matching")

	out, err := f.run(t, "-launch", "prosystem", "-rom", filepath.Join(f.root, "roms", "a7800", "Joust.a78"))
	require.ErrorIs(t, err, launcher.ErrNoExecutable)
	assert.Contains(t, out, "No executable found for Atari 7800")
	assert.Contains(t, out, "bin/prosystem")
}

func TestRun_FrontEndExitError(t *testing.T) {
	t.Parallel()

	f := newCLIFixture(t)
	crash := errors.New("exit status 139")
	proc := mocks.NewFakeProcess(200)
	proc.Exit(crash)
	f.executor.On("Spawn", mock.Anything, mock.Anything, filepath.Join(f.root, "bin", "stella"), []string{}).
		Return(proc, nil)

	_, err := f.run(t, "-frontend", "stella")
	assert.ErrorIs(t, err, crash)
}

func TestFlags_PreVersion(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("eside", flag.ContinueOnError)
	flags := SetupFlags(fs)
	require.NoError(t, fs.Parse([]string{"-version"}))

	var out bytes.Buffer
	assert.True(t, flags.Pre(&out))
	assert.Contains(t, out.String(), config.AppName+" v"+config.AppVersion)

	fs = flag.NewFlagSet("eside", flag.ContinueOnError)
	flags = SetupFlags(fs)
	require.NoError(t, fs.Parse([]string{"-list"}))
	assert.False(t, flags.Pre(&out))
}

func TestLoadEngine_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)
	iniPath := filepath.Join(dir, "custom.ini")
	require.NoError(t, os.WriteFile(iniPath, []byte("[emulator.only]\nsystem_name = Only\nexe_paths = only\n"), 0o600))

	eng, err := LoadEngine(cfg, iniPath, launcher.Options{Fs: afero.NewMemMapFs()})
	require.NoError(t, err)
	defer eng.Close()

	require.Len(t, eng.Emulators(), 1)
	assert.Equal(t, "only", eng.Emulators()[0].ID())
}

func TestLoadEngine_InvalidFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)
	iniPath := filepath.Join(dir, "bad.ini")
	require.NoError(t, os.WriteFile(iniPath, []byte("[emulator.bad]\nemulator_name = No System\n"), 0o600))

	_, err = LoadEngine(cfg, iniPath, launcher.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.ini")
}

//nolint:paralleltest // replaces the global logger
func TestSetup(t *testing.T) {
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	dir := t.TempDir()
	var buf bytes.Buffer

	cfg, err := Setup(filepath.Join(dir, "cfg"), filepath.Join(dir, "logs"), false, []io.Writer{&buf})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "cfg", config.CfgFile))
	assert.FileExists(t, filepath.Join(dir, "logs", helpers.LogFile))
	assert.Contains(t, buf.String(), "eside starting")
	assert.Equal(t, filepath.Join(dir, "cfg", config.EmulatorsFile), cfg.EmulatorsFile())
}
