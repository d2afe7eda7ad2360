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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/esideproject/eside/pkg/cli"
	"github.com/esideproject/eside/pkg/config"
	"github.com/esideproject/eside/pkg/launcher"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	flag.Parse()

	if flags.Pre(os.Stdout) {
		return nil
	}

	var logWriters []io.Writer
	if *flags.Debug {
		logWriters = []io.Writer{os.Stderr}
	}

	configDir := filepath.Join(xdg.ConfigHome, config.AppName)
	logDir := filepath.Join(xdg.StateHome, config.AppName, config.LogsDir)

	cfg, err := cli.Setup(configDir, logDir, *flags.Debug, logWriters)
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	eng, err := cli.LoadEngine(cfg, *flags.Config, launcher.Options{})
	if err != nil {
		log.Error().Err(err).Msg("error loading emulators")
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.Run(ctx, eng, flags, os.Stdout)
}
