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

//go:build deadlock

// Package syncutil holds the mutexes used by the engine's caches and the
// settings file. Build with -tags=deadlock to swap in go-deadlock.
package syncutil

import (
	"os"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// TimeoutEnv overrides how long a lock may be waited on before the
// detector reports it, as a Go duration.
const TimeoutEnv = "ESIDE_DEADLOCK_TIMEOUT"

const DeadlockEnabled = true

func init() {
	deadlock.Opts.DeadlockTimeout = 30 * time.Second
	if d, err := time.ParseDuration(os.Getenv(TimeoutEnv)); err == nil && d > 0 {
		deadlock.Opts.DeadlockTimeout = d
	}
}

// Mutex guards per-emulator lookup caches.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex guards the settings instance.
type RWMutex struct {
	deadlock.RWMutex
}
