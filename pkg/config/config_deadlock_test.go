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

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestEmulatorsFile_NoRecursiveLock guards against EmulatorsFile taking the
// read lock again through Path. With -tags=deadlock a recursive lock panics.
func TestEmulatorsFile_NoRecursiveLock(t *testing.T) {
	t.Parallel()

	cfg := &Instance{cfgPath: filepath.Join("/cfg", CfgFile)}

	done := make(chan struct{})
	go func() {
		_ = cfg.EmulatorsFile()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("EmulatorsFile() deadlocked")
	}
}

func TestInstance_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)

	done := make(chan struct{})
	for i := range 10 {
		go func() {
			for range 100 {
				if i%2 == 0 {
					cfg.SetEmulatorsFile("other.ini")
				}
				_ = cfg.EmulatorsFile()
				_ = cfg.UnpackCommand()
				_ = cfg.HideWindow()
			}
			done <- struct{}{}
		}()
	}

	for range 10 {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent access deadlocked")
		}
	}
}
