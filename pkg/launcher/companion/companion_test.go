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

package companion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/esideproject/eside/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitForTicker(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
}

func TestTrack_TerminatesCompanionWhenEmulatorExits(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	terminated := make(chan int, 1)
	tr := NewWithTerminator(clock, func(pid int) error {
		terminated <- pid
		return nil
	})
	defer tr.Stop()

	emu := mocks.NewFakeProcess(100)
	comp := mocks.NewFakeProcess(200)
	tr.Track(emu, comp)
	waitForTicker(t, clock)

	clock.Advance(PollInterval)
	select {
	case pid := <-terminated:
		t.Fatalf("companion %d terminated while emulator running", pid)
	case <-time.After(50 * time.Millisecond):
	}

	emu.Exit(nil)
	clock.Advance(PollInterval)

	select {
	case pid := <-terminated:
		assert.Equal(t, 200, pid)
	case <-time.After(2 * time.Second):
		t.Fatal("companion was not terminated")
	}
}

func TestTrack_FallsBackToKill(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	tr := NewWithTerminator(clock, func(int) error { return errors.New("denied") })
	defer tr.Stop()

	emu := mocks.NewFakeProcess(1)
	comp := mocks.NewFakeProcess(2)
	emu.Exit(nil)

	tr.Track(emu, comp)
	waitForTicker(t, clock)
	clock.Advance(PollInterval)

	select {
	case <-comp.Done():
		assert.True(t, comp.Killed())
	case <-time.After(2 * time.Second):
		t.Fatal("companion was not killed")
	}
}

func TestTrack_CompanionExitsFirst(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	called := false
	tr := NewWithTerminator(clock, func(int) error {
		called = true
		return nil
	})

	emu := mocks.NewFakeProcess(1)
	comp := mocks.NewFakeProcess(2)
	tr.Track(emu, comp)
	waitForTicker(t, clock)

	comp.Exit(nil)
	tr.Stop()

	assert.False(t, called)
	assert.False(t, comp.Killed())
}

func TestStop_TerminatesCompanionOfExitedEmulator(t *testing.T) {
	t.Parallel()

	terminated := make(chan int, 1)
	tr := NewWithTerminator(clockwork.NewFakeClock(), func(pid int) error {
		terminated <- pid
		return nil
	})

	emu := mocks.NewFakeProcess(10)
	comp := mocks.NewFakeProcess(20)
	tr.Track(emu, comp)

	emu.Exit(nil)
	tr.Stop()

	select {
	case pid := <-terminated:
		assert.Equal(t, 20, pid)
	default:
		t.Fatal("companion was not terminated on stop")
	}
}

func TestStop_Idempotent(t *testing.T) {
	t.Parallel()

	tr := New(clockwork.NewFakeClock())
	tr.Track(mocks.NewFakeProcess(1), mocks.NewFakeProcess(2))

	tr.Stop()
	tr.Stop()
}

func TestTerminateTree_InvalidPid(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, TerminateTree(0), ErrProcessNotFound)
	assert.ErrorIs(t, TerminateTree(-5), ErrProcessNotFound)
}
