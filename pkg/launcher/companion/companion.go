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

// Package companion ties the lifetime of an auxiliary process, such as an
// input remapper, to the emulator it was started with.
package companion

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/esideproject/eside/pkg/helpers/command"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrProcessNotFound is returned when the process to terminate is gone.
var ErrProcessNotFound = errors.New("process not found")

// PollInterval is how often the emulator handle is checked.
const PollInterval = time.Second

// Terminator ends a process and everything it started.
type Terminator func(pid int) error

// Tracker polls emulator handles and terminates their companions once the
// emulator exits.
type Tracker struct {
	clock     clockwork.Clock
	terminate Terminator
	done      chan struct{}
	wg        sync.WaitGroup
	interval  time.Duration
	stopOnce  sync.Once
}

func New(clock clockwork.Clock) *Tracker {
	return NewWithTerminator(clock, TerminateTree)
}

func NewWithTerminator(clock clockwork.Clock, terminate Terminator) *Tracker {
	return &Tracker{
		clock:     clock,
		terminate: terminate,
		interval:  PollInterval,
		done:      make(chan struct{}),
	}
}

// Track starts watching emulator in the background. It returns at once.
// Watching ends when the emulator exits, the companion exits on its own or
// the tracker is stopped.
func (t *Tracker) Track(emulator, companion command.Process) {
	t.wg.Add(1)
	go t.watch(emulator, companion)
}

// Stop ends all watches and waits for them. Companions of emulators that
// already exited are terminated, the others are left running.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
	t.wg.Wait()
}

func (t *Tracker) watch(emulator, companion command.Process) {
	defer t.wg.Done()

	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			if emulator.Exited() {
				t.stopCompanion(emulator, companion)
			}
			return
		case <-companion.Done():
			log.Debug().Int("pid", companion.Pid()).Msg("companion exited before emulator")
			return
		case <-ticker.Chan():
			if !emulator.Exited() {
				continue
			}
			t.stopCompanion(emulator, companion)
			return
		}
	}
}

func (t *Tracker) stopCompanion(emulator, companion command.Process) {
	if companion.Exited() {
		return
	}
	log.Debug().
		Int("emulator_pid", emulator.Pid()).
		Int("companion_pid", companion.Pid()).
		Msg("emulator exited, stopping companion")
	if err := t.terminate(companion.Pid()); err != nil {
		log.Debug().Err(err).Msg("failed to terminate companion tree, killing")
		if err := companion.Kill(); err != nil {
			log.Warn().Err(err).Int("pid", companion.Pid()).Msg("failed to kill companion")
		}
	}
}

// TerminateTree sends a terminate signal to a process and all of its
// descendants, children first.
func TerminateTree(pid int) error {
	if pid <= 0 || pid > math.MaxInt32 {
		return ErrProcessNotFound
	}
	procs := processTree(int32(pid))
	if len(procs) == 0 {
		return ErrProcessNotFound
	}
	var errs []error
	for _, proc := range procs {
		if err := proc.Terminate(); err != nil {
			log.Debug().Err(err).Int32("pid", proc.Pid).Msg("failed to terminate process")
			errs = append(errs, err)
		} else {
			log.Debug().Int32("pid", proc.Pid).Msg("sent terminate to process")
		}
	}
	return errors.Join(errs...)
}

// processTree returns the process and its descendants, descendants first.
func processTree(pid int32) []*process.Process {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}
	descendants := descendantsOf(proc)
	result := make([]*process.Process, 0, len(descendants)+1)
	result = append(result, descendants...)
	return append(result, proc)
}

func descendantsOf(proc *process.Process) []*process.Process {
	children, err := proc.Children()
	if err != nil || len(children) == 0 {
		return nil
	}
	descendants := make([]*process.Process, 0, len(children))
	for _, child := range children {
		descendants = append(descendants, descendantsOf(child)...)
		descendants = append(descendants, child)
	}
	return descendants
}
