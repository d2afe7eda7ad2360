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

package syncutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMutex_SerializesWriters(t *testing.T) {
	t.Parallel()

	var (
		mu    Mutex
		wg    sync.WaitGroup
		count int
	)
	for range 20 {
		wg.Go(func() {
			for range 100 {
				mu.Lock()
				count++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 2000, count)
}

func TestRWMutex_ReadersShareLock(t *testing.T) {
	t.Parallel()

	var mu RWMutex
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		mu.RLock()
		close(held)
		<-release
		mu.RUnlock()
	}()
	<-held

	second := make(chan struct{})
	go func() {
		mu.RLock()
		mu.RUnlock()
		close(second)
	}()

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("second reader blocked")
	}
	close(release)

	mu.Lock()
	mu.Unlock() //nolint:staticcheck // empty critical section
}
