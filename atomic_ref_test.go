/*
* MIT License
*
* Copyright (c) 2017 Mike Taghavi <mitghi[at]me.com>
*
* Permission is hereby granted, free of charge, to any person obtaining a copy
* of this software and associated documentation files (the "Software"), to deal
* in the Software without restriction, including without limitation the rights
* to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
* copies of the Software, and to permit persons to whom the Software is
* furnished to do so, subject to the following conditions:
*
* The above copyright notice and this permission notice shall be included in all
* copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
* IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
* FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
* AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
* LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
* OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
* SOFTWARE.
 */

package mcas

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 1: uncontended success.
func TestCAS2UncontendedSuccess(t *testing.T) {
	a := NewAtomicUint(0)
	b := NewAtomicUint(0)

	require.True(t, CAS2(Uint(a, 0, 7), Uint(b, 0, 9)))
	require.Equal(t, uint64(7), a.Load())
	require.Equal(t, uint64(9), b.Load())
}

// Scenario 2: failure on second word leaves both words untouched.
func TestCAS2FailureOnSecondWord(t *testing.T) {
	a := NewAtomicUint(0)
	b := NewAtomicUint(5)

	require.False(t, CAS2(Uint(a, 0, 7), Uint(b, 0, 9)))
	require.Equal(t, uint64(0), a.Load())
	require.Equal(t, uint64(5), b.Load())
}

// Scenario 3: re-attempt with stale expected values fails without mutating
// the values a prior successful CAS2 installed.
func TestCAS2ReattemptAfterStaleExpected(t *testing.T) {
	a := NewAtomicUint(0)
	b := NewAtomicUint(0)

	require.True(t, CAS2(Uint(a, 0, 7), Uint(b, 0, 9)))

	require.False(t, CAS2(Uint(a, 0, 1), Uint(b, 0, 1)))
	require.Equal(t, uint64(7), a.Load())
	require.Equal(t, uint64(9), b.Load())
}

// Boundary: both entries of a CAS2 name the same cell.
func TestCAS2SameCellBothEntries(t *testing.T) {
	a := NewAtomicUint(3)

	require.True(t, CAS2(Uint(a, 3, 3), Uint(a, 3, 4)))
	// Both entries reference the same cell, so during finalize the first
	// entry's CAS replaces the descriptor with its .new and the second
	// entry's CAS no longer finds the descriptor and fails. The cell ends up
	// holding one of the two .new values, not the pre-CAS value.
	final := a.Load()
	require.True(t, final == 3 || final == 4)
}

func TestCASNPanicsOnBadArity(t *testing.T) {
	a := NewAtomicUint(0)
	require.Panics(t, func() {
		CASN(Uint(a, 0, 1))
	})

	entries := make([]CasEntry, MaxEntries+1)
	for i := range entries {
		entries[i] = Uint(NewAtomicUint(0), 0, 1)
	}
	require.Panics(t, func() {
		CASN(entries...)
	})
}

func TestAtomicRefLoadAndCAS(t *testing.T) {
	type payload struct{ n int }

	r := NewAtomicRef(payload{n: 1})
	require.Equal(t, 1, r.Load().n)

	other := &payload{n: 2}
	ok := CAS2(Ref(r, r.Load(), other), Uint(NewAtomicUint(0), 0, 0))
	require.True(t, ok)
	require.Equal(t, other, r.Load())
}

// Scenario 4: counter race. 8 goroutines x 100,000 iterations each
// incrementing (a, b) via cas2; afterward a == b == 800000.
func TestCAS2CounterRace(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping counter race stress test in -short mode")
	}

	const goroutines = 8
	const iterations = 100000

	a := NewAtomicUint(0)
	b := NewAtomicUint(0)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				for {
					av := a.Load()
					bv := b.Load()
					if CAS2(Uint(a, av, av+1), Uint(b, bv, bv+1)) {
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(goroutines*iterations), a.Load())
	require.Equal(t, uint64(goroutines*iterations), b.Load())
}

// Scenario 6: load-during-op. A contended writer retries cas2 on (a,b)
// while a reader spins on load(&a); every observed value is either the
// pre- or post-state, never a descriptor-tagged word.
func TestLoadDuringContendedCAS2(t *testing.T) {
	a := NewAtomicUint(0)
	b := NewAtomicUint(0)

	const rounds = 5000
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(stop)
		for i := 0; i < rounds; i++ {
			for {
				if CAS2(Uint(a, 0, 1), Uint(b, 0, 1)) {
					break
				}
				// already flipped by a previous round; flip back so the
				// next round has something to contend over.
				if !CAS2(Uint(a, 1, 0), Uint(b, 1, 0)) {
					break
				}
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			v := a.Load()
			if v != 0 && v != 1 {
				t.Errorf("load observed non-value word: %v", v)
				return
			}
		}
	}()

	wg.Wait()
}
