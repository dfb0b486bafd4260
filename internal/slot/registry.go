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

// Package slot implements a lease-scoped id registry and a cache-padded
// per-id storage table. A caller acquires a compact id, uses it to index
// its own per-id descriptor slot, and releases the id when done; the slot
// itself is never freed, only its occupancy bit toggles, so a slot can be
// handed to an unrelated operation immediately after release.
package slot

import (
	"errors"
	"sync/atomic"
)

// ErrExhausted is raised when every slot in a Registry is occupied.
// Callers panic with it rather than treating it as a recoverable error.
var ErrExhausted = errors.New("slot: registry exhausted, no free id")

// ThreadID is a compact identifier for a leased slot.
type ThreadID uint16

// MaxID is the largest ThreadID a 14-bit field can represent.
const MaxID = ThreadID(1<<14 - 1)

// SeqNumber is the monotonic, never-wrapping-in-practice counter owned by
// a single slot. Stored in 64 bits; only the low 48 are meaningful once
// packed into a descriptor pointer.
type SeqNumber uint64

// Registry is a fixed-size bitmap of slot occupancy. Acquire and Release
// are its only two operations, both single-word CAS.
type Registry struct {
	occupied []atomic.Bool
}

// NewRegistry builds a registry with the given number of slots.
func NewRegistry(size int) *Registry {
	return &Registry{occupied: make([]atomic.Bool, size)}
}

// Size returns the number of slots this registry can hand out.
func (r *Registry) Size() int {
	return len(r.occupied)
}

// Acquire scans for the first free slot, CAS-claims it, and returns its
// id. It panics with ErrExhausted if none is free.
func (r *Registry) Acquire() ThreadID {
	for i := range r.occupied {
		if r.occupied[i].CompareAndSwap(false, true) {
			return ThreadID(i)
		}
	}
	panic(ErrExhausted)
}

// Release returns id to the free pool. Safe to call only after every
// helper that might still be reading id's backing slot has observed a
// terminal, validated seq — the slot may be handed to an unrelated
// operation immediately afterward.
func (r *Registry) Release(id ThreadID) {
	r.occupied[id].Store(false)
}
