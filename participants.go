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
	"errors"

	"github.com/twissel/mw-cas/internal/slot"
)

// MaxThreads bounds the number of concurrently in-flight top-level
// operations (default 1024). Raising it costs one atomic.Bool plus one
// rdcssSlot and one casnSlot of backing memory per unit; it does not need
// to track total goroutines ever created.
const MaxThreads = 1024

// MaxEntries bounds the number of words a single CASN call may span
// (default 8).
const MaxEntries = 8

// registry, rdcssSlots and casnSlots are the two lazily-populated
// process-wide singletons: the RDCSS per-lease slot table and the CASN
// per-lease slot table. They share one ThreadID namespace because a
// descriptor pointer's tag alone (TagRDCSS vs TagCASN) disambiguates
// which table a given tid indexes into.
var (
	registry   = slot.NewRegistry(MaxThreads)
	rdcssSlots = slot.NewTable[rdcssSlot](MaxThreads)
	casnSlots  = slot.NewTable[casnSlot](MaxThreads)
)

// lease is a goroutine's hold on one shared ThreadID for the duration of a
// single CASN call (its CASN descriptor slot) or a single help install loop
// (its RDCSS slot); each nested help call takes its own lease, and Load
// takes none except through the help calls it makes. Go has neither OS-thread pinning nor a goroutine-exit hook, so
// a slot is leased per call rather than pinned to a thread for process
// lifetime; this is sound because a slot's correctness depends only on
// its own seq counter, never on who currently holds it.
type lease struct {
	id slot.ThreadID
}

// acquireLease claims a free ThreadID. Panics with ErrRegistryExhausted if
// none is free — translated from internal/slot's ErrExhausted so a
// recovering caller outside this module has a sentinel it can actually
// import and compare against.
func acquireLease() (l lease) {
	defer func() {
		if r := recover(); r != nil {
			if errors.Is(r.(error), slot.ErrExhausted) {
				panic(ErrRegistryExhausted)
			}
			panic(r)
		}
	}()
	return lease{id: registry.Acquire()}
}

// release returns the ThreadID to the free pool. Must only be called once
// this lease's top-level operation has reached a terminal, finalized
// state — see atomic_ref.go/casn.go call sites.
func (l lease) release() {
	registry.Release(l.id)
}

func (l lease) rdcss() *rdcssSlot {
	return rdcssSlots.Get(l.id)
}

func (l lease) casn() *casnSlot {
	return casnSlots.Get(l.id)
}
