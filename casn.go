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
	"sort"
	"sync/atomic"
	"unsafe"
)

// CasnStatus packs a descriptor instance's sequence number and its
// three-state outcome into one 64-bit word: [seq:56 | state:8]. It is
// stored inside an AtomicWord the same way an ordinary user value is,
// purely as a convenient shared 64-bit atomic cell — the RDCSS machinery
// never interprets its bits, it only compares them for equality.
type CasnStatus uint64

// Three-state outcome of a descriptor instance.
const (
	StatusUndecided uint8 = 0
	StatusSucceeded uint8 = 1
	StatusFailed    uint8 = 2
)

const statusStateBits = 8

func newCasnStatus(seq SeqNumber, state uint8) CasnStatus {
	return CasnStatus(uint64(seq)<<statusStateBits | uint64(state))
}

// Seq returns the descriptor-instance sequence number this status belongs
// to.
func (s CasnStatus) Seq() SeqNumber { return SeqNumber(uint64(s) >> statusStateBits) }

// State returns one of StatusUndecided/StatusSucceeded/StatusFailed.
func (s CasnStatus) State() uint8 { return uint8(uint64(s)) }

func (s CasnStatus) word() TaggedWord { return TaggedWord(s) }

func casnStatusFromWord(w TaggedWord) CasnStatus { return CasnStatus(w) }

// entry is one (address, expected, new) triple of a CASN operation.
type entry struct {
	addr     *AtomicWord
	expected TaggedWord
	new      TaggedWord
}

// entrySlot is one cache-padded-array-friendly storage cell for an entry,
// written only by the owning lease, read by any helper.
type entrySlot struct {
	addr     atomic.Pointer[AtomicWord]
	expected atomic.Uint64
	new      atomic.Uint64
}

// casnSlot holds one in-progress CASN descriptor instance: owned by
// whichever goroutine currently leases it, read by any helper.
type casnSlot struct {
	_ [sizeOfCacheLine]byte

	entries    [MaxEntries]entrySlot
	numEntries atomic.Uint64
	status     AtomicWord
}

func (s *casnSlot) currentStatus() CasnStatus {
	return casnStatusFromWord(s.status.Load())
}

// makeCasnDescriptor sorts entries by address — every helper that
// eventually reaches this descriptor walks entries in the same order, so
// two descriptors racing over the same pair of addresses can never
// deadlock each other waiting on one another in opposite orders —
// publishes them into the calling lease's slot with the same two-bump
// handshake RDCSS uses, and returns a tagged pointer to the new instance.
func makeCasnDescriptor(self lease, entries []entry) TaggedWord {
	if len(entries) > MaxEntries {
		panic(ErrTooManyEntries)
	}

	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return uintptr(unsafe.Pointer(sorted[i].addr)) < uintptr(unsafe.Pointer(sorted[j].addr))
	})

	s := self.casn()

	seq1 := s.currentStatus().Seq() + 1
	s.status.Store(newCasnStatus(seq1, StatusUndecided).word()) // publishes in-construction

	for i, e := range sorted {
		s.entries[i].addr.Store(e.addr)
		s.entries[i].expected.Store(uint64(e.expected))
		s.entries[i].new.Store(uint64(e.new))
	}
	s.numEntries.Store(uint64(len(sorted)))

	seq2 := s.currentStatus().Seq() + 1
	s.status.Store(newCasnStatus(seq2, StatusUndecided).word())

	return newDescriptorPtr(self.id, seq2).WithTag(TagCASN)
}

// casnSnapshot reads a CASN slot's entries, validating that the slot still
// names seq both before and after the read.
func casnSnapshot(tid ThreadID, seq SeqNumber) (entries []entry, ok bool) {
	s := casnSlots.Get(tid)

	before := s.currentStatus()
	if before.Seq() != seq {
		return nil, false
	}

	n := s.numEntries.Load()
	entries = make([]entry, n)
	for i := range entries {
		entries[i] = entry{
			addr:     s.entries[i].addr.Load(),
			expected: TaggedWord(s.entries[i].expected.Load()),
			new:      TaggedWord(s.entries[i].new.Load()),
		}
	}

	after := s.currentStatus()
	if after.Seq() != seq {
		return nil, false
	}
	return entries, true
}

// help drives the descriptor named by descPtr to a decision and finalizes
// it, returning whether it SUCCEEDED. isHelper distinguishes the
// descriptor's own owner (isHelper=false, installs entry 0 itself) from a
// goroutine merely assisting (isHelper=true, skips entry 0 — whoever owns
// the descriptor is presumed to already be installing it) and governs
// whether a stale snapshot is a silent false (helper) — never happens for
// an owner, who always has a live snapshot of its own just-published
// descriptor.
func help(descPtr TaggedWord, isHelper bool) bool {
	tid, seq := descPtr.TID(), descPtr.Seq()

	entries, ok := casnSnapshot(tid, seq)
	if !ok {
		return false
	}

	s := casnSlots.Get(tid)
	cur := s.currentStatus()
	if cur.Seq() != seq {
		return false
	}

	if cur.State() == StatusUndecided {
		newStatus := newCasnStatus(seq, StatusSucceeded)

		start := 0
		if isHelper {
			start = 1
		}

		// Every rdcss() call below needs its own RDCSS slot to publish a
		// descriptor from — that slot's identity is simply "whoever is
		// performing the install right now", independent of which lease
		// owns the CASN descriptor itself (tid above). A single lease
		// covers the whole entry loop; there is no need to re-lease per
		// entry or per retry.
		installer := acquireLease()
		defer installer.release()

		var b backoff
	entryLoop:
		for i := start; i < len(entries); i++ {
			e := entries[i]
			for {
				swapped := rdcss(installer, &s.status, e.addr, cur.word(), e.expected, descPtr)

				switch {
				case swapped == descPtr:
					// already installed by someone else acting on our
					// behalf; advance to the next entry.
				case swapped.Tag() == TagCASN:
					// a different CASN operation occupies this entry.
					if b.Saturated() {
						help(swapped, true)
						b.Reset()
					} else {
						b.Spin()
					}
					continue
				case swapped == e.expected:
					// installed just now.
				default:
					newStatus = newCasnStatus(seq, StatusFailed)
					break entryLoop
				}
				break
			}
		}

		s.status.CompareAndSwap(cur.word(), newStatus.word())
	}

	final := s.currentStatus()
	if final.Seq() != seq {
		return false
	}

	succeeded := final.State() == StatusSucceeded
	for _, e := range entries {
		resolved := e.expected
		if succeeded {
			resolved = e.new
		}
		e.addr.CompareAndSwap(descPtr, resolved)
	}
	return succeeded
}
