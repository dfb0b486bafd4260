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

import "sync/atomic"

// rdcssSlot holds one in-progress RDCSS descriptor instance: owned by
// whichever goroutine currently leases it, read by any helper. The
// leading pad keeps adjacent slots in rdcssSlots's backing array from
// false-sharing a cache line.
type rdcssSlot struct {
	_ [sizeOfCacheLine]byte

	seq atomic.Uint64 // SeqNumber generator; see makeRDCSSDescriptor.

	statusAddr     atomic.Pointer[AtomicWord]
	dataAddr       atomic.Pointer[AtomicWord]
	expectedStatus atomic.Uint64 // TaggedWord
	expectedData   atomic.Uint64 // TaggedWord
	newData        atomic.Uint64 // TaggedWord
}

// makeRDCSSDescriptor publishes a new RDCSS descriptor instance in the
// calling lease's slot and returns a tagged pointer to it.
//
// The two-increment protocol (bump seq to an unpublished value, write the
// fields, bump seq to the value the returned pointer actually names) lets
// any helper that snapshots this slot mid-write detect the disagreement
// and retry without a lock. Go's sync/atomic operations are already
// sequentially consistent, so no separate fence calls are needed here.
func makeRDCSSDescriptor(self lease, statusAddr, dataAddr *AtomicWord, expectedStatus, expectedData, newData TaggedWord) TaggedWord {
	s := self.rdcss()

	s.seq.Add(1) // in-construction
	s.statusAddr.Store(statusAddr)
	s.dataAddr.Store(dataAddr)
	s.expectedStatus.Store(uint64(expectedStatus))
	s.expectedData.Store(uint64(expectedData))
	s.newData.Store(uint64(newData))
	newSeq := s.seq.Add(1) // ready

	return newDescriptorPtr(self.id, SeqNumber(newSeq)).WithTag(TagRDCSS)
}

// rdcssSnapshot tries to read a RDCSS slot's full field set, validating
// that the slot still names seq both before and after the read. Returns
// ok=false if the slot has moved on to a different descriptor instance.
func rdcssSnapshot(tid ThreadID, seq SeqNumber) (statusAddr, dataAddr *AtomicWord, expectedStatus, expectedData, newData TaggedWord, ok bool) {
	s := rdcssSlots.Get(tid)

	before := s.seq.Load()
	if SeqNumber(before) != seq {
		return nil, nil, 0, 0, 0, false
	}

	statusAddr = s.statusAddr.Load()
	dataAddr = s.dataAddr.Load()
	expectedStatus = TaggedWord(s.expectedStatus.Load())
	expectedData = TaggedWord(s.expectedData.Load())
	newData = TaggedWord(s.newData.Load())

	after := s.seq.Load()
	if SeqNumber(after) != seq {
		return nil, nil, 0, 0, 0, false
	}
	return statusAddr, dataAddr, expectedStatus, expectedData, newData, true
}

// rdcss performs a Restricted Double-Compare-Single-Swap: it atomically
// installs newData into dataAddr conditional on statusAddr still equaling
// expectedStatus, in a way any other goroutine can finish if the calling
// one stalls.
//
// Follows the classic Harris/Fraser/Pratt construction: CAS a descriptor
// into the data cell, then finish it. The descriptor lives in a per-lease
// slot rather than being built fresh on the stack, so any other goroutine
// can find and finish it by tid.
func rdcss(self lease, statusAddr, dataAddr *AtomicWord, expectedStatus, expectedData, newData TaggedWord) TaggedWord {
	descPtr := makeRDCSSDescriptor(self, statusAddr, dataAddr, expectedStatus, expectedData, newData)

	var b backoff
	for {
		current := dataAddr.Load()
		if current.Tag() == TagRDCSS {
			// another RDCSS is mid-flight at this address; help it along
			// before we can even attempt our own CAS against it.
			rdcssHelp(current)
			b.Spin()
			continue
		}
		if current != expectedData {
			return current
		}

		if dataAddr.CompareAndSwap(expectedData, descPtr) {
			rdcssHelp(descPtr)
			return expectedData
		}
		b.Reset()
	}
}

// rdcssHelp finalizes the RDCSS descriptor named by descPtr — which may
// belong to any goroutine, not just the caller. It is always safe to call
// redundantly: the two CompareAndSwap attempts below may harmlessly fail
// if another helper already finished the job.
func rdcssHelp(descPtr TaggedWord) {
	statusAddr, dataAddr, expectedStatus, expectedData, newData, ok := rdcssSnapshot(descPtr.TID(), descPtr.Seq())
	if !ok {
		// stale: the owner has already moved on to a different instance.
		return
	}

	if statusAddr.Load() == expectedStatus {
		dataAddr.CompareAndSwap(descPtr, newData)
	} else {
		dataAddr.CompareAndSwap(descPtr, expectedData)
	}
}

// rdcssRead loops until it observes a word at addr that is not an
// in-progress RDCSS descriptor, helping along the way. Higher layers use
// this to "see through" any transient RDCSS install.
func rdcssRead(addr *AtomicWord) TaggedWord {
	for {
		w := addr.Load()
		if w.Tag() == TagRDCSS {
			rdcssHelp(w)
			continue
		}
		return w
	}
}
