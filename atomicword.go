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

// AtomicWord is a single cell holding one TaggedWord, mutated only by
// atomic CAS or atomic store. Backed by atomic.Uint64 rather than an
// unsafe.Pointer-based CAS — this package's words are never real pointers
// (they're packed tid/seq/tag triples or shifted user values), so there
// is no pointer GC-safety concern to account for.
type AtomicWord struct {
	v atomic.Uint64
}

// NewAtomicWord returns an AtomicWord initialized to w.
func NewAtomicWord(w TaggedWord) *AtomicWord {
	a := &AtomicWord{}
	a.v.Store(uint64(w))
	return a
}

// Load reads the current word with sequential consistency.
func (a *AtomicWord) Load() TaggedWord {
	return TaggedWord(a.v.Load())
}

// Store writes w with sequential consistency.
func (a *AtomicWord) Store(w TaggedWord) {
	a.v.Store(uint64(w))
}

// CompareAndSwap atomically replaces the word with new iff it currently
// equals expected, reporting whether the swap happened.
func (a *AtomicWord) CompareAndSwap(expected, new TaggedWord) bool {
	return a.v.CompareAndSwap(uint64(expected), uint64(new))
}

// CompareExchange is CompareAndSwap that also reports the value observed
// at the moment of the attempt — the current value on failure, or expected
// (the value that was replaced) on success.
func (a *AtomicWord) CompareExchange(expected, new TaggedWord) (actual TaggedWord, swapped bool) {
	for {
		cur := a.Load()
		if cur != expected {
			return cur, false
		}
		if a.v.CompareAndSwap(uint64(expected), uint64(new)) {
			return expected, true
		}
		// lost the race against a concurrent writer; re-read and retry the
		// comparison rather than reporting a false failure against a value
		// that may have changed back to expected in the meantime.
	}
}
