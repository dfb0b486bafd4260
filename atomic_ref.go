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

import "unsafe"

// AtomicRef[T] is the public-facing handle over one word-sized user value:
// a pointer to a heap-allocated T, installed and swapped via the tagged
// word protocol. It boxes T and stores the box's address as the CAS word,
// so any T works without a word-sized constraint.
//
// Reclaiming the memory behind an old *T once it's no longer referenced is
// the caller's concern — an epoch or hazard-pointer scheme is assumed
// available but is not part of this package.
type AtomicRef[T any] struct {
	word AtomicWord
}

// NewAtomicRef allocates a T, initializes it to v, and returns a handle
// wrapping a pointer to it.
func NewAtomicRef[T any](v T) *AtomicRef[T] {
	p := new(T)
	*p = v
	r := &AtomicRef[T]{}
	r.word.Store(ptrToTaggedWord(uintptr(unsafe.Pointer(p))))
	return r
}

// Load returns the current value, transparently helping any in-progress
// operation first so it never observes a descriptor-tagged word.
func (r *AtomicRef[T]) Load() *T {
	return (*T)(unsafe.Pointer(taggedWordToPtr(readWord(&r.word))))
}

// AtomicUint is the public-facing handle over one word-sized unsigned
// integer value, limited to 62 usable bits — the value is shifted left by
// the two tag bits to share the same word encoding as AtomicRef.
type AtomicUint struct {
	word AtomicWord
}

// NewAtomicUint wraps v. Panics with ErrValueOverflow if v does not fit in
// 62 bits.
func NewAtomicUint(v uint64) *AtomicUint {
	a := &AtomicUint{}
	a.word.Store(uintToTaggedWord(v))
	return a
}

// Load returns the current value, helping any in-progress operation first.
func (a *AtomicUint) Load() uint64 {
	return taggedWordToUint(readWord(&a.word))
}

// readWord is rdcssRead plus CASN-helping: if the word read back is
// tagged as an in-progress CASN descriptor, help it to completion and
// retry. Shared by AtomicRef.Load and AtomicUint.Load so neither ever
// observes a descriptor-tagged word.
func readWord(w *AtomicWord) TaggedWord {
	for {
		cur := rdcssRead(w)
		if cur.Tag() == TagCASN {
			help(cur, true)
			continue
		}
		return cur
	}
}

// CasEntry is one (address, expected, new) triple ready to pass to CASN,
// built via Ref or Uint. Go has no way to hold a heterogeneous slice of
// AtomicRef[X] and AtomicRef[Y] handles without an interface, so each
// entry is built individually — against its own concrete T — before being
// collected into the CASN call.
type CasEntry struct {
	e entry
}

// Ref builds a CasEntry comparing and swapping r's pointer value.
func Ref[T any](r *AtomicRef[T], expected, new *T) CasEntry {
	return CasEntry{entry{
		addr:     &r.word,
		expected: ptrToTaggedWord(uintptr(unsafe.Pointer(expected))),
		new:      ptrToTaggedWord(uintptr(unsafe.Pointer(new))),
	}}
}

// Uint builds a CasEntry comparing and swapping a's integer value.
func Uint(a *AtomicUint, expected, new uint64) CasEntry {
	return CasEntry{entry{
		addr:     &a.word,
		expected: uintToTaggedWord(expected),
		new:      uintToTaggedWord(new),
	}}
}

// CAS2 is the two-word specialization of CASN with its arity fixed at
// compile time; nothing here is special-cased beyond the argument count.
// See CASN's doc comment for how a and b naming the same underlying cell
// is handled.
func CAS2(a, b CasEntry) bool {
	return CASN(a, b)
}

// CASN atomically compares-and-swaps every entry's target, all-or-nothing.
// N must be in [2, MaxEntries] or CASN panics — an out-of-range N is a
// fatal condition, not a bool failure.
//
// Duplicate addresses across entries are the caller's responsibility and
// are not rejected outright. The one case that decides consistently —
// two entries naming the same cell with equal expected/new pairs — works
// because once the first entry installs this descriptor at the shared
// address, the second entry observes its own descriptor already present
// and counts as installed. Duplicate entries for the same cell with
// differing expected/new pairs are not given defined behavior here;
// callers should not rely on a specific outcome.
func CASN(entries ...CasEntry) bool {
	if len(entries) < 2 {
		panic(ErrTooFewEntries)
	}
	if len(entries) > MaxEntries {
		panic(ErrTooManyEntries)
	}

	raw := make([]entry, len(entries))
	for i, e := range entries {
		raw[i] = e.e
	}

	self := acquireLease()
	defer self.release()

	descPtr := makeCasnDescriptor(self, raw)
	return help(descPtr, false)
}
