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

import "github.com/twissel/mw-cas/internal/slot"

// ThreadID identifies a leased slot. Alias of slot.ThreadID so call sites
// outside this package never need to import internal/slot.
type ThreadID = slot.ThreadID

// SeqNumber is the monotonic per-slot sequence counter.
type SeqNumber = slot.SeqNumber

// Tagged-word encoding: a 64-bit machine word multiplexes an ordinary user
// value and an in-progress-operation descriptor pointer into a single CAS
// target. The low two bits select which; the remaining bits either hold a
// shifted integer/pointer value, or a (ThreadID, SeqNumber) pair naming a
// descriptor instance.
//
// Layout, low bit to high bit:
//
//	[ tag:2 | seq:48 | tid:14 ]
//
// tag occupies bits 0-1, seq occupies bits 2-49, tid occupies bits 50-63.
const (
	tagBits = 2
	seqBits = 48
	tidBits = 14

	tagMask = (uint64(1) << tagBits) - 1
	seqMask = (uint64(1) << seqBits) - 1
	tidMask = (uint64(1) << tidBits) - 1

	seqShift = tagBits
	tidShift = tagBits + seqBits
)

// Tag values a TaggedWord's low two bits may carry.
const (
	// TagValue marks an ordinary user value — not an in-progress operation.
	TagValue = 0
	// TagRDCSS marks a pointer to an rdcssSlot descriptor instance.
	TagRDCSS = 1
	// TagCASN marks a pointer to a casnSlot descriptor instance.
	TagCASN = 2
)

// MaxThreadID is the largest representable ThreadID (14 bits).
const MaxThreadID = ThreadID(tidMask)

// MaxSeq is the largest representable sequence number (48 bits).
const MaxSeq = SeqNumber(seqMask)

// MaxUserValue is the largest unsigned integer that can round-trip through
// the tagged encoding (62 bits — the word minus the 2 reserved tag bits).
const MaxUserValue = uint64(1)<<62 - 1

// TaggedWord is a 64-bit word that is either an ordinary user value (tag
// TagValue) or a descriptor pointer (tag TagRDCSS or TagCASN) identifying a
// (ThreadID, SeqNumber) pair. The user-value representation intentionally
// leaves the tag bits free; the descriptor representation packs tid/seq
// into the remaining bits.
type TaggedWord uint64

// newDescriptorPtr builds a TaggedWord identifying the descriptor instance
// (tid, seq), tagged TagValue (callers apply WithTag to select TagRDCSS or
// TagCASN).
func newDescriptorPtr(tid ThreadID, seq SeqNumber) TaggedWord {
	return TaggedWord((uint64(tid)&tidMask)<<tidShift | (uint64(seq)&seqMask)<<seqShift)
}

// TID extracts the thread id from a descriptor-tagged word. Meaningless for
// a TagValue word.
func (w TaggedWord) TID() ThreadID {
	return ThreadID((uint64(w) >> tidShift) & tidMask)
}

// Seq extracts the sequence number from a descriptor-tagged word.
// Meaningless for a TagValue word.
func (w TaggedWord) Seq() SeqNumber {
	return SeqNumber((uint64(w) >> seqShift) & seqMask)
}

// Tag returns the low two bits: TagValue, TagRDCSS, or TagCASN.
func (w TaggedWord) Tag() uint64 {
	return uint64(w) & tagMask
}

// WithTag returns w with its tag bits replaced by t.
func (w TaggedWord) WithTag(t uint64) TaggedWord {
	return TaggedWord((uint64(w) &^ tagMask) | (t & tagMask))
}

// Untagged returns w with its tag bits cleared.
func (w TaggedWord) Untagged() TaggedWord {
	return w.WithTag(TagValue)
}

// uintToTaggedWord packs an unsigned integer user value into a TaggedWord.
// The value is shifted left by tagBits to vacate the tag bits; it must fit
// in 62 bits or this panics — storing a value that would overflow is a
// fatal condition, not a recoverable error.
func uintToTaggedWord(v uint64) TaggedWord {
	if v > MaxUserValue {
		panic(ErrValueOverflow)
	}
	return TaggedWord(v << tagBits)
}

// taggedWordToUint reverses uintToTaggedWord.
func taggedWordToUint(w TaggedWord) uint64 {
	return uint64(w.Untagged()) >> tagBits
}

// ptrToTaggedWord packs a pointer's bit pattern into a TaggedWord. The
// pointer's low two bits must already be zero (allocator alignment >= 4);
// violating that is a fatal condition.
func ptrToTaggedWord(p uintptr) TaggedWord {
	if uint64(p)&tagMask != 0 {
		panic(ErrUnalignedPointer)
	}
	return TaggedWord(p)
}

// taggedWordToPtr reverses ptrToTaggedWord.
func taggedWordToPtr(w TaggedWord) uintptr {
	return uintptr(w.Untagged())
}
