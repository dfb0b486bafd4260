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

import "errors"

// Fatal conditions. There are no user-recoverable errors in this
// package's public API — only bool success/failure — so these are only
// ever passed to panic. They are still exported sentinel values so a
// recovering caller can match them with errors.Is.
var (
	// ErrUnalignedPointer is raised when storing a pointer whose low two
	// bits are set (violates the allocator-alignment assumption).
	ErrUnalignedPointer = errors.New("mcas: pointer is not 4-byte aligned")
	// ErrValueOverflow is raised when storing an unsigned integer that does
	// not fit in 62 bits.
	ErrValueOverflow = errors.New("mcas: value exceeds 62 usable bits")
	// ErrTooFewEntries is raised by CASN when N < 2.
	ErrTooFewEntries = errors.New("mcas: cas_n requires at least 2 entries")
	// ErrTooManyEntries is raised by CASN when N > MaxEntries.
	ErrTooManyEntries = errors.New("mcas: cas_n exceeds MaxEntries")
	// ErrRegistryExhausted is raised when every lease slot is occupied and a
	// new lease cannot be acquired. acquireLease panics with it in place of
	// internal/slot's ErrExhausted, which code outside this module cannot
	// import, so callers outside this module can errors.Is against a name
	// they're able to import.
	ErrRegistryExhausted = errors.New("mcas: no free thread-local slot")
)
