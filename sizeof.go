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

// This constant is verified against the platform's real cache line size in
// sizeof_test.go, against unsafe.Sizeof(cpu.CacheLinePad{}).
const (
	// sizeOfCacheLine is the size, in bytes, of the padding placed ahead of
	// each per-lease slot (rdcssSlot, casnSlot) to keep adjacent slots in
	// rdcssSlots/casnSlots's backing arrays from false-sharing a cache
	// line.
	//
	// 64 bytes is standard for x86-64. 128 bytes is standard for Apple
	// Silicon (M1/M2/M3) and other ARM64. We use 128 to satisfy the
	// largest common alignment requirement.
	sizeOfCacheLine = 128
)
