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

package slot

// Table is a fixed-size array of per-id storage, readable by any goroutine
// but written only by whichever operation currently leases the
// corresponding ThreadID. V is expected to carry its own cache-line
// padding; callers hand-size their own padding fields rather than relying
// on a generic wrapper to compute it.
type Table[V any] struct {
	slots []V
}

// NewTable allocates a table with one V per registry slot.
func NewTable[V any](size int) *Table[V] {
	return &Table[V]{slots: make([]V, size)}
}

// Get returns the slot for id, mutable in place. Because each id is only
// ever written by the goroutine currently leasing it, and readers only
// observe V's atomic fields, unsynchronized access across goroutines is
// sound — V's exported fields must themselves be atomic.
func (t *Table[V]) Get(id ThreadID) *V {
	return &t.slots[id]
}
