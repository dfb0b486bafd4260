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

import "runtime"

// backoff implements an exponential-backoff-then-yield escalation: busy
// spin for a while, then start yielding the P via runtime.Gosched, and
// once that's exhausted report Saturated so a caller can switch to
// recursively helping whatever it's contending against instead of
// spinning forever.
type backoff struct {
	step uint
}

const (
	backoffSpinLimit  = 6  // last step that busy-spins (steps 0..6 spin, later steps yield)
	backoffYieldLimit = 10 // step count at which the backoff reports Saturated
)

// Spin advances the backoff by one step, busy-spinning or yielding the P
// depending on how far escalated it already is.
func (b *backoff) Spin() {
	if b.step <= backoffSpinLimit {
		spins := 1 << b.step
		for i := 0; i < spins; i++ {
			spinHint()
		}
	} else {
		runtime.Gosched()
	}
	if b.step < backoffYieldLimit {
		b.step++
	}
}

// Saturated reports whether this backoff has escalated all the way to
// yielding without making progress — the signal callers use to switch
// from spinning briefly to recursively helping whatever is blocking them.
func (b *backoff) Saturated() bool {
	return b.step >= backoffYieldLimit
}

// Reset returns the backoff to its initial state, used when a contention
// episode ends (rdcss after its install CAS loses a race, help after it has
// helped a blocking descriptor) so the next episode starts from a fresh,
// short spin rather than inheriting escalation from the previous one.
func (b *backoff) Reset() {
	b.step = 0
}

// spinHint is one iteration of a busy-wait. No PAUSE/YIELD asm intrinsic
// is wired here; kept as a named function so the spin body reads as an
// explicit hardware-yield point rather than dead code a reviewer has to
// double-take on.
func spinHint() {}
