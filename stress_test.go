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
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Scenario 5: cross-address contention. 24,000 AtomicUint cells, 24
// goroutines x 20,000 iterations each picking two random distinct indices
// and cas2-incrementing them. The sum over the array must equal 2x the
// number of observed successful cas2 calls, and nothing should ever panic
// under the concurrent helping this induces.
func TestCAS2CrossAddressContention(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cross-address contention stress test in -short mode")
	}

	const (
		cells      = 24000
		goroutines = 24
		iterations = 20000
	)

	arr := make([]*AtomicUint, cells)
	for i := range arr {
		arr[i] = NewAtomicUint(0)
	}

	var successes [goroutines]uint64

	g, _ := errgroup.WithContext(context.Background())
	for gi := 0; gi < goroutines; gi++ {
		gi := gi
		g.Go(func() error {
			src := rand.New(rand.NewSource(uint64(gi) + 1))
			var local uint64
			for i := 0; i < iterations; i++ {
				i1 := src.Intn(cells)
				i2 := src.Intn(cells)
				if i1 == i2 {
					continue
				}
				a, b := arr[i1], arr[i2]
				for {
					av := a.Load()
					bv := b.Load()
					if CAS2(Uint(a, av, av+1), Uint(b, bv, bv+1)) {
						local++
						break
					}
				}
			}
			successes[gi] = local
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var totalSuccess uint64
	for _, s := range successes {
		totalSuccess += s
	}

	var sum uint64
	for _, a := range arr {
		sum += a.Load()
	}

	require.Equal(t, 2*totalSuccess, sum)
}
