// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cones

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeBarrierNonnegativeInterior(t *testing.T) {
	c := NewNonnegative[float64](2)
	z := []float64{1, 2}
	s := []float64{3, 4}
	stepZ := []float64{0.1, -0.1}
	stepS := []float64{-0.1, 0.1}

	barrier := c.ComputeBarrier(z, s, stepZ, stepS, 1)
	require.False(t, math.IsInf(barrier, 0))
	require.False(t, math.IsNaN(barrier))

	want := -math.Log(1.1) - math.Log(1.9) /* z */ - math.Log(2.9) - math.Log(4.1) /* s */
	require.InDelta(t, want, barrier, 1e-12)
}

// A trial step that drives a coordinate to or past the boundary must
// report +Inf, matching the SecondOrder and PSDTriangle conventions, so
// that backtrackLineSearch's finiteness check rejects it.
func TestComputeBarrierNonnegativeBoundary(t *testing.T) {
	c := NewNonnegative[float64](1)
	z := []float64{1}
	s := []float64{1}
	stepZ := []float64{-2} // z + 1*stepZ = -1, outside the cone
	stepS := []float64{0}

	barrier := c.ComputeBarrier(z, s, stepZ, stepS, 1)
	require.True(t, math.IsInf(barrier, 1), "want +Inf, got %v", barrier)
}

func TestComputeBarrierZeroCone(t *testing.T) {
	c := NewZero[float64](3)
	barrier := c.ComputeBarrier(nil, nil, nil, nil, 1)
	require.Equal(t, 0.0, barrier)
}

func TestConeSetComputeBarrierSumsBlocks(t *testing.T) {
	cs := NewConeSet([]Cone[float64]{
		NewZero[float64](1),
		NewNonnegative[float64](1),
	})
	z := []float64{0, 2}
	s := []float64{0, 2}
	stepZ := []float64{0, 0}
	stepS := []float64{0, 0}

	barrier := cs.ComputeBarrier(z, s, stepZ, stepS, 1)
	want := -math.Log(2) - math.Log(2)
	require.InDelta(t, want, barrier, 1e-12)
}
