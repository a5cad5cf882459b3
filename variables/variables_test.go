// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variables

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gonum.org/v1/coneprog/cones"
)

func TestInitializeSetsColdStart(t *testing.T) {
	cs := cones.NewConeSet([]cones.Cone[float64]{
		cones.NewNonnegative[float64](2),
		cones.NewSecondOrder[float64](3),
	})
	v := New[float64](4, cs.Dim())
	v.X[0] = 99 // should be zeroed by Initialize
	v.Initialize(cs)

	require.Equal(t, []float64{0, 0, 0, 0}, v.X)
	require.Equal(t, float64(1), v.Tau)
	require.Equal(t, float64(1), v.Kappa)
	require.Equal(t, []float64{1, 1, 1, 0, 0}, v.S)
	require.Equal(t, []float64{1, 1, 1, 0, 0}, v.Z)
}

func TestScaledAddAdvancesIterate(t *testing.T) {
	v := New[float64](2, 2)
	v.X = []float64{1, 2}
	v.Z = []float64{3, 4}
	v.S = []float64{5, 6}
	v.Tau, v.Kappa = 1, 1

	d := New[float64](2, 2)
	d.X = []float64{1, 1}
	d.Z = []float64{1, 1}
	d.S = []float64{1, 1}
	d.Tau, d.Kappa = 2, -1

	v.ScaledAdd(0.5, d)

	require.Equal(t, []float64{1.5, 2.5}, v.X)
	require.Equal(t, []float64{3.5, 4.5}, v.Z)
	require.Equal(t, []float64{5.5, 6.5}, v.S)
	require.Equal(t, 2.0, v.Tau)
	require.Equal(t, 0.5, v.Kappa)
}

func TestCloneIsIndependent(t *testing.T) {
	v := New[float64](2, 2)
	v.X = []float64{1, 2}
	clone := v.Clone()
	clone.X[0] = 99
	require.Equal(t, float64(1), v.X[0])
}
