// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kkt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gonum.org/v1/coneprog/cones"
	"gonum.org/v1/coneprog/csc"
)

// diagCSC builds an n x n diagonal CSC matrix (upper triangular trivially).
func diagCSC(vals []float64) *csc.CscMatrix[float64] {
	n := len(vals)
	colptr := make([]int, n+1)
	rowval := make([]int, n)
	nzval := make([]float64, n)
	for i := 0; i < n; i++ {
		colptr[i] = i
		rowval[i] = i
		nzval[i] = vals[i]
	}
	colptr[n] = n
	return csc.New(n, n, colptr, rowval, nzval)
}

func TestNewAssemblesSquareUpperTriangular(t *testing.T) {
	P := diagCSC([]float64{2, 2})
	A := diagCSC([]float64{1, 1})
	cs := cones.NewConeSet([]cones.Cone[float64]{cones.NewNonnegative[float64](2)})

	asm := New(P, A, cs)

	require.Equal(t, 4, asm.KKT.N)
	require.Equal(t, 4, asm.KKT.M)
	asm.KKT.AssertCanonical()
	require.Len(t, asm.DiagToKKT, 4)
}

func TestPtoKKTReverseMapFidelity(t *testing.T) {
	P := diagCSC([]float64{3, 5})
	A := diagCSC([]float64{1, 1})
	cs := cones.NewConeSet([]cones.Cone[float64]{cones.NewNonnegative[float64](2)})

	asm := New(P, A, cs)
	for j, dest := range asm.PtoKKT {
		require.Equal(t, P.Nzval[j], asm.KKT.Nzval[dest])
	}
}

func TestAtoKKTReverseMapFidelity(t *testing.T) {
	P := diagCSC([]float64{3, 5})
	A := diagCSC([]float64{7, 9})
	cs := cones.NewConeSet([]cones.Cone[float64]{cones.NewNonnegative[float64](2)})

	asm := New(P, A, cs)
	for j, dest := range asm.AtoKKT {
		require.Equal(t, A.Nzval[j], asm.KKT.Nzval[dest])
	}
}

func TestRefreshIsStructurePreserving(t *testing.T) {
	P := diagCSC([]float64{1, 1})
	A := diagCSC([]float64{1, 1})
	cs := cones.NewConeSet([]cones.Cone[float64]{cones.NewNonnegative[float64](2)})

	asm := New(P, A, cs)
	colptrBefore := append([]int(nil), asm.KKT.Colptr...)
	rowvalBefore := append([]int(nil), asm.KKT.Rowval...)

	s := []float64{2, 3}
	z := []float64{4, 5}
	require.True(t, cs.UpdateScaling(s, z))
	asm.Refresh(cs)

	require.Equal(t, colptrBefore, asm.KKT.Colptr)
	require.Equal(t, rowvalBefore, asm.KKT.Rowval)
}

func TestRefreshNonnegativeDiagonalValues(t *testing.T) {
	P := diagCSC([]float64{1, 1})
	A := diagCSC([]float64{1, 1})
	cs := cones.NewConeSet([]cones.Cone[float64]{cones.NewNonnegative[float64](2)})

	asm := New(P, A, cs)
	s := []float64{4, 9}
	z := []float64{1, 1}
	require.True(t, cs.UpdateScaling(s, z))
	asm.Refresh(cs)

	// d[i] = sqrt(s[i]/z[i]); the stored -H diagonal is -d[i]^2 = -s[i]/z[i].
	want := []float64{-4, -9}
	for i, off := range asm.blocks[0].diagToKKT {
		require.InDelta(t, want[i], asm.KKT.Nzval[off], 1e-12)
	}
}

func TestSecondOrderBlockIsDense(t *testing.T) {
	P := diagCSC([]float64{1, 1, 1})
	A := diagCSC([]float64{1, 1, 1})
	cs := cones.NewConeSet([]cones.Cone[float64]{cones.NewSecondOrder[float64](3)})

	asm := New(P, A, cs)
	require.True(t, asm.blocks[0].dense)
	require.Len(t, asm.blocks[0].offDiagToKKT, 3) // dim*(dim-1)/2 = 3
}

func TestUpdatePRejectsNnzMismatch(t *testing.T) {
	P := diagCSC([]float64{1, 1})
	A := diagCSC([]float64{1, 1})
	cs := cones.NewConeSet([]cones.Cone[float64]{cones.NewNonnegative[float64](2)})
	asm := New(P, A, cs)

	bad := diagCSC([]float64{1, 1, 1})
	require.ErrorIs(t, asm.UpdateP(bad), ErrPatternMismatch)
}

func TestUpdateARejectsPermutedPattern(t *testing.T) {
	P := diagCSC([]float64{1, 1})
	A := diagCSC([]float64{1, 1})
	cs := cones.NewConeSet([]cones.Cone[float64]{cones.NewNonnegative[float64](2)})
	asm := New(P, A, cs)

	// Same Nnz (2) as A, but the nonzeros sit off the diagonal: a
	// same-count, different-position replacement must still be rejected.
	bad := csc.New(2, 2, []int{0, 1, 2}, []int{1, 0}, []float64{1, 1})
	require.ErrorIs(t, asm.UpdateA(bad), ErrPatternMismatch)
}
