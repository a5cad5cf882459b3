// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gonum.org/v1/coneprog/csc"
)

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

func TestIdentityIsNoOp(t *testing.T) {
	eq := Identity[float64](3, 2)
	require.Equal(t, []float64{1, 1, 1}, eq.D)
	require.Equal(t, []float64{1, 1}, eq.E)
	require.Equal(t, []float64{1, 1}, eq.Einv)
	require.Equal(t, 1.0, eq.C)
}

func TestRuizEquilibrateDisabledReturnsIdentity(t *testing.T) {
	P := diagCSC([]float64{100, 100})
	A := diagCSC([]float64{1, 1})
	q := []float64{1, 1}

	settings := DefaultSettings[float64]()
	settings.Enable = false
	eq := RuizEquilibrate(P, A, q, settings)

	require.Equal(t, []float64{1, 1}, eq.D)
	require.Equal(t, []float64{100, 100}, P.Nzval)
}

func TestRuizEquilibrateShrinksLargeMagnitudes(t *testing.T) {
	P := diagCSC([]float64{1e4, 1e4})
	A := diagCSC([]float64{1, 1})
	q := []float64{1, 1}

	eq := RuizEquilibrate(P, A, q, DefaultSettings[float64]())

	for _, v := range P.Nzval {
		require.Less(t, v, 1e4)
	}
	for i := range eq.Einv {
		require.InDelta(t, 1/eq.E[i], eq.Einv[i], 1e-12)
	}
}
