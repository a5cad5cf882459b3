// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solution

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/coneprog/equilibrate"
)

func TestNewAllocatesPrimalDimensionFirst(t *testing.T) {
	s := New[float64](3, 5)
	require.Len(t, s.X, 3)
	require.Len(t, s.Z, 5)
	require.Len(t, s.S, 5)
	require.Equal(t, Unsolved, s.Status)
	require.True(t, math.IsNaN(s.ObjVal))
}

func TestFinalizeUsesTauForFeasibleSolve(t *testing.T) {
	s := New[float64](2, 2)
	equil := equilibrate.Identity[float64](2, 2)

	s.Finalize(equil, []float64{2, 4}, []float64{1, 1}, []float64{1, 1}, 2, 0,
		Solved, 1.5, 1.5, 10, 1e-8, 1e-8, 0.01, map[string]time.Duration{"total": time.Millisecond})

	require.Equal(t, []float64{1, 2}, s.X) // x*d/tau = x/2
	require.Equal(t, Solved, s.Status)
	require.Equal(t, 1.5, s.ObjVal)
}

func TestFinalizeNullsObjectiveOnInfeasibility(t *testing.T) {
	s := New[float64](2, 2)
	equil := equilibrate.Identity[float64](2, 2)

	s.Finalize(equil, []float64{2, 4}, []float64{1, 1}, []float64{1, 1}, 0, 2,
		PrimalInfeasible, 1.5, 1.5, 5, math.NaN(), math.NaN(), 0.01, nil)

	require.True(t, math.IsNaN(s.ObjVal))
	require.True(t, math.IsNaN(s.ObjValDual))
	require.Equal(t, PrimalInfeasible, s.Status)
}

func TestSavePrevIterateAppendsHistory(t *testing.T) {
	s := New[float64](1, 1)
	equil := equilibrate.Identity[float64](1, 1)
	s.SavePrevIterate(equil, []float64{1}, []float64{2}, []float64{3}, 1, 0, false)
	s.SavePrevIterate(equil, []float64{4}, []float64{5}, []float64{6}, 1, 0, false)

	require.Len(t, s.XHist, 2)
	require.Empty(t, cmp.Diff([]float64{1}, s.XHist[0], cmpopts.EquateApprox(0, 1e-12)))
	require.Empty(t, cmp.Diff([]float64{4}, s.XHist[1], cmpopts.EquateApprox(0, 1e-12)))
}
