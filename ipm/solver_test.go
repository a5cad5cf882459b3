// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gonum.org/v1/coneprog/cones"
	"gonum.org/v1/coneprog/csc"
)

// nonnegQP builds min 0.5*x^2 - x s.t. x >= 0, as P=[1], A=[-1], q=[-1],
// b=[0], a single Nonnegative(1) block: Ax+s=b becomes s=x, so s>=0 is
// exactly x>=0, with unconstrained minimizer x=1 already feasible.
func nonnegQP(t *testing.T) (*csc.CscMatrix[float64], *csc.CscMatrix[float64], []float64, []float64, []cones.Spec) {
	t.Helper()
	P := csc.New[float64](1, 1, []int{0, 1}, []int{0}, []float64{1})
	A := csc.New[float64](1, 1, []int{0, 1}, []int{0}, []float64{-1})
	q := []float64{-1}
	b := []float64{0}
	specs := []cones.Spec{{Kind: cones.Nonnegative, Dim: 1}}
	return P, A, q, b, specs
}

func TestNewSolverRejectsDimensionMismatch(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	_, err := NewSolver[float64](P, A, append(q, 0), b, specs, DefaultSettings[float64]())
	require.Error(t, err)
}

func TestNewSolverRejectsInvalidMaxIter(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	settings := DefaultSettings[float64]()
	settings.MaxIter = 0
	_, err := NewSolver[float64](P, A, q, b, specs, settings)
	require.ErrorIs(t, err, ErrInvalidSettings)
}

func TestNewSolverRejectsInvalidMaxStepFraction(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	settings := DefaultSettings[float64]()
	settings.MaxStepFraction = 1.5
	_, err := NewSolver[float64](P, A, q, b, specs, settings)
	require.ErrorIs(t, err, ErrInvalidSettings)
}

func TestNewSolverAccepts(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	s, err := NewSolver[float64](P, A, q, b, specs, DefaultSettings[float64]())
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, 1, s.n)
	require.Equal(t, 1, s.m)
}

func TestSolveWarmRejectsMismatchedShape(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	s, err := NewSolver[float64](P, A, q, b, specs, DefaultSettings[float64]())
	require.NoError(t, err)

	_, err = s.SolveWarm([]float64{1, 2}, nil, nil, WarmDefault, 0)
	require.True(t, errors.Is(err, ErrWarmStartShape))
}

func TestBlendInterpolatesTowardCold(t *testing.T) {
	warm := []float64{0, 10}
	cold := []float64{4, 4}
	blend(warm, cold, 0.5)
	require.InDeltaSlice(t, []float64{2, 7}, warm, 1e-12)
}

func TestBlendZeroLambdaKeepsWarm(t *testing.T) {
	warm := []float64{1, 2}
	cold := []float64{9, 9}
	blend(warm, cold, 0)
	require.InDeltaSlice(t, []float64{1, 2}, warm, 1e-12)
}

func TestCenteringParameterSafeguard(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	settings := DefaultSettings[float64]()
	settings.MinSwitchStepLength = 0.1
	s, err := NewSolver[float64](P, A, q, b, specs, settings)
	require.NoError(t, err)

	require.Equal(t, 1.0, s.centeringParameter(0.05))

	sigma := s.centeringParameter(0.5)
	require.InDelta(t, 0.125, sigma, 1e-12)
}

func TestResidualsComputeMatchesHandComputation(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	s, err := NewSolver[float64](P, A, q, b, specs, DefaultSettings[float64]())
	require.NoError(t, err)

	s.v.Initialize(s.data.Cones)
	s.res.Compute(s.data, s.v)

	// Cold start: x=0, s=z=1, tau=kappa=1. In equilibrated coordinates P,
	// A and q may have been rescaled, so only check shapes and the
	// mu formula, which holds regardless of equilibration.
	require.Len(t, s.res.Rx, 1)
	require.Len(t, s.res.Rz, 1)
	wantMu := (s.v.S[0]*s.v.Z[0] + s.v.Tau*s.v.Kappa) / 2
	require.InDelta(t, wantMu, s.res.Mu, 1e-12)
}

func TestSolveReturnsTerminalStatus(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	s, err := NewSolver[float64](P, A, q, b, specs, DefaultSettings[float64]())
	require.NoError(t, err)

	sol := s.Solve()
	require.NotEqual(t, 0, int(sol.Status)) // Unsolved is the zero Status; a finished solve never returns it with MaxIter>0 exhausting to MaxIterations at worst
}

func TestNewSolverInstallsStderrLoggerWhenVerbose(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	settings := DefaultSettings[float64]()
	settings.Verbose = true

	s, err := NewSolver[float64](P, A, q, b, specs, settings)
	require.NoError(t, err)
	require.NotNil(t, s.settings.Logf)
}

func TestNewSolverKeepsCallerLogfWhenVerbose(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	settings := DefaultSettings[float64]()
	settings.Verbose = true
	called := false
	settings.Logf = func(format string, args ...any) { called = true }

	s, err := NewSolver[float64](P, A, q, b, specs, settings)
	require.NoError(t, err)

	s.Solve()
	require.True(t, called, "caller-supplied Logf should be invoked during Solve")
}

func TestNewSolverLeavesLogfNilWhenNotVerbose(t *testing.T) {
	P, A, q, b, specs := nonnegQP(t)
	s, err := NewSolver[float64](P, A, q, b, specs, DefaultSettings[float64]())
	require.NoError(t, err)
	require.Nil(t, s.settings.Logf)
}
