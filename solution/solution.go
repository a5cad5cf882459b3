// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solution

import (
	"time"

	"gonum.org/v1/coneprog/equilibrate"
	"gonum.org/v1/coneprog/num"
)

// Solution is the descaled, unequilibrated result of a solve.
type Solution[T num.Float] struct {
	X          []T
	Z, S       []T
	Status     Status
	ObjVal     T
	ObjValDual T
	SolveTime  float64
	Iterations int
	RPrimal    T
	RDual      T
	Timings    map[string]time.Duration

	// old iterates, populated when Settings.SaveIterates is set.
	XHist, ZHist, SHist [][]T
}

// New allocates a Solution of primal dimension n and cone dimension m. n
// comes first: original_source's new(m, n) put the cone dimension first,
// which SPEC_FULL.md resolves the other way round for this module, primal
// dimension first, matching variables.New, which also takes the primal
// size before the cone size.
func New[T num.Float](n, m int) *Solution[T] {
	return &Solution[T]{
		X:       make([]T, n),
		Z:       make([]T, m),
		S:       make([]T, m),
		Status:  Unsolved,
		ObjVal:  num.NaN[T](),
		ObjValDual: num.NaN[T](),
		RPrimal: num.NaN[T](),
		RDual:   num.NaN[T](),
		Timings: make(map[string]time.Duration),
	}
}

// Reset clears a Solution back to its freshly-constructed state, reusing
// its backing arrays.
func (s *Solution[T]) Reset() {
	s.Status = Unsolved
	s.ObjVal = num.NaN[T]()
	s.ObjValDual = num.NaN[T]()
	s.SolveTime = 0
	for k := range s.Timings {
		delete(s.Timings, k)
	}
	s.Iterations = 0
	s.RPrimal = num.NaN[T]()
	s.RDual = num.NaN[T]()
	s.XHist = nil
	s.ZHist = nil
	s.SHist = nil
}

// Finalize normalizes the homogeneous embedding's iterate by tau (or, for
// an infeasibility certificate, by kappa), undoes the equilibration, and
// records the terminal bookkeeping. This reproduces original_source's
// finalize exactly: hadamard by d/e/einv, divide by c, with the
// infeasible-certificate branch nullifying the objective values to NaN to
// signal that they carry no meaning for an infeasible/unbounded problem.
func (s *Solution[T]) Finalize(
	equil equilibrate.Equilibration[T],
	x, z, slack []T,
	tau, kappa T,
	status Status,
	costPrimal, costDual T,
	iterations int,
	resPrimal, resDual T,
	solveTime float64,
	timings map[string]time.Duration,
) {
	s.Status = status
	s.ObjVal = costPrimal
	s.ObjValDual = costDual

	var scaleinv T
	if status.IsInfeasible() {
		scaleinv = 1 / kappa
		s.ObjVal = num.NaN[T]()
		s.ObjValDual = num.NaN[T]()
	} else {
		scaleinv = 1 / tau
	}

	cscale := equil.C
	for i := range s.X {
		s.X[i] = x[i] * equil.D[i] * scaleinv
	}
	for i := range s.Z {
		s.Z[i] = z[i] * equil.E[i] * (scaleinv / cscale)
	}
	for i := range s.S {
		s.S[i] = slack[i] * equil.Einv[i] * scaleinv
	}

	s.Iterations = iterations
	s.SolveTime = solveTime
	for k, v := range timings {
		s.Timings[k] = v
	}
	s.RPrimal = resPrimal
	s.RDual = resDual
}

// SavePrevIterate pushes a descaled, unequilibrated copy of the current
// iterate onto the history slices, used when Settings.SaveIterates is set.
func (s *Solution[T]) SavePrevIterate(equil equilibrate.Equilibration[T], x, z, slack []T, tau, kappa T, infeasible bool) {
	var scaleinv T
	if infeasible {
		scaleinv = 1 / kappa
	} else {
		scaleinv = 1 / tau
	}
	cscale := equil.C

	xc := make([]T, len(x))
	for i := range xc {
		xc[i] = x[i] * equil.D[i] * scaleinv
	}
	zc := make([]T, len(z))
	for i := range zc {
		zc[i] = z[i] * equil.E[i] * (scaleinv / cscale)
	}
	sc := make([]T, len(slack))
	for i := range sc {
		sc[i] = slack[i] * equil.Einv[i] * scaleinv
	}

	s.XHist = append(s.XHist, xc)
	s.ZHist = append(s.ZHist, zc)
	s.SHist = append(s.SHist, sc)
}
