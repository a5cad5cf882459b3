// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"fmt"
	"log"
	"os"
	"time"

	"gonum.org/v1/coneprog/cones"
	"gonum.org/v1/coneprog/csc"
	"gonum.org/v1/coneprog/equilibrate"
	"gonum.org/v1/coneprog/kkt"
	"gonum.org/v1/coneprog/kktsolver"
	"gonum.org/v1/coneprog/kktsolver/direct"
	"gonum.org/v1/coneprog/num"
	"gonum.org/v1/coneprog/problem"
	"gonum.org/v1/coneprog/solution"
	"gonum.org/v1/coneprog/variables"
)

// WarmMode selects how SolveWarm blends a supplied guess with the cold
// start when only part of (x, s, z) is provided.
type WarmMode int

const (
	// WarmDefault uses the supplied vectors as-is, falling back to cold
	// start for any that are nil.
	WarmDefault WarmMode = iota
	// WarmBlend linearly blends the supplied guess with the cold-start
	// iterate by a factor lambda, softening an aggressive warm start.
	WarmBlend
)

// Solver drives the homogeneous self-dual embedding's Mehrotra
// predictor-corrector iteration over one problem.Data instance. Every
// field used inside the hot loop is preallocated here at construction
// time, per spec.md §5's "no heap allocation in the hot loop" resource
// budget.
type Solver[T num.Float] struct {
	data     *problem.Data[T]
	settings Settings[T]

	v    *variables.Variables[T]
	kkt  kktsolver.Solver[T]
	asm  *kkt.Assembler[T]
	res  *Residuals[T]
	info *Info[T]
	sol  *solution.Solution[T]

	// affine and combined search directions: delta.{X,Z,S,Tau,Kappa} are
	// the (dx,dz,ds,dtau,dkappa) that v.ScaledAdd consumes directly.
	deltaAff *variables.Variables[T]
	delta    *variables.Variables[T]

	vx, vz    []T // solve of K[dx;dz] = [-q; b]
	ux, uz    []T // solve of K[dx;dz] = [rx; rz - shift]
	shift     []T // combined_ds_shift output, length m
	rzShifted []T // scratch rhs for the combined solve
	negQ      []T // scratch: -q, rebuilt each solveDirection call

	n, m int
}

// NewSolver validates and wraps problem data, building the KKT assembler,
// the dense-LU solver and every preallocated scratch buffer the iteration
// needs. It returns an error rather than panicking on any construction-time
// validation failure (spec.md §7's "construction-time" error kind).
func NewSolver[T num.Float](P, A *csc.CscMatrix[T], q, b []T, coneSpecs []cones.Spec, settings Settings[T]) (*Solver[T], error) {
	coneSet := cones.NewConeSetFromSpecs[T](coneSpecs)
	data, err := problem.New(P, A, q, b, coneSet)
	if err != nil {
		return nil, err
	}
	if settings.MaxIter <= 0 {
		return nil, fmt.Errorf("%w: max_iter must be positive", ErrInvalidSettings)
	}
	if settings.MaxStepFraction <= 0 || settings.MaxStepFraction > 1 {
		return nil, fmt.Errorf("%w: max_step_fraction must be in (0,1]", ErrInvalidSettings)
	}
	if settings.Verbose && settings.Logf == nil {
		logger := log.New(os.Stderr, "", log.LstdFlags)
		settings.Logf = logger.Printf
	}

	data.Equil = equilibrate.RuizEquilibrate(data.P, data.A, data.Q, settings.Equilibrate)
	// RuizEquilibrate only touches P, A and q; b shares A's row scaling
	// (Ax + s = b) and must be rescaled by the same E here so the
	// equilibrated system stays consistent.
	for i := range data.B {
		data.B[i] *= data.Equil.E[i]
	}

	n, m := P.N, A.M
	asm := kkt.New(data.P, data.A, coneSet)
	kktSolver := direct.New(asm, settings.Direct)

	s := &Solver[T]{
		data:     data,
		settings: settings,
		v:        variables.New[T](n, m),
		kkt:      kktSolver,
		asm:      asm,
		res:      NewResiduals[T](n, m),
		info:     NewInfo[T](),
		sol:      solution.New[T](n, m),

		deltaAff: variables.New[T](n, m),
		delta:    variables.New[T](n, m),
		vx:       make([]T, n), vz: make([]T, m),
		ux:        make([]T, n), uz: make([]T, m),
		shift:     make([]T, m),
		rzShifted: make([]T, m),
		negQ:      make([]T, n),

		n: n, m: m,
	}
	return s, nil
}

// Solve runs the cold-start iteration: x=0, (s,z) at each cone's identity
// element, tau=kappa=1.
func (s *Solver[T]) Solve() *solution.Solution[T] {
	s.v.Initialize(s.data.Cones)
	return s.run()
}

// SolveWarm runs the iteration from a caller-supplied guess. Any of x, s,
// z that is nil falls back to the cold-start value for that block, per
// spec.md §6's "falls back to cold" contract. WarmBlend linearly
// interpolates the supplied guess toward the cold start by lambda (0 keeps
// the guess, 1 is fully cold).
func (s *Solver[T]) SolveWarm(x, sSlack, z []T, mode WarmMode, lambda T) (*solution.Solution[T], error) {
	s.v.Initialize(s.data.Cones)
	cold := s.v.Clone()

	if x != nil {
		if len(x) != s.n {
			return nil, fmt.Errorf("%w: x", ErrWarmStartShape)
		}
		copy(s.v.X, x)
	}
	if sSlack != nil {
		if len(sSlack) != s.m {
			return nil, fmt.Errorf("%w: s", ErrWarmStartShape)
		}
		copy(s.v.S, sSlack)
	}
	if z != nil {
		if len(z) != s.m {
			return nil, fmt.Errorf("%w: z", ErrWarmStartShape)
		}
		copy(s.v.Z, z)
	}

	if mode == WarmBlend {
		blend(s.v.X, cold.X, lambda)
		blend(s.v.S, cold.S, lambda)
		blend(s.v.Z, cold.Z, lambda)
	}

	s.v.ShiftToInterior(s.data.Cones)
	return s.run(), nil
}

func blend[T num.Float](warm, cold []T, lambda T) {
	for i := range warm {
		warm[i] = (1-lambda)*warm[i] + lambda*cold[i]
	}
}

// UpdateP overwrites P (given in the caller's original, unequilibrated
// coordinates) by applying the solver's stored equilibration and writing
// through both ProblemData and the KKT assembler's PtoKKT reverse map,
// without resymbolizing.
func (s *Solver[T]) UpdateP(P *csc.CscMatrix[T]) error {
	scaled := scaleLikeP(P, s.data.Equil)
	if err := s.data.UpdateP(scaled); err != nil {
		return err
	}
	return s.asm.UpdateP(s.data.P)
}

// UpdateA overwrites A (original coordinates), writing through both
// ProblemData and the KKT assembler's AtoKKT reverse map.
func (s *Solver[T]) UpdateA(A *csc.CscMatrix[T]) error {
	scaled := scaleLikeA(A, s.data.Equil)
	if err := s.data.UpdateA(scaled); err != nil {
		return err
	}
	return s.asm.UpdateA(s.data.A)
}

// UpdateQ overwrites q (original coordinates) in place.
func (s *Solver[T]) UpdateQ(q []T) error {
	scaled := make([]T, len(q))
	for i, qi := range q {
		scaled[i] = qi * s.data.Equil.D[i] * s.data.Equil.C
	}
	if err := s.data.UpdateQ(scaled); err != nil {
		return err
	}
	s.asm.UpdateQ(s.data.Q)
	return nil
}

// UpdateB overwrites b (original coordinates) in place.
func (s *Solver[T]) UpdateB(b []T) error {
	scaled := make([]T, len(b))
	for i, bi := range b {
		scaled[i] = bi * s.data.Equil.E[i]
	}
	return s.data.UpdateB(scaled)
}

// scaleLikeP returns a copy of P with values rescaled by the stored
// equilibration's D and C, same sparsity pattern (shared Colptr/Rowval).
func scaleLikeP[T num.Float](P *csc.CscMatrix[T], equil equilibrate.Equilibration[T]) *csc.CscMatrix[T] {
	nzval := make([]T, len(P.Nzval))
	for col := 0; col < P.N; col++ {
		for j := P.Colptr[col]; j < P.Colptr[col+1]; j++ {
			row := P.Rowval[j]
			nzval[j] = P.Nzval[j] * equil.D[row] * equil.D[col] * equil.C
		}
	}
	return csc.New[T](P.M, P.N, P.Colptr, P.Rowval, nzval)
}

// scaleLikeA returns a copy of A with values rescaled by the stored
// equilibration's D and E, same sparsity pattern.
func scaleLikeA[T num.Float](A *csc.CscMatrix[T], equil equilibrate.Equilibration[T]) *csc.CscMatrix[T] {
	nzval := make([]T, len(A.Nzval))
	for col := 0; col < A.N; col++ {
		for j := A.Colptr[col]; j < A.Colptr[col+1]; j++ {
			row := A.Rowval[j]
			nzval[j] = A.Nzval[j] * equil.E[row] * equil.D[col]
		}
	}
	return csc.New[T](A.M, A.N, A.Colptr, A.Rowval, nzval)
}

// Info returns the driver's running bookkeeping, valid after a call to
// Solve or SolveWarm.
func (s *Solver[T]) Info() *Info[T] { return s.info }

// run executes the per-iteration protocol of spec.md §4.4 until a terminal
// status is reached, then finalizes and returns the Solution.
func (s *Solver[T]) run() *solution.Solution[T] {
	s.info.reset()
	s.sol.Reset()
	start := time.Now()

	status := solution.Unsolved
	iter := 0
	for {
		s.res.Compute(s.data, s.v)

		if s.settings.Logf != nil {
			s.settings.Logf("iter %d: pcost=%.6e dcost=%.6e rprimal=%.3e rdual=%.3e mu=%.3e",
				iter, s.res.CostPrimal, s.res.CostDual, s.res.RPrimalNorm, s.res.RDualNorm, s.res.Mu)
		}

		if st, done := s.checkTermination(iter); done {
			status = st
			break
		}

		kktStart := time.Now()
		if !s.data.Cones.UpdateScaling(s.v.S, s.v.Z) {
			status = solution.ScalingError
			break
		}
		if err := s.kkt.Update(s.data.Cones); err != nil {
			status = solution.NumericalError
			break
		}
		s.info.Timings["kkt_update"] += time.Since(kktStart)

		// Step 5: affine step.
		solveStart := time.Now()
		if err := s.solveAffine(); err != nil {
			status = solution.NumericalError
			break
		}
		alphaAffZ, alphaAffS := s.data.Cones.StepLength(s.deltaAff.Z, s.deltaAff.S, s.v.Z, s.v.S)
		alphaAff := num.Min(alphaAffZ, alphaAffS)

		sigma := s.centeringParameter(alphaAff)

		// Step 7: combined (corrector) step.
		if err := s.solveCombined(sigma); err != nil {
			status = solution.NumericalError
			break
		}
		s.info.Timings["solve"] += time.Since(solveStart)

		alphaZ, alphaS := s.data.Cones.StepLength(s.delta.Z, s.delta.S, s.v.Z, s.v.S)
		alpha := num.Min(alphaZ, alphaS) * s.settings.MaxStepFraction

		linesearchStart := time.Now()
		alpha, ok := s.backtrackLineSearch(alpha)
		s.info.Timings["linesearch"] += time.Since(linesearchStart)
		if !ok {
			status = solution.InsufficientProgress
			break
		}

		s.v.ScaledAdd(alpha, s.delta)

		if s.settings.SaveIterates {
			s.sol.SavePrevIterate(s.data.Equil, s.v.X, s.v.Z, s.v.S, s.v.Tau, s.v.Kappa, false)
		}

		iter++
		if iter >= s.settings.MaxIter {
			status = solution.MaxIterations
			break
		}
		if s.settings.TimeLimit > 0 && time.Since(start) > s.settings.TimeLimit {
			status = solution.MaxTime
			break
		}
	}

	solveTime := time.Since(start).Seconds()
	if s.settings.Logf != nil {
		s.settings.Logf("terminated: status=%s iterations=%d time=%.3fs", status, iter, solveTime)
	}
	s.info.Status = status
	s.info.Iterations = iter
	s.info.SolveTime = solveTime
	s.info.CostPrimal = s.res.CostPrimal
	s.info.CostDual = s.res.CostDual
	s.info.ResPrimal = s.res.RPrimalNorm
	s.info.ResDual = s.res.RDualNorm
	s.info.Timings["total"] = time.Since(start)

	s.sol.Finalize(s.data.Equil, s.v.X, s.v.Z, s.v.S, s.v.Tau, s.v.Kappa,
		status, s.res.CostPrimal, s.res.CostDual, iter, s.res.RPrimalNorm, s.res.RDualNorm,
		solveTime, s.info.Timings)
	return s.sol
}

// checkTermination evaluates the full- and reduced-accuracy convergence
// criteria plus the infeasibility certificates, per spec.md §7.
func (s *Solver[T]) checkTermination(iter int) (solution.Status, bool) {
	r := s.res
	tau, kappa := s.v.Tau, s.v.Kappa

	full := r.RPrimalNorm <= s.settings.TolFeas &&
		r.RDualNorm <= s.settings.TolFeas &&
		(num.Abs(r.CostPrimal-r.CostDual) <= s.settings.TolGapAbs || r.RGap <= s.settings.TolGapRel) &&
		kappa/tau <= s.settings.TolKtRatio
	if full {
		return solution.Solved, true
	}

	reduced := r.RPrimalNorm <= s.settings.ReducedTolFeas &&
		r.RDualNorm <= s.settings.ReducedTolFeas &&
		(num.Abs(r.CostPrimal-r.CostDual) <= s.settings.ReducedTolGapAbs || r.RGap <= s.settings.ReducedTolGapRel) &&
		kappa/tau <= s.settings.ReducedTolKtRatio
	if reduced && iter > 0 {
		return solution.AlmostSolved, true
	}

	if tau < kappa*s.settings.TolInfeasAbs {
		bz := dot(s.data.B, s.v.Z)
		if bz < -s.settings.TolInfeasRel && r.RDualNorm <= s.settings.TolInfeasAbs {
			if reduced {
				return solution.AlmostPrimalInfeasible, true
			}
			return solution.PrimalInfeasible, true
		}
		qx := dot(s.data.Q, s.v.X)
		if qx < -s.settings.TolInfeasRel && r.RPrimalNorm <= s.settings.TolInfeasAbs {
			if reduced {
				return solution.AlmostDualInfeasible, true
			}
			return solution.DualInfeasible, true
		}
	}

	return solution.Unsolved, false
}

// centeringParameter computes sigma = (1-alpha_aff)^3, applying the
// centering safeguard of spec.md §4.4: a pure centering step (sigma=1)
// when the affine step is too short to make progress.
func (s *Solver[T]) centeringParameter(alphaAff T) T {
	if alphaAff < s.settings.MinSwitchStepLength {
		return 1
	}
	sigma := (1 - alphaAff)
	sigma = sigma * sigma * sigma
	return num.Min(num.Max(sigma, 0), 1)
}

// backtrackLineSearch shrinks alpha by linesearch_backtrack_step while the
// trial point (z+alpha*dz, s+alpha*ds) falls outside some block's cone:
// ComputeBarrier returns +Inf for a block whose trial point has left the
// cone (a nonpositive coordinate, a nonpositive SOC determinant, a
// non-PSD Cholesky factor) and a finite value otherwise, so a finite,
// non-NaN barrier is exactly "the trial point is still interior". The
// StepLength call already bounds alpha below the boundary to floating-point
// precision; this loop is the backstop for the rarer case where a block's
// own feasibility test (e.g. Cholesky factorization) is stricter than the
// ratio test that produced alpha.
func (s *Solver[T]) backtrackLineSearch(alpha T) (T, bool) {
	for {
		barrier := s.data.Cones.ComputeBarrier(s.v.Z, s.v.S, s.delta.Z, s.delta.S, alpha)
		if !num.IsInf(barrier, 1) && !num.IsNaN(barrier) {
			return alpha, true
		}
		alpha *= s.settings.LinesearchBacktrackStep
		if alpha < s.settings.MinTerminateStepLength {
			return 0, false
		}
	}
}
