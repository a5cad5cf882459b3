// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package direct implements kktsolver.Solver by densifying the assembled
// sparse KKT matrix and factoring it with gonum/mat's LU decomposition.
// This trades asymptotic efficiency for implementation simplicity: no
// sparse factorization package is available in the wired dependency set
// (DESIGN.md), and the module's target problem sizes are small enough that
// a dense factorization is a reasonable default path, not a scalability
// claim.
package direct

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"gonum.org/v1/coneprog/cones"
	"gonum.org/v1/coneprog/kkt"
	"gonum.org/v1/coneprog/num"
)

// ErrFactorization reports that the KKT matrix could not be factored even
// after dynamic regularization was bumped, an unrecoverable numerical
// failure that the IPM driver escalates to solution.NumericalError.
var ErrFactorization = errors.New("kktsolver/direct: KKT factorization failed")

// Settings configures regularization and iterative refinement.
type Settings[T num.Float] struct {
	StaticRegularizationEnable bool
	StaticRegularizationEps    T

	DynamicRegularizationEnable bool
	DynamicRegularizationEps    T
	DynamicRegularizationDelta  T

	IterativeRefinementEnable  bool
	IterativeRefinementRelTol  T
	IterativeRefinementAbsTol  T
	IterativeRefinementMaxIter int
	IterativeRefinementStopRatio T
}

// DefaultSettings returns the settings used by a cold-start solve.
func DefaultSettings[T num.Float]() Settings[T] {
	return Settings[T]{
		StaticRegularizationEnable: true,
		StaticRegularizationEps:    T(1e-8),

		DynamicRegularizationEnable: true,
		DynamicRegularizationEps:    T(1e-13),
		DynamicRegularizationDelta:  T(2e-7),

		IterativeRefinementEnable:    true,
		IterativeRefinementRelTol:    T(1e-12),
		IterativeRefinementAbsTol:    T(1e-12),
		IterativeRefinementMaxIter:   10,
		IterativeRefinementStopRatio: T(5),
	}
}

// Solver is the dense-LU kktsolver.Solver implementation.
type Solver[T num.Float] struct {
	asm      *kkt.Assembler[T]
	settings Settings[T]

	dim   int
	dense *mat.Dense
	lu    mat.LU
	stale bool

	xrhs, zrhs []T
	rhs        *mat.VecDense
}

// New wraps an assembled KKT matrix for dense-LU solving.
func New[T num.Float](asm *kkt.Assembler[T], settings Settings[T]) *Solver[T] {
	dim := asm.N + asm.M
	return &Solver[T]{
		asm:      asm,
		settings: settings,
		dim:      dim,
		stale:    true,
		xrhs:     make([]T, asm.N),
		zrhs:     make([]T, asm.M),
		dense:    mat.NewDense(dim, dim, nil),
		rhs:      mat.NewVecDense(dim, nil),
	}
}

// Update refreshes the KKT matrix from the current cone scaling and marks
// the factorization stale; the next Solve call re-densifies and
// re-factors.
func (s *Solver[T]) Update(coneSet *cones.ConeSet[T]) error {
	s.asm.Refresh(coneSet)
	s.stale = true
	return nil
}

// SetRHS stores the right-hand side for the next Solve call.
func (s *Solver[T]) SetRHS(xrhs, zrhs []T) {
	copy(s.xrhs, xrhs)
	copy(s.zrhs, zrhs)
}

// Solve factors the KKT matrix if stale, then solves for (dx, dz) with
// iterative refinement when enabled.
func (s *Solver[T]) Solve(dx, dz []T) error {
	if s.stale {
		if err := s.factor(); err != nil {
			return err
		}
	}

	for i := 0; i < s.dim; i++ {
		if i < s.asm.N {
			s.rhs.SetVec(i, float64(s.xrhs[i]))
		} else {
			s.rhs.SetVec(i, float64(s.zrhs[i-s.asm.N]))
		}
	}

	sol := mat.NewVecDense(s.dim, nil)
	if err := sol.SolveVec(&s.lu, s.rhs); err != nil {
		return err
	}

	if s.settings.IterativeRefinementEnable {
		s.refine(sol)
	}

	for i := 0; i < s.asm.N; i++ {
		dx[i] = T(sol.AtVec(i))
	}
	for i := 0; i < s.asm.M; i++ {
		dz[i] = T(sol.AtVec(s.asm.N + i))
	}
	return nil
}

// factor densifies the sparse KKT matrix, applies static and (on a
// breakdown) dynamic regularization, and runs mat.LU. It retries once with
// a bumped dynamic regularization epsilon on a singular pivot before
// reporting ErrFactorization, per the dynamic-regularization contract.
func (s *Solver[T]) factor() error {
	s.densify()
	if s.settings.StaticRegularizationEnable {
		s.applyDiagRegularization(s.settings.StaticRegularizationEps)
	}

	s.lu.Factorize(s.dense)
	if !math.IsInf(s.lu.Cond(), 0) && s.lu.Cond() < 1/epsilon() {
		s.stale = false
		return nil
	}

	if !s.settings.DynamicRegularizationEnable {
		return ErrFactorization
	}

	s.densify()
	if s.settings.StaticRegularizationEnable {
		s.applyDiagRegularization(s.settings.StaticRegularizationEps)
	}
	s.applyDiagRegularization(s.settings.DynamicRegularizationEps + s.settings.DynamicRegularizationDelta)

	s.lu.Factorize(s.dense)
	if math.IsInf(s.lu.Cond(), 0) {
		return ErrFactorization
	}
	s.stale = false
	return nil
}

func epsilon() float64 { return 2.220446049250313e-16 }

// densify mirrors the upper-triangular sparse KKT into a full dense
// symmetric matrix.
func (s *Solver[T]) densify() {
	s.dense.Zero()
	m := s.asm.KKT
	for col := 0; col < m.N; col++ {
		for j := m.Colptr[col]; j < m.Colptr[col+1]; j++ {
			row := m.Rowval[j]
			v := float64(m.Nzval[j])
			s.dense.Set(row, col, v)
			if row != col {
				s.dense.Set(col, row, v)
			}
		}
	}
}

// applyDiagRegularization adds eps to every P-block diagonal entry and
// subtracts eps from every H-block diagonal entry, keeping the augmented
// system quasidefinite the way a fixed static perturbation is meant to.
func (s *Solver[T]) applyDiagRegularization(eps T) {
	for i := 0; i < s.asm.N; i++ {
		s.dense.Set(i, i, s.dense.At(i, i)+float64(eps))
	}
	for i := s.asm.N; i < s.dim; i++ {
		s.dense.Set(i, i, s.dense.At(i, i)-float64(eps))
	}
}

// refine runs a reverse-communication-shaped iterative refinement loop: at
// each round it computes the residual against the dense KKT matrix,
// solves the correction with the already-factored LU, and accepts the
// correction unless the residual stops shrinking fast enough
// (IterativeRefinementStopRatio), mirroring the Method/Context split of
// gonum/linsolve without importing it, since here the operator is the
// fixed dense KKT matrix rather than a caller-supplied linear map.
func (s *Solver[T]) refine(x *mat.VecDense) {
	var residual, correction mat.VecDense
	residual.CloneFromVec(s.rhs)

	prevNorm := math.Inf(1)
	for iter := 0; iter < s.settings.IterativeRefinementMaxIter; iter++ {
		residual.MulVec(s.dense, x)
		residual.SubVec(s.rhs, &residual)
		norm := mat.Norm(&residual, 2)

		tol := float64(s.settings.IterativeRefinementAbsTol) +
			float64(s.settings.IterativeRefinementRelTol)*mat.Norm(s.rhs, 2)
		if norm <= tol {
			return
		}
		if prevNorm/norm < float64(s.settings.IterativeRefinementStopRatio) && iter > 0 {
			return
		}
		prevNorm = norm

		if err := correction.SolveVec(&s.lu, &residual); err != nil {
			return
		}
		x.AddVec(x, &correction)
	}
}
