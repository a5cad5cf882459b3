// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrate

import (
	"gonum.org/v1/coneprog/csc"
	"gonum.org/v1/coneprog/num"
)

// Equilibration holds the diagonal scaling applied to a problem before it
// is handed to the IPM driver: x is rescaled by D, (s, z) by E (Einv
// caches 1/E so the hot loop never divides), and the objective by the
// scalar C.
type Equilibration[T num.Float] struct {
	D    []T
	E    []T
	Einv []T
	C    T
}

// Identity returns the no-op equilibration for a problem of primal
// dimension n and cone dimension m.
func Identity[T num.Float](n, m int) Equilibration[T] {
	eq := Equilibration[T]{
		D:    make([]T, n),
		E:    make([]T, m),
		Einv: make([]T, m),
		C:    1,
	}
	for i := range eq.D {
		eq.D[i] = 1
	}
	for i := range eq.E {
		eq.E[i] = 1
		eq.Einv[i] = 1
	}
	return eq
}

// Settings configures the Ruiz equilibration iteration.
type Settings[T num.Float] struct {
	Enable     bool
	MaxIter    int
	MinScaling T
	MaxScaling T
}

// DefaultSettings returns the settings used by a cold-start solve.
func DefaultSettings[T num.Float]() Settings[T] {
	return Settings[T]{
		Enable:     true,
		MaxIter:    10,
		MinScaling: T(1e-4),
		MaxScaling: T(1e4),
	}
}

// RuizEquilibrate computes the diagonal scaling of the augmented system
// [[P, A'], [A, 0]] via iterated geometric-mean row/column scaling:
// repeatedly rescale every column of P and A by the inverse square root of
// its infinity norm, and every row of A by the inverse square root of its
// infinity norm, until the rescaled infinity norms are within a factor of
// two of 1 or MaxIter rounds have run. The returned scaling also rescales
// the linear term q and a uniform objective scale C so that P and q share
// the same row-scaled magnitude, the standard additional Ruiz step.
//
// This routine has no equivalent in the retrieved original source (which
// treats equilibration as externally supplied); it is built fresh from the
// standard diagonal Ruiz preconditioner gonum's ecosystem otherwise has no
// off-the-shelf routine for, per DESIGN.md.
func RuizEquilibrate[T num.Float](P, A *csc.CscMatrix[T], q []T, settings Settings[T]) Equilibration[T] {
	n, m := P.N, A.M
	eq := Identity[T](n, m)
	if !settings.Enable {
		return eq
	}

	colNorm := make([]T, n)
	rowNorm := make([]T, m)

	for iter := 0; iter < settings.MaxIter; iter++ {
		for i := range colNorm {
			colNorm[i] = 0
		}
		for i := range rowNorm {
			rowNorm[i] = 0
		}

		// P is symmetric, stored upper triangular: each stored entry
		// (r,c) contributes to both column c and column r's norm.
		for col := 0; col < P.N; col++ {
			for j := P.Colptr[col]; j < P.Colptr[col+1]; j++ {
				row := P.Rowval[j]
				v := num.Abs(P.Nzval[j])
				colNorm[col] = num.Max(colNorm[col], v)
				colNorm[row] = num.Max(colNorm[row], v)
			}
		}
		for col := 0; col < A.N; col++ {
			for j := A.Colptr[col]; j < A.Colptr[col+1]; j++ {
				row := A.Rowval[j]
				v := num.Abs(A.Nzval[j])
				colNorm[col] = num.Max(colNorm[col], v)
				rowNorm[row] = num.Max(rowNorm[row], v)
			}
		}

		converged := true
		for _, v := range append(append([]T(nil), colNorm...), rowNorm...) {
			if v != 0 && (v < 0.5 || v > 2) {
				converged = false
			}
		}
		if converged {
			break
		}

		d := make([]T, n)
		e := make([]T, m)
		for i, cn := range colNorm {
			d[i] = clampScaling(cn, settings)
		}
		for i, rn := range rowNorm {
			e[i] = clampScaling(rn, settings)
		}

		applyScaling(P, A, d, e)
		for i := range eq.D {
			eq.D[i] *= d[i]
		}
		for i := range eq.E {
			eq.E[i] *= e[i]
		}
	}

	for i := range eq.Einv {
		if eq.E[i] != 0 {
			eq.Einv[i] = 1 / eq.E[i]
		} else {
			eq.Einv[i] = 1
		}
	}

	// Scale q in place to match P's rescaling and derive the uniform
	// objective scale C from P's mean rescaled magnitude.
	for i := range q {
		q[i] *= eq.D[i]
	}
	var sum T
	count := 0
	for _, v := range P.Nzval {
		sum += num.Abs(v)
		count++
	}
	if count > 0 && sum > 0 {
		mean := sum / T(count)
		eq.C = clampScaling(mean, settings)
	}
	for i := range P.Nzval {
		P.Nzval[i] *= eq.C
	}
	for i := range q {
		q[i] *= eq.C
	}

	return eq
}

func clampScaling[T num.Float](norm T, settings Settings[T]) T {
	if norm <= 0 {
		return 1
	}
	s := 1 / num.Sqrt(norm)
	if s < settings.MinScaling {
		return settings.MinScaling
	}
	if s > settings.MaxScaling {
		return settings.MaxScaling
	}
	return s
}

// applyScaling rescales P (symmetric, upper triangular) by d on both sides
// and A by e on rows and d on columns, in place.
func applyScaling[T num.Float](P, A *csc.CscMatrix[T], d, e []T) {
	for col := 0; col < P.N; col++ {
		for j := P.Colptr[col]; j < P.Colptr[col+1]; j++ {
			row := P.Rowval[j]
			P.Nzval[j] *= d[row] * d[col]
		}
	}
	for col := 0; col < A.N; col++ {
		for j := A.Colptr[col]; j < A.Colptr[col+1]; j++ {
			row := A.Rowval[j]
			A.Nzval[j] *= e[row] * d[col]
		}
	}
}
