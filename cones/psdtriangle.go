// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cones

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"gonum.org/v1/coneprog/num"
)

// The PSD cone is the one place in this package that reaches for dense
// linear algebra: computing the Nesterov-Todd scaling for a symmetric
// matrix cone requires a Cholesky factorization and an SVD, for which
// gonum/mat is the wired dependency (DESIGN.md). The scaled-triangle
// vector representation (off-diagonal entries multiplied by sqrt(2)) keeps
// the Euclidean inner product of the vector equal to the trace inner
// product of the underlying matrices, following the same "svec" convention
// the cone's dimension count (side*(side+1)/2) presupposes.

func triToSym(x []float64, side int) *mat.SymDense {
	m := mat.NewSymDense(side, nil)
	idx := 0
	for j := 0; j < side; j++ {
		for i := 0; i <= j; i++ {
			v := x[idx]
			idx++
			if i != j {
				v /= math.Sqrt2
			}
			m.SetSym(i, j, v)
		}
	}
	return m
}

func symToTri(m mat.Symmetric, out []float64) {
	side, _ := m.Dims()
	idx := 0
	for j := 0; j < side; j++ {
		for i := 0; i <= j; i++ {
			v := m.At(i, j)
			if i != j {
				v *= math.Sqrt2
			}
			out[idx] = v
			idx++
		}
	}
}

func toFloat64Slice[T num.Float](x []T) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

func fromFloat64Slice[T num.Float](dst []T, x []float64) {
	for i, v := range x {
		dst[i] = T(v)
	}
}

// updateScalingPSD computes R such that R^T * mat(z) * R == diag(lambda) ==
// Rinv * mat(s) * Rinv^T, the Todd-Toh-Tutuncu construction via
// Cholesky(s), Cholesky(z) and the SVD of their product, grounded on the
// same cvxopt-derived lineage as _examples/hrautila-go.opt. Rinv is then
// computed as the explicit matrix inverse of R so that MulW/MulWinv are
// genuine algebraic inverses of each other regardless of any approximation
// error in the NT construction itself.
func (c *Cone[T]) updateScalingPSD(s, z []T) bool {
	side := c.side
	S := triToSym(toFloat64Slice(s), side)
	Z := triToSym(toFloat64Slice(z), side)

	var cholS, cholZ mat.Cholesky
	if ok := cholS.Factorize(S); !ok {
		return false
	}
	if ok := cholZ.Factorize(Z); !ok {
		return false
	}
	var Ls, Lz mat.TriDense
	cholS.LTo(&Ls)
	cholZ.LTo(&Lz)

	var prod mat.Dense
	prod.Mul(Lz.T(), &Ls)

	var svd mat.SVD
	if ok := svd.Factorize(&prod, mat.SVDFull); !ok {
		return false
	}
	lambda := svd.Values(nil)
	for _, l := range lambda {
		if l <= 0 {
			return false
		}
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)

	invSqrtLambda := mat.NewDiagDense(side, nil)
	for i, l := range lambda {
		invSqrtLambda.SetDiag(i, 1/math.Sqrt(l))
	}

	var R mat.Dense
	R.Mul(&Ls, &V)
	R.Mul(&R, invSqrtLambda)

	var Rinv mat.Dense
	if err := Rinv.Inverse(&R); err != nil {
		return false
	}

	fromFloat64Slice(c.r, R.RawMatrix().Data)
	fromFloat64Slice(c.rinv, Rinv.RawMatrix().Data)
	return true
}

// mulWPSD applies the congruence X -> R^T X R (inverse = false) or
// X -> Rinv^T X Rinv (inverse = true) to the symmetric matrix represented
// by xIn, writing the scaled-triangle result to xOut. With isTranspose set
// it applies the adjoint under the trace inner product, X -> F X F^T for
// the same factor F.
func (c *Cone[T]) mulWPSD(isTranspose bool, xOut, xIn []T, inverse bool) {
	side := c.side
	X := triToSym(toFloat64Slice(xIn), side)
	var factor *mat.Dense
	if inverse {
		factor = mat.NewDense(side, side, c.rinvFloat())
	} else {
		factor = mat.NewDense(side, side, c.rFloat())
	}
	var tmp, result mat.Dense
	if isTranspose {
		tmp.Mul(factor, X)
		result.Mul(&tmp, factor.T())
	} else {
		tmp.Mul(factor.T(), X)
		result.Mul(&tmp, factor)
	}
	symResult := mat.NewSymDense(side, nil)
	for i := 0; i < side; i++ {
		for j := i; j < side; j++ {
			symResult.SetSym(i, j, 0.5*(result.At(i, j)+result.At(j, i)))
		}
	}
	tri := make([]float64, len(xOut))
	symToTri(symResult, tri)
	fromFloat64Slice(xOut, tri)
}

func (c *Cone[T]) rFloat() []float64    { return toFloat64Slice(c.r) }
func (c *Cone[T]) rinvFloat() []float64 { return toFloat64Slice(c.rinv) }

// combinedDsShiftPSD builds the Mehrotra correction term for a PSD block:
// the symmetrized matrix product of the scaled affine steps, shifted by
// sigmaMu along the identity direction.
func (c *Cone[T]) combinedDsShiftPSD(shiftOut, stepZ, stepS []T, sigmaMu T) {
	side := c.side
	wz := make([]T, c.dim)
	ws := make([]T, c.dim)
	c.mulWPSD(false, wz, stepZ, false)
	c.mulWPSD(false, ws, stepS, true)

	Wz := triToSym(toFloat64Slice(wz), side)
	Ws := triToSym(toFloat64Slice(ws), side)
	var prod, prodT, sym mat.Dense
	prod.Mul(Wz, Ws)
	prodT.Mul(Ws, Wz)
	sym.Scale(0.5, &prod)
	var symT mat.Dense
	symT.Scale(0.5, &prodT)
	sym.Add(&sym, &symT)

	symResult := mat.NewSymDense(side, nil)
	for i := 0; i < side; i++ {
		for j := i; j < side; j++ {
			symResult.SetSym(i, j, sym.At(i, j))
		}
	}
	tri := make([]float64, c.dim)
	symToTri(symResult, tri)
	for i := range shiftOut {
		shiftOut[i] = T(tri[i])
	}
	idx := 0
	for j := 0; j < side; j++ {
		for i := 0; i <= j; i++ {
			if i == j {
				shiftOut[idx] -= sigmaMu
			}
			idx++
		}
	}
}

// psdStep returns the largest alpha in (0,1] such that x+alpha*step stays
// positive definite, found as 1/max(0,-minEigenvalue-ratio) via the
// generalized eigenvalues of (step, x) — equivalently the eigenvalues of
// x^{-1/2} step x^{-1/2}.
func (c *Cone[T]) psdStep(step, x []T) T {
	side := c.side
	X := triToSym(toFloat64Slice(x), side)
	var chol mat.Cholesky
	if ok := chol.Factorize(X); !ok {
		return 0
	}
	var L mat.TriDense
	chol.LTo(&L)
	var Linv mat.Dense
	if err := Linv.Inverse(&L); err != nil {
		return 0
	}

	Step := triToSym(toFloat64Slice(step), side)
	var tmp, M mat.Dense
	tmp.Mul(&Linv, Step)
	M.Mul(&tmp, Linv.T())
	symM := mat.NewSymDense(side, nil)
	for i := 0; i < side; i++ {
		for j := i; j < side; j++ {
			symM.SetSym(i, j, 0.5*(M.At(i, j)+M.At(j, i)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(symM, false); !ok {
		return 1
	}
	values := eig.Values(nil)
	minEig := values[0]
	for _, v := range values {
		if v < minEig {
			minEig = v
		}
	}
	if minEig >= 0 {
		return 1
	}
	alpha := T(-1 / minEig)
	if alpha > 1 || num.IsNaN(alpha) {
		return 1
	}
	return alpha
}

// psdBarrier evaluates -logdet(x+alpha*step).
func (c *Cone[T]) psdBarrier(x, step []T, alpha T) T {
	side := c.side
	trial := make([]T, c.dim)
	for i := range trial {
		trial[i] = x[i] + alpha*step[i]
	}
	M := triToSym(toFloat64Slice(trial), side)
	var chol mat.Cholesky
	if ok := chol.Factorize(M); !ok {
		return num.Inf[T](1)
	}
	return T(-chol.LogDet())
}

// psdMargins returns the smallest eigenvalue of mat(z) as minDist and its
// trace as sumDist.
func (c *Cone[T]) psdMargins(z []T) (minDist, sumDist T) {
	side := c.side
	M := triToSym(toFloat64Slice(z), side)
	var eig mat.EigenSym
	if ok := eig.Factorize(M, false); !ok {
		return num.Inf[T](-1), 0
	}
	values := eig.Values(nil)
	min := values[0]
	var sum float64
	for _, v := range values {
		if v < min {
			min = v
		}
		sum += v
	}
	return T(min), T(sum)
}
