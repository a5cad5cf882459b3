// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cones

import (
	"fmt"
	"math"

	"gonum.org/v1/coneprog/num"
)

// Kind tags the variant stored in a Cone.
type Kind int

const (
	Zero Kind = iota
	Nonnegative
	SecondOrder
	PSDTriangle
)

func (k Kind) String() string {
	switch k {
	case Zero:
		return "Zero"
	case Nonnegative:
		return "Nonnegative"
	case SecondOrder:
		return "SecondOrder"
	case PSDTriangle:
		return "PSDTriangle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Cone is a tagged union over the supported cone kinds. Only the fields
// relevant to Kind are populated; the zero value of a field unused by the
// active Kind is never read.
type Cone[T num.Float] struct {
	Kind Kind
	dim  int

	// Nonnegative: diagonal NT scaling d[i] = sqrt(s[i]/z[i]).
	d []T

	// SecondOrder: NT scaling point w (w0^2 - ||w1||^2 == 1) and scalar
	// factor eta, per SPEC_FULL.md §5.2 / DESIGN.md.
	w   []T
	eta T

	// PSDTriangle: side length of the underlying symmetric matrix (dim is
	// the vectorized-triangle length n*(n+1)/2) and the dense NT scaling
	// matrix R such that W * vec(X) applies R X R^T, vectorized.
	side int
	r    []T // side x side, row-major
	rinv []T
}

// NewZero returns a zero cone of dimension k (s == 0, z free).
func NewZero[T num.Float](k int) Cone[T] {
	if k <= 0 {
		panic("cones: zero cone dimension must be positive")
	}
	return Cone[T]{Kind: Zero, dim: k}
}

// NewNonnegative returns a nonnegative-orthant cone of dimension k.
func NewNonnegative[T num.Float](k int) Cone[T] {
	if k <= 0 {
		panic("cones: nonnegative cone dimension must be positive")
	}
	c := Cone[T]{Kind: Nonnegative, dim: k, d: make([]T, k)}
	c.SetIdentityScaling()
	return c
}

// NewSecondOrder returns a second-order cone of dimension k (k >= 1).
func NewSecondOrder[T num.Float](k int) Cone[T] {
	if k < 1 {
		panic("cones: second-order cone dimension must be at least 1")
	}
	c := Cone[T]{Kind: SecondOrder, dim: k, w: make([]T, k)}
	c.SetIdentityScaling()
	return c
}

// NewPSDTriangle returns a PSD cone over side×side symmetric matrices,
// stored in scaled-triangle form of dimension side*(side+1)/2.
func NewPSDTriangle[T num.Float](side int) Cone[T] {
	if side <= 0 {
		panic("cones: psd cone side must be positive")
	}
	dim := side * (side + 1) / 2
	c := Cone[T]{Kind: PSDTriangle, dim: dim, side: side, r: make([]T, side*side), rinv: make([]T, side*side)}
	c.SetIdentityScaling()
	return c
}

// Dim returns the block dimension of the cone.
func (c *Cone[T]) Dim() int { return c.dim }

// SetIdentityScaling resets the cone's scaling state to the identity, used
// at the start of a cold-start solve (spec.md §4.4 initialization).
func (c *Cone[T]) SetIdentityScaling() {
	switch c.Kind {
	case Zero:
		// no scaling state
	case Nonnegative:
		for i := range c.d {
			c.d[i] = 1
		}
	case SecondOrder:
		for i := range c.w {
			c.w[i] = 0
		}
		c.w[0] = 1
		c.eta = 1
	case PSDTriangle:
		identitySide(c.r, c.side)
		identitySide(c.rinv, c.side)
	}
}

func identitySide[T num.Float](m []T, side int) {
	for i := range m {
		m[i] = 0
	}
	for i := 0; i < side; i++ {
		m[i*side+i] = 1
	}
}

// UpdateScaling recomputes the cone's Nesterov-Todd scaling from the
// current primal/dual blocks. It reports false on numerical breakdown
// (spec.md's ScalingError contract), in which case the cone's previous
// scaling state is left untouched.
func (c *Cone[T]) UpdateScaling(s, z []T) bool {
	switch c.Kind {
	case Zero:
		return true
	case Nonnegative:
		return c.updateScalingNonnegative(s, z)
	case SecondOrder:
		return c.updateScalingSecondOrder(s, z)
	case PSDTriangle:
		return c.updateScalingPSD(s, z)
	default:
		panic("cones: unknown kind")
	}
}

// MulW applies the scaling matrix W (or its transpose) to xIn, writing the
// result to xOut. xOut and xIn must not alias.
func (c *Cone[T]) MulW(isTranspose bool, xOut, xIn []T) {
	switch c.Kind {
	case Zero:
		copy(xOut, xIn)
	case Nonnegative:
		for i, di := range c.d {
			xOut[i] = di * xIn[i]
		}
		_ = isTranspose // diagonal scaling is self-transpose
	case SecondOrder:
		c.mulWSecondOrder(isTranspose, xOut, xIn)
	case PSDTriangle:
		c.mulWPSD(isTranspose, xOut, xIn, false)
	}
}

// MulWinv applies W^-1 (or its transpose) to xIn, writing the result to
// xOut.
func (c *Cone[T]) MulWinv(isTranspose bool, xOut, xIn []T) {
	switch c.Kind {
	case Zero:
		copy(xOut, xIn)
	case Nonnegative:
		for i, di := range c.d {
			xOut[i] = xIn[i] / di
		}
		_ = isTranspose
	case SecondOrder:
		c.mulWinvSecondOrder(isTranspose, xOut, xIn)
	case PSDTriangle:
		c.mulWPSD(isTranspose, xOut, xIn, true)
	}
}

// StepLength returns the maximal (alphaZ, alphaS) in (0,1] such that
// z+alphaZ*stepZ stays strictly in the cone and s+alphaS*stepS stays
// strictly in the dual cone.
func (c *Cone[T]) StepLength(stepZ, stepS, z, s []T) (alphaZ, alphaS T) {
	switch c.Kind {
	case Zero:
		return 1, 1
	case Nonnegative:
		return ratioTestStep(stepZ, z), ratioTestStep(stepS, s)
	case SecondOrder:
		return socStep(stepZ, z), socStep(stepS, s)
	case PSDTriangle:
		return c.psdStep(stepZ, z), c.psdStep(stepS, s)
	default:
		panic("cones: unknown kind")
	}
}

// CombinedDsShift writes the Mehrotra second-order correction term for
// this block into shiftOut, given the affine steps and the centering
// parameter sigmaMu = sigma*mu.
func (c *Cone[T]) CombinedDsShift(shiftOut, stepZ, stepS []T, sigmaMu T) {
	switch c.Kind {
	case Zero:
		for i := range shiftOut {
			shiftOut[i] = 0
		}
	case Nonnegative:
		for i := range shiftOut {
			shiftOut[i] = stepZ[i]*stepS[i] - sigmaMu
		}
	case SecondOrder:
		c.combinedDsShiftSecondOrder(shiftOut, stepZ, stepS, sigmaMu)
	case PSDTriangle:
		c.combinedDsShiftPSD(shiftOut, stepZ, stepS, sigmaMu)
	}
}

// DeltaSFromDeltaZOffset recovers Δs from Δz and the cone's current
// scaling, overwriting out. Any affine residual term is added onto out by
// the caller afterwards.
func (c *Cone[T]) DeltaSFromDeltaZOffset(out, stepZ []T) {
	switch c.Kind {
	case Zero:
		for i := range out {
			out[i] = 0
		}
	case Nonnegative:
		for i, di := range c.d {
			out[i] = -di * di * stepZ[i]
		}
	case SecondOrder:
		scratch := make([]T, c.dim)
		c.mulWSecondOrder(false, scratch, stepZ)
		c.mulWSecondOrder(true, out, scratch)
		for i := range out {
			out[i] = -out[i]
		}
	case PSDTriangle:
		scratch := make([]T, c.dim)
		c.mulWPSD(false, scratch, stepZ, false)
		c.mulWPSD(true, out, scratch, false)
		for i := range out {
			out[i] = -out[i]
		}
	}
}

// ComputeBarrier evaluates this block's contribution to the barrier used
// by the IPM's backtracking line search, at the trial point
// (z+alpha*stepZ, s+alpha*stepS).
func (c *Cone[T]) ComputeBarrier(z, s, stepZ, stepS []T, alpha T) T {
	switch c.Kind {
	case Zero:
		return 0
	case Nonnegative:
		var total T
		for i := range z {
			total -= logT(z[i] + alpha*stepZ[i])
			total -= logT(s[i] + alpha*stepS[i])
		}
		return total
	case SecondOrder:
		return socBarrier(z, stepZ, alpha) + socBarrier(s, stepS, alpha)
	case PSDTriangle:
		return c.psdBarrier(z, stepZ, alpha) + c.psdBarrier(s, stepS, alpha)
	default:
		panic("cones: unknown kind")
	}
}

// Margins returns (minDist, sumDist): the distance of z to the cone
// boundary (minimum over any per-coordinate notion for product cones) and
// an aggregate distance, both used by initialization heuristics.
func (c *Cone[T]) Margins(z []T) (minDist, sumDist T) {
	switch c.Kind {
	case Zero:
		return num.Inf[T](1), 0
	case Nonnegative:
		minDist = num.Inf[T](1)
		for _, zi := range z {
			minDist = num.Min(minDist, zi)
			sumDist += zi
		}
		return minDist, sumDist
	case SecondOrder:
		rest := norm2(z[1:])
		return z[0] - rest, z[0]
	case PSDTriangle:
		return c.psdMargins(z)
	default:
		panic("cones: unknown kind")
	}
}

// Identity writes the cone's distinguished identity element (the point e
// such that W is the identity when s=z=e) into out, used to initialize a
// cold-start iterate.
func (c *Cone[T]) Identity(out []T) {
	for i := range out {
		out[i] = 0
	}
	switch c.Kind {
	case Zero:
		// no preferred point; left at zero.
	case Nonnegative:
		for i := range out {
			out[i] = 1
		}
	case SecondOrder:
		out[0] = 1
	case PSDTriangle:
		idx := 0
		for j := 0; j < c.side; j++ {
			for i := 0; i <= j; i++ {
				if i == j {
					out[idx] = 1
				}
				idx++
			}
		}
	}
}

func logT[T num.Float](x T) T {
	if x <= 0 {
		return num.Inf[T](-1)
	}
	return T(math.Log(float64(x)))
}

func ratioTestStep[T num.Float](step, x []T) T {
	alpha := T(1)
	for i, xi := range x {
		if step[i] < 0 {
			cand := -xi / step[i]
			alpha = num.Min(alpha, cand)
		}
	}
	if alpha <= 0 || num.IsNaN(alpha) || num.IsInf(alpha, 0) {
		return 1
	}
	return alpha
}

func dot[T num.Float](a, b []T) T {
	var s T
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm2[T num.Float](a []T) T {
	return num.Sqrt(dot(a, a))
}
