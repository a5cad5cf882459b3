// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cones

import "gonum.org/v1/coneprog/num"

// jnorm2 returns the squared "J-norm" x0^2 - ||x1||^2 used throughout the
// second-order cone's Jordan-algebra arithmetic, where J = diag(1,-1,...,-1).
func jnorm2[T num.Float](x []T) T {
	return x[0]*x[0] - dot(x[1:], x[1:])
}

// jdot returns the J-bilinear form <a,b>_J = a0*b0 - a1'*b1.
func jdot[T num.Float](a, b []T) T {
	return a[0]*b[0] - dot(a[1:], b[1:])
}

// updateScalingSecondOrder computes the Nesterov-Todd scaling point w
// (normalized so that jnorm2(w) == 1) and scale factor eta, following the
// standard construction: normalize s and z to unit J-norm, form the
// NT point from their midpoint in the Jordan algebra, per
// SPEC_FULL.md §5.2 / DESIGN.md.
func (c *Cone[T]) updateScalingSecondOrder(s, z []T) bool {
	sj2 := jnorm2(s)
	zj2 := jnorm2(z)
	if sj2 <= 0 || zj2 <= 0 || s[0] <= 0 || z[0] <= 0 {
		return false
	}
	sscale := num.Sqrt(sj2)
	zscale := num.Sqrt(zj2)

	k := c.dim
	sbar := make([]T, k)
	zbar := make([]T, k)
	for i := 0; i < k; i++ {
		sbar[i] = s[i] / sscale
		zbar[i] = z[i] / zscale
	}

	gamma2 := (1 + dot(sbar, zbar)) / 2
	if gamma2 <= 0 {
		return false
	}
	gamma := num.Sqrt(gamma2)

	w := make([]T, k)
	w[0] = (sbar[0] + zbar[0]) / (2 * gamma)
	for i := 1; i < k; i++ {
		w[i] = (sbar[i] - zbar[i]) / (2 * gamma)
	}
	if num.IsNaN(w[0]) {
		return false
	}
	copy(c.w, w)
	c.eta = num.Sqrt(sscale / zscale)
	return true
}

// jreflect writes Jx (x0, -x1) into out.
func jreflect[T num.Float](out, x []T) {
	out[0] = x[0]
	for i := 1; i < len(x); i++ {
		out[i] = -x[i]
	}
}

// mulWSecondOrder applies W = eta*(2*<w,.>_J*w - J) or its transpose
// Wt = eta*(2*<w,.>*Jw - J) (plain dot in the transpose case), that is,
// eta times R(w)=2w(Jw)^T-J or its transpose 2(Jw)w^T-J.
func (c *Cone[T]) mulWSecondOrder(isTranspose bool, xOut, xIn []T) {
	k := c.dim
	jx := make([]T, k)
	jreflect(jx, xIn)
	if !isTranspose {
		coef := 2 * jdot(c.w, xIn)
		for i := 0; i < k; i++ {
			xOut[i] = c.eta * (coef*c.w[i] - jx[i])
		}
		return
	}
	jw := make([]T, k)
	jreflect(jw, c.w)
	coef := 2 * dot(c.w, xIn)
	for i := 0; i < k; i++ {
		xOut[i] = c.eta * (coef*jw[i] - jx[i])
	}
}

// mulWinvSecondOrder applies W^-1 = (1/eta)*J*(c*<w,.>*w - I) or its
// transpose Winv^T = (1/eta)*(c*<w,.>_J*w - J), with c = 2/(2*|w|^2-1):
// the algebraic inverse of mulWSecondOrder, since W = eta*(2ww^T - I)*J
// and (2ww^T - I)^-1 = c*ww^T - I.
func (c *Cone[T]) mulWinvSecondOrder(isTranspose bool, xOut, xIn []T) {
	k := c.dim
	c2 := 2 / (2*dot(c.w, c.w) - 1)
	if !isTranspose {
		coef := c2 * dot(c.w, xIn)
		for i := 0; i < k; i++ {
			y := coef*c.w[i] - xIn[i]
			if i > 0 {
				y = -y
			}
			xOut[i] = y / c.eta
		}
		return
	}
	jx := make([]T, k)
	jreflect(jx, xIn)
	coef := c2 * jdot(c.w, xIn)
	for i := 0; i < k; i++ {
		xOut[i] = (coef*c.w[i] - jx[i]) / c.eta
	}
}

// combinedDsShiftSecondOrder builds the Mehrotra correction term for a SOC
// block: the Jordan product of the scaled affine steps, shifted by
// sigmaMu along the cone's identity direction.
func (c *Cone[T]) combinedDsShiftSecondOrder(shiftOut, stepZ, stepS []T, sigmaMu T) {
	k := c.dim
	wz := make([]T, k)
	ws := make([]T, k)
	c.mulWSecondOrder(false, wz, stepZ)
	c.mulWinvSecondOrder(false, ws, stepS)

	// Jordan product wz ∘ ws for the second-order cone:
	// (a∘b)_0 = a'b, (a∘b)_1 = a0*b1 + b0*a1.
	shiftOut[0] = dot(wz, ws) - sigmaMu
	for i := 1; i < k; i++ {
		shiftOut[i] = wz[0]*ws[i] + ws[0]*wz[i]
	}
}

// socStep returns the largest alpha in (0,1] such that x+alpha*step stays
// in the second-order cone, via the standard quadratic boundary search.
func socStep[T num.Float](step, x []T) T {
	rho := step[0]
	sigma := step[1:]
	x0 := x[0]
	x1 := x[1:]

	a := rho*rho - dot(sigma, sigma)
	b := 2 * (x0*rho - dot(x1, sigma))
	cc := jnorm2(x)

	maxAlpha := T(1)
	disc := b*b - 4*a*cc
	if disc < 0 {
		return maxAlpha
	}
	sq := num.Sqrt(disc)

	var alpha T
	found := false
	consider := func(root T) {
		if root > 0 && (!found || root < alpha) {
			alpha = root
			found = true
		}
	}
	if a != 0 {
		consider((-b + sq) / (2 * a))
		consider((-b - sq) / (2 * a))
	} else if b < 0 {
		consider(-cc / b)
	}
	if !found || alpha > maxAlpha || num.IsNaN(alpha) {
		return maxAlpha
	}
	return alpha
}

// socBarrier evaluates -log(x0^2-||x1||^2) at the trial point x+alpha*step.
func socBarrier[T num.Float](x, step []T, alpha T) T {
	k := len(x)
	trial := make([]T, k)
	for i := 0; i < k; i++ {
		trial[i] = x[i] + alpha*step[i]
	}
	v := jnorm2(trial)
	if v <= 0 {
		return num.Inf[T](1)
	}
	return -logT(v)
}
