// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"gonum.org/v1/coneprog/num"
	"gonum.org/v1/coneprog/problem"
	"gonum.org/v1/coneprog/variables"
)

// Residuals holds the homogeneous self-dual embedding's current residual
// vectors and the scalar quantities (mu, normalized gap) the driver's
// termination check and centering parameter both read every iteration.
type Residuals[T num.Float] struct {
	Rx []T // dual residual, length n: -(P x + A'z + tau q)
	Rz []T // primal residual, length m: -(A x + s - tau b)
	Rtau T // gap-closure residual: q'x + b'z + kappa

	RPrimalNorm T // ||Rz|| / tau, normalized by max(1, ||b||)
	RDualNorm   T // ||Rx|| / tau, normalized by max(1, ||q||)
	RGap        T // normalized duality gap
	Mu          T // (s'z + tau*kappa) / (m+1)

	CostPrimal T
	CostDual   T

	atz []T // scratch, length n: A'z
}

// NewResiduals preallocates the residual buffers for an (n, m)-sized
// problem.
func NewResiduals[T num.Float](n, m int) *Residuals[T] {
	return &Residuals[T]{Rx: make([]T, n), Rz: make([]T, m), atz: make([]T, n)}
}

// Compute refreshes r from the current iterate, the "no heap allocation in
// the hot loop" preallocated-scratch style spec.md's resource model
// requires of the driver.
func (r *Residuals[T]) Compute(data *problem.Data[T], v *variables.Variables[T]) {
	n, m := len(v.X), len(v.Z)

	// Rx = -(P x + A'z + tau q)
	data.P.MulSymVec(r.Rx, v.X)
	data.A.MulTransVec(r.atz, v.Z)
	for i := 0; i < n; i++ {
		r.Rx[i] = -(r.Rx[i] + r.atz[i] + v.Tau*data.Q[i])
	}

	// Rz = -(A x + s - tau b)
	data.A.MulVec(r.Rz, v.X)
	for i := 0; i < m; i++ {
		r.Rz[i] = -(r.Rz[i] + v.S[i] - v.Tau*data.B[i])
	}

	r.Rtau = dot(data.Q, v.X) + dot(data.B, v.Z) + v.Kappa

	r.Mu = (dot(v.S, v.Z) + v.Tau*v.Kappa) / T(m+1)

	xq := dot(v.X, data.Q) / v.Tau
	zb := dot(v.Z, data.B) / v.Tau
	pxx := data.P.QuadForm(v.X) / (v.Tau * v.Tau)
	r.CostPrimal = (0.5*pxx + xq) / data.Equil.C
	r.CostDual = (-0.5*pxx - zb) / data.Equil.C

	normB := num.Max(T(1), norm2(data.B))
	normQ := num.Max(T(1), norm2(data.Q))
	r.RPrimalNorm = norm2(r.Rz) / v.Tau / normB
	r.RDualNorm = norm2(r.Rx) / v.Tau / normQ
	r.RGap = num.Abs(r.CostPrimal-r.CostDual) / (1 + num.Abs(r.CostPrimal) + num.Abs(r.CostDual))
}

func dot[T num.Float](a, b []T) T {
	var s T
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm2[T num.Float](a []T) T {
	var s T
	for _, v := range a {
		s += v * v
	}
	return num.Sqrt(s)
}
