// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package variables

import (
	"gonum.org/v1/coneprog/cones"
	"gonum.org/v1/coneprog/num"
)

// Variables holds one iterate of the homogeneous self-dual embedding.
type Variables[T num.Float] struct {
	X          []T
	Z, S       []T
	Tau, Kappa T
}

// New allocates a Variables of primal dimension n and cone dimension m.
func New[T num.Float](n, m int) *Variables[T] {
	return &Variables[T]{
		X: make([]T, n),
		Z: make([]T, m),
		S: make([]T, m),
	}
}

// Initialize sets the cold-start iterate: tau=kappa=1, x=0, and (s, z) set
// to the identity element of each cone block.
func (v *Variables[T]) Initialize(coneSet *cones.ConeSet[T]) {
	for i := range v.X {
		v.X[i] = 0
	}
	coneSet.Identity(v.S)
	coneSet.Identity(v.Z)
	v.Tau = 1
	v.Kappa = 1
}

// ShiftToInterior nudges s and z away from the cone boundary by each
// block's margin: a block whose margin is nonpositive is moved along its
// cone's identity element until its margin is 1. SolveWarm uses it after
// blending a warm start, when a nonpositive slack would otherwise violate
// strict interiority.
func (v *Variables[T]) ShiftToInterior(coneSet *cones.ConeSet[T]) {
	for i := 0; i < coneSet.NumCones(); i++ {
		c := coneSet.Get(i)
		e := make([]T, c.Dim())
		c.Identity(e)
		for _, blk := range [][]T{coneSet.Block(v.S, i), coneSet.Block(v.Z, i)} {
			if minDist, _ := c.Margins(blk); minDist <= 0 {
				for j := range blk {
					blk[j] += (1 - minDist) * e[j]
				}
			}
		}
	}
}

// ScaledAdd performs v <- v + alpha*d component-wise over (x, z, s, tau,
// kappa), the per-iteration update step of the IPM driver.
func (v *Variables[T]) ScaledAdd(alpha T, d *Variables[T]) {
	axpy(alpha, d.X, v.X)
	axpy(alpha, d.Z, v.Z)
	axpy(alpha, d.S, v.S)
	v.Tau += alpha * d.Tau
	v.Kappa += alpha * d.Kappa
}

// axpy computes dst <- dst + alpha*src without relying on gonum/floats'
// AddScaled, which operates on []float64 only and cannot be instantiated
// over a generic T; the loop form is the natural generic equivalent (see
// DESIGN.md).
func axpy[T num.Float](alpha T, src, dst []T) {
	for i, s := range src {
		dst[i] += alpha * s
	}
}

// CopyFrom overwrites v's contents with other's, reusing v's backing
// arrays.
func (v *Variables[T]) CopyFrom(other *Variables[T]) {
	copy(v.X, other.X)
	copy(v.Z, other.Z)
	copy(v.S, other.S)
	v.Tau = other.Tau
	v.Kappa = other.Kappa
}

// Clone returns a deep copy of v.
func (v *Variables[T]) Clone() *Variables[T] {
	out := &Variables[T]{
		X:     append([]T(nil), v.X...),
		Z:     append([]T(nil), v.Z...),
		S:     append([]T(nil), v.S...),
		Tau:   v.Tau,
		Kappa: v.Kappa,
	}
	return out
}
