// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cones

import "gonum.org/v1/coneprog/num"

// ConeSet is an ordered product of cones, presenting a single cone
// interface over the block-diagonal composition: it dispatches each call
// to the block-local cone and aggregates results the way spec.md §4.3
// specifies (sum over dims, minimum over step lengths).
type ConeSet[T num.Float] struct {
	cones   []Cone[T]
	offsets []int // len(cones)+1, prefix sums of dims
}

// NewConeSet builds a ConeSet from the given cones, in order.
func NewConeSet[T num.Float](blocks []Cone[T]) *ConeSet[T] {
	cs := &ConeSet[T]{cones: blocks, offsets: make([]int, len(blocks)+1)}
	for i, c := range blocks {
		cs.offsets[i+1] = cs.offsets[i] + c.Dim()
	}
	return cs
}

// Spec names a cone block's kind and size, without any scaling state,
// enough to reconstruct the block at its identity scaling. It is the
// serializable shadow of a Cone, used by problem.Data's persisted format.
type Spec struct {
	Kind Kind
	Dim  int // block dimension for Zero/Nonnegative/SecondOrder
	Side int // matrix side for PSDTriangle; 0 otherwise
}

// Specs returns the kind/size description of every block, in order.
func (cs *ConeSet[T]) Specs() []Spec {
	specs := make([]Spec, len(cs.cones))
	for i, c := range cs.cones {
		specs[i] = Spec{Kind: c.Kind, Dim: c.dim, Side: c.side}
	}
	return specs
}

// NewConeSetFromSpecs reconstructs a ConeSet at identity scaling from its
// Specs.
func NewConeSetFromSpecs[T num.Float](specs []Spec) *ConeSet[T] {
	blocks := make([]Cone[T], len(specs))
	for i, sp := range specs {
		switch sp.Kind {
		case Zero:
			blocks[i] = NewZero[T](sp.Dim)
		case Nonnegative:
			blocks[i] = NewNonnegative[T](sp.Dim)
		case SecondOrder:
			blocks[i] = NewSecondOrder[T](sp.Dim)
		case PSDTriangle:
			blocks[i] = NewPSDTriangle[T](sp.Side)
		default:
			panic("cones: unknown kind in spec")
		}
	}
	return NewConeSet(blocks)
}

// Dim returns the total dimension m = sum of block dimensions.
func (cs *ConeSet[T]) Dim() int { return cs.offsets[len(cs.offsets)-1] }

// NumCones returns the number of blocks.
func (cs *ConeSet[T]) NumCones() int { return len(cs.cones) }

// Get returns the i-th block cone.
func (cs *ConeSet[T]) Get(i int) *Cone[T] { return &cs.cones[i] }

// Offset returns the starting index of block i within a length-Dim vector.
func (cs *ConeSet[T]) Offset(i int) int { return cs.offsets[i] }

// Block returns the sub-slice of v corresponding to block i.
func (cs *ConeSet[T]) Block(v []T, i int) []T {
	return v[cs.offsets[i]:cs.offsets[i+1]]
}

// Identity writes each block's identity element into the corresponding
// slice of out.
func (cs *ConeSet[T]) Identity(out []T) {
	for i := range cs.cones {
		cs.cones[i].Identity(cs.Block(out, i))
	}
}

// SetIdentityScaling resets every block's scaling state to the identity.
func (cs *ConeSet[T]) SetIdentityScaling() {
	for i := range cs.cones {
		cs.cones[i].SetIdentityScaling()
	}
}

// UpdateScaling recomputes every block's NT scaling from the current (s,z)
// and reports whether every block succeeded.
func (cs *ConeSet[T]) UpdateScaling(s, z []T) bool {
	ok := true
	for i := range cs.cones {
		bi := cs.Block(s, i)
		zi := cs.Block(z, i)
		if !cs.cones[i].UpdateScaling(bi, zi) {
			ok = false
		}
	}
	return ok
}

// MulW applies the block-diagonal scaling matrix to xIn, writing xOut.
func (cs *ConeSet[T]) MulW(isTranspose bool, xOut, xIn []T) {
	for i := range cs.cones {
		cs.cones[i].MulW(isTranspose, cs.Block(xOut, i), cs.Block(xIn, i))
	}
}

// MulWinv applies the block-diagonal inverse scaling matrix to xIn.
func (cs *ConeSet[T]) MulWinv(isTranspose bool, xOut, xIn []T) {
	for i := range cs.cones {
		cs.cones[i].MulWinv(isTranspose, cs.Block(xOut, i), cs.Block(xIn, i))
	}
}

// CombinedDsShift writes the block-wise Mehrotra correction term.
func (cs *ConeSet[T]) CombinedDsShift(shiftOut, stepZ, stepS []T, sigmaMu T) {
	for i := range cs.cones {
		cs.cones[i].CombinedDsShift(cs.Block(shiftOut, i), cs.Block(stepZ, i), cs.Block(stepS, i), sigmaMu)
	}
}

// DeltaSFromDeltaZOffset recovers Δs block-wise from Δz.
func (cs *ConeSet[T]) DeltaSFromDeltaZOffset(out, stepZ []T) {
	for i := range cs.cones {
		cs.cones[i].DeltaSFromDeltaZOffset(cs.Block(out, i), cs.Block(stepZ, i))
	}
}

// StepLength returns the minimum feasible step length over all blocks, for
// the z and s sides independently, per spec.md's "Numerical tie-break":
// NaN/Inf candidates are treated as 1 by each block already, so the
// aggregate minimum here needs no further special-casing.
func (cs *ConeSet[T]) StepLength(stepZ, stepS, z, s []T) (alphaZ, alphaS T) {
	alphaZ, alphaS = 1, 1
	for i := range cs.cones {
		az, as := cs.cones[i].StepLength(cs.Block(stepZ, i), cs.Block(stepS, i), cs.Block(z, i), cs.Block(s, i))
		alphaZ = num.Min(alphaZ, az)
		alphaS = num.Min(alphaS, as)
	}
	return alphaZ, alphaS
}

// ComputeBarrier sums each block's barrier contribution at the trial step.
func (cs *ConeSet[T]) ComputeBarrier(z, s, stepZ, stepS []T, alpha T) T {
	var total T
	for i := range cs.cones {
		total += cs.cones[i].ComputeBarrier(cs.Block(z, i), cs.Block(s, i), cs.Block(stepZ, i), cs.Block(stepS, i), alpha)
	}
	return total
}

// Margins aggregates per-block margins: the minimum distance over all
// blocks and the sum of per-block aggregate distances, used by
// initialization heuristics.
func (cs *ConeSet[T]) Margins(z []T) (minDist, sumDist T) {
	minDist = num.Inf[T](1)
	for i := range cs.cones {
		md, sd := cs.cones[i].Margins(cs.Block(z, i))
		minDist = num.Min(minDist, md)
		sumDist += sd
	}
	return minDist, sumDist
}
