// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kkt

import (
	"errors"
	"fmt"

	"gonum.org/v1/coneprog/cones"
	"gonum.org/v1/coneprog/csc"
	"gonum.org/v1/coneprog/num"
)

// ErrPatternMismatch is returned by UpdateP/UpdateA when the replacement
// matrix's sparsity pattern (shape, Colptr, Rowval) differs from the one
// the assembler was built from. The assembler's reverse index maps
// (PtoKKT, AtoKKT) are only valid for the pattern fixed at New; scattering
// a differently-patterned matrix's Nzval through them would corrupt the
// KKT matrix rather than fail loudly.
var ErrPatternMismatch = errors.New("kkt: sparsity pattern mismatch")

// hBlock records the structural placement of one cone's contribution to the
// (2,2) scaling block of the KKT matrix. Zero and Nonnegative cones are
// diagonal; SecondOrder and PSDTriangle cones contribute a dense upper
// triangle, since their scaling mixes coordinates within the block.
type hBlock struct {
	kind         cones.Kind
	dim          int
	dense        bool
	diagToKKT    []int // length dim, column order
	offDiagToKKT []int // length dim*(dim-1)/2 when dense, in fillDenseTriangleTriu order
}

// Assembler builds the upper-triangular homogeneous-embedding KKT matrix
//
//	[ P    Aᵀ ]
//	[ A   -H  ]
//
// of dimension (N+M)x(N+M) and owns the reverse index maps that let
// Refresh/UpdateP/UpdateA/UpdateQ rewrite Nzval in O(nnz) without ever
// resymbolizing the sparsity pattern, per the colcount/fill idiom in
// package csc.
type Assembler[T num.Float] struct {
	N, M int

	KKT *csc.CscMatrix[T]

	PtoKKT []int
	AtoKKT []int

	// DiagToKKT holds the KKT offset of every one of the N+M diagonal
	// entries, in column order: indices [0,N) are the P-block diagonal,
	// [N,N+M) are the H-block diagonal. kktsolver uses this to add static
	// and dynamic regularization without touching structure.
	DiagToKKT []int

	blocks []hBlock

	p *csc.CscMatrix[T]
	a *csc.CscMatrix[T]
	q []T
}

// New builds the symbolic KKT structure for the given P (NxN, upper
// triangular), A (MxN) and cone set, and performs an initial numeric fill
// by calling Refresh with the cone set's current scaling (identity for a
// freshly built cone set). It panics if P and A disagree on N, or A's row count
// disagrees with the cone set's total dimension.
func New[T num.Float](P, A *csc.CscMatrix[T], coneSet *cones.ConeSet[T]) *Assembler[T] {
	if P.N != P.M {
		panic("kkt: P must be square")
	}
	if A.N != P.N {
		panic(fmt.Sprintf("kkt: A has %d columns, P has dimension %d", A.N, P.N))
	}
	if A.M != coneSet.Dim() {
		panic(fmt.Sprintf("kkt: A has %d rows, cone set has dimension %d", A.M, coneSet.Dim()))
	}

	n, m := P.N, A.M
	asm := &Assembler[T]{N: n, M: m, p: P, a: A}

	blocks := make([]hBlock, coneSet.NumCones())
	for i := 0; i < coneSet.NumCones(); i++ {
		c := coneSet.Get(i)
		dense := c.Kind == cones.SecondOrder || c.Kind == cones.PSDTriangle
		blocks[i] = hBlock{kind: c.Kind, dim: c.Dim(), dense: dense}
	}
	asm.blocks = blocks

	kkt := csc.Spalloc[T](n+m, n+m, asm.nnzUpperBound(P, A))

	// Phase I: colcounts.
	kkt.ColcountBlock(P, 0, csc.ShapeN)
	kkt.ColcountMissingDiag(P, 0)
	kkt.ColcountBlock(A, n, csc.ShapeT)
	off := n
	for _, b := range blocks {
		if b.dense {
			kkt.ColcountDenseTriangle(off, b.dim, csc.Triu)
		}
		kkt.ColcountDiag(off, b.dim)
		off += b.dim
	}
	kkt.ColcountToColptr()

	// Phase II: fill, in the same order colcounts were taken so every
	// column's entries land already sorted by row.
	asm.PtoKKT = make([]int, P.Nnz())
	kkt.FillBlock(P, asm.PtoKKT, 0, 0, csc.ShapeN)
	kkt.FillMissingDiag(P, 0)

	asm.AtoKKT = make([]int, A.Nnz())
	kkt.FillBlock(A, asm.AtoKKT, 0, n, csc.ShapeT)

	off = n
	for bi := range blocks {
		b := &blocks[bi]
		if b.dense {
			b.offDiagToKKT = make([]int, b.dim*(b.dim-1)/2)
			kkt.FillDenseTriangle(b.offDiagToKKT, off, b.dim, csc.Triu)
		}
		b.diagToKKT = make([]int, b.dim)
		kkt.FillDiag(b.diagToKKT, off, b.dim)
		off += b.dim
	}

	kkt.BackshiftColptrs()
	asm.KKT = kkt

	// DiagToKKT: P-block diagonal (existing P diagonal entries, found by
	// re-scanning since FillBlock/FillMissingDiag don't report which
	// offset belongs to which column), then H-block diagonal.
	asm.DiagToKKT = make([]int, 0, n+m)
	pdiag := diagOffsetsFromColumn(kkt, 0, n)
	asm.DiagToKKT = append(asm.DiagToKKT, pdiag...)
	for _, b := range blocks {
		asm.DiagToKKT = append(asm.DiagToKKT, b.diagToKKT...)
	}

	asm.KKT.AssertCanonical()
	asm.Refresh(coneSet)
	return asm
}

// diagOffsetsFromColumn returns, for each of the count columns starting at
// start, the KKT offset of its diagonal entry (guaranteed present by
// ColcountMissingDiag/FillMissingDiag).
func diagOffsetsFromColumn[T num.Float](m *csc.CscMatrix[T], start, count int) []int {
	out := make([]int, count)
	for i := 0; i < count; i++ {
		col := start + i
		for j := m.Colptr[col]; j < m.Colptr[col+1]; j++ {
			if m.Rowval[j] == col {
				out[i] = j
				break
			}
		}
	}
	return out
}

// nnzUpperBound computes the exact nnz of the assembled KKT matrix ahead of
// allocation, mirroring the colcount pass without mutating any state.
func (asm *Assembler[T]) nnzUpperBound(P, A *csc.CscMatrix[T]) int {
	nnz := P.Nnz() + A.Nnz()
	for i := 0; i < P.N; i++ {
		if P.Colptr[i] == P.Colptr[i+1] || P.Rowval[P.Colptr[i+1]-1] != i {
			nnz++
		}
	}
	for _, b := range asm.blocks {
		if b.dense {
			nnz += b.dim * (b.dim - 1) / 2
		}
		nnz += b.dim
	}
	return nnz
}

// Refresh recomputes the (2,2) block's numeric values from the cone set's
// current scaling and writes them through the stored reverse maps, leaving
// rowval/colptr untouched. The KKT layout stores -H there, and
// cone.DeltaSFromDeltaZOffset(e_i) already computes column i of -H (see
// cones package's "recovers Δs from Δz" contract, Δs = -HΔz), so its
// output on unit vectors can be written through directly, without
// requiring a cone to expose its scaling matrix.
func (asm *Assembler[T]) Refresh(coneSet *cones.ConeSet[T]) {
	for bi, b := range asm.blocks {
		c := coneSet.Get(bi)
		if b.dense {
			asm.refreshDenseBlock(c, &asm.blocks[bi])
		} else {
			asm.refreshDiagBlock(c, &asm.blocks[bi])
		}
	}
}

func (asm *Assembler[T]) refreshDiagBlock(c *cones.Cone[T], b *hBlock) {
	e := make([]T, b.dim)
	out := make([]T, b.dim)
	for i := 0; i < b.dim; i++ {
		e[i] = 1
		c.DeltaSFromDeltaZOffset(out, e)
		asm.KKT.Nzval[b.diagToKKT[i]] = out[i]
		e[i] = 0
	}
}

func (asm *Assembler[T]) refreshDenseBlock(c *cones.Cone[T], b *hBlock) {
	e := make([]T, b.dim)
	col := make([]T, b.dim)
	kidx := 0
	for j := 0; j < b.dim; j++ {
		e[j] = 1
		c.DeltaSFromDeltaZOffset(col, e)
		e[j] = 0
		for i := 0; i < j; i++ {
			asm.KKT.Nzval[b.offDiagToKKT[kidx]] = col[i]
			kidx++
		}
		asm.KKT.Nzval[b.diagToKKT[j]] = col[j]
	}
}

// UpdateP overwrites P's numeric values (same sparsity pattern) through
// PtoKKT. It returns ErrPatternMismatch, without touching KKT, if P's
// shape or structure no longer matches the pattern the assembler was
// built from.
func (asm *Assembler[T]) UpdateP(P *csc.CscMatrix[T]) error {
	if !P.SamePattern(asm.p) {
		return ErrPatternMismatch
	}
	for j, dest := range asm.PtoKKT {
		asm.KKT.Nzval[dest] = P.Nzval[j]
	}
	asm.p = P
	return nil
}

// UpdateA overwrites A's numeric values (same sparsity pattern) through
// AtoKKT. It returns ErrPatternMismatch, without touching KKT, if A's
// shape or structure no longer matches the pattern the assembler was
// built from.
func (asm *Assembler[T]) UpdateA(A *csc.CscMatrix[T]) error {
	if !A.SamePattern(asm.a) {
		return ErrPatternMismatch
	}
	for j, dest := range asm.AtoKKT {
		asm.KKT.Nzval[dest] = A.Nzval[j]
	}
	asm.a = A
	return nil
}

// UpdateQ records the updated linear objective term. q does not live
// inside the KKT matrix; the assembler only keeps it for symmetry with
// UpdateP/UpdateA so callers can treat problem-data refresh uniformly.
func (asm *Assembler[T]) UpdateQ(q []T) {
	if len(q) != asm.N {
		panic("kkt: UpdateQ length mismatch")
	}
	asm.q = q
}

// Q returns the last linear objective term recorded via UpdateQ, or nil if
// UpdateQ has not been called.
func (asm *Assembler[T]) Q() []T { return asm.q }
