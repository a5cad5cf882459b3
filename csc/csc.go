// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package csc implements an immutable-shape compressed-sparse-column matrix
// and the two-phase colcount/prefix-scan/fill assembly idiom used to build
// the regularized KKT matrix without any per-insert sorting: every block's
// contributions land in each destination column already in increasing row
// order, so the whole matrix is assembled in O(nnz) with no post-hoc sort.
package csc

import (
	"fmt"

	"gonum.org/v1/coneprog/num"
)

// debug gates the O(n) canonical-form assertions run at exported boundaries.
// It is a const, not a flag, so that the checks compile away in non-debug
// builds the way mat's own internal panics are compiled against a bounds
// check rather than toggled at runtime.
const debug = true

// Shape selects the normal or transposed placement of a rectangular block
// inside a larger matrix being assembled.
type Shape int

const (
	ShapeN Shape = iota // place the block as-is
	ShapeT              // place the block transposed
)

// Triangle selects which triangle of a symmetric dense block to place.
type Triangle int

const (
	Triu Triangle = iota
	Tril
)

// CscMatrix is a sparse matrix in compressed-sparse-column form.
//
// During assembly, Colptr temporarily holds per-column counts (Phase I),
// then the prefix sum of those counts (after ColcountToColptr), then a
// per-column write cursor (Phase II, advanced by the Fill* methods).
// BackshiftColptrs restores canonical form. Outside of an assembly
// sequence, Colptr must always be canonical: Colptr[0]==0, Colptr[N]==nnz,
// non-decreasing, and within each column Rowval strictly increasing.
type CscMatrix[T num.Float] struct {
	M, N   int
	Colptr []int
	Rowval []int
	Nzval  []T
}

// New wraps caller-supplied CSC arrays without copying, the way
// example_socp.rs builds a CscMatrix from literal colptr/rowval/nzval.
func New[T num.Float](m, n int, colptr, rowval []int, nzval []T) *CscMatrix[T] {
	c := &CscMatrix[T]{M: m, N: n, Colptr: colptr, Rowval: rowval, Nzval: nzval}
	if debug {
		c.AssertCanonical()
	}
	return c
}

// Spalloc allocates the backing arrays for a matrix that will be filled via
// the colcount/fill sequence below. Colptr starts zeroed: it is not yet
// canonical and must not be read as such until ColcountToColptr has run.
func Spalloc[T num.Float](m, n, nnz int) *CscMatrix[T] {
	return &CscMatrix[T]{
		M:      m,
		N:      n,
		Colptr: make([]int, n+1),
		Rowval: make([]int, nnz),
		Nzval:  make([]T, nnz),
	}
}

// Nnz returns the number of structurally stored entries.
func (c *CscMatrix[T]) Nnz() int {
	return len(c.Nzval)
}

// SamePattern reports whether c and other have identical shape and
// sparsity structure: same M, N, Colptr and Rowval. It ignores Nzval, so
// it is the right check for an in-place numeric update that must not
// silently resymbolize — two matrices with the same nonzero count but
// nonzeros at different positions are NOT the same pattern.
func (c *CscMatrix[T]) SamePattern(other *CscMatrix[T]) bool {
	if c.M != other.M || c.N != other.N {
		return false
	}
	if len(c.Colptr) != len(other.Colptr) {
		return false
	}
	for i, v := range c.Colptr {
		if other.Colptr[i] != v {
			return false
		}
	}
	if len(c.Rowval) != len(other.Rowval) {
		return false
	}
	for i, v := range c.Rowval {
		if other.Rowval[i] != v {
			return false
		}
	}
	return true
}

// AssertCanonical panics if Colptr/Rowval do not satisfy the canonical CSC
// invariant (spec.md §8's "CSC canonical form" property). It is called at
// every exported assembly boundary in debug builds, per the option named in
// spec.md §9 for guarding against the tricky colptr-triple-duty idiom.
func (c *CscMatrix[T]) AssertCanonical() {
	if len(c.Colptr) != c.N+1 {
		panic(fmt.Sprintf("csc: colptr has length %d, want %d", len(c.Colptr), c.N+1))
	}
	if c.Colptr[0] != 0 {
		panic(fmt.Sprintf("csc: colptr[0] = %d, want 0", c.Colptr[0]))
	}
	if c.Colptr[c.N] != len(c.Nzval) {
		panic(fmt.Sprintf("csc: colptr[n] = %d, want nnz = %d", c.Colptr[c.N], len(c.Nzval)))
	}
	for i := 0; i < c.N; i++ {
		if c.Colptr[i] > c.Colptr[i+1] {
			panic(fmt.Sprintf("csc: colptr not non-decreasing at column %d", i))
		}
		lastRow := -1
		for j := c.Colptr[i]; j < c.Colptr[i+1]; j++ {
			if c.Rowval[j] <= lastRow {
				panic(fmt.Sprintf("csc: rowval not strictly increasing in column %d", i))
			}
			lastRow = c.Rowval[j]
		}
	}
}

// ColcountDenseTriangle increments Colptr (interpreted as per-column
// counts) to account for a dense k×k upper or lower triangle placed with
// its diagonal starting at column initcol.
func (c *CscMatrix[T]) ColcountDenseTriangle(initcol, blockcols int, shape Triangle) {
	switch shape {
	case Triu:
		for i, col := 0, initcol; i < blockcols; i, col = i+1, col+1 {
			c.Colptr[col] += i + 1
		}
	case Tril:
		for i, col := 0, initcol; i < blockcols; i, col = i+1, col+1 {
			c.Colptr[col] += blockcols - i
		}
	}
}

// ColcountDiag increments Colptr by one for each of blockcols consecutive
// columns starting at initcol, accounting for a diagonal block.
func (c *CscMatrix[T]) ColcountDiag(initcol, blockcols int) {
	for col := initcol; col < initcol+blockcols; col++ {
		c.Colptr[col]++
	}
}

// ColcountMissingDiag increments Colptr for every column of M (square,
// stored upper-triangular) whose last stored entry is not on the diagonal,
// or which is empty — the count of structural zeros that must be reserved
// so the embedding matrix always has an explicit diagonal.
func (c *CscMatrix[T]) ColcountMissingDiag(M *CscMatrix[T], initcol int) {
	if len(M.Colptr) != M.N+1 {
		panic("csc: malformed M passed to ColcountMissingDiag")
	}
	if len(c.Colptr) < M.N+initcol {
		panic("csc: destination too small in ColcountMissingDiag")
	}
	for i := 0; i < M.N; i++ {
		if M.Colptr[i] == M.Colptr[i+1] || M.Rowval[M.Colptr[i+1]-1] != i {
			c.Colptr[i+initcol]++
		}
	}
}

// ColcountColvec increments the single destination column firstcol by n,
// accounting for a dense column vector of length n.
func (c *CscMatrix[T]) ColcountColvec(n, firstrow, firstcol int) {
	_ = firstrow
	c.Colptr[firstcol] += n
}

// ColcountRowvec increments each of n consecutive destination columns
// starting at firstcol by one, accounting for a dense row vector.
func (c *CscMatrix[T]) ColcountRowvec(n, firstrow, firstcol int) {
	_ = firstrow
	for col := firstcol; col < firstcol+n; col++ {
		c.Colptr[col]++
	}
}

// ColcountBlock increments Colptr to account for the placement of M,
// normal (ShapeN) or transposed (ShapeT), with M's column 0 (or M's row 0,
// transposed) landing at destination column initcol.
func (c *CscMatrix[T]) ColcountBlock(M *CscMatrix[T], initcol int, shape Shape) {
	switch shape {
	case ShapeT:
		for _, row := range M.Rowval {
			c.Colptr[row+initcol]++
		}
	case ShapeN:
		for i := 0; i < M.N; i++ {
			c.Colptr[initcol+i] += M.Colptr[i+1] - M.Colptr[i]
		}
	}
}

// ColcountToColptr replaces each per-column count with the exclusive
// prefix sum of counts, turning Colptr into both the canonical
// column-start array and a per-column write cursor initialized to the
// column start. The total nnz ends up at Colptr[N].
func (c *CscMatrix[T]) ColcountToColptr() {
	current := 0
	for i, count := range c.Colptr {
		c.Colptr[i] = current
		current += count
	}
}

// BackshiftColptrs rotates Colptr right by one and resets Colptr[0] to 0,
// restoring canonical form after Phase II has advanced every column's
// cursor to its column end.
func (c *CscMatrix[T]) BackshiftColptrs() {
	if len(c.Colptr) == 0 {
		return
	}
	last := c.Colptr[len(c.Colptr)-1]
	copy(c.Colptr[1:], c.Colptr[:len(c.Colptr)-1])
	c.Colptr[0] = 0
	_ = last
}

// CountDiagonalEntries returns the number of columns whose last stored
// entry lies on the diagonal.
func (c *CscMatrix[T]) CountDiagonalEntries() int {
	count := 0
	for i := 0; i < c.N; i++ {
		if c.Colptr[i+1] != c.Colptr[i] && c.Rowval[c.Colptr[i+1]-1] == i {
			count++
		}
	}
	return count
}

// FillColvec writes vlength structural zeros into column initcol starting
// at row initrow, using Colptr[initcol] as the write cursor, and records
// each entry's KKT offset into vToKKT.
func (c *CscMatrix[T]) FillColvec(vToKKT []int, initrow, initcol, vlength int) {
	for i := 0; i < vlength; i++ {
		dest := c.Colptr[initcol]
		c.Rowval[dest] = initrow + i
		c.Nzval[dest] = 0
		vToKKT[i] = dest
		c.Colptr[initcol]++
	}
}

// FillRowvec writes one structural zero into each of vlength consecutive
// columns starting at initcol, all on row initrow.
func (c *CscMatrix[T]) FillRowvec(vToKKT []int, initrow, initcol, vlength int) {
	for i := 0; i < vlength; i++ {
		col := initcol + i
		dest := c.Colptr[col]
		c.Rowval[dest] = initrow
		c.Nzval[dest] = 0
		vToKKT[i] = dest
		c.Colptr[col]++
	}
}

// FillBlock writes the values of M into the destination, normal or
// transposed, recording each source entry's KKT offset into MtoKKT.
func (c *CscMatrix[T]) FillBlock(M *CscMatrix[T], MtoKKT []int, initrow, initcol int, shape Shape) {
	for i := 0; i < M.N; i++ {
		for j := M.Colptr[i]; j < M.Colptr[i+1]; j++ {
			var row, col int
			switch shape {
			case ShapeT:
				col = M.Rowval[j] + initcol
				row = i + initrow
			case ShapeN:
				col = i + initcol
				row = M.Rowval[j] + initrow
			}
			dest := c.Colptr[col]
			c.Rowval[dest] = row
			c.Nzval[dest] = M.Nzval[j]
			MtoKKT[j] = dest
			c.Colptr[col]++
		}
	}
}

// FillDenseTriangle writes blockdim*(blockdim-1)/2 structural zeros for a
// dense triangle whose diagonal starts at offset, dispatching on shape.
//
// Triu fills strictly-above-diagonal entries column by column, in
// increasing row order within each column — the order every other Fill*
// method also produces, which is what keeps the whole assembly sorted
// without a final pass. Tril fills the transposed pattern: for
// destination column c (offset <= c < offset+blockdim), the lower
// triangle's entries in that column are the row-c entries of the
// corresponding Triu layout, transposed: rows c+1..offset+blockdim-1, one
// entry for each later column of the block.
func (c *CscMatrix[T]) FillDenseTriangle(blockToKKT []int, offset, blockdim int, shape Triangle) {
	switch shape {
	case Triu:
		c.fillDenseTriangleTriu(blockToKKT, offset, blockdim)
	case Tril:
		c.fillDenseTriangleTril(blockToKKT, offset, blockdim)
	}
}

func (c *CscMatrix[T]) fillDenseTriangleTriu(blockToKKT []int, offset, blockdim int) {
	kidx := 0
	for col := offset; col < offset+blockdim; col++ {
		for row := offset; row < col; row++ {
			dest := c.Colptr[col]
			c.Rowval[dest] = row
			c.Nzval[dest] = 0
			c.Colptr[col]++
			blockToKKT[kidx] = dest
			kidx++
		}
	}
}

// fillDenseTriangleTril fills the genuine transpose of the Triu pattern:
// destination column col (offset <= col < offset+blockdim) receives one
// off-diagonal entry for every later column of the block, at rows
// col+1..offset+blockdim-1, in increasing order. ColcountDenseTriangle(Tril)
// reserves blockdim-i slots for column offset+i (one more than the
// blockdim-i-1 entries written here), leaving exactly one slot for the
// diagonal.
//
// Unlike the Triu case, that leftover diagonal slot sits at the *front* of
// each column's row order (row col, less than every row written here), so
// callers assembling a Tril block must call FillDiag before
// FillDenseTriangle(Tril) on the same columns, or the strictly-increasing
// row invariant breaks. The KKT assembler never takes this path — the KKT
// matrix is stored upper-triangular — so Tril is exercised only directly,
// by tests that respect this ordering.
func (c *CscMatrix[T]) fillDenseTriangleTril(blockToKKT []int, offset, blockdim int) {
	kidx := 0
	for col := offset; col < offset+blockdim; col++ {
		for row := col + 1; row < offset+blockdim; row++ {
			dest := c.Colptr[col]
			c.Rowval[dest] = row
			c.Nzval[dest] = 0
			c.Colptr[col]++
			blockToKKT[kidx] = dest
			kidx++
		}
	}
}

// FillDiag writes blockdim structural zeros onto the diagonal starting at
// offset.
func (c *CscMatrix[T]) FillDiag(diagToKKT []int, offset, blockdim int) {
	for i := 0; i < blockdim; i++ {
		col := i + offset
		dest := c.Colptr[col]
		c.Rowval[dest] = col
		c.Nzval[dest] = 0
		c.Colptr[col]++
		diagToKKT[i] = dest
	}
}

// FillMissingDiag writes a structural zero on the diagonal for every
// column of M lacking one, mirroring ColcountMissingDiag.
func (c *CscMatrix[T]) FillMissingDiag(M *CscMatrix[T], initcol int) {
	c.FillMissingDiagWithMap(M, initcol, nil)
}

// MulVec computes y = A*x, where A is c interpreted as an ordinary m-by-n
// matrix in CSC form.
func (c *CscMatrix[T]) MulVec(y, x []T) {
	for i := range y {
		y[i] = 0
	}
	for col := 0; col < c.N; col++ {
		xv := x[col]
		if xv == 0 {
			continue
		}
		for j := c.Colptr[col]; j < c.Colptr[col+1]; j++ {
			y[c.Rowval[j]] += c.Nzval[j] * xv
		}
	}
}

// MulTransVec computes y = Aᵀ*x.
func (c *CscMatrix[T]) MulTransVec(y, x []T) {
	for i := range y {
		y[i] = 0
	}
	for col := 0; col < c.N; col++ {
		var sum T
		for j := c.Colptr[col]; j < c.Colptr[col+1]; j++ {
			sum += c.Nzval[j] * x[c.Rowval[j]]
		}
		y[col] = sum
	}
}

// MulSymVec computes y = P*x where P stores only its upper triangle (the
// convention used throughout this package for the objective's quadratic
// form): every off-diagonal stored entry contributes to both y[row] and
// y[col].
func (c *CscMatrix[T]) MulSymVec(y, x []T) {
	for i := range y {
		y[i] = 0
	}
	for col := 0; col < c.N; col++ {
		xv := x[col]
		for j := c.Colptr[col]; j < c.Colptr[col+1]; j++ {
			row := c.Rowval[j]
			v := c.Nzval[j]
			y[row] += v * xv
			if row != col {
				y[col] += v * x[row]
			}
		}
	}
}

// QuadForm computes xᵀ*P*x for the upper-triangular symmetric P stored in c.
func (c *CscMatrix[T]) QuadForm(x []T) T {
	var total T
	for col := 0; col < c.N; col++ {
		xv := x[col]
		for j := c.Colptr[col]; j < c.Colptr[col+1]; j++ {
			row := c.Rowval[j]
			v := c.Nzval[j]
			if row == col {
				total += v * xv * xv
			} else {
				total += 2 * v * xv * x[row]
			}
		}
	}
	return total
}

// FillMissingDiagWithMap behaves like FillMissingDiag, additionally
// appending the KKT offset of each newly written diagonal slot to dst (in
// increasing column order) and returning the extended slice. Pass a nil or
// empty dst to just collect the offsets from scratch.
func (c *CscMatrix[T]) FillMissingDiagWithMap(M *CscMatrix[T], initcol int, dst []int) []int {
	for i := 0; i < M.N; i++ {
		if M.Colptr[i] == M.Colptr[i+1] || M.Rowval[M.Colptr[i+1]-1] != i {
			col := i + initcol
			dest := c.Colptr[col]
			c.Rowval[dest] = col
			c.Nzval[dest] = 0
			c.Colptr[col]++
			dst = append(dst, dest)
		}
	}
	return dst
}
