// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package csc

import (
	"testing"
)

// buildDiag builds a canonical n×n diagonal CscMatrix with value v on every
// diagonal entry, used as a small stored-upper-triangular M for the
// missing-diag and block tests below.
func buildDiag(n int, v float64) *CscMatrix[float64] {
	colptr := make([]int, n+1)
	rowval := make([]int, n)
	nzval := make([]float64, n)
	for i := 0; i < n; i++ {
		colptr[i] = i
		rowval[i] = i
		nzval[i] = v
	}
	colptr[n] = n
	return New[float64](n, n, colptr, rowval, nzval)
}

func TestColcountDiagAssembly(t *testing.T) {
	dst := Spalloc[float64](4, 4, 4)
	dst.ColcountDiag(0, 4)
	dst.ColcountToColptr()
	if got, want := dst.Colptr, []int{0, 1, 2, 3, 4}; !intsEqual(got, want) {
		t.Fatalf("colptr after prefix scan = %v, want %v", got, want)
	}
	diagToKKT := make([]int, 4)
	dst.FillDiag(diagToKKT, 0, 4)
	dst.BackshiftColptrs()
	dst.AssertCanonical()
	for i, off := range diagToKKT {
		if dst.Rowval[off] != i {
			t.Errorf("diagToKKT[%d] -> rowval %d, want %d", i, dst.Rowval[off], i)
		}
	}
}

func TestFillDenseTriangleTriuLeavesDiagonalSlot(t *testing.T) {
	const k = 3
	dst := Spalloc[float64](k, k, k*(k+1)/2)
	dst.ColcountDenseTriangle(0, k, Triu)
	dst.ColcountToColptr()
	blockToKKT := make([]int, k*(k-1)/2)
	dst.FillDenseTriangle(blockToKKT, 0, k, Triu)
	diagToKKT := make([]int, k)
	dst.FillDiag(diagToKKT, 0, k)
	dst.BackshiftColptrs()
	dst.AssertCanonical()

	// Column 0 has no off-diagonal entries and exactly the diagonal.
	if got, want := dst.Colptr[1]-dst.Colptr[0], 1; got != want {
		t.Fatalf("column 0 nnz = %d, want %d", got, want)
	}
	// Column 2 has two off-diagonal entries (rows 0,1) plus the diagonal.
	if got, want := dst.Colptr[3]-dst.Colptr[2], 3; got != want {
		t.Fatalf("column 2 nnz = %d, want %d", got, want)
	}
	col2rows := dst.Rowval[dst.Colptr[2]:dst.Colptr[3]]
	if !intsEqual(col2rows, []int{0, 1, 2}) {
		t.Fatalf("column 2 rows = %v, want [0 1 2]", col2rows)
	}
}

func TestFillDenseTriangleTrilGenuineTranspose(t *testing.T) {
	const k = 3
	dst := Spalloc[float64](k, k, k*(k+1)/2)
	dst.ColcountDenseTriangle(0, k, Tril)
	dst.ColcountToColptr()

	// Diagonal must be filled before the Tril off-diagonal block, per the
	// ordering documented on fillDenseTriangleTril.
	diagToKKT := make([]int, k)
	dst.FillDiag(diagToKKT, 0, k)
	blockToKKT := make([]int, k*(k-1)/2)
	dst.FillDenseTriangle(blockToKKT, 0, k, Tril)
	dst.BackshiftColptrs()
	dst.AssertCanonical()

	// Column 0 holds its own diagonal plus rows 1 and 2 (the transpose of
	// Triu's column 0 having no entries: row 0 appears in Triu columns 1
	// and 2, so Tril's column 0 gets entries at rows 1 and 2).
	col0rows := dst.Rowval[dst.Colptr[0]:dst.Colptr[1]]
	if !intsEqual(col0rows, []int{0, 1, 2}) {
		t.Fatalf("column 0 rows = %v, want [0 1 2]", col0rows)
	}
	// Column 2 (last) holds only its own diagonal.
	col2rows := dst.Rowval[dst.Colptr[2]:dst.Colptr[3]]
	if !intsEqual(col2rows, []int{2}) {
		t.Fatalf("column 2 rows = %v, want [2]", col2rows)
	}
}

func TestColcountMissingDiag(t *testing.T) {
	// M: 2x2 upper triangular, column 0 empty, column 1 has one stored
	// entry on the diagonal (row 1). Column 0 is missing its diagonal.
	colptr := []int{0, 0, 1}
	rowval := []int{1}
	nzval := []float64{5}
	M := New[float64](2, 2, colptr, rowval, nzval)

	dst := Spalloc[float64](2, 2, 1)
	dst.ColcountMissingDiag(M, 0)
	if dst.Colptr[0] != 1 || dst.Colptr[1] != 0 {
		t.Fatalf("missing diag counts = %v, want [1 0]", dst.Colptr[:2])
	}
	dst.ColcountToColptr()
	dst.FillMissingDiag(M, 0)
	dst.BackshiftColptrs()
	dst.AssertCanonical()
	if dst.Rowval[0] != 0 {
		t.Fatalf("missing diag row = %d, want 0", dst.Rowval[0])
	}
}

func TestColcountBlockNormalReadsBlockOwnColptr(t *testing.T) {
	// Regression test for the original-source bug named in spec.md §9:
	// ColcountBlock's ShapeN arm must read M's own Colptr, not the
	// destination's. A 3x3 destination next to a 3-column M with uneven
	// column counts [2,0,1] would silently read destination counts
	// (all zero) if the bug were reintroduced.
	M := New[float64](3, 3,
		[]int{0, 2, 2, 3},
		[]int{0, 1, 2},
		[]float64{1, 2, 3})

	dst := Spalloc[float64](3, 3, 3)
	dst.ColcountBlock(M, 0, ShapeN)
	if got, want := dst.Colptr[:3], ([]int{2, 0, 1}); !intsEqual(got, want) {
		t.Fatalf("ColcountBlock(ShapeN) counts = %v, want %v", got, want)
	}
}

func TestColcountBlockTranspose(t *testing.T) {
	M := buildDiag(3, 1)
	dst := Spalloc[float64](3, 3, 3)
	dst.ColcountBlock(M, 0, ShapeT)
	if got, want := dst.Colptr[:3], ([]int{1, 1, 1}); !intsEqual(got, want) {
		t.Fatalf("ColcountBlock(ShapeT) counts = %v, want %v", got, want)
	}
}

func TestFillBlockRoundTrip(t *testing.T) {
	M := New[float64](2, 2,
		[]int{0, 1, 2},
		[]int{0, 1},
		[]float64{3, 4})

	dst := Spalloc[float64](2, 2, 2)
	dst.ColcountBlock(M, 0, ShapeN)
	dst.ColcountToColptr()
	MtoKKT := make([]int, 2)
	dst.FillBlock(M, MtoKKT, 0, 0, ShapeN)
	dst.BackshiftColptrs()
	dst.AssertCanonical()

	for j := range M.Nzval {
		if dst.Nzval[MtoKKT[j]] != M.Nzval[j] {
			t.Errorf("reverse map fidelity broken at %d: got %v want %v", j, dst.Nzval[MtoKKT[j]], M.Nzval[j])
		}
	}
}

func TestCountDiagonalEntries(t *testing.T) {
	M := buildDiag(3, 2)
	if got, want := M.CountDiagonalEntries(), 3; got != want {
		t.Fatalf("CountDiagonalEntries = %d, want %d", got, want)
	}
}

func TestAssertCanonicalCatchesUnsortedColumn(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on non-increasing rowval")
		}
	}()
	bad := New[float64](2, 1, []int{0, 2}, []int{1, 0}, []float64{1, 2})
	_ = bad
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
