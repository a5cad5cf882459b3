// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problem

import "errors"

var (
	// ErrDimensionMismatch reports that P, q, A or b disagree on the
	// primal or constraint dimension.
	ErrDimensionMismatch = errors.New("problem: dimension mismatch")

	// ErrConeDimension reports that the cone set's total dimension does
	// not equal A's row count.
	ErrConeDimension = errors.New("problem: cone set dimension does not match A")

	// ErrPatternMismatch reports that an UpdateP/UpdateA call supplied a
	// matrix whose sparsity pattern (shape, Colptr and Rowval) differs
	// from the one fixed at construction.
	ErrPatternMismatch = errors.New("problem: sparsity pattern mismatch")

	// ErrNotSquare reports that P is not square.
	ErrNotSquare = errors.New("problem: P must be square")
)
