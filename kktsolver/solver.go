// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kktsolver

import (
	"gonum.org/v1/coneprog/cones"
	"gonum.org/v1/coneprog/num"
)

// Solver factors the assembled KKT matrix and answers linear systems for
// the IPM's affine and combined search directions. Update must run in
// O(nnz) and never resymbolize; Solve may factor-if-stale before solving.
type Solver[T num.Float] interface {
	// Update refreshes the KKT matrix's numeric values from the current
	// cone scaling and marks the factorization stale.
	Update(coneSet *cones.ConeSet[T]) error

	// SetRHS stores the right-hand side for the next Solve call. xrhs has
	// length N, zrhs has length M.
	SetRHS(xrhs, zrhs []T)

	// Solve factors the KKT matrix if stale, then solves for (dx, dz),
	// writing into the caller-supplied buffers. It returns an error only
	// on unrecoverable numerical failure (ErrFactorization); a refinement
	// loop that fails to reach tolerance within its iteration budget still
	// returns the best iterate and a nil error, per the "report success
	// anyway" contract.
	Solve(dx, dz []T) error
}
