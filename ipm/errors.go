// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import "errors"

// Argument errors: ErrInvalidSettings is returned by NewSolver and
// ErrWarmStartShape by SolveWarm; per spec.md §7, these surface before any
// iteration runs rather than being reported through a terminal Status.
var (
	ErrInvalidSettings = errors.New("ipm: invalid settings")
	ErrWarmStartShape  = errors.New("ipm: warm-start vector has the wrong length")
)
