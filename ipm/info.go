// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"time"

	"gonum.org/v1/coneprog/num"
	"gonum.org/v1/coneprog/solution"
)

// Info is the driver's running bookkeeping: the same quantities that end
// up on the finalized Solution, kept live during the loop so a verbose
// caller or the termination check can read them mid-solve.
type Info[T num.Float] struct {
	Status     solution.Status
	CostPrimal T
	CostDual   T
	ResPrimal  T
	ResDual    T
	Iterations int
	SolveTime  float64
	Timings    map[string]time.Duration

	startedAt time.Time
}

// NewInfo returns a zeroed Info ready for a fresh solve.
func NewInfo[T num.Float]() *Info[T] {
	return &Info[T]{Status: solution.Unsolved, Timings: make(map[string]time.Duration)}
}

// reset clears Info back to its pre-solve state, reusing the Timings map.
func (in *Info[T]) reset() {
	in.Status = solution.Unsolved
	in.CostPrimal = 0
	in.CostDual = 0
	in.ResPrimal = 0
	in.ResDual = 0
	in.Iterations = 0
	in.SolveTime = 0
	for k := range in.Timings {
		delete(in.Timings, k)
	}
}
