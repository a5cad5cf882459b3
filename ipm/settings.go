// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"time"

	"gonum.org/v1/coneprog/equilibrate"
	"gonum.org/v1/coneprog/kktsolver/direct"
	"gonum.org/v1/coneprog/num"
)

// Settings controls the IPM driver's iteration limits, tolerances and
// collaborator configuration, the flat-struct shape of optimize.Settings.
type Settings[T num.Float] struct {
	MaxIter   int
	TimeLimit time.Duration

	Verbose bool
	Logf    func(format string, args ...any)

	MaxStepFraction T

	TolGapAbs    T
	TolGapRel    T
	TolFeas      T
	TolInfeasAbs T
	TolInfeasRel T
	TolKtRatio   T

	ReducedTolGapAbs    T
	ReducedTolGapRel    T
	ReducedTolFeas      T
	ReducedTolInfeasAbs T
	ReducedTolInfeasRel T
	ReducedTolKtRatio   T

	LinesearchBacktrackStep T
	MinSwitchStepLength     T
	MinTerminateStepLength  T

	SaveIterates bool

	Equilibrate equilibrate.Settings[T]
	Direct      direct.Settings[T]
}

// DefaultSettings returns the settings used by a cold-start solve, values
// chosen in the same range as the tolerances any Mehrotra
// predictor-corrector conic solver in this family ships with.
func DefaultSettings[T num.Float]() Settings[T] {
	return Settings[T]{
		MaxIter:   200,
		TimeLimit: 0, // 0 disables the wall-clock budget

		MaxStepFraction: T(0.99),

		TolGapAbs:    T(1e-8),
		TolGapRel:    T(1e-8),
		TolFeas:      T(1e-8),
		TolInfeasAbs: T(1e-8),
		TolInfeasRel: T(1e-8),
		TolKtRatio:   T(1e-8),

		ReducedTolGapAbs:    T(1e-5),
		ReducedTolGapRel:    T(1e-5),
		ReducedTolFeas:      T(1e-5),
		ReducedTolInfeasAbs: T(1e-5),
		ReducedTolInfeasRel: T(1e-5),
		ReducedTolKtRatio:   T(1e-5),

		LinesearchBacktrackStep: T(0.8),
		MinSwitchStepLength:     T(0.1),
		MinTerminateStepLength:  T(1e-10),

		Equilibrate: equilibrate.DefaultSettings[T](),
		Direct:      direct.DefaultSettings[T](),
	}
}
