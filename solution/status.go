// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solution

import "fmt"

// Status is the terminal (or in-progress) state of a solve.
type Status int

const (
	Unsolved Status = iota
	Solved
	PrimalInfeasible
	DualInfeasible
	AlmostSolved
	AlmostPrimalInfeasible
	AlmostDualInfeasible
	MaxIterations
	MaxTime
	ScalingError
	NumericalError
	InsufficientProgress
)

func (s Status) String() string {
	switch s {
	case Unsolved:
		return "Unsolved"
	case Solved:
		return "Solved"
	case PrimalInfeasible:
		return "PrimalInfeasible"
	case DualInfeasible:
		return "DualInfeasible"
	case AlmostSolved:
		return "AlmostSolved"
	case AlmostPrimalInfeasible:
		return "AlmostPrimalInfeasible"
	case AlmostDualInfeasible:
		return "AlmostDualInfeasible"
	case MaxIterations:
		return "MaxIterations"
	case MaxTime:
		return "MaxTime"
	case ScalingError:
		return "ScalingError"
	case NumericalError:
		return "NumericalError"
	case InsufficientProgress:
		return "InsufficientProgress"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IsInfeasible reports whether s is one of the (almost-)infeasible
// statuses, the certificate branch that finalize normalizes by kappa
// instead of tau.
func (s Status) IsInfeasible() bool {
	switch s {
	case PrimalInfeasible, DualInfeasible, AlmostPrimalInfeasible, AlmostDualInfeasible:
		return true
	default:
		return false
	}
}
