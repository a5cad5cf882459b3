// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import "gonum.org/v1/coneprog/variables"

// solveAffine computes the predictor (affine) search direction, step 5 of
// spec.md §4.4: the linearized homogeneous embedding with no Mehrotra
// correction (shift=0) and a target complementarity of zero for both the
// cone pair (s,z) and the scalar pair (tau,kappa).
func (s *Solver[T]) solveAffine() error {
	for i := range s.shift {
		s.shift[i] = 0
	}
	return s.solveDirection(s.deltaAff, 0)
}

// solveCombined computes the corrector (combined) search direction, step 7
// of spec.md §4.4: the Mehrotra correction term from combined_ds_shift
// folded into the z-row right-hand side, targeting sigma*mu complementarity
// for both the cone pair and the scalar (tau,kappa) pair.
func (s *Solver[T]) solveCombined(sigma T) error {
	s.data.Cones.CombinedDsShift(s.shift, s.deltaAff.Z, s.deltaAff.S, sigma*s.res.Mu)
	return s.solveDirection(s.delta, sigma*s.res.Mu)
}

// solveDirection implements the shared tau-elimination algebra described in
// DESIGN.md: the assembled KKT matrix has no tau/kappa row or column, so the
// driver solves the reduced (n+m)-dimensional system twice (once against
// the current residuals, once against the constant (-q, b) pair) and
// recovers dtau from the scalar equation that couples the two solves,
// treating (tau, kappa) as an extra, independent nonnegative pair with its
// own target complementarity sigmaMu.
func (s *Solver[T]) solveDirection(out *variables.Variables[T], sigmaMu T) error {
	r := s.res
	v := s.v

	for i := range s.rzShifted {
		s.rzShifted[i] = r.Rz[i] - s.shift[i]
	}

	s.kkt.SetRHS(r.Rx, s.rzShifted)
	if err := s.kkt.Solve(s.ux, s.uz); err != nil {
		return err
	}

	for i, qi := range s.data.Q {
		s.negQ[i] = -qi
	}
	s.kkt.SetRHS(s.negQ, s.data.B)
	if err := s.kkt.Solve(s.vx, s.vz); err != nil {
		return err
	}

	qu := dot(s.data.Q, s.ux)
	bu := dot(s.data.B, s.uz)
	qv := dot(s.data.Q, s.vx)
	bv := dot(s.data.B, s.vz)

	target := sigmaMu - v.Tau*v.Kappa
	numerator := target + v.Tau*(r.Rtau+qu+bu)
	denominator := v.Kappa - v.Tau*(qv+bv)

	var dTau T
	if denominator != 0 {
		dTau = numerator / denominator
	}

	for i := range out.X {
		out.X[i] = s.ux[i] + dTau*s.vx[i]
	}
	for i := range out.Z {
		out.Z[i] = s.uz[i] + dTau*s.vz[i]
	}
	s.data.Cones.DeltaSFromDeltaZOffset(out.S, out.Z)
	for i := range out.S {
		out.S[i] += s.shift[i]
	}

	out.Tau = dTau
	out.Kappa = -r.Rtau - dot(s.data.Q, out.X) - dot(s.data.B, out.Z)
	return nil
}
