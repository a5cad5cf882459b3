// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ipm implements the homogeneous self-dual embedding primal-dual
// interior-point method: the Mehrotra predictor-corrector iteration over a
// problem.Data instance, driving a kktsolver.Solver each step and
// finalizing into a solution.Solution.
package ipm
