// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cones implements the per-cone barrier arithmetic the IPM driver
// needs — Nesterov-Todd scaling updates, step-length search, Hessian/W
// applications, and residual maps — for the zero cone, the nonnegative
// orthant, the second-order cone, and (optionally) the positive
// semidefinite cone in scaled-triangle form, plus ConeSet, the ordered
// block-diagonal composition that presents them as a single cone.
//
// The cone set is closed and known ahead of time, so Cone is an
// enum-of-structs dispatched with a switch on its Kind tag rather than an interface
// with N dynamic implementers: hot-loop dispatch cost matters more here
// than extensibility to cone kinds the package doesn't already know about.
package cones
