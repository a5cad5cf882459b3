// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kktsolver defines the linear-solver abstraction the IPM driver
// invokes each iteration to compute affine and combined search directions.
// It is opaque to the driver: the driver only calls Update, SetRHS and
// Solve, never touching the KKT matrix directly. Subpackage direct supplies
// the one concrete implementation shipped here.
package kktsolver
