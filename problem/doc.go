// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package problem holds validated conic problem data (P, q, A, b, cones)
// together with its equilibration, and the pattern-preserving update API
// the IPM driver re-exercises between solves.
package problem
