// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kkt builds the symmetric, upper-triangular homogeneous-embedding
// KKT matrix from a quadratic objective P, linear constraint matrix A and a
// cone set, and keeps reverse index maps so that refreshing the cone
// scaling block or any of P/A/q's numeric values after a structural build
// costs O(nnz) and never resymbolizes.
package kkt
