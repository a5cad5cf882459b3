// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package variables holds the homogeneous self-dual embedding's iterate
// (x, s, z, tau, kappa) and the scaled-add arithmetic the IPM driver uses
// to advance it along a search direction.
package variables
