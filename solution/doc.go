// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solution holds the user-facing result of a solve: the
// descaled, unequilibrated primal/dual iterate, status, objective values
// and timing/iteration accounting.
package solution
