// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package equilibrate computes the diagonal Ruiz scaling the IPM driver
// applies before solving and unwinds when reporting a solution, and
// carries the identity scaling used when equilibration is disabled.
package equilibrate
