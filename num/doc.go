// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package num defines the scalar type constraint shared by every coneprog
// package, together with the handful of math functions that must be
// generic over it.
package num
