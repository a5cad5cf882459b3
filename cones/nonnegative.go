// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cones

import "gonum.org/v1/coneprog/num"

// updateScalingNonnegative computes the diagonal Nesterov-Todd scaling
// d[i] = sqrt(s[i]/z[i]) for the nonnegative orthant, so that
// W = diag(d), W^2 * z == s in the scaled metric.
func (c *Cone[T]) updateScalingNonnegative(s, z []T) bool {
	for i := range c.d {
		if s[i] <= 0 || z[i] <= 0 {
			return false
		}
		ratio := s[i] / z[i]
		if ratio <= 0 || num.IsNaN(ratio) {
			return false
		}
	}
	for i := range c.d {
		c.d[i] = num.Sqrt(s[i] / z[i])
	}
	return true
}
