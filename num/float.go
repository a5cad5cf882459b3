// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package num

import "math"

// Float is the scalar type constraint used throughout coneprog. float64 is
// the default instantiation used by every exported constructor; float32 is
// supported for embedded or memory-constrained callers.
type Float interface {
	~float64 | ~float32
}

// Sqrt returns the square root of x.
func Sqrt[T Float](x T) T {
	return T(math.Sqrt(float64(x)))
}

// Abs returns the absolute value of x.
func Abs[T Float](x T) T {
	return T(math.Abs(float64(x)))
}

// Inf returns positive infinity if sign >= 0, negative infinity otherwise.
func Inf[T Float](sign int) T {
	return T(math.Inf(sign))
}

// NaN returns an IEEE 754 "not-a-number" value.
func NaN[T Float]() T {
	return T(math.NaN())
}

// IsNaN reports whether x is an IEEE 754 "not-a-number" value.
func IsNaN[T Float](x T) bool {
	return math.IsNaN(float64(x))
}

// IsInf reports whether x is an infinity, according to sign.
func IsInf[T Float](x T, sign int) bool {
	return math.IsInf(float64(x), sign)
}

// Max returns the larger of x and y.
func Max[T Float](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Min returns the smaller of x and y.
func Min[T Float](x, y T) T {
	if x < y {
		return x
	}
	return y
}
