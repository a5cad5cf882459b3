// Copyright ©2026 The coneprog Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problem

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"gonum.org/v1/coneprog/cones"
	"gonum.org/v1/coneprog/csc"
	"gonum.org/v1/coneprog/equilibrate"
	"gonum.org/v1/coneprog/num"
)

// Data holds one conic problem: minimize (1/2)x'Px + q'x subject to
// Ax + s = b, s in the product cone described by Cones.
type Data[T num.Float] struct {
	P, A  *csc.CscMatrix[T]
	Q, B  []T
	Cones *cones.ConeSet[T]
	Equil equilibrate.Equilibration[T]
}

// New validates and wraps problem data. Validation order matches
// original_source's Python builder: shapes first, then cone dimensions,
// so error messages are deterministic regardless of which check a caller
// might expect to fire first.
func New[T num.Float](P, A *csc.CscMatrix[T], q, b []T, coneSet *cones.ConeSet[T]) (*Data[T], error) {
	if P.N != P.M {
		return nil, ErrNotSquare
	}
	if A.N != P.N {
		return nil, fmt.Errorf("%w: A has %d columns, P has dimension %d", ErrDimensionMismatch, A.N, P.N)
	}
	if len(q) != P.N {
		return nil, fmt.Errorf("%w: q has length %d, want %d", ErrDimensionMismatch, len(q), P.N)
	}
	if len(b) != A.M {
		return nil, fmt.Errorf("%w: b has length %d, want %d", ErrDimensionMismatch, len(b), A.M)
	}
	if coneSet.Dim() != A.M {
		return nil, fmt.Errorf("%w: cone set has dimension %d, A has %d rows", ErrConeDimension, coneSet.Dim(), A.M)
	}

	return &Data[T]{
		P:     P,
		A:     A,
		Q:     q,
		B:     b,
		Cones: coneSet,
		Equil: equilibrate.Identity[T](P.N, A.M),
	}, nil
}

// UpdateP overwrites P's numeric values in place, keeping the sparsity
// pattern fixed at construction.
func (d *Data[T]) UpdateP(P *csc.CscMatrix[T]) error {
	if !P.SamePattern(d.P) {
		return ErrPatternMismatch
	}
	copy(d.P.Nzval, P.Nzval)
	return nil
}

// UpdateA overwrites A's numeric values in place, keeping the sparsity
// pattern fixed at construction.
func (d *Data[T]) UpdateA(A *csc.CscMatrix[T]) error {
	if !A.SamePattern(d.A) {
		return ErrPatternMismatch
	}
	copy(d.A.Nzval, A.Nzval)
	return nil
}

// UpdateQ overwrites q in place.
func (d *Data[T]) UpdateQ(q []T) error {
	if len(q) != len(d.Q) {
		return ErrDimensionMismatch
	}
	copy(d.Q, q)
	return nil
}

// UpdateB overwrites b in place.
func (d *Data[T]) UpdateB(b []T) error {
	if len(b) != len(d.B) {
		return ErrDimensionMismatch
	}
	copy(d.B, b)
	return nil
}

// gobShadow is the exported, float64-based form of Data used for
// persistence: Cone carries unexported state and CscMatrix is generic over
// T, so neither is gob-encoded directly, the way any type with package-private state
// needs a GobEncode/GobDecode pair rather than struct-tag reflection.
type gobShadow struct {
	N, M                       int
	PColptr, PRowval           []int
	PNzval                     []float64
	AColptr, ARowval           []int
	ANzval                     []float64
	Q, B                       []float64
	ConeSpecs                  []cones.Spec
}

// EncodeGob writes the problem data (P, q, A, b, cones) to w, the minimal
// persisted artifact named in spec.md's "write_to_file" contract.
// Equilibration and solver settings are not part of this payload; a caller
// round-tripping a solve is expected to re-equilibrate and re-supply
// settings, since both are cheap to recompute and neither is part of the
// problem itself.
func (d *Data[T]) EncodeGob(w io.Writer) error {
	shadow := gobShadow{
		N:         d.P.N,
		M:         d.A.M,
		PColptr:   append([]int(nil), d.P.Colptr...),
		PRowval:   append([]int(nil), d.P.Rowval...),
		PNzval:    toFloat64(d.P.Nzval),
		AColptr:   append([]int(nil), d.A.Colptr...),
		ARowval:   append([]int(nil), d.A.Rowval...),
		ANzval:    toFloat64(d.A.Nzval),
		Q:         toFloat64(d.Q),
		B:         toFloat64(d.B),
		ConeSpecs: d.Cones.Specs(),
	}
	return gob.NewEncoder(w).Encode(shadow)
}

// DecodeGob reads problem data previously written by EncodeGob.
func DecodeGob[T num.Float](r io.Reader) (*Data[T], error) {
	var shadow gobShadow
	if err := gob.NewDecoder(r).Decode(&shadow); err != nil {
		return nil, err
	}
	P := csc.New[T](shadow.N, shadow.N, shadow.PColptr, shadow.PRowval, fromFloat64[T](shadow.PNzval))
	A := csc.New[T](shadow.M, shadow.N, shadow.AColptr, shadow.ARowval, fromFloat64[T](shadow.ANzval))
	coneSet := cones.NewConeSetFromSpecs[T](shadow.ConeSpecs)
	return New[T](P, A, fromFloat64[T](shadow.Q), fromFloat64[T](shadow.B), coneSet)
}

// EncodeGobBytes is a convenience wrapper around EncodeGob for callers
// that want an in-memory buffer rather than an io.Writer.
func (d *Data[T]) EncodeGobBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.EncodeGob(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toFloat64[T num.Float](x []T) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

func fromFloat64[T num.Float](x []float64) []T {
	out := make([]T, len(x))
	for i, v := range x {
		out[i] = T(v)
	}
	return out
}
