// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expr implements the decision-variable and expression algebra
// that the costs, constraints and SQP driver build against: variables,
// affine expressions and quadratic expressions, plus the builders that
// add/subtract/scale and clean them up.
package expr

import "github.com/cpmech/gosl/chk"

// Var is an opaque handle to one decision-variable coordinate: an index
// into the primal vector and a human-readable name for diagnostics.
type Var struct {
	Index int
	Name  string
}

// Value looks up this variable's value in a primal vector.
func (v Var) Value(x []float64) float64 {
	if v.Index < 0 || v.Index >= len(x) {
		chk.Panic("Var %q: index %d out of range for primal of length %d", v.Name, v.Index, len(x))
	}
	return x[v.Index]
}

// VarVector is an ordered list of variables, e.g. one timestep's joint row.
type VarVector []Var

// Values evaluates every variable in the vector against a primal.
func (vv VarVector) Values(x []float64) []float64 {
	out := make([]float64, len(vv))
	for i, v := range vv {
		out[i] = v.Value(x)
	}
	return out
}
