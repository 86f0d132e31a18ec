// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// cleanupEps is the coefficient magnitude below which a term is dropped
// during cleanup. 1e-12 is small enough to only kill true round-off noise.
const cleanupEps = 1e-12

// Aff is an affine expression: constant plus a sum of coeff*var terms.
// Semantic value is Const + sum_i Coeffs[i]*x[Vars[i].Index].
type Aff struct {
	Const  float64
	Coeffs []float64
	Vars   VarVector
}

// NewAffConst returns the constant affine expression c.
func NewAffConst(c float64) Aff { return Aff{Const: c} }

// NewAffVar returns the affine expression 1*v.
func NewAffVar(v Var) Aff { return Aff{Coeffs: []float64{1}, Vars: VarVector{v}} }

// Value evaluates the expression (in its possibly-uncleaned form) at x.
func (a Aff) Value(x []float64) float64 {
	out := a.Const
	for i, c := range a.Coeffs {
		out += c * a.Vars[i].Value(x)
	}
	return out
}

// Clone returns a deep copy.
func (a Aff) Clone() Aff {
	out := Aff{Const: a.Const}
	out.Coeffs = append(out.Coeffs, a.Coeffs...)
	out.Vars = append(out.Vars, a.Vars...)
	return out
}

// ExprInc adds src into dst in place (dst += src), uncleaned.
func ExprInc(dst *Aff, src Aff) {
	dst.Const += src.Const
	dst.Coeffs = append(dst.Coeffs, src.Coeffs...)
	dst.Vars = append(dst.Vars, src.Vars...)
}

// ExprDec subtracts a plain constant from dst in place.
func ExprDec(dst *Aff, c float64) { dst.Const -= c }

// AffAdd returns a+b (uncleaned).
func AffAdd(a, b Aff) Aff {
	out := a.Clone()
	ExprInc(&out, b)
	return out
}

// AffSub returns a-b (uncleaned).
func AffSub(a, b Aff) Aff {
	out := a.Clone()
	ExprInc(&out, AffScale(b, -1))
	return out
}

// AffScale returns k*a.
func AffScale(a Aff, k float64) Aff {
	out := Aff{Const: k * a.Const}
	out.Coeffs = make([]float64, len(a.Coeffs))
	for i, c := range a.Coeffs {
		out.Coeffs[i] = k * c
	}
	out.Vars = append(out.Vars, a.Vars...)
	return out
}

// VarDot builds the affine expression sum_i coeffs[i]*vars[i] (no constant).
func VarDot(coeffs []float64, vars VarVector) Aff {
	if len(coeffs) != len(vars) {
		chk.Panic("VarDot: coeffs and vars length mismatch (%d vs %d)", len(coeffs), len(vars))
	}
	out := Aff{}
	out.Coeffs = append(out.Coeffs, coeffs...)
	out.Vars = append(out.Vars, vars...)
	return out
}

// CleanupAff sorts terms by variable index, coalesces duplicates and drops
// any whose combined |coefficient| falls below cleanupEps. It never changes
// the expression's semantic value (Aff.Value) at any primal x.
func CleanupAff(a Aff) Aff {
	type term struct {
		idx  int
		v    Var
		coef float64
	}
	terms := make([]term, len(a.Coeffs))
	for i := range a.Coeffs {
		terms[i] = term{idx: a.Vars[i].Index, v: a.Vars[i], coef: a.Coeffs[i]}
	}
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].idx < terms[j].idx })

	out := Aff{Const: a.Const}
	i := 0
	for i < len(terms) {
		j := i + 1
		coef := terms[i].coef
		for j < len(terms) && terms[j].idx == terms[i].idx {
			coef += terms[j].coef
			j++
		}
		if abs(coef) >= cleanupEps {
			out.Coeffs = append(out.Coeffs, coef)
			out.Vars = append(out.Vars, terms[i].v)
		}
		i = j
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
