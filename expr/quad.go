// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "sort"

// Quad is a quadratic expression: an affine part plus a sum of
// coeff*x[u]*x[w] triples. Semantic value is Affine.Value(x) +
// sum_j Coeffs[j]*x[Vars1[j].Index]*x[Vars2[j].Index].
type Quad struct {
	Affine Aff
	Coeffs []float64
	Vars1  VarVector
	Vars2  VarVector
}

// Value evaluates the (possibly-uncleaned) quadratic expression at x.
func (q Quad) Value(x []float64) float64 {
	out := q.Affine.Value(x)
	for i, c := range q.Coeffs {
		out += c * q.Vars1[i].Value(x) * q.Vars2[i].Value(x)
	}
	return out
}

// Clone returns a deep copy.
func (q Quad) Clone() Quad {
	out := Quad{Affine: q.Affine.Clone()}
	out.Coeffs = append(out.Coeffs, q.Coeffs...)
	out.Vars1 = append(out.Vars1, q.Vars1...)
	out.Vars2 = append(out.Vars2, q.Vars2...)
	return out
}

// QuadExprInc adds src into dst in place, uncleaned.
func QuadExprInc(dst *Quad, src Quad) {
	ExprInc(&dst.Affine, src.Affine)
	dst.Coeffs = append(dst.Coeffs, src.Coeffs...)
	dst.Vars1 = append(dst.Vars1, src.Vars1...)
	dst.Vars2 = append(dst.Vars2, src.Vars2...)
}

// QuadAdd returns a+b (uncleaned).
func QuadAdd(a, b Quad) Quad {
	out := a.Clone()
	QuadExprInc(&out, b)
	return out
}

// QuadFromAff lifts a plain affine expression into a quadratic one with no
// quadratic terms.
func QuadFromAff(a Aff) Quad { return Quad{Affine: a} }

// CleanupQuad symmetrizes quadratic terms -- (u,w) and (w,u) with equal
// weight coalesce -- then merges identical (min(u,w), max(u,w)) pairs and
// drops any whose combined |coefficient| is below cleanupEps. The affine
// part is cleaned with CleanupAff. Semantic value is preserved.
func CleanupQuad(q Quad) Quad {
	type term struct {
		lo, hi int
		v1, v2 Var
		coef   float64
	}
	terms := make([]term, len(q.Coeffs))
	for i := range q.Coeffs {
		u, w := q.Vars1[i].Index, q.Vars2[i].Index
		v1, v2 := q.Vars1[i], q.Vars2[i]
		if u > w {
			u, w = w, u
			v1, v2 = v2, v1
		}
		terms[i] = term{lo: u, hi: w, v1: v1, v2: v2, coef: q.Coeffs[i]}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].lo != terms[j].lo {
			return terms[i].lo < terms[j].lo
		}
		return terms[i].hi < terms[j].hi
	})

	out := Quad{Affine: CleanupAff(q.Affine)}
	i := 0
	for i < len(terms) {
		j := i + 1
		coef := terms[i].coef
		for j < len(terms) && terms[j].lo == terms[i].lo && terms[j].hi == terms[i].hi {
			coef += terms[j].coef
			j++
		}
		if abs(coef) >= cleanupEps {
			out.Coeffs = append(out.Coeffs, coef)
			out.Vars1 = append(out.Vars1, terms[i].v1)
			out.Vars2 = append(out.Vars2, terms[i].v2)
		}
		i = j
	}
	return out
}
