// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package boxqp is a minimal, dependency-free reference implementation of
// solver.Model: a dense, box-constrained quadratic program solved by
// projected gradient descent with Armijo backtracking. It exists so this
// repository runs end to end without reaching for a fabricated QP
// dependency -- production use should swap in a real interior-point or
// active-set solver behind the same solver.Model interface.
package boxqp

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/solver"
)

const (
	eqPenaltyWeight   = 1e6
	ineqPenaltyWeight = 1e6
	maxIters          = 2000
	gradTol           = 1e-10
)

// Solver is a solver.Model backed by dense in-memory accumulation. Hard
// equality/inequality rows are folded into the objective as large
// quadratic / squared-hinge penalties rather than enforced exactly; for
// the box-bounds-dominated subproblems this optimizer builds (trust
// region box intersected with joint/control limits), that is enough to
// recover a solution the driver can treat as a convex-subproblem primal.
type Solver struct {
	names        []string
	lower, upper []float64
	values       []float64

	// quadratic objective accumulated directly from AddQuadObj calls.
	quadCoeffs []float64
	quadVars1  []expr.Var
	quadVars2  []expr.Var
	affConst   float64
	affCoeffs  []float64
	affVars    expr.VarVector

	eqRows   []expr.Aff
	ineqRows []expr.Aff
}

// New returns an empty box-constrained QP ready to accept variables.
func New() *Solver {
	return &Solver{}
}

func (s *Solver) NewVar(name string, lower, upper float64) expr.Var {
	idx := len(s.names)
	s.names = append(s.names, name)
	s.lower = append(s.lower, lower)
	s.upper = append(s.upper, upper)
	s.values = append(s.values, clamp(0, lower, upper))
	return expr.Var{Index: idx, Name: name}
}

func (s *Solver) SetBounds(v expr.Var, lower, upper float64) {
	s.lower[v.Index] = lower
	s.upper[v.Index] = upper
	s.values[v.Index] = clamp(s.values[v.Index], lower, upper)
}

func (s *Solver) AddEqRow(a expr.Aff)   { s.eqRows = append(s.eqRows, a) }
func (s *Solver) AddIneqRow(a expr.Aff) { s.ineqRows = append(s.ineqRows, a) }

func (s *Solver) AddQuadObj(q expr.Quad) {
	s.affConst += q.Affine.Const
	for i, v := range q.Affine.Vars {
		s.affCoeffs = append(s.affCoeffs, q.Affine.Coeffs[i])
		s.affVars = append(s.affVars, v)
	}
	for i := range q.Coeffs {
		s.quadCoeffs = append(s.quadCoeffs, q.Coeffs[i])
		s.quadVars1 = append(s.quadVars1, q.Vars1[i])
		s.quadVars2 = append(s.quadVars2, q.Vars2[i])
	}
}

func (s *Solver) NumVars() int { return len(s.names) }

func (s *Solver) Value(v expr.Var) float64 {
	if v.Index < 0 || v.Index >= len(s.values) {
		chk.Panic("boxqp: Value: index %d out of range [0,%d)", v.Index, len(s.values))
	}
	return s.values[v.Index]
}

// Solve runs projected gradient descent on the accumulated objective plus
// penalty terms for eqRows/ineqRows, starting from the current values.
func (s *Solver) Solve() error {
	n := len(s.names)
	for i := 0; i < n; i++ {
		if s.lower[i] > s.upper[i] {
			return &solver.ErrInfeasible{Reason: "var " + s.names[i] + " has empty box bound"}
		}
	}
	x := append([]float64(nil), s.values...)
	for i := range x {
		x[i] = clamp(x[i], s.lower[i], s.upper[i])
	}

	step := 1.0
	_, grad := s.objGrad(x)
	for iter := 0; iter < maxIters; iter++ {
		gnorm := normInf(grad)
		if gnorm < gradTol {
			break
		}
		fx, _ := s.objGrad(x)
		// backtracking line search on the projected step
		t := step
		for bt := 0; bt < 30; bt++ {
			cand := make([]float64, n)
			for i := range cand {
				cand[i] = clamp(x[i]-t*grad[i], s.lower[i], s.upper[i])
			}
			fcand, _ := s.objGrad(cand)
			if fcand <= fx-1e-4*t*gnorm*gnorm || t < 1e-16 {
				x = cand
				break
			}
			t *= 0.5
		}
		step = t * 1.5
		_, grad = s.objGrad(x)
	}
	if math.IsNaN(normInf(x)) {
		return &solver.ErrUnbounded{Reason: "objective diverged"}
	}
	s.values = x
	return nil
}

// objGrad evaluates the total penalized objective and its gradient at x.
func (s *Solver) objGrad(x []float64) (val float64, grad []float64) {
	n := len(x)
	grad = make([]float64, n)
	val = s.affConst
	for i, v := range s.affVars {
		val += s.affCoeffs[i] * x[v.Index]
		grad[v.Index] += s.affCoeffs[i]
	}
	for i := range s.quadCoeffs {
		u, w := s.quadVars1[i].Index, s.quadVars2[i].Index
		c := s.quadCoeffs[i]
		val += c * x[u] * x[w]
		grad[u] += c * x[w]
		if u != w {
			grad[w] += c * x[u]
		} else {
			grad[u] += c * x[w]
		}
	}
	for _, a := range s.eqRows {
		r := a.Value(x)
		val += eqPenaltyWeight * r * r
		for i, v := range a.Vars {
			grad[v.Index] += 2 * eqPenaltyWeight * r * a.Coeffs[i]
		}
	}
	for _, a := range s.ineqRows {
		r := a.Value(x)
		if r <= 0 {
			continue
		}
		val += ineqPenaltyWeight * r * r
		for i, v := range a.Vars {
			grad[v.Index] += 2 * ineqPenaltyWeight * r * a.Coeffs[i]
		}
	}
	return
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normInf(v []float64) float64 {
	var m float64
	for _, vi := range v {
		if a := math.Abs(vi); a > m {
			m = a
		}
	}
	return m
}

var _ solver.Model = (*Solver)(nil)
