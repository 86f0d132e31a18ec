// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package costs

import (
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/solver"
)

// ControlCost penalizes sum_t sum_i coeffs[i]*u[t][i]^2 on the control
// block. It is a no-op (zero rows, zero value) outside belief mode, since
// only belief-space problems carry control variables distinct from the
// joint trajectory itself.
type ControlCost struct {
	name   string
	rows   []expr.VarVector
	coeffs []float64
}

// NewControlCost builds the control-effort cost over rows (one VarVector
// of control coordinates per timestep). Pass nil rows for non-belief
// problems; it degenerates to a silent no-op.
func NewControlCost(name string, rows []expr.VarVector, coeffs []float64) *ControlCost {
	return &ControlCost{name: name, rows: rows, coeffs: coeffs}
}

func (c *ControlCost) Name() string { return c.name }

func (c *ControlCost) Value(x []float64) float64 {
	var total float64
	for _, row := range c.rows {
		for i, v := range row {
			u := v.Value(x)
			total += c.coeffs[i] * u * u
		}
	}
	return total
}

func (c *ControlCost) Convex(x []float64, iter int, model solver.Model, obj *solver.ConvexObjective) {
	for _, row := range c.rows {
		for i, v := range row {
			obj.AddQuadExpr(expr.Quad{Coeffs: []float64{c.coeffs[i]}, Vars1: expr.VarVector{v}, Vars2: expr.VarVector{v}})
		}
	}
}

// ControlCnt is a per-coordinate box u_min <= u <= u_max on the control
// block, expressed (per the merit-method design) as two ordinary
// inequality rows per coordinate rather than a variable bound, since it
// is built the same way every other nonlinear constraint is and goes
// through the same penalty machinery. It is a silent no-op outside
// belief mode.
type ControlCnt struct {
	name         string
	rows         []expr.VarVector
	lower, upper []float64
}

// NewControlCnt builds the box constraint over rows (one VarVector per
// timestep) with per-coordinate bounds.
func NewControlCnt(name string, rows []expr.VarVector, lower, upper []float64) *ControlCnt {
	return &ControlCnt{name: name, rows: rows, lower: lower, upper: upper}
}

func (c *ControlCnt) Name() string          { return c.name }
func (c *ControlCnt) Type() ConstraintType   { return INEQ }

func (c *ControlCnt) Value(x []float64) []float64 {
	out := make([]float64, 0, 2*len(c.rows)*len(c.lower))
	for _, row := range c.rows {
		for i, v := range row {
			u := v.Value(x)
			out = append(out, c.lower[i]-u, u-c.upper[i])
		}
	}
	return out
}

func (c *ControlCnt) Convex(x []float64, iter int, cnts *solver.ConvexConstraints) {
	for _, row := range c.rows {
		for i, v := range row {
			cnts.AddIneqCnt(expr.Aff{Const: c.lower[i], Coeffs: []float64{-1}, Vars: expr.VarVector{v}})
			cnts.AddIneqCnt(expr.Aff{Const: -c.upper[i], Coeffs: []float64{1}, Vars: expr.VarVector{v}})
		}
	}
}
