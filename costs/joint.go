// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package costs

import (
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/solver"
)

// JointPosCost penalizes sum_i coeffs[i]*(vars[i] - target[i])^2 at one
// timestep, e.g. pinning a DOF near a target posture.
type JointPosCost struct {
	name   string
	vars   expr.VarVector
	target []float64
	coeffs []float64
}

// NewJointPosCost builds the cost quadratic in (vars[i] - target[i]).
func NewJointPosCost(name string, vars expr.VarVector, target, coeffs []float64) *JointPosCost {
	return &JointPosCost{name: name, vars: vars, target: target, coeffs: coeffs}
}

func (c *JointPosCost) Name() string { return c.name }

func (c *JointPosCost) Value(x []float64) float64 {
	var total float64
	for i, v := range c.vars {
		d := v.Value(x) - c.target[i]
		total += c.coeffs[i] * d * d
	}
	return total
}

func (c *JointPosCost) Convex(x []float64, iter int, model solver.Model, obj *solver.ConvexObjective) {
	for i, v := range c.vars {
		// c*(theta - t)^2 = c*theta^2 - 2*c*t*theta + c*t^2
		obj.AddQuadExpr(expr.Quad{
			Affine: expr.Aff{Const: c.coeffs[i] * c.target[i] * c.target[i],
				Coeffs: []float64{-2 * c.coeffs[i] * c.target[i]}, Vars: expr.VarVector{v}},
			Coeffs: []float64{c.coeffs[i]},
			Vars1:  expr.VarVector{v},
			Vars2:  expr.VarVector{v},
		})
	}
}

// JointVelCost penalizes sum_t sum_i coeffs[i]*(vars[t+1][i]-vars[t][i])^2
// over the joint sub-block of the trajectory, encouraging smooth motion.
type JointVelCost struct {
	name   string
	rows   []expr.VarVector // one row per timestep, same DOF ordering
	coeffs []float64
}

// NewJointVelCost builds the forward-difference velocity cost over rows
// (one VarVector per timestep).
func NewJointVelCost(name string, rows []expr.VarVector, coeffs []float64) *JointVelCost {
	return &JointVelCost{name: name, rows: rows, coeffs: coeffs}
}

func (c *JointVelCost) Name() string { return c.name }

func (c *JointVelCost) Value(x []float64) float64 {
	var total float64
	for t := 0; t+1 < len(c.rows); t++ {
		for i := range c.rows[t] {
			d := c.rows[t+1][i].Value(x) - c.rows[t][i].Value(x)
			total += c.coeffs[i] * d * d
		}
	}
	return total
}

func (c *JointVelCost) Convex(x []float64, iter int, model solver.Model, obj *solver.ConvexObjective) {
	for t := 0; t+1 < len(c.rows); t++ {
		for i := range c.rows[t] {
			a, b := c.rows[t+1][i], c.rows[t][i]
			co := c.coeffs[i]
			// co*(a-b)^2 = co*a^2 - 2*co*a*b + co*b^2
			obj.AddQuadExpr(expr.Quad{
				Coeffs: []float64{co, -2 * co, co},
				Vars1:  expr.VarVector{a, a, b},
				Vars2:  expr.VarVector{a, b, b},
			})
		}
	}
}
