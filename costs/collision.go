// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package costs

import (
	"github.com/alexlee-gk/trajopt/collision"
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/solver"
)

// CollisionCost penalizes coeff*weight*max(0, distPen-dist) summed over
// every contact an Evaluator reports, whether that evaluator checks one
// timestep, a swept cast between two, or the sigma-point hull of a
// belief. The three CollisionCost variants from spec.md ("single-step",
// "continuous", "sigma-points") are exactly this type wrapping the three
// collision.Evaluator implementations -- all the variation lives in the
// evaluator, not the cost.
type CollisionCost struct {
	name    string
	eval    collision.Evaluator
	distPen float64
	coeff   float64
}

// NewCollisionCost builds a collision-avoidance cost: a contact at
// exactly distPen contributes zero, closer contributes coeff*weight*
// (distPen-dist).
func NewCollisionCost(name string, eval collision.Evaluator, distPen, coeff float64) *CollisionCost {
	return &CollisionCost{name: name, eval: eval, distPen: distPen, coeff: coeff}
}

func (c *CollisionCost) Name() string { return c.name }

func (c *CollisionCost) Value(x []float64) float64 {
	dists, weights := c.eval.CalcDists(x, -1)
	var total float64
	for i, d := range dists {
		if v := c.distPen - d; v > 0 {
			total += c.coeff * weights[i] * v
		}
	}
	return total
}

func (c *CollisionCost) Convex(x []float64, iter int, model solver.Model, obj *solver.ConvexObjective) {
	exprs, weights := c.eval.CalcDistExpressions(x, iter)
	for i, e := range exprs {
		viol := expr.AffAdd(expr.AffScale(e, -1), expr.NewAffConst(c.distPen))
		obj.AddHinge(model, viol, c.coeff*weights[i], c.name)
	}
}
