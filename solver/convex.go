// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import "github.com/alexlee-gk/trajopt/expr"

// ConvexObjective accumulates the convexified pieces of a single cost's
// contribution to one outer iteration's subproblem: a quadratic term plus
// any number of hinge penalties (for costs like collision that are
// themselves non-smooth). Costs build one of these in their Convex
// method; the driver sums them across all costs before calling
// Model.AddQuadObj.
type ConvexObjective struct {
	Quad expr.Quad
}

// AddQuadExpr folds q into the running quadratic objective.
func (o *ConvexObjective) AddQuadExpr(q expr.Quad) {
	o.Quad = expr.QuadAdd(o.Quad, q)
}

// AddAffExpr folds a linear term into the running objective.
func (o *ConvexObjective) AddAffExpr(a expr.Aff) {
	o.Quad = expr.QuadAdd(o.Quad, expr.QuadFromAff(a))
}

// AddHinge adds coeff*max(0, viol) to the objective via a fresh slack
// variable t >= 0 with the hard row viol - t <= 0, so at the optimum
// t == max(0, viol). This is how CollisionCost and the merit penalty for
// inequality constraints both linearize a hinge loss into a form a QP
// solver understands.
func (o *ConvexObjective) AddHinge(model Model, viol expr.Aff, coeff float64, name string) {
	if coeff == 0 {
		return
	}
	t := model.NewVar(name, 0, 1e10)
	row := expr.AffAdd(viol, expr.VarDot([]float64{-1}, expr.VarVector{t}))
	model.AddIneqRow(row)
	o.AddAffExpr(expr.VarDot([]float64{coeff}, expr.VarVector{t}))
}

// AddAbs adds coeff*|residual| to the objective via two nonnegative slack
// variables aPos, aNeg related by the hard row residual - aPos + aNeg == 0,
// so at the optimum aPos+aNeg == |residual|. Used for the merit penalty on
// equality constraint violations.
func (o *ConvexObjective) AddAbs(model Model, residual expr.Aff, coeff float64, namePrefix string) {
	if coeff == 0 {
		return
	}
	aPos := model.NewVar(namePrefix+"_pos", 0, 1e10)
	aNeg := model.NewVar(namePrefix+"_neg", 0, 1e10)
	row := expr.AffAdd(residual, expr.VarDot([]float64{-1, 1}, expr.VarVector{aPos, aNeg}))
	model.AddEqRow(row)
	o.AddAffExpr(expr.VarDot([]float64{coeff, coeff}, expr.VarVector{aPos, aNeg}))
}

// ConstraintType distinguishes equality from inequality constraint rows,
// mirroring the EQ/INEQ split in spec.md section 4.4.
type ConstraintType int

const (
	EQ ConstraintType = iota
	INEQ
)

// ConvexConstraints accumulates the linear rows a single constraint's
// Convex method produces for one outer iteration: equalities (a == 0) and
// inequalities (a <= 0). The driver never adds these as hard rows to the
// Model -- per the merit-method design, every row is converted to an
// exact ℓ1 penalty term (hinge for INEQ, abs for EQ) scaled by the
// current penalty coefficient and folded into the shared ConvexObjective.
// The only hard rows this adds are the slack rows AddAbs/AddHinge create,
// which any x satisfies with large enough slack, so the assembled
// subproblem can't go infeasible from constraint conflicts, only from a
// collapsed trust-region box.
type ConvexConstraints struct {
	EqRows   []expr.Aff
	IneqRows []expr.Aff
}

func (c *ConvexConstraints) AddEqCnt(a expr.Aff)   { c.EqRows = append(c.EqRows, a) }
func (c *ConvexConstraints) AddIneqCnt(a expr.Aff) { c.IneqRows = append(c.IneqRows, a) }

// Penalize folds every accumulated row into obj as an ℓ1 penalty term
// scaled by coeff (the current merit penalty coefficient μ), creating
// whatever slack variables it needs on model. namePrefix should uniquely
// identify the owning constraint and timestep so slack variable names
// don't collide across a trajectory.
func (c *ConvexConstraints) Penalize(model Model, obj *ConvexObjective, coeff float64, namePrefix string) {
	for _, a := range c.EqRows {
		obj.AddAbs(model, a, coeff, namePrefix+"_eq")
	}
	for _, a := range c.IneqRows {
		obj.AddHinge(model, a, coeff, namePrefix+"_ineq")
	}
}

// ViolationNorm returns the ℓ1 constraint violation sum(max(0,ineq)) +
// sum(|eq|) at x, the quantity the merit function and the penalty-growth
// check (spec 4.7) both need evaluated at the true (nonlinear) candidate
// rather than its linearization.
func ViolationNorm(ineqVals, eqVals []float64) float64 {
	var total float64
	for _, v := range ineqVals {
		if v > 0 {
			total += v
		}
	}
	for _, v := range eqVals {
		if v < 0 {
			total += -v
		} else {
			total += v
		}
	}
	return total
}
