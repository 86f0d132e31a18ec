// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package costs implements the concrete cost and constraint terms a
// problem is built from: quadratic joint-space penalties, Cartesian pose
// and velocity terms, collision avoidance (single-step, continuous and
// belief-space sigma-point variants), control effort and bounds,
// covariance shrinkage, and the belief-dynamics equality constraint.
// Every type here satisfies Cost or Constraint by providing both a true
// (possibly nonlinear) value and a convex surrogate the SQP driver can
// hand to solver.Model.
package costs

import (
	"github.com/alexlee-gk/trajopt/solver"
)

// Cost is one additive term of the objective.
type Cost interface {
	// Name identifies the cost for iteration tracing and result reports.
	Name() string
	// Value returns the true (possibly nonlinear) cost at primal x.
	Value(x []float64) float64
	// Convex linearizes/quadratizes the cost about x for one outer
	// iteration (identified by iter, for evaluators that cache collision
	// queries), adding its contribution into obj.
	Convex(x []float64, iter int, model solver.Model, obj *solver.ConvexObjective)
}

// ConstraintType distinguishes equality from inequality constraints.
type ConstraintType = solver.ConstraintType

const (
	EQ   = solver.EQ
	INEQ = solver.INEQ
)

// Constraint is one row (or block of rows) of g(x)=0 or h(x)<=0.
type Constraint interface {
	Name() string
	Type() ConstraintType
	// Value returns the true constraint values at x (one per row; EQ rows
	// are violated when nonzero, INEQ rows when positive).
	Value(x []float64) []float64
	// Convex linearizes the constraint about x for one outer iteration,
	// adding its rows into cnts.
	Convex(x []float64, iter int, cnts *solver.ConvexConstraints)
}

// Plottable is an optional hook a cost/constraint can satisfy to expose a
// geometric visualization of its current state (the Go analogue of the
// original optimizer's viewer callback, itself out of scope here). The
// driver never requires it.
type Plottable interface {
	Plot(x []float64) []PlotPoint
}

// PlotPoint is one renderable point (e.g. a collision contact) a
// Plottable cost can report.
type PlotPoint struct {
	A, B  [3]float64
	Label string
}
