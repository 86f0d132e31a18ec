// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver declares the thin adapter the optimizer core programs
// against for its convex subproblems: add variables with bounds, add
// affine equality/inequality rows, add a quadratic objective, solve, and
// retrieve the primal. This is the external, out-of-scope QP/LP solver
// contract from spec.md section 6; package boxqp ships one concrete,
// minimal implementation so the repository runs end to end without a
// fabricated dependency.
package solver

import "github.com/alexlee-gk/trajopt/expr"

// ErrInfeasible is returned by Solve when the assembled subproblem has no
// feasible point (e.g. a variable's trust-region box collapsed below its
// global lower bound). The SQP driver treats this as a reject and shrinks
// the trust region.
type ErrInfeasible struct{ Reason string }

func (e *ErrInfeasible) Error() string { return "solver: infeasible: " + e.Reason }

// ErrUnbounded is returned when the objective is unbounded below on the
// feasible region. Also treated as a reject by the driver.
type ErrUnbounded struct{ Reason string }

func (e *ErrUnbounded) Error() string { return "solver: unbounded: " + e.Reason }

// Model is the convex-subproblem adapter: a QP/LP solver exposed through
// exactly the primitives the optimizer core needs.
type Model interface {
	// NewVar allocates a fresh decision variable with the given box
	// bounds and returns its handle.
	NewVar(name string, lower, upper float64) expr.Var
	// SetBounds tightens (or loosens) an existing variable's box bounds.
	// The SQP driver does not call it: it builds a fresh Model each
	// iteration and passes the trust-region box to NewVar.
	SetBounds(v expr.Var, lower, upper float64)
	// AddEqRow adds the hard linear equality a == 0.
	AddEqRow(a expr.Aff)
	// AddIneqRow adds the hard linear inequality a <= 0.
	AddIneqRow(a expr.Aff)
	// AddQuadObj accumulates q into the subproblem's quadratic objective.
	AddQuadObj(q expr.Quad)
	// Solve solves the assembled subproblem. On success, Value retrieves
	// the primal for any variable created on this Model.
	Solve() error
	// Value returns v's value in the last successful solve.
	Value(v expr.Var) float64
	// NumVars returns how many variables have been created.
	NumVars() int
}
