// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver_test

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/solver"
	"github.com/alexlee-gk/trajopt/solver/boxqp"
)

func TestHingePenaltyZeroWhenSatisfied(tst *testing.T) {
	chk.PrintTitle("HingePenaltyZeroWhenSatisfied")
	m := boxqp.New()
	x := m.NewVar("x", -10, 10)
	var obj solver.ConvexObjective
	// minimize x^2 + 100*hinge(x - 5): the hinge never activates below 5,
	// so the optimum is still at x=0.
	obj.AddQuadExpr(expr.Quad{Coeffs: []float64{1}, Vars1: expr.VarVector{x}, Vars2: expr.VarVector{x}})
	obj.AddHinge(m, expr.Aff{Const: -5, Coeffs: []float64{1}, Vars: expr.VarVector{x}}, 100, "h")
	m.AddQuadObj(obj.Quad)
	if err := m.Solve(); err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	chk.Scalar(tst, "x settles at 0", 1e-2, m.Value(x), 0)
}

func TestHingePenaltyPullsBelowThreshold(tst *testing.T) {
	chk.PrintTitle("HingePenaltyPullsBelowThreshold")
	m := boxqp.New()
	x := m.NewVar("x", -10, 10)
	var obj solver.ConvexObjective
	// minimize -x + 50*hinge(x-2): pulls x toward 2 from above.
	obj.AddAffExpr(expr.Aff{Coeffs: []float64{-1}, Vars: expr.VarVector{x}})
	obj.AddHinge(m, expr.Aff{Const: -2, Coeffs: []float64{1}, Vars: expr.VarVector{x}}, 50, "h")
	m.AddQuadObj(obj.Quad)
	if err := m.Solve(); err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(m.Value(x)-2) > 0.1 {
		tst.Errorf("x = %g, want close to 2", m.Value(x))
	}
}

func TestAbsPenaltyPullsToZeroResidual(tst *testing.T) {
	chk.PrintTitle("AbsPenaltyPullsToZeroResidual")
	m := boxqp.New()
	x := m.NewVar("x", -10, 10)
	var obj solver.ConvexObjective
	// minimize -x + 50*|x-3|: pulls x toward 3.
	obj.AddAffExpr(expr.Aff{Coeffs: []float64{-1}, Vars: expr.VarVector{x}})
	obj.AddAbs(m, expr.Aff{Const: -3, Coeffs: []float64{1}, Vars: expr.VarVector{x}}, 50, "r")
	m.AddQuadObj(obj.Quad)
	if err := m.Solve(); err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(m.Value(x)-3) > 0.1 {
		tst.Errorf("x = %g, want close to 3", m.Value(x))
	}
}

func TestViolationNorm(tst *testing.T) {
	chk.PrintTitle("ViolationNorm")
	v := solver.ViolationNorm([]float64{1, -1, 0.5}, []float64{2, -2, 0})
	chk.Scalar(tst, "sums positive ineq parts and abs eq parts", 1e-12, v, 1+0.5+2+2+0)
}
