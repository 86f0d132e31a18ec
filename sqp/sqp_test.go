// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/alexlee-gk/trajopt/problem"
	"github.com/alexlee-gk/trajopt/robotmodel/planar"
	"github.com/alexlee-gk/trajopt/solver"
	"github.com/alexlee-gk/trajopt/solver/boxqp"
)

func buildSmoothnessProblem(tst *testing.T) *problem.Problem {
	rad := planar.NewThreeLink()
	rad.SetDOFValues([]float64{0, 0, 0})
	checker := planar.NewCircleChecker(rad, nil, 0.02)
	spec := &problem.ProblemSpec{
		BasicInfo: problem.BasicInfo{NSteps: 6, StartFixed: true},
		Costs: []problem.TermSpec{
			{Type: "joint_vel", Name: "smoothness", Params: []byte(`{"coeffs":[1,1,1]}`)},
		},
		Constraints: []problem.TermSpec{
			{Type: "pose", Name: "reach_goal", Params: []byte(`{"timestep":5,"link":"Finger","pos":[0.2,0.3,0]}`)},
		},
		InitInfo: problem.InitInfo{Type: "straight_line", Endpoint: []float64{1.2, -0.8, 0.4}},
	}
	p, err := problem.Build(spec, rad, nil, checker, boxqp.New())
	if err != nil {
		tst.Fatalf("build failed: %v", err)
	}
	return p
}

func TestOptimizeReducesConstraintViolation(tst *testing.T) {
	chk.PrintTitle("OptimizeReducesConstraintViolation")
	p := buildSmoothnessProblem(tst)
	opts := DefaultOptions()
	opts.Verbose = false
	driver := NewDriver(p, func() solver.Model { return boxqp.New() }, opts)

	initViol := totalAbsViolation(map[string][]float64{"init": violationAt(driver, p.InitX)})
	result := driver.Optimize(p.InitX)
	if result.Iterations == 0 {
		tst.Fatal("expected at least one SQP iteration to run")
	}
	finalViol := totalAbsViolation(result.ConstraintViolations)
	if finalViol > initViol {
		tst.Errorf("constraint violation grew: init=%.6g final=%.6g", initViol, finalViol)
	}
}

func violationAt(d *Driver, x []float64) []float64 {
	out := make([]float64, 0, len(d.Constraints))
	for _, c := range d.Constraints {
		out = append(out, c.Value(x)...)
	}
	return out
}

func TestOptimizeNeverWorsensMeritOnAcceptedSteps(tst *testing.T) {
	chk.PrintTitle("OptimizeNeverWorsensMeritOnAcceptedSteps")
	p := buildSmoothnessProblem(tst)
	opts := DefaultOptions()
	opts.Verbose = false
	driver := NewDriver(p, func() solver.Model { return boxqp.New() }, opts)

	mu := opts.MeritErrorCoeff
	before := driver.merit(p.InitX, mu)
	result := driver.Optimize(p.InitX)
	after := driver.merit(result.X, result.MeritCoeff)

	// the merit coefficient only grows, so comparing the initial merit
	// under the final (possibly larger) mu is still a valid upper bound:
	// a larger mu only increases the initial point's violation term.
	beforeAtFinalMu := driver.merit(p.InitX, result.MeritCoeff)
	if after > beforeAtFinalMu+1e-6 {
		tst.Errorf("final merit %.6g exceeds initial merit %.6g (mu=%.4g); before-at-initial-mu=%.6g", after, beforeAtFinalMu, result.MeritCoeff, before)
	}
}

func totalAbsViolation(cntViols map[string][]float64) float64 {
	var total float64
	for _, vals := range cntViols {
		for _, v := range vals {
			total += math.Abs(v)
		}
	}
	return total
}
