// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command trajopt reads a JSON problem description (basic_info, costs,
// constraints, init_info -- spec.md section 3) and runs the sequential
// convex optimizer over it, the way gofem's own main.go drives an .sim
// file through fem.Start/fem.Run: one positional filename argument,
// flag.Parse for everything else, io.Pf banners, chk.Panic on failure.
package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/alexlee-gk/trajopt/kinematics"
	"github.com/alexlee-gk/trajopt/problem"
	"github.com/alexlee-gk/trajopt/robotmodel/planar"
	"github.com/alexlee-gk/trajopt/solver"
	"github.com/alexlee-gk/trajopt/solver/boxqp"
	"github.com/alexlee-gk/trajopt/sqp"
)

func main() {
	verbose := flag.Bool("v", true, "print per-iteration SQP trace")
	linkRadius := flag.Float64("link-radius", 0.02, "capsule radius inflating every link for collision checking")
	flag.Parse()

	defer func() {
		if err := recover(); err != nil {
			chk.CallerInfo(3)
			io.Pfred("ERROR: %v\n", err)
		}
	}()

	if len(flag.Args()) < 1 {
		chk.Panic("Please, provide a problem JSON file. Ex.: trajopt problem.json")
	}
	fnamepath := flag.Arg(0)

	io.PfWhite("\ntrajopt -- trajectory optimization under uncertainty\n\n")

	buf, err := io.ReadFile(fnamepath)
	if err != nil {
		chk.Panic("cannot read %q: %v", fnamepath, err)
	}

	spec, err := problem.ParseProblemSpec(buf)
	if err != nil {
		chk.Panic("%v", err)
	}

	rad := planar.NewThreeLink()
	checker := planar.NewCircleChecker(rad, defaultObstacles(), *linkRadius)

	var brad kinematics.BeliefRobotModel
	if spec.BasicInfo.BeliefSpace {
		brad = rad
	}

	newModel := func() solver.Model { return boxqp.New() }

	p, err := problem.Build(spec, rad, brad, checker, newModel())
	if err != nil {
		chk.Panic("%v", err)
	}

	opts := sqp.DefaultOptions()
	opts.Verbose = *verbose
	driver := sqp.NewDriver(p, newModel, opts)

	io.Pf("solving %d-step problem (%d vars, belief_space=%v)...\n", p.NSteps, len(p.AllVars), p.BeliefSpace)
	result := driver.Optimize(p.InitX)

	io.PfYel("\nstatus: %s (%d iterations, mu=%.4g)\n", result.Status, result.Iterations, result.MeritCoeff)
	for t := 0; t < p.NSteps; t++ {
		io.Pf("  t=%d: %v\n", t, p.JointRow[t].Values(result.X))
	}
	for name, v := range result.CostValues {
		io.Pf("cost %-20s %.6g\n", name, v)
	}
	for name, viol := range result.ConstraintViolations {
		io.Pf("cnt  %-20s %v\n", name, viol)
	}
}

// defaultObstacles is the demo scene: a single circular obstacle the arm
// must route around, reachable from any straight-line init between a
// stationary pose and a far-side endpoint.
func defaultObstacles() []planar.Circle {
	return []planar.Circle{{Center: [2]float64{0.2, 0.1}, Radius: 0.08}}
}
