// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problem

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/alexlee-gk/trajopt/robotmodel/planar"
	"github.com/alexlee-gk/trajopt/solver/boxqp"
)

func straightLineSpec(nSteps int, endpoint []float64) *ProblemSpec {
	return &ProblemSpec{
		BasicInfo: BasicInfo{NSteps: nSteps, StartFixed: true},
		InitInfo:  InitInfo{Type: "straight_line", Endpoint: endpoint},
	}
}

func TestBuildLaysOutJointRowsAndInitX(tst *testing.T) {
	chk.PrintTitle("BuildLaysOutJointRowsAndInitX")
	rad := planar.NewThreeLink()
	rad.SetDOFValues([]float64{0, 0, 0})
	checker := planar.NewCircleChecker(rad, nil, 0.02)
	spec := straightLineSpec(5, []float64{1, -1, 0.5})

	model := boxqp.New()
	p, err := Build(spec, rad, nil, checker, model)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if len(p.JointRow) != 5 {
		tst.Fatalf("got %d joint rows, want 5", len(p.JointRow))
	}
	if len(p.AllVars) != 5*3 {
		tst.Fatalf("got %d vars, want %d", len(p.AllVars), 5*3)
	}
	chk.Array(tst, "row 0 init", 1e-12, []float64{
		p.InitX[p.JointRow[0][0].Index], p.InitX[p.JointRow[0][1].Index], p.InitX[p.JointRow[0][2].Index],
	}, []float64{0, 0, 0})
	chk.Array(tst, "row 4 init", 1e-12, []float64{
		p.InitX[p.JointRow[4][0].Index], p.InitX[p.JointRow[4][1].Index], p.InitX[p.JointRow[4][2].Index],
	}, []float64{1, -1, 0.5})
	if len(p.Lower) != len(p.AllVars) || len(p.Upper) != len(p.AllVars) {
		tst.Fatalf("Lower/Upper not sized to AllVars: %d/%d vs %d", len(p.Lower), len(p.Upper), len(p.AllVars))
	}
}

func TestBuildRejectsStartFixedMismatch(tst *testing.T) {
	chk.PrintTitle("BuildRejectsStartFixedMismatch")
	rad := planar.NewThreeLink()
	rad.SetDOFValues([]float64{0.3, 0, 0}) // doesn't match row 0 of the given_traj init
	checker := planar.NewCircleChecker(rad, nil, 0.02)
	spec := &ProblemSpec{
		BasicInfo: BasicInfo{NSteps: 3, StartFixed: true},
		InitInfo:  InitInfo{Type: "given_traj", Data: [][]float64{{0, 0, 0}, {0.1, 0, 0}, {0.2, 0, 0}}},
	}
	_, err := Build(spec, rad, nil, checker, boxqp.New())
	if err == nil {
		tst.Fatal("expected a ConfigError from the start_fixed/init_info mismatch")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		tst.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
}

func TestBuildPinsDofsFixedAcrossTimesteps(tst *testing.T) {
	chk.PrintTitle("BuildPinsDofsFixedAcrossTimesteps")
	rad := planar.NewThreeLink()
	rad.SetDOFValues([]float64{0, 0, 0})
	checker := planar.NewCircleChecker(rad, nil, 0.02)
	spec := &ProblemSpec{
		BasicInfo: BasicInfo{NSteps: 4, StartFixed: true, DofsFixed: []int{2}},
		InitInfo:  InitInfo{Type: "straight_line", Endpoint: []float64{0.4, -0.4, 0}},
	}
	model := boxqp.New()
	p, err := Build(spec, rad, nil, checker, model)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if err := model.Solve(); err != nil {
		tst.Fatalf("solve failed: %v", err)
	}
	base := model.Value(p.JointRow[0][2])
	for t := 1; t < 4; t++ {
		got := model.Value(p.JointRow[t][2])
		chk.Scalar(tst, "dof 2 pinned", 1e-6, got, base)
	}
}

func TestBuildBeliefSpaceSeedsCovarianceAndControl(tst *testing.T) {
	chk.PrintTitle("BuildBeliefSpaceSeedsCovarianceAndControl")
	rad := planar.NewThreeLink()
	rad.SetDOFValues([]float64{0, 0, 0})
	checker := planar.NewCircleChecker(rad, nil, 0.02)
	spec := &ProblemSpec{
		BasicInfo: BasicInfo{NSteps: 4, StartFixed: true, BeliefSpace: true},
		InitInfo:  InitInfo{Type: "straight_line", Endpoint: []float64{0.4, -0.4, 0.1}},
	}
	model := boxqp.New()
	p, err := Build(spec, rad, rad, checker, model)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if len(p.ThetaRow) != 4 || len(p.CtrlRow) != 4 {
		tst.Fatalf("expected belief rows for every timestep, got theta=%d ctrl=%d", len(p.ThetaRow), len(p.CtrlRow))
	}
	if len(p.Constraints) == 0 {
		tst.Fatal("expected belief-dynamics equality constraints to be attached")
	}
	// control row 0 should be seeded with the straight-line step, not zero.
	u0 := []float64{
		p.InitX[p.CtrlRow[0][0].Index], p.InitX[p.CtrlRow[0][1].Index], p.InitX[p.CtrlRow[0][2].Index],
	}
	var norm float64
	for _, v := range u0 {
		norm += v * v
	}
	if norm == 0 {
		tst.Fatal("expected a nonzero seeded control from the straight-line init")
	}
}
