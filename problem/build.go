// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problem

import (
	"fmt"
	"math"

	"github.com/cpmech/gosl/la"

	"github.com/alexlee-gk/trajopt/belief"
	"github.com/alexlee-gk/trajopt/collision"
	"github.com/alexlee-gk/trajopt/costs"
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/kinematics"
	"github.com/alexlee-gk/trajopt/solver"
)

// Problem is a fully built, solvable trajectory-optimization problem: a
// variable layout with its initial primal, and the costs/constraints the
// SQP driver will linearize each outer iteration. It plays the role of
// TrajOptProb in the original optimizer's problem_description.cpp.
type Problem struct {
	Model       solver.Model
	NSteps      int
	NDof        int
	BeliefSpace bool

	AllVars  expr.VarVector
	JointRow []expr.VarVector
	ThetaRow []expr.VarVector // nil outside belief mode
	CtrlRow  []expr.VarVector // nil outside belief mode

	// Lower/Upper are the global (non-trust-region) box bounds for every
	// variable in AllVars, same indexing as AllVars[i].Index. The SQP
	// driver intersects these with the trust-region box each outer
	// iteration when it rebuilds the convex subproblem.
	Lower, Upper []float64

	Costs       []costs.Cost
	Constraints []costs.Constraint

	InitX []float64
}

// Build constructs a Problem from a decoded ProblemSpec and the robot /
// collision backends, the Go analogue of ConstructProblem in the
// original optimizer's problem_description.cpp: it lays out variables,
// seeds the initial trajectory from InitInfo, pins start-fixed and
// dofs-fixed coordinates, hatches every declared cost/constraint through
// the registered factories, and -- in belief mode -- simulates the EKF
// forward over the straight-line joint init to seed a realistic
// covariance/control sequence and attaches the belief-dynamics equality
// between every consecutive pair of rows.
func Build(spec *ProblemSpec, rad kinematics.RobotModel, brad kinematics.BeliefRobotModel, checker collision.Checker, model solver.Model) (*Problem, error) {
	bi := spec.BasicInfo
	if bi.NSteps <= 0 {
		return nil, configErrf("basic_info", "n_steps must be positive, got %d", bi.NSteps)
	}
	if bi.BeliefSpace && brad == nil {
		return nil, configErrf("basic_info", "belief_space requires a belief-capable robot model")
	}

	nDof := rad.DOF()
	lower, upper := rad.DOFLimits()
	if len(lower) != nDof || len(upper) != nDof {
		return nil, configErrf("basic_info", "robot DOF limits length mismatch")
	}

	p := &Problem{Model: model, NSteps: bi.NSteps, NDof: nDof, BeliefSpace: bi.BeliefSpace}
	p.JointRow = make([]expr.VarVector, bi.NSteps)

	nTheta := 0
	if bi.BeliefSpace {
		nTheta = brad.NTheta()
		p.ThetaRow = make([]expr.VarVector, bi.NSteps)
		p.CtrlRow = make([]expr.VarVector, bi.NSteps)
	}

	addVar := func(name string, lo, hi float64) expr.Var {
		v := model.NewVar(name, lo, hi)
		p.Lower = append(p.Lower, lo)
		p.Upper = append(p.Upper, hi)
		return v
	}

	for t := 0; t < bi.NSteps; t++ {
		row := make(expr.VarVector, nDof)
		for j := 0; j < nDof; j++ {
			row[j] = addVar(fmt.Sprintf("j_%d_%d", t, j), lower[j], upper[j])
		}
		p.JointRow[t] = row
		p.AllVars = append(p.AllVars, row...)

		if bi.BeliefSpace {
			covVars := make(expr.VarVector, nTheta-nDof)
			idx := 0
			for jj := 0; jj < nDof; jj++ {
				for ii := jj; ii < nDof; ii++ {
					covVars[idx] = addVar(fmt.Sprintf("cov_%d_%d_%d", t, ii, jj), -math.Inf(1), math.Inf(1))
					idx++
				}
			}
			theta := append(append(expr.VarVector(nil), row...), covVars...)
			p.ThetaRow[t] = theta
			p.AllVars = append(p.AllVars, covVars...)

			ctrl := make(expr.VarVector, nDof)
			for j := 0; j < nDof; j++ {
				ctrl[j] = addVar(fmt.Sprintf("u_%d_%d", t, j), -math.Inf(1), math.Inf(1))
			}
			p.CtrlRow[t] = ctrl
			p.AllVars = append(p.AllVars, ctrl...)
		}
	}

	curDofvals := rad.DOFValues()

	initJoint, err := resolveInitTraj(spec.InitInfo, bi.NSteps, nDof, curDofvals)
	if err != nil {
		return nil, err
	}

	if bi.StartFixed {
		if !allClose(curDofvals, initJoint[0], 1e-4) {
			return nil, configErrf("init_info", "robot dof values don't match initialization; don't know what to use for the start state")
		}
		for j := 0; j < nDof; j++ {
			p.Model.AddEqRow(expr.CleanupAff(expr.AffSub(expr.NewAffVar(p.JointRow[0][j]), expr.NewAffConst(curDofvals[j]))))
		}
	}

	for _, dofInd := range bi.DofsFixed {
		if dofInd < 0 || dofInd >= nDof {
			return nil, configErrf("basic_info", "dofs_fixed entry %d out of range [0,%d)", dofInd, nDof)
		}
		for t := 1; t < bi.NSteps; t++ {
			p.Model.AddEqRow(expr.CleanupAff(expr.AffSub(
				expr.NewAffVar(p.JointRow[t][dofInd]), expr.NewAffVar(p.JointRow[0][dofInd]))))
		}
	}

	ctx := &BuildContext{
		Basic: bi, Rad: rad, BRad: brad, Checker: checker,
		NDof: nDof, JointRow: p.JointRow, ThetaRow: p.ThetaRow, ControlRow: p.CtrlRow,
		AllVars: p.AllVars,
	}

	for i, cs := range spec.Costs {
		factory, ok := costFactories[cs.Type]
		if !ok {
			return nil, configErrf(fmt.Sprintf("costs[%d]", i), "unknown cost type %q", cs.Type)
		}
		name := cs.Name
		if name == "" {
			name = cs.Type
		}
		cost, err := factory(ctx, fmt.Sprintf("costs[%d]", i), name, cs.Params)
		if err != nil {
			return nil, err
		}
		p.Costs = append(p.Costs, cost)
	}

	for i, cs := range spec.Constraints {
		factory, ok := constraintFactories[cs.Type]
		if !ok {
			return nil, configErrf(fmt.Sprintf("constraints[%d]", i), "unknown constraint type %q", cs.Type)
		}
		name := cs.Name
		if name == "" {
			name = cs.Type
		}
		cnt, err := factory(ctx, fmt.Sprintf("constraints[%d]", i), name, cs.Params)
		if err != nil {
			return nil, err
		}
		p.Constraints = append(p.Constraints, cnt)
	}

	initX := make([]float64, model.NumVars())
	for t := 0; t < bi.NSteps; t++ {
		for j := 0; j < nDof; j++ {
			initX[p.JointRow[t][j].Index] = initJoint[t][j]
		}
	}

	if bi.BeliefSpace {
		if err := seedBeliefInit(ctx, brad, bi, nDof, nTheta, initJoint, initX, p); err != nil {
			return nil, err
		}
	}

	p.InitX = initX
	return p, nil
}

// resolveInitTraj turns spec's InitInfo into an (n_steps x n_dof) joint
// trajectory, the Go analogue of InitInfo::fromJson.
func resolveInitTraj(info InitInfo, nSteps, nDof int, curDofvals []float64) ([][]float64, error) {
	switch info.Type {
	case "", "stationary":
		out := make([][]float64, nSteps)
		for t := range out {
			out[t] = append([]float64(nil), curDofvals...)
		}
		return out, nil
	case "given_traj":
		if len(info.Data) != nSteps {
			return nil, configErrf("init_info", "given_traj has %d rows, expected n_steps=%d", len(info.Data), nSteps)
		}
		out := make([][]float64, nSteps)
		for t, row := range info.Data {
			if len(row) != nDof {
				return nil, configErrf("init_info", "given_traj row %d has length %d, expected n_dof=%d", t, len(row), nDof)
			}
			out[t] = append([]float64(nil), row...)
		}
		return out, nil
	case "straight_line":
		if len(info.Endpoint) != nDof {
			return nil, configErrf("init_info", "endpoint has length %d, expected n_dof=%d", len(info.Endpoint), nDof)
		}
		out := make([][]float64, nSteps)
		for t := 0; t < nSteps; t++ {
			row := make([]float64, nDof)
			for j := 0; j < nDof; j++ {
				frac := 0.0
				if nSteps > 1 {
					frac = float64(t) / float64(nSteps-1)
				}
				row[j] = curDofvals[j] + frac*(info.Endpoint[j]-curDofvals[j])
			}
			out[t] = row
		}
		return out, nil
	default:
		return nil, configErrf("init_info", "unknown init type %q", info.Type)
	}
}

// seedBeliefInit folds an EKF simulation over the straight-line joint
// init into the initial primal's covariance/control coordinates, and
// attaches the belief-dynamics equality between every consecutive pair
// of rows -- the Go analogue of ConstructProblem's belief-space branch.
// rt_Sigma0 is identity*0.1 for n_dof==3 and identity*sqrt(5) otherwise,
// verbatim from the original optimizer.
func seedBeliefInit(ctx *BuildContext, brad kinematics.BeliefRobotModel, bi BasicInfo, nDof, nTheta int, initJoint [][]float64, initX []float64, p *Problem) error {
	scale := math.Sqrt(5)
	if nDof == 3 {
		scale = 0.1
	}
	sqrtSigma0 := make([][]float64, nDof)
	for i := range sqrtSigma0 {
		sqrtSigma0[i] = make([]float64, nDof)
		sqrtSigma0[i][i] = scale
	}

	model := ctx.BeliefModel()

	for t := 0; t+1 < bi.NSteps; t++ {
		theta0 := brad.ComposeBelief(initJoint[t], sqrtSigma0)
		for i, v := range p.ThetaRow[t] {
			initX[v.Index] = theta0[i]
		}

		u0 := make([]float64, nDof)
		for j := 0; j < nDof; j++ {
			u0[j] = initJoint[t+1][j] - initJoint[t][j]
		}
		for i, v := range p.CtrlRow[t] {
			initX[v.Index] = u0[i]
		}

		xNext, sqrtSigmaNext, _ := beliefStep(model, initJoint[t], u0, sqrtSigma0)
		_ = xNext // the mean is re-seeded from initJoint at t+1, per the original's init_data assignment
		sqrtSigma0 = sqrtSigmaNext

		if t+2 == bi.NSteps {
			thetaLast := brad.ComposeBelief(initJoint[t+1], sqrtSigma0)
			for i, v := range p.ThetaRow[t+1] {
				initX[v.Index] = thetaLast[i]
			}
		}

		p.Constraints = append(p.Constraints, costs.NewBeliefDynamicsConstraint(
			fmt.Sprintf("belief_dynamics_%d", t), model, nDof, p.ThetaRow[t], p.CtrlRow[t], p.ThetaRow[t+1]))
	}

	if bi.StartFixed {
		for j := nDof; j < nTheta; j++ {
			v := p.ThetaRow[0][j]
			p.Model.AddEqRow(expr.CleanupAff(expr.AffSub(expr.NewAffVar(v), expr.NewAffConst(initX[v.Index]))))
		}
	}
	return nil
}

// beliefStep adapts belief.Step's la.Matrix parameter/return to the
// plain [][]float64 this package otherwise uses for sqrt-covariance
// blocks.
func beliefStep(m belief.Model, x, u []float64, sqrtSigma [][]float64) (xNext []float64, sqrtSigmaNext [][]float64, ok bool) {
	rows := make(la.Matrix, len(sqrtSigma))
	for i, row := range sqrtSigma {
		rows[i] = append([]float64(nil), row...)
	}
	var next la.Matrix
	xNext, next, ok = belief.Step(m, x, u, rows)
	sqrtSigmaNext = make([][]float64, len(next))
	for i, row := range next {
		sqrtSigmaNext[i] = append([]float64(nil), row...)
	}
	return
}

func allClose(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
