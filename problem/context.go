// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problem

import (
	"fmt"

	"github.com/alexlee-gk/trajopt/belief"
	"github.com/alexlee-gk/trajopt/collision"
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/kinematics"
)

// BuildContext is the explicit argument every cost/constraint factory
// receives in place of the original optimizer's process-wide "current
// PCI" pointer: everything a factory needs to resolve link names, DOF
// indices and variable rows into concrete expr.Var handles.
type BuildContext struct {
	Basic   BasicInfo
	Rad     kinematics.RobotModel     // always set
	BRad    kinematics.BeliefRobotModel // set only when Basic.BeliefSpace
	Checker collision.Checker

	NDof int

	// JointRow[t] is timestep t's n_dof joint variables.
	JointRow []expr.VarVector
	// ThetaRow[t] is timestep t's full belief row (mean + sqrt-covariance),
	// nil outside belief mode.
	ThetaRow []expr.VarVector
	// ControlRow[t] is timestep t's control variables (length n_dof),
	// nil outside belief mode. Every timestep, the last included, has a
	// control row; the last one is not tied to any belief-dynamics
	// constraint.
	ControlRow []expr.VarVector

	// AllVars is every decision variable in row-major, variable-array
	// order, for building the initial primal.
	AllVars expr.VarVector
}

// BeliefModel adapts ctx.BRad to the belief.Model contract the EKF step
// and BeliefDynamicsConstraint need.
func (ctx *BuildContext) BeliefModel() belief.Model { return beliefModelAdapter{ctx.BRad} }

type beliefModelAdapter struct{ rad kinematics.BeliefRobotModel }

func (a beliefModelAdapter) Dynamics(x, u, q []float64) []float64 { return a.rad.Dynamics(x, u, q) }
func (a beliefModelAdapter) Observe(x, r []float64) []float64     { return a.rad.Observe(x, r) }
func (a beliefModelAdapter) QDim() int                            { return a.rad.QDim() }
func (a beliefModelAdapter) RDim() int                            { return a.rad.RDim() }

// requireLink looks up a link by name, returning an error if the robot
// model doesn't have it.
func (ctx *BuildContext) requireLink(name string) (kinematics.Link, error) {
	l, ok := ctx.Rad.GetLink(name)
	if !ok {
		return nil, fmt.Errorf("unknown link %q", name)
	}
	return l, nil
}

// jointRowAt resolves a JSON-declared timestep index into that row's
// joint variables, reporting a ConfigError (tagged with context) if it
// is out of range.
func (ctx *BuildContext) jointRowAt(context string, timestep int) (expr.VarVector, error) {
	if timestep < 0 || timestep >= len(ctx.JointRow) {
		return nil, configErrf(context, "timestep %d out of range [0,%d)", timestep, len(ctx.JointRow))
	}
	return ctx.JointRow[timestep], nil
}
