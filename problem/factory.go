// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problem

import (
	"fmt"

	"github.com/alexlee-gk/trajopt/collision"
	"github.com/alexlee-gk/trajopt/costs"
	"github.com/alexlee-gk/trajopt/expr"
)

// CostFactory hatches one costs.Cost from a TermSpec's decoded params,
// given the shared BuildContext. context is a short label (e.g.
// "costs[2]") used only for error messages.
type CostFactory func(ctx *BuildContext, context, name string, params []byte) (costs.Cost, error)

// ConstraintFactory hatches one costs.Constraint the same way.
type ConstraintFactory func(ctx *BuildContext, context, name string, params []byte) (costs.Constraint, error)

var costFactories = map[string]CostFactory{}
var constraintFactories = map[string]ConstraintFactory{}

// RegisterCostFactory adds (or replaces) the factory for a cost type
// tag. Called from this package's init to seed the built-in types;
// exported so a caller can register an application-specific type
// without forking the package.
func RegisterCostFactory(typ string, f CostFactory) { costFactories[typ] = f }

// RegisterConstraintFactory is RegisterCostFactory's constraint analogue.
func RegisterConstraintFactory(typ string, f ConstraintFactory) { constraintFactories[typ] = f }

func init() {
	RegisterCostFactory("joint_pos", hatchJointPosCost)
	RegisterCostFactory("joint_vel", hatchJointVelCost)
	RegisterCostFactory("pose", hatchPoseCost)
	RegisterCostFactory("collision", hatchSingleCollisionCost)
	RegisterCostFactory("continuous_collision", hatchContinuousCollisionCost)
	RegisterCostFactory("control", hatchControlCost)
	RegisterCostFactory("covariance", hatchCovarianceCost)

	RegisterConstraintFactory("pose", hatchPoseConstraint)
	RegisterConstraintFactory("joint", hatchJointConstraint)
	RegisterConstraintFactory("cart_vel", hatchCartVelConstraint)
	RegisterConstraintFactory("control", hatchControlCnt)
}

type jointPosParams struct {
	Timestep int       `json:"timestep"`
	Target   []float64 `json:"target"`
	Coeffs   []float64 `json:"coeffs"`
}

func hatchJointPosCost(ctx *BuildContext, context, name string, raw []byte) (costs.Cost, error) {
	var p jointPosParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	row, err := ctx.jointRowAt(context, p.Timestep)
	if err != nil {
		return nil, err
	}
	if len(p.Target) != ctx.NDof || len(p.Coeffs) != ctx.NDof {
		return nil, configErrf(context, "target/coeffs must have length n_dof=%d", ctx.NDof)
	}
	return costs.NewJointPosCost(name, row, p.Target, p.Coeffs), nil
}

type jointVelParams struct {
	Coeffs []float64 `json:"coeffs"`
}

func hatchJointVelCost(ctx *BuildContext, context, name string, raw []byte) (costs.Cost, error) {
	var p jointVelParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	if len(p.Coeffs) != ctx.NDof {
		return nil, configErrf(context, "coeffs must have length n_dof=%d", ctx.NDof)
	}
	return costs.NewJointVelCost(name, ctx.JointRow, p.Coeffs), nil
}

type poseParams struct {
	Timestep int            `json:"timestep"`
	Link     string         `json:"link"`
	Pos      [3]float64     `json:"pos"`
	Rot      *[3][3]float64 `json:"rot"`
	Coeff    float64        `json:"coeff"`
}

func identity3() [3][3]float64 {
	return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func hatchPoseCost(ctx *BuildContext, context, name string, raw []byte) (costs.Cost, error) {
	var p poseParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	row, err := ctx.jointRowAt(context, p.Timestep)
	if err != nil {
		return nil, err
	}
	if _, err := ctx.requireLink(p.Link); err != nil {
		return nil, configErrf(context, "%v", err)
	}
	rot := identity3()
	if p.Rot != nil {
		rot = *p.Rot
	}
	coeff := p.Coeff
	if coeff == 0 {
		coeff = 1
	}
	return costs.NewCartPoseCost(name, ctx.Rad, p.Link, row, rot, p.Pos, coeff), nil
}

func hatchPoseConstraint(ctx *BuildContext, context, name string, raw []byte) (costs.Constraint, error) {
	var p poseParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	row, err := ctx.jointRowAt(context, p.Timestep)
	if err != nil {
		return nil, err
	}
	if _, err := ctx.requireLink(p.Link); err != nil {
		return nil, configErrf(context, "%v", err)
	}
	rot := identity3()
	if p.Rot != nil {
		rot = *p.Rot
	}
	return costs.NewCartPoseConstraint(name, ctx.Rad, p.Link, row, rot, p.Pos), nil
}

type collisionParams struct {
	DistPen float64 `json:"dist_pen"`
	Coeff   float64 `json:"coeff"`
}

func (p *collisionParams) fillDefaults() {
	if p.DistPen == 0 {
		p.DistPen = 0.05
	}
	if p.Coeff == 0 {
		p.Coeff = 20
	}
}

func hatchSingleCollisionCost(ctx *BuildContext, context, name string, raw []byte) (costs.Cost, error) {
	var p collisionParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	p.fillDefaults()
	ctx.Checker.SetContactDistance(p.DistPen + 0.04)

	parts := make([]costs.Cost, len(ctx.JointRow))
	for t, row := range ctx.JointRow {
		eval := collision.NewSingleTimestepEvaluator(ctx.Rad, ctx.Checker, row)
		parts[t] = costs.NewCollisionCost(fmt.Sprintf("%s_%d", name, t), eval, p.DistPen, p.Coeff)
	}
	return costs.NewSumCost(name, parts), nil
}

func hatchContinuousCollisionCost(ctx *BuildContext, context, name string, raw []byte) (costs.Cost, error) {
	var p collisionParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	p.fillDefaults()
	ctx.Checker.SetContactDistance(p.DistPen + 0.04)

	if ctx.Basic.BeliefSpace {
		parts := make([]costs.Cost, len(ctx.ThetaRow))
		for t, row := range ctx.ThetaRow {
			eval := collision.NewSigmaPtsEvaluator(ctx.BRad, ctx.Checker, row)
			parts[t] = costs.NewCollisionCost(fmt.Sprintf("%s_%d", name, t), eval, p.DistPen, p.Coeff)
		}
		return costs.NewSumCost(name, parts), nil
	}
	var parts []costs.Cost
	for t := 0; t+1 < len(ctx.JointRow); t++ {
		eval := collision.NewCastEvaluator(ctx.Rad, ctx.Checker, ctx.JointRow[t], ctx.JointRow[t+1])
		parts = append(parts, costs.NewCollisionCost(fmt.Sprintf("%s_%d", name, t), eval, p.DistPen, p.Coeff))
	}
	return costs.NewSumCost(name, parts), nil
}

type controlParams struct {
	Coeffs []float64 `json:"coeffs"`
	Lower  []float64 `json:"lower"`
	Upper  []float64 `json:"upper"`
}

func hatchControlCost(ctx *BuildContext, context, name string, raw []byte) (costs.Cost, error) {
	if !ctx.Basic.BeliefSpace {
		return costs.NewControlCost(name, nil, nil), nil
	}
	var p controlParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	if len(p.Coeffs) != ctx.NDof {
		return nil, configErrf(context, "coeffs must have length n_dof=%d", ctx.NDof)
	}
	return costs.NewControlCost(name, ctx.ControlRow, p.Coeffs), nil
}

func hatchControlCnt(ctx *BuildContext, context, name string, raw []byte) (costs.Constraint, error) {
	if !ctx.Basic.BeliefSpace {
		return costs.NewControlCnt(name, nil, nil, nil), nil
	}
	var p controlParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	if len(p.Lower) != ctx.NDof || len(p.Upper) != ctx.NDof {
		return nil, configErrf(context, "lower/upper must have length n_dof=%d", ctx.NDof)
	}
	return costs.NewControlCnt(name, ctx.ControlRow, p.Lower, p.Upper), nil
}

type covarianceParams struct {
	Timestep *int      `json:"timestep"`
	Coeffs   []float64 `json:"coeffs"`
}

func hatchCovarianceCost(ctx *BuildContext, context, name string, raw []byte) (costs.Cost, error) {
	if !ctx.Basic.BeliefSpace {
		return costs.NewCovarianceCost(name, nil, 0, nil), nil
	}
	var p covarianceParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	if len(p.Coeffs) != ctx.NDof {
		return nil, configErrf(context, "coeffs must have length n_dof=%d", ctx.NDof)
	}
	t := len(ctx.ThetaRow) - 1 // default: terminal covariance
	if p.Timestep != nil {
		t = *p.Timestep
	}
	if t < 0 || t >= len(ctx.ThetaRow) {
		return nil, configErrf(context, "timestep %d out of range [0,%d)", t, len(ctx.ThetaRow))
	}
	return costs.NewCovarianceCost(name, ctx.ThetaRow[t], ctx.NDof, p.Coeffs), nil
}

type jointCntParams struct {
	Timestep int       `json:"timestep"`
	Lower    []float64 `json:"lower"`
	Upper    []float64 `json:"upper"`
}

func hatchJointConstraint(ctx *BuildContext, context, name string, raw []byte) (costs.Constraint, error) {
	var p jointCntParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	row, err := ctx.jointRowAt(context, p.Timestep)
	if err != nil {
		return nil, err
	}
	if len(p.Lower) != ctx.NDof || len(p.Upper) != ctx.NDof {
		return nil, configErrf(context, "lower/upper must have length n_dof=%d", ctx.NDof)
	}
	return costs.NewControlCnt(name, []expr.VarVector{row}, p.Lower, p.Upper), nil
}

type cartVelParams struct {
	Link string  `json:"link"`
	DMax float64 `json:"d_max"`
}

func hatchCartVelConstraint(ctx *BuildContext, context, name string, raw []byte) (costs.Constraint, error) {
	var p cartVelParams
	if err := decodeParams(context, raw, &p); err != nil {
		return nil, err
	}
	if _, err := ctx.requireLink(p.Link); err != nil {
		return nil, configErrf(context, "%v", err)
	}
	if len(ctx.JointRow) < 2 {
		return nil, configErrf(context, "cart_vel requires at least 2 timesteps")
	}
	var parts []costs.Constraint
	for t := 0; t+1 < len(ctx.JointRow); t++ {
		parts = append(parts, costs.NewCartVelConstraint(fmt.Sprintf("%s_%d", name, t), ctx.Rad, p.Link, ctx.JointRow[t], ctx.JointRow[t+1], p.DMax))
	}
	return costs.NewSumConstraint(name, parts), nil
}
