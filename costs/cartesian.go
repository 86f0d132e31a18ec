// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package costs

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"

	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/kinematics"
	"github.com/alexlee-gk/trajopt/numeric"
	"github.com/alexlee-gk/trajopt/solver"
)

// rotLog maps a rotation matrix to its so(3) logarithm (axis*angle),
// the small-angle-safe way: for angle near zero it falls back to the
// first-order skew-symmetric extraction rather than dividing by sin(0).
func rotLog(R [3][3]float64) [3]float64 {
	cosTheta := (R[0][0] + R[1][1] + R[2][2] - 1) / 2
	cosTheta = utl.Max(-1, utl.Min(1, cosTheta))
	theta := math.Acos(cosTheta)
	skew := [3]float64{R[2][1] - R[1][2], R[0][2] - R[2][0], R[1][0] - R[0][1]}
	if theta < 1e-8 {
		return [3]float64{skew[0] / 2, skew[1] / 2, skew[2] / 2}
	}
	s := theta / (2 * math.Sin(theta))
	return [3]float64{s * skew[0], s * skew[1], s * skew[2]}
}

func matTranspose3(R [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[j][i] = R[i][j]
		}
	}
	return out
}

func matMul3(A, B [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += A[i][k] * B[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// poseErr is [rot_log(R^T * Rtarget) ; targetPos - p], the 6-vector the
// original optimizer's pose_err built; it is zero exactly when the link
// is at the target pose.
func poseErr(R [3][3]float64, p [3]float64, targetR [3][3]float64, targetP [3]float64) []float64 {
	rel := matMul3(matTranspose3(R), targetR)
	rot := rotLog(rel)
	return []float64{rot[0], rot[1], rot[2], targetP[0] - p[0], targetP[1] - p[1], targetP[2] - p[2]}
}

// fkPoseErr evaluates poseErr at dofvals by mutating rad's shared DOF
// state under a Saver, per kinematics.RobotModel's bracketing contract.
func fkPoseErr(rad kinematics.RobotModel, link kinematics.Link, dofvals []float64, targetR [3][3]float64, targetP [3]float64) []float64 {
	saver := rad.Save()
	defer saver.Close()
	rad.SetDOFValues(dofvals)
	R, p := link.Transform()
	return poseErr(R, p, targetR, targetP)
}

// CartPoseCost penalizes coeff*||pose_err(FK(theta), target)||^2 at one
// timestep. Value calls forward kinematics directly; Convex linearizes
// pose_err by numerical Jacobian (the rotation log has no closed-form
// derivative exposed by kinematics.RobotModel, so it is treated as a
// black box along with the translation part, same as belief dynamics).
type CartPoseCost struct {
	name     string
	rad      kinematics.RobotModel
	linkName string
	vars     expr.VarVector
	targetR  [3][3]float64
	targetP  [3]float64
	coeff    float64
}

// NewCartPoseCost builds the pose cost for the named link at the
// timestep whose joint variables are vars.
func NewCartPoseCost(name string, rad kinematics.RobotModel, linkName string, vars expr.VarVector, targetR [3][3]float64, targetP [3]float64, coeff float64) *CartPoseCost {
	return &CartPoseCost{name: name, rad: rad, linkName: linkName, vars: vars, targetR: targetR, targetP: targetP, coeff: coeff}
}

func (c *CartPoseCost) link() kinematics.Link {
	l, ok := c.rad.GetLink(c.linkName)
	if !ok {
		chk.Panic("CartPoseCost %q: unknown link %q", c.name, c.linkName)
	}
	return l
}

func (c *CartPoseCost) Value(x []float64) float64 {
	dofvals := c.vars.Values(x)
	e := fkPoseErr(c.rad, c.link(), dofvals, c.targetR, c.targetP)
	var s float64
	for _, v := range e {
		s += v * v
	}
	return c.coeff * s
}

func (c *CartPoseCost) Name() string { return c.name }

func (c *CartPoseCost) Convex(x []float64, iter int, model solver.Model, obj *solver.ConvexObjective) {
	rows, jac, dofvals := c.linearize(x)
	for k := range rows {
		row := affineRow(jac[k], c.vars, dofvals, rows[k])
		obj.AddQuadExpr(squareAff(row, c.coeff))
	}
}

// squareAff returns coeff*row^2 as a Quad (row is affine: const + sum
// coeffs*vars), expanded into its constant, linear and quadratic terms.
func squareAff(row expr.Aff, coeff float64) expr.Quad {
	q := expr.Quad{Affine: expr.Aff{Const: coeff * row.Const * row.Const}}
	for i, v := range row.Vars {
		q.Affine.Coeffs = append(q.Affine.Coeffs, 2*coeff*row.Const*row.Coeffs[i])
		q.Affine.Vars = append(q.Affine.Vars, v)
	}
	for i := range row.Vars {
		for j := range row.Vars {
			if j < i {
				continue
			}
			c := coeff * row.Coeffs[i] * row.Coeffs[j]
			if i == j {
				q.Coeffs = append(q.Coeffs, c)
			} else {
				q.Coeffs = append(q.Coeffs, 2*c)
			}
			q.Vars1 = append(q.Vars1, row.Vars[i])
			q.Vars2 = append(q.Vars2, row.Vars[j])
		}
	}
	return q
}

// linearize returns pose_err's value (6-vector) and its numerical
// Jacobian w.r.t. this timestep's joint variables, evaluated at x.
func (c *CartPoseCost) linearize(x []float64) (val []float64, jac la.Matrix, dofvals []float64) {
	dofvals = c.vars.Values(x)
	link := c.link()
	val = fkPoseErr(c.rad, link, dofvals, c.targetR, c.targetP)
	jac = numeric.CalcNumJac(func(dv la.Vector) la.Vector {
		return fkPoseErr(c.rad, link, dv, c.targetR, c.targetP)
	}, dofvals, 0)
	return
}

// affineRow builds the affine expression val0 + jacRow.(vars - dofvals)
// for one output row of a black-box-linearized function.
func affineRow(jacRow []float64, vars expr.VarVector, dofvals []float64, val0 float64) expr.Aff {
	row := expr.NewAffConst(val0)
	expr.ExprInc(&row, expr.VarDot(jacRow, vars))
	expr.ExprDec(&row, dotSlicesCosts(jacRow, dofvals))
	return expr.CleanupAff(row)
}

func dotSlicesCosts(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// CartPoseConstraint is the equality pose_err(FK(theta), target) = 0,
// linearized the same way as CartPoseCost.
type CartPoseConstraint struct {
	name     string
	rad      kinematics.RobotModel
	linkName string
	vars     expr.VarVector
	targetR  [3][3]float64
	targetP  [3]float64
}

// NewCartPoseConstraint builds the equality pose constraint for the
// named link at the timestep whose joint variables are vars.
func NewCartPoseConstraint(name string, rad kinematics.RobotModel, linkName string, vars expr.VarVector, targetR [3][3]float64, targetP [3]float64) *CartPoseConstraint {
	return &CartPoseConstraint{name: name, rad: rad, linkName: linkName, vars: vars, targetR: targetR, targetP: targetP}
}

func (c *CartPoseConstraint) link() kinematics.Link {
	l, ok := c.rad.GetLink(c.linkName)
	if !ok {
		chk.Panic("CartPoseConstraint %q: unknown link %q", c.name, c.linkName)
	}
	return l
}

func (c *CartPoseConstraint) Name() string        { return c.name }
func (c *CartPoseConstraint) Type() ConstraintType { return EQ }

func (c *CartPoseConstraint) Value(x []float64) []float64 {
	dofvals := c.vars.Values(x)
	return fkPoseErr(c.rad, c.link(), dofvals, c.targetR, c.targetP)
}

func (c *CartPoseConstraint) Convex(x []float64, iter int, cnts *solver.ConvexConstraints) {
	dofvals := c.vars.Values(x)
	link := c.link()
	val := fkPoseErr(c.rad, link, dofvals, c.targetR, c.targetP)
	jac := numeric.CalcNumJac(func(dv la.Vector) la.Vector {
		return fkPoseErr(c.rad, link, dv, c.targetR, c.targetP)
	}, dofvals, 0)
	for k := range val {
		cnts.AddEqCnt(affineRow(jac[k], c.vars, dofvals, val[k]))
	}
}

// CartVelConstraint is the inequality ||p(theta_{t+1}) - p(theta_t)|| <= dMax,
// linearized by numerical Jacobian of the two-timestep position difference.
type CartVelConstraint struct {
	name         string
	rad          kinematics.RobotModel
	linkName     string
	vars0, vars1 expr.VarVector
	dMax         float64
}

// NewCartVelConstraint builds the Cartesian speed-limit constraint
// between two adjacent timesteps' joint variables.
func NewCartVelConstraint(name string, rad kinematics.RobotModel, linkName string, vars0, vars1 expr.VarVector, dMax float64) *CartVelConstraint {
	return &CartVelConstraint{name: name, rad: rad, linkName: linkName, vars0: vars0, vars1: vars1, dMax: dMax}
}

func (c *CartVelConstraint) link() kinematics.Link {
	l, ok := c.rad.GetLink(c.linkName)
	if !ok {
		chk.Panic("CartVelConstraint %q: unknown link %q", c.name, c.linkName)
	}
	return l
}

func (c *CartVelConstraint) position(dofvals []float64) [3]float64 {
	saver := c.rad.Save()
	defer saver.Close()
	c.rad.SetDOFValues(dofvals)
	_, p := c.link().Transform()
	return p
}

func (c *CartVelConstraint) Name() string        { return c.name }
func (c *CartVelConstraint) Type() ConstraintType { return INEQ }

func (c *CartVelConstraint) Value(x []float64) []float64 {
	p0 := c.position(c.vars0.Values(x))
	p1 := c.position(c.vars1.Values(x))
	d := dist3(p0, p1)
	return []float64{d - c.dMax}
}

func (c *CartVelConstraint) Convex(x []float64, iter int, cnts *solver.ConvexConstraints) {
	dof0 := c.vars0.Values(x)
	dof1 := c.vars1.Values(x)
	n0 := len(dof0)
	joined := append(append([]float64(nil), dof0...), dof1...)

	distFn := func(j la.Vector) la.Vector {
		p0 := c.position(j[:n0])
		p1 := c.position(j[n0:])
		return la.Vector{dist3(p0, p1)}
	}
	val := distFn(joined)[0]
	jac := numeric.CalcNumJac(distFn, joined, 0)[0]

	row := expr.NewAffConst(val - c.dMax)
	expr.ExprInc(&row, expr.VarDot(jac[:n0], c.vars0))
	expr.ExprInc(&row, expr.VarDot(jac[n0:], c.vars1))
	expr.ExprDec(&row, dotSlicesCosts(jac, joined))
	cnts.AddIneqCnt(expr.CleanupAff(row))
}

func dist3(a, b [3]float64) float64 {
	d := []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
	return math.Sqrt(utl.Dot3d(d, d))
}
