// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package costs

import (
	"github.com/cpmech/gosl/la"

	"github.com/alexlee-gk/trajopt/belief"
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/numeric"
	"github.com/alexlee-gk/trajopt/solver"
)

// BeliefDynamicsConstraint is the equality g(theta_t, u_t) = theta_{t+1},
// where g is the one-step EKF belief update (belief.BeliefDynamics). Its
// only linearization path is a numerical Jacobian of BeliefDynamics
// itself -- the analytic dg/dtheta, dg/du variant some versions of the
// original optimizer carried alongside it is not reproduced here, per
// the single-canonical-path decision in the redesign notes.
type BeliefDynamicsConstraint struct {
	name      string
	model     belief.Model
	nDof      int
	thetaT    expr.VarVector
	uT        expr.VarVector
	thetaNext expr.VarVector
}

// NewBeliefDynamicsConstraint builds the constraint tying thetaT/uT to
// thetaNext through one EKF step of model.
func NewBeliefDynamicsConstraint(name string, model belief.Model, nDof int, thetaT, uT, thetaNext expr.VarVector) *BeliefDynamicsConstraint {
	return &BeliefDynamicsConstraint{name: name, model: model, nDof: nDof, thetaT: thetaT, uT: uT, thetaNext: thetaNext}
}

func (c *BeliefDynamicsConstraint) Name() string        { return c.name }
func (c *BeliefDynamicsConstraint) Type() ConstraintType { return EQ }

func (c *BeliefDynamicsConstraint) Value(x []float64) []float64 {
	theta := c.thetaT.Values(x)
	u := c.uT.Values(x)
	next := c.thetaNext.Values(x)
	g := belief.BeliefDynamics(c.model, c.nDof, theta, u)
	out := make([]float64, len(g))
	for i := range g {
		out[i] = g[i] - next[i]
	}
	return out
}

func (c *BeliefDynamicsConstraint) Convex(x []float64, iter int, cnts *solver.ConvexConstraints) {
	theta := c.thetaT.Values(x)
	u := c.uT.Values(x)
	g0 := belief.BeliefDynamics(c.model, c.nDof, theta, u)

	thetaU := append(append([]float64(nil), theta...), u...)
	nTheta := len(theta)
	jac := numeric.CalcNumJac(func(tu la.Vector) la.Vector {
		return belief.BeliefDynamics(c.model, c.nDof, tu[:nTheta], tu[nTheta:])
	}, thetaU, 0)

	// row_k: g0_k + A_k.(theta-theta0) + B_k.(u-u0) - thetaNext_k == 0
	for k := range g0 {
		row := expr.Aff{Const: g0[k]}
		for i, v := range c.thetaT {
			coef := jac[k][i]
			row.Coeffs = append(row.Coeffs, coef)
			row.Vars = append(row.Vars, v)
			row.Const -= coef * theta[i]
		}
		for i, v := range c.uT {
			coef := jac[k][nTheta+i]
			row.Coeffs = append(row.Coeffs, coef)
			row.Vars = append(row.Vars, v)
			row.Const -= coef * u[i]
		}
		row.Coeffs = append(row.Coeffs, -1)
		row.Vars = append(row.Vars, c.thetaNext[k])
		cnts.AddEqCnt(expr.CleanupAff(row))
	}
}
