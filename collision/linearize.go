// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/kinematics"
)

func dot3(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

// rowVecMat3 returns n^T * J for a (3 x k) Jacobian J, i.e. a length-k row.
func rowVecMat3(n [3]float64, J [][]float64) []float64 {
	k := 0
	if len(J) > 0 {
		k = len(J[0])
	}
	out := make([]float64, k)
	for col := 0; col < k; col++ {
		var s float64
		for row := 0; row < 3; row++ {
			s += n[row] * J[row][col]
		}
		out[col] = s
	}
	return out
}

func negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

func dotSlices(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// distancesAndWeights extracts the plain (distance, weight) pairs for
// contacts touching the tracked links, ignoring gradient information --
// used by Cost.Value, which only needs the true nonlinear distances.
func distancesAndWeights(collisions []Collision, tracked map[string]bool) (dists, weights []float64) {
	for _, c := range collisions {
		if tracked[c.LinkA] || tracked[c.LinkB] {
			dists = append(dists, c.Distance)
			weights = append(weights, c.Weight)
		}
	}
	return
}

// distanceExpressions linearizes a single-timestep (or one cast endpoint's)
// contact set into affine expressions in `vars`, the joint variables at
// which dofvals was evaluated. Grounded on
// CollisionsToDistanceExpressions in the original collision_avoidance.cpp:
// g = normalB2A^T * (J_a - J_b) restricted to the side(s) whose link is
// tracked, and the linearized distance is d_col + g.(theta - thetaHat).
func distanceExpressions(collisions []Collision, rad kinematics.RobotModel, linkIndex map[string]int,
	vars expr.VarVector, dofvals []float64) (exprs []expr.Aff, weights []float64) {

	rad.SetDOFValues(dofvals)
	for _, c := range collisions {
		dist := expr.NewAffConst(c.Distance)
		touched := false
		if idx, ok := linkIndex[c.LinkA]; ok {
			J := rad.PositionJacobian(idx, c.PtA)
			grad := rowVecMat3(c.NormalB2A, J)
			expr.ExprInc(&dist, expr.VarDot(grad, vars))
			expr.ExprDec(&dist, dotSlices(grad, dofvals))
			touched = true
		}
		if idx, ok := linkIndex[c.LinkB]; ok {
			negN := [3]float64{-c.NormalB2A[0], -c.NormalB2A[1], -c.NormalB2A[2]}
			J := rad.PositionJacobian(idx, c.PtB)
			grad := rowVecMat3(negN, J)
			expr.ExprInc(&dist, expr.VarDot(grad, vars))
			expr.ExprDec(&dist, dotSlices(grad, dofvals))
			touched = true
		}
		if touched {
			exprs = append(exprs, dist)
			weights = append(weights, c.Weight)
		}
	}
	return
}

// castDistanceExpressions time-blends the linearization at both cast
// endpoints: (1-tau)*expr0 + tau*expr1, per collision's own Time.
func castDistanceExpressions(collisions []Collision, rad kinematics.RobotModel, linkIndex map[string]int,
	vars0, vars1 expr.VarVector, dofvals0, dofvals1 []float64) (exprs []expr.Aff, weights []float64) {

	exprs0, w0 := distanceExpressions(collisions, rad, linkIndex, vars0, dofvals0)
	exprs1, w1 := distanceExpressions(collisions, rad, linkIndex, vars1, dofvals1)

	n := len(exprs0)
	exprs = make([]expr.Aff, n)
	weights = make([]float64, n)
	for i := 0; i < n; i++ {
		tau := collisions[i].Time
		a := expr.AffScale(exprs0[i], 1-tau)
		b := expr.AffScale(exprs1[i], tau)
		sum := expr.NewAffConst(0)
		expr.ExprInc(&sum, a)
		expr.ExprInc(&sum, b)
		exprs[i] = sum
		weights[i] = (w0[i] + w1[i]) / 2
	}
	return
}

// beliefDistanceExpressions linearizes sigma-point contacts as a weighted
// sum over the contributing sigma-point instances, using the belief
// Jacobian (which accounts for sensitivity to both the mean and the
// sqrt-covariance entries). A contact whose expression is entirely zero
// (no instance in its mix touched a tracked link) is dropped, matching
// the `dist` all-zero guard in BeliefCollisionsToDistanceExpressions.
func beliefDistanceExpressions(collisions []Collision, brad kinematics.BeliefRobotModel, linkIndex map[string]int,
	thetaVars expr.VarVector, thetaVals []float64) (exprs []expr.Aff, weights []float64) {

	brad.SetDOFValues(thetaVals[:brad.DOF()])
	for _, c := range collisions {
		if c.Mix == nil {
			continue
		}
		dist := expr.NewAffConst(0)
		nonzero := false
		for i, alpha := range c.Mix.Alpha {
			instance := c.Mix.InstanceInd[i]
			distA := expr.NewAffConst(c.Distance)
			touched := false
			if idx, ok := linkIndex[c.LinkA]; ok {
				J := brad.BeliefJacobian(idx, instance, c.PtA)
				grad := rowVecMat3(c.NormalB2A, J)
				expr.ExprInc(&distA, expr.VarDot(grad, thetaVars))
				expr.ExprDec(&distA, dotSlices(grad, thetaVals))
				touched = true
			}
			if idx, ok := linkIndex[c.LinkB]; ok {
				negN := [3]float64{-c.NormalB2A[0], -c.NormalB2A[1], -c.NormalB2A[2]}
				J := brad.BeliefJacobian(idx, instance, c.PtB)
				grad := rowVecMat3(negN, J)
				expr.ExprInc(&distA, expr.VarDot(grad, thetaVars))
				expr.ExprDec(&distA, dotSlices(grad, thetaVals))
				touched = true
			}
			if touched {
				expr.ExprInc(&dist, expr.AffScale(distA, alpha))
				nonzero = true
			}
		}
		if nonzero {
			exprs = append(exprs, dist)
			weights = append(weights, c.Weight)
		}
	}
	return
}

func linkIndexOf(links []kinematics.Link, dofIndices []int) map[string]int {
	out := make(map[string]int, len(links))
	for i, l := range links {
		out[l.Name()] = dofIndices[i]
	}
	return out
}

func linkNames(links []kinematics.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Name()
	}
	return out
}
