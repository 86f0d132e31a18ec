// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package costs

import (
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/solver"
)

// CovarianceCost penalizes trace(Q * sqrtSigma * sqrtSigma^T) at one
// belief timestep. Because this is already an exact quadratic form in
// the sqrt-covariance coordinates, its convex surrogate is identical to
// its true value: the quadratic expression is built once, at
// construction, from the covariance sub-block of thetaVars, rather than
// re-linearized every outer iteration.
type CovarianceCost struct {
	name string
	quad expr.Quad
}

// NewCovarianceCost builds the cost over one timestep's belief row
// thetaVars (length belief.NTheta(nDof)), weighting the sqrt-covariance
// entries by the diagonal of q (length nDof). Outside belief mode the
// problem factory builds it with nil thetaVars and nDof 0, which gives an
// empty quadratic: zero value and no objective terms.
func NewCovarianceCost(name string, thetaVars expr.VarVector, nDof int, q []float64) *CovarianceCost {
	_, sqrtSigmaVars := splitBeliefRow(thetaVars, nDof)
	var quad expr.Quad
	// trace(Q*L*L^T) = sum_i q_i * sum_j L[i][j]^2, over the lower
	// triangle columns j=0..nDof-1, rows i=j..nDof-1 (column-major packing,
	// per belief.Compose).
	for i := 0; i < nDof; i++ {
		for j := 0; j <= i; j++ {
			v := sqrtSigmaVars[i][j]
			quad = expr.QuadAdd(quad, expr.Quad{
				Coeffs: []float64{q[i]},
				Vars1:  expr.VarVector{v},
				Vars2:  expr.VarVector{v},
			})
		}
	}
	return &CovarianceCost{name: name, quad: expr.CleanupQuad(quad)}
}

func (c *CovarianceCost) Name() string { return c.name }

func (c *CovarianceCost) Value(x []float64) float64 { return c.quad.Value(x) }

func (c *CovarianceCost) Convex(x []float64, iter int, model solver.Model, obj *solver.ConvexObjective) {
	obj.AddQuadExpr(c.quad)
}

// splitBeliefRow slices a belief row's variable vector into the mean
// block and the (lower-triangular) sqrt-covariance block, indexed
// [row][col] for col<=row, mirroring belief.Decompose's layout.
func splitBeliefRow(thetaVars expr.VarVector, nDof int) (mean expr.VarVector, sqrtSigma [][]expr.Var) {
	mean = thetaVars[:nDof]
	sqrtSigma = make([][]expr.Var, nDof)
	for i := range sqrtSigma {
		sqrtSigma[i] = make([]expr.Var, i+1)
	}
	idx := nDof
	for j := 0; j < nDof; j++ {
		for i := j; i < nDof; i++ {
			sqrtSigma[i][j] = thetaVars[idx]
			idx++
		}
	}
	return
}
