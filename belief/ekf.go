// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package belief

import (
	"github.com/cpmech/gosl/la"

	"github.com/alexlee-gk/trajopt/numeric"
)

// Model is the minimal black-box contract the EKF step needs from a robot:
// dynamics and observation functions, and the noise dimensions. Concrete
// robot models (e.g. robotmodel/planar) implement kinematics.BeliefRobotModel,
// a superset of this.
type Model interface {
	Dynamics(x, u, q []float64) []float64
	Observe(x, r []float64) []float64
	QDim() int
	RDim() int
}

// Step runs one predict/update EKF pass, per spec 4.5:
//  1. x- = dynamics(x, u, 0)
//  2. Sigma = sqrtSigma * sqrtSigma^T
//  3. A = d dynamics/dx at x, Gamma = A*Sigma*A^T
//  4. C = d observe/dx at x, R = d observe/dr at r=0
//  5. K = C*Gamma*C^T + R*R^T; solve K*L = C*Gamma
//  6. Sigma+ = Gamma - Gamma*C^T*L
//  7. sqrtSigma+ = chol_lower(Sigma+)
//  8. return (x-, sqrtSigma+)
//
// ok is false if the innovation matrix was singular or the posterior
// covariance was not PSD; Step still returns a best-effort (damped)
// result rather than failing, per spec's NumericError handling -- the
// caller (BeliefDynamics, and its numerical-Jacobian caller) must
// tolerate this.
func Step(m Model, x, u []float64, sqrtSigma la.Matrix) (xNext []float64, sqrtSigmaNext la.Matrix, ok bool) {
	q := make([]float64, m.QDim())
	r := make([]float64, m.RDim())

	xNext = m.Dynamics(x, u, q)

	Sigma := numeric.MatMul(sqrtSigma, numeric.MatTranspose(sqrtSigma))

	A := numeric.CalcNumJac(func(xi la.Vector) la.Vector {
		return m.Dynamics(xi, u, q)
	}, x, 0)
	Gamma := numeric.MatMul(numeric.MatMul(A, Sigma), numeric.MatTranspose(A))

	C := numeric.CalcNumJac(func(xi la.Vector) la.Vector {
		return m.Observe(xi, r)
	}, x, 0)
	R := numeric.CalcNumJac(func(ri la.Vector) la.Vector {
		return m.Observe(x, ri)
	}, r, 0)

	K := numeric.MatAdd(
		numeric.MatMul(numeric.MatMul(C, Gamma), numeric.MatTranspose(C)),
		numeric.MatMul(R, numeric.MatTranspose(R)),
	)
	CGamma := numeric.MatMul(C, Gamma)
	L, solveOK := SolvePartialPivot(K, CGamma)
	ok = solveOK

	SigmaPost := numeric.MatSub(Gamma, numeric.MatMul(numeric.MatMul(Gamma, numeric.MatTranspose(C)), L))

	sqrtSigmaNext, cholOK := CholeskyLower(SigmaPost)
	ok = ok && cholOK
	return
}

// BeliefDynamics composes Decompose -> Step -> Compose, the single
// nonlinear function the belief-dynamics constraint linearizes (by
// numerical Jacobian) and that the sigma-point expansion builds on. When
// Step could not factor a valid posterior (ok=false), the composed
// result still reflects the damped fallback from CholeskyLower/
// SolvePartialPivot rather than NaN, so repeated calls during numerical
// differentiation stay finite.
func BeliefDynamics(m Model, nDof int, theta, u []float64) []float64 {
	x, sqrtSigma := Decompose(theta, nDof)
	xNext, sqrtSigmaNext, _ := Step(m, x, u, sqrtSigma)
	return Compose(xNext, sqrtSigmaNext)
}
