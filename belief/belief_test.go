// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package belief

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

func TestComposeDecomposeRoundTrip(tst *testing.T) {
	chk.PrintTitle("ComposeDecomposeRoundTrip")
	x := []float64{0.1, -0.2, 0.3}
	L := la.MatAlloc(3, 3)
	L[0][0], L[1][0], L[1][1] = 1.1, 0.2, 0.9
	L[2][0], L[2][1], L[2][2] = 0.05, 0.15, 1.3

	theta := Compose(x, L)
	x2, L2 := Decompose(theta, 3)
	chk.Array(tst, "x round-trips", 1e-14, x2, x)
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			chk.Scalar(tst, "L round-trips", 1e-14, L2[i][j], L[i][j])
		}
	}
}

func TestCholeskyLowerNonNegativeDiag(tst *testing.T) {
	chk.PrintTitle("CholeskyLowerNonNegativeDiag")
	A := la.MatAlloc(3, 3)
	base := [][]float64{{4, 1, 0.5}, {1, 3, 0.2}, {0.5, 0.2, 2}}
	for i := range base {
		copy(A[i], base[i])
	}
	L, ok := CholeskyLower(A)
	if !ok {
		tst.Fatalf("expected PSD matrix to factor cleanly")
	}
	for i := 0; i < 3; i++ {
		if L[i][i] < 0 {
			tst.Errorf("diagonal entry %d is negative: %g", i, L[i][i])
		}
		for j := i + 1; j < 3; j++ {
			if L[i][j] != 0 {
				tst.Errorf("upper triangle entry (%d,%d) is nonzero: %g", i, j, L[i][j])
			}
		}
	}
	LLt := la.MatAlloc(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += L[i][k] * L[j][k]
			}
			LLt[i][j] = s
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			chk.Scalar(tst, "L*L^T reconstructs A", 1e-9, LLt[i][j], A[i][j])
		}
	}
}

// linearModel is a tiny self-contained belief model (independent of
// robotmodel/planar) used only to exercise Step/BeliefDynamics in
// isolation: x in R^2, linear dynamics, linear observation.
type linearModel struct{}

func (linearModel) Dynamics(x, u, q []float64) []float64 {
	return []float64{x[0] + u[0] + 0.1*q[0], x[1] + u[1] + 0.1*q[1]}
}
func (linearModel) Observe(x, r []float64) []float64 {
	return []float64{x[0] + 0.2*r[0], x[1] + 0.2*r[1]}
}
func (linearModel) QDim() int { return 2 }
func (linearModel) RDim() int { return 2 }

func TestBeliefDynamicsMatchesNumJac(tst *testing.T) {
	chk.PrintTitle("BeliefDynamicsMatchesNumJac")
	m := linearModel{}
	nDof := 2
	sqrtSigma := la.MatAlloc(2, 2)
	sqrtSigma[0][0], sqrtSigma[1][0], sqrtSigma[1][1] = 0.3, 0.05, 0.25
	theta0 := Compose([]float64{0.2, -0.1}, sqrtSigma)
	u0 := []float64{0.05, -0.02}

	g0 := BeliefDynamics(m, nDof, theta0, u0)

	// numerical Jacobian of BeliefDynamics w.r.t. theta at theta0
	n := len(theta0)
	eps := 1e-4
	A := la.MatAlloc(len(g0), n)
	for i := 0; i < n; i++ {
		thetaPlus := append([]float64(nil), theta0...)
		thetaMinus := append([]float64(nil), theta0...)
		thetaPlus[i] += eps
		thetaMinus[i] -= eps
		gPlus := BeliefDynamics(m, nDof, thetaPlus, u0)
		gMinus := BeliefDynamics(m, nDof, thetaMinus, u0)
		for row := range g0 {
			A[row][i] = (gPlus[row] - gMinus[row]) / (2 * eps)
		}
	}

	delta := make([]float64, n)
	for i := range delta {
		delta[i] = 1e-3 * (1 - 2*float64(i%2))
	}
	thetaPerturbed := make([]float64, n)
	for i := range thetaPerturbed {
		thetaPerturbed[i] = theta0[i] + delta[i]
	}
	gPerturbed := BeliefDynamics(m, nDof, thetaPerturbed, u0)

	var maxErr float64
	for row := range g0 {
		predicted := g0[row]
		for i := range delta {
			predicted += A[row][i] * delta[i]
		}
		e := math.Abs(gPerturbed[row] - predicted)
		if e > maxErr {
			maxErr = e
		}
	}
	if maxErr > 1e-5 {
		tst.Errorf("linearization error %g exceeds O(delta^2) bound", maxErr)
	}
}

func TestSigmaPointsBracketMean(tst *testing.T) {
	chk.PrintTitle("SigmaPointsBracketMean")
	x := []float64{1, 2}
	L := [][]float64{{0.5, 0}, {0.1, 0.4}}
	pts := SigmaPoints(x, L, 1.0)
	if len(pts) != 5 {
		tst.Fatalf("expected 2*n+1=5 sigma points, got %d", len(pts))
	}
	chk.Array(tst, "pts[0] == mean", 1e-14, pts[0], x)
}
