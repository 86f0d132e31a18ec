// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package planar

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestThreeLinkFingerAtZero(tst *testing.T) {
	chk.PrintTitle("ThreeLinkFingerAtZero")
	r := NewThreeLink()
	r.SetDOFValues([]float64{0, 0, 0})
	l, ok := r.GetLink("Finger")
	if !ok {
		tst.Fatal("Finger link not found")
	}
	_, t := l.Transform()
	chk.Scalar(tst, "x", 1e-12, t[0], 0.16+0.16+0.08)
	chk.Scalar(tst, "y", 1e-12, t[1], 0)
}

func TestPositionJacobianMatchesNumericDerivative(tst *testing.T) {
	chk.PrintTitle("PositionJacobianMatchesNumericDerivative")
	r := NewThreeLink()
	dofs := []float64{0.3, -0.6, 0.9}
	r.SetDOFValues(dofs)
	_, tip := r.linkTransform(2, dofs)

	analytic := r.PositionJacobian(2, tip)

	num := numericJac(func(d []float64) []float64 {
		_, p := r.linkTransform(2, d)
		return []float64{p[0], p[1], p[2]}
	}, dofs, 1.0/2048.0)

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			chk.Scalar(tst, "J", 1e-6, analytic[row][col], num[row][col])
		}
	}
}

func numericJac(f func([]float64) []float64, x []float64, eps float64) [][]float64 {
	n := len(x)
	y0 := f(x)
	m := len(y0)
	J := make([][]float64, m)
	for i := range J {
		J[i] = make([]float64, n)
	}
	xPlus := append([]float64(nil), x...)
	xMinus := append([]float64(nil), x...)
	for i := 0; i < n; i++ {
		xPlus[i] = x[i] + eps
		xMinus[i] = x[i] - eps
		yPlus := f(xPlus)
		yMinus := f(xMinus)
		for row := 0; row < m; row++ {
			J[row][i] = (yPlus[row] - yMinus[row]) / (2 * eps)
		}
		xPlus[i] = x[i]
		xMinus[i] = x[i]
	}
	return J
}

func TestComposeDecomposeBeliefRoundTrips(tst *testing.T) {
	chk.PrintTitle("ComposeDecomposeBeliefRoundTrips")
	r := NewThreeLink()
	x := []float64{0.1, 0.2, 0.3}
	sqrtSigma := [][]float64{{1, 0, 0}, {0.2, 0.9, 0}, {0.1, 0.3, 0.8}}
	theta := r.ComposeBelief(x, sqrtSigma)
	if len(theta) != r.NTheta() {
		tst.Fatalf("theta length %d, want %d", len(theta), r.NTheta())
	}
	xOut, sOut := r.DecomposeBelief(theta)
	chk.Array(tst, "x", 1e-12, xOut, x)
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			chk.Scalar(tst, "sqrtSigma", 1e-12, sOut[i][j], sqrtSigma[i][j])
		}
	}
}

func TestObserveNoiseGrowsAwayFromLightBand(tst *testing.T) {
	chk.PrintTitle("ObserveNoiseGrowsAwayFromLightBand")
	r := NewThreeLink()
	near := []float64{0, 0, 0} // Finger tip at y=0, close to the y=-0.2 band
	far := []float64{math.Pi / 2, 0, 0}
	r1 := []float64{1, 1, 1}
	zNear := r.Observe(near, r1)
	zFar := r.Observe(far, r1)
	_, tNear := r.linkTransform(2, near)
	_, tFar := r.linkTransform(2, far)
	noiseNear := math.Hypot(zNear[0]-tNear[0], zNear[1]-tNear[1])
	noiseFar := math.Hypot(zFar[0]-tFar[0], zFar[1]-tFar[1])
	if noiseFar <= noiseNear {
		tst.Errorf("expected noise to grow away from the light band: near=%g far=%g", noiseNear, noiseFar)
	}
}

func TestSigmaPointsCenteredOnMean(tst *testing.T) {
	chk.PrintTitle("SigmaPointsCenteredOnMean")
	r := NewThreeLink()
	x := []float64{0.1, -0.2, 0.3}
	sqrtSigma := [][]float64{{0.5, 0, 0}, {0.1, 0.4, 0}, {0.05, 0.1, 0.3}}
	theta := r.ComposeBelief(x, sqrtSigma)
	pts := r.SigmaPoints(theta)
	if len(pts) != 2*3+1 {
		tst.Fatalf("got %d sigma points, want %d", len(pts), 2*3+1)
	}
	chk.Array(tst, "mean instance", 1e-12, pts[0], x)
}

func TestCircleCheckerReportsPenetration(tst *testing.T) {
	chk.PrintTitle("CircleCheckerReportsPenetration")
	r := NewThreeLink()
	r.SetDOFValues([]float64{0, 0, 0})
	obstacles := []Circle{{Center: [2]float64{0.3, 0}, Radius: 0.1}}
	checker := NewCircleChecker(r, obstacles, 0.02)
	checker.SetContactDistance(0.05)
	cols := checker.LinksVsAll([]string{"link0", "link1", "Finger"})
	if len(cols) == 0 {
		tst.Fatal("expected at least one contact against an obstacle straddling link1")
	}
	for _, c := range cols {
		if c.LinkB != "obstacle_0" {
			tst.Errorf("unexpected obstacle name %q", c.LinkB)
		}
	}
}
