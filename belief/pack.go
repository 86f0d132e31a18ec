// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package belief implements the EKF-style belief propagation used as a
// differentiable dynamics model: packing/unpacking theta = (x, sqrt(Sigma)),
// the predict/update step, and sigma-point expansion for collision
// checking in belief mode.
package belief

import "github.com/cpmech/gosl/chk"

// NTheta returns the width of one belief row for nDof joints: the mean
// plus the packed lower triangle of the square-root covariance.
func NTheta(nDof int) int { return nDof + nDof*(nDof+1)/2 }

// Compose packs (x, sqrtSigma) into theta = [x | vec_L(sqrtSigma)], where
// vec_L stores sqrtSigma's lower triangle column-major: column j holds
// entries i=j..nDof-1. This ordering (not row-major) is load-bearing --
// it is the packing the belief-dynamics equality constraint assumes, and
// was fixed by reading the final (non-commented-out) version of
// composeBelief in the original optimizer's belief.cpp.
func Compose(x []float64, sqrtSigma [][]float64) []float64 {
	nDof := len(x)
	theta := make([]float64, NTheta(nDof))
	copy(theta, x)
	idx := nDof
	for j := 0; j < nDof; j++ {
		for i := j; i < nDof; i++ {
			theta[idx] = sqrtSigma[i][j]
			idx++
		}
	}
	return theta
}

// Decompose is Compose's inverse. The returned sqrtSigma has its upper
// triangle left as zero; only the lower triangle (including diagonal) is
// ever written or examined elsewhere.
func Decompose(theta []float64, nDof int) (x []float64, sqrtSigma [][]float64) {
	if len(theta) != NTheta(nDof) {
		chk.Panic("belief.Decompose: theta has length %d, expected %d for nDof=%d", len(theta), NTheta(nDof), nDof)
	}
	x = make([]float64, nDof)
	copy(x, theta[:nDof])
	sqrtSigma = make([][]float64, nDof)
	for i := range sqrtSigma {
		sqrtSigma[i] = make([]float64, nDof)
	}
	idx := nDof
	for j := 0; j < nDof; j++ {
		for i := j; i < nDof; i++ {
			sqrtSigma[i][j] = theta[idx]
			idx++
		}
	}
	return
}
