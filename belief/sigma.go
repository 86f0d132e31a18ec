// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package belief

// SigmaPoints returns the 2*nDof+1 configurations {x} U {x +/- kappa*L[:,i]}
// representing the Gaussian (x, L*L^T), one slice entry per configuration
// (out[0] is the mean, out[1+i] adds and out[1+nDof+i] subtracts column i). kappa
// is a scale fixed by the robot model (spec 4.5); it is not the classical
// unscented-transform kappa, just a spread parameter chosen so the points
// usefully bracket the collision geometry.
func SigmaPoints(x []float64, sqrtSigma [][]float64, kappa float64) [][]float64 {
	nDof := len(x)
	out := make([][]float64, 2*nDof+1)
	out[0] = append([]float64(nil), x...)
	for i := 0; i < nDof; i++ {
		plus := make([]float64, nDof)
		minus := make([]float64, nDof)
		for row := 0; row < nDof; row++ {
			delta := kappa * sqrtSigma[row][i]
			plus[row] = x[row] + delta
			minus[row] = x[row] - delta
		}
		out[1+i] = plus
		out[1+nDof+i] = minus
	}
	return out
}
