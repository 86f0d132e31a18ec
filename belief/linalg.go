// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package belief

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// CholeskyLower returns the lower-triangular Cholesky factor L of a
// symmetric positive (semi-)definite matrix A, with L*L^T = A and a
// non-negative diagonal (the convention Compose/Decompose rely on for
// uniqueness, per spec DESIGN NOTES). ok is false if A is not PSD to
// within a small numerical tolerance, in which case L is the factor of a
// small diagonally-loaded approximation of A (a damped fallback) rather
// than a hard failure -- the belief-dynamics evaluator is called many
// times during Jacobian estimation at nearby states and must tolerate
// near-singular covariances without aborting the optimization.
//
// This is hand-written rather than sourced from gosl/la: la's dense
// solvers route through the sparse Triplet/SPSolver path built for
// large FEM systems (umfpack/mumps), which has no bare dense Cholesky in
// the surface this pack evidences, and these matrices are tiny (n_dof up
// to a handful of joints).
func CholeskyLower(A la.Matrix) (L la.Matrix, ok bool) {
	n := len(A)
	L = la.MatAlloc(n, n)
	ok = true
	const damping = 1e-9
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A[i][j]
			for k := 0; k < j; k++ {
				sum -= L[i][k] * L[j][k]
			}
			if i == j {
				diag := sum
				if diag <= 0 {
					ok = false
					diag = damping
				}
				L[i][i] = math.Sqrt(diag)
			} else {
				if L[j][j] == 0 {
					ok = false
					L[i][j] = 0
				} else {
					L[i][j] = sum / L[j][j]
				}
			}
		}
	}
	return
}

// SolvePartialPivot solves A*X = B for X via Gaussian elimination with
// partial pivoting, where A is (n x n) and B is (n x m). ok is false if A
// is numerically singular; X is the zero matrix in that case, so the
// caller (Step) gets a zero gain and its posterior equals the predicted
// covariance Gamma, with no NaN and no panic.
func SolvePartialPivot(A, B la.Matrix) (X la.Matrix, ok bool) {
	n := len(A)
	if n == 0 {
		return la.MatAlloc(0, boundCols(B)), true
	}
	m := boundCols(B)
	// augmented copy
	aug := la.MatAlloc(n, n+m)
	for i := 0; i < n; i++ {
		copy(aug[i][:n], A[i])
		copy(aug[i][n:], B[i])
	}
	ok = true
	for col := 0; col < n; col++ {
		pivot := col
		best := math.Abs(aug[col][col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r][col]); v > best {
				best = v
				pivot = r
			}
		}
		if best < 1e-14 {
			ok = false
			continue
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		pv := aug[col][col]
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col] / pv
			if factor == 0 {
				continue
			}
			for c := col; c < n+m; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}
	X = la.MatAlloc(n, m)
	if !ok {
		return X, false
	}
	for i := 0; i < n; i++ {
		pv := aug[i][i]
		if pv == 0 {
			ok = false
			continue
		}
		for c := 0; c < m; c++ {
			X[i][c] = aug[i][n+c] / pv
		}
	}
	return
}

func boundCols(A la.Matrix) int {
	if len(A) == 0 {
		return 0
	}
	return len(A[0])
}
