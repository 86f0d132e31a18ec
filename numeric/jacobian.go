// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package numeric

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// DefaultJacStep is the central-difference half-step used throughout the
// optimizer unless a caller overrides it. 2^-11, same as the original
// trajectory optimizer's calcNumJac default.
const DefaultJacStep = 1.0 / 2048.0

// VectorFunc maps an input vector to an output vector; belief dynamics,
// observation models and kinematics are all treated as black-box smooth
// functions of this shape.
type VectorFunc func(x la.Vector) la.Vector

// CalcNumJac computes the Jacobian of f at x by central differences:
// column i is (f(x+eps*e_i) - f(x-eps*e_i)) / (2*eps). The kinematics,
// observation and belief-dynamics models are all linearized this way
// because none of them is assumed to expose an analytic derivative.
func CalcNumJac(f VectorFunc, x la.Vector, eps float64) (J la.Matrix) {
	if eps == 0 {
		eps = DefaultJacStep
	}
	n := len(x)
	y0 := f(x)
	m := len(y0)
	J = la.MatAlloc(m, n)
	xPlus := make(la.Vector, n)
	xMinus := make(la.Vector, n)
	copy(xPlus, x)
	copy(xMinus, x)
	for i := 0; i < n; i++ {
		xPlus[i] = x[i] + eps
		xMinus[i] = x[i] - eps
		yPlus := f(xPlus)
		yMinus := f(xMinus)
		if len(yPlus) != m || len(yMinus) != m {
			chk.Panic("CalcNumJac: f must return a fixed-size vector; got %d and %d, expected %d", len(yPlus), len(yMinus), m)
		}
		for row := 0; row < m; row++ {
			J[row][i] = (yPlus[row] - yMinus[row]) / (2 * eps)
		}
		xPlus[i] = x[i]
		xMinus[i] = x[i]
	}
	return
}

// MatVec returns A*x as a freshly allocated la.Vector.
func MatVec(A la.Matrix, x la.Vector) la.Vector {
	m := len(A)
	out := make(la.Vector, m)
	la.MatVecMul(out, 1, A, x)
	return out
}

// MatMul returns A*B for dense matrices shaped (m x k) and (k x n).
func MatMul(A, B la.Matrix) la.Matrix {
	m := len(A)
	if m == 0 {
		return la.MatAlloc(0, 0)
	}
	k := len(A[0])
	if len(B) != k {
		chk.Panic("MatMul: inner dimensions mismatch (%d != %d)", k, len(B))
	}
	n := 0
	if k > 0 {
		n = len(B[0])
	}
	out := la.MatAlloc(m, n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var s float64
			for p := 0; p < k; p++ {
				s += A[i][p] * B[p][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// MatTranspose returns the transpose of A.
func MatTranspose(A la.Matrix) la.Matrix {
	m := len(A)
	if m == 0 {
		return la.MatAlloc(0, 0)
	}
	n := len(A[0])
	out := la.MatAlloc(n, m)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out[j][i] = A[i][j]
		}
	}
	return out
}

// MatAdd returns A+B.
func MatAdd(A, B la.Matrix) la.Matrix {
	m := len(A)
	out := la.MatAlloc(m, boundCols(A))
	for i := range A {
		for j := range A[i] {
			out[i][j] = A[i][j] + B[i][j]
		}
	}
	return out
}

// MatSub returns A-B.
func MatSub(A, B la.Matrix) la.Matrix {
	m := len(A)
	out := la.MatAlloc(m, boundCols(A))
	for i := range A {
		for j := range A[i] {
			out[i][j] = A[i][j] - B[i][j]
		}
	}
	return out
}

func boundCols(A la.Matrix) int {
	if len(A) == 0 {
		return 0
	}
	return len(A[0])
}

// Identity returns the (n x n) identity matrix.
func Identity(n int) la.Matrix {
	I := la.MatAlloc(n, n)
	for i := 0; i < n; i++ {
		I[i][i] = 1
	}
	return I
}

// Scale returns s*A.
func Scale(s float64, A la.Matrix) la.Matrix {
	out := la.MatAlloc(len(A), boundCols(A))
	for i := range A {
		for j := range A[i] {
			out[i][j] = s * A[i][j]
		}
	}
	return out
}
