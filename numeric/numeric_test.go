// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package numeric

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

func TestCalcNumJacLinear(tst *testing.T) {
	chk.PrintTitle("CalcNumJacLinear")
	// f(x) = [2x0 + 3x1, x0 - x1] has exact Jacobian [[2,3],[1,-1]]
	f := func(x la.Vector) la.Vector {
		return la.Vector{2*x[0] + 3*x[1], x[0] - x[1]}
	}
	J := CalcNumJac(f, la.Vector{1, -1}, 0)
	chk.Scalar(tst, "J[0][0]", 1e-8, J[0][0], 2)
	chk.Scalar(tst, "J[0][1]", 1e-8, J[0][1], 3)
	chk.Scalar(tst, "J[1][0]", 1e-8, J[1][0], 1)
	chk.Scalar(tst, "J[1][1]", 1e-8, J[1][1], -1)
}

func TestCalcNumJacNonlinear(tst *testing.T) {
	chk.PrintTitle("CalcNumJacNonlinear")
	f := func(x la.Vector) la.Vector { return la.Vector{math.Sin(x[0])} }
	x0 := 0.4
	J := CalcNumJac(f, la.Vector{x0}, DefaultJacStep)
	chk.Scalar(tst, "dsin/dx", 1e-5, J[0][0], math.Cos(x0))
}

func TestArray2DBlockTransposeTrace(tst *testing.T) {
	chk.PrintTitle("Array2DBlockTransposeTrace")
	a := NewArray2D[float64](3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a.Set(i, j, float64(i*3+j))
		}
	}
	chk.Scalar(tst, "trace", 1e-12, TraceFloat64(a), 0+4+8)
	b := a.Block(1, 1, 2, 2)
	chk.Scalar(tst, "block[0][0]", 1e-12, b.At(0, 0), 4)
	chk.Scalar(tst, "block[1][1]", 1e-12, b.At(1, 1), 8)
	tr := a.Transpose()
	chk.Scalar(tst, "transpose[0][1]", 1e-12, tr.At(0, 1), a.At(1, 0))
}
