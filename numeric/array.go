// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numeric implements the small numerical utilities shared by the
// rest of the optimizer: a generic rectangular array and central-difference
// numerical Jacobians.
package numeric

import "github.com/cpmech/gosl/chk"

// Array2D is a rectangular, row-major array of any element type. It plays
// the role that util::BasicArray<T> plays in the original C++ trajectory
// optimizer: a dumb (rows x cols) container with block/row/column slicing,
// transpose and trace. The variable layout in package problem is kept as
// per-timestep expr.VarVector rows and the belief blocks as la.Matrix;
// neither is stored in an Array2D.
type Array2D[T any] struct {
	nRow, nCol int
	data       []T
}

// NewArray2D allocates a zeroed (nRow x nCol) array.
func NewArray2D[T any](nRow, nCol int) *Array2D[T] {
	if nRow < 0 || nCol < 0 {
		chk.Panic("Array2D: negative dimension (%d, %d)", nRow, nCol)
	}
	return &Array2D[T]{nRow: nRow, nCol: nCol, data: make([]T, nRow*nCol)}
}

// NewArray2DFrom wraps an existing flat, row-major slice without copying it.
func NewArray2DFrom[T any](nRow, nCol int, data []T) *Array2D[T] {
	if len(data) != nRow*nCol {
		chk.Panic("Array2D: data length %d does not match %d x %d", len(data), nRow, nCol)
	}
	return &Array2D[T]{nRow: nRow, nCol: nCol, data: data}
}

// Rows returns the number of rows.
func (a *Array2D[T]) Rows() int { return a.nRow }

// Cols returns the number of columns.
func (a *Array2D[T]) Cols() int { return a.nCol }

// At returns the element at (row, col).
func (a *Array2D[T]) At(row, col int) T {
	a.checkBounds(row, col)
	return a.data[row*a.nCol+col]
}

// Set assigns the element at (row, col).
func (a *Array2D[T]) Set(row, col int, v T) {
	a.checkBounds(row, col)
	a.data[row*a.nCol+col] = v
}

func (a *Array2D[T]) checkBounds(row, col int) {
	if row < 0 || row >= a.nRow || col < 0 || col >= a.nCol {
		chk.Panic("Array2D: index (%d, %d) out of bounds for (%d, %d) array", row, col, a.nRow, a.nCol)
	}
}

// Row returns a copy of row `r`.
func (a *Array2D[T]) Row(r int) []T {
	out := make([]T, a.nCol)
	for j := 0; j < a.nCol; j++ {
		out[j] = a.At(r, j)
	}
	return out
}

// Col returns a copy of column `c`.
func (a *Array2D[T]) Col(c int) []T {
	out := make([]T, a.nRow)
	for i := 0; i < a.nRow; i++ {
		out[i] = a.At(i, c)
	}
	return out
}

// RowBlock returns nCol contiguous entries of row `r` starting at `startCol`.
func (a *Array2D[T]) RowBlock(r, startCol, nCol int) []T {
	out := make([]T, nCol)
	for j := 0; j < nCol; j++ {
		out[j] = a.At(r, startCol+j)
	}
	return out
}

// Block returns a (nRow x nCol) sub-array starting at (startRow, startCol).
func (a *Array2D[T]) Block(startRow, startCol, nRow, nCol int) *Array2D[T] {
	out := NewArray2D[T](nRow, nCol)
	for i := 0; i < nRow; i++ {
		for j := 0; j < nCol; j++ {
			out.Set(i, j, a.At(startRow+i, startCol+j))
		}
	}
	return out
}

// Transpose returns a new array with rows and columns swapped.
func (a *Array2D[T]) Transpose() *Array2D[T] {
	out := NewArray2D[T](a.nCol, a.nRow)
	for i := 0; i < a.nRow; i++ {
		for j := 0; j < a.nCol; j++ {
			out.Set(j, i, a.At(i, j))
		}
	}
	return out
}

// Flatten returns the underlying row-major data (not copied).
func (a *Array2D[T]) Flatten() []T { return a.data }

// Trace sums the diagonal entries via the supplied addition function; T may
// not support "+" generically (e.g. T = Var), so the caller provides how to
// accumulate.
func Trace[T any](a *Array2D[T], add func(acc, v T) T) T {
	n := a.nRow
	if a.nCol < n {
		n = a.nCol
	}
	acc := a.At(0, 0)
	for i := 1; i < n; i++ {
		acc = add(acc, a.At(i, i))
	}
	return acc
}

// TraceFloat64 is the common case of Trace for plain float64 arrays.
func TraceFloat64(a *Array2D[float64]) float64 {
	return Trace(a, func(x, y float64) float64 { return x + y })
}
