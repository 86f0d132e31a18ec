// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package costs

import "github.com/alexlee-gk/trajopt/solver"

// SumCost bundles several costs (typically one per timestep or per
// adjacent pair) behind a single name, the way the original optimizer's
// JSON factories attach one cost object per timestep but report them
// under one declared name.
type SumCost struct {
	name  string
	parts []Cost
}

// NewSumCost bundles parts under name.
func NewSumCost(name string, parts []Cost) *SumCost { return &SumCost{name: name, parts: parts} }

func (s *SumCost) Name() string { return s.name }

func (s *SumCost) Value(x []float64) float64 {
	var total float64
	for _, p := range s.parts {
		total += p.Value(x)
	}
	return total
}

func (s *SumCost) Convex(x []float64, iter int, model solver.Model, obj *solver.ConvexObjective) {
	for _, p := range s.parts {
		p.Convex(x, iter, model, obj)
	}
}

// SumConstraint bundles several constraints' rows behind a single name.
// All parts must share the same Type(); SumConstraint uses the first
// part's.
type SumConstraint struct {
	name  string
	parts []Constraint
}

// NewSumConstraint bundles parts under name.
func NewSumConstraint(name string, parts []Constraint) *SumConstraint {
	return &SumConstraint{name: name, parts: parts}
}

func (s *SumConstraint) Name() string { return s.name }

func (s *SumConstraint) Type() ConstraintType {
	if len(s.parts) == 0 {
		return INEQ
	}
	return s.parts[0].Type()
}

func (s *SumConstraint) Value(x []float64) []float64 {
	var out []float64
	for _, p := range s.parts {
		out = append(out, p.Value(x)...)
	}
	return out
}

func (s *SumConstraint) Convex(x []float64, iter int, cnts *solver.ConvexConstraints) {
	for _, p := range s.parts {
		p.Convex(x, iter, cnts)
	}
}
