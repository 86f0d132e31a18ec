// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqp implements BasicTrustRegionSQP, the sequential convex
// optimization outer loop from spec.md section 4.7: an ell-1 trust-region
// merit method that repeatedly linearizes every cost/constraint about the
// current primal, solves the resulting convex subproblem, and
// accepts/rejects the candidate by comparing actual to model-predicted
// merit improvement, growing the merit penalty coefficient when the
// inner loop converges with residual constraint violation.
//
// It narrates its progress the way fem.Main.Run does in the teacher repo
// (io.Pf/io.Pfred/io.Pfcyan per-iteration trace) rather than returning a
// silent result, and reports every reject/NaN/solver error the way
// spec.md section 7 requires: logged with the iteration index, current
// penalty coefficient and trust radius.
package sqp

import (
	"math"
	"strings"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"

	"github.com/alexlee-gk/trajopt/costs"
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/problem"
	"github.com/alexlee-gk/trajopt/solver"
)

// Status is the outer loop's termination state.
type Status int

const (
	Converged Status = iota
	IterationLimit
	PenaltyIterationLimit
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "CONVERGED"
	case IterationLimit:
		return "ITERATION_LIMIT"
	case PenaltyIterationLimit:
		return "PENALTY_ITERATION_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Options holds the outer loop's tunables, named after
// BasicTrustRegionSQP's fields in the original optimizer's
// problem_description.cpp / OptimizeProblem.
type Options struct {
	MaxIter                int     // iteration cap across the whole run
	MinApproxImproveFrac   float64 // inner-loop convergence threshold
	MeritErrorCoeff        float64 // initial mu
	MaxMeritCoeffIncreases int     // cap on mu growth steps
	MeritCoeffIncreaseRatio float64 // multiplier applied to mu on growth
	TrustBoxSize           float64 // initial Delta
	MinTrustBoxSize        float64 // floor below which Delta stops shrinking
	TrustShrinkRatio       float64
	TrustExpandRatio       float64
	ImproveRatioThreshold  float64 // accept threshold for true/approx improvement
	ConstraintTol          float64 // violation below this counts as "satisfied"
	Verbose                bool
}

// DefaultOptions mirrors OptimizeProblem's defaults
// (max_iter_=1000, min_approx_improve_frac_=.001, merit_error_coeff_=10,
// max_merit_coeff_increases_=15) plus the trust-region tuning this repo
// adds per DESIGN.md (no canonical value survived in original_source's
// kept files, since sco/optimizers.cpp was filtered out of the retrieved
// pack; these follow the same trust-region SQP convention documented in
// spec.md section 4.7).
func DefaultOptions() Options {
	return Options{
		MaxIter:                 1000,
		MinApproxImproveFrac:    1e-3,
		MeritErrorCoeff:         10,
		MaxMeritCoeffIncreases:  15,
		MeritCoeffIncreaseRatio: 10,
		TrustBoxSize:            0.1,
		MinTrustBoxSize:         1e-4,
		TrustShrinkRatio:        0.1,
		TrustExpandRatio:        1.5,
		ImproveRatioThreshold:   0.25,
		ConstraintTol:           1e-4,
		Verbose:                 true,
	}
}

// Result is the outer loop's outcome: the final primal, the termination
// status, the iteration count, and per-cost/per-constraint breakdowns
// spec.md section 6 asks the Outputs to carry.
type Result struct {
	X                    []float64
	Status               Status
	Iterations           int
	MeritCoeff           float64
	CostValues           map[string]float64
	ConstraintViolations map[string][]float64
}

// Driver owns one BasicTrustRegionSQP run: the cost/constraint list, the
// global variable bounds, and a factory for a fresh convex-subproblem
// model each outer iteration (the subproblem's bounds and penalty rows
// change every iteration, so it is rebuilt from scratch rather than
// mutated in place).
type Driver struct {
	Costs       []costs.Cost
	Constraints []costs.Constraint
	Lower, Upper []float64
	Names       []string
	NewModel    func() solver.Model
	Opts        Options
}

// NewDriver builds a Driver from a built Problem.
func NewDriver(p *problem.Problem, newModel func() solver.Model, opts Options) *Driver {
	names := make([]string, len(p.AllVars))
	for i, v := range p.AllVars {
		names[i] = v.Name
	}
	return &Driver{
		Costs: p.Costs, Constraints: p.Constraints,
		Lower: p.Lower, Upper: p.Upper, Names: names,
		NewModel: newModel, Opts: opts,
	}
}

// Optimize runs the outer trust-region loop starting from x0 (typically
// problem.Problem.InitX) until convergence, the iteration cap or the
// merit-penalty growth cap.
func (d *Driver) Optimize(x0 []float64) *Result {
	x := append([]float64(nil), x0...)
	mu := d.Opts.MeritErrorCoeff
	delta := d.Opts.TrustBoxSize
	iter := 0

	for penaltyStep := 0; ; penaltyStep++ {
		for {
			if iter >= d.Opts.MaxIter {
				return d.finish(x, IterationLimit, iter, mu)
			}
			trueMerit := d.merit(x, mu)

			model := d.NewModel()
			for i := range x {
				lo := utl.Max(d.Lower[i], x[i]-delta)
				hi := utl.Min(d.Upper[i], x[i]+delta)
				model.NewVar(d.Names[i], lo, hi)
			}

			var obj solver.ConvexObjective
			for _, c := range d.Costs {
				c.Convex(x, iter, model, &obj)
			}
			for _, c := range d.Constraints {
				var cnts solver.ConvexConstraints
				c.Convex(x, iter, &cnts)
				cnts.Penalize(model, &obj, mu, slackPrefix(c.Name()))
			}
			model.AddQuadObj(obj.Quad)

			iter++
			if err := model.Solve(); err != nil {
				if d.Opts.Verbose {
					io.Pfred("> iter %d: mu=%.4g: solve failed (%v), shrinking trust region %.4g -> %.4g\n", iter, mu, err, delta, delta*d.Opts.TrustShrinkRatio)
				}
				delta *= d.Opts.TrustShrinkRatio
				if delta < d.Opts.MinTrustBoxSize {
					break
				}
				continue
			}

			xFull := make([]float64, model.NumVars())
			for i := 0; i < model.NumVars(); i++ {
				xFull[i] = model.Value(expr.Var{Index: i})
			}
			xCand := append([]float64(nil), xFull[:len(x)]...)
			modelMerit := obj.Quad.Value(xFull)
			candMerit := d.merit(xCand, mu)

			if math.IsNaN(candMerit) || math.IsNaN(modelMerit) {
				if d.Opts.Verbose {
					io.Pfred("> iter %d: mu=%.4g delta=%.4g: NaN merit, rejecting and shrinking trust region\n", iter, mu, delta)
				}
				delta *= d.Opts.TrustShrinkRatio
				if delta < d.Opts.MinTrustBoxSize {
					break
				}
				continue
			}

			approxImprove := trueMerit - modelMerit
			trueImprove := trueMerit - candMerit

			if d.Opts.Verbose {
				io.Pf("> iter %d: mu=%.4g delta=%.4g merit=%.6g approx_improve=%.3g true_improve=%.3g\n",
					iter, mu, delta, trueMerit, approxImprove, trueImprove)
			}

			if approxImprove/math.Abs(trueMerit) < d.Opts.MinApproxImproveFrac {
				break
			}

			if approxImprove <= 0 {
				if d.Opts.Verbose {
					io.Pfred("> iter %d: mu=%.4g delta=%.4g: no predicted improvement, rejecting and shrinking trust region\n", iter, mu, delta)
				}
				delta *= d.Opts.TrustShrinkRatio
			} else if trueImprove/approxImprove > d.Opts.ImproveRatioThreshold {
				x = xCand
				delta *= d.Opts.TrustExpandRatio
				if d.Opts.Verbose {
					io.Pfcyan("> iter %d: accepted step, expanding trust region to %.4g\n", iter, delta)
				}
			} else {
				if d.Opts.Verbose {
					io.Pfred("> iter %d: mu=%.4g delta=%.4g: improvement ratio %.3g below threshold, rejecting and shrinking trust region\n", iter, mu, delta, trueImprove/approxImprove)
				}
				delta *= d.Opts.TrustShrinkRatio
			}

			if delta < d.Opts.MinTrustBoxSize {
				break
			}
		}

		viol := d.violation(x)
		if viol <= d.Opts.ConstraintTol {
			if d.Opts.Verbose {
				io.PfYel("> converged: constraint violation %.3g within tolerance\n", viol)
			}
			return d.finish(x, Converged, iter, mu)
		}
		if penaltyStep >= d.Opts.MaxMeritCoeffIncreases {
			return d.finish(x, PenaltyIterationLimit, iter, mu)
		}
		if d.Opts.Verbose {
			io.Pfred("> iter %d: residual violation %.3g, growing mu %.4g -> %.4g\n", iter, viol, mu, mu*d.Opts.MeritCoeffIncreaseRatio)
		}
		mu *= d.Opts.MeritCoeffIncreaseRatio
		delta = d.Opts.TrustBoxSize
	}
}

func (d *Driver) finish(x []float64, status Status, iter int, mu float64) *Result {
	costVals := make(map[string]float64, len(d.Costs))
	for _, c := range d.Costs {
		costVals[c.Name()] = c.Value(x)
	}
	cntViols := make(map[string][]float64, len(d.Constraints))
	for _, c := range d.Constraints {
		cntViols[c.Name()] = c.Value(x)
	}
	return &Result{
		X: x, Status: status, Iterations: iter, MeritCoeff: mu,
		CostValues: costVals, ConstraintViolations: cntViols,
	}
}

// merit evaluates the true (nonlinear) ell-1 merit M(x) = sum of cost
// values plus mu times the total constraint violation.
func (d *Driver) merit(x []float64, mu float64) float64 {
	total := 0.0
	for _, c := range d.Costs {
		total += c.Value(x)
	}
	return total + mu*d.violation(x)
}

// violation is the ell-1 constraint violation: abs() for EQ rows,
// positive-part for INEQ rows.
func (d *Driver) violation(x []float64) float64 {
	var total float64
	for _, c := range d.Constraints {
		vals := c.Value(x)
		if c.Type() == costs.EQ {
			for _, v := range vals {
				total += math.Abs(v)
			}
		} else {
			for _, v := range vals {
				if v > 0 {
					total += v
				}
			}
		}
	}
	return total
}

// slackPrefix sanitizes a constraint name into a slack-variable name
// prefix unique enough not to collide across timesteps (spaces would
// otherwise break name-based debugging output).
func slackPrefix(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
