// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/kinematics"
)

// Evaluator is the contract CollisionCost programs against: the nonlinear
// distances (for Cost.Value) and their convex linearization (for
// Cost.Convex). Results are cached per outer-iteration key when iter >= 0;
// CollisionCost.Value passes iter = -1, which bypasses the cache.
type Evaluator interface {
	// CalcDists returns the true signed distances and weights at primal x.
	CalcDists(x []float64, iter int) (dists, weights []float64)
	// CalcDistExpressions returns affine distance expressions linearized
	// at primal x, and their weights.
	CalcDistExpressions(x []float64, iter int) (exprs []expr.Aff, weights []float64)
}

func getVec(x []float64, vars expr.VarVector) []float64 { return vars.Values(x) }

// ---- single timestep ----

// SingleTimestepEvaluator checks the tracked links against the whole
// environment at one timestep's joint values.
type SingleTimestepEvaluator struct {
	rad       kinematics.RobotModel
	checker   Checker
	vars      expr.VarVector
	linkIndex map[string]int
	links     []string
	cache     cache
}

// NewSingleTimestepEvaluator builds an evaluator tracking every link
// affected by rad's active DOFs.
func NewSingleTimestepEvaluator(rad kinematics.RobotModel, checker Checker, vars expr.VarVector) *SingleTimestepEvaluator {
	links, inds := rad.AffectedLinks()
	return &SingleTimestepEvaluator{
		rad: rad, checker: checker, vars: vars,
		linkIndex: linkIndexOf(links, inds), links: linkNames(links),
	}
}

// collisions computes the collision list at x, caching it under iter. A
// negative iter marks the nonlinear Value path: it bypasses the cache
// entirely and always recomputes fresh, since within one outer iteration
// Value and Convex are each called at a different x (the current primal
// and the candidate primal in sqp.Driver.Optimize) and a single shared
// cache slot would alias the two.
func (e *SingleTimestepEvaluator) collisions(x []float64, iter int) []Collision {
	if iter >= 0 {
		if cached, ok := e.cache.Get(iter); ok {
			return cached
		}
	}
	e.rad.SetDOFValues(getVec(x, e.vars))
	result := e.checker.LinksVsAll(e.links)
	if iter >= 0 {
		e.cache.Put(iter, result)
	}
	return result
}

func (e *SingleTimestepEvaluator) CalcDists(x []float64, iter int) ([]float64, []float64) {
	tracked := boolSet(e.links)
	return distancesAndWeights(e.collisions(x, iter), tracked)
}

func (e *SingleTimestepEvaluator) CalcDistExpressions(x []float64, iter int) ([]expr.Aff, []float64) {
	dofvals := getVec(x, e.vars)
	return distanceExpressions(e.collisions(x, iter), e.rad, e.linkIndex, e.vars, dofvals)
}

// ---- continuous (cast) ----

// CastEvaluator checks the swept volume between two adjacent timesteps.
type CastEvaluator struct {
	rad        kinematics.RobotModel
	checker    Checker
	vars0, vars1 expr.VarVector
	linkIndex  map[string]int
	links      []string
	cache      cache
}

// NewCastEvaluator builds a swept-volume evaluator between vars0 and vars1.
func NewCastEvaluator(rad kinematics.RobotModel, checker Checker, vars0, vars1 expr.VarVector) *CastEvaluator {
	links, inds := rad.AffectedLinks()
	return &CastEvaluator{
		rad: rad, checker: checker, vars0: vars0, vars1: vars1,
		linkIndex: linkIndexOf(links, inds), links: linkNames(links),
	}
}

// collisions: see SingleTimestepEvaluator.collisions for the iter<0
// cache-bypass contract.
func (e *CastEvaluator) collisions(x []float64, iter int) []Collision {
	if iter >= 0 {
		if cached, ok := e.cache.Get(iter); ok {
			return cached
		}
	}
	dofvals0 := getVec(x, e.vars0)
	dofvals1 := getVec(x, e.vars1)
	e.rad.SetDOFValues(dofvals0)
	result := e.checker.CastVsAll(e.links, dofvals0, dofvals1)
	if iter >= 0 {
		e.cache.Put(iter, result)
	}
	return result
}

func (e *CastEvaluator) CalcDists(x []float64, iter int) ([]float64, []float64) {
	tracked := boolSet(e.links)
	return distancesAndWeights(e.collisions(x, iter), tracked)
}

func (e *CastEvaluator) CalcDistExpressions(x []float64, iter int) ([]expr.Aff, []float64) {
	dofvals0 := getVec(x, e.vars0)
	dofvals1 := getVec(x, e.vars1)
	return castDistanceExpressions(e.collisions(x, iter), e.rad, e.linkIndex, e.vars0, e.vars1, dofvals0, dofvals1)
}

// ---- sigma points (belief) ----

// SigmaPtsEvaluator checks the swept hull of the 2*DOF+1 sigma-point
// configurations representing a belief-space state.
type SigmaPtsEvaluator struct {
	brad      kinematics.BeliefRobotModel
	checker   Checker
	thetaVars expr.VarVector
	linkIndex map[string]int
	links     []string
	cache     cache
}

// NewSigmaPtsEvaluator builds a sigma-point collision evaluator over the
// belief variables thetaVars.
func NewSigmaPtsEvaluator(brad kinematics.BeliefRobotModel, checker Checker, thetaVars expr.VarVector) *SigmaPtsEvaluator {
	links, inds := brad.AffectedLinks()
	return &SigmaPtsEvaluator{
		brad: brad, checker: checker, thetaVars: thetaVars,
		linkIndex: linkIndexOf(links, inds), links: linkNames(links),
	}
}

// collisions: see SingleTimestepEvaluator.collisions for the iter<0
// cache-bypass contract.
func (e *SigmaPtsEvaluator) collisions(x []float64, iter int) []Collision {
	if iter >= 0 {
		if cached, ok := e.cache.Get(iter); ok {
			return cached
		}
	}
	theta := getVec(x, e.thetaVars)
	sigmaPts := e.brad.SigmaPoints(theta)
	configs := make([][]float64, len(sigmaPts))
	copy(configs, sigmaPts)
	result := e.checker.MultiCastVsAll(e.links, configs)
	if iter >= 0 {
		e.cache.Put(iter, result)
	}
	return result
}

func (e *SigmaPtsEvaluator) CalcDists(x []float64, iter int) ([]float64, []float64) {
	tracked := boolSet(e.links)
	return distancesAndWeights(e.collisions(x, iter), tracked)
}

func (e *SigmaPtsEvaluator) CalcDistExpressions(x []float64, iter int) ([]expr.Aff, []float64) {
	theta := getVec(x, e.thetaVars)
	return beliefDistanceExpressions(e.collisions(x, iter), e.brad, e.linkIndex, e.thetaVars, theta)
}

func boolSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
