// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kinematics declares the interfaces the optimizer core consumes
// from the (external, out of scope) robot-state backend: forward
// kinematics, position Jacobians, DOF limits, and scoped state save. The
// backend is a process-shared mutable object -- setting DOF values
// mutates it -- so every read of a kinematics-dependent quantity must be
// bracketed by a Saver that restores the prior DOF values on Close.
package kinematics

// Link identifies one rigid link of the robot that collision checking or
// Cartesian costs can reference.
type Link interface {
	// Name returns the link's identifier, as used in JSON problem
	// descriptions and collision records.
	Name() string
	// Transform returns the link's current world rotation (3x3, row-major)
	// and translation.
	Transform() (R [3][3]float64, t [3]float64)
}

// Saver restores the robot's DOF values to what they were when Save was
// called. Close must be safe to call multiple times and on all exit paths
// (including panics via defer), mirroring the RAII scoped-state-save used
// by the original C++ optimizer's RobotStateSaver.
type Saver interface {
	Close()
}

// RobotModel is the kinematic backend contract: DOF bookkeeping, forward
// kinematics-derived Jacobians, and link lookups. It is a process-shared
// mutable object; callers that read kinematics-dependent quantities must
// bracket the mutation with Save()/Close().
type RobotModel interface {
	// DOF returns the number of active degrees of freedom.
	DOF() int
	// DOFValues returns a copy of the current joint values.
	DOFValues() []float64
	// SetDOFValues mutates the shared robot state.
	SetDOFValues(values []float64)
	// DOFLimits returns (lower, upper) bounds per DOF.
	DOFLimits() (lower, upper []float64)
	// Save snapshots the current DOF values; Close on the returned Saver
	// restores them.
	Save() Saver
	// AffectedLinks returns the links whose pose depends on the active
	// DOFs, and the DOF-space index of each.
	AffectedLinks() (links []Link, dofIndices []int)
	// PositionJacobian returns the (3 x DOF) Jacobian of a world point
	// rigidly attached to the named link, with respect to the active DOFs,
	// evaluated at the robot's current DOF values.
	PositionJacobian(linkIndex int, worldPoint [3]float64) [][]float64
	// GetLink looks up a link by name; ok is false if it does not exist.
	GetLink(name string) (link Link, ok bool)
}

// BeliefRobotModel extends RobotModel with the belief-space dynamics the
// EKF propagation and sigma-point collision evaluator need: dynamics,
// observation, the belief <-> (mean, sqrt-covariance) packing, and the
// belief-space position Jacobian.
type BeliefRobotModel interface {
	RobotModel

	// NTheta returns the width of one belief row: DOF + DOF*(DOF+1)/2.
	NTheta() int
	// UDim returns the control dimension (equal to DOF in this design).
	UDim() int
	// QDim returns the dimension of the dynamics-noise input.
	QDim() int
	// RDim returns the dimension of the observation-noise input.
	RDim() int

	// Dynamics returns the next mean given the current mean, a control and
	// a (possibly zero) process-noise sample.
	Dynamics(x, u, q []float64) []float64
	// Observe returns an observation of x given a (possibly zero)
	// observation-noise sample r.
	Observe(x, r []float64) []float64

	// ComposeBelief packs (x, sqrtSigma) into one theta vector, with
	// sqrtSigma's lower triangle stored column-major (j=0..n-1, i=j..n-1).
	ComposeBelief(x []float64, sqrtSigma [][]float64) []float64
	// DecomposeBelief is ComposeBelief's inverse; sqrtSigma's upper
	// triangle is left zero.
	DecomposeBelief(theta []float64) (x []float64, sqrtSigma [][]float64)

	// SigmaPoints returns 2*DOF+1 joint configurations (one per slice entry)
	// representing the Gaussian described by theta.
	SigmaPoints(theta []float64) [][]float64
	// BeliefJacobian returns the (3 x NTheta) Jacobian of a world point on
	// the given link, for the given sigma-point instance, with respect to
	// the belief coordinates.
	BeliefJacobian(linkIndex, instance int, worldPoint [3]float64) [][]float64
}
