// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package collision declares the (external, out of scope) collision
// backend contract and implements the linearization pipeline that turns
// raw contacts into affine signed-distance expressions in joint
// variables, for single-step, continuous (cast) and sigma-point
// (belief) collision evaluators.
package collision

// MixInfo carries the sigma-point mixture weights for a belief-mode
// collision record: the contact's distance is a weighted sum over the
// sigma-point instances that produced it.
type MixInfo struct {
	Alpha        []float64 // mixture weight per contributing instance
	InstanceInd  []int     // sigma-point index (0 = mean) per contributing instance
}

// Collision is one contact between two links (or a link and the static
// environment), as reported by the backend.
type Collision struct {
	LinkA, LinkB       string
	PtA, PtB           [3]float64 // world-space contact points
	NormalB2A          [3]float64 // unit normal from B to A
	Distance           float64    // negative = penetration
	Weight             float64
	Time               float64  // interpolation parameter in [0,1] for cast contacts
	Mix                *MixInfo // set only for sigma-point (belief) contacts
}

// Checker is the (external) collision-detection backend the evaluators
// consume: single-timestep queries, swept (cast) queries between two
// configurations, and multi-configuration (sigma-point) queries.
type Checker interface {
	// LinksVsAll returns all contacts involving any of the given links at
	// the robot's current DOF values.
	LinksVsAll(linkNames []string) []Collision
	// CastVsAll returns contacts for the swept volume between dofs0 and
	// dofs1.
	CastVsAll(linkNames []string, dofs0, dofs1 []float64) []Collision
	// MultiCastVsAll returns contacts for the swept hull across all the
	// given configurations (one per sigma point).
	MultiCastVsAll(linkNames []string, configs [][]float64) []Collision
	// SetContactDistance configures how far from an actual penetration the
	// backend still reports a contact; each collision-cost factory sets
	// this to its own dist_pen plus a margin, so the last one built wins.
	SetContactDistance(d float64)
}
