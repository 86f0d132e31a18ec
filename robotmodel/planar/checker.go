// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package planar

import (
	"fmt"
	"math"

	"github.com/alexlee-gk/trajopt/collision"
)

// Circle is one static circular obstacle in the arm's plane.
type Circle struct {
	Center [2]float64
	Radius float64
}

// CircleChecker implements collision.Checker against a fixed set of
// circular obstacles: every link is treated as a capsule of LinkRadius
// running from its proximal joint to its distal tip, and a contact is
// reported whenever a capsule's distance to an obstacle drops below the
// configured contact distance. It is the simplest fixture that can drive
// the collision cost pipeline end to end for a planar arm; none of this
// is part of the original RobotAndDOF/collision-checker pair, which
// delegated to OpenRAVE/FCL (out of scope per spec.md's Non-goals).
type CircleChecker struct {
	rad         *Robot
	obstacles   []Circle
	linkRadius  float64
	contactDist float64
	castSamples int
}

// NewCircleChecker builds a checker over rad's links and the given
// obstacles. linkRadius is the capsule radius every link is inflated by.
func NewCircleChecker(rad *Robot, obstacles []Circle, linkRadius float64) *CircleChecker {
	return &CircleChecker{rad: rad, obstacles: obstacles, linkRadius: linkRadius, castSamples: 10}
}

func (c *CircleChecker) SetContactDistance(d float64) { c.contactDist = d }

func (c *CircleChecker) LinksVsAll(linkNames []string) []collision.Collision {
	return c.segmentsVsAll(linkNames, c.rad.DOFValues(), 0)
}

func (c *CircleChecker) CastVsAll(linkNames []string, dofs0, dofs1 []float64) []collision.Collision {
	var out []collision.Collision
	n := c.castSamples
	for s := 0; s <= n; s++ {
		t := float64(s) / float64(n)
		dofs := lerp(dofs0, dofs1, t)
		out = append(out, c.segmentsVsAll(linkNames, dofs, t)...)
	}
	return out
}

// MultiCastVsAll reports contacts across every sigma-point configuration,
// tagging each with a Mix identifying which instance produced it -- the
// belief-space collision evaluator reads this back to build the
// alpha-weighted mixture of signed-distance expressions (spec.md 4.6).
func (c *CircleChecker) MultiCastVsAll(linkNames []string, configs [][]float64) []collision.Collision {
	var out []collision.Collision
	for instance, dofs := range configs {
		for _, col := range c.segmentsVsAll(linkNames, dofs, 0) {
			col.Mix = &collision.MixInfo{Alpha: []float64{1}, InstanceInd: []int{instance}}
			out = append(out, col)
		}
	}
	return out
}

func lerp(a, b []float64, t float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] + t*(b[i]-a[i])
	}
	return out
}

func (c *CircleChecker) segmentsVsAll(linkNames []string, dofs []float64, t float64) []collision.Collision {
	tracked := make(map[string]bool, len(linkNames))
	for _, n := range linkNames {
		tracked[n] = true
	}
	var out []collision.Collision
	for idx := 0; idx < len(c.rad.lengths); idx++ {
		l := &link{r: c.rad, idx: idx}
		if !tracked[l.Name()] {
			continue
		}
		origin := c.rad.jointOrigin(idx, dofs)
		_, tip := c.rad.linkTransform(idx, dofs)
		p0 := [2]float64{origin[0], origin[1]}
		p1 := [2]float64{tip[0], tip[1]}
		for obsIdx, obs := range c.obstacles {
			closest, _ := closestPointOnSegment(p0, p1, obs.Center)
			d := math.Hypot(closest[0]-obs.Center[0], closest[1]-obs.Center[1])
			dist := d - obs.Radius - c.linkRadius
			if dist > c.contactDist {
				continue
			}
			var normal [3]float64
			if d > 1e-9 {
				normal = [3]float64{(closest[0] - obs.Center[0]) / d, (closest[1] - obs.Center[1]) / d, 0}
			} else {
				normal = [3]float64{1, 0, 0}
			}
			ptA := [3]float64{closest[0], closest[1], 0}
			ptB := [3]float64{obs.Center[0] + normal[0]*obs.Radius, obs.Center[1] + normal[1]*obs.Radius, 0}
			out = append(out, collision.Collision{
				LinkA: l.Name(), LinkB: fmt.Sprintf("obstacle_%d", obsIdx),
				PtA: ptA, PtB: ptB, NormalB2A: normal,
				Distance: dist, Weight: 1, Time: t,
			})
		}
	}
	return out
}

// closestPointOnSegment returns the point on segment p0-p1 closest to c,
// and the parameter u in [0,1] it sits at.
func closestPointOnSegment(p0, p1, c [2]float64) (closest [2]float64, u float64) {
	dx, dy := p1[0]-p0[0], p1[1]-p0[1]
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		return p0, 0
	}
	u = ((c[0]-p0[0])*dx + (c[1]-p0[1])*dy) / lenSq
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	return [2]float64{p0[0] + u*dx, p0[1] + u*dy}, u
}

var _ collision.Checker = (*CircleChecker)(nil)
