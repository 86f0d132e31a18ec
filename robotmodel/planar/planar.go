// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package planar implements kinematics.RobotModel and
// kinematics.BeliefRobotModel for a planar serial-revolute arm: the
// concrete robot backend cmd/trajopt and the problem and sqp tests use.
// It is grounded directly on the
// three-link "Finger" arm used throughout the original optimizer's
// belief.cpp (link lengths 0.16/0.16/0.08, dynamics/observation noise
// scales, and the state-dependent observation-noise formula lifted from
// the Platt et al. light-dark-domain example).
package planar

import (
	"math"
	"strconv"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/alexlee-gk/trajopt/belief"
	"github.com/alexlee-gk/trajopt/kinematics"
	"github.com/alexlee-gk/trajopt/numeric"
)

// Robot is an n-link planar serial-revolute arm: link i's distal end sits
// at the cumulative rotation of joints 0..i, offset from link i-1's
// distal end by Lengths[i] along that cumulative heading. Every link is
// also a kinematics.Link (its own name, its own current transform).
type Robot struct {
	lengths      []float64
	lower, upper []float64
	dof          []float64

	// kappa scales the belief-space sigma points (belief.SigmaPoints);
	// fixed at construction, not touched by Dynamics/Observe.
	kappa float64

	// dynNoise/obsNoise are the diagonal noise scales Dynamics/Observe
	// apply to q/r, taken verbatim from GetDynNoise/GetObsNoise in the
	// original optimizer's three-link demo and broadcast to n-link arms
	// by repeating the pattern (0.08, 0.13, 0.18 cycled) when n != 3.
	dynNoise []float64
	obsNoise []float64

	// lastTheta is cached by SigmaPoints for BeliefJacobian's use -- the
	// belief.Model contract doesn't thread a belief row back into that
	// call, so the robot model (a process-shared mutable object, like
	// every kinematics.RobotModel) remembers it the way it already
	// remembers dof.
	lastTheta []float64
}

// NewThreeLink builds the exact arm from the original optimizer's light-
// dark-domain demo: three 1-DOF revolute joints with link lengths
// 0.16, 0.16, 0.08, and DOF limits of +/- 2*pi on every joint.
func NewThreeLink() *Robot {
	return New([]float64{0.16, 0.16, 0.08})
}

// New builds a planar arm with one revolute joint per entry of lengths.
// DOF limits default to +/- 2*pi; override with SetDOFLimits.
func New(lengths []float64) *Robot {
	n := len(lengths)
	if n == 0 {
		chk.Panic("planar.New: need at least one link")
	}
	r := &Robot{
		lengths: append([]float64(nil), lengths...),
		lower:   make([]float64, n),
		upper:   make([]float64, n),
		dof:     make([]float64, n),
		kappa:   1.0,
	}
	for i := range r.lower {
		r.lower[i] = -2 * math.Pi
		r.upper[i] = 2 * math.Pi
	}
	r.dynNoise = cyclicNoise([]float64{0.08, 0.13, 0.18}, n)
	r.obsNoise = cyclicNoise([]float64{0.09, 0.09, 0.09}, n)
	return r
}

func cyclicNoise(pattern []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = pattern[i%len(pattern)]
	}
	return out
}

// SetDOFLimits overrides the default +/- 2*pi joint limits.
func (r *Robot) SetDOFLimits(lower, upper []float64) {
	if len(lower) != len(r.dof) || len(upper) != len(r.dof) {
		chk.Panic("planar.SetDOFLimits: need %d entries, got %d/%d", len(r.dof), len(lower), len(upper))
	}
	r.lower = append([]float64(nil), lower...)
	r.upper = append([]float64(nil), upper...)
}

// SetKappa overrides the sigma-point spread parameter (default 1).
func (r *Robot) SetKappa(kappa float64) { r.kappa = kappa }

func (r *Robot) DOF() int { return len(r.dof) }

func (r *Robot) DOFValues() []float64 { return append([]float64(nil), r.dof...) }

func (r *Robot) SetDOFValues(values []float64) {
	if len(values) != len(r.dof) {
		chk.Panic("planar.SetDOFValues: need %d values, got %d", len(r.dof), len(values))
	}
	copy(r.dof, values)
}

func (r *Robot) DOFLimits() (lower, upper []float64) {
	return append([]float64(nil), r.lower...), append([]float64(nil), r.upper...)
}

type saver struct {
	r   *Robot
	dof []float64
}

func (s *saver) Close() {
	if s.r == nil {
		return
	}
	copy(s.r.dof, s.dof)
	s.r = nil
}

func (r *Robot) Save() kinematics.Saver {
	return &saver{r: r, dof: r.DOFValues()}
}

// link is Robot's own kinematics.Link: the distal end of one arm segment.
type link struct {
	r   *Robot
	idx int // 0-based link index; depends on joints 0..idx
}

func (l *link) Name() string {
	if l.idx == len(l.r.lengths)-1 {
		return "Finger"
	}
	return linkName(l.idx)
}

func linkName(idx int) string { return "link" + strconv.Itoa(idx) }

func (l *link) Transform() (R [3][3]float64, t [3]float64) {
	return l.r.linkTransform(l.idx, l.r.dof)
}

// linkTransform is the pure forward-kinematics law underlying every Link,
// PositionJacobian and BeliefJacobian call: link idx's heading is the
// cumulative sum of joints 0..idx, and its tip is the chain of straight
// segments at those headings.
func (r *Robot) linkTransform(idx int, dofvals []float64) (R [3][3]float64, t [3]float64) {
	var heading float64
	var x, y float64
	for k := 0; k <= idx; k++ {
		heading += dofvals[k]
		x += r.lengths[k] * math.Cos(heading)
		y += r.lengths[k] * math.Sin(heading)
	}
	c, s := math.Cos(heading), math.Sin(heading)
	R = [3][3]float64{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
	t = [3]float64{x, y, 0}
	return
}

// jointOrigin is joint k's pivot: link k-1's tip, or the arm base for
// k==0.
func (r *Robot) jointOrigin(k int, dofvals []float64) [3]float64 {
	if k == 0 {
		return [3]float64{0, 0, 0}
	}
	_, t := r.linkTransform(k-1, dofvals)
	return t
}

func (r *Robot) AffectedLinks() (links []kinematics.Link, dofIndices []int) {
	n := len(r.lengths)
	links = make([]kinematics.Link, n)
	dofIndices = make([]int, n)
	for i := 0; i < n; i++ {
		links[i] = &link{r: r, idx: i}
		dofIndices[i] = i
	}
	return
}

// PositionJacobian is the standard planar-revolute velocity Jacobian: for
// a world point rigidly attached to link linkIndex, joint k (k <=
// linkIndex) contributes the instantaneous velocity of a point rotating
// about jointOrigin(k) at unit angular rate; joints beyond linkIndex
// don't affect it.
func (r *Robot) PositionJacobian(linkIndex int, worldPoint [3]float64) [][]float64 {
	n := len(r.dof)
	J := make([][]float64, 3)
	for row := range J {
		J[row] = make([]float64, n)
	}
	for k := 0; k <= linkIndex && k < n; k++ {
		origin := r.jointOrigin(k, r.dof)
		dx := worldPoint[0] - origin[0]
		dy := worldPoint[1] - origin[1]
		J[0][k] = -dy
		J[1][k] = dx
		J[2][k] = 0
	}
	return J
}

func (r *Robot) GetLink(name string) (kinematics.Link, bool) {
	n := len(r.lengths)
	for i := 0; i < n; i++ {
		l := &link{r: r, idx: i}
		if l.Name() == name {
			return l, true
		}
	}
	return nil, false
}

// -- belief-space extension, grounded on BeliefRobotAndDOF in belief.cpp --

func (r *Robot) NTheta() int { return belief.NTheta(len(r.dof)) }
func (r *Robot) UDim() int   { return len(r.dof) }
func (r *Robot) QDim() int   { return len(r.dof) }
func (r *Robot) RDim() int   { return 3 }

// Dynamics is dofs + u + diag(dynNoise)*q, the original's
// BeliefRobotAndDOF::Dynamics.
func (r *Robot) Dynamics(x, u, q []float64) []float64 {
	n := len(r.dof)
	if len(x) != n || len(u) != n || len(q) != n {
		chk.Panic("planar.Dynamics: dimension mismatch (n=%d, got x=%d u=%d q=%d)", n, len(x), len(u), len(q))
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = x[i] + u[i] + r.dynNoise[i]*q[i]
	}
	return out
}

// Observe returns the Finger link's world position plus a state-
// dependent noise term: z = trans + (0.5*(trans.y+0.2)^2+1) *
// diag(obsNoise) * r, the formula the original optimizer attributes to
// the Platt et al. light-dark domain -- observations get noisier the
// farther the fingertip is from the y = -0.2 "light" band.
func (r *Robot) Observe(x, rNoise []float64) []float64 {
	n := len(r.dof)
	if len(x) != n {
		chk.Panic("planar.Observe: x has length %d, want %d", len(x), n)
	}
	_, t := r.linkTransform(n-1, x)
	scale := 0.5*(t[1]+0.2)*(t[1]+0.2) + 1
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		noise := 0.0
		if i < len(rNoise) {
			noise = rNoise[i]
		}
		out[i] = t[i] + scale*r.obsNoise[i]*noise
	}
	return out
}

func (r *Robot) ComposeBelief(x []float64, sqrtSigma [][]float64) []float64 {
	return belief.Compose(x, sqrtSigma)
}

func (r *Robot) DecomposeBelief(theta []float64) (x []float64, sqrtSigma [][]float64) {
	return belief.Decompose(theta, len(r.dof))
}

func (r *Robot) SigmaPoints(theta []float64) [][]float64 {
	r.lastTheta = append([]float64(nil), theta...)
	x, sqrtSigma := belief.Decompose(theta, len(r.dof))
	return belief.SigmaPoints(x, sqrtSigma, r.kappa)
}

// BeliefJacobian differentiates, by central difference over the full
// belief row, the world position of a point rigidly attached to
// linkIndex at the instance-th sigma-point configuration derived from
// theta. It relies on the theta SigmaPoints last cached: the belief.Model
// contract (like RobotModel's DOF mutation) doesn't pass a belief row
// back into this call, so the robot keeps the one most recently expanded.
func (r *Robot) BeliefJacobian(linkIndex, instance int, worldPoint [3]float64) [][]float64 {
	if r.lastTheta == nil {
		chk.Panic("planar.BeliefJacobian: called before SigmaPoints cached a belief row")
	}
	n := len(r.dof)
	meanX, _ := belief.Decompose(r.lastTheta, n)
	Rmean, tmean := r.linkTransform(linkIndex, meanX)
	off := [3]float64{worldPoint[0] - tmean[0], worldPoint[1] - tmean[1], worldPoint[2] - tmean[2]}
	offLocal := rotateTranspose(Rmean, off)

	f := func(theta la.Vector) la.Vector {
		x, sqrtSigma := belief.Decompose(theta, n)
		pts := belief.SigmaPoints(x, sqrtSigma, r.kappa)
		xi := pts[instance]
		Ri, ti := r.linkTransform(linkIndex, xi)
		p := rotate(Ri, offLocal)
		return la.Vector{ti[0] + p[0], ti[1] + p[1], ti[2] + p[2]}
	}
	J := numeric.CalcNumJac(f, la.Vector(r.lastTheta), 0)
	out := make([][]float64, len(J))
	for i, row := range J {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func rotate(R [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		R[0][0]*v[0] + R[0][1]*v[1] + R[0][2]*v[2],
		R[1][0]*v[0] + R[1][1]*v[1] + R[1][2]*v[2],
		R[2][0]*v[0] + R[2][1]*v[1] + R[2][2]*v[2],
	}
}

func rotateTranspose(R [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		R[0][0]*v[0] + R[1][0]*v[1] + R[2][0]*v[2],
		R[0][1]*v[0] + R[1][1]*v[1] + R[2][1]*v[2],
		R[0][2]*v[0] + R[1][2]*v[1] + R[2][2]*v[2],
	}
}

var _ kinematics.RobotModel = (*Robot)(nil)
var _ kinematics.BeliefRobotModel = (*Robot)(nil)
