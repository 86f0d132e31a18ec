// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package costs

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/alexlee-gk/trajopt/belief"
	"github.com/alexlee-gk/trajopt/collision"
	"github.com/alexlee-gk/trajopt/expr"
	"github.com/alexlee-gk/trajopt/kinematics"
	"github.com/alexlee-gk/trajopt/solver"
	"github.com/alexlee-gk/trajopt/solver/boxqp"
)

func TestJointPosCostConvexMatchesValue(tst *testing.T) {
	chk.PrintTitle("JointPosCostConvexMatchesValue")
	vars := expr.VarVector{{Index: 0, Name: "j_0_0"}, {Index: 1, Name: "j_0_1"}}
	c := NewJointPosCost("pos", vars, []float64{1, -1}, []float64{2, 3})
	x := []float64{1.5, 0.5}
	chk.Scalar(tst, "Value", 1e-12, c.Value(x), 2*(1.5-1)*(1.5-1)+3*(0.5-(-1))*(0.5-(-1)))

	var obj solver.ConvexObjective
	c.Convex(x, 0, nil, &obj)
	chk.Scalar(tst, "Convex matches Value at linearization point", 1e-9, obj.Quad.Value(x), c.Value(x))
}

func TestJointVelCostPenalizesDifference(tst *testing.T) {
	chk.PrintTitle("JointVelCostPenalizesDifference")
	row0 := expr.VarVector{{Index: 0, Name: "j_0_0"}}
	row1 := expr.VarVector{{Index: 1, Name: "j_1_0"}}
	c := NewJointVelCost("vel", []expr.VarVector{row0, row1}, []float64{4})
	x := []float64{1, 3}
	chk.Scalar(tst, "Value", 1e-12, c.Value(x), 4*(3-1)*(3-1))

	var obj solver.ConvexObjective
	c.Convex(x, 0, nil, &obj)
	chk.Scalar(tst, "Convex matches Value", 1e-9, obj.Quad.Value(x), c.Value(x))
}

func TestControlCostAndCnt(tst *testing.T) {
	chk.PrintTitle("ControlCostAndCnt")
	row := expr.VarVector{{Index: 0, Name: "u_0_0"}, {Index: 1, Name: "u_0_1"}}
	cost := NewControlCost("ctrl", []expr.VarVector{row}, []float64{1, 1})
	x := []float64{0.5, -0.5}
	chk.Scalar(tst, "Value", 1e-12, cost.Value(x), 0.5)

	cnt := NewControlCnt("ctrl_cnt", []expr.VarVector{row}, []float64{-1, -1}, []float64{1, 1})
	violations := cnt.Value(x)
	for _, v := range violations {
		if v > 0 {
			tst.Errorf("expected feasible point, got violation %g", v)
		}
	}
	var cnts solver.ConvexConstraints
	cnt.Convex(x, 0, &cnts)
	if len(cnts.IneqRows) != 4 {
		tst.Fatalf("expected 4 box rows for 2 coords, got %d", len(cnts.IneqRows))
	}
}

func TestCovarianceCostQuadraticForm(tst *testing.T) {
	chk.PrintTitle("CovarianceCostQuadraticForm")
	nDof := 2
	theta := expr.VarVector{
		{Index: 0, Name: "j_0_0"}, {Index: 1, Name: "j_0_1"},
		{Index: 2, Name: "cov_0_0_0"}, {Index: 3, Name: "cov_0_1_0"}, {Index: 4, Name: "cov_0_1_1"},
	}
	c := NewCovarianceCost("cov", theta, nDof, []float64{2, 3})
	x := []float64{0, 0, 1.0, 0.2, 0.9}
	// trace(Q*L*L^T) = q0*L00^2 + q1*(L10^2+L11^2)
	want := 2*1.0*1.0 + 3*(0.2*0.2+0.9*0.9)
	chk.Scalar(tst, "Value", 1e-9, c.Value(x), want)

	var obj solver.ConvexObjective
	c.Convex(x, 0, nil, &obj)
	chk.Scalar(tst, "Convex is exact (precomputed), not just a local match", 1e-9, obj.Quad.Value(x), want)
}

// tinyBeliefModel is a minimal belief.Model fixture independent of
// robotmodel/planar, reused here to test BeliefDynamicsConstraint in
// isolation.
type tinyBeliefModel struct{}

func (tinyBeliefModel) Dynamics(x, u, q []float64) []float64 {
	return []float64{x[0] + u[0] + 0.1*q[0], x[1] + u[1] + 0.1*q[1]}
}
func (tinyBeliefModel) Observe(x, r []float64) []float64 {
	return []float64{x[0] + 0.2*r[0], x[1] + 0.2*r[1]}
}
func (tinyBeliefModel) QDim() int { return 2 }
func (tinyBeliefModel) RDim() int { return 2 }

func TestBeliefDynamicsConstraintLinearizesAtPoint(tst *testing.T) {
	chk.PrintTitle("BeliefDynamicsConstraintLinearizesAtPoint")
	m := tinyBeliefModel{}
	nDof := 2
	L := [][]float64{{0.3, 0}, {0.05, 0.25}}
	theta0 := belief.Compose([]float64{0.2, -0.1}, L)
	u := []float64{0.05, -0.02}
	next := belief.BeliefDynamics(m, nDof, theta0, u)

	thetaVars := make(expr.VarVector, len(theta0))
	for i := range thetaVars {
		thetaVars[i] = expr.Var{Index: i, Name: "theta0"}
	}
	uVars := expr.VarVector{{Index: len(theta0), Name: "u0"}, {Index: len(theta0) + 1, Name: "u1"}}
	nextVars := make(expr.VarVector, len(next))
	base := len(theta0) + 2
	for i := range nextVars {
		nextVars[i] = expr.Var{Index: base + i, Name: "theta1"}
	}

	x := make([]float64, base+len(next))
	copy(x, theta0)
	copy(x[len(theta0):], u)
	copy(x[base:], next)

	c := NewBeliefDynamicsConstraint("bd", m, nDof, thetaVars, uVars, nextVars)
	viol := c.Value(x)
	for i, v := range viol {
		if math.Abs(v) > 1e-9 {
			tst.Errorf("row %d: expected ~0 violation at the true dynamics point, got %g", i, v)
		}
	}

	var cnts solver.ConvexConstraints
	c.Convex(x, 0, &cnts)
	if len(cnts.EqRows) != len(next) {
		tst.Fatalf("expected %d equality rows, got %d", len(next), len(cnts.EqRows))
	}
	for i, row := range cnts.EqRows {
		chk.Scalar(tst, "row value matches true violation at linearization point", 1e-6, row.Value(x), viol[i])
	}
}

// fakeRobot is a minimal kinematics.RobotModel with one link at a
// DOF-dependent position, enough to exercise CartPoseCost/Constraint and
// CartVelConstraint without a real kinematics backend.
type fakeRobot struct {
	dof    []float64
	limits struct{ lo, hi []float64 }
}

type fakeLink struct{ r *fakeRobot }

func (l fakeLink) Name() string { return "ee" }
func (l fakeLink) Transform() (R [3][3]float64, t [3]float64) {
	R = [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	t = [3]float64{l.r.dof[0], l.r.dof[1], 0}
	return
}

type fakeSaver struct {
	r    *fakeRobot
	prev []float64
}

func (s *fakeSaver) Close() { s.r.dof = s.prev }

func (r *fakeRobot) DOF() int              { return len(r.dof) }
func (r *fakeRobot) DOFValues() []float64  { return append([]float64(nil), r.dof...) }
func (r *fakeRobot) SetDOFValues(v []float64) { copy(r.dof, v) }
func (r *fakeRobot) DOFLimits() ([]float64, []float64) { return r.limits.lo, r.limits.hi }
func (r *fakeRobot) Save() kinematics.Saver {
	return &fakeSaver{r: r, prev: append([]float64(nil), r.dof...)}
}
func (r *fakeRobot) AffectedLinks() ([]kinematics.Link, []int) {
	return []kinematics.Link{fakeLink{r}}, []int{0}
}
func (r *fakeRobot) PositionJacobian(linkIndex int, worldPoint [3]float64) [][]float64 {
	return [][]float64{{1, 0}, {0, 1}, {0, 0}}
}
func (r *fakeRobot) GetLink(name string) (kinematics.Link, bool) {
	if name == "ee" {
		return fakeLink{r}, true
	}
	return nil, false
}

func TestCartPoseCostZeroAtTarget(tst *testing.T) {
	chk.PrintTitle("CartPoseCostZeroAtTarget")
	r := &fakeRobot{dof: []float64{0.5, 0.25}}
	vars := expr.VarVector{{Index: 0, Name: "j_0_0"}, {Index: 1, Name: "j_0_1"}}
	targetR := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	c := NewCartPoseCost("pose", r, "ee", vars, targetR, [3]float64{0.5, 0.25, 0}, 10)
	x := []float64{0.5, 0.25}
	chk.Scalar(tst, "zero cost exactly at target", 1e-12, c.Value(x), 0)

	x2 := []float64{0.6, 0.25}
	if c.Value(x2) <= 0 {
		tst.Errorf("expected positive cost away from target")
	}
}

func TestCartVelConstraintFlagsExcessSpeed(tst *testing.T) {
	chk.PrintTitle("CartVelConstraintFlagsExcessSpeed")
	r := &fakeRobot{dof: []float64{0, 0}}
	v0 := expr.VarVector{{Index: 0, Name: "j_0_0"}, {Index: 1, Name: "j_0_1"}}
	v1 := expr.VarVector{{Index: 2, Name: "j_1_0"}, {Index: 3, Name: "j_1_1"}}
	c := NewCartVelConstraint("vel", r, "ee", v0, v1, 0.1)
	x := []float64{0, 0, 1, 1}
	viol := c.Value(x)
	if viol[0] <= 0 {
		tst.Errorf("expected a positive violation for a large jump, got %g", viol[0])
	}
}

func TestCollisionCostHingeZeroBeyondPenetrationDepth(tst *testing.T) {
	chk.PrintTitle("CollisionCostHingeZeroBeyondPenetrationDepth")
	r := &fakeRobot{dof: []float64{0, 0}}
	vars := expr.VarVector{{Index: 0, Name: "j_0_0"}, {Index: 1, Name: "j_0_1"}}
	checker := &fakeChecker{dist: 0.2}
	eval := collision.NewSingleTimestepEvaluator(r, checker, vars)
	c := NewCollisionCost("coll", eval, 0.05, 10)
	x := []float64{0, 0}
	chk.Scalar(tst, "far contact contributes zero", 1e-12, c.Value(x), 0)

	model := boxqp.New()
	j0 := model.NewVar("j_0_0", -1e-9, 1e-9)
	j1 := model.NewVar("j_0_1", -1e-9, 1e-9)
	var obj solver.ConvexObjective
	c.Convex(x, 0, model, &obj)
	model.AddQuadObj(obj.Quad)
	if err := model.Solve(); err != nil {
		tst.Fatalf("unexpected solve error: %v", err)
	}
	chk.Scalar(tst, "dof vars pinned near origin", 1e-6, model.Value(j0), 0)
	chk.Scalar(tst, "dof vars pinned near origin", 1e-6, model.Value(j1), 0)
	if model.NumVars() <= 2 {
		tst.Fatalf("expected AddHinge to allocate a slack variable")
	}
}

type fakeChecker struct{ dist float64 }

func (f *fakeChecker) LinksVsAll(names []string) []collision.Collision {
	return []collision.Collision{{
		LinkA: names[0], LinkB: "obstacle",
		PtA: [3]float64{0, 0, 0}, PtB: [3]float64{f.dist, 0, 0},
		NormalB2A: [3]float64{-1, 0, 0}, Distance: f.dist, Weight: 1,
	}}
}
func (f *fakeChecker) CastVsAll(names []string, dofs0, dofs1 []float64) []collision.Collision {
	return nil
}
func (f *fakeChecker) MultiCastVsAll(names []string, configs [][]float64) []collision.Collision {
	return nil
}
func (f *fakeChecker) SetContactDistance(d float64) {}
