// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package problem builds a solvable trajectory-optimization problem (a
// variable layout, an initial primal and a list of costs/constraints)
// from a declarative JSON description, the way inp/sim.go decodes a
// .sim file: struct tags and encoding/json, no reflection-based config
// framework. It replaces the original optimizer's process-wide "current
// PCI" pointer with an explicit *BuildContext threaded through every
// cost/constraint factory.
package problem

import (
	"encoding/json"
	"fmt"
)

// ConfigError reports a malformed problem description, caught before any
// solve begins: bad JSON, an unknown cost/constraint type, a vector of
// the wrong length, an unknown link/manipulator, or an init_info that
// disagrees with start_fixed.
type ConfigError struct {
	Context string // e.g. "costs[2]", "init_info"
	Err     error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("trajopt config error in %s: %v", e.Context, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

func configErrf(context, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Context: context, Err: fmt.Errorf(format, args...)}
}

// BasicInfo is the top-level shape of a problem: discretization, which
// DOFs are pinned, and whether this is a belief-space problem.
type BasicInfo struct {
	NSteps      int    `json:"n_steps"`
	StartFixed  bool   `json:"start_fixed"`
	DofsFixed   []int  `json:"dofs_fixed"`
	BeliefSpace bool   `json:"belief_space"`
	Manip       string `json:"manip"`
	Robot       string `json:"robot"`
}

// InitInfo describes how to seed the initial trajectory: a fixed
// (stationary) posture repeated n_steps times, an explicit trajectory,
// or a straight line in joint space between the robot's current DOFs
// and an endpoint.
type InitInfo struct {
	Type     string      `json:"type"` // stationary | given_traj | straight_line
	Data     [][]float64 `json:"data,omitempty"`
	Endpoint []float64   `json:"endpoint,omitempty"`
}

// TermSpec is one entry of the costs[] or constraints[] array: a type
// tag dispatching to a registered factory, an optional display name, and
// factory-specific parameters decoded lazily.
type TermSpec struct {
	Type   string          `json:"type"`
	Name   string          `json:"name,omitempty"`
	Params json.RawMessage `json:"params"`
}

// ProblemSpec is the full JSON problem description: { basic_info, costs,
// constraints, init_info }.
type ProblemSpec struct {
	BasicInfo   BasicInfo  `json:"basic_info"`
	Costs       []TermSpec `json:"costs"`
	Constraints []TermSpec `json:"constraints"`
	InitInfo    InitInfo   `json:"init_info"`
}

// ParseProblemSpec decodes a JSON problem description, reporting any
// syntactic problem as a ConfigError rather than the raw json error.
func ParseProblemSpec(data []byte) (*ProblemSpec, error) {
	var spec ProblemSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, configErrf("<root>", "invalid JSON: %w", err)
	}
	return &spec, nil
}

// decodeParams unmarshals a TermSpec's raw params into dst, wrapping any
// failure as a ConfigError tagged with context.
func decodeParams(context string, raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return configErrf(context, "invalid params: %w", err)
	}
	return nil
}
