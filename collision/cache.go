// Copyright 2016 The Trajopt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

// cache holds the last computed collision list for one iteration key. It
// is valid for one linearization pass (value/convex/plot all touching the
// same x) and must be invalidated between outer SQP iterations.
//
// The original C++ optimizer keyed this cache on sum(x), a "poor-man's"
// fingerprint explicitly flagged as unsafe (two distinct states can
// collide). Per spec REDESIGN FLAGS, this cache instead keys on the SQP
// driver's iteration counter, supplied explicitly by the caller -- the
// same "valid within one pass, invalidated between iterations" contract
// without the hash-collision risk.
//
// The iteration key only identifies one x within the Convex linearization
// pass, where x is fixed for the whole iteration. The nonlinear Value path
// is called at two different x within a single outer iteration (the
// current primal and a rejected candidate), so callers must bypass this
// cache for that path entirely rather than keying it on the iteration too.
type cache struct {
	iter       int
	haveResult bool
	result     []Collision
}

// Get returns the cached result for iter, if any.
func (c *cache) Get(iter int) ([]Collision, bool) {
	if c.haveResult && c.iter == iter {
		return c.result, true
	}
	return nil, false
}

// Put stores the result for iter, discarding any prior entry.
func (c *cache) Put(iter int, result []Collision) {
	c.iter = iter
	c.haveResult = true
	c.result = result
}
