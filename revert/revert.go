// Copyright (c) 2025 The solflow Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package revert implements the recursive may-revert predicate: a memoized
// inter-procedural analysis over the call graph used to prune paths known to
// always revert before the uninitialized-access dataflow propagates through
// them.
package revert

import (
	"github.com/solflow-dev/solflow/flow"
	"github.com/solflow-dev/solflow/resolver"
)

// state is the tri-state memo value for a function key. The Pending state is
// load-bearing: it breaks recursion on cyclic call graphs without forcing a
// conservative answer before the cycle's own traversal completes.
type state int

const (
	pending state = iota
	reverting
	noRevert
)

// key identifies a function for memoization purposes: the function's own
// owning contract (nil for a free function) paired with the function
// itself. Note this is deliberately NOT keyed on the context contract used
// for virtual dispatch -- by the time a callee reaches the memo, virtual
// resolution has already selected the correct override, so the function
// value itself already encodes that choice.
type key struct {
	owner flow.Contract
	fn    flow.Function
}

// Predicate evaluates mayRevert(contextContract, function) for a single
// top-level function analysis. It must be recreated (or Reset) once per
// top-level function the pass driver analyzes: the memo's lifetime is scoped
// to that one analysis, not to the whole pass.
type Predicate struct {
	cfg    flow.CFG
	memo   map[key]state
	// contextContract is the most-derived contract under analysis for the
	// whole top-level function being analyzed. It is threaded unchanged
	// through every recursive call-site resolution, because virtual
	// dispatch always binds against the single most-derived contract of
	// the execution, not the lexical owner of the function currently being
	// inspected.
	contextContract flow.Contract
}

// NewPredicate creates a revert predicate scoped to one top-level function
// analysis, resolving virtual dispatch against contextContract.
func NewPredicate(cfg flow.CFG, contextContract flow.Contract) *Predicate {
	return &Predicate{cfg: cfg, memo: make(map[key]state), contextContract: contextContract}
}

// Reset clears the memo for reuse on the next top-level function analysis,
// avoiding a fresh allocation per function.
func (p *Predicate) Reset(contextContract flow.Contract) {
	clear(p.memo)
	p.contextContract = contextContract
}

// MayRevert reports whether every path through fn (resolved in the context
// of p.contextContract for any nested virtual dispatch) reverts, i.e. no
// path reaches fn's exit. Unimplemented functions are conservatively
// considered non-reverting, so that an absent body does not silently
// suppress uninitialized-access warnings.
//
// The result is true iff the final memo state is reverting or still
// pending at return; only noRevert is a definitive non-reverting answer.
// This matches the intent of pruning paths "known to always revert":
// unknown/cyclic cases are conservatively pruned.
func (p *Predicate) MayRevert(fn flow.Function) bool {
	k := functionKey(fn)
	if s, ok := p.memo[k]; ok {
		return s != noRevert
	}

	p.memo[k] = pending
	if !fn.IsImplemented() {
		p.memo[k] = noRevert
		return false
	}

	owner, _ := fn.Owner()
	ff := p.cfg.FunctionFlow(fn, owner)

	visited := map[flow.CFGNode]bool{ff.Entry: true}
	queue := []flow.CFGNode{ff.Entry}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if n == ff.Exit {
			p.memo[k] = noRevert
			return false
		}

		// If this node reverts, its path dead-ends here: do not propagate
		// to its successors, but keep exploring the rest of the frontier --
		// a sibling branch may still reach exit cleanly.
		if p.nodeCallsRevertingCallee(n) {
			continue
		}

		for _, succ := range n.Exits() {
			if !visited[succ] {
				visited[succ] = true
				queue = append(queue, succ)
			}
		}
	}

	// No path reached exit without passing through a reverting call site.
	p.memo[k] = reverting
	return true
}

// Reverts reports whether any call site within n resolves to a callee for
// which MayRevert holds. It is the per-node revert-pruning test used by
// package uninitialized before propagating dataflow out of a node.
func (p *Predicate) Reverts(n flow.CFGNode) bool {
	return p.nodeCallsRevertingCallee(n)
}

// nodeCallsRevertingCallee reports whether any call site within n resolves
// to a callee whose memoized revert state is reverting or pending (not a
// definitive non-reverting answer).
func (p *Predicate) nodeCallsRevertingCallee(n flow.CFGNode) bool {
	for _, site := range n.Calls() {
		callee, ok, err := resolver.Resolve(site, p.contextContract)
		if err != nil {
			panic(err)
		}
		if !ok {
			// Missing call-site declaration: treated as non-reverting.
			continue
		}
		if p.MayRevert(callee) {
			return true
		}
	}
	return false
}

func functionKey(fn flow.Function) key {
	owner, _ := fn.Owner()
	return key{owner: owner, fn: fn}
}
