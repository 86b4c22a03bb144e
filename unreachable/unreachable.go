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

// Package unreachable implements the unreachable-code analyzer: forward
// reachability from a function's entry, intersected with backward
// reachability from its terminals, yielding merged source-location warnings
// for nodes that can never execute yet are on the backward cone of some
// terminal.
package unreachable

import (
	"sort"

	"github.com/solflow-dev/solflow/diagnostic"
	"github.com/solflow-dev/solflow/flow"
	"github.com/solflow-dev/solflow/util"
)

// LocationSeen is the pass-wide de-duplication set for 5740, keyed by
// coalesced (Filename, StartOffset, EndOffset). Callers own its lifetime: it
// must persist across the whole pass and the same set must be passed into
// every call to Analyze.
type LocationSeen = util.Set[locationKey]

// NewLocationSeen creates an empty de-duplication set for Analyze.
func NewLocationSeen() LocationSeen {
	return util.NewSet[locationKey]()
}

type locationKey struct {
	file     string
	startOff int
	endOff   int
}

// Analyze returns the unreachable-code warnings for one function, in
// deterministic source order, skipping any coalesced span already reported
// earlier in the pass.
func Analyze(ff flow.FunctionFlow, previousUnreachable LocationSeen) []diagnostic.Diagnostic {
	reachable := forwardReachable(ff.Entry)

	var unreachable []flow.Location
	visited := map[flow.CFGNode]bool{}
	queue := []flow.CFGNode{}
	for _, root := range []flow.CFGNode{ff.Exit, ff.Revert, ff.TransactionReturn} {
		if root == nil || visited[root] {
			continue
		}
		visited[root] = true
		queue = append(queue, root)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if !reachable[n] {
			if loc := n.Location(); loc.Valid() {
				unreachable = append(unreachable, loc)
			}
		}

		for _, pred := range n.Entries() {
			if !visited[pred] {
				visited[pred] = true
				queue = append(queue, pred)
			}
		}
	}

	if len(unreachable) == 0 {
		return nil
	}

	sort.Slice(unreachable, func(i, j int) bool {
		a, b := unreachable[i], unreachable[j]
		if a.Start.Filename != b.Start.Filename {
			return a.Start.Filename < b.Start.Filename
		}
		return a.Start.Offset < b.Start.Offset
	})

	merged := mergeOverlapping(unreachable)

	var diags []diagnostic.Diagnostic
	for _, loc := range merged {
		key := locationKey{file: loc.Start.Filename, startOff: loc.Start.Offset, endOff: loc.End.Offset}
		if previousUnreachable.Has(key) {
			continue
		}
		previousUnreachable.Add(key)
		diags = append(diags, diagnostic.UnreachableCode(loc.Start))
	}
	return diags
}

// forwardReachable returns the set of nodes reachable from entry via Exits.
func forwardReachable(entry flow.CFGNode) map[flow.CFGNode]bool {
	reachable := map[flow.CFGNode]bool{entry: true}
	queue := []flow.CFGNode{entry}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, succ := range n.Exits() {
			if !reachable[succ] {
				reachable[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	return reachable
}

// mergeOverlapping coalesces nested and adjacent locations in a
// (Filename, StartOffset)-sorted slice into minimal non-overlapping spans.
func mergeOverlapping(sorted []flow.Location) []flow.Location {
	var merged []flow.Location
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if next.Start.Filename == cur.Start.Filename && next.Start.Offset <= cur.End.Offset {
			if next.End.Offset > cur.End.Offset {
				cur.End = next.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)
	return merged
}
