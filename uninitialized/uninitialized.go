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

// Package uninitialized implements the uninitialized-variable-access
// analyzer: a monotone forward dataflow over a function's CFG that computes,
// per node, the set of declared-but-not-assigned variables and the
// occurrences that read one of them, pruned by the revert predicate so that
// paths known to always revert do not produce false diagnostics.
package uninitialized

import (
	"sort"

	"github.com/solflow-dev/solflow/diagnostic"
	"github.com/solflow-dev/solflow/flow"
	"github.com/solflow-dev/solflow/revert"
	"github.com/solflow-dev/solflow/util"
)

// nodeInfo is the per-node dataflow state.
type nodeInfo struct {
	entryUnassigned util.Set[flow.VariableDeclaration]
	exitUnassigned  util.Set[flow.VariableDeclaration]
	uninitAccesses  util.Set[flow.VariableOccurrence]
}

func newNodeInfo() *nodeInfo {
	return &nodeInfo{
		entryUnassigned: util.NewSet[flow.VariableDeclaration](),
		exitUnassigned:  util.NewSet[flow.VariableDeclaration](),
		uninitAccesses:  util.NewSet[flow.VariableOccurrence](),
	}
}

// propagateFrom merges from's exit state into n's entry state, returning
// true if n's state grew as a result (and therefore n needs re-traversal).
func (n *nodeInfo) propagateFrom(from *nodeInfo) bool {
	grewUnassigned := n.entryUnassigned.UnionInto(from.exitUnassigned)
	grewAccesses := n.uninitAccesses.UnionInto(from.uninitAccesses)
	return grewUnassigned || grewAccesses
}

// Analyze runs the dataflow for one function and returns the diagnostics for
// its exit node's uninitialized accesses, in deterministic source order.
//
// previousVariableWarnings is the pass-wide de-duplication set for 6321
// (keyed by VariableDeclaration identity): callers own its lifetime (it must
// persist across the whole pass, per the pass driver's contract) and pass
// the same set into every call.
func Analyze(
	predicate *revert.Predicate,
	fn flow.Function,
	ff flow.FunctionFlow,
	emptyBody bool,
	contextContract flow.Contract,
	previousVariableWarnings util.Set[flow.VariableDeclaration],
) []diagnostic.Diagnostic {
	infos := map[flow.CFGNode]*nodeInfo{ff.Entry: newNodeInfo()}
	queue := []flow.CFGNode{ff.Entry}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		info := infos[n]

		unassigned := info.entryUnassigned.Clone()
		for _, occ := range n.Occurrences() {
			switch occ.Kind() {
			case flow.Assignment:
				unassigned.Remove(occ.Declaration())
			case flow.InlineAssembly, flow.Access, flow.Return:
				if unassigned.Has(occ.Declaration()) {
					info.uninitAccesses.Add(occ)
				}
			case flow.Declaration:
				unassigned.Add(occ.Declaration())
			}
		}
		info.exitUnassigned = unassigned

		// A node whose calls are known to always revert dead-ends here: the
		// path through it never reaches exit, so its state must not
		// propagate onward.
		if predicate.Reverts(n) {
			continue
		}

		for _, succ := range n.Exits() {
			succInfo, exists := infos[succ]
			if !exists {
				succInfo = newNodeInfo()
				infos[succ] = succInfo
			}
			if grew := succInfo.propagateFrom(info); grew || !exists {
				queue = append(queue, succ)
			}
		}
	}

	exitInfo, ok := infos[ff.Exit]
	if !ok || len(exitInfo.uninitAccesses) == 0 {
		return nil
	}

	occurrences := exitInfo.uninitAccesses.Slice()
	sort.Slice(occurrences, func(i, j int) bool { return occurrences[i].Less(occurrences[j]) })

	var diags []diagnostic.Diagnostic
	for _, occ := range occurrences {
		decl := occ.Declaration()
		primary := decl.Pos()
		if occ.HasPos() {
			primary = occ.Pos()
		}

		isStorage := decl.DataStoredIn(flow.DataLocationStorage)
		isCallData := decl.DataStoredIn(flow.DataLocationCallData)

		switch {
		case isStorage || isCallData:
			diags = append(diags, diagnostic.UninitializedReferenceAccess(
				primary, decl.Pos(), isStorage, occ.Kind() == flow.Return))
		case !emptyBody && decl.Name() == "":
			if previousVariableWarnings.Has(decl) {
				continue
			}
			previousVariableWarnings.Add(decl)

			owner, hasOwner := fn.Owner()
			sameContext := contextContract == nil || (hasOwner && contextContract == owner)
			contextName := ""
			if contextContract != nil {
				contextName = contextContract.Name()
			}
			diags = append(diags, diagnostic.UnassignedReturnVariable(decl.Pos(), sameContext, contextName))
		}
	}
	return diags
}
