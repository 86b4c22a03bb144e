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

package goflow

import (
	"go/token"
	"go/types"

	"golang.org/x/tools/go/cfg"

	"github.com/solflow-dev/solflow/flow"
)

type nodeKind int

const (
	kindNormal nodeKind = iota
	kindRevert
	kindTransactionReturn
)

// funcGraph holds the per-function state shared by every node wrapping one
// of its blocks: the declaration table (so the same *types.Var always maps
// to the same flow.VariableDeclaration handle), the parameter/named-result
// classification needed for occurrence extraction, and the block adjacency
// computed once when the graph is built (go/cfg exposes only successors;
// predecessors are inverted here).
type funcGraph struct {
	fset         *token.FileSet
	info         *types.Info
	decls        *declTable
	params       map[*types.Var]bool
	namedResults []*declaration
	universe     *universe

	succs map[*node][]*node
	preds map[*node][]*node
}

// node wraps one basic block of a function's control-flow graph, or one of
// the two synthesized terminal sentinels (kindRevert, kindTransactionReturn)
// that every panic/os.Exit-style exit in the function funnels into -- the
// same single-revert-terminal, single-transaction-return-terminal shape
// flow.FunctionFlow expects.
type node struct {
	g     *funcGraph
	block *cfg.Block // nil for a synthesized sentinel
	kind  nodeKind

	// entryDecls lists named-result declarations that come into scope
	// unassigned the moment the function starts, synthesized as Declaration
	// occurrences the first time Occurrences is computed. Set only on the
	// function's entry node.
	entryDecls []*declaration

	occsBuilt bool
	occs      []*occurrence
	callsBuilt bool
	calls     []*callSite
}

// Location implements flow.CFGNode.
func (n *node) Location() flow.Location {
	if n.block == nil || len(n.block.Nodes) == 0 {
		return flow.Location{}
	}
	first := n.block.Nodes[0]
	last := n.block.Nodes[len(n.block.Nodes)-1]
	return flow.Location{
		Start: n.g.fset.Position(first.Pos()),
		End:   n.g.fset.Position(last.End()),
	}
}

// Occurrences implements flow.CFGNode.
func (n *node) Occurrences() []flow.VariableOccurrence {
	if !n.occsBuilt {
		n.occsBuilt = true
		for _, d := range n.entryDecls {
			n.occs = append(n.occs, &occurrence{decl: d, kind: flow.Declaration, pos: d.Pos(), hasPos: true})
		}
		if n.block != nil {
			for _, frag := range n.block.Nodes {
				n.occs = append(n.occs, extractOccurrences(
					frag, n.g.info, n.g.fset, n.g.decls, n.g.params, n.g.namedResults, n.g.universe)...)
			}
		}
	}
	out := make([]flow.VariableOccurrence, len(n.occs))
	for i, o := range n.occs {
		out[i] = o
	}
	return out
}

// Calls implements flow.CFGNode.
func (n *node) Calls() []flow.CallSite {
	if !n.callsBuilt {
		n.callsBuilt = true
		if n.block != nil {
			for _, frag := range n.block.Nodes {
				n.calls = append(n.calls, extractCallSites(frag, n.g.universe, n.g.info)...)
			}
		}
	}
	out := make([]flow.CallSite, len(n.calls))
	for i, c := range n.calls {
		out[i] = c
	}
	return out
}

// Exits implements flow.CFGNode.
func (n *node) Exits() []flow.CFGNode {
	succs := n.g.succs[n]
	out := make([]flow.CFGNode, len(succs))
	for i, s := range succs {
		out[i] = s
	}
	return out
}

// Entries implements flow.CFGNode.
func (n *node) Entries() []flow.CFGNode {
	preds := n.g.preds[n]
	out := make([]flow.CFGNode, len(preds))
	for i, p := range preds {
		out[i] = p
	}
	return out
}
