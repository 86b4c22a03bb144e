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

package unreachable_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solflow-dev/solflow/flow"
	"github.com/solflow-dev/solflow/unreachable"
)

type fakeNode struct {
	loc     flow.Location
	exits   []flow.CFGNode
	entries []flow.CFGNode
}

func (n *fakeNode) Location() flow.Location                { return n.loc }
func (n *fakeNode) Occurrences() []flow.VariableOccurrence { return nil }
func (n *fakeNode) Calls() []flow.CallSite                  { return nil }
func (n *fakeNode) Exits() []flow.CFGNode                   { return n.exits }
func (n *fakeNode) Entries() []flow.CFGNode                 { return n.entries }

func locAt(file string, start, end int) flow.Location {
	return flow.Location{
		Start: token.Position{Filename: file, Offset: start, Line: start},
		End:   token.Position{Filename: file, Offset: end, Line: end},
	}
}

// link wires a->b as a successor/predecessor pair.
func link(a, b *fakeNode) {
	a.exits = append(a.exits, b)
	b.entries = append(b.entries, a)
}

func TestAnalyze_AllReachableNoDiagnostics(t *testing.T) {
	entry := &fakeNode{loc: locAt("a.go", 1, 2)}
	exit := &fakeNode{loc: locAt("a.go", 3, 4)}
	link(entry, exit)

	ff := flow.FunctionFlow{Entry: entry, Exit: exit}
	diags := unreachable.Analyze(ff, unreachable.NewLocationSeen())
	require.Empty(t, diags)
}

func TestAnalyze_DeadNodeOnExitConeReported(t *testing.T) {
	entry := &fakeNode{loc: locAt("a.go", 1, 2)}
	exit := &fakeNode{loc: locAt("a.go", 10, 11)}
	dead := &fakeNode{loc: locAt("a.go", 5, 6)}
	link(entry, exit)
	// dead is a predecessor of exit (on its backward cone) but never
	// forward-reachable from entry.
	link(dead, exit)

	ff := flow.FunctionFlow{Entry: entry, Exit: exit}
	diags := unreachable.Analyze(ff, unreachable.NewLocationSeen())
	require.Len(t, diags, 1)
	require.Equal(t, 5740, diags[0].Code)
}

func TestAnalyze_InvalidLocationSkipped(t *testing.T) {
	entry := &fakeNode{loc: locAt("a.go", 1, 2)}
	exit := &fakeNode{loc: locAt("a.go", 10, 11)}
	dead := &fakeNode{} // zero Location is invalid
	link(entry, exit)
	link(dead, exit)

	ff := flow.FunctionFlow{Entry: entry, Exit: exit}
	diags := unreachable.Analyze(ff, unreachable.NewLocationSeen())
	require.Empty(t, diags)
}

func TestAnalyze_OverlappingSpansMerged(t *testing.T) {
	entry := &fakeNode{loc: locAt("a.go", 1, 2)}
	exit := &fakeNode{loc: locAt("a.go", 30, 31)}
	dead1 := &fakeNode{loc: locAt("a.go", 5, 10)}
	dead2 := &fakeNode{loc: locAt("a.go", 8, 15)} // overlaps dead1
	link(entry, exit)
	link(dead1, exit)
	link(dead2, exit)

	ff := flow.FunctionFlow{Entry: entry, Exit: exit}
	diags := unreachable.Analyze(ff, unreachable.NewLocationSeen())
	require.Len(t, diags, 1)
}

func TestAnalyze_DedupedAcrossCalls(t *testing.T) {
	entry := &fakeNode{loc: locAt("a.go", 1, 2)}
	exit := &fakeNode{loc: locAt("a.go", 10, 11)}
	dead := &fakeNode{loc: locAt("a.go", 5, 6)}
	link(entry, exit)
	link(dead, exit)

	ff := flow.FunctionFlow{Entry: entry, Exit: exit}
	seen := unreachable.NewLocationSeen()

	first := unreachable.Analyze(ff, seen)
	require.Len(t, first, 1)

	second := unreachable.Analyze(ff, seen)
	require.Empty(t, second)
}

func TestAnalyze_RevertAndTransactionReturnAreRoots(t *testing.T) {
	entry := &fakeNode{loc: locAt("a.go", 1, 2)}
	exit := &fakeNode{loc: locAt("a.go", 10, 11)}
	revertTerm := &fakeNode{loc: locAt("a.go", 20, 21)}
	dead := &fakeNode{loc: locAt("a.go", 5, 6)}
	link(entry, exit)
	link(entry, revertTerm)
	// dead is an extra predecessor of revertTerm, never itself
	// forward-reachable from entry.
	link(dead, revertTerm)

	ff := flow.FunctionFlow{Entry: entry, Exit: exit, Revert: revertTerm}
	diags := unreachable.Analyze(ff, unreachable.NewLocationSeen())
	require.Len(t, diags, 1)
}
