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

package pass_test

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solflow-dev/solflow/diagnostic"
	"github.com/solflow-dev/solflow/flow"
	"github.com/solflow-dev/solflow/pass"
)

type fakeNode struct {
	loc   flow.Location
	occs  []flow.VariableOccurrence
	exits []flow.CFGNode
}

func (n *fakeNode) Location() flow.Location                { return n.loc }
func (n *fakeNode) Occurrences() []flow.VariableOccurrence { return n.occs }
func (n *fakeNode) Calls() []flow.CallSite                  { return nil }
func (n *fakeNode) Exits() []flow.CFGNode                   { return n.exits }
func (n *fakeNode) Entries() []flow.CFGNode                 { return nil }

type fakeFunction struct {
	name        string
	implemented bool
	free        bool
	bodyEmpty   bool
	owner       *fakeContract
	base        []flow.Function
	ff          flow.FunctionFlow
}

func (f *fakeFunction) IsImplemented() bool       { return f.implemented }
func (f *fakeFunction) BodyEmpty() bool           { return f.bodyEmpty }
func (f *fakeFunction) IsFree() bool              { return f.free }
func (f *fakeFunction) BaseFunctions() []flow.Function { return f.base }
func (f *fakeFunction) Name() string              { return f.name }
func (f *fakeFunction) Owner() (flow.Contract, bool) {
	if f.owner == nil {
		return nil, false
	}
	return f.owner, true
}
func (f *fakeFunction) ResolveVirtual(_, _ flow.Contract) flow.Function { return f }

type fakeContract struct {
	name     string
	base     []flow.Contract
	defined  []flow.Function
}

func (c *fakeContract) Name() string { return c.name }
func (c *fakeContract) LinearizedBaseContracts() []flow.Contract {
	return append([]flow.Contract{c}, c.base...)
}
func (c *fakeContract) DefinedFunctions() []flow.Function          { return c.defined }
func (c *fakeContract) SuperContract(flow.Contract) flow.Contract { return nil }

type fakeCFG struct {
	flows map[flow.Function]flow.FunctionFlow
}

func (c fakeCFG) FunctionFlow(fn flow.Function, _ flow.Contract) flow.FunctionFlow {
	return c.flows[fn]
}

type fakeSink struct {
	diags []diagnostic.Diagnostic
}

func (s *fakeSink) Report(d diagnostic.Diagnostic) { s.diags = append(s.diags, d) }

func deadEndFlow(name string) flow.FunctionFlow {
	entry := &fakeNode{loc: flow.Location{Start: token.Position{Filename: "a.go", Line: 1, Offset: 1}, End: token.Position{Filename: "a.go", Line: 1, Offset: 2}}}
	exit := &fakeNode{loc: flow.Location{Start: token.Position{Filename: "a.go", Line: 9, Offset: 9}, End: token.Position{Filename: "a.go", Line: 9, Offset: 10}}}
	return flow.FunctionFlow{Entry: entry, Exit: exit}
}

func TestAnalyzeFreeFunction_PanicsOnContractFunction(t *testing.T) {
	fn := &fakeFunction{name: "f", implemented: true, free: false}
	d := pass.NewDriver(fakeCFG{}, &fakeSink{})
	require.Panics(t, func() { d.AnalyzeFreeFunction(fn) })
}

func TestAnalyzeFreeFunction_UnimplementedSkipped(t *testing.T) {
	fn := &fakeFunction{name: "f", implemented: false, free: true}
	sink := &fakeSink{}
	d := pass.NewDriver(fakeCFG{}, sink)
	d.AnalyzeFreeFunction(fn)
	require.Empty(t, sink.diags)
	require.True(t, d.Success())
}

func TestAnalyzeFreeFunction_ReportsUnreachableAndTracksError(t *testing.T) {
	fn := &fakeFunction{name: "f", implemented: true, free: true}
	cfg := fakeCFG{flows: map[flow.Function]flow.FunctionFlow{fn: deadEndFlow("f")}}
	sink := &fakeSink{}
	d := pass.NewDriver(cfg, sink)
	d.AnalyzeFreeFunction(fn)

	require.Len(t, sink.diags, 1)
	require.Equal(t, 5740, sink.diags[0].Code)
	// Unreachable code is a warning only, it never flips Success to false.
	require.True(t, d.Success())
}

func TestAnalyzeFreeFunction_DedupPersistsAcrossCalls(t *testing.T) {
	fn1 := &fakeFunction{name: "f1", implemented: true, free: true}
	fn2 := &fakeFunction{name: "f2", implemented: true, free: true}
	// Both functions' dead code maps to exactly the same file span, so the
	// driver's shared previousUnreachable set should suppress the second.
	sharedFlow := deadEndFlow("shared")
	cfg := fakeCFG{flows: map[flow.Function]flow.FunctionFlow{fn1: sharedFlow, fn2: sharedFlow}}
	sink := &fakeSink{}
	d := pass.NewDriver(cfg, sink)

	d.AnalyzeFreeFunction(fn1)
	require.Len(t, sink.diags, 1)

	d.AnalyzeFreeFunction(fn2)
	require.Len(t, sink.diags, 1, "second function's identical unreachable span must be deduped pass-wide")
}

func TestAnalyzeContract_SkipsOverriddenBaseFunctions(t *testing.T) {
	base := &fakeContract{name: "Base"}
	baseFn := &fakeFunction{name: "f", implemented: true, owner: base}
	base.defined = []flow.Function{baseFn}

	derived := &fakeContract{name: "Derived", base: []flow.Contract{base}}
	derivedFn := &fakeFunction{name: "f", implemented: true, owner: derived, base: []flow.Function{baseFn}}
	derived.defined = []flow.Function{derivedFn}

	// Give each a distinct, non-overlapping source span so a dedup false
	// positive would be visible as a spurious extra (or missing) diagnostic.
	analyzed := map[flow.Function]flow.FunctionFlow{
		baseFn: {
			Entry: &fakeNode{loc: flow.Location{Start: token.Position{Filename: "base.go", Line: 1, Offset: 1}, End: token.Position{Filename: "base.go", Line: 1, Offset: 2}}},
			Exit:  &fakeNode{loc: flow.Location{Start: token.Position{Filename: "base.go", Line: 9, Offset: 9}, End: token.Position{Filename: "base.go", Line: 9, Offset: 10}}},
		},
		derivedFn: {
			Entry: &fakeNode{loc: flow.Location{Start: token.Position{Filename: "derived.go", Line: 1, Offset: 1}, End: token.Position{Filename: "derived.go", Line: 1, Offset: 2}}},
			Exit:  &fakeNode{loc: flow.Location{Start: token.Position{Filename: "derived.go", Line: 9, Offset: 9}, End: token.Position{Filename: "derived.go", Line: 9, Offset: 10}}},
		},
	}

	cfg := fakeCFG{flows: analyzed}
	sink := &fakeSink{}
	d := pass.NewDriver(cfg, sink)
	d.AnalyzeContract(derived)

	// Only derivedFn's span should be reported; baseFn is overridden and
	// LinearizedBaseContracts lists derived (most-derived) first, so the
	// override bookkeeping must suppress base's definition of f.
	require.Len(t, sink.diags, 1)
	require.Equal(t, "derived.go", sink.diags[0].Primary.Filename)
}
