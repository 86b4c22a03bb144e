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

// Package pass implements the pass driver: it walks free functions and
// contracts (in linearized-base order, skipping already-overridden
// functions), running the uninitialized-access and unreachable-code
// analyzers for each function with the correct context contract, and owns
// the pass-wide de-duplication state and per-function revert-predicate
// lifecycle.
package pass

import (
	"github.com/solflow-dev/solflow/diagnostic"
	"github.com/solflow-dev/solflow/flow"
	"github.com/solflow-dev/solflow/revert"
	"github.com/solflow-dev/solflow/uninitialized"
	"github.com/solflow-dev/solflow/unreachable"
	"github.com/solflow-dev/solflow/util"
)

// Driver runs the two per-function analyzers over every function reachable
// from the AST roots it is driven with, and reports their diagnostics to a
// sink. Create one Driver per compilation unit; its pass-wide
// de-duplication sets live as long as the Driver does.
type Driver struct {
	cfg  flow.CFG
	sink diagnostic.Sink

	// previousUnreachable and previousVariableWarnings persist across the
	// whole pass (every function, every contract context), per §5 of the
	// spec this module implements.
	previousUnreachable      unreachable.LocationSeen
	previousVariableWarnings util.Set[flow.VariableDeclaration]

	// predicate is reused and Reset for each top-level function analyzed,
	// avoiding an allocation per function while preserving the "cleared per
	// function" memo lifetime the revert predicate requires.
	predicate *revert.Predicate

	hadError bool
}

// NewDriver creates a pass driver over cfg, reporting to sink.
func NewDriver(cfg flow.CFG, sink diagnostic.Sink) *Driver {
	return &Driver{
		cfg:                      cfg,
		sink:                     sink,
		previousUnreachable:      unreachable.NewLocationSeen(),
		previousVariableWarnings: util.NewSet[flow.VariableDeclaration](),
		predicate:                revert.NewPredicate(cfg, nil),
	}
}

// Success reports whether the pass so far has produced no errors (warnings
// do not affect it). Call after driving every root.
func (d *Driver) Success() bool {
	return !d.hadError
}

// AnalyzeFreeFunction analyzes a function not attached to any contract, with
// no context contract.
func (d *Driver) AnalyzeFreeFunction(fn flow.Function) {
	if !fn.IsFree() {
		panic("pass: AnalyzeFreeFunction called with a contract-attached function")
	}
	d.analyzeFunction(fn, nil)
}

// AnalyzeContract analyzes every function defined in contract's linearized
// base list, most-derived first, skipping functions already visited via an
// override relationship earlier in that same list. contract itself is used
// as the context contract ("the most-derived contract under analysis") for
// every function analyzed this way, including inherited ones.
func (d *Driver) AnalyzeContract(contract flow.Contract) {
	overridden := util.NewSet[flow.Function]()
	for _, base := range contract.LinearizedBaseContracts() {
		for _, fn := range base.DefinedFunctions() {
			if overridden.Has(fn) {
				continue
			}
			for _, b := range fn.BaseFunctions() {
				overridden.Add(b)
			}
			d.analyzeFunction(fn, contract)
		}
	}
}

func (d *Driver) analyzeFunction(fn flow.Function, contextContract flow.Contract) {
	if !fn.IsImplemented() {
		return
	}

	ff := d.cfg.FunctionFlow(fn, contextContract)
	d.predicate.Reset(contextContract)

	for _, diag := range uninitialized.Analyze(d.predicate, fn, ff, fn.BodyEmpty(), contextContract, d.previousVariableWarnings) {
		d.report(diag)
	}
	for _, diag := range unreachable.Analyze(ff, d.previousUnreachable) {
		d.report(diag)
	}
}

func (d *Driver) report(diag diagnostic.Diagnostic) {
	if diag.Severity == diagnostic.Error {
		d.hadError = true
	}
	d.sink.Report(diag)
}
