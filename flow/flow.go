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

// Package flow defines the data model the control-flow analysis core
// operates over. Every type here is borrowed from an external collaborator
// (a compiler front-end's AST/CFG construction, out of scope for this
// module): the core never mutates or clones a node, it only holds handles.
//
// A host front-end implements CFG, Contract and Function against its own
// AST; package goflow is one such implementation, built on top of Go's own
// go/types and golang.org/x/tools/go/cfg.
package flow

import "go/token"

// Location is a source range, used for CFGNode locations so that
// package unreachable can coalesce overlapping/adjacent unreachable
// fragments into a single diagnostic span. Start and End are assumed to
// share a Filename; comparisons and merges across different files are
// meaningless and never performed by this module.
type Location struct {
	Start token.Position
	End   token.Position
}

// Valid reports whether the location refers to real source text.
func (l Location) Valid() bool {
	return l.Start.IsValid()
}

// DataLocation classifies where a variable's data lives, mirroring the
// storage/calldata/memory distinction that determines severity for
// uninitialized access (see uninitialized.Analyzer).
type DataLocation int

const (
	// DataLocationOther covers locations that carry no special severity,
	// e.g. Solidity's "memory", or a plain Go value type.
	DataLocationOther DataLocation = iota
	// DataLocationStorage is a persistent, reference-semantics location
	// (Solidity storage pointers; Go pointers, maps, slices, channels).
	DataLocationStorage
	// DataLocationCallData is an immutable, reference-semantics input
	// location (Solidity calldata pointers; Go slice/pointer parameters
	// treated as borrowed external input by a front-end).
	DataLocationCallData
)

// OccurrenceKind classifies how a VariableOccurrence interacts with its
// declaration.
type OccurrenceKind int

const (
	// Declaration introduces the variable into scope, unassigned.
	Declaration OccurrenceKind = iota
	// Assignment removes the variable from the unassigned set.
	Assignment
	// Access reads the variable's value.
	Access
	// Return reads the variable's value as part of returning it.
	Return
	// InlineAssembly references the variable from a region the analyzer
	// cannot see into; every referenced variable is treated as accessed.
	InlineAssembly
)

// RequiredLookup is the dispatch policy attached to a call-site expression's
// outermost node, as determined by the host front-end's name resolution.
type RequiredLookup int

const (
	// Virtual calls resolve against the most-derived contract under
	// analysis (ordinary identifier calls and interface/promoted-method
	// calls in the goflow adapter).
	Virtual RequiredLookup = iota
	// Super calls resolve against the super contract of the member's
	// declaring contract with respect to the most-derived contract.
	Super
	// Static calls resolve to the function referenced directly by the
	// expression's annotation; no virtual resolution.
	Static
)

// VariableDeclaration is a declared local or named-result variable.
//
// Equality is identity: two VariableDeclaration values describe the same
// declaration iff they are ==. Host implementations must return the same
// handle for repeated queries about the same declaration so that pass-wide
// de-duplication (keyed on this identity) behaves correctly.
type VariableDeclaration interface {
	// Name returns the declared name, or "" for an unnamed return variable.
	Name() string
	// Pos returns the declaration's source location.
	Pos() token.Position
	// DataStoredIn reports whether the variable's type places it in the
	// given data location.
	DataStoredIn(DataLocation) bool
}

// VariableOccurrence is a single mention of a VariableDeclaration within a
// CFGNode, tagged with how it interacts with the declaration.
type VariableOccurrence interface {
	// Declaration returns the declaration this occurrence refers to.
	Declaration() VariableDeclaration
	// Kind returns how this occurrence interacts with the declaration.
	Kind() OccurrenceKind
	// Pos returns the occurrence's own source location, or the zero
	// token.Position if this occurrence has no location distinct from its
	// declaration (e.g. a synthesized occurrence).
	Pos() token.Position
	// HasPos reports whether Pos refers to a real, distinct source
	// occurrence (vs. the declaration's own location).
	HasPos() bool
	// Less provides the deterministic total order diagnostics are sorted
	// by. It must be a strict weak ordering consistent across runs of the
	// same input.
	Less(other VariableOccurrence) bool
}

// CallSite is an outgoing call recorded on a CFGNode.
type CallSite interface {
	// RequiredLookup returns the dispatch policy of the call expression's
	// outermost node.
	RequiredLookup() RequiredLookup
	// Declaration returns the function referenced directly by the call
	// expression's type annotation (used for Static dispatch, and as the
	// unresolved starting point for Virtual/Super dispatch). The boolean
	// is false if the call's type carries no declaration at all (e.g. a
	// bare function-type value) — such call sites are treated as
	// non-reverting and are never resolved.
	Declaration() (Function, bool)
	// SuperDeclaringContract returns the contract that declares the member
	// being accessed via Super lookup. Only meaningful when
	// RequiredLookup() == Super.
	SuperDeclaringContract() Contract
}

// CFGNode is a single node (basic block) of a function's control-flow
// graph. Nodes are referentially identified; two CFGNode values describe the
// same node iff they are ==.
type CFGNode interface {
	// Location returns the node's source range. Call Location.Valid to
	// check whether it refers to real source text.
	Location() Location
	// Occurrences returns the node's variable occurrences in a fixed,
	// deterministic order (the order they occur within the node).
	Occurrences() []VariableOccurrence
	// Calls returns the node's outgoing call sites.
	Calls() []CallSite
	// Exits returns the node's successor nodes.
	Exits() []CFGNode
	// Entries returns the node's predecessor nodes.
	Entries() []CFGNode
}

// FunctionFlow is the immutable set of four distinguished terminal/entry
// nodes of a function's CFG. All three terminals may be referenced as roots
// for backward reachability even when unreachable forward from Entry.
type FunctionFlow struct {
	// Entry is the function's single entry node.
	Entry CFGNode
	// Exit is the normal-return terminal.
	Exit CFGNode
	// Revert is the terminal for explicit reverts and unrecoverable
	// failures (e.g. a panic).
	Revert CFGNode
	// TransactionReturn is the terminal for transaction-abandoning
	// operations (e.g. a self-destruct, or os.Exit in the goflow adapter).
	TransactionReturn CFGNode
}

// Function is a declaration, possibly attached to a Contract.
type Function interface {
	// IsImplemented reports whether the function has a body. Free/abstract
	// declarations without a body are skipped by the pass driver.
	IsImplemented() bool
	// BodyEmpty reports whether the function's body contains no
	// statements. It gates emission of the unassigned-named-return-
	// variable warning (6321) only -- never the storage/calldata error.
	BodyEmpty() bool
	// IsFree reports whether the function is not attached to any contract.
	IsFree() bool
	// Owner returns the contract this function is attached to, and true,
	// or (nil, false) if IsFree().
	Owner() (Contract, bool)
	// BaseFunctions returns the set of functions this one overrides.
	BaseFunctions() []Function
	// ResolveVirtual resolves a virtual override of this function against
	// the most-derived contract, optionally restricted to start the search
	// at a given super contract. The host oracle guarantees a unique
	// target exists for any virtual call that type-checked.
	ResolveVirtual(mostDerived Contract, super Contract) Function
	// Name is used only for diagnostic messages and debugging.
	Name() string
}

// Contract is a declaration carrying a linearized base list.
type Contract interface {
	// Name is used in diagnostic messages.
	Name() string
	// LinearizedBaseContracts returns the ordered sequence of contracts to
	// iterate, most-derived first, i.e. starting with the contract itself.
	LinearizedBaseContracts() []Contract
	// DefinedFunctions returns the functions defined directly on this
	// contract (not inherited).
	DefinedFunctions() []Function
	// SuperContract returns the contract to use for Super dispatch lookups
	// made with mostDerived as the most-derived contract under analysis.
	SuperContract(mostDerived Contract) Contract
}

// CFG is the external oracle that produces FunctionFlow and call-site
// resolution inputs for a function. Implementations may cache internally;
// FunctionFlow must be idempotent for a given (function, contextContract)
// pair.
type CFG interface {
	// FunctionFlow returns the four distinguished nodes for fn, analyzed in
	// the context of contextContract (nil for a free function or when the
	// caller has no particular derived-contract context).
	FunctionFlow(fn Function, contextContract Contract) FunctionFlow
}
