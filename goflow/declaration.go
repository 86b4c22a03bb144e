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

	"github.com/solflow-dev/solflow/flow"
)

// declaration wraps a *types.Var standing for a local variable or a named
// result parameter.
//
// Data-location mapping: a reference-kind type (pointer, map, slice, chan)
// is DataLocationCallData when v is a function parameter (borrowed external
// input, never itself unassigned) and DataLocationStorage when v is a local
// (the analog of a Solidity storage pointer local). Everything else is
// DataLocationOther.
type declaration struct {
	v       *types.Var
	fset    *token.FileSet
	name    string // overrides v.Name(), used for the blank-identifier case
	isParam bool
}

func newDeclaration(fset *token.FileSet, v *types.Var, isParam bool) *declaration {
	name := v.Name()
	if name == "_" {
		name = ""
	}
	return &declaration{v: v, fset: fset, name: name, isParam: isParam}
}

// Name implements flow.VariableDeclaration.
func (d *declaration) Name() string {
	return d.name
}

// Pos implements flow.VariableDeclaration.
func (d *declaration) Pos() token.Position {
	return d.fset.Position(d.v.Pos())
}

// DataStoredIn implements flow.VariableDeclaration.
func (d *declaration) DataStoredIn(loc flow.DataLocation) bool {
	if !isReferenceKind(d.v.Type()) {
		return loc == flow.DataLocationOther
	}
	if d.isParam {
		return loc == flow.DataLocationCallData
	}
	return loc == flow.DataLocationStorage
}

// isReferenceKind reports whether t has Go's own reference semantics:
// pointer, map, slice or channel. These are the types this adapter treats as
// "storage"/"calldata" pointers, the Go analog of Solidity's reference-type
// storage and calldata locations.
func isReferenceKind(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Map, *types.Slice, *types.Chan:
		return true
	default:
		return false
	}
}

// declTable memoizes declarations by *types.Var so repeated lookups for the
// same variable, from different occurrences across a function, return the
// identical *declaration handle -- required for the pass-wide de-duplication
// sets, which key on VariableDeclaration identity.
type declTable struct {
	fset  *token.FileSet
	byVar map[*types.Var]*declaration
}

func newDeclTable(fset *token.FileSet) *declTable {
	return &declTable{fset: fset, byVar: map[*types.Var]*declaration{}}
}

func (t *declTable) get(v *types.Var, isParam bool) *declaration {
	if d, ok := t.byVar[v]; ok {
		return d
	}
	d := newDeclaration(t.fset, v, isParam)
	t.byVar[v] = d
	return d
}
