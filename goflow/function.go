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
	"go/ast"
	"go/types"

	"github.com/solflow-dev/solflow/flow"
)

// function wraps a *types.Func: either a free (package-level) function or a
// method, with its declaration's AST body when available.
type function struct {
	obj   *types.Func
	decl  *ast.FuncDecl // nil if no body is in the analyzed source set
	owner *contract     // nil for a free function

	// base holds the functions this one overrides, computed once when its
	// owning contract's method table is built.
	base []*function
}

// Name implements flow.Function.
func (f *function) Name() string {
	return f.obj.Name()
}

// IsImplemented implements flow.Function.
func (f *function) IsImplemented() bool {
	return f.decl != nil && f.decl.Body != nil
}

// BodyEmpty implements flow.Function.
func (f *function) BodyEmpty() bool {
	return f.decl != nil && f.decl.Body != nil && len(f.decl.Body.List) == 0
}

// IsFree implements flow.Function.
func (f *function) IsFree() bool {
	return f.owner == nil
}

// Owner implements flow.Function.
func (f *function) Owner() (flow.Contract, bool) {
	if f.owner == nil {
		return nil, false
	}
	return f.owner, true
}

// BaseFunctions implements flow.Function.
func (f *function) BaseFunctions() []flow.Function {
	out := make([]flow.Function, len(f.base))
	for i, b := range f.base {
		out[i] = b
	}
	return out
}

// ResolveVirtual implements flow.Function. It searches mostDerived's
// linearized base list (starting at super itself, when given) for the
// nearest contract redefining a function with this one's name, which is the
// override Go's own method set would promote or shadow at that embedding
// depth. If nothing overrides it, f is its own resolution -- the base
// implementation is the one actually reachable.
func (f *function) ResolveVirtual(mostDerived flow.Contract, super flow.Contract) flow.Function {
	md, ok := mostDerived.(*contract)
	if !ok || md == nil {
		return f
	}
	chain := md.linearize()
	start := 0
	if super != nil {
		if sc, ok := super.(*contract); ok {
			for i, cur := range chain {
				if cur == sc {
					start = i
					break
				}
			}
		}
	}
	for _, cur := range chain[start:] {
		if override := cur.functionNamed(f.obj.Name()); override != nil {
			return override
		}
	}
	return f
}
