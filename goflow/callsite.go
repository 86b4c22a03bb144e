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

	"golang.org/x/tools/go/ast/astutil"

	"github.com/solflow-dev/solflow/flow"
)

// callSite is a single outgoing call recorded on a node, classified by
// dispatch policy:
//
//   - Static: a direct package-level function call, or a call qualified by
//     a package name (f.Helper(...)).
//   - Super: a method call whose receiver expression explicitly names an
//     embedded ancestor field (c.Base.Method()) -- the adapter's analog of
//     an explicit super member access.
//   - Virtual: any other method call, including ordinary promoted-method
//     calls (c.Method()), resolved against the most-derived contract under
//     analysis.
type callSite struct {
	lookup     flow.RequiredLookup
	decl       *function
	superOwner *contract
}

// RequiredLookup implements flow.CallSite.
func (c *callSite) RequiredLookup() flow.RequiredLookup {
	return c.lookup
}

// Declaration implements flow.CallSite.
func (c *callSite) Declaration() (flow.Function, bool) {
	if c.decl == nil {
		return nil, false
	}
	return c.decl, true
}

// SuperDeclaringContract implements flow.CallSite.
func (c *callSite) SuperDeclaringContract() flow.Contract {
	if c.superOwner == nil {
		return nil
	}
	return c.superOwner
}

// extractCallSites walks one block fragment for outgoing calls. It does not
// descend into nested function literal bodies, which belong to their own,
// separately analyzed CFG.
func extractCallSites(fragment ast.Node, u *universe, info *types.Info) []*callSite {
	var out []*callSite
	ast.Inspect(fragment, func(n ast.Node) bool {
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if cs := classifyCall(call, u, info); cs != nil {
			out = append(out, cs)
		}
		return true
	})
	return out
}

func classifyCall(call *ast.CallExpr, u *universe, info *types.Info) *callSite {
	switch fn := astutil.Unparen(call.Fun).(type) {
	case *ast.Ident:
		obj, ok := info.Uses[fn].(*types.Func)
		if !ok {
			// Builtin (panic, len, ...), a function-valued variable, or a
			// type conversion: none carry a resolvable declaration, and
			// revert.Predicate treats such a call as non-reverting.
			return nil
		}
		return &callSite{lookup: flow.Static, decl: u.functions[obj]}

	case *ast.SelectorExpr:
		if xIdent, ok := fn.X.(*ast.Ident); ok {
			if _, ok := info.Uses[xIdent].(*types.PkgName); ok {
				obj, ok := info.Uses[fn.Sel].(*types.Func)
				if !ok {
					return nil
				}
				return &callSite{lookup: flow.Static, decl: u.functions[obj]}
			}
		}

		sel, ok := info.Selections[fn]
		if !ok || sel.Kind() != types.MethodVal {
			return nil
		}
		obj, ok := sel.Obj().(*types.Func)
		if !ok {
			return nil
		}
		decl := u.functions[obj]

		if owner, ok := explicitEmbeddedOwner(fn.X, info, u); ok {
			return &callSite{lookup: flow.Super, decl: decl, superOwner: owner}
		}
		return &callSite{lookup: flow.Virtual, decl: decl}
	}
	return nil
}

// explicitEmbeddedOwner reports whether expr is itself a selector naming an
// embedded ancestor field, e.g. the Base in c.Base.Method() -- the adapter's
// analog of an explicit Super member access.
func explicitEmbeddedOwner(expr ast.Expr, info *types.Info, u *universe) (*contract, bool) {
	sel, ok := astutil.Unparen(expr).(*ast.SelectorExpr)
	if !ok {
		return nil, false
	}
	fsel, ok := info.Selections[sel]
	if !ok || fsel.Kind() != types.FieldVal {
		return nil, false
	}
	fieldVar, ok := fsel.Obj().(*types.Var)
	if !ok || !fieldVar.Embedded() {
		return nil, false
	}
	named, ok := fsel.Type().(*types.Named)
	if !ok {
		ptr, ok := fsel.Type().(*types.Pointer)
		if !ok {
			return nil, false
		}
		named, ok = ptr.Elem().(*types.Named)
		if !ok {
			return nil, false
		}
	}
	owner, ok := u.contracts[named]
	return owner, ok
}
