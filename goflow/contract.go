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

// Package goflow implements the flow.CFG/flow.Contract/flow.Function oracle
// over ordinary Go source, built on golang.org/x/tools/go/analysis/passes/
// ctrlflow and golang.org/x/tools/go/cfg. It is the stand-in for the spec's
// "CFG Oracle (external)" component, mapping Solidity's contract-inheritance
// vocabulary onto Go's own semantics: a contract is a named type with a
// method set, its linearized base list is its embedding chain (most-derived
// first), virtual dispatch is an interface or promotable method call, super
// dispatch is an explicit qualified call through an embedded field, and
// static dispatch is a direct package-level function call.
package goflow

import (
	"go/ast"
	"go/types"

	"github.com/solflow-dev/solflow/flow"
)

// contract wraps a named type with a method set -- ordinarily a struct type,
// since Go's embedding-based "inheritance" requires a concrete field to
// promote methods through.
type contract struct {
	named *types.Named
	// embeds are the directly embedded named struct types, in field
	// declaration order, each already wrapped and linearized.
	embeds []*contract
	// functions are the methods declared directly on named (not promoted),
	// filled in by newUniverse when it builds every contract in a package.
	functions []*function
	// byName indexes functions for ResolveVirtual/BaseFunctions lookups.
	byName map[string]*function
}

// Name implements flow.Contract.
func (c *contract) Name() string {
	return c.named.Obj().Name()
}

// linearize returns c itself followed by its embedded-type ancestors in
// depth-first, most-derived-first order. This is a simplification of
// Solidity's C3 linearization -- a reasonable one, since Go embedding forms
// a tree (no multiple-inheritance diamond merge rules to resolve), so plain
// DFS preorder already gives a total, deterministic, most-derived-first
// order.
func (c *contract) linearize() []*contract {
	seen := map[*contract]bool{}
	var order []*contract
	var visit func(*contract)
	visit = func(cur *contract) {
		if seen[cur] {
			return
		}
		seen[cur] = true
		order = append(order, cur)
		for _, e := range cur.embeds {
			visit(e)
		}
	}
	visit(c)
	return order
}

// LinearizedBaseContracts implements flow.Contract.
func (c *contract) LinearizedBaseContracts() []flow.Contract {
	chain := c.linearize()
	out := make([]flow.Contract, len(chain))
	for i, cur := range chain {
		out[i] = cur
	}
	return out
}

// DefinedFunctions implements flow.Contract.
func (c *contract) DefinedFunctions() []flow.Function {
	out := make([]flow.Function, len(c.functions))
	for i, fn := range c.functions {
		out[i] = fn
	}
	return out
}

// SuperContract implements flow.Contract: the next-less-derived ancestor of
// c within mostDerived's linearization, i.e. the contract immediately after
// c in that chain. Per the spec this is used only for Super-lookup member
// accesses, where c is the contract declaring the member being accessed.
func (c *contract) SuperContract(mostDerived flow.Contract) flow.Contract {
	md, ok := mostDerived.(*contract)
	if !ok || md == nil {
		return nil
	}
	chain := md.linearize()
	for i, cur := range chain {
		if cur == c && i+1 < len(chain) {
			return chain[i+1]
		}
	}
	return nil
}

func (c *contract) functionNamed(name string) *function {
	return c.byName[name]
}

// isStructNamed reports whether t is a defined (named) type over a struct,
// the shape this adapter treats as a "contract".
func isStructNamed(t *types.Named) bool {
	_, ok := t.Underlying().(*types.Struct)
	return ok
}

// embeddedNamedStructs returns the named struct types embedded directly in
// t's underlying struct, in field order.
func embeddedNamedStructs(t *types.Named) []*types.Named {
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	var out []*types.Named
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		named, ok := f.Type().(*types.Named)
		if !ok {
			// Embedded pointer-to-named or embedded interface: still
			// promotes methods in real Go, but this adapter only follows
			// embedded structs for the "contract inheritance" analogy.
			if ptr, ok := f.Type().(*types.Pointer); ok {
				if n, ok := ptr.Elem().(*types.Named); ok {
					named = n
				}
			}
			if named == nil {
				continue
			}
		}
		if isStructNamed(named) {
			out = append(out, named)
		}
	}
	return out
}

// funcDeclOf finds the *ast.FuncDecl for a method or free function object,
// if its source was part of the analyzed files.
func funcDeclOf(files []*ast.File, obj *types.Func) *ast.FuncDecl {
	for _, f := range files {
		for _, d := range f.Decls {
			if fd, ok := d.(*ast.FuncDecl); ok {
				if fd.Name.Name == obj.Name() {
					// Disambiguate methods by receiver type name.
					if fd.Recv == nil {
						if obj.Type().(*types.Signature).Recv() == nil {
							return fd
						}
						continue
					}
					sig, ok := obj.Type().(*types.Signature)
					if !ok || sig.Recv() == nil {
						continue
					}
					if receiverTypeName(fd) == recvTypeName(sig.Recv().Type()) {
						return fd
					}
				}
			}
		}
	}
	return nil
}

func receiverTypeName(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return ""
	}
	expr := fd.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func recvTypeName(t types.Type) string {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	if named, ok := t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return ""
}
