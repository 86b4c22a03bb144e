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
	"go/token"
	"go/types"
)

// universe indexes every contract (named struct type) and function (method
// or free function) declared in one package's files, so that call sites and
// embedding chains can be resolved to the wrapper types flow.CFG returns. It
// also owns the package's single declTable: a method analyzed under two
// different contract contexts must still map its named results and locals
// to the identical *declaration handle, since the pass-wide deduplication
// sets key on VariableDeclaration identity. It is built once per analyzed
// package and shared by every FunctionFlow call the oracle serves for that
// package.
type universe struct {
	fset      *token.FileSet
	info      *types.Info
	files     []*ast.File
	contracts map[*types.Named]*contract
	functions map[*types.Func]*function
	decls     *declTable
}

func newUniverse(fset *token.FileSet, info *types.Info, files []*ast.File, pkg *types.Package) *universe {
	u := &universe{
		fset:      fset,
		info:      info,
		files:     files,
		contracts: map[*types.Named]*contract{},
		functions: map[*types.Func]*function{},
		decls:     newDeclTable(fset),
	}

	scope := pkg.Scope()

	// Phase 1: a contract shell for every named struct type, so embedding
	// references can be wired regardless of declaration order.
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || !isStructNamed(named) {
			continue
		}
		u.contracts[named] = &contract{named: named, byName: map[string]*function{}}
	}

	// Phase 2: embedding chains.
	for named, c := range u.contracts {
		for _, e := range embeddedNamedStructs(named) {
			if ec, ok := u.contracts[e]; ok {
				c.embeds = append(c.embeds, ec)
			}
		}
	}

	// Phase 3: a function wrapper for every method, attached to its owner.
	for named, c := range u.contracts {
		for i := 0; i < named.NumMethods(); i++ {
			obj := named.Method(i)
			fn := &function{obj: obj, decl: funcDeclOf(files, obj), owner: c}
			u.functions[obj] = fn
			c.functions = append(c.functions, fn)
			c.byName[obj.Name()] = fn
		}
	}

	// Phase 3b: a function wrapper for every free (package-level) function.
	for _, f := range files {
		for _, d := range f.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok || fd.Recv != nil {
				continue
			}
			obj, ok := info.Defs[fd.Name].(*types.Func)
			if !ok {
				continue
			}
			if _, exists := u.functions[obj]; exists {
				continue
			}
			u.functions[obj] = &function{obj: obj, decl: fd}
		}
	}

	// Phase 4: each method's BaseFunctions -- the same-named method defined
	// on a less-derived ancestor of its own owning contract.
	for _, c := range u.contracts {
		chain := c.linearize()
		for _, fn := range c.functions {
			for _, anc := range chain[1:] {
				if base := anc.functionNamed(fn.obj.Name()); base != nil {
					fn.base = append(fn.base, base)
				}
			}
		}
	}

	return u
}
