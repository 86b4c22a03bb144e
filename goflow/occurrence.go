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

	"golang.org/x/tools/go/ast/astutil"

	"github.com/solflow-dev/solflow/flow"
)

// occurrence is a single mention of a declaration within a block fragment.
type occurrence struct {
	decl   *declaration
	kind   flow.OccurrenceKind
	pos    token.Position
	hasPos bool
}

// Declaration implements flow.VariableOccurrence.
func (o *occurrence) Declaration() flow.VariableDeclaration {
	return o.decl
}

// Kind implements flow.VariableOccurrence.
func (o *occurrence) Kind() flow.OccurrenceKind {
	return o.kind
}

// Pos implements flow.VariableOccurrence.
func (o *occurrence) Pos() token.Position {
	return o.pos
}

// HasPos implements flow.VariableOccurrence.
func (o *occurrence) HasPos() bool {
	return o.hasPos
}

func (o *occurrence) effectivePos() token.Position {
	if o.hasPos {
		return o.pos
	}
	return o.decl.Pos()
}

// Less implements flow.VariableOccurrence with plain source order: offsets
// are already a total, deterministic ordering, so no separate sequence
// counter is needed.
func (o *occurrence) Less(other flow.VariableOccurrence) bool {
	oo, ok := other.(*occurrence)
	if !ok {
		return false
	}
	a, b := o.effectivePos(), oo.effectivePos()
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	return a.Offset < b.Offset
}

// extractOccurrences walks one block fragment (a statement or expression
// taken verbatim from a cfg.Block's Nodes list) and returns its variable
// occurrences in source order. It does not descend into nested function
// literal bodies, which ctrlflow analyzes as their own, independent CFGs.
//
// namedResults lists a function's named-result declarations, in parameter
// order; a naked return statement synthesizes one Return occurrence per
// entry, at the return statement's own position. An explicit
// `return expr, ...` never touches named-result declarations at all,
// matching the ported semantics (see uninitialized.Analyze): only a bare
// return implicitly reads them.
//
// u resolves a call's callee to the package-level function it refers to, so
// a call into a body-less declaration (the standard `//go:linkname`/
// assembly-stub idiom -- a signature with no Go source the adapter can walk)
// is treated as inline assembly: every local or parameter named in its
// argument list is recorded as accessed, without looking past the call.
func extractOccurrences(
	fragment ast.Node,
	info *types.Info,
	fset *token.FileSet,
	decls *declTable,
	params map[*types.Var]bool,
	namedResults []*declaration,
	u *universe,
) []*occurrence {
	var out []*occurrence

	emit := func(v *types.Var, kind flow.OccurrenceKind, pos token.Pos) {
		d := decls.get(v, params[v])
		out = append(out, &occurrence{decl: d, kind: kind, pos: fset.Position(pos), hasPos: true})
	}

	var visit func(n ast.Node) bool
	visit = func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.FuncLit:
			return false

		case *ast.DeclStmt:
			gd, ok := s.Decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.VAR {
				return true
			}
			for _, spec := range gd.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				if len(vs.Values) > 0 {
					// Declared already-assigned; never enters the
					// unassigned set, but its initializer may still read
					// other variables.
					for _, v := range vs.Values {
						ast.Inspect(v, visit)
					}
					continue
				}
				for _, name := range vs.Names {
					if name.Name == "_" {
						continue
					}
					v, ok := info.Defs[name].(*types.Var)
					if !ok {
						continue
					}
					emit(v, flow.Declaration, name.Pos())
				}
			}
			return false

		case *ast.AssignStmt:
			for _, rhs := range s.Rhs {
				ast.Inspect(rhs, visit)
			}
			for _, lhs := range s.Lhs {
				// A parenthesized LHS (`(x) = y`) is rare but legal; strip
				// the parens so it is still recognized as a plain name.
				id, ok := astutil.Unparen(lhs).(*ast.Ident)
				if !ok {
					ast.Inspect(lhs, visit)
					continue
				}
				if id.Name == "_" {
					continue
				}
				if s.Tok == token.DEFINE {
					// A freshly introduced name is declared-and-assigned in
					// one step; only a re-used name (mixed `x, err := ...`)
					// needs an Assignment occurrence.
					if v, ok := info.Uses[id].(*types.Var); ok {
						emit(v, flow.Assignment, id.Pos())
					}
					continue
				}
				v, ok := info.Uses[id].(*types.Var)
				if !ok {
					continue
				}
				if s.Tok != token.ASSIGN {
					// Compound assignment (+=, -=, ...) reads before it
					// writes.
					emit(v, flow.Access, id.Pos())
				}
				emit(v, flow.Assignment, id.Pos())
			}
			return false

		case *ast.ReturnStmt:
			if len(s.Results) == 0 {
				for _, d := range namedResults {
					out = append(out, &occurrence{
						decl:   d,
						kind:   flow.Return,
						pos:    fset.Position(s.Return),
						hasPos: true,
					})
				}
				return false
			}
			for _, r := range s.Results {
				ast.Inspect(r, visit)
			}
			return false

		case *ast.CallExpr:
			if args, ok := asmLeafArgs(s, info, u); ok {
				for _, id := range args {
					if v, ok := info.Uses[id].(*types.Var); ok {
						emit(v, flow.InlineAssembly, id.Pos())
					}
				}
				return false
			}
			return true

		case *ast.IncDecStmt:
			if id, ok := astutil.Unparen(s.X).(*ast.Ident); ok {
				if v, ok := info.Uses[id].(*types.Var); ok {
					emit(v, flow.Access, id.Pos())
					emit(v, flow.Assignment, id.Pos())
				}
				return false
			}
			return true

		case *ast.Ident:
			v, ok := info.Uses[s].(*types.Var)
			if !ok {
				return true
			}
			emit(v, flow.Access, s.Pos())
			return true
		}
		return true
	}

	ast.Inspect(fragment, visit)
	return out
}

// asmLeafArgs reports whether call invokes a package-level function declared
// with no body -- Go's idiom for an assembly-implemented or
// `//go:linkname`-redirected leaf, the analog of Solidity inline assembly --
// and if so returns every identifier appearing in its argument list.
func asmLeafArgs(call *ast.CallExpr, info *types.Info, u *universe) ([]*ast.Ident, bool) {
	obj := calleeFunc(call, info)
	fn, ok := u.functions[obj]
	if !ok || fn.decl == nil || fn.decl.Body != nil {
		return nil, false
	}
	var idents []*ast.Ident
	for _, arg := range call.Args {
		ast.Inspect(arg, func(n ast.Node) bool {
			if id, ok := n.(*ast.Ident); ok {
				idents = append(idents, id)
			}
			return true
		})
	}
	return idents, true
}

// calleeFunc resolves a call expression's callee to the *types.Func it
// refers to, or nil if it is not a plain identifier or selector call (e.g. a
// call through a function value).
func calleeFunc(call *ast.CallExpr, info *types.Info) *types.Func {
	switch fn := astutil.Unparen(call.Fun).(type) {
	case *ast.Ident:
		f, _ := info.Uses[fn].(*types.Func)
		return f
	case *ast.SelectorExpr:
		f, _ := info.Uses[fn.Sel].(*types.Func)
		return f
	default:
		return nil
	}
}
