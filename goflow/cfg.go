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

	"golang.org/x/tools/go/analysis/passes/ctrlflow"
	"golang.org/x/tools/go/cfg"

	"github.com/solflow-dev/solflow/flow"
)

// oracle implements flow.CFG over one analyzed package, built on ctrlflow's
// per-function go/cfg graphs.
type oracle struct {
	fset  *token.FileSet
	cfgs  *ctrlflow.CFGs
	u     *universe
	cache map[flowKey]flow.FunctionFlow
}

type flowKey struct {
	fn  *function
	ctx *contract
}

func newOracle(fset *token.FileSet, cfgs *ctrlflow.CFGs, u *universe) *oracle {
	return &oracle{fset: fset, cfgs: cfgs, u: u, cache: map[flowKey]flow.FunctionFlow{}}
}

// FunctionFlow implements flow.CFG. The context contract plays no role in
// the graph's shape (Go's CFG does not depend on who is asking), but the
// cache is still keyed on it so that repeated calls for the same pair are
// idempotent, per flow.CFG's contract.
func (o *oracle) FunctionFlow(fn flow.Function, contextContract flow.Contract) flow.FunctionFlow {
	f, ok := fn.(*function)
	if !ok || f.decl == nil || f.decl.Body == nil {
		return flow.FunctionFlow{}
	}
	var ctx *contract
	if contextContract != nil {
		ctx, _ = contextContract.(*contract)
	}
	key := flowKey{fn: f, ctx: ctx}
	if ff, ok := o.cache[key]; ok {
		return ff
	}
	g := o.cfgs.FuncDecl(f.decl)
	ff := buildFuncGraph(g, f, o.u)
	o.cache[key] = ff
	return ff
}

// buildFuncGraph wraps one function's go/cfg.CFG, routing every block whose
// trailing statement is a call this adapter treats as no-return (panic,
// os.Exit, log.Fatal*) into one of two function-wide sentinel nodes, the
// analog of Solidity's single shared revert/transaction-return terminal.
func buildFuncGraph(g *cfg.CFG, fn *function, u *universe) flow.FunctionFlow {
	fset := u.fset
	info := u.info
	// Shared at the universe level, not per call: the same *types.Var (e.g. a
	// base method's named result) must map to one stable *declaration handle
	// no matter how many contract contexts re-analyze the owning method.
	decls := u.decls

	sig, ok := fn.obj.Type().(*types.Signature)
	if !ok {
		return flow.FunctionFlow{}
	}

	params := map[*types.Var]bool{}
	for i := 0; i < sig.Params().Len(); i++ {
		params[sig.Params().At(i)] = true
	}

	var namedResults []*declaration
	for i := 0; i < sig.Results().Len(); i++ {
		rv := sig.Results().At(i)
		if rv.Name() == "" {
			// An unnamed Go result has no bare-return analog: there is
			// nothing a naked `return` could implicitly read.
			continue
		}
		namedResults = append(namedResults, decls.get(rv, false))
	}

	fg := &funcGraph{
		fset:         fset,
		info:         info,
		decls:        decls,
		params:       params,
		namedResults: namedResults,
		universe:     u,
		succs:        map[*node][]*node{},
		preds:        map[*node][]*node{},
	}

	nodes := make(map[*cfg.Block]*node, len(g.Blocks))
	for _, b := range g.Blocks {
		nodes[b] = &node{g: fg, block: b, kind: kindNormal}
	}
	revertNode := &node{g: fg, kind: kindRevert}
	txReturnNode := &node{g: fg, kind: kindTransactionReturn}

	addEdge := func(from, to *node) {
		fg.succs[from] = append(fg.succs[from], to)
		fg.preds[to] = append(fg.preds[to], from)
	}

	for _, b := range g.Blocks {
		n := nodes[b]
		switch classifyTerminal(b, info) {
		case terminalRevert:
			addEdge(n, revertNode)
		case terminalTransactionReturn:
			addEdge(n, txReturnNode)
		default:
			for _, s := range b.Succs {
				if sn, ok := nodes[s]; ok {
					addEdge(n, sn)
				}
			}
		}
	}

	var entry flow.CFGNode
	if len(g.Blocks) > 0 {
		entryNode := nodes[g.Blocks[0]]
		// Named results come into scope unassigned the instant the function
		// starts, so the entry node must seed them even though no `var`
		// statement ever declares them explicitly.
		entryNode.entryDecls = namedResults
		entry = entryNode
	}
	var exit flow.CFGNode
	if g.Ret != nil {
		if rn, ok := nodes[g.Ret]; ok {
			exit = rn
		}
	}
	if exit == nil {
		// A function with no reachable normal-return block (e.g. an
		// unconditional infinite loop): synthesize an unreachable exit so
		// FunctionFlow's contract (all four fields non-nil) still holds.
		exit = &node{g: fg, kind: kindNormal}
	}

	return flow.FunctionFlow{Entry: entry, Exit: exit, Revert: revertNode, TransactionReturn: txReturnNode}
}

type terminalKind int

const (
	terminalNone terminalKind = iota
	terminalRevert
	terminalTransactionReturn
)

// classifyTerminal inspects a dead-end block's trailing statement (one
// ctrlflow already determined has no fall-through successor) to tell a
// revert-style terminal (panic) from a transaction-abandoning one
// (os.Exit, log.Fatal*, log.Panic*).
func classifyTerminal(b *cfg.Block, info *types.Info) terminalKind {
	if len(b.Succs) != 0 || len(b.Nodes) == 0 {
		return terminalNone
	}
	call := callExprIn(b.Nodes[len(b.Nodes)-1])
	if call == nil {
		return terminalNone
	}
	switch calleeKey(call, info) {
	case "panic":
		return terminalRevert
	case "os.Exit", "log.Fatal", "log.Fatalf", "log.Fatalln", "log.Panic", "log.Panicf", "log.Panicln":
		return terminalTransactionReturn
	default:
		return terminalNone
	}
}

func callExprIn(n ast.Node) *ast.CallExpr {
	switch s := n.(type) {
	case *ast.ExprStmt:
		call, _ := s.X.(*ast.CallExpr)
		return call
	case *ast.CallExpr:
		return s
	default:
		return nil
	}
}

func calleeKey(call *ast.CallExpr, info *types.Info) string {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		if fn.Name == "panic" {
			return "panic"
		}
		return ""
	case *ast.SelectorExpr:
		xIdent, ok := fn.X.(*ast.Ident)
		if !ok {
			return ""
		}
		if _, ok := info.Uses[xIdent].(*types.PkgName); !ok {
			return ""
		}
		return xIdent.Name + "." + fn.Sel.Name
	default:
		return ""
	}
}
