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
	"fmt"
	"go/token"
	"path/filepath"
	"reflect"
	"sort"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/ctrlflow"

	"github.com/solflow-dev/solflow/cache"
	"github.com/solflow-dev/solflow/config"
	"github.com/solflow-dev/solflow/diagnostic"
	solflowpass "github.com/solflow-dev/solflow/pass"
	"github.com/solflow-dev/solflow/util/analysishelper"
)

const _doc = "Run solflow on this package to report uninitialized storage/calldata pointer " +
	"access, unassigned named return variables and unreachable code"

// diagnosticsAnalyzer computes every diagnostic for one package without
// reporting them, so that Analyzer's own run can apply
// config.Config.TreatWarningsAsErrors before handing diagnostics to
// analysis.Pass.Report.
var diagnosticsAnalyzer = &analysis.Analyzer{
	Name:       "solflow_diagnostics",
	Doc:        "computes solflow diagnostics for one package",
	Run:        analysishelper.WrapRun(runDiagnostics),
	ResultType: reflect.TypeOf(&analysishelper.Result[[]diagnostic.Diagnostic]{}),
	Requires:   []*analysis.Analyzer{config.Analyzer, ctrlflow.Analyzer},
}

// Analyzer is the top-level instance: it coordinates universe construction,
// the CFG oracle, and the pass driver, and reports the resulting
// diagnostics. It is the entry point both singlechecker-based binaries and
// the golangci-lint plugin wrap.
var Analyzer = &analysis.Analyzer{
	Name:     "solflow",
	Doc:      _doc,
	Run:      run,
	Requires: []*analysis.Analyzer{config.Analyzer, diagnosticsAnalyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	result := pass.ResultOf[diagnosticsAnalyzer].(*analysishelper.Result[[]diagnostic.Diagnostic])
	if result.Err != nil {
		return nil, result.Err
	}
	for _, d := range result.Res {
		report(pass, d)
	}
	return nil, nil
}

func runDiagnostics(pass *analysis.Pass) ([]diagnostic.Diagnostic, error) {
	conf := pass.ResultOf[config.Analyzer].(*config.Config)
	cfgs := pass.ResultOf[ctrlflow.Analyzer].(*ctrlflow.CFGs)

	u := newUniverse(pass.Fset, pass.TypesInfo, pass.Files, pass.Pkg)
	oc := newOracle(pass.Fset, cfgs, u)

	collector := &diagnostic.Collector{}
	var sink diagnostic.Sink = collector
	if conf.TreatWarningsAsErrors {
		sink = diagnostic.EscalatingSink{Sink: collector}
	}

	tee := &cacheTeeSink{inner: sink}
	driver := solflowpass.NewDriver(oc, tee)

	contracts := make([]*contract, 0, len(u.contracts))
	for _, c := range u.contracts {
		contracts = append(contracts, c)
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].named.Obj().Pos() < contracts[j].named.Obj().Pos() })
	for _, c := range contracts {
		// Contract methods share the driver's cross-override dedup state
		// (previously reported unreachable spans and variable warnings),
		// so an individual method cannot be cached in isolation without
		// also replaying that shared bookkeeping. Only free functions,
		// which carry no such cross-function state, are cached below.
		driver.AnalyzeContract(c)
	}

	var freeFns []*function
	for _, fn := range u.functions {
		if fn.IsFree() {
			freeFns = append(freeFns, fn)
		}
	}
	sort.Slice(freeFns, func(i, j int) bool { return freeFns[i].obj.Pos() < freeFns[j].obj.Pos() })

	store := loadCacheStore()
	for _, fn := range freeFns {
		if store == nil || fn.decl == nil {
			driver.AnalyzeFreeFunction(fn)
			continue
		}
		key := cache.Key{
			Package:  pass.Pkg.Path(),
			Function: fn.obj.FullName(),
			Hash:     cache.HashSource(pass.Fset, fn.decl),
		}
		if cached, ok := store.Get(key); ok {
			for _, d := range cached {
				sink.Report(d)
			}
			continue
		}
		tee.capture = &[]diagnostic.Diagnostic{}
		driver.AnalyzeFreeFunction(fn)
		store.Put(key, *tee.capture)
		tee.capture = nil
	}
	if store != nil {
		if err := store.Save(getCachePath()); err != nil {
			return nil, fmt.Errorf("save diagnostic cache: %w", err)
		}
	}

	diags := collector.Diagnostics
	if len(conf.ExcludeFilePatterns) > 0 {
		diags = excludeMatching(diags, conf.ExcludeFilePatterns)
	}
	return diags, nil
}

// cacheTeeSink forwards every report to inner, additionally appending it to
// capture whenever capture is non-nil, so a single shared pass.Driver can
// have its per-function output recorded for the cache without creating a
// second Driver (and thereby losing its cross-function dedup state).
type cacheTeeSink struct {
	inner   diagnostic.Sink
	capture *[]diagnostic.Diagnostic
}

func (c *cacheTeeSink) Report(d diagnostic.Diagnostic) {
	if c.capture != nil {
		*c.capture = append(*c.capture, d)
	}
	c.inner.Report(d)
}

// loadCacheStore loads the cross-run cache installed by SetCachePath, if
// any. A load failure (corrupt or foreign file) is treated as a cold
// cache rather than a fatal error: caching is a CI speedup, never a
// correctness requirement.
func loadCacheStore() *cache.Store {
	path := getCachePath()
	if path == "" {
		return nil
	}
	store, err := cache.Load(path)
	if err != nil {
		return cache.NewStore()
	}
	return store
}

func excludeMatching(diags []diagnostic.Diagnostic, patterns []string) []diagnostic.Diagnostic {
	out := diags[:0]
	for _, d := range diags {
		excluded := false
		for _, pat := range patterns {
			if ok, _ := filepath.Match(pat, d.Primary.Filename); ok {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, d)
		}
	}
	return out
}

func report(pass *analysis.Pass, d diagnostic.Diagnostic) {
	pos := posIn(pass.Fset, d.Primary)
	if pos == token.NoPos {
		return
	}
	pass.Report(analysis.Diagnostic{
		Pos:      pos,
		Category: d.Severity.String(),
		Message:  fmt.Sprintf("[solflow-%d] %s", d.Code, d.Message),
	})
}

// posIn recovers a token.Pos valid within fset for a token.Position obtained
// from a diagnostic built against the same FileSet, reversing the
// Filename+Offset pair back into a Pos.
func posIn(fset *token.FileSet, p token.Position) token.Pos {
	var result token.Pos
	fset.Iterate(func(f *token.File) bool {
		if f.Name() != p.Filename {
			return true
		}
		if p.Offset < 0 || p.Offset > f.Size() {
			return true
		}
		result = f.Pos(p.Offset)
		return false
	})
	return result
}
