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

// main package makes it possible to build solflow as a standalone code
// checker that can be independently invoked to check other packages.
package main

import (
	"flag"

	"github.com/solflow-dev/solflow/config"
	"github.com/solflow-dev/solflow/goflow"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	// Lift the flags from config.Analyzer to the top level so that users can
	// specify them without having to specify the sub-analyzer name
	// ("solflow_config"). Without lifting the flags, a user would have to
	// address the config analyzer directly:
	//
	// `solflow -solflow_config.treat-warnings-as-errors ./...`
	//
	// With this, the flag is exposed at the top level, making
	// "solflow_config" transparent to the user:
	//
	// `solflow -treat-warnings-as-errors ./...`
	config.Analyzer.Flags.VisitAll(func(f *flag.Flag) { flag.Var(f.Value, f.Name, f.Usage) })

	// -cache installs its value into goflow's cache hook the moment flag
	// parsing sees it, since singlechecker.Main parses flags and runs the
	// checker in the same call, leaving no hook point in between.
	goflow.Analyzer.Flags.Func("cache", "path to an on-disk cache of free function diagnostics, "+
		"reused across runs to skip recomputing the dataflow for unchanged functions; "+
		"empty disables caching", func(path string) error {
		goflow.SetCachePath(path)
		return nil
	})
	flag.Var(goflow.Analyzer.Flags.Lookup("cache").Value, "cache", goflow.Analyzer.Flags.Lookup("cache").Usage)

	singlechecker.Main(goflow.Analyzer)
}
