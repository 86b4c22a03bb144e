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

import "sync"

// cachePath is the on-disk location of the cross-run diagnostic cache, set
// by a driver binary (cmd/ctrlflowcheck's -cache flag) before Analyzer
// runs. It is empty by default, which disables caching entirely: runs
// stay hermetic unless a caller opts in.
var (
	cacheMu   sync.Mutex
	cachePath string
)

// SetCachePath installs the path of the cross-run diagnostic cache that
// runDiagnostics consults before recomputing a free function's dataflow,
// and writes back to after. Pass the empty string to disable caching.
func SetCachePath(path string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cachePath = path
}

func getCachePath() string {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	return cachePath
}
