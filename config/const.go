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

// Package config hosts the non-user-configurable diagnostic codes (this
// file) and the user-configurable Config, loaded from flags and an optional
// YAML file (config.go).
package config

// These are the three diagnostic codes the pass ever emits. They are fixed
// identifiers (not renumbered, not user-configurable) so that downstream
// tooling can filter/suppress on a stable code.
const (
	// CodeUninitializedReferenceAccess is a hard error: a storage/calldata
	// pointer local is read or returned before any assignment.
	CodeUninitializedReferenceAccess = 3464
	// CodeUnreachableCode is a warning: a node with a valid source location
	// is not forward-reachable from its function's entry.
	CodeUnreachableCode = 5740
	// CodeUnassignedReturnVariable is a warning: an unnamed (named-result)
	// return variable may remain unassigned on some non-reverting path.
	CodeUnassignedReturnVariable = 6321
)
