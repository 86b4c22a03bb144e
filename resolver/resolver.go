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

// Package resolver implements the callee resolver: given a call site and the
// most-derived contract under analysis, it selects the concrete callee under
// virtual/super/static dispatch rules.
package resolver

import (
	"fmt"

	"github.com/solflow-dev/solflow/flow"
)

// MalformedCallSiteError reports an internal invariant failure: the call
// site's dispatch policy and shape are inconsistent with what the host
// front-end is contracted to produce (see flow.CallSite). This is never a
// user diagnostic; it signals a bug in the host oracle or a CFG built for a
// program that did not actually type-check.
type MalformedCallSiteError struct {
	Lookup flow.RequiredLookup
}

func (e *MalformedCallSiteError) Error() string {
	return fmt.Sprintf("resolver: malformed call site with required lookup %v", e.Lookup)
}

// Resolve selects the concrete callee for a call site, given the most-derived
// contract currently under analysis. It inspects only the call site itself;
// it never recurses into arguments.
//
// Dispatch rules:
//   - Super: resolve virtually against the super contract of the member's
//     declaring contract with respect to contextContract.
//   - Static: the callee is the function referenced directly by the call
//     site's declaration; no virtual resolution.
//   - Virtual: resolve virtually against contextContract.
//
// A call site whose declaration is absent (e.g. a bare function-type value)
// is not a malformed input: Resolve returns (nil, false, nil) and the caller
// treats the call as non-reverting (see revert.Predicate).
func Resolve(site flow.CallSite, contextContract flow.Contract) (flow.Function, bool, error) {
	decl, ok := site.Declaration()
	if !ok {
		return nil, false, nil
	}

	switch site.RequiredLookup() {
	case flow.Super:
		declaringContract := site.SuperDeclaringContract()
		if declaringContract == nil {
			return nil, false, &MalformedCallSiteError{Lookup: flow.Super}
		}
		super := declaringContract.SuperContract(contextContract)
		return decl.ResolveVirtual(contextContract, super), true, nil
	case flow.Static:
		return decl, true, nil
	case flow.Virtual:
		return decl.ResolveVirtual(contextContract, nil), true, nil
	default:
		return nil, false, &MalformedCallSiteError{Lookup: site.RequiredLookup()}
	}
}
