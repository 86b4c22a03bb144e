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

// Package diagnostic defines the diagnostic sink contract and the three
// diagnostics the pass ever emits, along with the exact wording specified for
// each.
package diagnostic

import (
	"fmt"
	"go/token"

	"github.com/solflow-dev/solflow/config"
)

// Severity distinguishes diagnostics that block compilation from those that
// do not.
type Severity int

const (
	// Error blocks compilation.
	Error Severity = iota
	// Warning does not block compilation.
	Warning
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is a single reported finding.
type Diagnostic struct {
	// Code is one of config.CodeUninitializedReferenceAccess,
	// config.CodeUnreachableCode, config.CodeUnassignedReturnVariable.
	Code int
	// Severity is Error or Warning.
	Severity Severity
	// Primary is the diagnostic's main source location.
	Primary token.Position
	// Secondary is an optional list of related locations (e.g. the
	// declaration site for a 3464 error).
	Secondary []token.Position
	// Message is the fully rendered diagnostic text.
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s [solflow-%d] (%s)",
		d.Primary.Filename, d.Primary.Line, d.Primary.Column, d.Message, d.Code, d.Severity)
}

// Sink receives diagnostics as they are produced. Implementations may apply
// their own severity escalation (config.Config.TreatWarningsAsErrors) before
// forwarding to a host reporting mechanism (e.g. analysis.Pass.Report).
type Sink interface {
	Report(Diagnostic)
}

// UninitializedReferenceAccess builds the 3464 error for a storage/calldata
// pointer local read or returned before assignment.
func UninitializedReferenceAccess(primary token.Position, declaration token.Position, storage bool, isReturn bool) Diagnostic {
	loc := "storage"
	if !storage {
		loc = "calldata"
	}
	verb := "accessed"
	if isReturn {
		verb = "returned"
	}
	return Diagnostic{
		Code:      config.CodeUninitializedReferenceAccess,
		Severity:  Error,
		Primary:   primary,
		Secondary: []token.Position{declaration},
		Message: fmt.Sprintf(
			"This variable is of %s pointer type and can be %s without prior assignment, "+
				"which would lead to undefined behaviour.", loc, verb),
	}
}

// UnassignedReturnVariable builds the 6321 warning for an unnamed (named
// result) return variable that may remain unassigned. contextName is the
// name of the contract the function is analyzed under; sameContext is true
// when that context is the function's own owning contract (in which case no
// prefix is added).
func UnassignedReturnVariable(declaration token.Position, sameContext bool, contextName string) Diagnostic {
	prefix := "U"
	if !sameContext {
		prefix = fmt.Sprintf("When called using contract %q the u", contextName)
	}
	return Diagnostic{
		Code:     config.CodeUnassignedReturnVariable,
		Severity: Warning,
		Primary:  declaration,
		Message: prefix + "nnamed return variable can remain unassigned. Add an explicit return " +
			"with value to all non-reverting code paths or name the variable.",
	}
}

// UnreachableCode builds the 5740 warning for a coalesced unreachable
// source span.
func UnreachableCode(at token.Position) Diagnostic {
	return Diagnostic{
		Code:     config.CodeUnreachableCode,
		Severity: Warning,
		Primary:  at,
		Message:  "Unreachable code.",
	}
}
