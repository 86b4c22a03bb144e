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

package diagnostic

// Collector is a Sink that simply accumulates diagnostics in the order
// reported, for use by callers that want to post-process (sort, filter,
// hand to a different reporting mechanism) before emitting them.
type Collector struct {
	Diagnostics []Diagnostic
}

// Report implements Sink.
func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// HasErrors reports whether any collected diagnostic is an Error.
func (c *Collector) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// EscalatingSink wraps another Sink, escalating every Warning to an Error
// before forwarding. Used when config.Config.TreatWarningsAsErrors is set.
type EscalatingSink struct {
	Sink Sink
}

// Report implements Sink.
func (e EscalatingSink) Report(d Diagnostic) {
	d.Severity = Error
	e.Sink.Report(d)
}
