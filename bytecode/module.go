// Copyright 2026 The mplc Authors
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

package bytecode

// SubInfo records a compiled subroutine's entry point and arity, for call
// resolution and for consumers that want to enumerate defined subroutines.
type SubInfo struct {
	Name   string
	Addr   int
	Params int
}

// Module is the compiler's output: the instruction stream, the interned
// string pool, the recorded subroutine table, and the entry point.
type Module struct {
	Code    []byte
	Strings []string
	Subs    []SubInfo
	Entry   int
}

// InternString appends s to the string pool if not already present and
// returns its index. The pool is purely additive and deduplicated, so
// indices are stable once assigned.
func (m *Module) InternString(s string) int {
	for i, e := range m.Strings {
		if e == s {
			return i
		}
	}
	m.Strings = append(m.Strings, s)
	return len(m.Strings) - 1
}
