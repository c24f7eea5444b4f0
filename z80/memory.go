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

package z80

// Fixed memory map for the emitted ROM. The bytecode module image begins at
// ImageBase; everything below it is the hand-synthesised interpreter.
const (
	ImageBase = 0x1000 // bytecode module image start (and interpreter pad target)
	HeapBase  = 0x2000 // bump-allocated heap base
	StateBase = 0x3000 // VM state variables, 2 bytes each, in order below
	VMStackBase = 0x8000 // VM operand stack base; grows downward
	StackTop    = 0xFFFE // Z80 hardware stack pointer reset value
)

// State variable offsets from StateBase, each a 2-byte cell.
const (
	stateSP      = StateBase + 0*2 // vm_sp:  current VM stack pointer
	stateFP      = StateBase + 1*2 // vm_fp:  current frame pointer
	stateHeapPtr = StateBase + 2*2 // heap_ptr: next free heap byte
	stateCode    = StateBase + 3*2 // vm_code: base address of bytecode
	stateStrings = StateBase + 4*2 // vm_strings: base address of string pool
	statePC      = StateBase + 5*2 // vm_pc: current bytecode program counter, relative to vm_code

	// Scratch cells for the Match handler's nested scan; private to h_match,
	// never read by any other handler.
	stateMatchPatStart  = StateBase + 6*2  // pattern data start, constant for one match
	stateMatchPatLen    = StateBase + 7*2  // pattern length, constant for one match
	stateMatchSubjPtr   = StateBase + 8*2  // first untried subject byte this attempt
	stateMatchRemaining = StateBase + 9*2  // subject bytes left from stateMatchSubjPtr
	stateMatchCurSubj   = StateBase + 10*2 // subject cursor during the inner compare
	stateMatchCurPat    = StateBase + 11*2 // pattern cursor during the inner compare
)

// outPort is the console-output I/O port used by the Print handler.
const outPort = 0x00
