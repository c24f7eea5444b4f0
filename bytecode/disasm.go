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

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Disassemble disassembles the instruction at code[pc] and returns the
// position of the next instruction and its textual form.
func Disassemble(code []byte, pc int) (next int, text string) {
	if pc >= len(code) {
		return pc, ""
	}
	op := Op(code[pc])
	n := Size(op)
	var d bytes.Buffer
	d.WriteString(op.String())

	if n > 1 && pc+n <= len(code) {
		operand := code[pc+1 : pc+n]
		switch {
		case n-1 == 1 && op == PushByte:
			fmt.Fprintf(&d, " %d", int8(operand[0]))
		case n-1 == 1:
			fmt.Fprintf(&d, " %d", operand[0])
		case n-1 == 2:
			fmt.Fprintf(&d, " 0x%04x", binary.LittleEndian.Uint16(operand))
		}
	}
	return pc + n, d.String()
}

// DisassembleAll renders every instruction in code from offset 0, one per
// line, prefixed with its byte offset.
func DisassembleAll(code []byte) string {
	var sb bytes.Buffer
	for pc := 0; pc < len(code); {
		next, text := Disassemble(code, pc)
		fmt.Fprintf(&sb, "%04x  %s\n", pc, text)
		if next <= pc {
			break
		}
		pc = next
	}
	return sb.String()
}
