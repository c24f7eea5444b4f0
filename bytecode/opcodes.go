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

// Package bytecode defines the stack-machine instruction set produced by
// the compiler, the in-memory module representation, its on-disk image
// encoding, and a disassembler.
package bytecode

// Op identifies a single bytecode instruction.
type Op byte

// Opcodes, grouped by purpose. Every opcode is one byte; its operand width
// (none, one byte, or two little-endian bytes) is fixed and given by Size.
const (
	Nop Op = iota
	Push     // w16
	PushByte // b8, sign-extended
	Pop
	Dup
	Swap
	Over

	LoadLocal   // b8
	StoreLocal  // b8
	LoadGlobal  // w16
	StoreGlobal // w16

	PushStr // w16: index of interned string
	StrLen
	StrCat
	StrIdx
	StrCmp
	Substr

	NewArray // b8
	ArrLen
	ArrGet
	ArrSet
	ArrPush
	ArrPop

	NewHash
	HashGet
	HashSet
	HashDel
	HashKeys

	Add
	Sub
	Mul
	Div
	Mod
	Neg
	Inc
	Dec

	BitAnd
	BitOr
	BitXor
	BitNot
	Shl
	Shr

	CmpEq
	CmpNe
	CmpLt
	CmpGt
	CmpLe
	CmpGe
	Cmp
	StrEq
	StrNe
	StrLt
	StrGt
	StrLe
	StrGe

	Not
	And
	Or

	Jump      // addr16
	JumpIf    // addr16
	JumpIfNot // addr16
	JumpIfDef // addr16, reserved: never emitted or implemented
	Call      // addr16
	CallNative // b8
	Return
	ReturnVal

	EnterFrame // b8
	LeaveFrame

	Print
	PrintStr
	PrintNum
	PrintChar
	PrintLn
	Input
	InputChar

	ToNum
	ToStr
	TypeOf
	IsDef

	Match
	Subst // reserved: never emitted or implemented

	Halt
	Debug

	Invalid Op = 0xFF
)

var names = map[Op]string{
	Nop: "Nop", Push: "Push", PushByte: "PushByte", Pop: "Pop", Dup: "Dup",
	Swap: "Swap", Over: "Over",
	LoadLocal: "LoadLocal", StoreLocal: "StoreLocal", LoadGlobal: "LoadGlobal",
	StoreGlobal: "StoreGlobal",
	PushStr:     "PushStr", StrLen: "StrLen", StrCat: "StrCat", StrIdx: "StrIdx",
	StrCmp: "StrCmp", Substr: "Substr",
	NewArray: "NewArray", ArrLen: "ArrLen", ArrGet: "ArrGet", ArrSet: "ArrSet",
	ArrPush: "ArrPush", ArrPop: "ArrPop",
	NewHash: "NewHash", HashGet: "HashGet", HashSet: "HashSet", HashDel: "HashDel",
	HashKeys: "HashKeys",
	Add:      "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Mod: "Mod", Neg: "Neg",
	Inc: "Inc", Dec: "Dec",
	BitAnd: "BitAnd", BitOr: "BitOr", BitXor: "BitXor", BitNot: "BitNot",
	Shl: "Shl", Shr: "Shr",
	CmpEq: "CmpEq", CmpNe: "CmpNe", CmpLt: "CmpLt", CmpGt: "CmpGt", CmpLe: "CmpLe",
	CmpGe: "CmpGe", Cmp: "Cmp",
	StrEq: "StrEq", StrNe: "StrNe", StrLt: "StrLt", StrGt: "StrGt", StrLe: "StrLe",
	StrGe: "StrGe",
	Not:  "Not", And: "And", Or: "Or",
	Jump: "Jump", JumpIf: "JumpIf", JumpIfNot: "JumpIfNot", JumpIfDef: "JumpIfDef",
	Call: "Call", CallNative: "CallNative", Return: "Return", ReturnVal: "ReturnVal",
	EnterFrame: "EnterFrame", LeaveFrame: "LeaveFrame",
	Print: "Print", PrintStr: "PrintStr", PrintNum: "PrintNum", PrintChar: "PrintChar",
	PrintLn: "PrintLn", Input: "Input", InputChar: "InputChar",
	ToNum: "ToNum", ToStr: "ToStr", TypeOf: "TypeOf", IsDef: "IsDef",
	Match: "Match", Subst: "Subst",
	Halt: "Halt", Debug: "Debug", Invalid: "Invalid",
}

func (op Op) String() string {
	if s, ok := names[op]; ok {
		return s
	}
	return "Invalid"
}

// operandSize maps an opcode to its operand width in bytes: 0, 1, or 2.
var operandSize = map[Op]int{
	Push: 2, PushByte: 1,
	LoadLocal: 1, StoreLocal: 1, LoadGlobal: 2, StoreGlobal: 2,
	PushStr:  2,
	NewArray: 1,
	Jump:     2, JumpIf: 2, JumpIfNot: 2, JumpIfDef: 2, Call: 2, CallNative: 1,
	EnterFrame: 1,
}

// Size returns the total instruction length in bytes (opcode plus operand)
// for op. Used by both the compiler, for position tracking, and the
// disassembler.
func Size(op Op) int {
	return 1 + operandSize[op]
}
