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

import "mplc/bytecode"

// handlerDef pairs a bytecode opcode with the Z80 handler body that
// implements it. Order matters: it is the order the dispatch loop's
// compare-and-branch chain tests opcodes in.
type handlerDef struct {
	op   bytecode.Op
	name string
	body func(e *emitter)
}

// handlers lists the opcodes the interpreter implements. Any other opcode,
// including some the compiler emits (ReturnVal, LoadGlobal, StoreGlobal,
// Swap, Over, JumpIf, PrintLn and others), falls through to the
// halt-on-unknown-opcode handler at the end of the chain.
var handlers = []handlerDef{
	{bytecode.Push, "h_push", hPush},
	{bytecode.PushByte, "h_pushbyte", hPushByte},
	{bytecode.PushStr, "h_pushstr", hPushStr},
	{bytecode.Pop, "h_pop", hPop},
	{bytecode.Dup, "h_dup", hDup},
	{bytecode.LoadLocal, "h_loadlocal", hLoadLocal},
	{bytecode.StoreLocal, "h_storelocal", hStoreLocal},
	{bytecode.Add, "h_add", hAdd},
	{bytecode.Mod, "h_mod", hMod},
	{bytecode.Inc, "h_inc", hInc},
	{bytecode.CmpEq, "h_cmpeq", hCmpEq},
	{bytecode.CmpLt, "h_cmplt", hCmpLt},
	{bytecode.CmpLe, "h_cmple", hCmpLe},
	{bytecode.Not, "h_not", hNot},
	{bytecode.And, "h_and", hAnd},
	{bytecode.Or, "h_or", hOr},
	{bytecode.Jump, "h_jump", hJump},
	{bytecode.JumpIfNot, "h_jumpifnot", hJumpIfNot},
	{bytecode.Call, "h_call", hCall},
	{bytecode.Return, "h_return", hReturn},
	{bytecode.EnterFrame, "h_enterframe", hEnterFrame},
	{bytecode.LeaveFrame, "h_leaveframe", hLeaveFrame},
	{bytecode.Print, "h_print", hPrint},
	{bytecode.Match, "h_match", hMatch},
	{bytecode.Halt, "h_halt", hHalt},
}

// emitInterpreter writes the full interpreter (init + dispatch loop +
// every handler body) into e.
func emitInterpreter(e *emitter) {
	emitInit(e)
	emitDispatchLoop(e)
	for _, h := range handlers {
		e.Label(h.name)
		h.body(e)
		if h.op != bytecode.Halt {
			e.jp("dispatch_top")
		}
	}
	e.Label("h_unknown")
	e.halt()
}

// --- Shared micro-helpers ---
//
// Per the fixed memory map, VM-stack push/pop and PC advance are inlined at
// every call site rather than factored into Z80 subroutines, to keep the
// dispatch loop flat and the hardware call stack free.

// pushVM emits an inline VM-stack push of DE: the VM stack grows downward
// from a pointer held in vm_sp.
func (e *emitter) pushVM() {
	e.ldHLIndNN(stateSP)
	e.decHL()
	e.decHL()
	e.ldIndNNHL(stateSP) // write back decremented pointer first
	e.ldHLIndNN(stateSP)
	e.ldRegReg(regA, regE)
	e.ldIndHLA()
	e.incHL()
	e.ldRegReg(regA, regD)
	e.ldIndHLA()
}

// popVM emits an inline VM-stack pop into DE.
func (e *emitter) popVM() {
	e.ldHLIndNN(stateSP)
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.incHL()
	e.ldAIndHL()
	e.ldRegReg(regD, regA)
	e.incHL()
	e.ldIndNNHL(stateSP)
}

// opcodePtr computes HL = vm_code + vm_pc, the address of the current
// instruction's opcode byte.
func (e *emitter) opcodePtr() {
	e.ldHLIndNN(stateCode)
	e.ldDEIndNN(statePC)
	e.addHLDE()
}

// operandBytePtr computes HL = address of the instruction's first operand
// byte (one past the opcode).
func (e *emitter) operandBytePtr() {
	e.opcodePtr()
	e.incHL()
}

// advancePC adds n to vm_pc.
func (e *emitter) advancePC(n uint16) {
	e.ldHLIndNN(statePC)
	e.ldDEImm16(n)
	e.addHLDE()
	e.ldIndNNHL(statePC)
}

// emitInit sets the reset-vector entry point: disable interrupts, set up
// the Z80 hardware stack, and initialise VM state from the module header
// at ImageBase (magic, string-table offset, code length, entry point).
func emitInit(e *emitter) {
	e.di()
	e.ldSPImm16(StackTop)

	// vm_code = ImageBase + 10 (header size)
	e.ldHLImm16(ImageBase + 10)
	e.ldIndNNHL(stateCode)

	// vm_strings = ImageBase + strOff (header bytes 4..5)
	e.ldHLImm16(ImageBase + 4)
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.incHL()
	e.ldAIndHL()
	e.ldRegReg(regD, regA)
	e.ldHLImm16(ImageBase)
	e.addHLDE()
	e.ldIndNNHL(stateStrings)

	// vm_pc = entry point (header bytes 8..9)
	e.ldHLImm16(ImageBase + 8)
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.incHL()
	e.ldAIndHL()
	e.ldRegReg(regD, regA)
	e.ldHLImm16(0)
	e.addHLDE()
	e.ldIndNNHL(statePC)

	e.ldHLImm16(VMStackBase)
	e.ldIndNNHL(stateSP)
	e.ldIndNNHL(stateFP)
	e.ldHLImm16(HeapBase)
	e.ldIndNNHL(stateHeapPtr)
}

// emitDispatchLoop writes the top of the loop: load the current opcode
// byte into A, then the handler chain tests it via `cp imm; jp nz, next`.
func emitDispatchLoop(e *emitter) {
	e.Label("dispatch_top")
	e.opcodePtr()
	e.ldAIndHL()
	for i, h := range handlers {
		next := "h_unknown"
		if i+1 < len(handlers) {
			next = handlers[i+1].name
		}
		e.cpImm8(byte(h.op))
		e.jpNZ(next)
	}
}

func hPush(e *emitter) {
	e.operandBytePtr()
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.incHL()
	e.ldAIndHL()
	e.ldRegReg(regD, regA)
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.Push)))
}

// hPushByte sign-extends its one-byte operand into a 16-bit VM value: the
// byte's bit 7, rotated into carry, feeds SBC A,A to produce 0x00 or 0xFF.
func hPushByte(e *emitter) {
	e.operandBytePtr()
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.rlca()
	e.sbcAReg(regA)
	e.ldRegReg(regD, regA)
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.PushByte)))
}

// hPushStr resolves a string-table index to the address of its
// length-prefixed body: skip the one-byte string count, then walk idx
// length-prefixed entries.
func hPushStr(e *emitter) {
	e.operandBytePtr()
	e.ldAIndHL()
	e.ldRegReg(regC, regA) // C = idx lo (index fits in a byte for this VM)

	e.ldHLIndNN(stateStrings)
	e.incHL() // skip string count byte
	e.Label("h_pushstr_walk")
	e.ldRegReg(regA, regC)
	e.orA()
	e.jpZ("h_pushstr_found")
	e.decReg(regC)
	e.ldAIndHL()
	e.ldRegReg(regE, regA) // E = this entry's length
	e.incHL()
	// HL += DE (skip this entry's body)
	e.ldRegImm8(regD, 0)
	e.addHLDE()
	e.jp("h_pushstr_walk")
	e.Label("h_pushstr_found")
	e.ldRegReg(regD, regH)
	e.ldRegReg(regE, regL)
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.PushStr)))
}

func hPop(e *emitter) {
	e.popVM()
	e.advancePC(uint16(bytecode.Size(bytecode.Pop)))
}

func hDup(e *emitter) {
	e.popVM()
	e.pushVM()
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.Dup)))
}

// localAddr computes HL = FP + slot*2, the address of local slot `slot`
// (read from the operand byte into A first).
func (e *emitter) localAddr() {
	e.operandBytePtr()
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.ldRegImm8(regD, 0) // DE = slot, zero-extended
	e.ldHLIndNN(stateFP)
	e.addHLDE() // HL = FP + slot
	e.addHLDE() // HL = FP + slot*2
}

func hLoadLocal(e *emitter) {
	e.localAddr()
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.incHL()
	e.ldAIndHL()
	e.ldRegReg(regD, regA)
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.LoadLocal)))
}

func hStoreLocal(e *emitter) {
	e.localAddr()
	e.pushHL()
	e.popVM() // value to store, now in DE
	e.popHL()
	e.ldRegReg(regA, regE)
	e.ldIndHLA()
	e.incHL()
	e.ldRegReg(regA, regD)
	e.ldIndHLA()
	e.advancePC(uint16(bytecode.Size(bytecode.StoreLocal)))
}

// popTwoVM pops the top two VM-stack values into HL (the one popped first,
// i.e. the right-hand operand) and DE (the left-hand operand).
func (e *emitter) popTwoVM() {
	e.popVM()
	e.ldRegReg(regH, regD)
	e.ldRegReg(regL, regE)
	e.popVM()
}

func hAdd(e *emitter) {
	e.popTwoVM() // HL=right, DE=left
	e.addHLDE()
	e.ldRegReg(regD, regH)
	e.ldRegReg(regE, regL)
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.Add)))
}

// hMod computes left mod right by repeated subtraction: HL (running
// remainder, starts as left) has DE (right) subtracted until it would go
// negative, at which point the last subtraction is undone.
func hMod(e *emitter) {
	e.popTwoVM()  // HL=right, DE=left
	e.exDEHL()    // HL=left (remainder), DE=right
	e.Label("h_mod_loop")
	e.orA() // clear carry
	e.sbcHLDE()
	e.jpC("h_mod_restore")
	e.jp("h_mod_loop")
	e.Label("h_mod_restore")
	e.addHLDE() // undo the subtraction that went negative
	e.exDEHL()  // DE = remainder
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.Mod)))
}

func hInc(e *emitter) {
	e.popVM()
	e.incDE()
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.Inc)))
}

func hCmpEq(e *emitter) {
	e.popTwoVM() // HL=right, DE=left
	e.orA()
	e.sbcHLDE() // HL = right-left; Z iff equal
	e.ldDEImm16(1)
	e.jpZ("h_cmpeq_push")
	e.ldDEImm16(0)
	e.Label("h_cmpeq_push")
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.CmpEq)))
}

func hCmpLt(e *emitter) {
	e.popTwoVM() // HL=right, DE=left
	e.exDEHL()   // HL=left, DE=right
	e.orA()
	e.sbcHLDE() // HL = left-right; carry iff left<right
	e.ldDEImm16(0)
	e.jpNC("h_cmplt_push")
	e.ldDEImm16(1)
	e.Label("h_cmplt_push")
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.CmpLt)))
}

func hCmpLe(e *emitter) {
	e.popTwoVM() // HL=right, DE=left
	e.orA()
	e.sbcHLDE() // HL = right-left; carry iff right<left, i.e. left>right
	e.ldDEImm16(0)
	e.jpC("h_cmple_push") // left>right: result stays false
	e.ldDEImm16(1)
	e.Label("h_cmple_push")
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.CmpLe)))
}

func hNot(e *emitter) {
	e.popVM()
	e.ldRegReg(regA, regD)
	e.orReg(regE) // Z set iff DE == 0 (operand was falsy)
	e.jpZ("h_not_zero")
	e.ldDEImm16(0)
	e.jp("h_not_push")
	e.Label("h_not_zero")
	e.ldDEImm16(1)
	e.Label("h_not_push")
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.Not)))
}

// hAnd pushes 1 iff both popped operands are nonzero (truthy), 0 otherwise.
func hAnd(e *emitter) {
	e.popTwoVM() // HL=right, DE=left
	e.ldRegReg(regA, regH)
	e.orReg(regL) // Z iff right == 0
	e.jpZ("h_and_false")
	e.ldRegReg(regA, regD)
	e.orReg(regE) // Z iff left == 0
	e.jpZ("h_and_false")
	e.ldDEImm16(1)
	e.jp("h_and_push")
	e.Label("h_and_false")
	e.ldDEImm16(0)
	e.Label("h_and_push")
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.And)))
}

// hOr pushes 1 iff at least one popped operand is nonzero (truthy).
func hOr(e *emitter) {
	e.popTwoVM() // HL=right, DE=left
	e.ldRegReg(regA, regH)
	e.orReg(regL) // NZ iff right != 0
	e.jpNZ("h_or_true")
	e.ldRegReg(regA, regD)
	e.orReg(regE) // NZ iff left != 0
	e.jpNZ("h_or_true")
	e.ldDEImm16(0)
	e.jp("h_or_push")
	e.Label("h_or_true")
	e.ldDEImm16(1)
	e.Label("h_or_push")
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.Or)))
}

func hJump(e *emitter) {
	e.operandBytePtr()
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.incHL()
	e.ldAIndHL()
	e.ldRegReg(regD, regA)
	e.ldIndNNDE(statePC)
}

func hJumpIfNot(e *emitter) {
	e.popVM()
	e.ldRegReg(regA, regD)
	e.orReg(regE) // Z set iff DE == 0 (condition was falsy)
	e.jpNZ("h_jumpifnot_true")
	e.operandBytePtr()
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.incHL()
	e.ldAIndHL()
	e.ldRegReg(regD, regA)
	e.ldIndNNDE(statePC)
	e.jp("dispatch_top")
	e.Label("h_jumpifnot_true")
	e.advancePC(uint16(bytecode.Size(bytecode.JumpIfNot)))
}

// hCall pushes the return PC (current vm_pc + instruction size) and the
// old FP onto the VM stack, then jumps to the target address.
func hCall(e *emitter) {
	e.ldHLIndNN(statePC)
	e.ldDEImm16(uint16(bytecode.Size(bytecode.Call)))
	e.addHLDE()
	e.ldRegReg(regD, regH)
	e.ldRegReg(regE, regL)
	e.pushVM() // push return PC

	e.ldHLIndNN(stateFP)
	e.ldRegReg(regD, regH)
	e.ldRegReg(regE, regL)
	e.pushVM() // push old FP

	e.operandBytePtr()
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.incHL()
	e.ldAIndHL()
	e.ldRegReg(regD, regA)
	e.ldIndNNDE(statePC)
}

func hReturn(e *emitter) {
	e.popVM() // old FP
	e.ldIndNNDE(stateFP)
	e.popVM() // return PC
	e.ldIndNNDE(statePC)
}

// hEnterFrame sets FP = current VM SP + 4 bytes, so slot 0 is the first
// argument just above the saved old-FP/return-PC pair.
func hEnterFrame(e *emitter) {
	e.ldHLIndNN(stateSP)
	e.ldDEImm16(4)
	e.addHLDE()
	e.ldIndNNHL(stateFP)
	e.advancePC(uint16(bytecode.Size(bytecode.EnterFrame)))
}

// hLeaveFrame undoes EnterFrame by resetting SP = FP - 4.
func hLeaveFrame(e *emitter) {
	e.ldHLIndNN(stateFP)
	e.ldDEImm16(4)
	e.sbcHLDE()
	e.ldIndNNHL(stateSP)
	e.advancePC(uint16(bytecode.Size(bytecode.LeaveFrame)))
}

// hPrint dispatches on the value-tagging threshold (ImageBase): values at
// or above it are string pointers, printed as their length-prefixed body;
// values below are numbers, converted to 0-99 decimal.
func hPrint(e *emitter) {
	e.popVM()
	e.ldRegReg(regA, regD)
	e.cpImm8(byte(ImageBase >> 8))
	e.jpNC("h_print_str")

	// Numeric path: DE low byte 0-99, tens digit with leading-zero
	// suppression, then ones digit, both via repeated subtraction.
	e.ldRegReg(regA, regE)
	e.ldRegImm8(regB, 0)
	e.Label("h_print_tens")
	e.cpImm8(10)
	e.jpC("h_print_tens_done")
	e.subAImm8(10)
	e.incReg(regB)
	e.jp("h_print_tens")
	e.Label("h_print_tens_done")
	e.pushAF()
	e.ldRegReg(regC, regB)
	e.ldRegReg(regA, regC)
	e.cpImm8(0)
	e.jpZ("h_print_ones")
	e.addAImm8('0')
	e.outPortA(outPort)
	e.Label("h_print_ones")
	e.popAF()
	e.addAImm8('0')
	e.outPortA(outPort)
	e.jp("h_print_done")

	e.Label("h_print_str")
	e.ldRegReg(regH, regD)
	e.ldRegReg(regL, regE)
	e.ldAIndHL()
	e.ldRegReg(regB, regA) // B = remaining length
	e.incHL()
	e.Label("h_print_str_loop")
	e.ldRegReg(regA, regB)
	e.orA()
	e.jpZ("h_print_done")
	e.ldAIndHL()
	e.outPortA(outPort)
	e.incHL()
	e.decReg(regB)
	e.jp("h_print_str_loop")

	e.Label("h_print_done")
}

// hMatch implements an anchor-anywhere substring search: pattern `.` matches
// any single subject character. The outer loop tries each subject start
// position while enough subject bytes remain to fit the pattern; the inner
// loop compares byte-by-byte. Pushes 1 on the first full pattern match, 0 if
// every start position fails.
func hMatch(e *emitter) {
	e.popTwoVM() // HL=pattern ptr, DE=subject ptr (pattern was pushed last)

	// Stash the raw subject pointer; HL is needed as scratch for the
	// pattern below before the subject gets its own pass.
	e.ldIndNNDE(stateMatchSubjPtr)

	// Pattern: first byte is length, rest is its data.
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.ldRegImm8(regD, 0)
	e.ldIndNNDE(stateMatchPatLen)
	e.incHL()
	e.ldIndNNHL(stateMatchPatStart)

	// Subject: same layout, reloading the raw pointer stashed above.
	e.ldHLIndNN(stateMatchSubjPtr)
	e.ldAIndHL()
	e.ldRegReg(regE, regA)
	e.ldRegImm8(regD, 0)
	e.ldIndNNDE(stateMatchRemaining)
	e.incHL()
	e.ldIndNNHL(stateMatchSubjPtr)

	e.Label("h_match_outer")
	e.ldHLIndNN(stateMatchRemaining)
	e.ldDEIndNN(stateMatchPatLen)
	e.orA()
	e.sbcHLDE() // carry iff remaining < patLen: no room left to try
	e.jpC("h_match_fail")

	e.ldHLIndNN(stateMatchSubjPtr)
	e.ldIndNNHL(stateMatchCurSubj)
	e.ldHLIndNN(stateMatchPatStart)
	e.ldIndNNHL(stateMatchCurPat)

	e.ldHLIndNN(stateMatchPatLen)
	e.ldRegReg(regB, regL)
	e.ldRegReg(regA, regB)
	e.orA()
	e.jpZ("h_match_success") // empty pattern matches at the first position

	e.Label("h_match_inner")
	e.ldHLIndNN(stateMatchCurPat)
	e.ldAIndHL()
	e.cpImm8('.')
	e.jpZ("h_match_inner_advance")
	e.ldRegReg(regC, regA)
	e.ldHLIndNN(stateMatchCurSubj)
	e.ldAIndHL()
	e.cpReg(regC)
	e.jpNZ("h_match_advance_outer")

	e.Label("h_match_inner_advance")
	e.ldHLIndNN(stateMatchCurPat)
	e.incHL()
	e.ldIndNNHL(stateMatchCurPat)
	e.ldHLIndNN(stateMatchCurSubj)
	e.incHL()
	e.ldIndNNHL(stateMatchCurSubj)
	e.decReg(regB)
	e.ldRegReg(regA, regB)
	e.orA()
	e.jpNZ("h_match_inner")
	e.jp("h_match_success")

	e.Label("h_match_advance_outer")
	e.ldHLIndNN(stateMatchSubjPtr)
	e.incHL()
	e.ldIndNNHL(stateMatchSubjPtr)
	e.ldHLIndNN(stateMatchRemaining)
	e.decHL()
	e.ldIndNNHL(stateMatchRemaining)
	e.jp("h_match_outer")

	e.Label("h_match_success")
	e.ldDEImm16(1)
	e.jp("h_match_push")
	e.Label("h_match_fail")
	e.ldDEImm16(0)
	e.Label("h_match_push")
	e.pushVM()
	e.advancePC(uint16(bytecode.Size(bytecode.Match)))
}

func hHalt(e *emitter) {
	e.halt()
}
