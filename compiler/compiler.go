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

// Package compiler lowers a parsed statement list into a bytecode.Module:
// a two-pass walk that pre-scans subroutine signatures, then emits code
// while tracking lexical scopes, loop-control patch sites, and forward
// references to not-yet-defined subroutines.
package compiler

import (
	"fmt"
	"sort"

	"mplc/ast"
	"mplc/bytecode"
	"mplc/token"
)

const maxErrors = 10

// ErrCompile collects one or more compile failures with source positions.
type ErrCompile []struct {
	Pos token.Position
	Msg string
}

func (e ErrCompile) Error() string {
	if len(e) == 1 {
		return fmt.Sprintf("%s: %s", e[0].Pos, e[0].Msg)
	}
	s := fmt.Sprintf("%d errors:\n", len(e))
	for _, it := range e {
		s += fmt.Sprintf("  %s: %s\n", it.Pos, it.Msg)
	}
	return s
}

func asErr(pos token.Position, format string, args ...interface{}) ErrCompile {
	return ErrCompile{{Pos: pos, Msg: fmt.Sprintf(format, args...)}}
}

// subInfo records a subroutine's address and arity, set at Pass 1 and
// patched with its real address once Pass 2 emits its body.
type subInfo struct {
	addr   int
	params int
}

// forwardRef is a call site whose callee wasn't yet known when compiled.
type forwardRef struct {
	name      string
	operand   int // byte offset of the 2-byte address operand to patch
	pos       token.Position
}

// loopFrame tracks the `last`/`next` jump-operand offsets inside the current
// loop, patched once the loop's exit address (last) and continue address
// (next — the condition re-check for while, the step/increment for
// for/foreach) are known.
type loopFrame struct {
	lastPatch []int
	nextPatch []int
}

// frame is one subroutine's (or the top level's) local-variable space: a
// stack of block scopes sharing one monotonically increasing slot counter,
// so that nested blocks never alias each other's locals.
type frame struct {
	scopes   []map[string]int
	nextSlot int
	tempPool []int
	tempUsed int
}

func newFrame() *frame {
	return &frame{scopes: []map[string]int{{}}}
}

func (f *frame) push() { f.scopes = append(f.scopes, map[string]int{}) }
func (f *frame) pop()  { f.scopes = f.scopes[:len(f.scopes)-1] }

func (f *frame) find(name string) (int, bool) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if idx, ok := f.scopes[i][name]; ok {
			return idx, true
		}
	}
	return 0, false
}

// declare allocates a fresh slot for name in the innermost scope.
func (f *frame) declare(name string) int {
	idx := f.nextSlot
	f.nextSlot++
	f.scopes[len(f.scopes)-1][name] = idx
	return idx
}

// allocTemp reserves a scratch local slot for index-assignment reordering.
// Slots are pooled and reused by nesting depth, so an expression whose
// container or key itself needs a scratch slot (e.g. `$a[$i++] = 5`) gets a
// distinct one rather than clobbering the outer call's. Pair with
// releaseTemp once the slot's last use has been emitted.
func (f *frame) allocTemp() int {
	if f.tempUsed >= len(f.tempPool) {
		slot := f.nextSlot
		f.nextSlot++
		f.tempPool = append(f.tempPool, slot)
	}
	slot := f.tempPool[f.tempUsed]
	f.tempUsed++
	return slot
}

func (f *frame) releaseTemp() {
	f.tempUsed--
}

// Compiler walks a statement list and emits a bytecode.Module.
type Compiler struct {
	mod  *bytecode.Module
	code []byte

	globals map[string]int
	subs    map[string]*subInfo

	frames []*frame
	loops  []*loopFrame

	forwardRefs []forwardRef
	errs        ErrCompile

	subDepth int // >0 while compiling a subroutine body
}

// New returns a Compiler ready to compile a single program.
func New() *Compiler {
	return &Compiler{
		mod:     &bytecode.Module{},
		globals: map[string]int{},
		subs:    map[string]*subInfo{},
		frames:  []*frame{newFrame()},
	}
}

func (c *Compiler) frame() *frame { return c.frames[len(c.frames)-1] }

func (c *Compiler) pos() int { return len(c.code) }

func (c *Compiler) emit(op bytecode.Op) {
	c.code = append(c.code, byte(op))
}

func (c *Compiler) emitByte(op bytecode.Op, b byte) {
	c.code = append(c.code, byte(op), b)
}

// emitWord appends op followed by its 2-byte little-endian operand and
// returns the byte offset of the operand, for later patching.
func (c *Compiler) emitWord(op bytecode.Op, w uint16) int {
	c.code = append(c.code, byte(op), byte(w), byte(w>>8))
	return len(c.code) - 2
}

func (c *Compiler) patch(operandOffset, addr int) {
	c.code[operandOffset] = byte(addr)
	c.code[operandOffset+1] = byte(addr >> 8)
}

func (c *Compiler) internString(s string) int {
	return c.mod.InternString(s)
}

func (c *Compiler) fail(pos token.Position, format string, args ...interface{}) {
	c.errs = append(c.errs, asErr(pos, format, args...)[0])
}

// Compile runs both passes over prog and returns the finished module, or an
// error. Statement compilation stops at the first failure; unresolved
// subroutine calls are reported together, up to maxErrors of them. No
// partial module is returned.
func Compile(prog []ast.Stmt) (*bytecode.Module, error) {
	c := New()
	c.pass1(prog)
	for _, s := range prog {
		if err := c.compileStmt(s); err != nil {
			return nil, err
		}
	}
	c.emit(bytecode.Halt)

	if err := c.resolveForwardRefs(); err != nil {
		return nil, err
	}

	c.mod.Code = c.code
	c.mod.Entry = 0
	names := make([]string, 0, len(c.subs))
	for name := range c.subs {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic output: map iteration order isn't
	for _, name := range names {
		info := c.subs[name]
		c.mod.Subs = append(c.mod.Subs, bytecode.SubInfo{Name: name, Addr: info.addr, Params: info.params})
	}
	return c.mod, nil
}

// pass1 pre-scans top-level subroutine definitions and records each name
// and parameter count with a placeholder address of 0. A call compiled
// before the body has been emitted still goes through the forward-reference
// list and is patched by resolveForwardRefs.
func (c *Compiler) pass1(prog []ast.Stmt) {
	for _, s := range prog {
		if sd, ok := s.(*ast.SubDecl); ok {
			c.subs[sd.Name] = &subInfo{addr: 0, params: len(sd.Params)}
		}
	}
}

// resolveForwardRefs patches every recorded forward call-site to its
// subroutine's final address, collecting up to maxErrors unresolved names
// before reporting.
func (c *Compiler) resolveForwardRefs() error {
	var errs ErrCompile
	for _, ref := range c.forwardRefs {
		info, ok := c.subs[ref.name]
		if !ok || info.addr == 0 {
			errs = append(errs, asErr(ref.pos, "undefined subroutine: %s", ref.name)[0])
			if len(errs) >= maxErrors {
				break
			}
			continue
		}
		c.patch(ref.operand, info.addr)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
