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

package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mplc/ast"
	"mplc/bytecode"
	"mplc/compiler"
	"mplc/parser"
)

func mustParse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	p := parser.New(src)
	prog, err := p.Parse()
	require.NoError(t, err)
	return prog
}

func TestCompileScalarArith(t *testing.T) {
	prog := mustParse(t, `my $x = 1; print $x + 2;`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)
	assert.Empty(t, mod.Strings)

	want := []byte{
		byte(bytecode.Push), 1, 0,
		byte(bytecode.StoreLocal), 0,
		byte(bytecode.LoadLocal), 0,
		byte(bytecode.Push), 2, 0,
		byte(bytecode.Add),
		byte(bytecode.Print),
		byte(bytecode.Halt),
	}
	assert.Equal(t, want, mod.Code)
}

func TestCompileMatchTrue(t *testing.T) {
	prog := mustParse(t, `my $s = "hello world"; if ($s =~ /world/) { print "Y"; }`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world", "world", "Y"}, mod.Strings)
	assert.Contains(t, bytecode.DisassembleAll(mod.Code), "Match")
}

func TestCompileMatchNegated(t *testing.T) {
	prog := mustParse(t, `my $s = "hello"; if ($s !~ /xyz/) { print "P"; } else { print "F"; }`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "xyz", "P", "F"}, mod.Strings)
	dis := bytecode.DisassembleAll(mod.Code)
	assert.Contains(t, dis, "Match")
	assert.Contains(t, dis, "Not")
}

func TestCompileSubCallForwardReference(t *testing.T) {
	prog := mustParse(t, `print f() + 10; sub f { return 5; }`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)

	require.Len(t, mod.Subs, 1)
	sub := mod.Subs[0]
	assert.Equal(t, "f", sub.Name)
	assert.Equal(t, 0, sub.Params)
	assert.Greater(t, sub.Addr, 0)

	// The Call operand must have been patched to the sub's final address.
	callOff := -1
	for pc := 0; pc < len(mod.Code); {
		next, _ := bytecode.Disassemble(mod.Code, pc)
		if bytecode.Op(mod.Code[pc]) == bytecode.Call {
			callOff = pc
		}
		pc = next
	}
	require.GreaterOrEqual(t, callOff, 0)
	operand := int(mod.Code[callOff+1]) | int(mod.Code[callOff+2])<<8
	assert.Equal(t, sub.Addr, operand)
}

func TestCompileUndefinedSubroutineFails(t *testing.T) {
	prog := mustParse(t, `missing();`)
	_, err := compiler.Compile(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined subroutine: missing")
}

func TestCompileWhileLoop(t *testing.T) {
	prog := mustParse(t, `my $i = 0; while ($i < 3) { $i = $i + 1; } print $i;`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)
	dis := bytecode.DisassembleAll(mod.Code)
	assert.Contains(t, dis, "CmpLt")
	assert.Contains(t, dis, "JumpIfNot")
}

func TestLastOutsideLoopFails(t *testing.T) {
	prog := mustParse(t, `last;`)
	_, err := compiler.Compile(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last outside of loop")
}

func TestNextOutsideLoopFails(t *testing.T) {
	prog := mustParse(t, `next;`)
	_, err := compiler.Compile(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "next outside of loop")
}

func TestLastBreaksOutOfWhile(t *testing.T) {
	prog := mustParse(t, `my $i = 0; while (1) { if ($i == 2) { last; } $i = $i + 1; } print $i;`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)
	assert.Contains(t, bytecode.DisassembleAll(mod.Code), "Jump")
}

func TestForLoopNextTargetsStepNotPastIt(t *testing.T) {
	prog := mustParse(t, `for (my $i = 0; $i < 3; $i = $i + 1) { next; }`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)

	// Find the `next`-emitted Jump (the first one inside the body) and
	// confirm it targets the start of the step expression, not the loop's
	// re-check address.
	var jumps []int
	for pc := 0; pc < len(mod.Code); {
		next, _ := bytecode.Disassemble(mod.Code, pc)
		if bytecode.Op(mod.Code[pc]) == bytecode.Jump {
			jumps = append(jumps, pc)
		}
		pc = next
	}
	require.Len(t, jumps, 2)
	nextJump, loopBack := jumps[0], jumps[1]
	target := int(mod.Code[nextJump+1]) | int(mod.Code[nextJump+2])<<8
	recheck := int(mod.Code[loopBack+1]) | int(mod.Code[loopBack+2])<<8
	// The body is only `next`, so the step begins right after its Jump.
	assert.Equal(t, nextJump+3, target)
	assert.NotEqual(t, recheck, target)
}

func TestAutoVivifyGlobalOnAssignThenRead(t *testing.T) {
	prog := mustParse(t, `$y = 5; print $y;`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)
	dis := bytecode.DisassembleAll(mod.Code)
	assert.Contains(t, dis, "StoreGlobal")
	assert.Contains(t, dis, "LoadGlobal")
}

func TestUndefinedVariableReadFails(t *testing.T) {
	prog := mustParse(t, `print $never_declared;`)
	_, err := compiler.Compile(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
}

func TestPostIncrementOnIndexedTarget(t *testing.T) {
	prog := mustParse(t, `my @a = (1, 2, 3); my $x = $a[0]++;`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)
	dis := bytecode.DisassembleAll(mod.Code)
	assert.Contains(t, dis, "ArrGet")
	assert.Contains(t, dis, "ArrSet")
	assert.Contains(t, dis, "Swap")
}

func TestCompoundAssignOnIndexedTarget(t *testing.T) {
	prog := mustParse(t, `my @a = (1, 2, 3); $a[1] += 10;`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)
	dis := bytecode.DisassembleAll(mod.Code)
	assert.Contains(t, dis, "ArrGet")
	assert.Contains(t, dis, "ArrSet")
	assert.Contains(t, dis, "Add")
}

func TestCompileSubReturnLeavesFrame(t *testing.T) {
	prog := mustParse(t, `sub f { return 5; } print f();`)
	mod, err := compiler.Compile(prog)
	require.NoError(t, err)
	dis := bytecode.DisassembleAll(mod.Code)
	assert.Contains(t, dis, "LeaveFrame")
	assert.Contains(t, dis, "ReturnVal")
}

func TestIdempotentCompilation(t *testing.T) {
	src := `my $i = 0; while ($i < 3) { $i = $i + 1; } print $i;`
	p1 := mustParse(t, src)
	p2 := mustParse(t, src)
	m1, err := compiler.Compile(p1)
	require.NoError(t, err)
	m2, err := compiler.Compile(p2)
	require.NoError(t, err)
	assert.Equal(t, m1.Code, m2.Code)
	assert.Equal(t, m1.Strings, m2.Strings)
}
