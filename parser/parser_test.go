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

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mplc/ast"
)

func parseOK(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	p := New(src)
	prog, err := p.Parse()
	require.NoError(t, err)
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parseOK(t, `my $x = 1;`)
	require.Len(t, prog, 1)
	vd, ok := prog[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.False(t, vd.Our)
	assert.Equal(t, []string{"x"}, vd.Names)
	assert.Equal(t, []ast.Sigil{ast.ScalarSigil}, vd.Sigil)
	lit, ok := vd.Init.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 1, lit.Value)
}

func TestParseMultiVarDecl(t *testing.T) {
	prog := parseOK(t, `our ($a, $b) = (1, 2);`)
	vd := prog[0].(*ast.VarDecl)
	assert.True(t, vd.Our)
	assert.Equal(t, []string{"a", "b"}, vd.Names)
	_, ok := vd.Init.(*ast.ListLit)
	assert.True(t, ok)
}

func TestParseIfElsifElse(t *testing.T) {
	prog := parseOK(t, `
if ($x == 1) {
	print "one";
} elsif ($x == 2) {
	print "two";
} else {
	print "other";
}
`)
	require.Len(t, prog, 1)
	n := prog[0].(*ast.If)
	assert.False(t, n.Negate)
	require.Len(t, n.ElsIfs, 1)
	require.NotNil(t, n.Else)
}

func TestParseUnless(t *testing.T) {
	prog := parseOK(t, `unless ($x) { print "no"; }`)
	n := prog[0].(*ast.If)
	assert.True(t, n.Negate)
}

func TestParseWhileUntil(t *testing.T) {
	prog := parseOK(t, `while ($i < 10) { $i++; }`)
	w := prog[0].(*ast.While)
	assert.False(t, w.Negate)

	prog2 := parseOK(t, `until ($done) { last; }`)
	w2 := prog2[0].(*ast.While)
	assert.True(t, w2.Negate)
	lc := w2.Body[0].(*ast.LoopCtl)
	assert.True(t, lc.Last)
}

func TestParseCStyleFor(t *testing.T) {
	prog := parseOK(t, `for (my $i = 0; $i < 10; $i++) { print $i; }`)
	f := prog[0].(*ast.For)
	require.NotNil(t, f.Init)
	require.NotNil(t, f.Cond)
	require.NotNil(t, f.Step)
}

func TestParseForeach(t *testing.T) {
	prog := parseOK(t, `foreach my $v (@list) { print $v; }`)
	fe := prog[0].(*ast.Foreach)
	assert.Equal(t, "v", fe.VarName)

	prog2 := parseOK(t, `for $v (@list) { print $v; }`)
	fe2 := prog2[0].(*ast.Foreach)
	assert.Equal(t, "v", fe2.VarName)
}

func TestParseSubDecl(t *testing.T) {
	prog := parseOK(t, `
sub add($a, $b) {
	return $a + $b;
}
`)
	sd := prog[0].(*ast.SubDecl)
	assert.Equal(t, "add", sd.Name)
	assert.Equal(t, []string{"a", "b"}, sd.Params)
	require.Len(t, sd.Body, 1)
	ret := sd.Body[0].(*ast.Return)
	bin := ret.Value.(*ast.BinOp)
	assert.Equal(t, "+", bin.Op.String())
}

func TestParsePrintSay(t *testing.T) {
	prog := parseOK(t, `print "a", "b"; say $x;`)
	p1 := prog[0].(*ast.Print)
	assert.False(t, p1.Say)
	assert.Len(t, p1.Args, 2)
	p2 := prog[1].(*ast.Print)
	assert.True(t, p2.Say)
}

func TestParsePrecedence(t *testing.T) {
	prog := parseOK(t, `$x = 1 + 2 * 3;`)
	es := prog[0].(*ast.ExprStmt)
	assign := es.X.(*ast.Assign)
	top := assign.Value.(*ast.BinOp)
	assert.Equal(t, "+", top.Op.String())
	_, isInt := top.Left.(*ast.IntLit)
	assert.True(t, isInt)
	rhs := top.Right.(*ast.BinOp)
	assert.Equal(t, "*", rhs.Op.String())
}

func TestParseTernary(t *testing.T) {
	prog := parseOK(t, `$x = $a ? 1 : 2;`)
	assign := prog[0].(*ast.ExprStmt).X.(*ast.Assign)
	tern := assign.Value.(*ast.Ternary)
	assert.NotNil(t, tern.Cond)
}

func TestParseMatch(t *testing.T) {
	prog := parseOK(t, `$ok = $s =~ /foo/i;`)
	assign := prog[0].(*ast.ExprStmt).X.(*ast.Assign)
	m := assign.Value.(*ast.Match)
	assert.Equal(t, "foo", m.Pattern)
	assert.Equal(t, "i", m.Flags)
	assert.False(t, m.Not)
}

func TestParseHashLit(t *testing.T) {
	prog := parseOK(t, `my %h = { a => 1, b => 2 };`)
	vd := prog[0].(*ast.VarDecl)
	hl := vd.Init.(*ast.HashLit)
	require.Len(t, hl.Keys, 2)
}

func TestParseIndexAndArrow(t *testing.T) {
	prog := parseOK(t, `$x = $arr[0]; $y = $h->{key};`)
	a1 := prog[0].(*ast.ExprStmt).X.(*ast.Assign)
	idx := a1.Value.(*ast.Index)
	assert.False(t, idx.Hash)

	a2 := prog[1].(*ast.ExprStmt).X.(*ast.Assign)
	idx2 := a2.Value.(*ast.Index)
	assert.True(t, idx2.Hash)
}

func TestParseCompoundAssign(t *testing.T) {
	prog := parseOK(t, `$x += 1;`)
	ca := prog[0].(*ast.ExprStmt).X.(*ast.CompoundAssign)
	assert.Equal(t, "+=", ca.Op.String())
}

func TestParseCallExpr(t *testing.T) {
	prog := parseOK(t, `foo(1, $x);`)
	call := prog[0].(*ast.ExprStmt).X.(*ast.Call)
	assert.Equal(t, "foo", call.Name)
	assert.Len(t, call.Args, 2)
}

func TestParseBlockStmt(t *testing.T) {
	prog := parseOK(t, `{ my $x = 1; }`)
	_, ok := prog[0].(*ast.Block)
	assert.True(t, ok)
}

func TestParseUsePackage(t *testing.T) {
	prog := parseOK(t, `package Foo; use strict;`)
	_, ok := prog[0].(*ast.Package)
	assert.True(t, ok)
	_, ok2 := prog[1].(*ast.Use)
	assert.True(t, ok2)
}

func TestParseErrorUnexpectedToken(t *testing.T) {
	p := New(`my $x = ;`)
	_, err := p.Parse()
	require.Error(t, err)
}

func TestParseRangeExpr(t *testing.T) {
	prog := parseOK(t, `my @r = (1..5);`)
	vd := prog[0].(*ast.VarDecl)
	_, ok := vd.Init.(*ast.RangeExpr)
	assert.True(t, ok)
}
