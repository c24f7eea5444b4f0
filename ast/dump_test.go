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

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mplc/ast"
	"mplc/parser"
)

func TestDumpVarDeclAndBinOp(t *testing.T) {
	p := parser.New(`my $x = 1 + 2;`)
	prog, err := p.Parse()
	require.NoError(t, err)

	out := ast.Dump(prog)
	assert.Contains(t, out, "(my x = (+ 1 2))")
}

func TestDumpIfElseBlock(t *testing.T) {
	p := parser.New(`if ($x) { print "a"; } else { print "b"; }`)
	prog, err := p.Parse()
	require.NoError(t, err)

	out := ast.Dump(prog)
	assert.Contains(t, out, "(if $x")
	assert.Contains(t, out, "(else")
	assert.Contains(t, out, `(print "a")`)
}

func TestDumpSubDeclAndCall(t *testing.T) {
	p := parser.New(`sub add($a, $b) { return $a + $b; } print add(1, 2);`)
	prog, err := p.Parse()
	require.NoError(t, err)

	out := ast.Dump(prog)
	assert.Contains(t, out, "(sub add (a, b)")
	assert.Contains(t, out, "(return (+ $a $b))")
	assert.Contains(t, out, "add(1, 2)")
}
