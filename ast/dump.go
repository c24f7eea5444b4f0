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

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders prog as an indented, parenthesized tree, for the CLI's -ast
// flag.
func Dump(prog []Stmt) string {
	var sb strings.Builder
	for _, s := range prog {
		dumpStmt(&sb, s, 0)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func dumpStmt(sb *strings.Builder, s Stmt, depth int) {
	indent(sb, depth)
	switch n := s.(type) {
	case *ExprStmt:
		sb.WriteString("(expr ")
		dumpExpr(sb, n.X)
		sb.WriteString(")\n")
	case *VarDecl:
		kw := "my"
		if n.Our {
			kw = "our"
		}
		fmt.Fprintf(sb, "(%s %s", kw, strings.Join(n.Names, ", "))
		if n.Init != nil {
			sb.WriteString(" = ")
			dumpExpr(sb, n.Init)
		}
		sb.WriteString(")\n")
	case *If:
		kw := "if"
		if n.Negate {
			kw = "unless"
		}
		fmt.Fprintf(sb, "(%s ", kw)
		dumpExpr(sb, n.Cond)
		sb.WriteString("\n")
		dumpBlock(sb, n.Then, depth+1)
		for _, e := range n.ElsIfs {
			indent(sb, depth)
			sb.WriteString("(elsif ")
			dumpExpr(sb, e.Cond)
			sb.WriteString("\n")
			dumpBlock(sb, e.Body, depth+1)
		}
		if n.Else != nil {
			indent(sb, depth)
			sb.WriteString("(else\n")
			dumpBlock(sb, n.Else, depth+1)
		}
		indent(sb, depth)
		sb.WriteString(")\n")
	case *While:
		kw := "while"
		if n.Negate {
			kw = "until"
		}
		fmt.Fprintf(sb, "(%s ", kw)
		dumpExpr(sb, n.Cond)
		sb.WriteString("\n")
		dumpBlock(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *For:
		sb.WriteString("(for\n")
		dumpBlock(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *Foreach:
		fmt.Fprintf(sb, "(foreach $%s ", n.VarName)
		dumpExpr(sb, n.List)
		sb.WriteString("\n")
		dumpBlock(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *LoopCtl:
		if n.Last {
			sb.WriteString("(last)\n")
		} else {
			sb.WriteString("(next)\n")
		}
	case *Return:
		sb.WriteString("(return")
		if n.Value != nil {
			sb.WriteString(" ")
			dumpExpr(sb, n.Value)
		}
		sb.WriteString(")\n")
	case *SubDecl:
		fmt.Fprintf(sb, "(sub %s (%s)\n", n.Name, strings.Join(n.Params, ", "))
		dumpBlock(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *Print:
		kw := "print"
		if n.Say {
			kw = "say"
		}
		fmt.Fprintf(sb, "(%s", kw)
		for _, a := range n.Args {
			sb.WriteString(" ")
			dumpExpr(sb, a)
		}
		sb.WriteString(")\n")
	case *Block:
		sb.WriteString("(block\n")
		dumpBlock(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *Use:
		fmt.Fprintf(sb, "(use %s)\n", n.Name)
	case *Package:
		fmt.Fprintf(sb, "(package %s)\n", n.Name)
	default:
		sb.WriteString("(?unknown-stmt?)\n")
	}
}

func dumpBlock(sb *strings.Builder, body []Stmt, depth int) {
	for _, s := range body {
		dumpStmt(sb, s, depth)
	}
}

func sigilByte(s Sigil) string {
	switch s {
	case ArraySigil:
		return "@"
	case HashSigil:
		return "%"
	default:
		return "$"
	}
}

func dumpExpr(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *IntLit:
		sb.WriteString(strconv.Itoa(int(n.Value)))
	case *FloatLit:
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *StringLit:
		sb.WriteString(strconv.Quote(n.Value))
	case *Var:
		sb.WriteString(sigilByte(n.Sigil))
		sb.WriteString(n.Name)
	case *Index:
		dumpExpr(sb, n.Target)
		if n.Hash {
			sb.WriteString("{")
		} else {
			sb.WriteString("[")
		}
		dumpExpr(sb, n.Key)
		if n.Hash {
			sb.WriteString("}")
		} else {
			sb.WriteString("]")
		}
	case *BinOp:
		sb.WriteString("(")
		sb.WriteString(n.Op.String())
		sb.WriteString(" ")
		dumpExpr(sb, n.Left)
		sb.WriteString(" ")
		dumpExpr(sb, n.Right)
		sb.WriteString(")")
	case *UnaryOp:
		sb.WriteString("(")
		sb.WriteString(n.Op.String())
		sb.WriteString(" ")
		dumpExpr(sb, n.Operand)
		sb.WriteString(")")
	case *IncDec:
		op := "++"
		if n.Op.String() == "--" {
			op = "--"
		}
		if n.Post {
			dumpExpr(sb, n.Target)
			sb.WriteString(op)
		} else {
			sb.WriteString(op)
			dumpExpr(sb, n.Target)
		}
	case *Assign:
		dumpExpr(sb, n.Target)
		sb.WriteString(" = ")
		dumpExpr(sb, n.Value)
	case *CompoundAssign:
		dumpExpr(sb, n.Target)
		sb.WriteString(" ")
		sb.WriteString(n.Op.String())
		sb.WriteString(" ")
		dumpExpr(sb, n.Value)
	case *Call:
		fmt.Fprintf(sb, "%s(", n.Name)
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			dumpExpr(sb, a)
		}
		sb.WriteString(")")
	case *MethodCall:
		dumpExpr(sb, n.Receiver)
		fmt.Fprintf(sb, "->%s(...)", n.Method)
	case *ListLit:
		sb.WriteString("(")
		for i, el := range n.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			dumpExpr(sb, el)
		}
		sb.WriteString(")")
	case *HashLit:
		sb.WriteString("{")
		for i := range n.Keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			dumpExpr(sb, n.Keys[i])
			sb.WriteString(" => ")
			dumpExpr(sb, n.Values[i])
		}
		sb.WriteString("}")
	case *RangeExpr:
		dumpExpr(sb, n.Lo)
		sb.WriteString("..")
		dumpExpr(sb, n.Hi)
	case *Ternary:
		dumpExpr(sb, n.Cond)
		sb.WriteString(" ? ")
		dumpExpr(sb, n.Then)
		sb.WriteString(" : ")
		dumpExpr(sb, n.Else)
	case *Match:
		dumpExpr(sb, n.Subject)
		if n.Not {
			sb.WriteString(" !~ /")
		} else {
			sb.WriteString(" =~ /")
		}
		sb.WriteString(n.Pattern)
		sb.WriteString("/")
		sb.WriteString(n.Flags)
	case *RefExpr:
		sb.WriteString("\\")
		dumpExpr(sb, n.Operand)
	case *DerefExpr:
		sb.WriteString("$")
		dumpExpr(sb, n.Operand)
	default:
		sb.WriteString("?")
	}
}
