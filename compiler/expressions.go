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

package compiler

import (
	"mplc/ast"
	"mplc/bytecode"
	"mplc/token"
)

func (c *Compiler) compileExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.IntLit:
		c.emitWord(bytecode.Push, uint16(n.Value))
		return nil

	case *ast.FloatLit:
		c.emitWord(bytecode.Push, uint16(int32(n.Value)))
		return nil

	case *ast.StringLit:
		idx := c.internString(n.Value)
		c.emitWord(bytecode.PushStr, uint16(idx))
		return nil

	case *ast.Var:
		return c.compileVarLoad(n)

	case *ast.Index:
		if err := c.compileExpr(n.Target); err != nil {
			return err
		}
		if err := c.compileExpr(n.Key); err != nil {
			return err
		}
		if n.Hash {
			c.emit(bytecode.HashGet)
		} else {
			c.emit(bytecode.ArrGet)
		}
		return nil

	case *ast.BinOp:
		return c.compileBinOp(n)

	case *ast.UnaryOp:
		return c.compileUnaryOp(n)

	case *ast.IncDec:
		return c.compileIncDec(n)

	case *ast.Assign:
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.emit(bytecode.Dup)
		return c.compileStore(n.Target)

	case *ast.CompoundAssign:
		return c.compileCompoundAssign(n)

	case *ast.Call:
		return c.compileCall(n)

	case *ast.MethodCall:
		c.fail(n.Pos, "method calls are not supported")
		return c.errs

	case *ast.ListLit:
		return c.compileListLit(n)

	case *ast.HashLit:
		return c.compileHashLit(n)

	case *ast.RangeExpr:
		c.fail(n.Pos, "range expressions are not supported")
		return c.errs

	case *ast.Ternary:
		return c.compileTernary(n)

	case *ast.Match:
		return c.compileMatch(n)

	case *ast.RefExpr:
		c.fail(n.Pos, "references are not supported")
		return c.errs

	case *ast.DerefExpr:
		c.fail(n.Pos, "references are not supported")
		return c.errs

	default:
		c.fail(token.Position{}, "unsupported expression")
		return c.errs
	}
}

// compileVarLoad loads a variable by its bare name (sigil carries no
// information at the storage layer: $x, @x and %x all name one slot).
func (c *Compiler) compileVarLoad(v *ast.Var) error {
	if idx, ok := c.frame().find(v.Name); ok {
		c.emitByte(bytecode.LoadLocal, byte(idx))
		return nil
	}
	if idx, ok := c.globals[v.Name]; ok {
		c.emitWord(bytecode.LoadGlobal, uint16(idx))
		return nil
	}
	c.fail(v.Pos, "undefined variable: %s", v.Name)
	return c.errs
}

// compileLoad pushes the current value addressed by target: a plain
// variable, or an array/hash element (container and key evaluated once).
func (c *Compiler) compileLoad(target ast.Expr) error {
	switch t := target.(type) {
	case *ast.Var:
		return c.compileVarLoad(t)
	case *ast.Index:
		if err := c.compileExpr(t.Target); err != nil {
			return err
		}
		if err := c.compileExpr(t.Key); err != nil {
			return err
		}
		c.emit(bytecode.Over)
		c.emit(bytecode.Over)
		if t.Hash {
			c.emit(bytecode.HashGet)
		} else {
			c.emit(bytecode.ArrGet)
		}
		return nil
	default:
		c.fail(token.Position{}, "invalid assignment target")
		return c.errs
	}
}

// compileStore stores the top-of-stack value into target, consuming it.
// For an *ast.Index target, it stashes the value in a scratch slot, compiles
// the container and key expressions itself, and emits ArrSet/HashSet on
// [arr, idx, value]; nothing else is expected beneath the value.
func (c *Compiler) compileStore(target ast.Expr) error {
	switch t := target.(type) {
	case *ast.Var:
		if idx, ok := c.frame().find(t.Name); ok {
			c.emitByte(bytecode.StoreLocal, byte(idx))
			return nil
		}
		if idx, ok := c.globals[t.Name]; ok {
			c.emitWord(bytecode.StoreGlobal, uint16(idx))
			return nil
		}
		idx := len(c.globals)
		c.globals[t.Name] = idx
		c.emitWord(bytecode.StoreGlobal, uint16(idx))
		return nil

	case *ast.Index:
		// Stack on entry: [value]. Reorder to the standardised
		// [arr, idx, value] order for ArrSet/HashSet via a scratch slot.
		tmp := c.frame().allocTemp()
		defer c.frame().releaseTemp()
		c.emitByte(bytecode.StoreLocal, byte(tmp))
		if err := c.compileExpr(t.Target); err != nil {
			return err
		}
		if err := c.compileExpr(t.Key); err != nil {
			return err
		}
		c.emitByte(bytecode.LoadLocal, byte(tmp))
		if t.Hash {
			c.emit(bytecode.HashSet)
		} else {
			c.emit(bytecode.ArrSet)
		}
		return nil

	default:
		c.fail(token.Position{}, "invalid assignment target")
		return c.errs
	}
}

// storeIndexFromLoaded stores value (top of stack) into the [arr, idx] pair
// already sitting beneath it on the stack, left there by a prior
// compileLoad on the same *ast.Index target. Used by IncDec and
// CompoundAssign to avoid re-evaluating container/key expressions.
func (c *Compiler) storeIndexFromLoaded(hash bool) {
	if hash {
		c.emit(bytecode.HashSet)
	} else {
		c.emit(bytecode.ArrSet)
	}
}

func (c *Compiler) compileIncDec(n *ast.IncDec) error {
	op := bytecode.Inc
	if n.Op == token.DEC {
		op = bytecode.Dec
	}

	switch t := n.Target.(type) {
	case *ast.Var:
		if err := c.compileVarLoad(t); err != nil {
			return err
		}
		if n.Post {
			c.emit(bytecode.Dup)
			c.emit(op)
			return c.compileStore(t)
		}
		c.emit(op)
		c.emit(bytecode.Dup)
		return c.compileStore(t)

	case *ast.Index:
		// Leaves [arr, idx, old] on the stack, computes new on top, then
		// rearranges via Swap and one scratch slot so ArrSet/HashSet sees
		// exactly [arr, idx, new] while the expression's result (old for
		// post, new for pre) survives in the scratch slot.
		if err := c.compileExpr(t.Target); err != nil {
			return err
		}
		if err := c.compileExpr(t.Key); err != nil {
			return err
		}
		c.emit(bytecode.Over)
		c.emit(bytecode.Over)
		if t.Hash {
			c.emit(bytecode.HashGet)
		} else {
			c.emit(bytecode.ArrGet)
		}
		tmp := c.frame().allocTemp()
		defer c.frame().releaseTemp()
		if n.Post {
			// [arr, idx, old]
			c.emit(bytecode.Dup)
			c.emit(op)
			// [arr, idx, old, new]
			c.emit(bytecode.Swap)
			// [arr, idx, new, old]
			c.emitByte(bytecode.StoreLocal, byte(tmp)) // tmp = old (result)
			// [arr, idx, new]
			c.storeIndexFromLoaded(t.Hash)
			c.emitByte(bytecode.LoadLocal, byte(tmp))
			return nil
		}
		// [arr, idx, old]
		c.emit(op)
		// [arr, idx, new]
		c.emit(bytecode.Dup)
		c.emitByte(bytecode.StoreLocal, byte(tmp)) // tmp = new (result)
		// [arr, idx, new]
		c.storeIndexFromLoaded(t.Hash)
		c.emitByte(bytecode.LoadLocal, byte(tmp))
		return nil

	default:
		c.fail(token.Position{}, "invalid increment/decrement target")
		return c.errs
	}
}

func (c *Compiler) compileCompoundAssign(n *ast.CompoundAssign) error {
	var binOp token.Type
	switch n.Op {
	case token.PLUSEQ:
		binOp = token.PLUS
	case token.MINUSEQ:
		binOp = token.MINUS
	case token.STAREQ:
		binOp = token.STAR
	case token.SLASHEQ:
		binOp = token.SLASH
	case token.DOTEQ:
		binOp = token.DOT
	default:
		c.fail(n.Pos, "unsupported compound assignment operator")
		return c.errs
	}

	if err := c.compileLoad(n.Target); err != nil {
		return err
	}
	if err := c.compileExpr(n.Value); err != nil {
		return err
	}
	if err := c.emitBinOpCode(binOp, n.Pos); err != nil {
		return err
	}
	c.emit(bytecode.Dup)

	switch t := n.Target.(type) {
	case *ast.Var:
		return c.compileStore(t)
	case *ast.Index:
		// Stack here: [arr, idx, new, new] (old was already consumed by the
		// binary op above). Stash one copy as the result, let ArrSet/HashSet
		// consume [arr, idx, new], then restore the result.
		tmp := c.frame().allocTemp()
		c.emitByte(bytecode.StoreLocal, byte(tmp))
		c.storeIndexFromLoaded(t.Hash)
		c.emitByte(bytecode.LoadLocal, byte(tmp))
		c.frame().releaseTemp()
		return nil
	default:
		c.fail(token.Position{}, "invalid assignment target")
		return c.errs
	}
}

func (c *Compiler) compileCall(n *ast.Call) error {
	for _, a := range n.Args {
		if err := c.compileExpr(a); err != nil {
			return err
		}
	}
	info, ok := c.subs[n.Name]
	if ok && info.addr != 0 {
		c.emitWord(bytecode.Call, uint16(info.addr))
		return nil
	}
	operand := c.emitWord(bytecode.Call, 0)
	c.forwardRefs = append(c.forwardRefs, forwardRef{name: n.Name, operand: operand, pos: n.Pos})
	return nil
}

func (c *Compiler) compileListLit(n *ast.ListLit) error {
	c.emitByte(bytecode.NewArray, byte(len(n.Elems)))
	for i, el := range n.Elems {
		c.emit(bytecode.Dup)
		c.emitWord(bytecode.Push, uint16(i))
		if err := c.compileExpr(el); err != nil {
			return err
		}
		c.emit(bytecode.ArrSet)
	}
	return nil
}

func (c *Compiler) compileHashLit(n *ast.HashLit) error {
	c.emit(bytecode.NewHash)
	for i, k := range n.Keys {
		c.emit(bytecode.Dup)
		if err := c.compileExpr(k); err != nil {
			return err
		}
		if err := c.compileExpr(n.Values[i]); err != nil {
			return err
		}
		c.emit(bytecode.HashSet)
	}
	return nil
}

func (c *Compiler) compileTernary(n *ast.Ternary) error {
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	elseJump := c.emitWord(bytecode.JumpIfNot, 0)
	if err := c.compileExpr(n.Then); err != nil {
		return err
	}
	endJump := c.emitWord(bytecode.Jump, 0)
	c.patch(elseJump, c.pos())
	if err := c.compileExpr(n.Else); err != nil {
		return err
	}
	c.patch(endJump, c.pos())
	return nil
}

func (c *Compiler) compileMatch(n *ast.Match) error {
	// n.Flags is recorded on the AST for tooling but ignored here: the
	// Match opcode has no flag operand.
	if err := c.compileExpr(n.Subject); err != nil {
		return err
	}
	idx := c.internString(n.Pattern)
	c.emitWord(bytecode.PushStr, uint16(idx))
	c.emit(bytecode.Match)
	if n.Not {
		c.emit(bytecode.Not)
	}
	return nil
}

func (c *Compiler) compileUnaryOp(n *ast.UnaryOp) error {
	if err := c.compileExpr(n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case token.MINUS:
		c.emit(bytecode.Neg)
	case token.LOGNOT, token.NOT:
		c.emit(bytecode.Not)
	case token.BITNOT:
		c.emit(bytecode.BitNot)
	default:
		c.fail(n.Pos, "unsupported unary operator")
		return c.errs
	}
	return nil
}

var binOps = map[token.Type]bytecode.Op{
	token.PLUS:    bytecode.Add,
	token.MINUS:   bytecode.Sub,
	token.STAR:    bytecode.Mul,
	token.SLASH:   bytecode.Div,
	token.PERCENT: bytecode.Mod,
	token.DOT:     bytecode.StrCat,
	token.BITAND:  bytecode.BitAnd,
	token.BITOR:   bytecode.BitOr,
	token.BITXOR:  bytecode.BitXor,
	token.SHL:     bytecode.Shl,
	token.SHR:     bytecode.Shr,
	token.NUMEQ:   bytecode.CmpEq,
	token.NUMNE:   bytecode.CmpNe,
	token.NUMLT:   bytecode.CmpLt,
	token.NUMGT:   bytecode.CmpGt,
	token.NUMLE:   bytecode.CmpLe,
	token.NUMGE:   bytecode.CmpGe,
	token.NUMCMP:  bytecode.Cmp,
	token.EQ:      bytecode.StrEq,
	token.NE:      bytecode.StrNe,
	token.LT:      bytecode.StrLt,
	token.GT:      bytecode.StrGt,
	token.LE:      bytecode.StrLe,
	token.GE:      bytecode.StrGe,
	token.CMP:     bytecode.StrCmp,
}

func (c *Compiler) emitBinOpCode(op token.Type, pos token.Position) error {
	bc, ok := binOps[op]
	if !ok {
		c.fail(pos, "unsupported operator")
		return c.errs
	}
	c.emit(bc)
	return nil
}

func (c *Compiler) compileBinOp(n *ast.BinOp) error {
	if n.Op == token.POW {
		c.fail(n.Pos, "exponentiation is not supported")
		return c.errs
	}
	if n.Op == token.LOGAND || n.Op == token.AND {
		return c.compileShortCircuit(n, false)
	}
	if n.Op == token.LOGOR || n.Op == token.OR {
		return c.compileShortCircuit(n, true)
	}

	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	return c.emitBinOpCode(n.Op, n.Pos)
}

// compileShortCircuit implements && / and (wantTrue=false) and || / or
// (wantTrue=true): the right side only evaluates when the left side didn't
// already decide the result.
func (c *Compiler) compileShortCircuit(n *ast.BinOp, wantTrue bool) error {
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	c.emit(bytecode.Dup)
	var skip int
	if wantTrue {
		skip = c.emitWord(bytecode.JumpIf, 0)
	} else {
		skip = c.emitWord(bytecode.JumpIfNot, 0)
	}
	c.emit(bytecode.Pop)
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	c.patch(skip, c.pos())
	return nil
}
