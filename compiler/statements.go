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

func (c *Compiler) compileStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		if err := c.compileExpr(n.X); err != nil {
			return err
		}
		c.emit(bytecode.Pop)
		return nil

	case *ast.VarDecl:
		return c.compileVarDecl(n)

	case *ast.If:
		return c.compileIf(n)

	case *ast.While:
		return c.compileWhile(n)

	case *ast.For:
		return c.compileFor(n)

	case *ast.Foreach:
		return c.compileForeach(n)

	case *ast.LoopCtl:
		if len(c.loops) == 0 {
			c.fail(n.Pos, "%s outside of loop", loopCtlName(n))
			return c.errs
		}
		lp := c.loops[len(c.loops)-1]
		operand := c.emitWord(bytecode.Jump, 0)
		if n.Last {
			lp.lastPatch = append(lp.lastPatch, operand)
		} else {
			lp.nextPatch = append(lp.nextPatch, operand)
		}
		return nil

	case *ast.Return:
		if n.Value != nil {
			if err := c.compileExpr(n.Value); err != nil {
				return err
			}
			if c.subDepth > 0 {
				c.emit(bytecode.LeaveFrame)
			}
			c.emit(bytecode.ReturnVal)
		} else {
			if c.subDepth > 0 {
				c.emit(bytecode.LeaveFrame)
			}
			c.emit(bytecode.Return)
		}
		return nil

	case *ast.SubDecl:
		return c.compileSubDecl(n)

	case *ast.Print:
		for _, a := range n.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
			c.emit(bytecode.Print)
		}
		if n.Say {
			c.emit(bytecode.PrintLn)
		}
		return nil

	case *ast.Block:
		c.frame().push()
		defer c.frame().pop()
		for _, st := range n.Body {
			if err := c.compileStmt(st); err != nil {
				return err
			}
		}
		return nil

	case *ast.Use, *ast.Package:
		return nil

	default:
		c.fail(token.Position{}, "unsupported statement")
		return c.errs
	}
}

func loopCtlName(n *ast.LoopCtl) string {
	if n.Last {
		return "last"
	}
	return "next"
}

func (c *Compiler) compileVarDecl(n *ast.VarDecl) error {
	if n.Our {
		idxs := make([]int, len(n.Names))
		for i, name := range n.Names {
			idx, ok := c.globals[name]
			if !ok {
				idx = len(c.globals)
				c.globals[name] = idx
			}
			idxs[i] = idx
		}
		if n.Init == nil {
			return nil
		}
		if err := c.compileExpr(n.Init); err != nil {
			return err
		}
		if len(n.Names) == 1 {
			c.emitWord(bytecode.StoreGlobal, uint16(idxs[0]))
			return nil
		}
		for i, idx := range idxs {
			if i < len(idxs)-1 {
				c.emit(bytecode.Dup)
			}
			c.emitWord(bytecode.Push, uint16(i))
			c.emit(bytecode.ArrGet)
			c.emitWord(bytecode.StoreGlobal, uint16(idx))
		}
		return nil
	}

	f := c.frame()
	idxs := make([]int, len(n.Names))
	for i, name := range n.Names {
		idxs[i] = f.declare(name)
	}
	if n.Init == nil {
		return nil
	}
	if err := c.compileExpr(n.Init); err != nil {
		return err
	}
	if len(idxs) == 1 {
		c.emitByte(bytecode.StoreLocal, byte(idxs[0]))
		return nil
	}
	// Multi-var `my` treats the single initialiser as a list, indexing it
	// positionally for each declared name.
	for i, idx := range idxs {
		if i < len(idxs)-1 {
			c.emit(bytecode.Dup)
		}
		c.emitWord(bytecode.Push, uint16(i))
		c.emit(bytecode.ArrGet)
		c.emitByte(bytecode.StoreLocal, byte(idx))
	}
	return nil
}

func (c *Compiler) compileIf(n *ast.If) error {
	branchOp := bytecode.JumpIfNot
	if n.Negate {
		branchOp = bytecode.JumpIf
	}

	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	exit := c.emitWord(branchOp, 0)
	if err := c.compileBlock(n.Then); err != nil {
		return err
	}

	var endJumps []int
	if len(n.ElsIfs) > 0 || n.Else != nil {
		endJumps = append(endJumps, c.emitWord(bytecode.Jump, 0))
	}
	c.patch(exit, c.pos())

	for _, ei := range n.ElsIfs {
		if err := c.compileExpr(ei.Cond); err != nil {
			return err
		}
		eiExit := c.emitWord(bytecode.JumpIfNot, 0)
		if err := c.compileBlock(ei.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emitWord(bytecode.Jump, 0))
		c.patch(eiExit, c.pos())
	}

	if n.Else != nil {
		if err := c.compileBlock(n.Else); err != nil {
			return err
		}
	}

	end := c.pos()
	for _, j := range endJumps {
		c.patch(j, end)
	}
	return nil
}

func (c *Compiler) compileWhile(n *ast.While) error {
	branchOp := bytecode.JumpIfNot
	if n.Negate {
		branchOp = bytecode.JumpIf
	}

	loopStart := c.pos()
	c.loops = append(c.loops, &loopFrame{})

	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	exit := c.emitWord(branchOp, 0)
	if err := c.compileBlock(n.Body); err != nil {
		return err
	}
	// `next` re-checks the condition, same as falling off the body.
	c.patchLoopNext(loopStart)
	c.emitWord(bytecode.Jump, uint16(loopStart))

	end := c.pos()
	c.patch(exit, end)
	c.drainLoop(end)
	return nil
}

func (c *Compiler) compileFor(n *ast.For) error {
	c.frame().push()
	defer c.frame().pop()

	if n.Init != nil {
		if err := c.compileStmt(n.Init); err != nil {
			return err
		}
	}

	loopStart := c.pos()
	c.loops = append(c.loops, &loopFrame{})

	var exit int
	haveExit := n.Cond != nil
	if haveExit {
		if err := c.compileExpr(n.Cond); err != nil {
			return err
		}
		exit = c.emitWord(bytecode.JumpIfNot, 0)
	}

	if err := c.compileBlock(n.Body); err != nil {
		return err
	}

	// `next` jumps here, to the step expression, not past it.
	stepAddr := c.pos()
	if n.Step != nil {
		if err := c.compileExpr(n.Step); err != nil {
			return err
		}
		c.emit(bytecode.Pop)
	}
	c.emitWord(bytecode.Jump, uint16(loopStart))

	end := c.pos()
	if haveExit {
		c.patch(exit, end)
	}
	c.patchLoopNext(stepAddr)
	c.drainLoop(end)
	return nil
}

func (c *Compiler) compileForeach(n *ast.Foreach) error {
	c.frame().push()
	defer c.frame().pop()

	varIdx := c.frame().declare(n.VarName)

	if err := c.compileExpr(n.List); err != nil {
		return err
	}
	c.emitWord(bytecode.Push, 0) // index

	loopStart := c.pos()
	c.loops = append(c.loops, &loopFrame{})

	// Stack: [arr, idx]. Over/ArrLen/Over/Swap/CmpLt compares idx < len
	// without disturbing the pair kept underneath for the next iteration.
	c.emit(bytecode.Over)
	c.emit(bytecode.ArrLen)
	c.emit(bytecode.Over)
	c.emit(bytecode.Swap)
	c.emit(bytecode.CmpLt)
	exit := c.emitWord(bytecode.JumpIfNot, 0)

	c.emit(bytecode.Over)
	c.emit(bytecode.Over)
	c.emit(bytecode.ArrGet)
	c.emitByte(bytecode.StoreLocal, byte(varIdx))

	if err := c.compileBlock(n.Body); err != nil {
		return err
	}

	// `next` jumps here, to the increment, not past it.
	incAddr := c.pos()
	c.emit(bytecode.Inc)
	c.emitWord(bytecode.Jump, uint16(loopStart))

	end := c.pos()
	c.patch(exit, end)
	c.emit(bytecode.Pop) // index
	c.emit(bytecode.Pop) // array
	c.patchLoopNext(incAddr)
	c.drainLoop(end)
	return nil
}

// patchLoopNext patches every `next` jump recorded in the current loop
// frame to addr, without disturbing `last` jumps or popping the frame.
func (c *Compiler) patchLoopNext(addr int) {
	lp := c.loops[len(c.loops)-1]
	for _, j := range lp.nextPatch {
		c.patch(j, addr)
	}
}

// drainLoop pops the current loop frame and patches every collected
// `last` jump to end.
func (c *Compiler) drainLoop(end int) {
	lp := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, j := range lp.lastPatch {
		c.patch(j, end)
	}
}

func (c *Compiler) compileBlock(body []ast.Stmt) error {
	for _, s := range body {
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileSubDecl(n *ast.SubDecl) error {
	skip := c.emitWord(bytecode.Jump, 0)

	addr := c.pos()
	info, ok := c.subs[n.Name]
	if !ok {
		info = &subInfo{params: len(n.Params)}
		c.subs[n.Name] = info
	}
	info.addr = addr
	info.params = len(n.Params)

	c.frames = append(c.frames, newFrame())
	c.subDepth++
	c.emitByte(bytecode.EnterFrame, byte(len(n.Params)))
	for _, p := range n.Params {
		c.frame().declare(p)
	}

	if err := c.compileBlock(n.Body); err != nil {
		return err
	}

	c.emit(bytecode.LeaveFrame)
	c.emit(bytecode.Return)
	c.subDepth--
	c.frames = c.frames[:len(c.frames)-1]

	c.patch(skip, c.pos())
	return nil
}
