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

// Package parser builds an AST from mplc source text via pure
// recursive-descent parsing over a pre-scanned token slice.
package parser

import (
	"fmt"
	"strconv"

	"mplc/ast"
	"mplc/lexer"
	"mplc/token"
)

// Parser holds a token slice and a cursor.
type Parser struct {
	toks []token.Token
	pos  int
}

// New tokenizes input in full and returns a Parser ready to build an AST
// from it.
func New(input string) *Parser {
	l := lexer.New(input)
	var toks []token.Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}
	return &Parser{toks: toks}
}

// ParseError is returned on the first unexpected token; the pipeline aborts
// at that point rather than attempting recovery.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}
func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) *ParseError {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(tt token.Type) (token.Token, error) {
	if p.cur().Type != tt {
		return token.Token{}, p.errorf(p.cur().Pos, "Expected %s, got %s", tt, describe(p.cur()))
	}
	return p.advance(), nil
}

func describe(t token.Token) string {
	if t.Literal != "" {
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
	return t.Type.String()
}

// Parse parses the full token stream into a statement list.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	var prog []ast.Stmt
	for p.cur().Type != token.EOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			prog = append(prog, s)
		}
	}
	return prog, nil
}

// parseBlock parses a `{ stmt* }` sequence, consuming both braces.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var body []ast.Stmt
	for p.cur().Type != token.RBRACE {
		if p.cur().Type == token.EOF {
			return nil, p.errorf(p.cur().Pos, "Expected %s, got %s", token.RBRACE, describe(p.cur()))
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			body = append(body, s)
		}
	}
	p.advance() // RBRACE
	return body, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	tok := p.cur()
	switch tok.Type {
	case token.SEMI:
		p.advance()
		return nil, nil
	case token.MY, token.OUR:
		return p.parseVarDecl()
	case token.IF, token.UNLESS:
		return p.parseIf()
	case token.WHILE, token.UNTIL:
		return p.parseWhile()
	case token.FOR:
		return p.parseForOrForeach()
	case token.FOREACH:
		return p.parseForeach()
	case token.LAST, token.NEXT:
		p.advance()
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.LoopCtl{Last: tok.Type == token.LAST, Pos: tok.Pos}, nil
	case token.RETURN:
		return p.parseReturn()
	case token.SUB:
		return p.parseSubDecl()
	case token.PRINT, token.SAY:
		return p.parsePrint()
	case token.LBRACE:
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Body: body, Pos: tok.Pos}, nil
	case token.USE:
		p.advance()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		p.skipToSemi()
		return &ast.Use{Name: name.Literal, Pos: tok.Pos}, nil
	case token.PACKAGE:
		p.advance()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.Package{Name: name.Literal, Pos: tok.Pos}, nil
	default:
		return p.parseExprStmt()
	}
}

// skipToSemi consumes tokens through the next SEMI; used for the ignored
// "use Module qw(...)" tail.
func (p *Parser) skipToSemi() {
	for p.cur().Type != token.SEMI && p.cur().Type != token.EOF {
		p.advance()
	}
	if p.cur().Type == token.SEMI {
		p.advance()
	}
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	pos := p.cur().Pos
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: x, Pos: pos}, nil
}

func sigilOf(tt token.Type) (ast.Sigil, bool) {
	switch tt {
	case token.SCALAR:
		return ast.ScalarSigil, true
	case token.ARRAY:
		return ast.ArraySigil, true
	case token.HASH:
		return ast.HashSigil, true
	default:
		return 0, false
	}
}

func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	tok := p.advance() // MY or OUR
	our := tok.Type == token.OUR
	var names []string
	var sigils []ast.Sigil

	if p.cur().Type == token.LPAREN {
		p.advance()
		for {
			sig, ok := sigilOf(p.cur().Type)
			if !ok {
				return nil, p.errorf(p.cur().Pos, "Expected variable, got %s", describe(p.cur()))
			}
			v := p.advance()
			names = append(names, v.Literal)
			sigils = append(sigils, sig)
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	} else {
		sig, ok := sigilOf(p.cur().Type)
		if !ok {
			return nil, p.errorf(p.cur().Pos, "Expected variable, got %s", describe(p.cur()))
		}
		v := p.advance()
		names = append(names, v.Literal)
		sigils = append(sigils, sig)
	}

	var init ast.Expr
	if p.cur().Type == token.ASSIGN {
		p.advance()
		var err error
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.VarDecl{Our: our, Names: names, Sigil: sigils, Init: init, Pos: tok.Pos}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	tok := p.advance() // IF or UNLESS
	negate := tok.Type == token.UNLESS
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Negate: negate, Cond: cond, Then: then, Pos: tok.Pos}
	for p.cur().Type == token.ELSIF {
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.ElsIfs = append(node.ElsIfs, ast.ElsIf{Cond: c, Body: b})
	}
	if p.cur().Type == token.ELSE {
		p.advance()
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Else = b
	}
	return node, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	tok := p.advance() // WHILE or UNTIL
	negate := tok.Type == token.UNTIL
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Negate: negate, Cond: cond, Body: body, Pos: tok.Pos}, nil
}

// parseForOrForeach peeks one token past `for` to disambiguate C-style from
// iteration-style.
func (p *Parser) parseForOrForeach() (ast.Stmt, error) {
	tok := p.cur()
	nextT := p.peek(1).Type
	if nextT == token.MY || nextT == token.SCALAR {
		return p.parseForeachBody(tok)
	}
	p.advance() // FOR
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var init ast.Stmt
	var err error
	if p.cur().Type != token.SEMI {
		init, err = p.parseSimpleStmtNoSemi()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	var cond ast.Expr
	if p.cur().Type != token.SEMI {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	var step ast.Expr
	if p.cur().Type != token.RPAREN {
		step, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Init: init, Cond: cond, Step: step, Body: body, Pos: tok.Pos}, nil
}

// parseSimpleStmtNoSemi parses a `my`-decl or bare expression without
// consuming a trailing semicolon, for use in a C-style for-header.
func (p *Parser) parseSimpleStmtNoSemi() (ast.Stmt, error) {
	if p.cur().Type == token.MY || p.cur().Type == token.OUR {
		tok := p.advance()
		our := tok.Type == token.OUR
		sig, ok := sigilOf(p.cur().Type)
		if !ok {
			return nil, p.errorf(p.cur().Pos, "Expected variable, got %s", describe(p.cur()))
		}
		v := p.advance()
		var init ast.Expr
		if p.cur().Type == token.ASSIGN {
			p.advance()
			var err error
			init, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		return &ast.VarDecl{Our: our, Names: []string{v.Literal}, Sigil: []ast.Sigil{sig}, Init: init, Pos: tok.Pos}, nil
	}
	pos := p.cur().Pos
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: x, Pos: pos}, nil
}

func (p *Parser) parseForeach() (ast.Stmt, error) {
	tok := p.advance() // FOREACH
	return p.parseForeachBody(tok)
}

// parseForeachBody parses `my? $v (list) { ... }`; tok is the already-peeked
// FOR/FOREACH token used only for position.
func (p *Parser) parseForeachBody(tok token.Token) (ast.Stmt, error) {
	if p.cur().Type == token.FOR || p.cur().Type == token.FOREACH {
		p.advance()
	}
	if p.cur().Type == token.MY {
		p.advance()
	}
	v, err := p.expect(token.SCALAR)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	list, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Foreach{VarName: v.Literal, List: list, Body: body, Pos: tok.Pos}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	tok := p.advance() // RETURN
	var val ast.Expr
	if p.cur().Type != token.SEMI {
		var err error
		val, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.Return{Value: val, Pos: tok.Pos}, nil
}

func (p *Parser) parseSubDecl() (ast.Stmt, error) {
	tok := p.advance() // SUB
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	var params []string
	if p.cur().Type == token.LPAREN {
		p.advance()
		for p.cur().Type != token.RPAREN {
			v, err := p.expect(token.SCALAR)
			if err != nil {
				return nil, err
			}
			params = append(params, v.Literal)
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.SubDecl{Name: name.Literal, Params: params, Body: body, Pos: tok.Pos}, nil
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	tok := p.advance() // PRINT or SAY
	var args []ast.Expr
	if p.cur().Type != token.SEMI {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.Print{Say: tok.Type == token.SAY, Args: args, Pos: tok.Pos}, nil
}

// --- Expressions, precedence climbing low to high ---

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseAssignment() }

var compoundOps = map[token.Type]bool{
	token.PLUSEQ: true, token.MINUSEQ: true, token.STAREQ: true,
	token.SLASHEQ: true, token.DOTEQ: true,
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.cur().Type == token.ASSIGN {
		pos := p.advance().Pos
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Target: left, Value: right, Pos: pos}, nil
	}
	if compoundOps[p.cur().Type] {
		op := p.advance()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.CompoundAssign{Op: op.Type, Target: left, Value: right, Pos: op.Pos}, nil
	}
	return left, nil
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type == token.QUESTION {
		pos := p.advance().Pos
		then, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		els, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		return &ast.Ternary{Cond: cond, Then: then, Else: els, Pos: pos}, nil
	}
	return cond, nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.LOGOR || p.cur().Type == token.OR {
		op := p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: token.LOGOR, Left: left, Right: right, Pos: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.LOGAND || p.cur().Type == token.AND {
		op := p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: token.LOGAND, Left: left, Right: right, Pos: op.Pos}
	}
	return left, nil
}

var comparisonOps = map[token.Type]bool{
	token.EQ: true, token.NE: true, token.LT: true, token.GT: true,
	token.LE: true, token.GE: true, token.CMP: true,
	token.NUMEQ: true, token.NUMNE: true, token.NUMLT: true, token.NUMGT: true,
	token.NUMLE: true, token.NUMGE: true, token.NUMCMP: true,
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case token.MATCH, token.NOTMATCH:
			op := p.advance()
			if p.cur().Type != token.REGEX {
				return nil, p.errorf(p.cur().Pos, "Expected REGEX, got %s", describe(p.cur()))
			}
			re := p.advance()
			left = &ast.Match{Subject: left, Pattern: re.Literal, Flags: re.Flags, Not: op.Type == token.NOTMATCH, Pos: op.Pos}
		default:
			if !comparisonOps[p.cur().Type] {
				return left, nil
			}
			op := p.advance()
			right, err := p.parseRange()
			if err != nil {
				return nil, err
			}
			left = &ast.BinOp{Op: op.Type, Left: left, Right: right, Pos: op.Pos}
		}
	}
}

// parseRange handles the `..` range constructor, which binds looser than
// additive but tighter than comparison (its only user is Non-goal list
// context, so exact placement in the grammar doesn't affect real programs).
func (p *Parser) parseRange() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.DOTDOT {
		return left, nil
	}
	pos := p.advance().Pos
	hi, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.RangeExpr{Lo: left, Hi: hi, Pos: pos}, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.PLUS || p.cur().Type == token.MINUS || p.cur().Type == token.DOT {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: op.Type, Left: left, Right: right, Pos: op.Pos}
	}
	return left, nil
}

var multiplicativeOps = map[token.Type]bool{
	token.STAR: true, token.SLASH: true, token.PERCENT: true, token.POW: true,
	token.BITAND: true, token.BITOR: true, token.BITXOR: true,
	token.SHL: true, token.SHR: true,
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for multiplicativeOps[p.cur().Type] {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: op.Type, Left: left, Right: right, Pos: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Type {
	case token.INC, token.DEC:
		op := p.advance()
		target, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.IncDec{Op: op.Type, Target: target, Post: false, Pos: op.Pos}, nil
	case token.MINUS:
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: token.MINUS, Operand: operand, Pos: op.Pos}, nil
	case token.LOGNOT:
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: token.LOGNOT, Operand: operand, Pos: op.Pos}, nil
	case token.BITNOT:
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: token.BITNOT, Operand: operand, Pos: op.Pos}, nil
	case token.BACKSLASH:
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.RefExpr{Operand: operand, Pos: op.Pos}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case token.INC:
			op := p.advance()
			expr = &ast.IncDec{Op: token.INC, Target: expr, Post: true, Pos: op.Pos}
		case token.DEC:
			op := p.advance()
			expr = &ast.IncDec{Op: token.DEC, Target: expr, Post: true, Pos: op.Pos}
		case token.LBRACKET:
			pos := p.advance().Pos
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.Index{Target: expr, Key: idx, Hash: false, Pos: pos}
		case token.LBRACE:
			pos := p.advance().Pos
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACE); err != nil {
				return nil, err
			}
			expr = &ast.Index{Target: expr, Key: key, Hash: true, Pos: pos}
		case token.ARROW:
			pos := p.advance().Pos
			switch p.cur().Type {
			case token.LBRACKET:
				p.advance()
				idx, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(token.RBRACKET); err != nil {
					return nil, err
				}
				expr = &ast.Index{Target: expr, Key: idx, Hash: false, Pos: pos}
			case token.LBRACE:
				p.advance()
				key, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(token.RBRACE); err != nil {
					return nil, err
				}
				expr = &ast.Index{Target: expr, Key: key, Hash: true, Pos: pos}
			case token.IDENT:
				name := p.advance()
				var args []ast.Expr
				if p.cur().Type == token.LPAREN {
					p.advance()
					for p.cur().Type != token.RPAREN {
						a, err := p.parseExpr()
						if err != nil {
							return nil, err
						}
						args = append(args, a)
						if p.cur().Type == token.COMMA {
							p.advance()
							continue
						}
						break
					}
					if _, err := p.expect(token.RPAREN); err != nil {
						return nil, err
					}
				}
				expr = &ast.MethodCall{Receiver: expr, Method: name.Literal, Args: args, Pos: pos}
			default:
				return nil, p.errorf(p.cur().Pos, "Expected [, { or identifier after ->, got %s", describe(p.cur()))
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		return &ast.IntLit{Value: parseInt32(tok.Literal), Pos: tok.Pos}, nil
	case token.FLOAT:
		p.advance()
		return &ast.FloatLit{Value: parseFloat(tok.Literal), Pos: tok.Pos}, nil
	case token.STRING:
		p.advance()
		return &ast.StringLit{Value: tok.Literal, Pos: tok.Pos}, nil
	case token.SCALAR:
		p.advance()
		return &ast.Var{Sigil: ast.ScalarSigil, Name: tok.Literal, Pos: tok.Pos}, nil
	case token.ARRAY:
		p.advance()
		return &ast.Var{Sigil: ast.ArraySigil, Name: tok.Literal, Pos: tok.Pos}, nil
	case token.HASH:
		p.advance()
		return &ast.Var{Sigil: ast.HashSigil, Name: tok.Literal, Pos: tok.Pos}, nil
	case token.LPAREN:
		p.advance()
		if p.cur().Type == token.RPAREN {
			p.advance()
			return &ast.ListLit{Pos: tok.Pos}, nil
		}
		var elems []ast.Expr
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		if len(elems) == 1 {
			return elems[0], nil
		}
		return &ast.ListLit{Elems: elems, Pos: tok.Pos}, nil
	case token.LBRACE:
		return p.parseHashLit()
	case token.IDENT:
		p.advance()
		name := tok.Literal
		// A bareword before `=>` or alone inside `{...}` is a string key.
		if nt := p.cur().Type; nt == token.FATARROW || nt == token.RBRACE {
			return &ast.StringLit{Value: name, Pos: tok.Pos}, nil
		}
		var args []ast.Expr
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		for p.cur().Type != token.RPAREN {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.Call{Name: name, Args: args, Pos: tok.Pos}, nil
	default:
		return nil, p.errorf(tok.Pos, "Expected expression, got %s", describe(tok))
	}
}

// parseInt32 and parseFloat convert already-validated lexer literals; a
// malformed literal indicates a lexer bug, not a user error, so both fall
// back to zero rather than propagating a parse error here.
func parseInt32(lit string) int32 {
	n, _ := strconv.ParseInt(lit, 10, 32)
	return int32(n)
}

func parseFloat(lit string) float64 {
	f, _ := strconv.ParseFloat(lit, 64)
	return f
}

func (p *Parser) parseHashLit() (ast.Expr, error) {
	pos := p.advance().Pos // LBRACE
	node := &ast.HashLit{Pos: pos}
	for p.cur().Type != token.RBRACE {
		k, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if p.cur().Type == token.FATARROW || p.cur().Type == token.COMMA {
			p.advance()
		} else {
			return nil, p.errorf(p.cur().Pos, "Expected => or ,, got %s", describe(p.cur()))
		}
		v, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		node.Keys = append(node.Keys, k)
		node.Values = append(node.Values, v)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return node, nil
}
