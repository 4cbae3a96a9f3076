// Package parser builds an internal/ast tree from a lexer token stream.
//
// Structured as a Parser with tokens/current/Errors fields, the usual
// match/check/advance cursor helpers, and an operator-precedence table
// driving a precedence-climbing expression parser — adapted to consume
// INDENT/DEDENT/NEWLINE tokens for block structure instead of braces.
package parser

import (
	"fmt"

	"neoc/internal/ast"
	"neoc/internal/lexer"
)

var precedence = map[lexer.TokenType]int{
	lexer.TokenOr:     1,
	lexer.TokenAnd:    2,
	lexer.TokenEq:     3,
	lexer.TokenNotEq:  3,
	lexer.TokenLT:     3,
	lexer.TokenGT:     3,
	lexer.TokenLE:     3,
	lexer.TokenGE:     3,
	lexer.TokenIs:     3,
	lexer.TokenIn:     3,
	lexer.TokenPlus:   4,
	lexer.TokenMinus:  4,
	lexer.TokenStar:   5,
	lexer.TokenSlash:  5,
	lexer.TokenDSlash: 5,
	lexer.TokenPercent: 5,
	lexer.TokenDStar:  6,
}

type Parser struct {
	tokens  []lexer.Token
	current int
	Errors  []error
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens, Errors: []error{}}
}

// Parse consumes the whole token stream, returning every top-level
// function definition. Parse errors are collected in p.Errors rather than
// panicking, so a caller can report every syntax problem in one pass.
func (p *Parser) Parse() *ast.Module {
	mod := &ast.Module{}
	for !p.isAtEnd() {
		if p.check(lexer.TokenNewline) {
			p.advance()
			continue
		}
		fn := p.functionDef()
		if fn != nil {
			mod.Functions = append(mod.Functions, fn)
		}
	}
	return mod
}

func (p *Parser) functionDef() *ast.FunctionDef {
	var decorators []string
	for p.match(lexer.TokenAt) {
		name := p.consume(lexer.TokenIdent, "expected decorator name").Lexeme
		decorators = append(decorators, name)
		p.consume(lexer.TokenNewline, "expected newline after decorator")
	}
	if !p.match(lexer.TokenDef) {
		p.errorf("expected 'def', got %s", p.peek().Lexeme)
		p.advance()
		return nil
	}
	pos := p.posAt(p.previous())
	name := p.consume(lexer.TokenIdent, "expected function name").Lexeme
	p.consume(lexer.TokenLParen, "expected '(' after function name")

	var params []ast.Param
	for !p.check(lexer.TokenRParen) {
		pname := p.consume(lexer.TokenIdent, "expected parameter name")
		ptype := ""
		if p.match(lexer.TokenColon) {
			ptype = p.typeAnnotation()
		}
		params = append(params, ast.Param{Pos: p.posAt(pname), Name: pname.Lexeme, Type: ptype})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRParen, "expected ')' after parameters")

	returnType := ""
	if p.match(lexer.TokenArrow) {
		returnType = p.typeAnnotation()
	}
	p.consume(lexer.TokenColon, "expected ':' to start function body")
	p.consume(lexer.TokenNewline, "expected newline before function body")
	body := p.block()

	return &ast.FunctionDef{Pos: pos, Name: name, Params: params, ReturnType: returnType, Decorators: decorators, Body: body}
}

// typeAnnotation accepts a dotted/subscripted type name as raw text; the
// analyser, not the parser, decides whether it resolves to a known type.
func (p *Parser) typeAnnotation() string {
	tok := p.advance()
	text := tok.Lexeme
	if p.match(lexer.TokenLBracket) {
		text += "["
		for !p.check(lexer.TokenRBracket) {
			text += p.advance().Lexeme
		}
		p.consume(lexer.TokenRBracket, "expected ']' to close type parameter")
		text += "]"
	}
	return text
}

func (p *Parser) block() []ast.Stmt {
	p.consume(lexer.TokenIndent, "expected an indented block")
	var stmts []ast.Stmt
	for !p.check(lexer.TokenDedent) && !p.isAtEnd() {
		if p.match(lexer.TokenNewline) {
			continue
		}
		stmts = append(stmts, p.statement())
	}
	p.consume(lexer.TokenDedent, "expected dedent to close block")
	return stmts
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(lexer.TokenReturn):
		return p.returnStatement()
	case p.match(lexer.TokenIf):
		return p.ifStatement()
	case p.match(lexer.TokenWhile):
		return p.whileStatement()
	case p.match(lexer.TokenFor):
		return p.forStatement()
	case p.match(lexer.TokenBreak):
		s := &ast.Break{Pos: p.posAt(p.previous())}
		p.consume(lexer.TokenNewline, "expected newline after break")
		return s
	case p.match(lexer.TokenContinue):
		s := &ast.Continue{Pos: p.posAt(p.previous())}
		p.consume(lexer.TokenNewline, "expected newline after continue")
		return s
	case p.match(lexer.TokenPass):
		p.consume(lexer.TokenNewline, "expected newline after pass")
		return &ast.ExprStmt{Pos: p.posAt(p.previous())}
	default:
		return p.simpleStatement()
	}
}

func (p *Parser) returnStatement() ast.Stmt {
	pos := p.posAt(p.previous())
	var value ast.Expr
	if !p.check(lexer.TokenNewline) {
		value = p.exprList()
	}
	p.consume(lexer.TokenNewline, "expected newline after return")
	return &ast.Return{Pos: pos, Value: value}
}

func (p *Parser) ifStatement() ast.Stmt {
	pos := p.posAt(p.previous())
	cond := p.expression()
	p.consume(lexer.TokenColon, "expected ':' after if condition")
	p.consume(lexer.TokenNewline, "expected newline after if condition")
	then := p.block()

	var elseBody []ast.Stmt
	if p.match(lexer.TokenElif) {
		elseBody = []ast.Stmt{p.ifStatement()}
	} else if p.match(lexer.TokenElse) {
		p.consume(lexer.TokenColon, "expected ':' after else")
		p.consume(lexer.TokenNewline, "expected newline after else")
		elseBody = p.block()
	}
	return &ast.If{Pos: pos, Cond: cond, Then: then, Else: elseBody}
}

func (p *Parser) whileStatement() ast.Stmt {
	pos := p.posAt(p.previous())
	cond := p.expression()
	p.consume(lexer.TokenColon, "expected ':' after while condition")
	p.consume(lexer.TokenNewline, "expected newline after while condition")
	return &ast.While{Pos: pos, Cond: cond, Body: p.block()}
}

func (p *Parser) forStatement() ast.Stmt {
	pos := p.posAt(p.previous())
	target := p.consume(lexer.TokenIdent, "expected loop variable name").Lexeme
	p.consume(lexer.TokenIn, "expected 'in' in for statement")
	iterable := p.expression()
	p.consume(lexer.TokenColon, "expected ':' after for clause")
	p.consume(lexer.TokenNewline, "expected newline after for clause")
	return &ast.ForIn{Pos: pos, Target: target, Iterable: iterable, Body: p.block()}
}

// simpleStatement is an assignment or a bare expression statement.
func (p *Parser) simpleStatement() ast.Stmt {
	pos := p.posAt(p.peek())
	first := p.exprList()

	if p.check(lexer.TokenEqual) {
		targets := []ast.Expr{first}
		var value ast.Expr
		for p.match(lexer.TokenEqual) {
			value = p.exprList()
			if p.check(lexer.TokenEqual) {
				targets = append(targets, value)
			}
		}
		p.consume(lexer.TokenNewline, "expected newline after assignment")
		return &ast.Assign{Pos: pos, Targets: targets, Value: value}
	}

	p.consume(lexer.TokenNewline, "expected newline after expression statement")
	return &ast.ExprStmt{Pos: pos, Expr: first}
}

// --- expressions: precedence climbing ---

func (p *Parser) expression() ast.Expr { return p.binary(0) }

// exprList parses a single expression, or — when followed by a comma — a
// comma-separated list collapsed into a *ast.Tuple. Used only where Python
// allows a bare tuple without parentheses: a return value and an
// assignment's target or value position.
func (p *Parser) exprList() ast.Expr {
	pos := p.posAt(p.peek())
	first := p.expression()
	if !p.match(lexer.TokenComma) {
		return first
	}
	elements := []ast.Expr{first, p.expression()}
	for p.match(lexer.TokenComma) {
		elements = append(elements, p.expression())
	}
	return &ast.Tuple{Pos: pos, Elements: elements}
}

func (p *Parser) binary(minPrec int) ast.Expr {
	left := p.unary()
	for {
		prec, ok := precedence[p.peek().Type]
		if !ok || prec < minPrec {
			break
		}
		opTok := p.advance()
		right := p.binary(prec + 1)
		left = &ast.BinOp{Pos: p.posAt(opTok), Operator: operatorText(opTok), Left: left, Right: right}
	}
	return left
}

func (p *Parser) unary() ast.Expr {
	if p.match(lexer.TokenMinus) {
		pos := p.posAt(p.previous())
		return &ast.UnaryOp{Pos: pos, Operator: "u-", Operand: p.unary()}
	}
	if p.match(lexer.TokenPlus) {
		pos := p.posAt(p.previous())
		return &ast.UnaryOp{Pos: pos, Operator: "u+", Operand: p.unary()}
	}
	if p.match(lexer.TokenNot) {
		pos := p.posAt(p.previous())
		return &ast.UnaryOp{Pos: pos, Operator: "not", Operand: p.unary()}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(lexer.TokenLParen):
			expr = p.finishCall(expr)
		case p.match(lexer.TokenDot):
			name := p.consume(lexer.TokenIdent, "expected attribute name after '.'")
			expr = &ast.Attribute{Pos: p.posAt(name), Object: expr, Name: name.Lexeme}
		case p.match(lexer.TokenLBracket):
			expr = p.finishIndex(expr)
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	pos := p.posAt(p.previous())
	var args []ast.Expr
	for !p.check(lexer.TokenRParen) {
		args = append(args, p.expression())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRParen, "expected ')' after call arguments")
	return &ast.Call{Pos: pos, Callee: callee, Args: args}
}

func (p *Parser) finishIndex(object ast.Expr) ast.Expr {
	pos := p.posAt(p.previous())
	var lower, upper ast.Expr
	if !p.check(lexer.TokenColon) {
		lower = p.expression()
	}
	if p.match(lexer.TokenColon) {
		if !p.check(lexer.TokenRBracket) {
			upper = p.expression()
		}
		p.consume(lexer.TokenRBracket, "expected ']' after slice")
		return &ast.Slice{Pos: pos, Object: object, Lower: lower, Upper: upper}
	}
	p.consume(lexer.TokenRBracket, "expected ']' after index")
	return &ast.Index{Pos: pos, Object: object, Index: lower}
}

func (p *Parser) primary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenNumber:
		p.advance()
		return &ast.IntLiteral{Pos: p.posAt(tok), Value: parseInt(tok.Lexeme)}
	case lexer.TokenString:
		p.advance()
		return &ast.StrLiteral{Pos: p.posAt(tok), Value: tok.Lexeme}
	case lexer.TokenTrue:
		p.advance()
		return &ast.BoolLiteral{Pos: p.posAt(tok), Value: true}
	case lexer.TokenFalse:
		p.advance()
		return &ast.BoolLiteral{Pos: p.posAt(tok), Value: false}
	case lexer.TokenNone:
		p.advance()
		return &ast.NoneLiteral{Pos: p.posAt(tok)}
	case lexer.TokenIdent:
		p.advance()
		return &ast.Identifier{Pos: p.posAt(tok), Name: tok.Lexeme}
	case lexer.TokenLParen:
		p.advance()
		inner := p.expression()
		p.consume(lexer.TokenRParen, "expected ')' to close grouping")
		return inner
	default:
		p.errorf("unexpected token %s in expression", tok.Lexeme)
		p.advance()
		return &ast.NoneLiteral{Pos: p.posAt(tok)}
	}
}

func operatorText(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenAnd:
		return "and"
	case lexer.TokenOr:
		return "or"
	case lexer.TokenIs:
		return "is"
	case lexer.TokenIn:
		return "in"
	default:
		return string(tok.Type)
	}
}

func parseInt(lexeme string) int64 {
	var v int64
	for i := 0; i < len(lexeme); i++ {
		v = v*10 + int64(lexeme[i]-'0')
	}
	return v
}

// --- cursor helpers ---

func (p *Parser) posAt(tok lexer.Token) ast.Pos { return ast.Pos{Line: tok.Line, Col: 1} }

func (p *Parser) isAtEnd() bool { return p.peek().Type == lexer.TokenEOF }

func (p *Parser) peek() lexer.Token {
	if p.current >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) previous() lexer.Token { return p.tokens[p.current-1] }

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t lexer.TokenType) bool { return !p.isAtEnd() && p.peek().Type == t }

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, message string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorf("%s (got %s)", message, p.peek().Lexeme)
	return p.peek()
}

func (p *Parser) errorf(format string, args ...any) {
	p.Errors = append(p.Errors, fmt.Errorf(format, args...))
}
