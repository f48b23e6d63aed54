// Package parser implements the recursive-descent formula parser and its
// atom-keyed parse cache (spec §4.4).
package parser

import (
	"fmt"
	"strconv"

	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
)

// Parser turns formula text into an expression tree allocated from a
// parse-private arena. One Parser is used per Parse call; the teacher's
// parser.Parser is likewise constructed fresh per program (parser.New(l)).
type Parser struct {
	lex    *Lexer
	table  *atom.Table
	arena  *arena.Arena
	tok    Token
	peeked *Token
}

// Parse parses src (a formula's text, with or without a leading "=") into an
// expression tree rooted at the returned Node, allocating from a. A leading
// "=" is consumed and ignored, per spec §4.4.
func Parse(src string, table *atom.Table, a *arena.Arena) *arena.Node {
	if len(src) > 0 && src[0] == '=' {
		src = src[1:]
	}
	p := &Parser{lex: NewLexer(src), table: table, arena: a}
	p.advance()
	n := p.parseExpr()
	if p.tok.Kind != TokEOF {
		return p.errorf("unexpected trailing input at %q", p.tok.Literal)
	}
	return n
}

func (p *Parser) advance() {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return
	}
	p.tok = p.lex.Next()
}

func (p *Parser) peek() Token {
	if p.peeked == nil {
		t := p.lex.Next()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) errorf(format string, args ...interface{}) *arena.Node {
	n := p.arena.Alloc()
	n.Kind = arena.KindError
	n.Str = p.table.InternString(fmt.Sprintf(format, args...))
	return n
}

func (p *Parser) expect(k TokenKind) bool {
	if p.tok.Kind != k {
		return false
	}
	p.advance()
	return true
}

// parseExpr := comparison
func (p *Parser) parseExpr() *arena.Node {
	return p.parseComparison()
}

func (p *Parser) parseComparison() *arena.Node {
	left := p.parseAddSub()
	for {
		var op arena.Op
		switch p.tok.Kind {
		case TokLt:
			op = arena.OpLt
		case TokLe:
			op = arena.OpLe
		case TokGt:
			op = arena.OpGt
		case TokGe:
			op = arena.OpGe
		case TokEq, TokEe:
			op = arena.OpEq
		case TokNe:
			op = arena.OpNe
		default:
			return left
		}
		p.advance()
		right := p.parseAddSub()
		left = p.binary(op, left, right)
	}
}

func (p *Parser) parseAddSub() *arena.Node {
	left := p.parseMulDiv()
	for p.tok.Kind == TokPlus || p.tok.Kind == TokMinus {
		op := arena.OpAdd
		if p.tok.Kind == TokMinus {
			op = arena.OpSub
		}
		p.advance()
		right := p.parseMulDiv()
		left = p.binary(op, left, right)
	}
	return left
}

func (p *Parser) parseMulDiv() *arena.Node {
	left := p.parseUnary()
	for p.tok.Kind == TokAsterisk || p.tok.Kind == TokSlash {
		op := arena.OpMul
		if p.tok.Kind == TokSlash {
			op = arena.OpDiv
		}
		p.advance()
		right := p.parseUnary()
		left = p.binary(op, left, right)
	}
	return left
}

func (p *Parser) binary(op arena.Op, l, r *arena.Node) *arena.Node {
	n := p.arena.Alloc()
	n.Kind = arena.KindBinary
	n.Op = op
	n.Kids[0], n.Kids[1] = l, r
	return n
}

// parseUnary handles the "+"/"--" prefix-folding rules of spec §4.4: a run
// of unary "+" is a no-op, a run of unary "-" collapses pairwise ("--" folds
// to nothing extra beyond the next sign), and a trailing "!" or single "-"
// applies to the terminal.
func (p *Parser) parseUnary() *arena.Node {
	negate := false
	for {
		switch p.tok.Kind {
		case TokPlus:
			p.advance()
			continue
		case TokMinus:
			p.advance()
			negate = !negate
			continue
		}
		break
	}
	var notted bool
	if p.tok.Kind == TokBang {
		p.advance()
		notted = true
	} else if p.tok.Kind == TokMinus {
		// A lone trailing "-" immediately before the terminal (covered by
		// the loop above already); nothing further to do here.
	}
	term := p.parseTerminal()

	if notted {
		u := p.arena.Alloc()
		u.Kind = arena.KindUnary
		u.Op = arena.OpNot
		u.Kids[0] = term
		term = u
	}
	if negate {
		// Fold negation into a numeric literal at parse time (spec §4.4).
		if term.Kind == arena.KindNumber {
			term.Num = -term.Num
			return term
		}
		u := p.arena.Alloc()
		u.Kind = arena.KindUnary
		u.Op = arena.OpNeg
		u.Kids[0] = term
		return u
	}
	return term
}

// parseTerminal := range_literal | func_call | number | group | string | range_shortform
func (p *Parser) parseTerminal() *arena.Node {
	switch p.tok.Kind {
	case TokLBracket:
		return p.parseRangeLiteral()
	case TokLParen:
		p.advance()
		inner := p.parseExpr()
		if !p.expect(TokRParen) {
			return p.errorf("unterminated group")
		}
		g := p.arena.Alloc()
		g.Kind = arena.KindGroup
		g.Kids[0] = inner
		return g
	case TokString:
		lit := p.tok.Literal
		p.advance()
		s := p.arena.Alloc()
		s.Kind = arena.KindString
		s.Str = p.table.InternString(lit)
		return s
	case TokNumber:
		return p.parseNumber()
	case TokIdent:
		if p.peek().Kind == TokLParen {
			return p.parseFuncCall()
		}
		return p.parseRangeShorthand()
	default:
		return p.errorf("unexpected token %q", p.tok.Literal)
	}
}

func (p *Parser) parseNumber() *arena.Node {
	lit := p.tok.Literal
	f, err := strconv.ParseFloat(lit, 64)
	p.advance()
	if err != nil {
		return p.errorf("bad number %q", lit)
	}
	n := p.arena.Alloc()
	n.Kind = arena.KindNumber
	n.Num = f
	return n
}

func (p *Parser) parseFuncCall() *arena.Node {
	name := p.tok.Literal
	p.advance() // ident
	p.advance() // (
	n := p.arena.Alloc()
	n.Kind = arena.KindFunctionCall
	n.Name = p.table.InternLower([]byte(name))
	if p.tok.Kind != TokRParen {
		for {
			if n.Argc >= 4 {
				return p.errorf("too many arguments to %s", name)
			}
			arg := p.parseExpr()
			n.Kids[n.Argc] = arg
			n.Argc++
			if p.tok.Kind != TokComma {
				break
			}
			p.advance()
		}
	}
	if !p.expect(TokRParen) {
		return p.errorf("unterminated call to %s", name)
	}
	return n
}
