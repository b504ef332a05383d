package parser

import (
	"github.com/cwbudde/adacomp86/internal/ccerrors"
	"github.com/cwbudde/adacomp86/internal/symtab"
	"github.com/cwbudde/adacomp86/internal/tac"
	"github.com/cwbudde/adacomp86/internal/token"
)

// tacPlace derives the TAC place for a resolved symbol reference: a
// Constant substitutes its own literal text directly (spec §4.4 action
// 6/7), everything else goes through tac.PlaceOf's depth-aware
// addressing rule.
func tacPlace(sym *symtab.Symbol) string {
	if sym.Kind == symtab.KindConstant {
		return sym.ConstLiteral
	}
	return tac.PlaceOf(sym)
}

// relOps maps relational operator tokens to their source-language
// operator spelling, used to look up the TAC opcode name.
var relOps = map[token.Kind]string{
	token.EQ: "=",
	token.NE: "/=",
	token.LT: "<",
	token.LE: "<=",
	token.GT: ">",
	token.GE: ">=",
}

// parseExpr recognizes: Expr -> SimpleExpr (RelOp SimpleExpr)?
func (p *Parser) parseExpr() string {
	left := p.parseSimpleExpr()
	if opSpelling, ok := relOps[p.cur.Kind]; ok {
		p.advance()
		right := p.parseSimpleExpr()
		opName, _ := tac.BinaryOpcodeName(opSpelling)
		return p.Gen.Binary(opName, left, right)
	}
	return left
}

// parseSimpleExpr recognizes: SimpleExpr -> Term ((+ | - | or) Term)*
func (p *Parser) parseSimpleExpr() string {
	left := p.parseTerm()
	for {
		var opSpelling string
		switch p.cur.Kind {
		case token.PLUS:
			opSpelling = "+"
		case token.MINUS:
			opSpelling = "-"
		case token.OR:
			opSpelling = "or"
		default:
			return left
		}
		p.advance()
		right := p.parseTerm()
		opName, _ := tac.BinaryOpcodeName(opSpelling)
		left = p.Gen.Binary(opName, left, right)
	}
}

// parseTerm recognizes: Term -> Factor ((* | / | mod | rem | and) Factor)*
func (p *Parser) parseTerm() string {
	left := p.parseFactor()
	for {
		var opSpelling string
		switch p.cur.Kind {
		case token.STAR:
			opSpelling = "*"
		case token.SLASH:
			opSpelling = "/"
		case token.MOD:
			opSpelling = "mod"
		case token.REM:
			opSpelling = "rem"
		case token.AND:
			opSpelling = "and"
		default:
			return left
		}
		p.advance()
		right := p.parseFactor()
		opName, _ := tac.BinaryOpcodeName(opSpelling)
		left = p.Gen.Binary(opName, left, right)
	}
}

// parseFactor recognizes:
//
//	Factor -> idt | numLit | ( Expr ) | not Factor | - Factor | + Factor
//
// Unary plus is a no-op per spec §4.4 and simply returns its operand's
// place unchanged.
func (p *Parser) parseFactor() string {
	switch p.cur.Kind {
	case token.MINUS:
		p.advance()
		operand := p.parseFactor()
		return p.Gen.Unary("UMINUS", operand)
	case token.PLUS:
		p.advance()
		return p.parseFactor()
	case token.NOT:
		p.advance()
		operand := p.parseFactor()
		return p.Gen.Unary("NOT", operand)
	default:
		return p.parsePrimary()
	}
}

// parsePrimary recognizes the terminal alternatives of Factor:
//
//	idt | intLit | realLit | charLit | ( Expr )
//
// Factor has no call-as-expression alternative: procedures carry no
// return value in this grammar, so a Procedure name resolved here is
// always a semantic error.
func (p *Parser) parsePrimary() string {
	switch p.cur.Kind {
	case token.IDENT:
		nameTok := p.cur
		p.advance()
		sym, err := p.Symbols.Lookup(symtab.Canonical(nameTok.Lexeme), false)
		if err != nil {
			p.errorf(ccerrors.Semantic, nameTok.Pos, "%s", err.Error())
			return "0"
		}
		if sym.Kind == symtab.KindProcedure {
			p.errorf(ccerrors.Semantic, nameTok.Pos, "%q is a procedure, not a value", nameTok.Lexeme)
			return "0"
		}
		return tacPlace(sym)
	case token.INT_LIT, token.REAL_LIT, token.CHAR_LIT:
		tok := p.cur
		p.advance()
		return tok.Lexeme
	case token.LPAREN:
		p.advance()
		place := p.parseExpr()
		p.expect(token.RPAREN)
		return place
	default:
		p.errorf(ccerrors.Syntactic, p.cur.Pos, "expected an expression, found %s", p.cur.Kind)
		p.synchronize()
		return "0"
	}
}
