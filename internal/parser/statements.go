package parser

import (
	"github.com/cwbudde/adacomp86/internal/ccerrors"
	"github.com/cwbudde/adacomp86/internal/symtab"
	"github.com/cwbudde/adacomp86/internal/token"
)

// stmtStartSet is the set of token kinds that can legally begin a
// non-empty Statement, per spec §4.2's grammar (Statement -> AssignOrCall
// | IOStat | eps). Control-flow keywords (if/while/...) are reserved
// words recognized by the lexer but are not part of this grammar's
// Statement production, per spec's explicit Non-goals.
var stmtStartSet = map[token.Kind]bool{
	token.IDENT: true,
	token.GET:   true,
	token.PUT:   true,
	token.PUTLN: true,
}

// parseSeqOfStatements recognizes: SeqOfStatements -> (Statement ;)*
// A Statement may be eps, so a stray ";" alone is an empty statement.
func (p *Parser) parseSeqOfStatements(frame *procFrame) {
	for {
		switch {
		case stmtStartSet[p.cur.Kind]:
			p.parseStatement(frame)
			p.expect(token.SEMICOLON)
		case p.cur.Kind == token.SEMICOLON:
			p.advance() // empty statement
		default:
			return
		}
	}
}

// parseStatement recognizes: Statement -> AssignOrCall | IOStat
func (p *Parser) parseStatement(frame *procFrame) {
	switch p.cur.Kind {
	case token.IDENT:
		p.parseAssignOrCall(frame)
	case token.GET:
		p.parseIOGet(frame)
	case token.PUT:
		p.parseIOPut(frame, false)
	case token.PUTLN:
		p.parseIOPut(frame, true)
	default:
		p.errorf(ccerrors.Syntactic, p.cur.Pos, "expected a statement, found %s", p.cur.Kind)
		p.synchronize()
	}
}

// parseAssignOrCall recognizes:
//
//	AssignOrCall -> idt ( := Expr | ( Actuals? ) | eps )
//
// The eps branch is treated as a paren-less zero-argument procedure
// call.
func (p *Parser) parseAssignOrCall(frame *procFrame) {
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return
	}
	canonical := symtab.Canonical(nameTok.Lexeme)
	sym, err := p.Symbols.Lookup(canonical, false)
	if err != nil {
		p.errorf(ccerrors.Semantic, nameTok.Pos, "%s", err.Error())
	}

	switch p.cur.Kind {
	case token.ASSIGN:
		p.advance()
		place := p.parseExpr()
		if sym != nil {
			if sym.Kind != symtab.KindVariable && sym.Kind != symtab.KindParameter {
				p.errorf(ccerrors.Semantic, nameTok.Pos, "%q is not assignable", nameTok.Lexeme)
			} else {
				p.Gen.Assign(tacPlace(sym), place)
			}
		}
	case token.LPAREN:
		p.advance()
		var actuals []actual
		if p.cur.Kind != token.RPAREN {
			actuals = append(actuals, p.parseActual())
			for p.cur.Kind == token.COMMA {
				p.advance()
				actuals = append(actuals, p.parseActual())
			}
		}
		p.expect(token.RPAREN)
		p.emitCall(sym, nameTok, actuals)
	default:
		// A bare identifier statement is a paren-less zero-argument call;
		// emitCall reports "is not a procedure" if sym isn't one.
		p.emitCall(sym, nameTok, nil)
	}
}

// actual is one parsed Actual: its TAC place plus whether that place
// denotes an addressable location (a Variable or Parameter), which an
// out/inout formal requires -- a numeric literal has no address.
type actual struct {
	place       string
	addressable bool
}

// parseActual recognizes: Actual -> idt | numLit
func (p *Parser) parseActual() actual {
	switch p.cur.Kind {
	case token.IDENT:
		nameTok := p.cur
		p.advance()
		sym, err := p.Symbols.Lookup(symtab.Canonical(nameTok.Lexeme), false)
		if err != nil {
			p.errorf(ccerrors.Semantic, nameTok.Pos, "%s", err.Error())
			return actual{place: "0"}
		}
		addressable := sym.Kind == symtab.KindVariable || sym.Kind == symtab.KindParameter
		return actual{place: tacPlace(sym), addressable: addressable}
	case token.INT_LIT, token.REAL_LIT:
		tok := p.cur
		p.advance()
		return actual{place: tok.Lexeme}
	default:
		p.errorf(ccerrors.Syntactic, p.cur.Pos, "expected an actual parameter (identifier or numeric literal), found %s", p.cur.Kind)
		p.synchronize()
		return actual{place: "0"}
	}
}

// emitCall pushes actuals left-to-right and emits the call instruction.
// Pass-by-reference parameters (mode out/inout) push the operand's
// address instead of its value, per spec §4.4.
func (p *Parser) emitCall(sym *symtab.Symbol, nameTok token.Token, actuals []actual) {
	if sym == nil {
		return
	}
	if sym.Kind != symtab.KindProcedure {
		p.errorf(ccerrors.Semantic, nameTok.Pos, "%q is not a procedure", nameTok.Lexeme)
		return
	}
	if len(actuals) != len(sym.Params) {
		p.errorf(ccerrors.Semantic, nameTok.Pos,
			"procedure %q expects %d argument(s), got %d", nameTok.Lexeme, len(sym.Params), len(actuals))
	}
	n := len(actuals)
	if len(sym.Params) < n {
		n = len(sym.Params)
	}
	for i := 0; i < n; i++ {
		byRef := sym.Params[i].Mode == symtab.ModeOut || sym.Params[i].Mode == symtab.ModeInOut
		if byRef && !actuals[i].addressable {
			p.errorf(ccerrors.Semantic, nameTok.Pos,
				"argument %d to %q must be a variable or parameter, not a literal (out/inout mode)", i+1, nameTok.Lexeme)
			byRef = false
		}
		if byRef {
			p.Gen.PushAddr(actuals[i].place)
		} else {
			p.Gen.Push(actuals[i].place)
		}
	}
	p.Gen.Call(sym.OriginalCase, len(actuals))
}

// parseIOGet recognizes: IOStat -> get ( IdList )
func (p *Parser) parseIOGet(frame *procFrame) {
	p.expect(token.GET)
	p.expect(token.LPAREN)
	names := p.parseIdList()
	p.expect(token.RPAREN)

	for _, nameTok := range names {
		sym, err := p.Symbols.Lookup(symtab.Canonical(nameTok.Lexeme), false)
		if err != nil {
			p.errorf(ccerrors.Semantic, nameTok.Pos, "%s", err.Error())
			continue
		}
		if sym.Kind != symtab.KindVariable && sym.Kind != symtab.KindParameter {
			p.errorf(ccerrors.Semantic, nameTok.Pos, "%q is not assignable", nameTok.Lexeme)
			continue
		}
		p.Gen.ReadInt(tacPlace(sym))
	}
}

// parseIOPut recognizes:
//
//	IOStat    -> put ( WriteList ) | putln ( WriteList )
//	WriteList -> WriteItem (, WriteItem)*
//	WriteItem -> idt | numLit | stringLit
func (p *Parser) parseIOPut(frame *procFrame, newline bool) {
	if newline {
		p.expect(token.PUTLN)
	} else {
		p.expect(token.PUT)
	}
	p.expect(token.LPAREN)

	p.parseWriteItem()
	for p.cur.Kind == token.COMMA {
		p.advance()
		p.parseWriteItem()
	}

	p.expect(token.RPAREN)
	if newline {
		p.Gen.WriteNewline()
	}
}

// parseWriteItem recognizes one WriteItem and emits the corresponding
// WRITE_STR or WRITE_INT instruction.
func (p *Parser) parseWriteItem() {
	if p.cur.Kind == token.STRING_LIT {
		label := p.Gen.InternString(p.cur.StringValue)
		p.advance()
		p.Gen.WriteStr(label)
		return
	}
	p.Gen.WriteInt(p.parseActual().place)
}
