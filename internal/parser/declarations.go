package parser

import (
	"github.com/cwbudde/adacomp86/internal/ccerrors"
	"github.com/cwbudde/adacomp86/internal/symtab"
	"github.com/cwbudde/adacomp86/internal/token"
)

// paramTuple is one (name, type, mode) formal-parameter declaration,
// collected in declaration order before offsets are assigned.
type paramTuple struct {
	nameTok token.Token
	varType symtab.VarType
	mode    symtab.ParamMode
}

// parseArgs recognizes:
//
//	Args    -> ( ArgList ) | eps
//	ArgList -> Mode IdList : TypeMark MoreArgs
//	MoreArgs -> ; ArgList | eps
//	Mode    -> in | out | inout | eps   (eps = in)
//
// Per spec §4.2 semantic action 2, the full tuple list is collected
// first; offsets are then assigned by walking it in REVERSE declaration
// order starting at +4, so the first-declared parameter ends up at the
// highest offset (Pascal's push-left-to-right convention).
func (p *Parser) parseArgs(frame *procFrame) {
	if p.cur.Kind != token.LPAREN {
		frame.proc.ParamSize = 0
		return
	}
	p.advance() // consume '('

	var tuples []paramTuple
	for {
		mode := symtab.ModeIn
		switch p.cur.Kind {
		case token.IN:
			p.advance()
		case token.OUT:
			mode = symtab.ModeOut
			p.advance()
		case token.INOUT:
			mode = symtab.ModeInOut
			p.advance()
		}

		names := p.parseIdList()
		p.expect(token.COLON)
		varType, ok := p.parseScalarTypeMark()
		if !ok {
			p.synchronize()
		}
		for _, nameTok := range names {
			tuples = append(tuples, paramTuple{nameTok: nameTok, varType: varType, mode: mode})
		}

		if p.cur.Kind == token.SEMICOLON {
			p.advance()
			continue
		}
		break
	}

	p.expect(token.RPAREN)

	depth := p.Symbols.CurrentDepth()
	symbols := make([]*symtab.Symbol, len(tuples))
	offset := 4
	for i := len(tuples) - 1; i >= 0; i-- {
		tup := tuples[i]
		size := tup.varType.Size()
		sym := &symtab.Symbol{
			Name:          symtab.Canonical(tup.nameTok.Lexeme),
			OriginalCase:  tup.nameTok.Lexeme,
			DefiningToken: tup.nameTok,
			Depth:         depth,
			Kind:          symtab.KindParameter,
			VarType:       tup.varType,
			Size:          size,
			Offset:        offset,
			Mode:          tup.mode,
		}
		offset += size
		if err := p.Symbols.Insert(sym); err != nil {
			p.errorf(ccerrors.Semantic, tup.nameTok.Pos, "%s", err.Error())
		}
		symbols[i] = sym
	}

	frame.proc.Params = symbols
	frame.proc.ParamSize = offset - 4
}

// parseIdList recognizes: IdList -> idt (, idt)*
func (p *Parser) parseIdList() []token.Token {
	var ids []token.Token
	tok, ok := p.expect(token.IDENT)
	if ok {
		ids = append(ids, tok)
	}
	for p.cur.Kind == token.COMMA {
		p.advance()
		tok, ok := p.expect(token.IDENT)
		if ok {
			ids = append(ids, tok)
		}
	}
	return ids
}

// parseScalarTypeMark recognizes the non-constant alternatives of
// TypeMark: integer | float | char.
func (p *Parser) parseScalarTypeMark() (symtab.VarType, bool) {
	switch p.cur.Kind {
	case token.INTEGER:
		p.advance()
		return symtab.TypeInteger, true
	case token.FLOAT:
		p.advance()
		return symtab.TypeReal, true
	case token.CHAR:
		p.advance()
		return symtab.TypeCharacter, true
	default:
		p.errorf(ccerrors.Syntactic, p.cur.Pos, "expected a type (integer, float, char), found %s", p.cur.Kind)
		return symtab.TypeInteger, false
	}
}

// parseDeclarativePart recognizes:
//
//	DeclarativePart -> (IdList : TypeMark ;)*
//	TypeMark        -> integer | float | char | constant := Value
//	Value           -> integerLit | realLit | charLit
//
// Each group's identifiers become either Variable symbols (assigned a
// fresh negative local offset per §4.2 semantic action 3) or Constant
// symbols (no offset; uses are substituted with the literal value at
// TAC-generation time).
func (p *Parser) parseDeclarativePart(frame *procFrame) {
	for p.cur.Kind == token.IDENT {
		names := p.parseIdList()
		p.expect(token.COLON)

		if p.cur.Kind == token.CONSTANT {
			p.advance()
			p.expect(token.ASSIGN)
			p.declareConstants(frame, names)
		} else {
			varType, ok := p.parseScalarTypeMark()
			if !ok {
				p.synchronize()
				continue
			}
			p.declareVariables(frame, names, varType)
		}

		p.expect(token.SEMICOLON)
	}
}

func (p *Parser) declareVariables(frame *procFrame, names []token.Token, varType symtab.VarType) {
	depth := p.Symbols.CurrentDepth()
	for _, nameTok := range names {
		size := varType.Size()
		sym := &symtab.Symbol{
			Name:          symtab.Canonical(nameTok.Lexeme),
			OriginalCase:  nameTok.Lexeme,
			DefiningToken: nameTok,
			Depth:         depth,
			Kind:          symtab.KindVariable,
			VarType:       varType,
			Size:          size,
			Offset:        frame.localOffset,
		}
		frame.localOffset -= size
		// Depth-1 locals are this language's "globals": addressed by
		// name in the .DATA segment for the program's whole lifetime,
		// per spec §4.3/§4.5. They never occupy a stack frame slot, so
		// only depth>=2 locals grow the enclosing procedure's LocalSize
		// (see spec's S1 scenario: a depth-1-only procedure's local_size
		// accounts for its temporaries alone).
		if depth >= 2 {
			frame.proc.LocalSize += size
		}
		if err := p.Symbols.Insert(sym); err != nil {
			p.errorf(ccerrors.Semantic, nameTok.Pos, "%s", err.Error())
		}
		if depth == 1 {
			p.Globals = append(p.Globals, sym)
		}
	}
}

func (p *Parser) declareConstants(frame *procFrame, names []token.Token) {
	valueTok := p.cur
	var varType symtab.VarType
	switch valueTok.Kind {
	case token.INT_LIT:
		varType = symtab.TypeInteger
	case token.REAL_LIT:
		varType = symtab.TypeReal
	case token.CHAR_LIT:
		varType = symtab.TypeCharacter
	default:
		p.errorf(ccerrors.Syntactic, valueTok.Pos, "expected a constant value (integer, real, or char literal), found %s", valueTok.Kind)
		return
	}
	p.advance()

	depth := p.Symbols.CurrentDepth()
	for _, nameTok := range names {
		sym := &symtab.Symbol{
			Name:          symtab.Canonical(nameTok.Lexeme),
			OriginalCase:  nameTok.Lexeme,
			DefiningToken: nameTok,
			Depth:         depth,
			Kind:          symtab.KindConstant,
			VarType:       varType,
			ConstLiteral:  valueTok.Lexeme,
		}
		if err := p.Symbols.Insert(sym); err != nil {
			p.errorf(ccerrors.Semantic, nameTok.Pos, "%s", err.Error())
		}
	}
}
