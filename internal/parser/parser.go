// Package parser implements the recursive-descent parser with inline
// semantic actions described in spec §4.2. The parser owns the active
// *symtab.Table and *tac.Generator directly; there is no separate AST
// pass (see DESIGN.md's "Open Question decisions" for why).
//
// Errors are never fatal: on an unexpected token the parser reports it,
// resynchronizes to a statement-level synchronization set, and keeps
// going, so a single run can surface every error in a source file.
package parser

import (
	"fmt"
	"os"

	"github.com/cwbudde/adacomp86/internal/ccerrors"
	"github.com/cwbudde/adacomp86/internal/lexer"
	"github.com/cwbudde/adacomp86/internal/symtab"
	"github.com/cwbudde/adacomp86/internal/tac"
	"github.com/cwbudde/adacomp86/internal/token"
)

// Parser recognizes a Program (one or more ProcedureDecls) and drives
// the symbol table and TAC generator as a side effect of recursive
// descent.
type Parser struct {
	lex      *lexer.Lexer
	cur      token.Token
	peek     token.Token
	reporter *ccerrors.Reporter

	Symbols *symtab.Table
	Gen     *tac.Generator

	// Procedures and Globals survive scope teardown: the symbol table
	// discards a scope's contents once the enclosing procedure is fully
	// parsed (spec §4.3), but the ASM translator needs every procedure's
	// final LocalSize/ParamSize and every depth-1 variable regardless of
	// which top-level procedure's scope they lived in.
	Procedures []*symtab.Symbol
	Globals    []*symtab.Symbol

	entryName string
	entrySet  bool

	lexErrorsDrained int
	tracing          bool
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithTracing enables verbose tracing of symbol insertions, scope exits,
// and TAC emission, used by the "-d/--debug" CLI flag. Each symbol
// insertion, each scope's contents as it is exited (the "external
// logger collaborator" of spec §4.3), and each emitted TAC instruction
// is echoed to stderr as it happens.
func WithTracing(trace bool) Option {
	return func(p *Parser) {
		p.tracing = trace
		if !trace {
			return
		}
		p.Symbols.Trace = func(sym *symtab.Symbol) {
			fmt.Fprintf(os.Stderr, "symbol: %s %s depth=%d\n", sym.Kind, sym.OriginalCase, sym.Depth)
		}
		p.Symbols.OnExitScope = func(scope *symtab.Scope) {
			names := make([]string, 0, len(scope.Symbols()))
			for _, sym := range scope.Symbols() {
				names = append(names, sym.OriginalCase)
			}
			fmt.Fprintf(os.Stderr, "scope exit: depth=%d symbols=%v\n", scope.Depth, names)
		}
		p.Gen.Trace = func(line string) {
			fmt.Fprintf(os.Stderr, "tac: %s\n", line)
		}
	}
}

// New creates a Parser over lex, reporting diagnostics to reporter.
func New(lex *lexer.Lexer, reporter *ccerrors.Reporter, opts ...Option) *Parser {
	p := &Parser{
		lex:      lex,
		reporter: reporter,
		Symbols:  symtab.New(),
		Gen:      tac.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.advance()
	p.advance()
	return p
}

// EntryPoint returns the recorded program-entry procedure name and
// whether one was ever recorded (false only if the program had no
// top-level procedure at all).
func (p *Parser) EntryPoint() (string, bool) {
	return p.entryName, p.entrySet
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
	p.drainLexErrors()
}

// drainLexErrors copies any lexical errors accumulated by the lexer
// since the last drain into the shared Reporter, so a single summary
// covers all three error kinds per spec §7.
func (p *Parser) drainLexErrors() {
	errs := p.lex.Errors()
	for ; p.lexErrorsDrained < len(errs); p.lexErrorsDrained++ {
		e := errs[p.lexErrorsDrained]
		p.errorf(ccerrors.Lexical, e.Pos, "%s", e.Message)
	}
}

// expect consumes the current token if it matches kind, reporting a
// syntactic error and leaving the cursor in place otherwise.
func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.cur.Kind == kind {
		tok := p.cur
		p.advance()
		return tok, true
	}
	p.errorf(ccerrors.Syntactic, p.cur.Pos, "expected %s but found %s (%q)", kind, p.cur.Kind, p.cur.Lexeme)
	return p.cur, false
}

func (p *Parser) errorf(kind ccerrors.Kind, pos token.Position, format string, args ...any) {
	p.reporter.Add(kind, pos, format, args...)
}

// syncSet is the statement-level synchronization set per spec §4.2:
// a statement terminator, a block opener/closer, or EOF.
var syncSet = map[token.Kind]bool{
	token.SEMICOLON: true,
	token.BEGIN:     true,
	token.END:       true,
	token.EOF:       true,
}

// synchronize discards tokens until one in syncSet is current. If that
// token is SEMICOLON, it is consumed too (it terminates the broken
// statement); BEGIN/END/EOF are left for the caller to handle.
func (p *Parser) synchronize() {
	for !syncSet[p.cur.Kind] {
		p.advance()
	}
	if p.cur.Kind == token.SEMICOLON {
		p.advance()
	}
}

// ParseProgram recognizes Program -> ProcedureDecl+ EOF. It returns
// true only if no diagnostics were recorded and the final token
// reached is EOF, per spec §4.2's definition of parsing success.
func (p *Parser) ParseProgram() bool {
	if p.cur.Kind != token.PROCEDURE {
		p.errorf(ccerrors.Syntactic, p.cur.Pos, "expected a procedure declaration, found %s", p.cur.Kind)
	}
	for p.cur.Kind == token.PROCEDURE {
		p.parseProcedureDecl()
	}
	if p.cur.Kind != token.EOF {
		p.errorf(ccerrors.Syntactic, p.cur.Pos, "expected end of program, found %s (%q)", p.cur.Kind, p.cur.Lexeme)
	}
	if p.entrySet {
		p.Gen.ProgramStart(p.entryName)
	}
	return !p.reporter.HasErrors() && p.cur.Kind == token.EOF
}

// procFrame tracks the per-procedure state needed while parsing its
// body: the procedure's own Symbol (to accumulate LocalSize/ParamSize
// into) and the running local-offset counter, which starts at -2 and
// decreases by each local's size as it is declared, per spec §3/§4.2.
type procFrame struct {
	proc        *symtab.Symbol
	localOffset int
}

// parseProcedureDecl recognizes:
//
//	ProcedureDecl -> procedure idt Args is
//	                   DeclarativePart
//	                   ProcedureDecl*
//	                 begin SeqOfStatements end idt ;
func (p *Parser) parseProcedureDecl() {
	p.expect(token.PROCEDURE)

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return
	}

	canonical := symtab.Canonical(nameTok.Lexeme)
	isTopLevel := p.Symbols.CurrentDepth() == 0

	procSym := &symtab.Symbol{
		Name:          canonical,
		OriginalCase:  nameTok.Lexeme,
		DefiningToken: nameTok,
		Depth:         p.Symbols.CurrentDepth(),
		Kind:          symtab.KindProcedure,
	}
	if err := p.Symbols.Insert(procSym); err != nil {
		p.errorf(ccerrors.Semantic, nameTok.Pos, "%s", err.Error())
	}
	p.Procedures = append(p.Procedures, procSym)

	p.Symbols.EnterScope()
	frame := &procFrame{proc: procSym, localOffset: -2}

	p.Gen.ProcBegin(procSym.OriginalCase)

	p.parseArgs(frame)
	p.expect(token.IS)

	p.parseDeclarativePart(frame)

	for p.cur.Kind == token.PROCEDURE {
		p.parseProcedureDecl()
	}

	p.expect(token.BEGIN)
	p.parseSeqOfStatements(frame)
	p.expect(token.END)

	endNameTok, ok := p.expect(token.IDENT)
	if ok && symtab.Canonical(endNameTok.Lexeme) != canonical {
		p.errorf(ccerrors.Semantic, endNameTok.Pos,
			"procedure end name %q does not match header name %q", endNameTok.Lexeme, nameTok.Lexeme)
	}
	p.expect(token.SEMICOLON)

	procSym.LocalSize += 2 * p.Gen.ProcEnd(procSym.OriginalCase)
	p.Symbols.ExitScope()

	if isTopLevel && !p.entrySet {
		p.entryName = procSym.OriginalCase
		p.entrySet = true
	}
}
