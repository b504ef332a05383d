// Package symtab implements the scoped symbol table described in
// spec §4.3: a stack of scopes, augmented with innermost-to-outermost
// lookup, case-folded canonical names, and the offset/size bookkeeping
// rules of spec §3/§4.2.
package symtab

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/cwbudde/adacomp86/internal/token"
)

// Kind is the closed variant of symbol-table entries.
type Kind int

const (
	KindVariable Kind = iota
	KindConstant
	KindParameter
	KindProcedure
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindParameter:
		return "parameter"
	case KindProcedure:
		return "procedure"
	default:
		return "unknown"
	}
}

// VarType is the closed variant of scalar types a Variable/Parameter/
// Constant may have.
type VarType int

const (
	TypeInteger VarType = iota
	TypeReal
	TypeCharacter
	TypeBoolean
)

func (t VarType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "FLOAT"
	case TypeCharacter:
		return "CHAR"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return "unknown"
	}
}

// Size returns the size in bytes of a scalar of this type, per spec §3.
func (t VarType) Size() int {
	switch t {
	case TypeInteger:
		return 2
	case TypeReal:
		return 4
	case TypeCharacter:
		return 1
	case TypeBoolean:
		return 1
	default:
		return 0
	}
}

// ParamMode is the closed variant of parameter passing modes.
type ParamMode int

const (
	ModeIn ParamMode = iota
	ModeOut
	ModeInOut
)

func (m ParamMode) String() string {
	switch m {
	case ModeIn:
		return "in"
	case ModeOut:
		return "out"
	case ModeInOut:
		return "inout"
	default:
		return "unknown"
	}
}

// Symbol is a single entry in the symbol table. Fields not relevant to
// Kind are left at their zero value; see spec §3 for the payload
// discipline per kind.
type Symbol struct {
	Name          string // canonical (case-folded) name, used as the map key
	OriginalCase  string // the lexeme as written at the defining occurrence
	DefiningToken token.Token
	Depth         int
	Kind          Kind

	// Variable / Parameter / Constant.
	VarType VarType
	Size    int
	Offset  int // signed BP-relative displacement; depth-1 Variable/Constant symbols ignore this

	// Parameter only.
	Mode ParamMode

	// Constant only. ConstLiteral is the original literal text (e.g.
	// "5", "3.14", "'x'") substituted directly as a TAC place wherever
	// the constant is used, per spec §4.4.
	ConstLiteral string

	// Procedure only.
	Params    []*Symbol // ordered, references to Parameter symbols
	LocalSize int       // total bytes of depth>=2 locals + temporaries (depth-1 locals live in .DATA)
	ParamSize int       // total bytes of parameters
}

// Scope is one level of the scope stack.
type Scope struct {
	Depth   int
	symbols map[string]*Symbol
	order   []*Symbol // insertion order, for exit-scope logging
}

// ErrDuplicateDeclaration is returned by Insert when a symbol with the
// same canonical name already exists in the top scope.
type ErrDuplicateDeclaration struct {
	Name  string
	First token.Position
}

func (e *ErrDuplicateDeclaration) Error() string {
	return fmt.Sprintf("duplicate declaration of %q (first declared at %s)", e.Name, e.First)
}

// ErrSymbolNotFound is returned by Lookup when no scope defines name.
type ErrSymbolNotFound struct {
	Name string
}

func (e *ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("undeclared identifier %q", e.Name)
}

var foldCase = cases.Fold()

// Canonical returns the case-folded form of a lexeme, used as the
// symbol table's map key. Identifiers are ASCII per spec §3, so this
// coincides with strings.ToLower, but cases.Fold is used for the same
// Unicode-robust folding the rest of the corpus favors.
func Canonical(lexeme string) string {
	return foldCase.String(lexeme)
}

// Table is the stack of scopes. ExitScope pops the active scope, after
// which Lookup no longer finds its symbols; the Symbol values themselves
// are not modified, so any pointer to them obtained earlier keeps full
// addressing information.
type Table struct {
	scopes []*Scope

	// OnExitScope, if set, is invoked with the symbols of a scope as it
	// is exited, in declaration order -- the "external logger
	// collaborator" of spec §4.3.
	OnExitScope func(scope *Scope)

	// Trace, if set, is invoked with every symbol as it is successfully
	// inserted. Used by the "-d/--debug" CLI flag.
	Trace func(symbol *Symbol)
}

// New creates a Table with a single depth-0 scope already pushed (the
// outermost program scope, per spec's depth convention).
func New() *Table {
	t := &Table{}
	t.scopes = append(t.scopes, &Scope{Depth: 0, symbols: make(map[string]*Symbol)})
	return t
}

// EnterScope pushes a new, empty scope one depth below the current top.
func (t *Table) EnterScope() *Scope {
	parent := t.scopes[len(t.scopes)-1]
	s := &Scope{Depth: parent.Depth + 1, symbols: make(map[string]*Symbol)}
	t.scopes = append(t.scopes, s)
	return s
}

// ExitScope pops the top scope, reporting its contents via OnExitScope
// if set. The popped scope's symbols are no longer found by Lookup, but
// they remain reachable through any Symbol pointer already obtained.
func (t *Table) ExitScope() *Scope {
	if len(t.scopes) <= 1 {
		panic("symtab: ExitScope called with no scope above the outermost program scope")
	}
	top := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]
	if t.OnExitScope != nil {
		t.OnExitScope(top)
	}
	return top
}

// CurrentDepth returns the depth of the active (top) scope.
func (t *Table) CurrentDepth() int {
	return t.scopes[len(t.scopes)-1].Depth
}

// Insert adds symbol to the active scope, keyed by its canonical name.
// It fails with *ErrDuplicateDeclaration if the active scope already
// has an entry with that name.
func (t *Table) Insert(symbol *Symbol) error {
	top := t.scopes[len(t.scopes)-1]
	if existing, ok := top.symbols[symbol.Name]; ok {
		return &ErrDuplicateDeclaration{Name: symbol.OriginalCase, First: existing.DefiningToken.Pos}
	}
	top.symbols[symbol.Name] = symbol
	top.order = append(top.order, symbol)
	if t.Trace != nil {
		t.Trace(symbol)
	}
	return nil
}

// Lookup searches scopes from innermost to outermost (unless
// onlyCurrent is set, in which case only the active scope is searched)
// for a symbol with the given canonical name.
func (t *Table) Lookup(canonicalName string, onlyCurrent bool) (*Symbol, error) {
	if onlyCurrent {
		top := t.scopes[len(t.scopes)-1]
		if sym, ok := top.symbols[canonicalName]; ok {
			return sym, nil
		}
		return nil, &ErrSymbolNotFound{Name: canonicalName}
	}
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[canonicalName]; ok {
			return sym, nil
		}
	}
	return nil, &ErrSymbolNotFound{Name: canonicalName}
}

// Symbols returns the scope's members in declaration order, for the
// exit-scope logging collaborator.
func (s *Scope) Symbols() []*Symbol {
	return s.order
}

