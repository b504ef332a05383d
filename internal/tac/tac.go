// Package tac implements the three-address-code generator described in
// spec §4.4: an ordered, append-only instruction list, a temporary-name
// counter that resets at every PROC_BEGIN, and a string-literal pool
// with first-seen interning.
package tac

import (
	"fmt"
	"strings"

	"github.com/cwbudde/adacomp86/internal/symtab"
)

// Opcode is the closed variant of TAC instruction kinds. Operand-slot
// discipline is fixed per opcode: see the canonical text form in
// spec §6.3.
type Opcode int

const (
	OpProcBegin Opcode = iota
	OpProcEnd
	OpAssign
	OpBinary
	OpUnary
	OpPush     // value push
	OpPushAddr // @-prefixed address push, by-reference
	OpCall
	OpReadInt
	OpWriteInt
	OpWriteStr
	OpWriteNewline
	OpProgramStart
)

// Instruction is a single tagged TAC record. Only the fields relevant
// to Opcode are populated; see spec §3's TAC instruction discipline.
type Instruction struct {
	Op   Opcode
	Dest string // ASSIGN/BINOP/UNOP destination place
	Op1  string // first operand / src place / push operand / call name / proc name
	Op2  string // second operand (BINOP only)
	Name string // opcode-name for BINOP/UNOP ("ADD", "UMINUS", ...)
	N    int    // actual-parameter count for CALL
}

// binopNames maps a binary source-language operator spelling (already
// lower-cased) to its TAC opcode-name, per spec §4.4.
var binopNames = map[string]string{
	"+":   "ADD",
	"-":   "SUB",
	"*":   "MUL",
	"/":   "DIV",
	"mod": "MOD",
	"rem": "REM",
	"and": "AND",
	"or":  "OR",
	"=":   "EQ",
	"/=":  "NE",
	"<":   "LT",
	"<=":  "LE",
	">":   "GT",
	">=":  "GE",
}

// BinaryOpcodeName returns the TAC opcode-name for a binary source
// operator spelling (e.g. "+", "mod", "<=").
func BinaryOpcodeName(op string) (string, bool) {
	name, ok := binopNames[op]
	return name, ok
}

// Generator accumulates TAC instructions for an entire program. It owns
// the temporary-name counter (reset per procedure) and the string
// literal pool; the pool is consulted read-only by the ASM translator.
type Generator struct {
	Instructions []Instruction

	// stringPool maps interned literal value -> assigned label, in
	// first-seen order; stringOrder preserves that order for output.
	stringPool  map[string]string
	stringOrder []string

	// tempCounter counts temporaries for the procedure currently being
	// generated; tempCounterStack saves an enclosing procedure's count
	// while a nested ProcedureDecl is generated, so nesting can't bleed
	// one procedure's temporary count into another's (spec §4.2's
	// "reset at every PROC_BEGIN" is per-procedure, not global).
	tempCounter      int
	tempCounterStack []int
	entryName        string

	// Trace, if set, is called with the canonical text form of every
	// instruction as it is emitted. Used by the "-d/--debug" CLI flag
	// to echo TAC generation to stderr as parsing proceeds.
	Trace func(line string)
}

// New creates an empty Generator.
func New() *Generator {
	return &Generator{stringPool: make(map[string]string)}
}

func (g *Generator) emit(instr Instruction) {
	g.Instructions = append(g.Instructions, instr)
	if g.Trace != nil {
		var sb strings.Builder
		writeInstructionText(&sb, instr)
		g.Trace(strings.TrimSuffix(sb.String(), "\n"))
	}
}

// NewTemp returns the next temporary place ("_t1", "_t2", ...) within
// the current procedure. The counter is reset by ProcBegin.
func (g *Generator) NewTemp() string {
	g.tempCounter++
	return fmt.Sprintf("_t%d", g.tempCounter)
}

// TempCount returns the number of distinct temporaries allocated so far
// for the procedure currently being generated.
func (g *Generator) TempCount() int {
	return g.tempCounter
}

// ProcBegin emits "proc <name>" and starts a fresh temporary counter
// for this procedure, saving the enclosing procedure's counter (if
// any) to be restored by the matching ProcEnd.
func (g *Generator) ProcBegin(name string) {
	g.tempCounterStack = append(g.tempCounterStack, g.tempCounter)
	g.tempCounter = 0
	g.emit(Instruction{Op: OpProcBegin, Op1: name})
}

// ProcEnd emits "endp <name>" and returns the number of temporaries
// allocated by the procedure that just ended, then restores the
// enclosing procedure's counter (zero at the outermost level).
func (g *Generator) ProcEnd(name string) int {
	count := g.tempCounter
	n := len(g.tempCounterStack)
	g.tempCounter = g.tempCounterStack[n-1]
	g.tempCounterStack = g.tempCounterStack[:n-1]
	g.emit(Instruction{Op: OpProcEnd, Op1: name})
	return count
}

// Assign emits "dest = src".
func (g *Generator) Assign(dest, src string) {
	g.emit(Instruction{Op: OpAssign, Dest: dest, Op1: src})
}

// Binary emits "dest = op1 opName op2" and returns dest, a fresh
// temporary. opName is one of the TAC binary opcode names (ADD, SUB,
// MUL, DIV, MOD, REM, AND, OR, EQ, NE, LT, LE, GT, GE).
func (g *Generator) Binary(opName, op1, op2 string) string {
	dest := g.NewTemp()
	g.emit(Instruction{Op: OpBinary, Dest: dest, Op1: op1, Op2: op2, Name: opName})
	return dest
}

// Unary emits "dest = opName op1" and returns dest, a fresh temporary.
// opName is UMINUS or NOT.
func (g *Generator) Unary(opName, op1 string) string {
	dest := g.NewTemp()
	g.emit(Instruction{Op: OpUnary, Dest: dest, Op1: op1, Name: opName})
	return dest
}

// Push emits "push <operand>" (pass-by-value).
func (g *Generator) Push(operand string) {
	g.emit(Instruction{Op: OpPush, Op1: operand})
}

// PushAddr emits "push @<operand>" (pass-by-reference).
func (g *Generator) PushAddr(operand string) {
	g.emit(Instruction{Op: OpPushAddr, Op1: operand})
}

// Call emits "call <name>" for a procedure invocation of n actuals.
func (g *Generator) Call(name string, n int) {
	g.emit(Instruction{Op: OpCall, Op1: name, N: n})
}

// ReadInt emits "rdi <dest>".
func (g *Generator) ReadInt(dest string) {
	g.emit(Instruction{Op: OpReadInt, Dest: dest})
}

// WriteInt emits "wri <src>".
func (g *Generator) WriteInt(src string) {
	g.emit(Instruction{Op: OpWriteInt, Op1: src})
}

// WriteStr emits "wrs <label>" for an already-interned string label.
func (g *Generator) WriteStr(label string) {
	g.emit(Instruction{Op: OpWriteStr, Op1: label})
}

// WriteNewline emits "wrln".
func (g *Generator) WriteNewline() {
	g.emit(Instruction{Op: OpWriteNewline})
}

// ProgramStart records the outer procedure's name as the entry point.
// It must be emitted exactly once, as the last instruction, after the
// full program has been parsed.
func (g *Generator) ProgramStart(entry string) {
	g.entryName = entry
	g.emit(Instruction{Op: OpProgramStart, Op1: entry})
}

// InternString interns a raw string literal value (without the
// terminating '$' the ASM translator appends on emission), returning
// its label. Repeated identical values reuse the first-seen label.
func (g *Generator) InternString(value string) string {
	if label, ok := g.stringPool[value]; ok {
		return label
	}
	label := fmt.Sprintf("_S%d", len(g.stringOrder))
	g.stringPool[value] = label
	g.stringOrder = append(g.stringOrder, value)
	return label
}

// StringPool returns the interned (label, value) pairs in first-seen
// order.
func (g *Generator) StringPool() []struct{ Label, Value string } {
	pairs := make([]struct{ Label, Value string }, len(g.stringOrder))
	for i, value := range g.stringOrder {
		pairs[i] = struct{ Label, Value string }{Label: g.stringPool[value], Value: value}
	}
	return pairs
}

// reservedGlobalNames collide with MASM/TASM built-ins or directives;
// PlaceOf renames them by doubling the final letter, per spec §4.4 and
// §9 ("the MASM 'c' -> 'cc' rename").
var reservedGlobalNames = map[string]bool{
	"c": true,
}

// PlaceOf derives the textual TAC place for a symbol reference, per
// spec §4.4:
//   - depth-1 Variable/Constant symbols are referenced by their
//     (possibly renamed) name -- a top-level procedure's own locals,
//     not its parameters, which always live in its stack frame
//   - every other symbol (including a depth-1 procedure's own
//     parameters) is referenced by "_BP-N" (locals/temporaries) or
//     "_BP+N" (parameters), N the absolute value of the signed offset
func PlaceOf(sym *symtab.Symbol) string {
	if sym.Depth <= 1 && sym.Kind != symtab.KindParameter {
		return GlobalName(sym.OriginalCase)
	}
	if sym.Offset < 0 {
		return fmt.Sprintf("_BP-%d", -sym.Offset)
	}
	return fmt.Sprintf("_BP+%d", sym.Offset)
}

// GlobalName applies the MASM reserved-name collision rule to a
// depth-1 symbol's original-case name.
func GlobalName(name string) string {
	if reservedGlobalNames[strings.ToLower(name)] {
		return name + name[len(name)-1:]
	}
	return name
}

// Text renders the instruction list (plus the single trailing
// PROGRAM_START record) to the canonical TAC text format of spec §6.3,
// one instruction per line.
func (g *Generator) Text() string {
	var sb strings.Builder
	for _, instr := range g.Instructions {
		writeInstructionText(&sb, instr)
	}
	return sb.String()
}

func writeInstructionText(sb *strings.Builder, instr Instruction) {
	switch instr.Op {
	case OpProcBegin:
		fmt.Fprintf(sb, "proc %s\n", instr.Op1)
	case OpProcEnd:
		fmt.Fprintf(sb, "endp %s\n", instr.Op1)
	case OpAssign:
		fmt.Fprintf(sb, "%s = %s\n", instr.Dest, instr.Op1)
	case OpBinary:
		fmt.Fprintf(sb, "%s = %s %s %s\n", instr.Dest, instr.Op1, instr.Name, instr.Op2)
	case OpUnary:
		fmt.Fprintf(sb, "%s = %s %s\n", instr.Dest, instr.Name, instr.Op1)
	case OpPush:
		fmt.Fprintf(sb, "push %s\n", instr.Op1)
	case OpPushAddr:
		fmt.Fprintf(sb, "push @%s\n", instr.Op1)
	case OpCall:
		fmt.Fprintf(sb, "call %s\n", instr.Op1)
	case OpReadInt:
		fmt.Fprintf(sb, "rdi %s\n", instr.Dest)
	case OpWriteInt:
		fmt.Fprintf(sb, "wri %s\n", instr.Op1)
	case OpWriteStr:
		fmt.Fprintf(sb, "wrs %s\n", instr.Op1)
	case OpWriteNewline:
		sb.WriteString("wrln\n")
	case OpProgramStart:
		fmt.Fprintf(sb, "start proc %s\n", instr.Op1)
	}
}
