// Package codegen translates the TAC instruction stream produced by
// internal/tac and internal/parser into MASM/TASM-compatible 8086
// assembly text runnable in real-mode DOS alongside the project's
// io.asm runtime, per spec §4.5.
package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/adacomp86/internal/symtab"
	"github.com/cwbudde/adacomp86/internal/tac"
)

// writer accumulates generated assembly text one line at a time. The
// line/comment split mirrors the small-buffer-plus-helpers shape used
// throughout the example corpus's own code generators.
type writer struct {
	out strings.Builder
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.out, format+"\n", args...)
}

func (w *writer) comment(format string, args ...any) {
	w.line("    ; "+format, args...)
}

func (w *writer) blank() {
	w.out.WriteString("\n")
}

// Translator lowers a fully-parsed program's TAC stream to assembly
// text. It is single-use: construct one per program and call
// Translate once.
type Translator struct {
	gen        *tac.Generator
	procedures []*symtab.Symbol
	globals    []*symtab.Symbol
	entry      string

	procByName map[string]*symtab.Symbol
	w          writer
	labelSeq   int
}

// New creates a Translator over a completed parse: gen holds the TAC
// instruction stream and string pool, procedures is every procedure
// symbol in parse order (spec requires "procedure blocks in parse
// order"), globals is every depth-1 Variable symbol, and entry is the
// outermost procedure's name recorded by PROGRAM_START.
func New(gen *tac.Generator, procedures, globals []*symtab.Symbol, entry string) *Translator {
	byName := make(map[string]*symtab.Symbol, len(procedures))
	for _, p := range procedures {
		byName[p.OriginalCase] = p
	}
	return &Translator{
		gen:        gen,
		procedures: procedures,
		globals:    globals,
		entry:      entry,
		procByName: byName,
	}
}

// Translate produces the complete .asm file text.
func (t *Translator) Translate() (string, error) {
	t.w.line(".MODEL SMALL")
	t.w.line(".STACK 100H")
	t.writeDataSegment()
	t.w.line(".CODE")
	t.w.line("    INCLUDE io.asm")
	t.w.blank()

	if err := t.writeProcedures(); err != nil {
		return "", err
	}

	t.writeMainEntry()
	t.w.line("END main")
	return t.w.out.String(), nil
}

func (t *Translator) writeDataSegment() {
	t.w.line(".DATA")
	for _, g := range t.globals {
		t.w.line("  %s DW ?", tac.GlobalName(g.OriginalCase))
	}
	for _, pair := range t.gen.StringPool() {
		t.w.line("  %s DB %q", pair.Label, pair.Value+"$")
	}
}

// procInfo is the per-procedure addressing context needed while
// translating its body: its symbol (for Params/LocalSize/ParamSize)
// and the BP-relative slot assigned to each distinct temporary
// referenced in its body.
type procInfo struct {
	sym       *symtab.Symbol
	tempSlots map[string]int // "_tK" -> negative BP offset
}

func (t *Translator) writeProcedures() error {
	blocks, err := splitProcedureBlocks(t.gen.Instructions)
	if err != nil {
		return err
	}
	for _, block := range blocks {
		sym, ok := t.procByName[block.name]
		if !ok {
			return fmt.Errorf("codegen: no procedure symbol recorded for %q", block.name)
		}
		if err := t.writeProcedure(sym, block.body); err != nil {
			return err
		}
	}
	return nil
}

// writeProcedure emits one PROC/ENDP block per spec §4.5's prologue/
// epilogue template.
func (t *Translator) writeProcedure(sym *symtab.Symbol, body []tac.Instruction) error {
	info := t.buildProcInfo(sym, body)

	t.w.line("%s PROC NEAR", tac.GlobalName(sym.OriginalCase))
	t.w.line("    PUSH BP")
	t.w.line("    MOV  BP, SP")
	if sym.LocalSize != 0 {
		t.w.line("    SUB  SP, %d", sym.LocalSize)
	}

	for _, instr := range body {
		if err := t.writeInstruction(info, instr); err != nil {
			return err
		}
	}

	if sym.LocalSize != 0 {
		t.w.line("    MOV  SP, BP")
	}
	t.w.line("    POP  BP")
	t.w.line("    RET  %d", sym.ParamSize)
	t.w.line("%s ENDP", tac.GlobalName(sym.OriginalCase))
	t.w.blank()
	return nil
}

// buildProcInfo scans body for every distinct "_tK" place and assigns
// each a dedicated 2-byte slot immediately below the procedure's
// declared locals, per spec §4.5's temporary-slot-assignment rule.
func (t *Translator) buildProcInfo(sym *symtab.Symbol, body []tac.Instruction) *procInfo {
	info := &procInfo{sym: sym, tempSlots: make(map[string]int)}

	var order []string
	seen := make(map[string]bool)
	note := func(place string) {
		if isTempPlace(place) && !seen[place] {
			seen[place] = true
			order = append(order, place)
		}
	}
	for _, instr := range body {
		note(instr.Dest)
		note(instr.Op1)
		note(instr.Op2)
	}
	sort.Strings(order) // lexical order: from _t10 on this differs from numeric order, which only changes slot placement

	declaredLocalsSize := sym.LocalSize - 2*len(order)
	for i, place := range order {
		info.tempSlots[place] = -(declaredLocalsSize + 2*(i+1))
	}
	return info
}

func isTempPlace(place string) bool {
	return strings.HasPrefix(place, "_t")
}

// paramModeAt reports the ParamMode of the formal parameter at the
// given positive BP offset, and whether one was found at all.
func paramModeAt(sym *symtab.Symbol, offset int) (symtab.ParamMode, bool) {
	for _, param := range sym.Params {
		if param.Offset == offset {
			return param.Mode, true
		}
	}
	return 0, false
}

// placeKind classifies a TAC place string for operand formatting.
type placeKind int

const (
	kindLiteral placeKind = iota
	kindGlobalName
	kindLocalOffset // _BP-N
	kindParamOffset // _BP+N
	kindStringLabel // _Sn
)

func classify(place string) (placeKind, int) {
	switch {
	case strings.HasPrefix(place, "_BP-"):
		n, _ := strconv.Atoi(place[len("_BP-"):])
		return kindLocalOffset, n
	case strings.HasPrefix(place, "_BP+"):
		n, _ := strconv.Atoi(place[len("_BP+"):])
		return kindParamOffset, n
	case strings.HasPrefix(place, "_S"):
		return kindStringLabel, 0
	case isLiteralPlace(place):
		return kindLiteral, 0
	default:
		return kindGlobalName, 0
	}
}

// isLiteralPlace reports whether place is an integer/real/char literal
// rather than an identifier: it starts with a digit, a sign followed
// by a digit, or a quote.
func isLiteralPlace(place string) bool {
	if place == "" {
		return false
	}
	c := place[0]
	if c >= '0' && c <= '9' {
		return true
	}
	if (c == '-' || c == '+') && len(place) > 1 && place[1] >= '0' && place[1] <= '9' {
		return true
	}
	return c == '\''
}

// operand formats place as a bare assembly operand, per spec §4.5's
// format_operand rule. Temporaries resolve through info.tempSlots.
func (t *Translator) operand(info *procInfo, place string) string {
	if isTempPlace(place) {
		return fmt.Sprintf("[BP%+d]", info.tempSlots[place])
	}
	kind, n := classify(place)
	switch kind {
	case kindLocalOffset:
		return fmt.Sprintf("[BP-%d]", n)
	case kindParamOffset:
		return fmt.Sprintf("[BP+%d]", n)
	default:
		return place
	}
}

// isByRefOperand reports whether place addresses an Out/InOut formal
// parameter, which therefore holds an address rather than a value.
func isByRefOperand(info *procInfo, place string) bool {
	kind, n := classify(place)
	if kind != kindParamOffset {
		return false
	}
	mode, ok := paramModeAt(info.sym, n)
	return ok && (mode == symtab.ModeOut || mode == symtab.ModeInOut)
}

// loadTo emits the sequence to load place's value into dstReg,
// dereferencing through scratchReg first if place is a by-reference
// parameter, per spec §4.5.
func (t *Translator) loadTo(info *procInfo, dstReg, scratchReg, place string) {
	operand := t.operand(info, place)
	if isByRefOperand(info, place) {
		t.w.line("    MOV  %s, %s", scratchReg, operand)
		t.w.line("    MOV  %s, [%s]", dstReg, scratchReg)
		return
	}
	t.w.line("    MOV  %s, %s", dstReg, operand)
}

// storeFrom emits the sequence to store srcReg's value into place,
// dereferencing through scratchReg first if place is a by-reference
// parameter.
func (t *Translator) storeFrom(info *procInfo, srcReg, scratchReg, place string) {
	operand := t.operand(info, place)
	if isByRefOperand(info, place) {
		t.w.line("    MOV  %s, %s", scratchReg, operand)
		t.w.line("    MOV  [%s], %s", scratchReg, srcReg)
		return
	}
	t.w.line("    MOV  %s, %s", operand, srcReg)
}

func (t *Translator) newLabel(tag string) string {
	t.labelSeq++
	return fmt.Sprintf("_L%s%d", tag, t.labelSeq)
}

// relJump maps a relational TAC opcode name to the 8086 conditional
// jump mnemonic that branches when the comparison holds.
var relJump = map[string]string{
	"EQ": "JE",
	"NE": "JNE",
	"LT": "JL",
	"LE": "JLE",
	"GT": "JG",
	"GE": "JGE",
}

func (t *Translator) writeInstruction(info *procInfo, instr tac.Instruction) error {
	switch instr.Op {
	case tac.OpAssign:
		t.loadTo(info, "AX", "BX", instr.Op1)
		t.storeFrom(info, "AX", "BX", instr.Dest)

	case tac.OpBinary:
		return t.writeBinary(info, instr)

	case tac.OpUnary:
		t.loadTo(info, "AX", "BX", instr.Op1)
		switch instr.Name {
		case "UMINUS":
			t.w.line("    NEG  AX")
		case "NOT":
			t.w.line("    NOT  AX")
		default:
			return fmt.Errorf("codegen: unknown unary opcode %q", instr.Name)
		}
		t.storeFrom(info, "AX", "BX", instr.Dest)

	case tac.OpPush:
		if isLiteralPlace(instr.Op1) {
			t.w.line("    PUSH %s", instr.Op1)
		} else {
			t.loadTo(info, "AX", "BX", instr.Op1)
			t.w.line("    PUSH AX")
		}

	case tac.OpPushAddr:
		return t.writePushAddr(info, instr.Op1)

	case tac.OpCall:
		t.w.line("    CALL %s", tac.GlobalName(instr.Op1))

	case tac.OpReadInt:
		t.w.line("    CALL readint")
		t.storeFrom(info, "BX", "CX", instr.Dest)

	case tac.OpWriteInt:
		t.loadTo(info, "AX", "BX", instr.Op1)
		t.w.line("    CALL writeint")

	case tac.OpWriteStr:
		t.w.line("    MOV  DX, OFFSET %s", instr.Op1)
		t.w.line("    CALL writestr")

	case tac.OpWriteNewline:
		t.w.line("    CALL writeln")

	default:
		return fmt.Errorf("codegen: unexpected opcode in procedure body: %v", instr.Op)
	}
	return nil
}

// writePushAddr emits PUSH @operand, per spec §4.5's three cases: a
// depth-1 global pushes its offset, a local/temporary computes its
// address with LEA, and an already-by-reference parameter is pushed
// as-is (it already holds an address).
func (t *Translator) writePushAddr(info *procInfo, place string) error {
	if isTempPlace(place) {
		t.w.line("    LEA  AX, %s", t.operand(info, place))
		t.w.line("    PUSH AX")
		return nil
	}
	kind, n := classify(place)
	switch kind {
	case kindGlobalName:
		t.w.line("    PUSH OFFSET %s", place)
	case kindLocalOffset:
		t.w.line("    LEA  AX, [BP-%d]", n)
		t.w.line("    PUSH AX")
	case kindParamOffset:
		if isByRefOperand(info, place) {
			t.w.line("    PUSH [BP+%d]", n)
		} else {
			t.w.line("    LEA  AX, [BP+%d]", n)
			t.w.line("    PUSH AX")
		}
	default:
		return fmt.Errorf("codegen: cannot take address of place %q", place)
	}
	return nil
}

func (t *Translator) writeBinary(info *procInfo, instr tac.Instruction) error {
	if jmp, ok := relJump[instr.Name]; ok {
		t.loadTo(info, "AX", "BX", instr.Op1)
		t.loadTo(info, "BX", "CX", instr.Op2)
		t.w.line("    CMP  AX, BX")
		trueLabel := t.newLabel("T")
		endLabel := t.newLabel("E")
		t.w.line("    %s  %s", jmp, trueLabel)
		t.w.line("    MOV  AX, 0")
		t.w.line("    JMP  %s", endLabel)
		t.w.line("%s:", trueLabel)
		t.w.line("    MOV  AX, 1")
		t.w.line("%s:", endLabel)
		t.storeFrom(info, "AX", "BX", instr.Dest)
		return nil
	}

	switch instr.Name {
	case "ADD", "SUB", "AND", "OR":
		mnemonic := map[string]string{"ADD": "ADD", "SUB": "SUB", "AND": "AND", "OR": "OR"}[instr.Name]
		t.loadTo(info, "AX", "CX", instr.Op1)
		t.loadTo(info, "BX", "CX", instr.Op2)
		t.w.line("    %s  AX, BX", mnemonic)
		t.storeFrom(info, "AX", "BX", instr.Dest)
	case "MUL":
		t.loadTo(info, "AX", "CX", instr.Op1)
		t.loadTo(info, "BX", "CX", instr.Op2)
		t.w.line("    IMUL BX")
		t.storeFrom(info, "AX", "BX", instr.Dest)
	case "DIV", "MOD", "REM":
		t.loadTo(info, "AX", "CX", instr.Op1)
		t.loadTo(info, "BX", "CX", instr.Op2)
		t.w.line("    CWD")
		t.w.line("    IDIV BX")
		if instr.Name == "DIV" {
			t.storeFrom(info, "AX", "BX", instr.Dest)
		} else {
			t.storeFrom(info, "DX", "BX", instr.Dest)
		}
	default:
		return fmt.Errorf("codegen: unknown binary opcode %q", instr.Name)
	}
	return nil
}

func (t *Translator) writeMainEntry() {
	t.w.line("main PROC")
	t.w.line("    MOV  AX, @DATA")
	t.w.line("    MOV  DS, AX")
	t.w.line("    CALL %s", tac.GlobalName(t.entry))
	t.w.line("    MOV  AH, 4CH")
	t.w.line("    INT  21H")
	t.w.line("main ENDP")
}

// procBlock is one procedure's TAC body, delimited by its
// PROC_BEGIN/PROC_END pair.
type procBlock struct {
	name       string
	body       []tac.Instruction
	beginIndex int // order its PROC_BEGIN was seen in, for parse-order sorting
}

// splitProcedureBlocks partitions a flat TAC instruction stream (which
// may contain nested PROC_BEGIN/PROC_END pairs in parse order, plus a
// single trailing PROGRAM_START) into one procBlock per procedure, and
// returns the blocks in parse order (an enclosing procedure before the
// procedures nested inside it), per spec §4.5 -- even though a nested
// block's PROC_END is seen first on the flat stream.
func splitProcedureBlocks(instructions []tac.Instruction) ([]procBlock, error) {
	var blocks []procBlock
	var stack []*procBlock
	beginCount := 0

	for _, instr := range instructions {
		switch instr.Op {
		case tac.OpProcBegin:
			stack = append(stack, &procBlock{name: instr.Op1, beginIndex: beginCount})
			beginCount++
		case tac.OpProcEnd:
			if len(stack) == 0 {
				return nil, fmt.Errorf("codegen: PROC_END %q with no matching PROC_BEGIN", instr.Op1)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			blocks = append(blocks, *top)
		case tac.OpProgramStart:
			// handled separately by the caller
		default:
			if len(stack) == 0 {
				return nil, fmt.Errorf("codegen: instruction outside any procedure: %+v", instr)
			}
			stack[len(stack)-1].body = append(stack[len(stack)-1].body, instr)
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("codegen: unterminated procedure block %q", stack[len(stack)-1].name)
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].beginIndex < blocks[j].beginIndex })
	return blocks, nil
}
