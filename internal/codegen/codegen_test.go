package codegen

import (
	"strings"
	"testing"

	"github.com/cwbudde/adacomp86/internal/ccerrors"
	"github.com/cwbudde/adacomp86/internal/lexer"
	"github.com/cwbudde/adacomp86/internal/parser"
	"github.com/gkampitakis/go-snaps/snaps"
)

func translate(t *testing.T, src string) string {
	t.Helper()
	lex := lexer.New(src, "test.ada")
	reporter := ccerrors.NewReporter(src, "test.ada")
	p := parser.New(lex, reporter)
	if ok := p.ParseProgram(); !ok {
		t.Fatalf("expected clean parse, got diagnostics: %v", reporter.Diags)
	}
	entry, _ := p.EntryPoint()
	tr := New(p.Gen, p.Procedures, p.Globals, entry)
	asm, err := tr.Translate()
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	return asm
}

func TestTranslateS1GlobalsAndAdd(t *testing.T) {
	src := `procedure one is
  A, B, CC : INTEGER;
begin
  A := 10;
  B := 40;
  CC := A + B;
end one;
`
	asm := translate(t, src)

	for _, want := range []string{
		".MODEL SMALL",
		".STACK 100H",
		"A DW ?",
		"B DW ?",
		"CC DW ?",
		"one PROC NEAR",
		"SUB  SP, 2", // A, B, CC are depth-1 globals; only the one temporary (_t1) counts
		"RET  0",
		"one ENDP",
		"main PROC",
		"CALL one",
		"main ENDP",
		"END main",
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, asm)
		}
	}
}

func TestTranslateS3MixedModeDereference(t *testing.T) {
	src := `procedure outer is
  X : INTEGER;
  procedure inner(in a : INTEGER; out b : INTEGER) is
  begin
    b := a + 1;
  end inner;
begin
  X := 0;
  inner(5, X);
end outer;
`
	asm := translate(t, src)

	if !strings.Contains(asm, "PUSH 5") {
		t.Errorf("expected PUSH 5 for value parameter, got:\n%s", asm)
	}
	if !strings.Contains(asm, "PUSH OFFSET X") {
		t.Errorf("expected PUSH OFFSET X for by-reference parameter, got:\n%s", asm)
	}
	if !strings.Contains(asm, "CALL inner") {
		t.Errorf("expected CALL inner, got:\n%s", asm)
	}
	// b is the by-reference out-parameter at BP+4; storing into it must
	// dereference through a scratch register rather than writing
	// directly to [BP+4].
	if !strings.Contains(asm, "MOV  BX, [BP+4]") {
		t.Errorf("expected dereference of by-ref parameter b via BX, got:\n%s", asm)
	}
}

func TestTranslateTopLevelProcedureParameterUsesOffsetNotGlobal(t *testing.T) {
	// "add" is a top-level (depth-1) procedure, but its parameters are
	// never addressed by name the way its depth-1 locals/Variables are --
	// they live in add's own stack frame, same as a nested procedure's.
	src := `procedure add(in a : INTEGER; in b : INTEGER) is
  Sum : INTEGER;
begin
  Sum := a + b;
end add;
`
	asm := translate(t, src)

	if strings.Contains(asm, "a DW") || strings.Contains(asm, "b DW") {
		t.Errorf("parameters a, b must not be emitted as .DATA globals, got:\n%s", asm)
	}
	for _, want := range []string{
		"MOV  AX, [BP+6]", // a: first-declared parameter, highest offset
		"MOV  BX, [BP+4]", // b
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected %q, got:\n%s", want, asm)
		}
	}
}

func TestTranslateS6StringIOAndNewline(t *testing.T) {
	src := `procedure greet is begin putln("Hi", 42); end greet;`
	asm := translate(t, src)

	for _, want := range []string{
		`_S0 DB "Hi$"`,
		"MOV  DX, OFFSET _S0",
		"CALL writestr",
		"MOV  AX, 42",
		"CALL writeint",
		"CALL writeln",
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, asm)
		}
	}
}

func TestTranslateIdempotence(t *testing.T) {
	src := `procedure one is
  A, B : INTEGER;
begin
  A := 10;
  B := A + 1;
end one;
`
	first := translate(t, src)
	second := translate(t, src)
	if first != second {
		t.Errorf("Translate() is not idempotent across runs on the same source")
	}
}

func TestTranslateCReservedNameRenamed(t *testing.T) {
	src := `procedure p is
  c : INTEGER;
begin
  c := 1;
end p;
`
	asm := translate(t, src)
	if !strings.Contains(asm, "cc DW ?") {
		t.Errorf("expected global 'c' renamed to 'cc' in .DATA, got:\n%s", asm)
	}
}

// TestTranslateS2NestedProcedureSnapshot pins the full assembly text for a
// depth-2 nested procedure against a go-snaps snapshot (recorded on the
// first run, compared on every later run), so an unintended
// change to operand formatting, prologue/epilogue emission, or block
// ordering shows up as a diff instead of silently passing.
func TestTranslateS2NestedProcedureSnapshot(t *testing.T) {
	src := `procedure four is
  procedure one is
    X : INTEGER;
  begin
    X := 1;
  end one;
begin
  one;
end four;
`
	asm := translate(t, src)
	snaps.MatchSnapshot(t, asm)
}
