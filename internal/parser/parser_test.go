package parser

import (
	"strings"
	"testing"

	"github.com/cwbudde/adacomp86/internal/ccerrors"
	"github.com/cwbudde/adacomp86/internal/lexer"
)

func parseSource(t *testing.T, src string) (*Parser, bool) {
	t.Helper()
	lex := lexer.New(src, "test.ada")
	reporter := ccerrors.NewReporter(src, "test.ada")
	p := New(lex, reporter)
	ok := p.ParseProgram()
	return p, ok
}

func TestParseS1GlobalsAndAdd(t *testing.T) {
	src := `procedure one is
  A, B, CC : INTEGER;
begin
  A := 10;
  B := 40;
  CC := A + B;
end one;
`
	p, ok := parseSource(t, src)
	if !ok {
		t.Fatalf("expected clean parse, got diagnostics: %v", p.reporter.Diags)
	}

	got := p.Gen.Text()
	want := "proc one\n" +
		"A = 10\n" +
		"B = 40\n" +
		"_t1 = A ADD B\n" +
		"CC = _t1\n" +
		"endp one\n" +
		"start proc one\n"
	if got != want {
		t.Errorf("TAC text mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	entry, ok := p.EntryPoint()
	if !ok || entry != "one" {
		t.Errorf("EntryPoint() = (%q, %v), want (\"one\", true)", entry, ok)
	}
}

func TestParseS2NestedCallZeroArgs(t *testing.T) {
	src := `procedure four is
  A, B : INTEGER;
  procedure one is
    C, D : INTEGER;
  begin
    C := 5; D := 10; D := A + B;
  end one;
begin
  A := 1; B := 2; one();
end four;
`
	p, ok := parseSource(t, src)
	if !ok {
		t.Fatalf("expected clean parse, got diagnostics: %v", p.reporter.Diags)
	}

	got := p.Gen.Text()
	if !strings.Contains(got, "call one\n") {
		t.Errorf("expected a zero-arg call to one, got:\n%s", got)
	}
	if strings.Contains(got, "push") {
		t.Errorf("expected no push before the zero-arg call, got:\n%s", got)
	}
}

func TestParseS3MixedModeParameters(t *testing.T) {
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
	p, ok := parseSource(t, src)
	if !ok {
		t.Fatalf("expected clean parse, got diagnostics: %v", p.reporter.Diags)
	}

	got := p.Gen.Text()
	if !strings.Contains(got, "push 5\n") {
		t.Errorf("expected push 5 (by value) for 'a', got:\n%s", got)
	}
	if !strings.Contains(got, "push @X\n") {
		t.Errorf("expected push @X (by reference) for 'b', got:\n%s", got)
	}
	if !strings.Contains(got, "call inner\n") {
		t.Errorf("expected call inner, got:\n%s", got)
	}
}

func TestParseS5EndNameMismatch(t *testing.T) {
	src := `procedure alpha is begin end beta;`
	p, ok := parseSource(t, src)
	if ok {
		t.Fatalf("expected parse failure on end-name mismatch")
	}
	if !p.reporter.HasKind(ccerrors.Semantic) {
		t.Errorf("expected a semantic diagnostic, got: %v", p.reporter.Diags)
	}
	if p.reporter.HasKind(ccerrors.Syntactic) {
		t.Errorf("expected no syntactic diagnostic, got: %v", p.reporter.Diags)
	}
}

func TestParseS6StringIOAndNewline(t *testing.T) {
	src := `procedure greet is begin putln("Hi", 42); end greet;`
	p, ok := parseSource(t, src)
	if !ok {
		t.Fatalf("expected clean parse, got diagnostics: %v", p.reporter.Diags)
	}

	got := p.Gen.Text()
	want := "proc greet\n" +
		"wrs _S0\n" +
		"wri 42\n" +
		"wrln\n" +
		"endp greet\n" +
		"start proc greet\n"
	if got != want {
		t.Errorf("TAC text mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	pool := p.Gen.StringPool()
	if len(pool) != 1 || pool[0].Label != "_S0" || pool[0].Value != "Hi" {
		t.Errorf("StringPool() = %v, want one entry {_S0, Hi}", pool)
	}
}

func TestParseUndeclaredIdentifierIsSemanticError(t *testing.T) {
	src := `procedure p is begin x := 1; end p;`
	_, ok := parseSource(t, src)
	if ok {
		t.Fatalf("expected parse failure on undeclared identifier")
	}
}

func TestParseDuplicateDeclaration(t *testing.T) {
	src := `procedure p is
  A : INTEGER;
  A : INTEGER;
begin
end p;`
	p, ok := parseSource(t, src)
	if ok {
		t.Fatalf("expected parse failure on duplicate declaration")
	}
	if !p.reporter.HasKind(ccerrors.Semantic) {
		t.Errorf("expected a semantic diagnostic for the duplicate, got: %v", p.reporter.Diags)
	}
}

func TestParseArityMismatch(t *testing.T) {
	src := `procedure outer is
  procedure inner(in a : INTEGER) is
  begin
  end inner;
begin
  inner(1, 2);
end outer;`
	_, ok := parseSource(t, src)
	if ok {
		t.Fatalf("expected parse failure on actual/formal arity mismatch")
	}
}

func TestParseOutParameterWithLiteralActualIsSemanticError(t *testing.T) {
	src := `procedure outer is
  procedure inner(out a : INTEGER) is
  begin
    a := 1;
  end inner;
begin
  inner(5);
end outer;`
	_, ok := parseSource(t, src)
	if ok {
		t.Fatalf("expected parse failure passing a literal to an out parameter")
	}
}

func TestParseConstantSubstitution(t *testing.T) {
	src := `procedure p is
  LIMIT : constant := 100;
  A : INTEGER;
begin
  A := LIMIT;
end p;`
	p, ok := parseSource(t, src)
	if !ok {
		t.Fatalf("expected clean parse, got diagnostics: %v", p.reporter.Diags)
	}
	got := p.Gen.Text()
	if !strings.Contains(got, "A = 100\n") {
		t.Errorf("expected constant LIMIT substituted as its literal 100, got:\n%s", got)
	}
}

func TestParseAssignToConstantIsSemanticError(t *testing.T) {
	src := `procedure p is
  LIMIT : constant := 100;
begin
  LIMIT := 1;
end p;`
	_, ok := parseSource(t, src)
	if ok {
		t.Fatalf("expected parse failure on assignment to a constant")
	}
}

func TestParseSyntaxErrorRecoversAndReportsBoth(t *testing.T) {
	// A missing expression on the first statement should not prevent the
	// second statement's own (semantic) error from being reported too:
	// panic-mode recovery must resynchronize past the broken statement.
	src := `procedure p is
  A : INTEGER;
begin
  A := ;
  y := 1;
end p;`
	p, ok := parseSource(t, src)
	if ok {
		t.Fatalf("expected parse failure")
	}
	if !p.reporter.HasKind(ccerrors.Syntactic) {
		t.Errorf("expected a syntactic diagnostic, got: %v", p.reporter.Diags)
	}
	if !p.reporter.HasKind(ccerrors.Semantic) {
		t.Errorf("expected a semantic diagnostic for undeclared 'y' too, got: %v", p.reporter.Diags)
	}
}

func TestParseLexicalErrorPropagatesToReporter(t *testing.T) {
	src := `procedure p is
  thisidentifierislongerthanseventeenchars : INTEGER;
begin
end p;`
	p, ok := parseSource(t, src)
	if ok {
		t.Fatalf("expected parse failure on over-long identifier")
	}
	if !p.reporter.HasKind(ccerrors.Lexical) {
		t.Errorf("expected a lexical diagnostic, got: %v", p.reporter.Diags)
	}
}
