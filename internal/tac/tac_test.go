package tac

import (
	"strings"
	"testing"

	"github.com/cwbudde/adacomp86/internal/symtab"
)

func TestScenarioS1GlobalsAndAdd(t *testing.T) {
	g := New()
	g.ProcBegin("one")
	g.Assign("A", "10")
	g.Assign("B", "40")
	tmp := g.Binary("ADD", "A", "B")
	g.Assign("CC", tmp)
	g.ProcEnd("one")
	g.ProgramStart("one")

	want := strings.Join([]string{
		"proc one",
		"A = 10",
		"B = 40",
		"_t1 = A ADD B",
		"CC = _t1",
		"endp one",
		"start proc one",
		"",
	}, "\n")

	if got := g.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestTempCounterResetsPerProcedure(t *testing.T) {
	g := New()
	g.ProcBegin("one")
	t1 := g.NewTemp()
	g.ProcEnd("one")
	g.ProcBegin("two")
	t2 := g.NewTemp()
	g.ProcEnd("two")

	if t1 != "_t1" || t2 != "_t1" {
		t.Errorf("expected both procedures to start at _t1, got %s and %s", t1, t2)
	}
}

// TestNestedProcedureTempCountDoesNotLeakToEnclosing guards against a
// nested procedure's temporaries bleeding into its enclosing
// procedure's count: "four" declares no temporaries of its own, even
// though its nested "one" allocates one, so ProcEnd("four") must
// report 0, not 1.
func TestNestedProcedureTempCountDoesNotLeakToEnclosing(t *testing.T) {
	g := New()
	g.ProcBegin("four")
	g.ProcBegin("one")
	g.NewTemp()
	innerCount := g.ProcEnd("one")
	outerCount := g.ProcEnd("four")

	if innerCount != 1 {
		t.Errorf("expected one's temp count = 1, got %d", innerCount)
	}
	if outerCount != 0 {
		t.Errorf("expected four's temp count = 0 (not leaked from nested one), got %d", outerCount)
	}
}

func TestStringInterningDedup(t *testing.T) {
	g := New()
	l1 := g.InternString("Hi")
	l2 := g.InternString("there")
	l3 := g.InternString("Hi")

	if l1 != "_S0" || l2 != "_S1" {
		t.Fatalf("expected first-seen labels _S0/_S1, got %s/%s", l1, l2)
	}
	if l3 != l1 {
		t.Errorf("expected repeated literal to reuse label, got %s vs %s", l3, l1)
	}
	if len(g.StringPool()) != 2 {
		t.Errorf("expected 2 distinct pool entries, got %d", len(g.StringPool()))
	}
}

func TestScenarioS6StringIOAndNewline(t *testing.T) {
	g := New()
	g.ProcBegin("greet")
	label := g.InternString("Hi")
	g.WriteStr(label)
	g.WriteInt("42")
	g.WriteNewline()
	g.ProcEnd("greet")
	g.ProgramStart("greet")

	want := strings.Join([]string{
		"proc greet",
		"wrs _S0",
		"wri 42",
		"wrln",
		"endp greet",
		"start proc greet",
		"",
	}, "\n")

	if got := g.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestPlaceOfDepthOneIsName(t *testing.T) {
	sym := &symtab.Symbol{OriginalCase: "A", Depth: 1}
	if got := PlaceOf(sym); got != "A" {
		t.Errorf("PlaceOf = %q, want %q", got, "A")
	}
}

func TestPlaceOfReservedGlobalRename(t *testing.T) {
	sym := &symtab.Symbol{OriginalCase: "c", Depth: 1}
	if got := PlaceOf(sym); got != "cc" {
		t.Errorf("PlaceOf = %q, want %q", got, "cc")
	}
}

func TestPlaceOfLocalAndParameter(t *testing.T) {
	local := &symtab.Symbol{Depth: 2, Offset: -4}
	if got := PlaceOf(local); got != "_BP-4" {
		t.Errorf("PlaceOf(local) = %q, want _BP-4", got)
	}
	param := &symtab.Symbol{Depth: 2, Offset: 6}
	if got := PlaceOf(param); got != "_BP+6" {
		t.Errorf("PlaceOf(param) = %q, want _BP+6", got)
	}
}

func TestPlaceOfTopLevelProcedureParameterIsOffsetNotName(t *testing.T) {
	// A top-level procedure's own parameters live at depth 1 too (spec
	// §4.4: "all its parameters and locals are at depth d+1"), but unlike
	// its locals they are never addressed by name -- only Variable and
	// Constant symbols are.
	param := &symtab.Symbol{OriginalCase: "X", Depth: 1, Kind: symtab.KindParameter, Offset: 4}
	if got := PlaceOf(param); got != "_BP+4" {
		t.Errorf("PlaceOf(top-level param) = %q, want _BP+4", got)
	}
}

func TestBinaryOpcodeNameMapping(t *testing.T) {
	tests := map[string]string{
		"+": "ADD", "-": "SUB", "*": "MUL", "/": "DIV",
		"mod": "MOD", "rem": "REM", "and": "AND", "or": "OR",
		"=": "EQ", "/=": "NE", "<": "LT", "<=": "LE", ">": "GT", ">=": "GE",
	}
	for op, want := range tests {
		got, ok := BinaryOpcodeName(op)
		if !ok || got != want {
			t.Errorf("BinaryOpcodeName(%q) = %q, %v; want %q, true", op, got, ok, want)
		}
	}
}
