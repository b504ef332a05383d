package ccerrors

import (
	"strings"
	"testing"

	"github.com/cwbudde/adacomp86/internal/token"
)

func TestFormatIncludesCaret(t *testing.T) {
	r := NewReporter("A := 1\nB := $\n", "test.ada")
	r.Add(Lexical, token.Position{Line: 2, Column: 6}, "illegal character %q", '$')

	out := r.Format(r.Diags[0])
	if !strings.Contains(out, "B := $") {
		t.Errorf("expected source line in output, got %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("expected caret in output, got %q", out)
	}
}

func TestExitCodePrecedence(t *testing.T) {
	r := NewReporter("", "test.ada")
	r.Add(Semantic, token.Position{}, "undeclared identifier")
	if got := r.ExitCode(); got != 3 {
		t.Errorf("ExitCode() = %d, want 3", got)
	}

	r.Add(Syntactic, token.Position{}, "unexpected token")
	if got := r.ExitCode(); got != 2 {
		t.Errorf("ExitCode() with syntactic present = %d, want 2", got)
	}
}

func TestExitCodeZeroWhenClean(t *testing.T) {
	r := NewReporter("", "test.ada")
	if got := r.ExitCode(); got != 0 {
		t.Errorf("ExitCode() = %d, want 0", got)
	}
}

func TestSummaryCounts(t *testing.T) {
	r := NewReporter("", "test.ada")
	r.Add(Lexical, token.Position{}, "a")
	r.Add(Lexical, token.Position{}, "b")
	r.Add(Semantic, token.Position{}, "c")

	summary := r.Summary()
	if !strings.Contains(summary, "3 error(s)") {
		t.Errorf("expected total count in summary, got %q", summary)
	}
	if !strings.Contains(summary, "2 lexical") || !strings.Contains(summary, "1 semantic") {
		t.Errorf("expected per-kind counts in summary, got %q", summary)
	}
}
