// Package ccerrors formats compiler diagnostics with source context,
// line/column information, and a caret pointing at the offending
// column, per spec §7. It also accumulates per-kind error counts for
// the final summary line.
package ccerrors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/adacomp86/internal/token"
)

// Kind classifies a Diagnostic for the taxonomy in spec §7.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Syntactic:
		return "syntactic"
	case Semantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Diagnostic is a single compiler error, reported with its kind,
// position, and message.
type Diagnostic struct {
	Kind    Kind
	Pos     token.Position
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s error: %s", "", d.Pos.Line, d.Pos.Column, d.Kind, d.Message)
}

// InternalError signals a broken compiler invariant (an ICE per
// spec §7); it should never fire on valid input.
type InternalError struct {
	Invariant string
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Invariant
}

// Reporter accumulates diagnostics across the lexical, syntactic, and
// semantic phases. TAC/ASM generation is only entered once Reporter is
// empty, per spec §7's propagation policy.
type Reporter struct {
	Source string
	File   string
	Diags  []Diagnostic
	counts map[Kind]int
}

// NewReporter creates a Reporter over the given source text and file
// basename, used to render per-error source context.
func NewReporter(source, file string) *Reporter {
	return &Reporter{Source: source, File: file, counts: make(map[Kind]int)}
}

// Add records a diagnostic.
func (r *Reporter) Add(kind Kind, pos token.Position, format string, args ...any) {
	r.Diags = append(r.Diags, Diagnostic{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)})
	r.counts[kind]++
}

// HasErrors reports whether any diagnostic has been recorded.
func (r *Reporter) HasErrors() bool {
	return len(r.Diags) > 0
}

// HasKind reports whether any diagnostic of the given kind has been
// recorded.
func (r *Reporter) HasKind(kind Kind) bool {
	return r.counts[kind] > 0
}

// Count returns the number of diagnostics of the given kind.
func (r *Reporter) Count(kind Kind) int {
	return r.counts[kind]
}

// sourceLine extracts the 1-indexed line from the reporter's source.
func (r *Reporter) sourceLine(lineNum int) string {
	if r.Source == "" {
		return ""
	}
	lines := strings.Split(r.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Format renders a single diagnostic: a header naming the file and
// position, the offending source line with a line-number gutter, and a
// caret under the offending column.
func (r *Reporter) Format(d Diagnostic) string {
	var sb strings.Builder

	if r.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: %s error: %s\n", r.File, d.Pos.Line, d.Pos.Column, d.Kind, d.Message)
	} else {
		fmt.Fprintf(&sb, "line %d:%d: %s error: %s\n", d.Pos.Line, d.Pos.Column, d.Kind, d.Message)
	}

	line := r.sourceLine(d.Pos.Line)
	if line != "" {
		gutter := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(gutter)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(gutter)+d.Pos.Column-1))
		sb.WriteString("^\n")
	}

	return sb.String()
}

// FormatAll renders every accumulated diagnostic followed by a summary
// line counting occurrences per kind.
func (r *Reporter) FormatAll() string {
	var sb strings.Builder
	for _, d := range r.Diags {
		sb.WriteString(r.Format(d))
	}
	sb.WriteString(r.Summary())
	return sb.String()
}

// Summary renders the trailing "N error(s)" counts-per-kind line
// required by spec §7.
func (r *Reporter) Summary() string {
	if len(r.Diags) == 0 {
		return "0 errors\n"
	}
	var parts []string
	for _, k := range []Kind{Lexical, Syntactic, Semantic} {
		if n := r.counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	return fmt.Sprintf("%d error(s) (%s)\n", len(r.Diags), strings.Join(parts, ", "))
}

// ExitCode maps the accumulated diagnostics to the process exit code
// discipline of spec §6.1: 2 if any lexical/syntactic error was
// recorded, 3 if only semantic errors were recorded, 0 otherwise.
func (r *Reporter) ExitCode() int {
	if r.HasKind(Lexical) || r.HasKind(Syntactic) {
		return 2
	}
	if r.HasKind(Semantic) {
		return 3
	}
	return 0
}
