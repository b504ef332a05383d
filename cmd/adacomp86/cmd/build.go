package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/adacomp86/internal/ccerrors"
	"github.com/cwbudde/adacomp86/internal/codegen"
	"github.com/cwbudde/adacomp86/internal/lexer"
	"github.com/cwbudde/adacomp86/internal/parser"
	"github.com/spf13/cobra"
)

var (
	asmOutput string
	tacOutput string
	debugBuild bool
)

var buildCmd = &cobra.Command{
	Use:   "build <source>",
	Short: "Compile a source file to 8086 assembly",
	Long: `build reads a source file, lexes and parses it with the inline
semantic actions described in spec.md section 4, and (if no errors were
reported) lowers the resulting three-address code to MASM/TASM-flavored
8086 assembly.

Exit codes:
  0  success
  1  the source file could not be read, or an output file could not be written
  2  one or more lexical or syntactic errors were reported
  3  one or more semantic errors were reported (no lexical/syntactic errors)
  4  an internal compiler invariant was broken (a bug in adacomp86 itself)`,
	Args: cobra.ExactArgs(1),
	Run:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&asmOutput, "asm-output", "o", "", "path to write the generated assembly (default: <source>.asm)")
	buildCmd.Flags().StringVarP(&tacOutput, "tac-output", "t", "", "path to write the generated three-address code (default: <source>.tac)")
	buildCmd.Flags().BoolVarP(&debugBuild, "debug", "d", false, "trace lexing, parsing, and symbol insertion to stderr")
}

func runBuild(cmd *cobra.Command, args []string) {
	sourcePath := args[0]

	defer func() {
		if r := recover(); r != nil {
			if ice, ok := r.(*ccerrors.InternalError); ok {
				fmt.Fprintln(os.Stderr, ice.Error())
			} else {
				fmt.Fprintf(os.Stderr, "internal compiler error: %v\n", r)
			}
			os.Exit(4)
		}
	}()

	content, err := os.ReadFile(sourcePath)
	if err != nil {
		exitWithCode(1, "failed to read %s: %v", sourcePath, err)
	}
	src := string(content)

	if asmOutput == "" {
		asmOutput = replaceExt(sourcePath, ".asm")
	}
	if tacOutput == "" {
		tacOutput = replaceExt(sourcePath, ".tac")
	}

	reporter := ccerrors.NewReporter(src, filepath.Base(sourcePath))

	lexOpts := []lexer.Option{}
	parseOpts := []parser.Option{}
	if debugBuild {
		lexOpts = append(lexOpts, lexer.WithTracing(true))
		parseOpts = append(parseOpts, parser.WithTracing(true))
	}

	lex := lexer.New(src, filepath.Base(sourcePath), lexOpts...)
	p := parser.New(lex, reporter, parseOpts...)
	ok := p.ParseProgram()

	if !ok {
		fmt.Fprint(os.Stderr, reporter.FormatAll())
		os.Exit(reporter.ExitCode())
	}

	if err := os.WriteFile(tacOutput, []byte(p.Gen.Text()), 0o644); err != nil {
		exitWithCode(1, "failed to write %s: %v", tacOutput, err)
	}

	entry, hasEntry := p.EntryPoint()
	if !hasEntry {
		panic(&ccerrors.InternalError{Invariant: "program parsed with no entry procedure recorded"})
	}

	tr := codegen.New(p.Gen, p.Procedures, p.Globals, entry)
	asm, err := tr.Translate()
	if err != nil {
		panic(&ccerrors.InternalError{Invariant: err.Error()})
	}

	if err := os.WriteFile(asmOutput, []byte(asm), 0o644); err != nil {
		exitWithCode(1, "failed to write %s: %v", asmOutput, err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("wrote %s and %s\n", tacOutput, asmOutput)
	}
}

func exitWithCode(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(code)
}

func replaceExt(path, ext string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	return trimmed + ext
}
