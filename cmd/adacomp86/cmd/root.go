package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "adacomp86",
	Short: "A compiler for a small procedural language, targeting 8086",
	Long: `adacomp86 compiles a small Pascal/Ada-like procedural language into
16-bit 8086 assembly suitable for MASM/TASM, linked against a provided
io.asm runtime for console input/output.

The pipeline is: lexer -> symbol table -> recursive-descent parser
(with inline semantic actions) -> three-address code -> 8086 assembly.
There is no separate AST stage and no optimizer; the parser emits TAC
directly as it recognizes each production, and the code generator
translates that TAC into assembly text one procedure at a time.`,
	Version: Version,
}

// Execute runs the root command, returning any error from the
// selected subcommand's RunE.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
