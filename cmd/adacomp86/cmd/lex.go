package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/adacomp86/internal/lexer"
	"github.com/cwbudde/adacomp86/internal/token"
	"github.com/spf13/cobra"
)

var (
	evalExpr   string
	showPos    bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file and print the resulting tokens",
	Long: `lex tokenizes a source file (or an inline snippet given with -e) and
prints the resulting token stream, one token per line.

This command is useful for debugging the lexer in isolation, without
involving the parser.

Examples:
  # Tokenize a source file
  adacomp86 lex program.ada

  # Tokenize an inline snippet
  adacomp86 lex -e "A := 1 + 2;"

  # Show token positions
  adacomp86 lex --show-pos program.ada

  # Show only lexical errors
  adacomp86 lex --only-errors program.ada`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexSource,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize an inline snippet instead of reading from a file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only lexical errors, no tokens")
}

func lexSource(cmd *cobra.Command, args []string) error {
	var input, filename string

	switch {
	case evalExpr != "":
		input = evalExpr
		filename = "<eval>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		input = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e for an inline snippet")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input, filename)

	tokenCount := 0
	for {
		tok := l.NextToken()
		if !onlyErrors {
			printToken(tok)
			tokenCount++
		}
		if tok.Kind == token.EOF {
			break
		}
	}

	errs := l.Errors()
	if onlyErrors {
		for _, e := range errs {
			fmt.Printf("%s: %s\n", e.Pos, e.Message)
		}
	} else if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
	}

	if len(errs) > 0 {
		return fmt.Errorf("found %d lexical error(s)", len(errs))
	}
	return nil
}

func printToken(tok token.Token) {
	output := fmt.Sprintf("[%-10s] %q", tok.Kind, tok.Lexeme)
	if showPos {
		output += fmt.Sprintf(" @%s", tok.Pos)
	}
	fmt.Println(output)
}
