package cmd

import (
	"fmt"
	"os"

	"github.com/rjpaske/pseudocode/internal/lexer"
	"github.com/rjpaske/pseudocode/internal/token"
	"github.com/spf13/cobra"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a pseudocode file and print the resulting tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(_ *cobra.Command, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		return err
	}

	l := lexer.New(src)
	for {
		tok, err := l.Next()
		if err != nil {
			diag := toLexDiagnostic(err, src, args[0])
			printDiagnostic(diag, src, args[0])
			os.Exit(exitCodeFor(diag))
		}
		fmt.Printf("%-12s %-20q @%d:%d\n", tok.Kind, tok.Lexeme, tok.Pos.Line, tok.Pos.Column)
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}
