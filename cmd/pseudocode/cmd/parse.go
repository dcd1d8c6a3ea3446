package cmd

import (
	"fmt"
	"os"

	"github.com/rjpaske/pseudocode/internal/lexer"
	"github.com/rjpaske/pseudocode/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a pseudocode file and print its AST",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		return err
	}

	l := lexer.New(src)
	p, err := parser.New(l)
	if err != nil {
		diag := toLexDiagnostic(err, src, args[0])
		printDiagnostic(diag, src, args[0])
		os.Exit(exitCodeFor(diag))
	}

	prog, err := p.ParseProgram()
	if err != nil {
		diag := toParseDiagnostic(err, src, args[0])
		printDiagnostic(diag, src, args[0])
		os.Exit(exitCodeFor(diag))
	}

	fmt.Println(prog.String())
	return nil
}
