package cmd

import (
	"fmt"
	"os"

	"github.com/rjpaske/pseudocode/internal/errors"
	"github.com/rjpaske/pseudocode/internal/lexer"
	"github.com/rjpaske/pseudocode/internal/parser"
	"github.com/rjpaske/pseudocode/internal/token"
)

// toLexDiagnostic and toParseDiagnostic attach the right stage and position
// to a raw *lexer.LexError / *parser.ParseError so printDiagnostic and
// exitCodeFor see a proper staged Diagnostic either way.
func toLexDiagnostic(err error, source, file string) *errors.Diagnostic {
	if le, ok := err.(*lexer.LexError); ok {
		return errors.LexError(le.Pos, le.Msg, source, file)
	}
	return errors.LexError(token.Position{}, err.Error(), source, file)
}

func toParseDiagnostic(err error, source, file string) *errors.Diagnostic {
	if pe, ok := err.(*parser.ParseError); ok {
		return errors.ParseError(pe.Pos, pe.Msg, source, file)
	}
	return errors.ParseError(token.Position{}, err.Error(), source, file)
}

// readSource reads a program from path, or from stdin when path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// printDiagnostic writes a staged diagnostic to stderr, formatted with
// source context when the underlying error is one of ours.
func printDiagnostic(err error, source, file string) {
	if d, ok := err.(*errors.Diagnostic); ok {
		fmt.Fprintln(os.Stderr, d.Format(!noColor))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// exitCodeFor maps an error to the CLI exit code spec.md §6 assigns each
// pipeline stage; a non-diagnostic error is a generic failure (1).
func exitCodeFor(err error) int {
	if d, ok := err.(*errors.Diagnostic); ok {
		return d.Stage.ExitCode()
	}
	return 1
}
