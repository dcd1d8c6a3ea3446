// Command pseudocode is a CLI front end for the compiler pipeline in
// pkg/pseudocode: lex, parse, compile (to IR) and run CIE 9618 pseudocode
// programs from the terminal.
package main

import (
	"os"

	"github.com/rjpaske/pseudocode/cmd/pseudocode/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
