package cmd

import (
	"fmt"
	"os"

	"github.com/rjpaske/pseudocode/pkg/pseudocode"
	"github.com/spf13/cobra"
)

var (
	compileOutput   string
	compileOptimize bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a pseudocode file to its intermediate representation",
	Long: `Lex, parse, type-check and lower a pseudocode program to the flat,
label-addressed IR the VM executes, printing it (or writing it to a file
with -o) instead of running it.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "write IR to this file instead of stdout")
	compileCmd.Flags().BoolVar(&compileOptimize, "optimize", true, "run the peephole optimizer on the generated IR")
}

func runCompile(_ *cobra.Command, args []string) error {
	filename := args[0]
	src, err := readSource(filename)
	if err != nil {
		return err
	}

	engine := pseudocode.New(pseudocode.WithOptimize(compileOptimize))
	res, err := engine.Compile(src, filename)
	if err != nil {
		printDiagnostic(err, src, filename)
		os.Exit(exitCodeFor(err))
	}

	out := res.IR.String() + "\n"
	if compileOutput == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(compileOutput, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", compileOutput, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "wrote %d IR lines to %s\n", len(res.IR.Lines), compileOutput)
	}
	return nil
}
