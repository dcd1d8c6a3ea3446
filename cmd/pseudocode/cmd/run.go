package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/rjpaske/pseudocode/pkg/pseudocode"
	"github.com/spf13/cobra"
)

var (
	runOptimize bool
	runDumpIR   bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a pseudocode file",
	Long: `Compile and execute a pseudocode program. INPUT statements read
interactively from stdin unless the program finishes before one is reached.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runOptimize, "optimize", true, "run the peephole optimizer on the generated IR")
	runCmd.Flags().BoolVar(&runDumpIR, "dump-ir", false, "print the generated IR to stderr before running")
}

func runRun(_ *cobra.Command, args []string) error {
	filename := args[0]
	src, err := readSource(filename)
	if err != nil {
		return err
	}

	engine := pseudocode.New(pseudocode.WithOptimize(runOptimize))

	stdin := bufio.NewScanner(os.Stdin)
	inputFunc := func() (string, bool) {
		if !stdin.Scan() {
			return "", false
		}
		return stdin.Text(), true
	}

	res, err := engine.Run(context.Background(), src, filename, pseudocode.RunOptions{
		InputFunc: inputFunc,
		Output:    os.Stdout,
	})
	if runDumpIR && res != nil && res.IR != nil {
		fmt.Fprintln(os.Stderr, "== IR ==")
		fmt.Fprintln(os.Stderr, res.IR.String())
		fmt.Fprintln(os.Stderr, "== end IR ==")
	}
	if err != nil {
		printDiagnostic(err, src, filename)
		os.Exit(exitCodeFor(err))
	}
	return nil
}
