package vm

import (
	"context"
	"testing"

	"github.com/rjpaske/pseudocode/internal/ir"
)

func run(t *testing.T, lines []string, opts ...Option) (*Result, error) {
	t.Helper()
	prog := &ir.Program{Lines: lines}
	machine := New(opts...)
	return machine.Run(context.Background(), prog)
}

func TestArithmeticOutput(t *testing.T) {
	res, err := run(t, []string{
		`T1 = 3 + 4`,
		`OUTPUT T1`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "7" {
		t.Fatalf("got output %q, want %q", res.Output, "7")
	}
}

func TestOutputPartsConcatenate(t *testing.T) {
	res, err := run(t, []string{
		`OUTPUT_PART "X = "`,
		`OUTPUT_PART 5`,
		`OUTPUT_END`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "X = 5" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestIfBranch(t *testing.T) {
	res, err := run(t, []string{
		`T1 = 1 == 0`,
		`IFZ T1 GOTO Lelse`,
		`OUTPUT "then"`,
		`GOTO Lend`,
		`Lelse:`,
		`OUTPUT "else"`,
		`Lend:`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "else" {
		t.Fatalf("got %q, want else", res.Output)
	}
}

func TestArrayWriteAndRead(t *testing.T) {
	res, err := run(t, []string{
		`ARRAY A [1:3]`,
		`A[2] = 99`,
		`T1 = A[2]`,
		`OUTPUT T1`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "99" {
		t.Fatalf("got %q, want 99", res.Output)
	}
}

func TestArrayOutOfBounds(t *testing.T) {
	_, err := run(t, []string{
		`ARRAY A [1:3]`,
		`T1 = A[9]`,
	})
	if err == nil {
		t.Fatalf("expected an out-of-bounds error")
	}
}

func TestRecordFieldAutoVivifies(t *testing.T) {
	res, err := run(t, []string{
		`P.X = 10`,
		`T1 = P.X`,
		`OUTPUT T1`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "10" {
		t.Fatalf("got %q, want 10", res.Output)
	}
}

// TestByRefSwap exercises a classic SWAP(A, B) procedure through the full
// call protocol: both arguments are pushed by value and by reference, and
// the writeback on return mutates the caller's globals.
func TestByRefSwap(t *testing.T) {
	res, err := run(t, []string{
		`X = 1`,
		`Y = 2`,
		`PUSH X`,
		`PUSH_REF X`,
		`PUSH Y`,
		`PUSH_REF Y`,
		`CALL PROC_SWAP`,
		`GOTO Lend`,
		`PROC_SWAP:`,
		`ENTER_SCOPE`,
		`POP_BYREF B`,
		`POP_BYREF A`,
		`TMP = A`,
		`A = B`,
		`B = TMP`,
		`WRITEBACK_BYREF A`,
		`WRITEBACK_BYREF B`,
		`EXIT_SCOPE`,
		`RET`,
		`Lend:`,
		`OUTPUT_PART X`,
		`OUTPUT_PART ","`,
		`OUTPUT_PART Y`,
		`OUTPUT_END`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "2,1" {
		t.Fatalf("got %q, want 2,1", res.Output)
	}
}

func TestFunctionCallReturnsValue(t *testing.T) {
	res, err := run(t, []string{
		`PUSH 4`,
		`PUSH_REF __NONE__`,
		`CALL FUNC_DOUBLE`,
		`T1 = RETVAL`,
		`OUTPUT T1`,
		`GOTO Lend`,
		`FUNC_DOUBLE:`,
		`ENTER_SCOPE`,
		`POP_PARAM N`,
		`T9 = N * 2`,
		`RETVAL T9`,
		`EXIT_SCOPE`,
		`RET`,
		`Lend:`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "8" {
		t.Fatalf("got %q, want 8", res.Output)
	}
}

func TestFileRoundTrip(t *testing.T) {
	res, err := run(t, []string{
		`OPENFILE "out.txt" WRITE`,
		`WRITEFILE "out.txt" "hello"`,
		`CLOSEFILE "out.txt"`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Files["out.txt"]) != 1 || res.Files["out.txt"][0] != "hello" {
		t.Fatalf("got files %v", res.Files)
	}
}

func TestFileReadBack(t *testing.T) {
	res, err := run(t, []string{
		`OPENFILE "in.txt" READ`,
		`READFILE "in.txt" LINE`,
		`OUTPUT LINE`,
		`CLOSEFILE "in.txt"`,
	}, WithFiles(map[string][]string{"in.txt": {"first line"}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "first line" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestBatchInputExhaustionFails(t *testing.T) {
	_, err := run(t, []string{
		`INPUT X`,
		`INPUT Y`,
	}, WithInputs([]string{"only-one"}))
	if err == nil {
		t.Fatalf("expected exhausted-input error")
	}
}

func TestInputCoercesNumericStrings(t *testing.T) {
	res, err := run(t, []string{
		`INPUT X`,
		`T1 = X + 1`,
		`OUTPUT T1`,
	}, WithInputs([]string{"5"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "6" {
		t.Fatalf("got %q, want 6 (INPUT should store a parseable number as INTEGER)", res.Output)
	}
}

func TestInputLeavesNonNumericAsString(t *testing.T) {
	res, err := run(t, []string{
		`INPUT X`,
		`OUTPUT X`,
	}, WithInputs([]string{"hello"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "hello" {
		t.Fatalf("got %q, want hello", res.Output)
	}
}

func TestStringRelationalComparison(t *testing.T) {
	res, err := run(t, []string{
		`T1 = "a" < "b"`,
		`IFZ T1 GOTO L1`,
		`OUTPUT "yes"`,
		`GOTO L2`,
		`L1:`,
		`OUTPUT "no"`,
		`L2:`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "yes" {
		t.Fatalf("got %q, want yes (lexicographic STRING comparison)", res.Output)
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	_, err := run(t, []string{
		`T1 = 5 / 0`,
	})
	if err == nil {
		t.Fatalf("expected division-by-zero error")
	}
}

func TestDeterministicRandWithSeed(t *testing.T) {
	prog := []string{
		`T1 = BUILTIN RAND 100`,
		`OUTPUT T1`,
	}
	res1, err := run(t, prog, WithRandSeed(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res2, err := run(t, prog, WithRandSeed(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res1.Output != res2.Output {
		t.Fatalf("same seed produced different output: %q vs %q", res1.Output, res2.Output)
	}
}

func TestStepLimitExceeded(t *testing.T) {
	_, err := run(t, []string{
		`Lstart:`,
		`GOTO Lstart`,
	}, WithMaxSteps(100))
	if err == nil {
		t.Fatalf("expected step-limit error")
	}
}

func TestGlobalsVisibleAfterRun(t *testing.T) {
	res, err := run(t, []string{
		`COUNT = 1`,
		`COUNT = COUNT + 1`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := res.Globals["COUNT"]
	if !ok {
		t.Fatalf("expected COUNT in globals, got %v", res.Globals)
	}
	if v.String() != "2" {
		t.Fatalf("got COUNT=%v, want 2", v)
	}
}

func TestProcedureLocalDoesNotLeakToGlobals(t *testing.T) {
	res, err := run(t, []string{
		`GOTO Lmain`,
		`PROC_P:`,
		`ENTER_SCOPE`,
		`LOCAL SCRATCH`,
		`SCRATCH = 5`,
		`EXIT_SCOPE`,
		`RET`,
		`Lmain:`,
		`CALL PROC_P`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.Globals["SCRATCH"]; ok {
		t.Fatalf("SCRATCH leaked into globals: %v", res.Globals)
	}
}

func TestCancellationViaContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prog := &ir.Program{Lines: []string{
		`Lstart:`,
		`GOTO Lstart`,
	}}
	machine := New(WithYieldEvery(1))
	_, err := machine.Run(ctx, prog)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}
