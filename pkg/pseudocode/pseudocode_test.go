package pseudocode

import (
	"context"
	"strings"
	"testing"
)

func TestCompileProducesIR(t *testing.T) {
	src := "DECLARE X : INTEGER\nX <- 1 + 2\nOUTPUT X"
	res, err := New().Compile(src, "<test>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IR == nil || len(res.IR.Lines) == 0 {
		t.Fatalf("expected non-empty IR, got %v", res)
	}
}

func TestCompileReportsParseError(t *testing.T) {
	_, err := New().Compile("X <- <- 1", "<test>")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestRunProducesOutput(t *testing.T) {
	src := `OUTPUT "hello"`
	res, err := New().Run(context.Background(), src, "<test>", RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "hello" {
		t.Fatalf("got output %q, want hello", res.Output)
	}
}

func TestRunWithInputs(t *testing.T) {
	src := "DECLARE NAME : STRING\nINPUT NAME\nOUTPUT NAME"
	res, err := New().Run(context.Background(), src, "<test>", RunOptions{
		Inputs: []string{"Ada"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "Ada" {
		t.Fatalf("got output %q, want Ada", res.Output)
	}
}

func TestRunCapturesToProvidedWriter(t *testing.T) {
	var sb strings.Builder
	_, err := New().Run(context.Background(), `OUTPUT "tee"`, "<test>", RunOptions{Output: &sb})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sb.String() != "tee" {
		t.Fatalf("got %q, want tee", sb.String())
	}
}

func TestWithOptimizeOffStillRuns(t *testing.T) {
	res, err := New(WithOptimize(false)).Run(context.Background(), `OUTPUT 1 + 2`, "<test>", RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "3" {
		t.Fatalf("got %q, want 3", res.Output)
	}
}
