package semantic

import (
	"testing"

	"github.com/rjpaske/pseudocode/internal/lexer"
	"github.com/rjpaske/pseudocode/internal/parser"
)

func analyzeSource(t *testing.T, src string) *Result {
	t.Helper()
	p, err := parser.New(lexer.New(src))
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	result, diags := Analyze(prog, src, "")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return result
}

func analyzeSourceExpectError(t *testing.T, src string) {
	t.Helper()
	p, err := parser.New(lexer.New(src))
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, diags := Analyze(prog, src, "")
	if len(diags) == 0 {
		t.Fatal("expected at least one diagnostic, got none")
	}
}

func TestAnalyzeDeclareAndAssign(t *testing.T) {
	analyzeSource(t, `DECLARE X : INTEGER
X <- 5`)
}

func TestAnalyzeIntegerWidensToReal(t *testing.T) {
	analyzeSource(t, `DECLARE X : REAL
X <- 5`)
}

func TestAnalyzeRealDoesNotNarrowToInteger(t *testing.T) {
	analyzeSourceExpectError(t, `DECLARE X : INTEGER
DECLARE Y : REAL
Y <- 1.5
X <- Y`)
}

func TestAnalyzeUndeclaredVariable(t *testing.T) {
	analyzeSourceExpectError(t, `X <- 5`)
}

func TestAnalyzeUseBeforeAssignment(t *testing.T) {
	analyzeSourceExpectError(t, `DECLARE X : INTEGER
DECLARE Y : INTEGER
Y <- X`)
}

func TestAnalyzeArrayBounds(t *testing.T) {
	analyzeSource(t, `DECLARE A : ARRAY[1:5] OF INTEGER
A[1] <- 10`)
}

func TestAnalyzeArrayWrongIndexCount(t *testing.T) {
	analyzeSourceExpectError(t, `DECLARE A : ARRAY[1:5] OF INTEGER
A[1, 2] <- 10`)
}

func TestAnalyzeArrayIndexMustBeInteger(t *testing.T) {
	analyzeSourceExpectError(t, `DECLARE A : ARRAY[1:5] OF INTEGER
DECLARE S : STRING
S <- "x"
A[S] <- 10`)
}

func TestAnalyzeRecordFieldAccess(t *testing.T) {
	analyzeSource(t, `TYPE Point
  DECLARE X : INTEGER
  DECLARE Y : INTEGER
ENDTYPE
DECLARE P : Point
P.X <- 1`)
}

func TestAnalyzeRecordUnknownField(t *testing.T) {
	analyzeSourceExpectError(t, `TYPE Point
  DECLARE X : INTEGER
ENDTYPE
DECLARE P : Point
P.Z <- 1`)
}

func TestAnalyzeIfConditionMustBeBoolean(t *testing.T) {
	analyzeSourceExpectError(t, `DECLARE X : INTEGER
X <- 1
IF X THEN
  OUTPUT 1
ENDIF`)
}

func TestAnalyzeFunctionCallAndReturnType(t *testing.T) {
	analyzeSource(t, `FUNCTION Double(BYVAL N : INTEGER) RETURNS INTEGER
  RETURN N * 2
ENDFUNCTION
DECLARE X : INTEGER
X <- Double(5)`)
}

func TestAnalyzeFunctionMissingReturn(t *testing.T) {
	analyzeSourceExpectError(t, `FUNCTION NoReturn() RETURNS INTEGER
  OUTPUT "oops"
ENDFUNCTION`)
}

func TestAnalyzeCallArityMismatch(t *testing.T) {
	analyzeSourceExpectError(t, `PROCEDURE Greet(BYVAL Name : STRING)
  OUTPUT Name
ENDPROCEDURE
CALL Greet()`)
}

func TestAnalyzeByRefArgumentMustBeVariable(t *testing.T) {
	analyzeSourceExpectError(t, `PROCEDURE Increment(BYREF N : INTEGER)
  N <- N + 1
ENDPROCEDURE
CALL Increment(5)`)
}

func TestAnalyzeBuiltinLength(t *testing.T) {
	analyzeSource(t, `DECLARE N : INTEGER
N <- LENGTH("hello")`)
}

func TestAnalyzeBuiltinArityMismatch(t *testing.T) {
	analyzeSourceExpectError(t, `DECLARE N : INTEGER
N <- LENGTH("hello", "world")`)
}

func TestAnalyzeForwardReferenceToFunction(t *testing.T) {
	analyzeSource(t, `DECLARE X : INTEGER
X <- Square(3)
FUNCTION Square(BYVAL N : INTEGER) RETURNS INTEGER
  RETURN N * N
ENDFUNCTION`)
}

func TestAnalyzeCaseSelectorTypeMismatch(t *testing.T) {
	analyzeSourceExpectError(t, `DECLARE X : INTEGER
X <- 1
CASE OF X
  "a": OUTPUT 1
ENDCASE`)
}
