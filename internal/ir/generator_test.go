package ir

import (
	"strings"
	"testing"

	"github.com/rjpaske/pseudocode/internal/lexer"
	"github.com/rjpaske/pseudocode/internal/parser"
)

func generate(t *testing.T, src string) []string {
	t.Helper()
	p, err := parser.New(lexer.New(src))
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Generate(prog).Lines
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func TestGenerateDeclareScalarAtTopLevel(t *testing.T) {
	lines := generate(t, `DECLARE X : INTEGER`)
	if len(lines) != 0 {
		t.Fatalf("expected no instructions for a top-level scalar DECLARE, got %v", lines)
	}
}

func TestGenerateDeclareArray(t *testing.T) {
	lines := generate(t, `DECLARE A : ARRAY[1:5] OF INTEGER`)
	if !containsLine(lines, "ARRAY A [1:5]") {
		t.Fatalf("expected ARRAY instruction, got %v", lines)
	}
}

func TestGenerateConstant(t *testing.T) {
	lines := generate(t, `CONSTANT PI <- 3.14`)
	if !containsLine(lines, "PI = 3.14") {
		t.Fatalf("expected constant assignment, got %v", lines)
	}
}

func TestGenerateAssignmentArithmetic(t *testing.T) {
	lines := generate(t, `DECLARE X : INTEGER
X <- 1 + 2`)
	if !containsLine(lines, "T1 = 1 + 2") || !containsLine(lines, "X = T1") {
		t.Fatalf("unexpected output: %v", lines)
	}
}

func TestGenerateAssignmentOperatorMapping(t *testing.T) {
	lines := generate(t, `DECLARE X : BOOLEAN
DECLARE Y : INTEGER
X <- Y = 1`)
	if !containsLine(lines, "T1 = Y == 1") {
		t.Fatalf("expected '=' mapped to '==', got %v", lines)
	}
}

func TestGenerateUnaryMinus(t *testing.T) {
	lines := generate(t, `DECLARE X : INTEGER
DECLARE Y : INTEGER
X <- -Y`)
	if !containsLine(lines, "T1 = 0 - Y") {
		t.Fatalf("expected unary minus lowering, got %v", lines)
	}
}

func TestGenerateUnaryNot(t *testing.T) {
	lines := generate(t, `DECLARE X : BOOLEAN
DECLARE Y : BOOLEAN
X <- NOT Y`)
	if !containsLine(lines, "T1 = Y == 0") {
		t.Fatalf("expected NOT lowering, got %v", lines)
	}
}

func TestGenerateOutputSingle(t *testing.T) {
	lines := generate(t, `OUTPUT 1`)
	if !containsLine(lines, "OUTPUT 1") {
		t.Fatalf("unexpected output: %v", lines)
	}
}

func TestGenerateOutputMultiple(t *testing.T) {
	lines := generate(t, `OUTPUT "x", 1`)
	want := []string{`OUTPUT_PART "x"`, "OUTPUT_PART 1", "OUTPUT_END"}
	for _, w := range want {
		if !containsLine(lines, w) {
			t.Fatalf("missing %q in %v", w, lines)
		}
	}
}

func TestGenerateIfNoElse(t *testing.T) {
	lines := generate(t, `DECLARE X : BOOLEAN
IF X THEN
  OUTPUT 1
ENDIF`)
	if !strings.Contains(strings.Join(lines, "\n"), "IFZ X GOTO L") {
		t.Fatalf("expected IFZ branch, got %v", lines)
	}
}

func TestGenerateWhileStructure(t *testing.T) {
	lines := generate(t, `DECLARE X : BOOLEAN
WHILE X DO
  OUTPUT 1
ENDWHILE`)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "IFZ X GOTO") || !strings.HasSuffix(lines[0], ":") {
		t.Fatalf("expected label-guarded loop, got %v", lines)
	}
}

func TestGenerateForLiteralPositiveStep(t *testing.T) {
	lines := generate(t, `DECLARE I : INTEGER
FOR I <- 1 TO 10
  OUTPUT I
NEXT I`)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "I <= 10") {
		t.Fatalf("expected direct <= comparison for literal positive step, got %v", lines)
	}
	if strings.Contains(joined, "&&") {
		t.Fatalf("literal-step FOR should not need the runtime direction check, got %v", lines)
	}
}

func TestGenerateForLiteralNegativeStep(t *testing.T) {
	lines := generate(t, `DECLARE I : INTEGER
FOR I <- 10 TO 1 STEP -1
  OUTPUT I
NEXT I`)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "I >= 1") {
		t.Fatalf("expected direct >= comparison for literal negative step, got %v", lines)
	}
}

func TestGenerateForVariableStep(t *testing.T) {
	lines := generate(t, `DECLARE I : INTEGER
DECLARE S : INTEGER
FOR I <- 1 TO 10 STEP S
  OUTPUT I
NEXT I`)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "> 0") || !strings.Contains(joined, "&&") || !strings.Contains(joined, "||") {
		t.Fatalf("expected runtime direction check for a non-literal step, got %v", lines)
	}
}

func TestGenerateCaseSingleValue(t *testing.T) {
	lines := generate(t, `DECLARE X : INTEGER
X <- 1
CASE OF X
  1: OUTPUT "one"
  OTHERWISE: OUTPUT "other"
ENDCASE`)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "== 1") || !strings.Contains(joined, `OUTPUT "one"`) || !strings.Contains(joined, `OUTPUT "other"`) {
		t.Fatalf("unexpected case lowering: %v", lines)
	}
}

func TestGenerateCaseMultiValue(t *testing.T) {
	lines := generate(t, `DECLARE X : INTEGER
X <- 1
CASE OF X
  1, 2: OUTPUT "low"
ENDCASE`)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "IFNZ") {
		t.Fatalf("expected IFNZ dispatch for a multi-value branch, got %v", lines)
	}
}

func TestGenerateProcedureCallRoundTrip(t *testing.T) {
	lines := generate(t, `PROCEDURE Greet(BYVAL Name : STRING)
  OUTPUT Name
ENDPROCEDURE
CALL Greet("Ada")`)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"PROC_Greet:", "ENTER_SCOPE", "POP_PARAM Name", "EXIT_SCOPE", "RET", "CALL PROC_Greet"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, lines)
		}
	}
}

func TestGenerateByRefParameterWriteback(t *testing.T) {
	lines := generate(t, `PROCEDURE Increment(BYREF N : INTEGER)
  N <- N + 1
ENDPROCEDURE
DECLARE X : INTEGER
X <- 1
CALL Increment(X)`)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"POP_BYREF N", "WRITEBACK_BYREF N", "PUSH X", "PUSH_REF X"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, lines)
		}
	}
}

func TestGenerateFunctionCallExpression(t *testing.T) {
	lines := generate(t, `FUNCTION Double(BYVAL N : INTEGER) RETURNS INTEGER
  RETURN N * 2
ENDFUNCTION
DECLARE X : INTEGER
X <- Double(5)`)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"FUNC_Double:", "CALL FUNC_Double", "= RETVAL", "RETVAL T"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, lines)
		}
	}
}

func TestGenerateBuiltinCall(t *testing.T) {
	lines := generate(t, `DECLARE N : INTEGER
N <- LENGTH("hello")`)
	if !containsLine(lines, `T1 = BUILTIN LENGTH "hello"`) {
		t.Fatalf("unexpected builtin lowering: %v", lines)
	}
}

func TestGenerateNonLvalueArgumentPushesNoneRef(t *testing.T) {
	lines := generate(t, `PROCEDURE Show(BYVAL N : INTEGER)
  OUTPUT N
ENDPROCEDURE
CALL Show(1 + 2)`)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "PUSH_REF __NONE__") {
		t.Fatalf("expected __NONE__ ref for a non-lvalue argument, got %v", lines)
	}
}

func TestGenerateFileOperations(t *testing.T) {
	lines := generate(t, `DECLARE Line : STRING
OPENFILE "data.txt" FOR WRITE
WRITEFILE "data.txt", "hello"
CLOSEFILE "data.txt"
OPENFILE "data.txt" FOR READ
READFILE "data.txt", Line
CLOSEFILE "data.txt"`)
	for _, want := range []string{
		`OPENFILE "data.txt" WRITE`,
		`WRITEFILE "data.txt" "hello"`,
		`CLOSEFILE "data.txt"`,
		`OPENFILE "data.txt" READ`,
		`READFILE "data.txt" Line`,
	} {
		if !containsLine(lines, want) {
			t.Fatalf("missing %q in %v", want, lines)
		}
	}
}

func TestGenerateArrayAssignmentTarget(t *testing.T) {
	lines := generate(t, `DECLARE A : ARRAY[1:5] OF INTEGER
DECLARE I : INTEGER
I <- 1
A[I] <- 10`)
	if !containsLine(lines, "A[I] = 10") {
		t.Fatalf("expected array-element assignment, got %v", lines)
	}
}

func TestGenerateFieldAssignmentTarget(t *testing.T) {
	lines := generate(t, `TYPE Point
  DECLARE X : INTEGER
ENDTYPE
DECLARE P : Point
P.X <- 5`)
	if !containsLine(lines, "P.X = 5") {
		t.Fatalf("expected field assignment, got %v", lines)
	}
}
