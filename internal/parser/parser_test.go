package parser

import (
	"testing"

	"github.com/rjpaske/pseudocode/internal/ast"
	"github.com/rjpaske/pseudocode/internal/lexer"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := New(lexer.New(src))
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func parseProgramErr(t *testing.T, src string) error {
	t.Helper()
	p, err := New(lexer.New(src))
	if err != nil {
		return err
	}
	_, err = p.ParseProgram()
	return err
}

func TestParseDeclareScalar(t *testing.T) {
	prog := parseProgram(t, "DECLARE X : INTEGER")
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.Declare)
	if !ok {
		t.Fatalf("got %T, want *ast.Declare", prog.Statements[0])
	}
	if decl.Name.Value != "X" || decl.DataType != "INTEGER" || decl.ArrayDimensions != nil {
		t.Errorf("got %+v", decl)
	}
}

func TestParseDeclareArray2D(t *testing.T) {
	prog := parseProgram(t, "DECLARE Grid : ARRAY[1:3, 1:3] OF INTEGER")
	decl := prog.Statements[0].(*ast.Declare)
	if len(decl.ArrayDimensions) != 2 {
		t.Fatalf("got %d dims, want 2", len(decl.ArrayDimensions))
	}
	if decl.ArrayDimensions[0] != (ast.Dimension{Start: 1, End: 3}) {
		t.Errorf("dim0 = %+v", decl.ArrayDimensions[0])
	}
}

func TestParseConstantNegative(t *testing.T) {
	prog := parseProgram(t, "CONSTANT Limit <- -5")
	c := prog.Statements[0].(*ast.Constant)
	lit, ok := c.Value.(*ast.IntegerLiteral)
	if !ok || lit.Value != -5 {
		t.Errorf("got %+v", c.Value)
	}
}

func TestParseAssignmentSimple(t *testing.T) {
	prog := parseProgram(t, "X <- 1 + 2 * 3")
	a := prog.Statements[0].(*ast.Assignment)
	bin, ok := a.Expr.(*ast.BinaryExpr)
	if !ok || bin.Operator != "+" {
		t.Fatalf("got %+v", a.Expr)
	}
	right, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || right.Operator != "*" {
		t.Errorf("precedence wrong: %+v", bin.Right)
	}
}

func TestParseAssignmentArrayTarget(t *testing.T) {
	prog := parseProgram(t, "A[1, 2] <- 0")
	a := prog.Statements[0].(*ast.Assignment)
	if len(a.Indices) != 2 {
		t.Fatalf("got %d indices, want 2", len(a.Indices))
	}
}

func TestParseAssignmentFieldTarget(t *testing.T) {
	prog := parseProgram(t, "P.Name <- \"Bob\"")
	a := prog.Statements[0].(*ast.Assignment)
	if a.Field != "Name" {
		t.Errorf("got field %q", a.Field)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseProgram(t, `IF X > 0 THEN
  OUTPUT "positive"
ELSE
  OUTPUT "non-positive"
ENDIF`)
	stmt := prog.Statements[0].(*ast.If)
	if len(stmt.Then) != 1 || len(stmt.Else) != 1 {
		t.Errorf("got then=%d else=%d", len(stmt.Then), len(stmt.Else))
	}
}

func TestParseWhile(t *testing.T) {
	prog := parseProgram(t, `WHILE X < 10 DO
  X <- X + 1
ENDWHILE`)
	stmt := prog.Statements[0].(*ast.While)
	if len(stmt.Body) != 1 {
		t.Errorf("got %d body statements", len(stmt.Body))
	}
}

func TestParseRepeat(t *testing.T) {
	prog := parseProgram(t, `REPEAT
  X <- X + 1
UNTIL X = 10`)
	stmt := prog.Statements[0].(*ast.Repeat)
	if stmt.Until == nil {
		t.Error("missing UNTIL condition")
	}
}

func TestParseForWithStepAndTrailingVar(t *testing.T) {
	prog := parseProgram(t, `FOR I <- 1 TO 10 STEP 2
  OUTPUT I
NEXT I`)
	stmt := prog.Statements[0].(*ast.For)
	if stmt.LoopVar.Value != "I" || stmt.Step == nil {
		t.Errorf("got %+v", stmt)
	}
}

func TestParseForWithoutTrailingVar(t *testing.T) {
	prog := parseProgram(t, `FOR I <- 1 TO 10
  OUTPUT I
NEXT`)
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
}

func TestParseCaseMultiValueBranches(t *testing.T) {
	prog := parseProgram(t, `CASE OF Grade
  1, 2: OUTPUT "low"
  3: OUTPUT "mid"
  OTHERWISE: OUTPUT "other"
ENDCASE`)
	c := prog.Statements[0].(*ast.Case)
	if len(c.Branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(c.Branches))
	}
	if len(c.Branches[0].Values) != 2 {
		t.Errorf("got %d values in first branch, want 2", len(c.Branches[0].Values))
	}
	if c.OtherwiseBranch == nil || len(c.OtherwiseBranch) != 1 {
		t.Errorf("got otherwise=%+v", c.OtherwiseBranch)
	}
}

func TestParseCaseBranchWithMultipleStatements(t *testing.T) {
	prog := parseProgram(t, `CASE OF X
  1:
    OUTPUT "one"
    OUTPUT "uno"
  2:
    OUTPUT "two"
ENDCASE`)
	c := prog.Statements[0].(*ast.Case)
	if len(c.Branches[0].Body) != 2 {
		t.Errorf("got %d statements in branch 0, want 2", len(c.Branches[0].Body))
	}
}

func TestParseProcedureAndCall(t *testing.T) {
	prog := parseProgram(t, `PROCEDURE Greet(BYVAL Name : STRING)
  OUTPUT Name
ENDPROCEDURE
CALL Greet("World")`)
	proc := prog.Statements[0].(*ast.Procedure)
	if len(proc.Parameters) != 1 || proc.Parameters[0].Mode != ast.ByVal {
		t.Errorf("got %+v", proc.Parameters)
	}
	call := prog.Statements[1].(*ast.Call)
	if call.Name != "Greet" || len(call.Arguments) != 1 {
		t.Errorf("got %+v", call)
	}
}

func TestParseFunctionByRefAndReturn(t *testing.T) {
	prog := parseProgram(t, `FUNCTION Double(BYREF N : INTEGER) RETURNS INTEGER
  RETURN N * 2
ENDFUNCTION`)
	fn := prog.Statements[0].(*ast.Function)
	if fn.Parameters[0].Mode != ast.ByRef || fn.ReturnType != "INTEGER" {
		t.Errorf("got %+v", fn)
	}
	ret := fn.Body[0].(*ast.Return)
	if ret.Value == nil {
		t.Error("expected return value")
	}
}

func TestParseFileOperations(t *testing.T) {
	prog := parseProgram(t, `OPENFILE "data.txt" FOR WRITE
WRITEFILE "data.txt", "hello"
CLOSEFILE "data.txt"`)
	if _, ok := prog.Statements[0].(*ast.OpenFile); !ok {
		t.Errorf("got %T", prog.Statements[0])
	}
	if _, ok := prog.Statements[1].(*ast.WriteFile); !ok {
		t.Errorf("got %T", prog.Statements[1])
	}
	if _, ok := prog.Statements[2].(*ast.CloseFile); !ok {
		t.Errorf("got %T", prog.Statements[2])
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	prog := parseProgram(t, "X <- 1 + 2 * 3 = 7 AND NOT FALSE OR TRUE")
	a := prog.Statements[0].(*ast.Assignment)
	top, ok := a.Expr.(*ast.BinaryExpr)
	if !ok || top.Operator != "OR" {
		t.Fatalf("top-level operator should be OR (lowest precedence), got %+v", a.Expr)
	}
}

func TestParseArrayAccessInExpression(t *testing.T) {
	prog := parseProgram(t, "X <- A[I + 1]")
	a := prog.Statements[0].(*ast.Assignment)
	access, ok := a.Expr.(*ast.ArrayAccess)
	if !ok || len(access.Indices) != 1 {
		t.Fatalf("got %+v", a.Expr)
	}
}

func TestParseFunctionCallInExpression(t *testing.T) {
	prog := parseProgram(t, `X <- LENGTH("hi")`)
	a := prog.Statements[0].(*ast.Assignment)
	call, ok := a.Expr.(*ast.CallExpr)
	if !ok || call.Name != "LENGTH" || len(call.Arguments) != 1 {
		t.Fatalf("got %+v", a.Expr)
	}
}

func TestParseTypeDef(t *testing.T) {
	prog := parseProgram(t, `TYPE Point
  DECLARE X : INTEGER
  DECLARE Y : INTEGER
ENDTYPE`)
	td := prog.Statements[0].(*ast.TypeDef)
	if td.Name != "Point" || len(td.Fields) != 2 {
		t.Errorf("got %+v", td)
	}
}

func TestParseErrorUnexpectedToken(t *testing.T) {
	if err := parseProgramErr(t, "IF THEN ENDIF"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseErrorUnterminatedBlock(t *testing.T) {
	if err := parseProgramErr(t, "IF X > 0 THEN\n  OUTPUT 1"); err == nil {
		t.Fatal("expected parse error for missing ENDIF")
	}
}
