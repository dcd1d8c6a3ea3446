package ir

import (
	"fmt"

	"github.com/rjpaske/pseudocode/internal/ast"
)

// Generator lowers a type-checked AST into the flat IR program (spec.md
// §4.4). It assumes the program has already passed semantic analysis:
// generation does not re-check types or redeclare errors.
type Generator struct {
	prog       *Program
	tempSeq    int
	labelSeq   int
	params     []ast.Parameter
	inProcBody bool
}

// Generate lowers a whole program to IR.
func Generate(program *ast.Program) *Program {
	g := &Generator{prog: &Program{}}
	for _, stmt := range program.Statements {
		g.genStatement(stmt)
	}
	return g.prog
}

func (g *Generator) newTemp() string {
	g.tempSeq++
	return fmt.Sprintf("T%d", g.tempSeq)
}

func (g *Generator) newLabel() string {
	g.labelSeq++
	return fmt.Sprintf("L%d", g.labelSeq)
}

func (g *Generator) emit(format string, args ...any) {
	g.prog.emit(fmt.Sprintf(format, args...))
}

func (g *Generator) genStatement(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.Declare:
		g.genDeclare(n)
	case *ast.Constant:
		g.genConstant(n)
	case *ast.TypeDef:
		// Erased at compile time; the VM creates a record value the first
		// time one of its fields is read or written.
	case *ast.Assignment:
		g.genAssignment(n)
	case *ast.Output:
		g.genOutput(n)
	case *ast.Input:
		g.genInput(n)
	case *ast.If:
		g.genIf(n)
	case *ast.While:
		g.genWhile(n)
	case *ast.For:
		g.genFor(n)
	case *ast.Repeat:
		g.genRepeat(n)
	case *ast.Case:
		g.genCase(n)
	case *ast.Procedure:
		g.genProcedure(n)
	case *ast.Function:
		g.genFunction(n)
	case *ast.Call:
		g.genCall(n)
	case *ast.Return:
		g.genReturn(n)
	case *ast.OpenFile:
		g.genOpenFile(n)
	case *ast.ReadFile:
		g.genReadFile(n)
	case *ast.WriteFile:
		g.genWriteFile(n)
	case *ast.CloseFile:
		g.genCloseFile(n)
	default:
		panic(fmt.Sprintf("ir: unhandled statement type %T", stmt))
	}
}

func (g *Generator) genBlock(stmts []ast.Statement) {
	for _, s := range stmts {
		g.genStatement(s)
	}
}

func (g *Generator) genDeclare(n *ast.Declare) {
	if n.ArrayDimensions != nil {
		bounds := ""
		for i, d := range n.ArrayDimensions {
			if i > 0 {
				bounds += ","
			}
			bounds += fmt.Sprintf("%d:%d", d.Start, d.End)
		}
		g.emit("ARRAY %s [%s]", n.Name.Value, bounds)
		return
	}
	if g.inProcBody {
		g.emit("LOCAL %s", n.Name.Value)
	}
}

func (g *Generator) genConstant(n *ast.Constant) {
	g.emit("%s = %s", n.Name.Value, literalToken(n.Value))
}

// literalToken renders a literal AST expression (as produced by the parser
// for CONSTANT and CASE branch values) to its IR token form. Booleans are
// rendered as 0/1: the IR has no boolean literal syntax (spec.md §6), and
// the VM's truthiness rules already treat 0 as false, non-zero as true.
func literalToken(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return fmt.Sprintf("%d", n.Value)
	case *ast.RealLiteral:
		return fmt.Sprintf("%g", n.Value)
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", n.Value)
	case *ast.BooleanLiteral:
		if n.Value {
			return "1"
		}
		return "0"
	case *ast.UnaryExpr:
		return "-" + literalToken(n.Operand)
	default:
		panic(fmt.Sprintf("ir: %T is not a literal expression", e))
	}
}
