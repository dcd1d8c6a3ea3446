package ir

import (
	"fmt"
	"strings"

	"github.com/rjpaske/pseudocode/internal/ast"
)

// lowerTarget renders an assignment/input target (simple name, indexed
// element, or record field) to the single token form the IR expects on the
// left-hand side of "=".
func (g *Generator) lowerTarget(name *ast.Identifier, indices []ast.Expression, field string) string {
	if indices != nil {
		idx := make([]string, len(indices))
		for i, e := range indices {
			idx[i] = g.lowerExpr(e)
		}
		return fmt.Sprintf("%s[%s]", name.Value, strings.Join(idx, ","))
	}
	if field != "" {
		return fmt.Sprintf("%s.%s", name.Value, field)
	}
	return name.Value
}

func (g *Generator) genAssignment(n *ast.Assignment) {
	v := g.lowerExpr(n.Expr)
	target := g.lowerTarget(n.Name, n.Indices, n.Field)
	g.emit("%s = %s", target, v)
}

func (g *Generator) genOutput(n *ast.Output) {
	if len(n.Expressions) == 1 {
		g.emit("OUTPUT %s", g.lowerExpr(n.Expressions[0]))
		return
	}
	for _, e := range n.Expressions {
		g.emit("OUTPUT_PART %s", g.lowerExpr(e))
	}
	g.emit("OUTPUT_END")
}

func (g *Generator) genInput(n *ast.Input) {
	target := g.lowerTarget(n.Name, n.Indices, n.Field)
	g.emit("INPUT %s", target)
}

func (g *Generator) genOpenFile(n *ast.OpenFile) {
	f := g.lowerExpr(n.FileName)
	g.emit("OPENFILE %s %s", f, n.Mode)
}

// genReadFile targets a plain variable only: the grammar never allows an
// array element or record field as a READFILE destination.
func (g *Generator) genReadFile(n *ast.ReadFile) {
	f := g.lowerExpr(n.FileName)
	g.emit("READFILE %s %s", f, n.Target.Value)
}

func (g *Generator) genWriteFile(n *ast.WriteFile) {
	f := g.lowerExpr(n.FileName)
	v := g.lowerExpr(n.Value)
	g.emit("WRITEFILE %s %s", f, v)
}

func (g *Generator) genCloseFile(n *ast.CloseFile) {
	f := g.lowerExpr(n.FileName)
	g.emit("CLOSEFILE %s", f)
}
