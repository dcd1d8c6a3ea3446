package ir

import (
	"fmt"
	"strings"

	"github.com/rjpaske/pseudocode/internal/ast"
	"github.com/rjpaske/pseudocode/internal/semantic"
)

// irOperator maps an AST operator spelling to its IR counterpart (spec.md
// §6's IR operator set differs from the source syntax for four of them).
var irOperator = map[string]string{
	"=":   "==",
	"<>":  "!=",
	"AND": "&&",
	"OR":  "||",
}

func mapOperator(op string) string {
	if mapped, ok := irOperator[op]; ok {
		return mapped
	}
	return op
}

// lowerExpr emits whatever instructions are needed to compute e and returns
// the operand token (literal, variable, access, or temporary) that refers
// to its value.
func (g *Generator) lowerExpr(e ast.Expression) string {
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
	case *ast.Identifier:
		return n.Value
	case *ast.ArrayAccess:
		return g.lowerAccessRead(g.lowerArrayAccess(n))
	case *ast.FieldAccess:
		return g.lowerAccessRead(fmt.Sprintf("%s.%s", n.Name.Value, n.Field))
	case *ast.UnaryExpr:
		return g.lowerUnary(n)
	case *ast.BinaryExpr:
		return g.lowerBinary(n)
	case *ast.CallExpr:
		return g.lowerCallExpr(n)
	default:
		panic(fmt.Sprintf("ir: unhandled expression type %T", e))
	}
}

func (g *Generator) lowerArrayAccess(n *ast.ArrayAccess) string {
	idx := make([]string, len(n.Indices))
	for i, e := range n.Indices {
		idx[i] = g.lowerExpr(e)
	}
	return fmt.Sprintf("%s[%s]", n.Name.Value, strings.Join(idx, ","))
}

// lowerAccessRead reads an array-element or field access into a temporary
// ("Tn = name[i,j]" / "Tn = name.field", per spec.md §6's "Tn = <access>"
// grammar line) so a nested access token is never embedded raw inside
// another operand.
func (g *Generator) lowerAccessRead(access string) string {
	t := g.newTemp()
	g.emit("%s = %s", t, access)
	return t
}

func (g *Generator) lowerUnary(n *ast.UnaryExpr) string {
	operand := g.lowerExpr(n.Operand)
	t := g.newTemp()
	switch n.Operator {
	case "-":
		g.emit("%s = 0 - %s", t, operand)
	case "NOT":
		g.emit("%s = %s == 0", t, operand)
	default:
		panic(fmt.Sprintf("ir: unknown unary operator %q", n.Operator))
	}
	return t
}

func (g *Generator) lowerBinary(n *ast.BinaryExpr) string {
	left := g.lowerExpr(n.Left)
	right := g.lowerExpr(n.Right)
	t := g.newTemp()
	g.emit("%s = %s %s %s", t, left, mapOperator(n.Operator), right)
	return t
}

func (g *Generator) lowerCallExpr(n *ast.CallExpr) string {
	args := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		args[i] = g.lowerExpr(a)
	}

	if semantic.IsBuiltin(n.Name) {
		t := g.newTemp()
		if len(args) == 0 {
			g.emit("%s = BUILTIN %s", t, n.Name)
		} else {
			g.emit("%s = BUILTIN %s %s", t, n.Name, strings.Join(args, " "))
		}
		return t
	}

	g.genCallSite(n.Name, n.Arguments, true)
	t := g.newTemp()
	g.emit("%s = RETVAL", t)
	return t
}
