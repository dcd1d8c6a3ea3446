// Package ast defines the Abstract Syntax Tree node types produced by the
// parser: a tree of tagged variants, no parent pointers (spec.md §9).
package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rjpaske/pseudocode/internal/token"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	String() string
	Pos() token.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Dimension is one bound pair of an array declaration, e.g. "1:10".
type Dimension struct {
	Start int
	End   int
}

// Program is the root node: a flat sequence of top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// ---- Expressions -----------------------------------------------------

type Identifier struct {
	Token token.Token
	Value string
}

func (*Identifier) expressionNode()         {}
func (i *Identifier) Pos() token.Position   { return i.Token.Pos }
func (i *Identifier) String() string        { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (*IntegerLiteral) expressionNode()       {}
func (n *IntegerLiteral) Pos() token.Position { return n.Token.Pos }
func (n *IntegerLiteral) String() string      { return fmt.Sprintf("%d", n.Value) }

type RealLiteral struct {
	Token token.Token
	Value float64
}

func (*RealLiteral) expressionNode()       {}
func (n *RealLiteral) Pos() token.Position { return n.Token.Pos }
func (n *RealLiteral) String() string      { return fmt.Sprintf("%g", n.Value) }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (*StringLiteral) expressionNode()       {}
func (n *StringLiteral) Pos() token.Position { return n.Token.Pos }
func (n *StringLiteral) String() string      { return fmt.Sprintf("%q", n.Value) }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (*BooleanLiteral) expressionNode()       {}
func (n *BooleanLiteral) Pos() token.Position { return n.Token.Pos }
func (n *BooleanLiteral) String() string      { return fmt.Sprintf("%v", n.Value) }

// ArrayAccess indexes a declared array by one or two integer expressions.
type ArrayAccess struct {
	Token   token.Token
	Name    *Identifier
	Indices []Expression
}

func (*ArrayAccess) expressionNode()       {}
func (n *ArrayAccess) Pos() token.Position { return n.Token.Pos }
func (n *ArrayAccess) String() string {
	parts := make([]string, len(n.Indices))
	for i, e := range n.Indices {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%s[%s]", n.Name.Value, strings.Join(parts, ", "))
}

// FieldAccess reads a field of a record-typed variable.
type FieldAccess struct {
	Token token.Token
	Name  *Identifier
	Field string
}

func (*FieldAccess) expressionNode()       {}
func (n *FieldAccess) Pos() token.Position { return n.Token.Pos }
func (n *FieldAccess) String() string      { return fmt.Sprintf("%s.%s", n.Name.Value, n.Field) }

type BinaryExpr struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (*BinaryExpr) expressionNode()       {}
func (n *BinaryExpr) Pos() token.Position { return n.Token.Pos }
func (n *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), n.Operator, n.Right.String())
}

type UnaryExpr struct {
	Token    token.Token
	Operator string
	Operand  Expression
}

func (*UnaryExpr) expressionNode()       {}
func (n *UnaryExpr) Pos() token.Position { return n.Token.Pos }
func (n *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", n.Operator, n.Operand.String())
}

// CallExpr is a function call used in expression position (built-in or
// user-defined function).
type CallExpr struct {
	Token     token.Token
	Name      string
	Arguments []Expression
}

func (*CallExpr) expressionNode()       {}
func (n *CallExpr) Pos() token.Position { return n.Token.Pos }
func (n *CallExpr) String() string {
	parts := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(parts, ", "))
}
