package parser

import (
	"strconv"

	"github.com/rjpaske/pseudocode/internal/ast"
	"github.com/rjpaske/pseudocode/internal/token"
)

// Precedence levels, lowest to highest (spec.md §4.2):
//
//	OR
//	AND
//	equality/relational: = <> < > <= >=
//	additive: + - &
//	multiplicative: * / DIV MOD ^
//	unary: - NOT
//	primary
const (
	LOWEST = iota
	OR_PREC
	AND_PREC
	RELATIONAL
	ADDITIVE
	MULTIPLICATIVE
	UNARY
)

var precedences = map[token.Kind]int{
	token.OR:     OR_PREC,
	token.AND:    AND_PREC,
	token.EQ:     RELATIONAL,
	token.NEQ:    RELATIONAL,
	token.LT:     RELATIONAL,
	token.GT:     RELATIONAL,
	token.LTE:    RELATIONAL,
	token.GTE:    RELATIONAL,
	token.PLUS:   ADDITIVE,
	token.MINUS:  ADDITIVE,
	token.AMP:    ADDITIVE,
	token.STAR:   MULTIPLICATIVE,
	token.SLASH:  MULTIPLICATIVE,
	token.DIV:    MULTIPLICATIVE,
	token.MOD:    MULTIPLICATIVE,
	token.CARET:  MULTIPLICATIVE,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.cur().Kind]; ok {
		return prec
	}
	return LOWEST
}

// parseExpression implements precedence-climbing: it parses a unary/primary
// term, then repeatedly folds in binary operators whose precedence exceeds
// the caller's minimum.
func (p *Parser) parseExpression(minPrecedence int) (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		prec := p.peekPrecedence()
		if prec == LOWEST || prec <= minPrecedence {
			break
		}
		opTok := p.advance()
		right, err := p.parseExpression(prec)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Token: opTok, Left: left, Operator: opTok.Lexeme, Right: right}
	}

	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.cur().Kind {
	case token.MINUS:
		tok := p.advance()
		operand, err := p.parseExpression(UNARY)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: tok, Operator: "-", Operand: operand}, nil
	case token.NOT:
		tok := p.advance()
		operand, err := p.parseExpression(UNARY)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: tok, Operator: "NOT", Operand: operand}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.INTEGER:
		p.advance()
		return &ast.IntegerLiteral{Token: tok, Value: parseIntLiteral(tok.Lexeme)}, nil
	case token.REAL:
		p.advance()
		return &ast.RealLiteral{Token: tok, Value: parseRealLiteral(tok.Lexeme)}, nil
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Lexeme}, nil
	case token.TRUE:
		p.advance()
		return &ast.BooleanLiteral{Token: tok, Value: true}, nil
	case token.FALSE:
		p.advance()
		return &ast.BooleanLiteral{Token: tok, Value: false}, nil
	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.IDENT:
		return p.parseIdentifierExpr()
	default:
		return nil, newParseErr(tok.Pos, "unexpected token %s %q in expression", tok.Kind, tok.Lexeme)
	}
}

// parseIdentifierExpr parses an identifier and any trailing suffix:
// "[i]"/"[i,j]" for array access, ".field" for record access, or "(args)"
// for a function-style call. A bare identifier is returned unsuffixed.
func (p *Parser) parseIdentifierExpr() (ast.Expression, error) {
	tok := p.advance()
	name := &ast.Identifier{Token: tok, Value: tok.Lexeme}

	switch p.cur().Kind {
	case token.LBRACKET:
		p.advance()
		idx1, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		indices := []ast.Expression{idx1}
		if p.at(token.COMMA) {
			p.advance()
			idx2, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			indices = append(indices, idx2)
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.ArrayAccess{Token: tok, Name: name, Indices: indices}, nil
	case token.DOT:
		p.advance()
		fieldTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &ast.FieldAccess{Token: tok, Name: name, Field: fieldTok.Lexeme}, nil
	case token.LPAREN:
		args, err := p.parseCallArguments()
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Token: tok, Name: name.Value, Arguments: args}, nil
	default:
		return name, nil
	}
}

func (p *Parser) parseCallArguments() ([]ast.Expression, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for !p.at(token.RPAREN) {
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func parseIntLiteral(lexeme string) int64 {
	v, _ := strconv.ParseInt(lexeme, 10, 64)
	return v
}

func parseRealLiteral(lexeme string) float64 {
	v, _ := strconv.ParseFloat(lexeme, 64)
	return v
}
