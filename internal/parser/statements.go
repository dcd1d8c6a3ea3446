package parser

import (
	"github.com/rjpaske/pseudocode/internal/ast"
	"github.com/rjpaske/pseudocode/internal/token"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Kind {
	case token.DECLARE:
		return p.parseDeclare()
	case token.CONSTANT:
		return p.parseConstant()
	case token.TYPE:
		return p.parseTypeDef()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.REPEAT:
		return p.parseRepeat()
	case token.CASE:
		return p.parseCase()
	case token.PROCEDURE:
		return p.parseProcedure()
	case token.FUNCTION:
		return p.parseFunction()
	case token.CALL:
		return p.parseCall()
	case token.RETURN:
		return p.parseReturn()
	case token.OUTPUT:
		return p.parseOutput()
	case token.INPUT:
		return p.parseInput()
	case token.OPENFILE:
		return p.parseOpenFile()
	case token.READFILE:
		return p.parseReadFile()
	case token.WRITEFILE:
		return p.parseWriteFile()
	case token.CLOSEFILE:
		return p.parseCloseFile()
	case token.IDENT:
		return p.parseAssignment()
	default:
		return nil, newParseErr(p.cur().Pos, "unexpected token %s %q", p.cur().Kind, p.cur().Lexeme)
	}
}

// parseTypeName consumes a type-name token: a builtin type keyword or a
// bare identifier naming a previously declared record type.
func (p *Parser) parseTypeName() (ast.TypeName, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.TINTEGER, token.TREAL, token.TSTRING, token.TBOOLEAN, token.TCHAR:
		p.advance()
		return ast.TypeName(tok.Lexeme), nil
	case token.IDENT:
		p.advance()
		return ast.TypeName(tok.Lexeme), nil
	default:
		return "", newParseErr(tok.Pos, "expected a type name, got %s %q", tok.Kind, tok.Lexeme)
	}
}

func (p *Parser) parseDimension() (ast.Dimension, error) {
	lowTok, err := p.expect(token.INTEGER)
	if err != nil {
		return ast.Dimension{}, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return ast.Dimension{}, err
	}
	highTok, err := p.expect(token.INTEGER)
	if err != nil {
		return ast.Dimension{}, err
	}
	low := parseIntLiteral(lowTok.Lexeme)
	high := parseIntLiteral(highTok.Lexeme)
	return ast.Dimension{Start: int(low), End: int(high)}, nil
}

func (p *Parser) parseDeclare() (ast.Statement, error) {
	tok := p.advance() // DECLARE
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}

	if p.at(token.ARRAY) {
		p.advance()
		if _, err := p.expect(token.LBRACKET); err != nil {
			return nil, err
		}
		dim1, err := p.parseDimension()
		if err != nil {
			return nil, err
		}
		dims := []ast.Dimension{dim1}
		if p.at(token.COMMA) {
			p.advance()
			dim2, err := p.parseDimension()
			if err != nil {
				return nil, err
			}
			dims = append(dims, dim2)
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.OF); err != nil {
			return nil, err
		}
		elemType, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		return &ast.Declare{
			Token:           tok,
			Name:            &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
			DataType:        elemType,
			ArrayDimensions: dims,
		}, nil
	}

	dataType, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	return &ast.Declare{
		Token:    tok,
		Name:     &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
		DataType: dataType,
	}, nil
}

func (p *Parser) parseConstant() (ast.Statement, error) {
	tok := p.advance() // CONSTANT
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}

	negate := false
	if p.at(token.MINUS) {
		negate = true
		p.advance()
	}

	litTok := p.cur()
	var value ast.Expression
	switch litTok.Kind {
	case token.INTEGER:
		p.advance()
		v := parseIntLiteral(litTok.Lexeme)
		if negate {
			v = -v
		}
		value = &ast.IntegerLiteral{Token: litTok, Value: v}
	case token.REAL:
		p.advance()
		v := parseRealLiteral(litTok.Lexeme)
		if negate {
			v = -v
		}
		value = &ast.RealLiteral{Token: litTok, Value: v}
	case token.STRING:
		p.advance()
		if negate {
			return nil, newParseErr(litTok.Pos, "cannot negate a string literal")
		}
		value = &ast.StringLiteral{Token: litTok, Value: litTok.Lexeme}
	case token.TRUE, token.FALSE:
		p.advance()
		if negate {
			return nil, newParseErr(litTok.Pos, "cannot negate a boolean literal")
		}
		value = &ast.BooleanLiteral{Token: litTok, Value: litTok.Kind == token.TRUE}
	default:
		return nil, newParseErr(litTok.Pos, "CONSTANT requires an immediate literal, got %s %q", litTok.Kind, litTok.Lexeme)
	}

	return &ast.Constant{Token: tok, Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}, Value: value}, nil
}

func (p *Parser) parseTypeDef() (ast.Statement, error) {
	tok := p.advance() // TYPE
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	var fields []ast.TypeField
	for !p.at(token.ENDTYPE) {
		if _, err := p.expect(token.DECLARE); err != nil {
			return nil, err
		}
		fieldTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		fieldType, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.TypeField{Name: fieldTok.Lexeme, DataType: fieldType})
	}
	p.advance() // ENDTYPE
	return &ast.TypeDef{Token: tok, Name: nameTok.Lexeme, Fields: fields}, nil
}

// parseAssignmentTarget parses "name", "name[i(,j)]", or "name.field".
func (p *Parser) parseAssignmentTarget() (*ast.Identifier, []ast.Expression, string, error) {
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, nil, "", err
	}
	name := &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}

	if p.at(token.LBRACKET) {
		p.advance()
		idx1, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, nil, "", err
		}
		indices := []ast.Expression{idx1}
		if p.at(token.COMMA) {
			p.advance()
			idx2, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, nil, "", err
			}
			indices = append(indices, idx2)
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, nil, "", err
		}
		return name, indices, "", nil
	}

	if p.at(token.DOT) {
		p.advance()
		fieldTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, nil, "", err
		}
		return name, nil, fieldTok.Lexeme, nil
	}

	return name, nil, "", nil
}

func (p *Parser) parseAssignment() (ast.Statement, error) {
	tok := p.cur()
	name, indices, field, err := p.parseAssignmentTarget()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Token: tok, Name: name, Indices: indices, Field: field, Expr: expr}, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	tok := p.advance() // IF
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	thenBody, err := p.parseBlock(token.ELSE, token.ENDIF)
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Statement
	if p.at(token.ELSE) {
		p.advance()
		elseBody, err = p.parseBlock(token.ENDIF)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ENDIF); err != nil {
		return nil, err
	}
	return &ast.If{Token: tok, Condition: cond, Then: thenBody, Else: elseBody}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	tok := p.advance() // WHILE
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(token.ENDWHILE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ENDWHILE); err != nil {
		return nil, err
	}
	return &ast.While{Token: tok, Condition: cond, Body: body}, nil
}

func (p *Parser) parseRepeat() (ast.Statement, error) {
	tok := p.advance() // REPEAT
	body, err := p.parseBlock(token.UNTIL)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.UNTIL); err != nil {
		return nil, err
	}
	until, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.Repeat{Token: tok, Body: body, Until: until}, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	tok := p.advance() // FOR
	varTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	start, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.TO); err != nil {
		return nil, err
	}
	end, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	var step ast.Expression
	if p.at(token.STEP) {
		p.advance()
		step, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock(token.NEXT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEXT); err != nil {
		return nil, err
	}
	// The loop variable name after NEXT is optional; consume it if present
	// and matching (spec.md §4.2).
	if p.at(token.IDENT) && p.cur().Lexeme == varTok.Lexeme {
		p.advance()
	}
	return &ast.For{
		Token:   tok,
		LoopVar: &ast.Identifier{Token: varTok, Value: varTok.Lexeme},
		Start:   start,
		End:     end,
		Step:    step,
		Body:    body,
	}, nil
}

// peekIsBranchStart looks ahead, without permanently consuming tokens, to
// see whether the upcoming tokens form "value(, value)* :" — the heuristic
// that ends the current CASE branch body (spec.md §4.2). Parser state is
// always restored before returning.
func (p *Parser) peekIsBranchStart() bool {
	mark := p.mark()
	defer p.reset(mark)

	if !p.consumeCaseValueTokens() {
		return false
	}
	for p.at(token.COMMA) {
		p.advance()
		if !p.consumeCaseValueTokens() {
			return false
		}
	}
	return p.at(token.COLON)
}

// consumeCaseValueTokens advances past one CASE value's tokens (a literal, an
// identifier, or a unary-minus followed by a numeric literal) and reports whether it
// found a well-formed value.
func (p *Parser) consumeCaseValueTokens() bool {
	if !isCaseValueStart(p.cur().Kind) {
		return false
	}
	if p.cur().Kind == token.MINUS {
		p.advance()
		if p.cur().Kind != token.INTEGER && p.cur().Kind != token.REAL {
			return false
		}
	}
	p.advance()
	return true
}

func isCaseValueStart(k token.Kind) bool {
	switch k {
	case token.INTEGER, token.REAL, token.STRING, token.TRUE, token.FALSE, token.IDENT, token.MINUS:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCaseValue() (ast.Expression, error) {
	if p.at(token.MINUS) {
		tok := p.advance()
		operand, err := p.parseExpression(UNARY)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: tok, Operator: "-", Operand: operand}, nil
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseCase() (ast.Statement, error) {
	tok := p.advance() // CASE
	if _, err := p.expect(token.OF); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	var branches []ast.CaseBranch
	var otherwise []ast.Statement

	for !p.at(token.ENDCASE) {
		if p.at(token.OTHERWISE) {
			p.advance()
			if p.at(token.COLON) {
				p.advance()
			}
			otherwise, err = p.parseCaseBranchBody()
			if err != nil {
				return nil, err
			}
			break
		}

		val, err := p.parseCaseValue()
		if err != nil {
			return nil, err
		}
		values := []ast.Expression{val}
		for p.at(token.COMMA) {
			p.advance()
			v, err := p.parseCaseValue()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		body, err := p.parseCaseBranchBody()
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.CaseBranch{Values: values, Body: body})
	}

	if _, err := p.expect(token.ENDCASE); err != nil {
		return nil, err
	}

	return &ast.Case{Token: tok, Expr: expr, Branches: branches, OtherwiseBranch: otherwise}, nil
}

// parseCaseBranchBody parses statements until ENDCASE, OTHERWISE, or the
// branch-termination heuristic fires.
func (p *Parser) parseCaseBranchBody() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		if p.at(token.ENDCASE) || p.at(token.OTHERWISE) {
			return stmts, nil
		}
		if p.peekIsBranchStart() {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseParameterList() ([]ast.Parameter, error) {
	var params []ast.Parameter
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	for !p.at(token.RPAREN) {
		mode := ast.ByVal
		if p.at(token.BYREF) {
			mode = ast.ByRef
			p.advance()
		} else if p.at(token.BYVAL) {
			p.advance()
		}
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		dataType, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Parameter{Name: nameTok.Lexeme, DataType: dataType, Mode: mode})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseProcedure() (ast.Statement, error) {
	tok := p.advance() // PROCEDURE
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(token.ENDPROCEDURE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ENDPROCEDURE); err != nil {
		return nil, err
	}
	return &ast.Procedure{Token: tok, Name: nameTok.Lexeme, Parameters: params, Body: body}, nil
}

func (p *Parser) parseFunction() (ast.Statement, error) {
	tok := p.advance() // FUNCTION
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RETURNS); err != nil {
		return nil, err
	}
	returnType, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(token.ENDFUNCTION)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ENDFUNCTION); err != nil {
		return nil, err
	}
	return &ast.Function{Token: tok, Name: nameTok.Lexeme, Parameters: params, ReturnType: returnType, Body: body}, nil
}

func (p *Parser) parseCall() (ast.Statement, error) {
	tok := p.advance() // CALL
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.at(token.LPAREN) {
		args, err = p.parseCallArguments()
		if err != nil {
			return nil, err
		}
	}
	return &ast.Call{Token: tok, Name: nameTok.Lexeme, Arguments: args}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	tok := p.advance() // RETURN
	if p.at(token.EOF) || isBlockTerminator(p.cur().Kind) {
		return &ast.Return{Token: tok}, nil
	}
	val, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.Return{Token: tok, Value: val}, nil
}

func isBlockTerminator(k token.Kind) bool {
	switch k {
	case token.ENDIF, token.ELSE, token.ENDWHILE, token.NEXT, token.UNTIL,
		token.ENDCASE, token.OTHERWISE, token.ENDPROCEDURE, token.ENDFUNCTION:
		return true
	default:
		return false
	}
}

func (p *Parser) parseOutput() (ast.Statement, error) {
	tok := p.advance() // OUTPUT
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	exprs := []ast.Expression{expr}
	for p.at(token.COMMA) {
		p.advance()
		e, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return &ast.Output{Token: tok, Expressions: exprs}, nil
}

func (p *Parser) parseInput() (ast.Statement, error) {
	tok := p.advance() // INPUT
	name, indices, field, err := p.parseAssignmentTarget()
	if err != nil {
		return nil, err
	}
	return &ast.Input{Token: tok, Name: name, Indices: indices, Field: field}, nil
}

func (p *Parser) parseOpenFile() (ast.Statement, error) {
	tok := p.advance() // OPENFILE
	fname, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FOR); err != nil {
		return nil, err
	}
	var mode ast.FileMode
	switch p.cur().Kind {
	case token.READ:
		mode = ast.FileRead
	case token.WRITE:
		mode = ast.FileWrite
	case token.APPEND:
		mode = ast.FileAppend
	default:
		return nil, newParseErr(p.cur().Pos, "expected READ, WRITE, or APPEND, got %q", p.cur().Lexeme)
	}
	p.advance()
	return &ast.OpenFile{Token: tok, FileName: fname, Mode: mode}, nil
}

func (p *Parser) parseReadFile() (ast.Statement, error) {
	tok := p.advance() // READFILE
	fname, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	varTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.ReadFile{Token: tok, FileName: fname, Target: &ast.Identifier{Token: varTok, Value: varTok.Lexeme}}, nil
}

func (p *Parser) parseWriteFile() (ast.Statement, error) {
	tok := p.advance() // WRITEFILE
	fname, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	val, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.WriteFile{Token: tok, FileName: fname, Value: val}, nil
}

func (p *Parser) parseCloseFile() (ast.Statement, error) {
	tok := p.advance() // CLOSEFILE
	fname, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.CloseFile{Token: tok, FileName: fname}, nil
}
