package semantic

import "github.com/rjpaske/pseudocode/internal/ast"

// analyzeExpression infers and returns the type of e, reporting diagnostics
// for unresolved identifiers, bad operand types, or arity mismatches. It
// returns nil when the type could not be determined, so callers must guard
// against nil before comparing against it.
func (c *checkPass) analyzeExpression(e ast.Expression, ctx *Context) Type {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.IntegerLiteral:
		return Integer
	case *ast.RealLiteral:
		return Real
	case *ast.StringLiteral:
		return String
	case *ast.BooleanLiteral:
		return Boolean
	case *ast.Identifier:
		return c.analyzeIdentifier(n, ctx)
	case *ast.ArrayAccess:
		return c.analyzeArrayAccess(n, ctx)
	case *ast.FieldAccess:
		return c.analyzeFieldAccess(n, ctx)
	case *ast.UnaryExpr:
		return c.analyzeUnary(n, ctx)
	case *ast.BinaryExpr:
		return c.analyzeBinary(n, ctx)
	case *ast.CallExpr:
		return c.analyzeCallExpr(n, ctx)
	default:
		ctx.error(e, "internal: unhandled expression type %T", e)
		return nil
	}
}

func (c *checkPass) analyzeIdentifier(n *ast.Identifier, ctx *Context) Type {
	sym, ok := ctx.Current.Resolve(n.Value)
	if !ok {
		ctx.error(n, "%q is not declared", n.Value)
		return nil
	}
	if sym.Kind != SymVariable && sym.Kind != SymConstant {
		ctx.error(n, "%q is a procedure/function, not a value", n.Value)
		return nil
	}
	if !sym.Assigned {
		ctx.error(n, "%q is used before being assigned a value", n.Value)
	}
	return sym.Type
}

func (c *checkPass) analyzeArrayAccess(n *ast.ArrayAccess, ctx *Context) Type {
	sym, ok := ctx.Current.Resolve(n.Name.Value)
	if !ok {
		ctx.error(n, "%q is not declared", n.Name.Value)
		return nil
	}
	arr, ok := sym.Type.(*ArrayType)
	if !ok {
		ctx.error(n, "%q is not an array", n.Name.Value)
		return nil
	}
	if len(n.Indices) != len(arr.Dims) {
		ctx.error(n, "%q is a %d-dimensional array, got %d index expression(s)", n.Name.Value, len(arr.Dims), len(n.Indices))
	}
	for _, idx := range n.Indices {
		if it := c.analyzeExpression(idx, ctx); it != nil && !sameType(it, Integer) {
			ctx.error(idx, "array index must be INTEGER, got %s", it)
		}
	}
	return arr.Elem
}

func (c *checkPass) analyzeFieldAccess(n *ast.FieldAccess, ctx *Context) Type {
	sym, ok := ctx.Current.Resolve(n.Name.Value)
	if !ok {
		ctx.error(n, "%q is not declared", n.Name.Value)
		return nil
	}
	rec, ok := sym.Type.(*RecordType)
	if !ok {
		ctx.error(n, "%q is not a record", n.Name.Value)
		return nil
	}
	ft, ok := rec.FieldType(n.Field)
	if !ok {
		ctx.error(n, "type %q has no field %q", rec.Name, n.Field)
		return nil
	}
	return ft
}

func (c *checkPass) analyzeUnary(n *ast.UnaryExpr, ctx *Context) Type {
	t := c.analyzeExpression(n.Operand, ctx)
	if t == nil {
		return nil
	}
	switch n.Operator {
	case "-":
		if !sameType(t, Integer) && !sameType(t, Real) {
			ctx.error(n, "unary - requires INTEGER or REAL, got %s", t)
			return nil
		}
		return t
	case "NOT":
		if !sameType(t, Boolean) {
			ctx.error(n, "NOT requires BOOLEAN, got %s", t)
			return nil
		}
		return Boolean
	default:
		ctx.error(n, "internal: unknown unary operator %q", n.Operator)
		return nil
	}
}

func isNumeric(t Type) bool { return sameType(t, Integer) || sameType(t, Real) }

func (c *checkPass) analyzeBinary(n *ast.BinaryExpr, ctx *Context) Type {
	left := c.analyzeExpression(n.Left, ctx)
	right := c.analyzeExpression(n.Right, ctx)
	if left == nil || right == nil {
		return nil
	}

	switch n.Operator {
	case "+":
		if sameType(left, String) && sameType(right, String) {
			return String
		}
		if isNumeric(left) && isNumeric(right) {
			return arithResult(left, right)
		}
		ctx.error(n, "+ requires two STRING or two numeric operands, got %s and %s", left, right)
		return nil
	case "-", "*":
		if isNumeric(left) && isNumeric(right) {
			return arithResult(left, right)
		}
		ctx.error(n, "%s requires numeric operands, got %s and %s", n.Operator, left, right)
		return nil
	case "/":
		if isNumeric(left) && isNumeric(right) {
			return Real
		}
		ctx.error(n, "/ requires numeric operands, got %s and %s", left, right)
		return nil
	case "DIV", "MOD":
		if sameType(left, Integer) && sameType(right, Integer) {
			return Integer
		}
		ctx.error(n, "%s requires INTEGER operands, got %s and %s", n.Operator, left, right)
		return nil
	case "^":
		if isNumeric(left) && isNumeric(right) {
			return Real
		}
		ctx.error(n, "^ requires numeric operands, got %s and %s", left, right)
		return nil
	case "&":
		if !sameType(left, String) || !sameType(right, String) {
			ctx.error(n, "& requires two STRING operands, got %s and %s", left, right)
			return nil
		}
		return String
	case "=", "<>":
		if !comparable(left, right) {
			ctx.error(n, "%s requires operands of the same type, got %s and %s", n.Operator, left, right)
			return nil
		}
		return Boolean
	case "<", ">", "<=", ">=":
		if isNumeric(left) && isNumeric(right) {
			return Boolean
		}
		if sameType(left, String) && sameType(right, String) {
			// Ordering uses host string comparison (spec.md §9 Open Question).
			return Boolean
		}
		ctx.error(n, "%s requires two numeric or two STRING operands, got %s and %s", n.Operator, left, right)
		return nil
	case "AND", "OR":
		if sameType(left, Boolean) && sameType(right, Boolean) {
			return Boolean
		}
		ctx.error(n, "%s requires BOOLEAN operands, got %s and %s", n.Operator, left, right)
		return nil
	default:
		ctx.error(n, "internal: unknown binary operator %q", n.Operator)
		return nil
	}
}

// arithResult applies INTEGER-widens-to-REAL (spec.md §3): the result is
// REAL if either operand is REAL, else INTEGER.
func arithResult(left, right Type) Type {
	if sameType(left, Real) || sameType(right, Real) {
		return Real
	}
	return Integer
}

func comparable(a, b Type) bool {
	if sameType(a, b) {
		return true
	}
	return isNumeric(a) && isNumeric(b)
}

func (c *checkPass) analyzeCallExpr(n *ast.CallExpr, ctx *Context) Type {
	if sig, ok := builtins[n.Name]; ok {
		if len(n.Arguments) != len(sig.Params) {
			ctx.error(n, "%q expects %d argument(s), got %d", n.Name, len(sig.Params), len(n.Arguments))
			for _, a := range n.Arguments {
				c.analyzeExpression(a, ctx)
			}
			return sig.Return
		}
		for i, a := range n.Arguments {
			at := c.analyzeExpression(a, ctx)
			if !sig.Params[i].accepts(at) {
				ctx.error(a, "argument %d of %q has an incompatible type", i+1, n.Name)
			}
		}
		return sig.Return
	}

	sym, ok := ctx.Current.Resolve(n.Name)
	if !ok {
		ctx.error(n, "%q is not declared", n.Name)
		for _, a := range n.Arguments {
			c.analyzeExpression(a, ctx)
		}
		return nil
	}
	sig, ok := sym.Type.(*ProcedureType)
	if !ok || sym.Kind != SymFunction {
		ctx.error(n, "%q is not a function", n.Name)
		return nil
	}
	c.checkArguments(n, n.Name, n.Arguments, sig, ctx)
	return sig.Return
}
