package semantic

import "github.com/rjpaske/pseudocode/internal/ast"

// checkPass performs the full, order-sensitive walk: every statement is
// checked against the symbol table built up so far, with procedure and
// function signatures already available from signaturePass.
type checkPass struct{}

func (*checkPass) Name() string { return "check" }

func (c *checkPass) Run(program *ast.Program, ctx *Context) error {
	for _, stmt := range program.Statements {
		c.analyzeStatement(stmt, ctx)
	}
	return nil
}

func (c *checkPass) analyzeBlock(stmts []ast.Statement, ctx *Context) {
	for _, s := range stmts {
		c.analyzeStatement(s, ctx)
	}
}

func (c *checkPass) analyzeStatement(stmt ast.Statement, ctx *Context) {
	switch n := stmt.(type) {
	case *ast.Declare:
		c.analyzeDeclare(n, ctx)
	case *ast.Constant:
		c.analyzeConstant(n, ctx)
	case *ast.TypeDef:
		// Already registered by signaturePass; field types were checked there.
	case *ast.Assignment:
		c.analyzeAssignment(n, ctx)
	case *ast.Output:
		c.analyzeOutput(n, ctx)
	case *ast.Input:
		c.analyzeInput(n, ctx)
	case *ast.If:
		c.analyzeIf(n, ctx)
	case *ast.While:
		c.analyzeWhile(n, ctx)
	case *ast.For:
		c.analyzeFor(n, ctx)
	case *ast.Repeat:
		c.analyzeRepeat(n, ctx)
	case *ast.Case:
		c.analyzeCase(n, ctx)
	case *ast.Procedure:
		c.analyzeProcedure(n, ctx)
	case *ast.Function:
		c.analyzeFunction(n, ctx)
	case *ast.Call:
		c.analyzeCall(n, ctx)
	case *ast.Return:
		c.analyzeReturn(n, ctx)
	case *ast.OpenFile:
		c.analyzeOpenFile(n, ctx)
	case *ast.ReadFile:
		c.analyzeReadFile(n, ctx)
	case *ast.WriteFile:
		c.analyzeWriteFile(n, ctx)
	case *ast.CloseFile:
		c.analyzeCloseFile(n, ctx)
	default:
		ctx.error(stmt, "internal: unhandled statement type %T", stmt)
	}
}

func (c *checkPass) analyzeDeclare(n *ast.Declare, ctx *Context) {
	var t Type
	if n.ArrayDimensions != nil {
		elem, err := resolveTypeName(n.DataType, ctx.TypeDefs)
		if err != nil {
			ctx.error(n, "%v", err)
			return
		}
		for _, d := range n.ArrayDimensions {
			if d.End < d.Start {
				ctx.error(n, "array bound %d:%d is empty (end must not be less than start)", d.Start, d.End)
			}
		}
		t = &ArrayType{Elem: elem, Dims: n.ArrayDimensions}
	} else {
		resolved, err := resolveTypeName(n.DataType, ctx.TypeDefs)
		if err != nil {
			ctx.error(n, "%v", err)
			return
		}
		t = resolved
	}
	if !ctx.Current.DefineLocal(&Symbol{Name: n.Name.Value, Kind: SymVariable, Type: t}) {
		ctx.error(n, "%q is already declared in this scope", n.Name.Value)
	}
}

func (c *checkPass) analyzeConstant(n *ast.Constant, ctx *Context) {
	t := c.analyzeExpression(n.Value, ctx)
	if !ctx.Current.DefineLocal(&Symbol{Name: n.Name.Value, Kind: SymConstant, Type: t, Assigned: true}) {
		ctx.error(n, "%q is already declared in this scope", n.Name.Value)
	}
}

// resolveTarget resolves the variable an Assignment/Input statement writes
// to, reporting the type of the storage location (element or field type
// when indexed/qualified), or nil if it could not be resolved.
func (c *checkPass) resolveTarget(name *ast.Identifier, indices []ast.Expression, field string, ctx *Context) Type {
	sym, ok := ctx.Current.Resolve(name.Value)
	if !ok {
		ctx.error(name, "%q is not declared", name.Value)
		return nil
	}
	if sym.Kind != SymVariable {
		ctx.error(name, "%q is not a variable", name.Value)
		return nil
	}

	if indices != nil {
		arr, ok := sym.Type.(*ArrayType)
		if !ok {
			ctx.error(name, "%q is not an array", name.Value)
			return nil
		}
		if len(indices) != len(arr.Dims) {
			ctx.error(name, "%q is a %d-dimensional array, got %d index expression(s)", name.Value, len(arr.Dims), len(indices))
		}
		for _, idx := range indices {
			if it := c.analyzeExpression(idx, ctx); it != nil && !sameType(it, Integer) {
				ctx.error(idx, "array index must be INTEGER, got %s", it)
			}
		}
		sym.Assigned = true
		return arr.Elem
	}

	if field != "" {
		rec, ok := sym.Type.(*RecordType)
		if !ok {
			ctx.error(name, "%q is not a record", name.Value)
			return nil
		}
		ft, ok := rec.FieldType(field)
		if !ok {
			ctx.error(name, "type %q has no field %q", rec.Name, field)
			return nil
		}
		sym.Assigned = true
		return ft
	}

	sym.Assigned = true
	return sym.Type
}

func (c *checkPass) analyzeAssignment(n *ast.Assignment, ctx *Context) {
	target := c.resolveTarget(n.Name, n.Indices, n.Field, ctx)
	valueType := c.analyzeExpression(n.Expr, ctx)
	if target != nil && valueType != nil && !assignable(target, valueType) {
		ctx.error(n, "cannot assign %s to variable of type %s", valueType, target)
	}
}

func (c *checkPass) analyzeOutput(n *ast.Output, ctx *Context) {
	for _, e := range n.Expressions {
		c.analyzeExpression(e, ctx)
	}
}

func (c *checkPass) analyzeInput(n *ast.Input, ctx *Context) {
	c.resolveTarget(n.Name, n.Indices, n.Field, ctx)
}

func (c *checkPass) requireBoolean(e ast.Expression, ctx *Context, context string) {
	t := c.analyzeExpression(e, ctx)
	if t != nil && !sameType(t, Boolean) {
		ctx.error(e, "%s must be BOOLEAN, got %s", context, t)
	}
}

func (c *checkPass) analyzeIf(n *ast.If, ctx *Context) {
	c.requireBoolean(n.Condition, ctx, "IF condition")
	c.analyzeBlock(n.Then, ctx)
	c.analyzeBlock(n.Else, ctx)
}

func (c *checkPass) analyzeWhile(n *ast.While, ctx *Context) {
	c.requireBoolean(n.Condition, ctx, "WHILE condition")
	ctx.LoopDepth++
	c.analyzeBlock(n.Body, ctx)
	ctx.LoopDepth--
}

func (c *checkPass) analyzeRepeat(n *ast.Repeat, ctx *Context) {
	ctx.LoopDepth++
	c.analyzeBlock(n.Body, ctx)
	ctx.LoopDepth--
	c.requireBoolean(n.Until, ctx, "UNTIL condition")
}

func (c *checkPass) analyzeFor(n *ast.For, ctx *Context) {
	sym, ok := ctx.Current.Resolve(n.LoopVar.Value)
	if !ok {
		ctx.error(n.LoopVar, "loop variable %q is not declared", n.LoopVar.Value)
	} else if !sameType(sym.Type, Integer) {
		ctx.error(n.LoopVar, "loop variable %q must be INTEGER, got %s", n.LoopVar.Value, sym.Type)
	} else {
		sym.Assigned = true
	}

	for _, bound := range []ast.Expression{n.Start, n.End} {
		if t := c.analyzeExpression(bound, ctx); t != nil && !sameType(t, Integer) {
			ctx.error(bound, "FOR bound must be INTEGER, got %s", t)
		}
	}
	if n.Step != nil {
		if t := c.analyzeExpression(n.Step, ctx); t != nil && !sameType(t, Integer) {
			ctx.error(n.Step, "STEP value must be INTEGER, got %s", t)
		}
		// A literal zero step never terminates; spec.md §9 leaves this an
		// Open Question. It is accepted here without any diagnostic, so the
		// VM's runtime step counter remains the single source of truth for
		// loop termination.
	}

	ctx.LoopDepth++
	c.analyzeBlock(n.Body, ctx)
	ctx.LoopDepth--
}

func (c *checkPass) analyzeCase(n *ast.Case, ctx *Context) {
	selectorType := c.analyzeExpression(n.Expr, ctx)
	for _, branch := range n.Branches {
		for _, v := range branch.Values {
			vt := c.analyzeExpression(v, ctx)
			if selectorType != nil && vt != nil && !comparable(selectorType, vt) {
				ctx.error(v, "CASE branch value type %s does not match selector type %s", vt, selectorType)
			}
		}
		c.analyzeBlock(branch.Body, ctx)
	}
	c.analyzeBlock(n.OtherwiseBranch, ctx)
}

func (c *checkPass) enterProcScope(params []ast.Parameter, ctx *Context) {
	ctx.pushScope()
	for _, p := range params {
		t, err := resolveTypeName(p.DataType, ctx.TypeDefs)
		if err != nil {
			t = nil
		}
		ctx.Current.DefineLocal(&Symbol{Name: p.Name, Kind: SymVariable, Type: t, Assigned: true})
	}
}

func (c *checkPass) analyzeProcedure(n *ast.Procedure, ctx *Context) {
	sym, _ := ctx.Globals.ResolveLocal(n.Name)
	var sig *ProcedureType
	if sym != nil {
		sig, _ = sym.Type.(*ProcedureType)
	}

	c.enterProcScope(n.Parameters, ctx)
	prevProc := ctx.CurrentProc
	ctx.CurrentProc = sig
	c.analyzeBlock(n.Body, ctx)
	ctx.CurrentProc = prevProc
	ctx.popScope()
}

func (c *checkPass) analyzeFunction(n *ast.Function, ctx *Context) {
	sym, _ := ctx.Globals.ResolveLocal(n.Name)
	var sig *ProcedureType
	if sym != nil {
		sig, _ = sym.Type.(*ProcedureType)
	}

	c.enterProcScope(n.Parameters, ctx)
	prevProc := ctx.CurrentProc
	ctx.CurrentProc = sig
	c.analyzeBlock(n.Body, ctx)
	if !containsReturn(n.Body) {
		ctx.error(n, "function %q has no RETURN statement", n.Name)
	}
	ctx.CurrentProc = prevProc
	ctx.popScope()
}

// containsReturn reports whether body contains a RETURN statement anywhere,
// including nested blocks. It does not attempt full reachability analysis
// (spec.md §9 leaves exhaustive path-coverage of RETURN unspecified).
func containsReturn(body []ast.Statement) bool {
	for _, s := range body {
		switch n := s.(type) {
		case *ast.Return:
			return true
		case *ast.If:
			if containsReturn(n.Then) || containsReturn(n.Else) {
				return true
			}
		case *ast.While:
			if containsReturn(n.Body) {
				return true
			}
		case *ast.Repeat:
			if containsReturn(n.Body) {
				return true
			}
		case *ast.For:
			if containsReturn(n.Body) {
				return true
			}
		case *ast.Case:
			for _, b := range n.Branches {
				if containsReturn(b.Body) {
					return true
				}
			}
			if containsReturn(n.OtherwiseBranch) {
				return true
			}
		}
	}
	return false
}

func (c *checkPass) analyzeReturn(n *ast.Return, ctx *Context) {
	if ctx.CurrentProc == nil {
		ctx.error(n, "RETURN is only valid inside a PROCEDURE or FUNCTION")
		return
	}
	if ctx.CurrentProc.Return == nil {
		if n.Value != nil {
			ctx.error(n, "a procedure's RETURN must not carry a value")
		}
		return
	}
	if n.Value == nil {
		ctx.error(n, "function must RETURN a value")
		return
	}
	// spec.md §9 leaves RETURN-value/RETURNS-type checking unspecified; we
	// still check it here since the type information is already on hand
	// and a mismatch is unambiguously a programmer error.
	vt := c.analyzeExpression(n.Value, ctx)
	if vt != nil && !assignable(ctx.CurrentProc.Return, vt) {
		ctx.error(n, "RETURN value type %s does not match declared return type %s", vt, ctx.CurrentProc.Return)
	}
}

func (c *checkPass) analyzeCall(n *ast.Call, ctx *Context) {
	sym, ok := ctx.Current.Resolve(n.Name)
	if !ok {
		ctx.error(n, "%q is not declared", n.Name)
		return
	}
	sig, ok := sym.Type.(*ProcedureType)
	if !ok || sym.Kind != SymProcedure {
		ctx.error(n, "%q is not a procedure", n.Name)
		return
	}
	c.checkArguments(n, n.Name, n.Arguments, sig, ctx)
}

// checkArguments validates a call's argument count, types, and that BYREF
// arguments are assignable variables (spec.md §9).
func (c *checkPass) checkArguments(node ast.Node, name string, args []ast.Expression, sig *ProcedureType, ctx *Context) {
	if len(args) != len(sig.Params) {
		ctx.error(node, "%q expects %d argument(s), got %d", name, len(sig.Params), len(args))
		return
	}
	for i, arg := range args {
		param := sig.Params[i]
		if param.Mode == ast.ByRef {
			if !isAssignableExpr(arg) {
				ctx.error(arg, "argument %d of %q is BYREF and must be a variable", i+1, name)
			}
		}
		at := c.analyzeExpression(arg, ctx)
		if at != nil && param.Type != nil && !assignable(param.Type, at) {
			ctx.error(arg, "argument %d of %q must be %s, got %s", i+1, name, param.Type, at)
		}
	}
}

// isAssignableExpr reports whether e denotes a storage location (a simple
// identifier, array element, or record field) rather than a computed
// value, as required for a BYREF argument.
func isAssignableExpr(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.ArrayAccess, *ast.FieldAccess:
		return true
	default:
		return false
	}
}

func (c *checkPass) analyzeOpenFile(n *ast.OpenFile, ctx *Context) {
	if t := c.analyzeExpression(n.FileName, ctx); t != nil && !sameType(t, String) {
		ctx.error(n.FileName, "file name must be STRING, got %s", t)
	}
}

func (c *checkPass) analyzeReadFile(n *ast.ReadFile, ctx *Context) {
	if t := c.analyzeExpression(n.FileName, ctx); t != nil && !sameType(t, String) {
		ctx.error(n.FileName, "file name must be STRING, got %s", t)
	}
	c.resolveTarget(n.Target, nil, "", ctx)
}

func (c *checkPass) analyzeWriteFile(n *ast.WriteFile, ctx *Context) {
	if t := c.analyzeExpression(n.FileName, ctx); t != nil && !sameType(t, String) {
		ctx.error(n.FileName, "file name must be STRING, got %s", t)
	}
	c.analyzeExpression(n.Value, ctx)
}

func (c *checkPass) analyzeCloseFile(n *ast.CloseFile, ctx *Context) {
	if t := c.analyzeExpression(n.FileName, ctx); t != nil && !sameType(t, String) {
		ctx.error(n.FileName, "file name must be STRING, got %s", t)
	}
}
