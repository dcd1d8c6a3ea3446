package semantic

import "github.com/rjpaske/pseudocode/internal/ast"

// signaturePass registers every TYPE, PROCEDURE, and FUNCTION declared
// anywhere in the program before any body is checked, so a call or a field
// access may appear before its declaration in source order.
type signaturePass struct{}

func (*signaturePass) Name() string { return "signatures" }

func (p *signaturePass) Run(program *ast.Program, ctx *Context) error {
	// Record types first: procedure/function signatures may reference them.
	for _, stmt := range program.Statements {
		if td, ok := stmt.(*ast.TypeDef); ok {
			p.registerTypeDef(td, ctx)
		}
	}
	for _, stmt := range program.Statements {
		switch n := stmt.(type) {
		case *ast.Procedure:
			p.registerProcedure(n, ctx)
		case *ast.Function:
			p.registerFunction(n, ctx)
		}
	}
	return nil
}

func (p *signaturePass) registerTypeDef(td *ast.TypeDef, ctx *Context) {
	if _, exists := ctx.TypeDefs[td.Name]; exists {
		ctx.error(td, "type %q is already declared", td.Name)
		return
	}
	rec := &RecordType{Name: td.Name, Fields: td.Fields, FieldTypes: make(map[string]Type)}
	for _, f := range td.Fields {
		t, err := resolveTypeName(f.DataType, ctx.TypeDefs)
		if err != nil {
			ctx.error(td, "field %q of type %q: %v", f.Name, td.Name, err)
			continue
		}
		rec.FieldTypes[f.Name] = t
	}
	ctx.TypeDefs[td.Name] = rec
}

func (p *signaturePass) resolveParams(params []ast.Parameter, owner ast.Node, ownerName string, ctx *Context) []ParamType {
	out := make([]ParamType, 0, len(params))
	seen := make(map[string]bool)
	for _, param := range params {
		if seen[param.Name] {
			ctx.error(owner, "%q declares parameter %q more than once", ownerName, param.Name)
			continue
		}
		seen[param.Name] = true
		t, err := resolveTypeName(param.DataType, ctx.TypeDefs)
		if err != nil {
			ctx.error(owner, "parameter %q of %q: %v", param.Name, ownerName, err)
			continue
		}
		out = append(out, ParamType{Name: param.Name, Type: t, Mode: param.Mode})
	}
	return out
}

func (p *signaturePass) registerProcedure(n *ast.Procedure, ctx *Context) {
	if _, exists := ctx.Globals.ResolveLocal(n.Name); exists {
		ctx.error(n, "%q is already declared", n.Name)
		return
	}
	sig := &ProcedureType{Params: p.resolveParams(n.Parameters, n, n.Name, ctx)}
	ctx.Globals.DefineLocal(&Symbol{Name: n.Name, Kind: SymProcedure, Type: sig})
}

func (p *signaturePass) registerFunction(n *ast.Function, ctx *Context) {
	if _, exists := ctx.Globals.ResolveLocal(n.Name); exists {
		ctx.error(n, "%q is already declared", n.Name)
		return
	}
	returnType, err := resolveTypeName(n.ReturnType, ctx.TypeDefs)
	if err != nil {
		ctx.error(n, "return type of function %q: %v", n.Name, err)
		returnType = nil
	}
	sig := &ProcedureType{Params: p.resolveParams(n.Parameters, n, n.Name, ctx), Return: returnType}
	ctx.Globals.DefineLocal(&Symbol{Name: n.Name, Kind: SymFunction, Type: sig})
}
