package semantic

import (
	"github.com/rjpaske/pseudocode/internal/ast"
	"github.com/rjpaske/pseudocode/internal/errors"
)

// Result is the outcome of a successful (or partially successful) analysis:
// the fully populated global scope and record-type registry. ir.Generate
// works from the AST alone and does not take a Result.
type Result struct {
	Globals  *SymbolTable
	TypeDefs map[string]*RecordType
}

// Analyze runs the two analysis passes over program: a signature pass that
// registers every TYPE, PROCEDURE, and FUNCTION declaration up front (so
// forward references resolve regardless of declaration order), followed by
// a full pass that checks every statement and expression.
//
// Analyze always returns a non-nil Result; callers should still check
// diags for a non-empty slice before trusting the program is well-typed.
func Analyze(program *ast.Program, source, file string) (*Result, []*errors.Diagnostic) {
	ctx := NewContext(source, file)

	pm := NewPassManager(
		&signaturePass{},
		&checkPass{},
	)
	_ = pm.RunAll(program, ctx)

	return &Result{Globals: ctx.Globals, TypeDefs: ctx.TypeDefs}, ctx.Diagnostics
}
