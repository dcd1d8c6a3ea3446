// Package semantic implements the two-pass semantic analyser: scope-chain
// symbol resolution, type checking, and the other static checks of
// spec.md §4.3.
package semantic

import (
	"fmt"

	"github.com/rjpaske/pseudocode/internal/ast"
	"github.com/rjpaske/pseudocode/internal/errors"
)

// Pass is a single walk over the program. The multi-pass architecture lets
// signatures of procedures, functions, and record types be registered
// before the bodies that use them are checked, so forward references work
// regardless of declaration order.
type Pass interface {
	Name() string
	Run(program *ast.Program, ctx *Context) error
}

// PassManager runs a fixed sequence of passes over one program.
type PassManager struct {
	passes []Pass
}

// NewPassManager returns a manager that will run passes in order.
func NewPassManager(passes ...Pass) *PassManager {
	return &PassManager{passes: passes}
}

// RunAll executes every registered pass in order, stopping early if a pass
// returns a fatal (non-semantic) error.
func (pm *PassManager) RunAll(program *ast.Program, ctx *Context) error {
	for _, pass := range pm.passes {
		if err := pass.Run(program, ctx); err != nil {
			return err
		}
	}
	return nil
}

// Context is the shared state threaded through every pass: the symbol
// table under construction, the record type registry, and the collected
// diagnostics.
type Context struct {
	Globals  *SymbolTable
	Current  *SymbolTable // the innermost scope being analysed
	TypeDefs map[string]*RecordType

	// CurrentProc is the signature of the procedure/function whose body is
	// being analysed, or nil at top level.
	CurrentProc *ProcedureType

	// LoopDepth counts nested WHILE/FOR/REPEAT loops, for control-flow
	// checks that are only meaningful inside a loop.
	LoopDepth int

	Source string
	File   string

	Diagnostics []*errors.Diagnostic
}

// NewContext creates an analysis context over the given source text (used
// for caret-diagnostic rendering).
func NewContext(source, file string) *Context {
	globals := NewSymbolTable()
	return &Context{
		Globals:  globals,
		Current:  globals,
		TypeDefs: make(map[string]*RecordType),
		Source:   source,
		File:     file,
	}
}

func (ctx *Context) error(pos ast.Node, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	ctx.Diagnostics = append(ctx.Diagnostics, errors.TypeError(pos.Pos(), msg, ctx.Source, ctx.File))
}

// HasErrors reports whether any diagnostics were collected.
func (ctx *Context) HasErrors() bool {
	return len(ctx.Diagnostics) > 0
}

// pushScope enters a new child scope of ctx.Current and returns it.
func (ctx *Context) pushScope() *SymbolTable {
	ctx.Current = NewEnclosedSymbolTable(ctx.Current)
	return ctx.Current
}

// popScope restores the enclosing scope.
func (ctx *Context) popScope() {
	if ctx.Current.Outer() != nil {
		ctx.Current = ctx.Current.Outer()
	}
}
