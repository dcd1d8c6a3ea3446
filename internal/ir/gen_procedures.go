package ir

import (
	"fmt"

	"github.com/rjpaske/pseudocode/internal/ast"
)

func (g *Generator) genProcedure(n *ast.Procedure) {
	lskip := g.newLabel()
	g.emit("GOTO %s", lskip)
	g.prog.emitLabel("PROC_" + n.Name)
	g.emit("ENTER_SCOPE")
	g.popParams(n.Parameters)

	savedParams, savedInProc := g.params, g.inProcBody
	g.params, g.inProcBody = n.Parameters, true
	g.genBlock(n.Body)
	g.params, g.inProcBody = savedParams, savedInProc

	g.writebackParams(n.Parameters)
	g.emit("EXIT_SCOPE")
	g.emit("RET")
	g.prog.emitLabel(lskip)
}

func (g *Generator) genFunction(n *ast.Function) {
	lskip := g.newLabel()
	g.emit("GOTO %s", lskip)
	g.prog.emitLabel("FUNC_" + n.Name)
	g.emit("ENTER_SCOPE")
	g.popParams(n.Parameters)

	savedParams, savedInProc := g.params, g.inProcBody
	g.params, g.inProcBody = n.Parameters, true
	g.genBlock(n.Body)
	g.params, g.inProcBody = savedParams, savedInProc

	// Every reachable RETURN already emitted its own writeback/exit/RET
	// sequence; this is the fallback for a function whose RETURN coverage
	// the analyser only checked non-exhaustively (spec.md §9), so body
	// execution can still fall through here instead of into Lskip.
	g.writebackParams(n.Parameters)
	g.emit("EXIT_SCOPE")
	g.emit("RET")
	g.prog.emitLabel(lskip)
}

func (g *Generator) popParams(params []ast.Parameter) {
	for i := len(params) - 1; i >= 0; i-- {
		p := params[i]
		if p.Mode == ast.ByRef {
			g.emit("POP_BYREF %s", p.Name)
		} else {
			g.emit("POP_PARAM %s", p.Name)
		}
	}
}

func (g *Generator) writebackParams(params []ast.Parameter) {
	for _, p := range params {
		if p.Mode == ast.ByRef {
			g.emit("WRITEBACK_BYREF %s", p.Name)
		}
	}
}

func (g *Generator) genReturn(n *ast.Return) {
	g.writebackParams(g.params)
	if n.Value != nil {
		v := g.lowerExpr(n.Value)
		g.emit("RETVAL %s", v)
	}
	g.emit("EXIT_SCOPE")
	g.emit("RET")
}

func (g *Generator) genCall(n *ast.Call) {
	g.genCallSite(n.Name, n.Arguments, false)
}

// genCallSite emits the argument-push protocol and CALL instruction shared
// by statement-level CALL and expression-position user function calls. An
// identifier, array element, or field argument pushes its resolvable
// reference token twice (once for value, once for BYREF write-back); any
// other expression pushes its computed value with PUSH_REF __NONE__, since
// it has no caller-visible location to write back to.
func (g *Generator) genCallSite(name string, args []ast.Expression, isFunc bool) {
	for _, a := range args {
		switch ref := a.(type) {
		case *ast.Identifier:
			g.emit("PUSH %s", ref.Value)
			g.emit("PUSH_REF %s", ref.Value)
		case *ast.ArrayAccess:
			tok := g.lowerArrayAccess(ref)
			g.emit("PUSH %s", tok)
			g.emit("PUSH_REF %s", tok)
		case *ast.FieldAccess:
			tok := fmt.Sprintf("%s.%s", ref.Name.Value, ref.Field)
			g.emit("PUSH %s", tok)
			g.emit("PUSH_REF %s", tok)
		default:
			v := g.lowerExpr(a)
			g.emit("PUSH %s", v)
			g.emit("PUSH_REF __NONE__")
		}
	}

	label := "PROC_" + name
	if isFunc {
		label = "FUNC_" + name
	}
	g.emit("CALL %s", label)
}
