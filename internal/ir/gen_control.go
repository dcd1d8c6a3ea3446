package ir

import "github.com/rjpaske/pseudocode/internal/ast"

func (g *Generator) genIf(n *ast.If) {
	cond := g.lowerExpr(n.Condition)

	if n.Else == nil {
		lend := g.newLabel()
		g.emit("IFZ %s GOTO %s", cond, lend)
		g.genBlock(n.Then)
		g.prog.emitLabel(lend)
		return
	}

	lelse := g.newLabel()
	lend := g.newLabel()
	g.emit("IFZ %s GOTO %s", cond, lelse)
	g.genBlock(n.Then)
	g.emit("GOTO %s", lend)
	g.prog.emitLabel(lelse)
	g.genBlock(n.Else)
	g.prog.emitLabel(lend)
}

func (g *Generator) genWhile(n *ast.While) {
	lstart := g.newLabel()
	lend := g.newLabel()
	g.prog.emitLabel(lstart)
	cond := g.lowerExpr(n.Condition)
	g.emit("IFZ %s GOTO %s", cond, lend)
	g.genBlock(n.Body)
	g.emit("GOTO %s", lstart)
	g.prog.emitLabel(lend)
}

func (g *Generator) genRepeat(n *ast.Repeat) {
	lstart := g.newLabel()
	g.prog.emitLabel(lstart)
	g.genBlock(n.Body)
	cond := g.lowerExpr(n.Until)
	g.emit("IFZ %s GOTO %s", cond, lstart)
}

// stepSign reports the compile-time-known sign of a FOR loop's step
// expression. isLiteral is false when the step must be evaluated at
// runtime to know its direction (e.g. a variable or computed expression).
func stepSign(step ast.Expression) (sign int, isLiteral bool) {
	if step == nil {
		return 1, true
	}
	switch n := step.(type) {
	case *ast.IntegerLiteral:
		return signOf(float64(n.Value)), true
	case *ast.RealLiteral:
		return signOf(n.Value), true
	case *ast.UnaryExpr:
		if n.Operator != "-" {
			return 0, false
		}
		switch inner := n.Operand.(type) {
		case *ast.IntegerLiteral:
			return -signOf(float64(inner.Value)), true
		case *ast.RealLiteral:
			return -signOf(inner.Value), true
		}
	}
	return 0, false
}

func signOf(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

// genFor lowers a counting loop. Start, end and step are each evaluated
// exactly once, before the loop label, so a computed bound or step isn't
// silently re-evaluated (and any side effect re-run) on every iteration.
func (g *Generator) genFor(n *ast.For) {
	start := g.lowerExpr(n.Start)
	g.emit("%s = %s", n.LoopVar.Value, start)

	stepToken := "1"
	if n.Step != nil {
		stepToken = g.lowerExpr(n.Step)
	}
	end := g.lowerExpr(n.End)

	lstart := g.newLabel()
	lend := g.newLabel()
	g.prog.emitLabel(lstart)

	sign, isLiteral := stepSign(n.Step)

	var cond string
	switch {
	case isLiteral && sign >= 0:
		cond = g.newTemp()
		g.emit("%s = %s <= %s", cond, n.LoopVar.Value, end)
	case isLiteral:
		cond = g.newTemp()
		g.emit("%s = %s >= %s", cond, n.LoopVar.Value, end)
	default:
		stepPos := g.newTemp()
		g.emit("%s = %s > 0", stepPos, stepToken)
		up := g.newTemp()
		g.emit("%s = %s <= %s", up, n.LoopVar.Value, end)
		down := g.newTemp()
		g.emit("%s = %s >= %s", down, n.LoopVar.Value, end)
		notStepPos := g.newTemp()
		g.emit("%s = %s == 0", notStepPos, stepPos)
		andUp := g.newTemp()
		g.emit("%s = %s && %s", andUp, stepPos, up)
		andDown := g.newTemp()
		g.emit("%s = %s && %s", andDown, notStepPos, down)
		cond = g.newTemp()
		g.emit("%s = %s || %s", cond, andUp, andDown)
	}

	g.emit("IFZ %s GOTO %s", cond, lend)
	g.genBlock(n.Body)

	next := g.newTemp()
	g.emit("%s = %s + %s", next, n.LoopVar.Value, stepToken)
	g.emit("%s = %s", n.LoopVar.Value, next)
	g.emit("GOTO %s", lstart)
	g.prog.emitLabel(lend)
}

func (g *Generator) genCase(n *ast.Case) {
	selector := g.lowerExpr(n.Expr)
	lend := g.newLabel()

	for _, b := range n.Branches {
		lnext := g.newLabel()

		if len(b.Values) == 1 {
			eq := g.newTemp()
			g.emit("%s = %s == %s", eq, selector, literalToken(b.Values[0]))
			g.emit("IFZ %s GOTO %s", eq, lnext)
			g.genBlock(b.Body)
			g.emit("GOTO %s", lend)
			g.prog.emitLabel(lnext)
			continue
		}

		lmatch := g.newLabel()
		for _, v := range b.Values {
			eq := g.newTemp()
			g.emit("%s = %s == %s", eq, selector, literalToken(v))
			g.emit("IFNZ %s GOTO %s", eq, lmatch)
		}
		g.emit("GOTO %s", lnext)
		g.prog.emitLabel(lmatch)
		g.genBlock(b.Body)
		g.emit("GOTO %s", lend)
		g.prog.emitLabel(lnext)
	}

	if n.OtherwiseBranch != nil {
		g.genBlock(n.OtherwiseBranch)
	}
	g.prog.emitLabel(lend)
}
