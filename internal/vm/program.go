package vm

import (
	"fmt"

	"github.com/rjpaske/pseudocode/internal/ir"
)

// loadedProgram is the VM's load-time view of an ir.Program: every line
// decoded once, with label names resolved to line indexes so CALL/GOTO
// don't re-scan the program on every jump.
type loadedProgram struct {
	instrs []ir.Instr
	labels map[string]int
}

func load(prog *ir.Program) *loadedProgram {
	lp := &loadedProgram{
		instrs: make([]ir.Instr, len(prog.Lines)),
		labels: map[string]int{},
	}
	for i, line := range prog.Lines {
		in := ir.Decode(line)
		lp.instrs[i] = in
		if in.IsLabel() {
			lp.labels[in.Label] = i
		}
	}
	return lp
}

func (lp *loadedProgram) resolveLabel(name string) (int, error) {
	idx, ok := lp.labels[name]
	if !ok {
		return 0, fmt.Errorf("unknown label %q", name)
	}
	return idx, nil
}
