package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rjpaske/pseudocode/internal/ir"
)

// exec dispatches one decoded instruction and returns the next program
// counter: the jump target for instructions that jump, vm.pc+1 for the rest.
func (vm *VM) exec(in ir.Instr) (int, error) {
	switch in.Op {
	case "=":
		return vm.execAssign(in)
	case "ARRAY":
		return vm.execArray(in)
	case "LOCAL":
		vm.frames[vm.top()].declareLocal(in.Args[0], IntValue(0))
		return vm.pc + 1, nil
	case "OUTPUT":
		v, err := vm.resolve(vm.top(), in.Args[0])
		if err != nil {
			return 0, err
		}
		fmt.Fprint(vm.sink, v.String())
		return vm.pc + 1, nil
	case "OUTPUT_PART":
		v, err := vm.resolve(vm.top(), in.Args[0])
		if err != nil {
			return 0, err
		}
		vm.outParts = append(vm.outParts, v.String())
		return vm.pc + 1, nil
	case "OUTPUT_END":
		fmt.Fprint(vm.sink, strings.Join(vm.outParts, ""))
		vm.outParts = nil
		return vm.pc + 1, nil
	case "INPUT":
		return vm.execInput(in)
	case "GOTO":
		return vm.lp.resolveLabelOrErr(vm, in.Args[0])
	case "IFZ":
		return vm.execBranch(in, false)
	case "IFNZ":
		return vm.execBranch(in, true)
	case "PUSH":
		v, err := vm.resolve(vm.top(), in.Args[0])
		if err != nil {
			return 0, err
		}
		vm.argStack = append(vm.argStack, v)
		return vm.pc + 1, nil
	case "PUSH_REF":
		vm.execPushRef(in.Args[0])
		return vm.pc + 1, nil
	case "ENTER_SCOPE":
		vm.frames = append(vm.frames, newFrame(vm.top()))
		return vm.pc + 1, nil
	case "EXIT_SCOPE":
		vm.frames = vm.frames[:len(vm.frames)-1]
		return vm.pc + 1, nil
	case "POP_PARAM":
		return vm.execPopParam(in.Args[0])
	case "POP_BYREF":
		return vm.execPopByref(in.Args[0])
	case "WRITEBACK_BYREF":
		return vm.execWriteback(in.Args[0])
	case "CALL":
		return vm.execCall(in.Args[0])
	case "RETVAL":
		v, err := vm.resolve(vm.top(), in.Args[0])
		if err != nil {
			return 0, err
		}
		vm.retval = v
		return vm.pc + 1, nil
	case "RET":
		return vm.execRet()
	case "OPENFILE":
		return vm.execOpenFile(in)
	case "READFILE":
		return vm.execReadFile(in)
	case "WRITEFILE":
		return vm.execWriteFile(in)
	case "CLOSEFILE":
		return vm.execCloseFile(in)
	default:
		return 0, vm.runtimeErr("unknown instruction %q", in.Line)
	}
}

func (vm *VM) execAssign(in ir.Instr) (int, error) {
	target := in.Args[0]
	rhs := in.Args[1:]

	var value Value
	var err error
	switch {
	case len(rhs) == 1 && rhs[0] == "RETVAL":
		value = vm.retval
	case len(rhs) >= 2 && rhs[0] == "BUILTIN":
		value, err = vm.execBuiltinCall(rhs[1], rhs[2:])
	case len(rhs) == 3:
		value, err = vm.evalBinary(rhs[0], rhs[1], rhs[2])
	case len(rhs) == 1:
		value, err = vm.resolve(vm.top(), rhs[0])
	default:
		return 0, vm.runtimeErr("malformed assignment: %q", in.Line)
	}
	if err != nil {
		return 0, err
	}
	if err := vm.setLocation(vm.top(), target, value); err != nil {
		return 0, err
	}
	return vm.pc + 1, nil
}

func (vm *VM) execBuiltinCall(name string, argToks []string) (Value, error) {
	args := make([]Value, len(argToks))
	for i, tok := range argToks {
		v, err := vm.resolve(vm.top(), tok)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return vm.callBuiltin(name, args)
}

func (vm *VM) execArray(in ir.Instr) (int, error) {
	name := in.Args[0]
	dims, err := parseBounds(in.Args[1])
	if err != nil {
		return 0, vm.runtimeErr("%v", err)
	}
	vm.frames[vm.top()].declareLocal(name, NewArray(dims))
	return vm.pc + 1, nil
}

func parseBounds(s string) ([]Bound, error) {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	parts := strings.Split(s, ",")
	dims := make([]Bound, len(parts))
	for i, p := range parts {
		ab := strings.SplitN(p, ":", 2)
		if len(ab) != 2 {
			return nil, fmt.Errorf("malformed array bound %q", p)
		}
		start, err1 := strconv.ParseInt(ab[0], 10, 64)
		end, err2 := strconv.ParseInt(ab[1], 10, 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("malformed array bound %q", p)
		}
		dims[i] = Bound{Start: start, End: end}
	}
	return dims, nil
}

func (vm *VM) execBranch(in ir.Instr, onTruthy bool) (int, error) {
	cond, err := vm.resolve(vm.top(), in.Args[0])
	if err != nil {
		return 0, err
	}
	if Truthy(cond) == onTruthy {
		label := in.Args[2]
		return vm.lp.resolveLabelOrErr(vm, label)
	}
	return vm.pc + 1, nil
}

func (lp *loadedProgram) resolveLabelOrErr(vm *VM, name string) (int, error) {
	idx, err := lp.resolveLabel(name)
	if err != nil {
		return 0, vm.runtimeErr("%v", err)
	}
	return idx, nil
}
