package vm

import (
	"strconv"

	"github.com/rjpaske/pseudocode/internal/ir"
)

const noneRef = "__NONE__"

// execPushRef records, alongside the value just PUSHed, where that
// argument came from: a resolvable lvalue (for BYREF write-back) or
// noneRef when the call site passed a plain expression (spec.md §4.6's
// genCallSite protocol: every PUSH is paired with exactly one PUSH_REF).
func (vm *VM) execPushRef(tok string) {
	if tok == noneRef {
		vm.refStack = append(vm.refStack, ref{none: true})
		return
	}
	vm.refStack = append(vm.refStack, ref{scopeIdx: vm.top(), token: tok})
}

func (vm *VM) popArg() (Value, ref) {
	v := vm.argStack[len(vm.argStack)-1]
	vm.argStack = vm.argStack[:len(vm.argStack)-1]
	r := vm.refStack[len(vm.refStack)-1]
	vm.refStack = vm.refStack[:len(vm.refStack)-1]
	return v, r
}

// execPopParam binds the next argument (by value only) to name in the
// callee's freshly entered frame.
func (vm *VM) execPopParam(name string) (int, error) {
	v, _ := vm.popArg()
	vm.frames[vm.top()].declareLocal(name, v)
	return vm.pc + 1, nil
}

// execPopByref binds the next argument to name and remembers where its
// caller-side value lives so WRITEBACK_BYREF can copy the final value
// back, regardless of how deep the call stack got in between.
func (vm *VM) execPopByref(name string) (int, error) {
	v, r := vm.popArg()
	f := vm.frames[vm.top()]
	f.declareLocal(name, v)
	if f.byref == nil {
		f.byref = map[string]ref{}
	}
	f.byref[name] = r
	return vm.pc + 1, nil
}

func (vm *VM) execWriteback(name string) (int, error) {
	f := vm.frames[vm.top()]
	r, ok := f.byref[name]
	if !ok || r.none {
		return vm.pc + 1, nil
	}
	v, _ := f.get(name)
	if err := vm.setLocation(r.scopeIdx, r.token, v); err != nil {
		return 0, err
	}
	return vm.pc + 1, nil
}

func (vm *VM) execCall(label string) (int, error) {
	target, err := vm.lp.resolveLabel(label)
	if err != nil {
		return 0, vm.runtimeErr("%v", err)
	}
	vm.callStack = append(vm.callStack, vm.pc+1)
	return target, nil
}

func (vm *VM) execRet() (int, error) {
	if len(vm.callStack) == 0 {
		return len(vm.lp.instrs), nil
	}
	ret := vm.callStack[len(vm.callStack)-1]
	vm.callStack = vm.callStack[:len(vm.callStack)-1]
	return ret, nil
}

func (vm *VM) execInput(in ir.Instr) (int, error) {
	if vm.input == nil {
		return 0, vm.runtimeErr("INPUT requested but no input source is configured")
	}
	line, ok := vm.input()
	if !ok {
		return 0, vm.runtimeErr("input exhausted")
	}
	if err := vm.setLocation(vm.top(), in.Args[0], inputValue(line)); err != nil {
		return 0, err
	}
	return vm.pc + 1, nil
}

// inputValue coerces a raw INPUT line to a number when it parses as one
// (spec.md §4.6: "if the provided string parses as a number, it is stored
// as a number; else as a string"), so INPUT feeding an INTEGER/REAL target
// is usable in arithmetic without an explicit STR_TO_NUM call.
func inputValue(line string) Value {
	if i, err := strconv.ParseInt(line, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(line, 64); err == nil {
		return RealValue(f)
	}
	return StringValue(line)
}

func (vm *VM) fileName(scopeIdx int, tok string) (string, error) {
	v, err := vm.resolve(scopeIdx, tok)
	if err != nil {
		return "", err
	}
	return string(v.(StringValue)), nil
}

func (vm *VM) execOpenFile(in ir.Instr) (int, error) {
	name, err := vm.fileName(vm.top(), in.Args[0])
	if err != nil {
		return 0, err
	}
	mode, ok := parseFileMode(in.Args[1])
	if !ok {
		return 0, vm.runtimeErr("unknown file mode %q", in.Args[1])
	}
	vm.files.open(name, mode)
	return vm.pc + 1, nil
}

func (vm *VM) execReadFile(in ir.Instr) (int, error) {
	name, err := vm.fileName(vm.top(), in.Args[0])
	if err != nil {
		return 0, err
	}
	f, ok := vm.files.get(name)
	if !ok || !f.open || f.mode != modeRead {
		return 0, vm.runtimeErr("file %q is not open for reading", name)
	}
	if f.readPos >= len(f.lines) {
		return 0, vm.runtimeErr("read past end of file %q", name)
	}
	line := f.lines[f.readPos]
	f.readPos++
	if err := vm.setLocation(vm.top(), in.Args[1], StringValue(line)); err != nil {
		return 0, err
	}
	return vm.pc + 1, nil
}

func (vm *VM) execWriteFile(in ir.Instr) (int, error) {
	name, err := vm.fileName(vm.top(), in.Args[0])
	if err != nil {
		return 0, err
	}
	f, ok := vm.files.get(name)
	if !ok || !f.open || f.mode == modeRead {
		return 0, vm.runtimeErr("file %q is not open for writing", name)
	}
	v, err := vm.resolve(vm.top(), in.Args[1])
	if err != nil {
		return 0, err
	}
	f.written = append(f.written, v.String())
	return vm.pc + 1, nil
}

func (vm *VM) execCloseFile(in ir.Instr) (int, error) {
	name, err := vm.fileName(vm.top(), in.Args[0])
	if err != nil {
		return 0, err
	}
	if f, ok := vm.files.get(name); ok {
		f.open = false
	}
	return vm.pc + 1, nil
}
