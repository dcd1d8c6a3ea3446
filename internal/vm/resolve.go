package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// resolve evaluates a single IR operand token to its runtime value: a
// quoted string literal, a numeric literal, RETVAL, a bare variable, or an
// array/field access. scopeIdx is the frame the token is resolved against
// first, falling back to the global frame (spec.md §9: globals stay
// visible inside a call unless shadowed by a local or parameter of the
// same name).
func (vm *VM) resolve(scopeIdx int, tok string) (Value, error) {
	switch {
	case tok == "RETVAL":
		return vm.retval, nil
	case tok == "TRUE":
		return BoolValue(true), nil
	case tok == "FALSE":
		return BoolValue(false), nil
	case strings.HasPrefix(tok, "\""):
		return StringValue(unquote(tok)), nil
	}

	if v, isNum, isInt := parseLiteral(tok); isNum {
		if isInt {
			return IntValue(int64(v)), nil
		}
		return RealValue(v), nil
	}

	name, indices, field, err := splitAccess(tok)
	if err != nil {
		return nil, vm.runtimeErr("%v", err)
	}
	if len(indices) == 0 && field == "" {
		return vm.getVar(scopeIdx, name)
	}
	return vm.getLocation(scopeIdx, name, indices, field)
}

func unquote(tok string) string {
	s, err := strconv.Unquote(tok)
	if err != nil {
		return strings.Trim(tok, "\"")
	}
	return s
}

func parseLiteral(tok string) (value float64, isNum bool, isInt bool) {
	if tok == "" {
		return 0, false, false
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return float64(i), true, true
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f, true, false
	}
	return 0, false, false
}

// splitAccess decomposes a token like "A[1,2]" or "P.X" into its base name
// plus index expressions or field name. A plain identifier returns just a
// name with no indices or field.
func splitAccess(tok string) (name string, indices []string, field string, err error) {
	if i := strings.IndexByte(tok, '['); i >= 0 {
		if !strings.HasSuffix(tok, "]") {
			return "", nil, "", fmt.Errorf("malformed array access %q", tok)
		}
		name = tok[:i]
		inner := tok[i+1 : len(tok)-1]
		indices = splitTopLevel(inner)
		return name, indices, "", nil
	}
	if i := strings.IndexByte(tok, '.'); i >= 0 {
		return tok[:i], nil, tok[i+1:], nil
	}
	return tok, nil, "", nil
}

// splitTopLevel splits a comma-separated index list, respecting bracket
// nesting so an index that is itself an array access (already lowered to a
// temp by internal/ir, so this should never actually nest - but splitting
// defensively costs nothing) isn't cut in the wrong place.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func (vm *VM) getVar(scopeIdx int, name string) (Value, error) {
	if v, ok := vm.frames[scopeIdx].get(name); ok {
		return v, nil
	}
	if scopeIdx != 0 {
		if v, ok := vm.frames[0].get(name); ok {
			return v, nil
		}
	}
	return nil, vm.runtimeErr("undefined variable %q", name)
}

func (vm *VM) resolveIndices(scopeIdx int, indices []string) ([]int64, error) {
	out := make([]int64, len(indices))
	for i, tok := range indices {
		v, err := vm.resolve(scopeIdx, strings.TrimSpace(tok))
		if err != nil {
			return nil, err
		}
		out[i] = toInt(v)
	}
	return out, nil
}

// getLocation reads an array element or record field. Records are never
// DECLAREd at the IR layer (spec.md's IR erases TYPE definitions), so a
// base that is undefined, or still the placeholder IntValue(0) a bare
// global left behind, auto-vivifies to an empty record - mirroring
// setLocation's write-side auto-vivify.
func (vm *VM) getLocation(scopeIdx int, name string, indices []string, field string) (Value, error) {
	if len(indices) > 0 {
		base, err := vm.getVar(scopeIdx, name)
		if err != nil {
			return nil, err
		}
		arr, ok := base.(*ArrayValue)
		if !ok {
			return nil, vm.runtimeErr("%q is not an array", name)
		}
		idx, err := vm.resolveIndices(scopeIdx, indices)
		if err != nil {
			return nil, err
		}
		off, err := arr.Offset(idx)
		if err != nil {
			return nil, vm.runtimeErr("%v", err)
		}
		return arr.Elements[off], nil
	}

	rec, err := vm.recordAt(scopeIdx, name)
	if err != nil {
		return nil, err
	}
	v, ok := rec.Fields[field]
	if !ok {
		return IntValue(0), nil
	}
	return v, nil
}

// recordAt fetches name as a *RecordValue, auto-vivifying and storing a
// fresh empty record in place when name is undefined or still holds the
// zero placeholder a bare DECLARE (or an un-DECLAREd global) leaves behind.
func (vm *VM) recordAt(scopeIdx int, name string) (*RecordValue, error) {
	base, err := vm.getVar(scopeIdx, name)
	if err != nil {
		rec := NewRecord()
		vm.setVar(scopeIdx, name, rec)
		return rec, nil
	}
	rec, ok := base.(*RecordValue)
	if ok {
		return rec, nil
	}
	if isZeroPlaceholder(base) {
		rec = NewRecord()
		vm.setVar(scopeIdx, name, rec)
		return rec, nil
	}
	return nil, vm.runtimeErr("%q is not a record", name)
}

// isZeroPlaceholder reports whether v is the IntValue(0) a scalar DECLARE
// leaves behind before anything has actually been stored, and so is safe to
// silently replace with an auto-vivified record on first field access.
func isZeroPlaceholder(v Value) bool {
	n, ok := v.(IntValue)
	return ok && n == 0
}

// setLocation writes target, which is a bare name, "name[i,j]", or
// "name.field" (emitted by internal/ir's lowerTarget), to value.
func (vm *VM) setLocation(scopeIdx int, target string, value Value) error {
	name, indices, field, err := splitAccess(target)
	if err != nil {
		return vm.runtimeErr("%v", err)
	}
	if len(indices) == 0 && field == "" {
		vm.setVar(scopeIdx, name, value)
		return nil
	}

	if len(indices) > 0 {
		base, err := vm.getVar(scopeIdx, name)
		if err != nil {
			return err
		}
		arr, ok := base.(*ArrayValue)
		if !ok {
			return vm.runtimeErr("%q is not an array", name)
		}
		idx, err := vm.resolveIndices(scopeIdx, indices)
		if err != nil {
			return err
		}
		off, err := arr.Offset(idx)
		if err != nil {
			return vm.runtimeErr("%v", err)
		}
		arr.Elements[off] = value
		return nil
	}

	rec, err := vm.recordAt(scopeIdx, name)
	if err != nil {
		return err
	}
	rec.Fields[field] = value
	return nil
}

// setVar writes a bare variable, updating it in place wherever it's
// already visible (declared locally, or inherited from globals), and
// otherwise declaring it fresh in the current scope.
func (vm *VM) setVar(scopeIdx int, name string, value Value) {
	if _, ok := vm.frames[scopeIdx].get(name); ok {
		vm.frames[scopeIdx].set(name, value)
		return
	}
	if scopeIdx != 0 {
		if _, ok := vm.frames[0].get(name); ok {
			vm.frames[0].set(name, value)
			return
		}
	}
	vm.frames[scopeIdx].set(name, value)
}
