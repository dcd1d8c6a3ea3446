// Package vm executes the flat, label-addressed IR produced by internal/ir
// (spec.md §4.6). Values are dynamically typed at this layer: the semantic
// analyser has already rejected anything that would mismatch at runtime, so
// the VM's own type handling only needs to cover the small set of runtime
// coercions the IR's arithmetic and comparison operators require.
package vm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is any runtime value the VM can hold in a variable, array element,
// or record field.
type Value interface {
	Type() string
	String() string
}

// IntValue is an INTEGER.
type IntValue int64

func (IntValue) Type() string      { return "INTEGER" }
func (v IntValue) String() string  { return strconv.FormatInt(int64(v), 10) }

// RealValue is a REAL.
type RealValue float64

func (RealValue) Type() string     { return "REAL" }
func (v RealValue) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// StringValue covers both STRING and CHAR: CHAR is a one-rune string at
// runtime, matching spec.md's silence on a dedicated rune-width type.
type StringValue string

func (StringValue) Type() string     { return "STRING" }
func (v StringValue) String() string { return string(v) }

// BoolValue is a BOOLEAN.
type BoolValue bool

func (BoolValue) Type() string { return "BOOLEAN" }
func (v BoolValue) String() string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// ArrayValue is a 1- or 2-dimensional array, flattened into a single slice.
// Bounds are inclusive on both ends, matching the DECLARE ... ARRAY[a:b]
// syntax; elements default to IntValue(0) until assigned.
type ArrayValue struct {
	Dims     []Bound
	Elements []Value
}

// Bound is one inclusive [Start,End] dimension of an array.
type Bound struct {
	Start, End int64
}

func (b Bound) size() int64 { return b.End - b.Start + 1 }

func NewArray(dims []Bound) *ArrayValue {
	total := int64(1)
	for _, d := range dims {
		total *= d.size()
	}
	elems := make([]Value, total)
	for i := range elems {
		elems[i] = IntValue(0)
	}
	return &ArrayValue{Dims: dims, Elements: elems}
}

func (*ArrayValue) Type() string { return "ARRAY" }
func (a *ArrayValue) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Offset computes the flat element index for the given subscripts, or an
// error if the subscript count or range is wrong.
func (a *ArrayValue) Offset(idx []int64) (int, error) {
	if len(idx) != len(a.Dims) {
		return 0, fmt.Errorf("array has %d dimension(s), got %d index(es)", len(a.Dims), len(idx))
	}
	offset := int64(0)
	for i, d := range a.Dims {
		if idx[i] < d.Start || idx[i] > d.End {
			return 0, fmt.Errorf("index %d out of bounds [%d:%d]", idx[i], d.Start, d.End)
		}
		offset = offset*d.size() + (idx[i] - d.Start)
	}
	return int(offset), nil
}

// RecordValue is a record instance, auto-created on first field access
// (spec.md's IR erases TYPE definitions entirely, so the VM carries no
// field-name/type schema - just whatever fields have been written).
type RecordValue struct {
	Fields map[string]Value
}

func NewRecord() *RecordValue {
	return &RecordValue{Fields: map[string]Value{}}
}

func (*RecordValue) Type() string { return "RECORD" }
func (r *RecordValue) String() string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s: %s", n, r.Fields[n].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Truthy implements the IR's 0/false/undefined-is-false rule (spec.md §4.6):
// BoolValue(false), a zero number, the empty string and a nil Value are
// false; every other value (arrays and records included) is true.
func Truthy(v Value) bool {
	switch n := v.(type) {
	case BoolValue:
		return bool(n)
	case IntValue:
		return n != 0
	case RealValue:
		return n != 0
	case StringValue:
		return n != ""
	case nil:
		return false
	default:
		return true
	}
}

func asFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case IntValue:
		return float64(n), true
	case RealValue:
		return float64(n), true
	case BoolValue:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func isString(v Value) bool {
	_, ok := v.(StringValue)
	return ok
}
