package semantic

import (
	"fmt"
	"strings"

	"github.com/rjpaske/pseudocode/internal/ast"
)

// Type is the compile-time type of a value, variable, or expression.
type Type interface {
	String() string
	equals(Type) bool
}

// ScalarType is one of the five builtin Cambridge pseudocode types.
type ScalarType string

const (
	Integer ScalarType = "INTEGER"
	Real    ScalarType = "REAL"
	String  ScalarType = "STRING"
	Boolean ScalarType = "BOOLEAN"
	Char    ScalarType = "CHAR"
)

func (s ScalarType) String() string { return string(s) }
func (s ScalarType) equals(o Type) bool {
	other, ok := o.(ScalarType)
	return ok && s == other
}

// ArrayType is a 1- or 2-dimensional array of a scalar element type.
type ArrayType struct {
	Elem Type
	Dims []ast.Dimension
}

func (a *ArrayType) String() string {
	parts := make([]string, len(a.Dims))
	for i, d := range a.Dims {
		parts[i] = fmt.Sprintf("%d:%d", d.Start, d.End)
	}
	return fmt.Sprintf("ARRAY[%s] OF %s", strings.Join(parts, ", "), a.Elem)
}

func (a *ArrayType) equals(o Type) bool {
	other, ok := o.(*ArrayType)
	if !ok || len(a.Dims) != len(other.Dims) {
		return false
	}
	if !a.Elem.equals(other.Elem) {
		return false
	}
	for i := range a.Dims {
		if a.Dims[i] != other.Dims[i] {
			return false
		}
	}
	return true
}

// RecordType is a user-defined TYPE...ENDTYPE structure.
type RecordType struct {
	Name   string
	Fields []ast.TypeField
	// FieldTypes mirrors Fields, resolved to Type values, keyed by field name.
	FieldTypes map[string]Type
}

func (r *RecordType) String() string { return r.Name }
func (r *RecordType) equals(o Type) bool {
	other, ok := o.(*RecordType)
	return ok && r.Name == other.Name
}

func (r *RecordType) FieldType(name string) (Type, bool) {
	t, ok := r.FieldTypes[name]
	return t, ok
}

// ProcedureType is the signature of a declared PROCEDURE or FUNCTION.
// Return is nil for a procedure.
type ProcedureType struct {
	Params []ParamType
	Return Type
}

type ParamType struct {
	Name string
	Type Type
	Mode ast.ParamMode
}

func (f *ProcedureType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = fmt.Sprintf("%s:%s", p.Name, p.Type)
	}
	if f.Return == nil {
		return fmt.Sprintf("PROCEDURE(%s)", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("FUNCTION(%s) RETURNS %s", strings.Join(parts, ", "), f.Return)
}

func (f *ProcedureType) equals(o Type) bool {
	other, ok := o.(*ProcedureType)
	return ok && f == other
}

// sameType reports whether a and b are identical types, tolerating either
// being nil (treated as "no type known", never equal).
func sameType(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	return a.equals(b)
}

// assignable reports whether a value of type src may be stored into a
// variable of type dst. INTEGER widens to REAL and CHAR widens to STRING;
// every other pairing requires an exact match (spec.md §3/§9).
func assignable(dst, src Type) bool {
	if sameType(dst, src) {
		return true
	}
	if dst == Real && src == Integer {
		return true
	}
	if dst == String && src == Char {
		return true
	}
	return false
}

// resolveTypeName resolves a parsed ast.TypeName to a semantic Type, using
// typeDefs for user-declared record types.
func resolveTypeName(name ast.TypeName, typeDefs map[string]*RecordType) (Type, error) {
	switch ScalarType(name) {
	case Integer, Real, String, Boolean, Char:
		return ScalarType(name), nil
	}
	if rec, ok := typeDefs[string(name)]; ok {
		return rec, nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}
